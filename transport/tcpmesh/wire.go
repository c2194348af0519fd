package tcpmesh

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// Wire frame layout:
//
//	[u32 frame length][u8 topic length][topic bytes][zstd payload]
//
// The length covers everything after the 4-byte prefix. JSON envelopes full
// of ASCII frames and float arrays compress well, so every payload goes
// through zstd regardless of topic.
const (
	maxFrameSize = 64 << 20
	maxTopicLen  = 255
)

type wireCodec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func newWireCodec() (*wireCodec, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	return &wireCodec{enc: enc, dec: dec}, nil
}

func (c *wireCodec) close() {
	c.enc.Close()
	c.dec.Close()
}

// encodeFrame builds a complete wire frame including the length prefix.
// EncodeAll and DecodeAll are safe for concurrent use, so one codec serves
// all connections of a mesh.
func (c *wireCodec) encodeFrame(topic string, payload []byte) ([]byte, error) {
	if len(topic) == 0 || len(topic) > maxTopicLen {
		return nil, fmt.Errorf("bad topic length %d", len(topic))
	}
	compressed := c.enc.EncodeAll(payload, nil)
	body := 1 + len(topic) + len(compressed)
	if body > maxFrameSize {
		return nil, fmt.Errorf("frame too large: %d bytes", body)
	}
	out := make([]byte, 4+body)
	binary.BigEndian.PutUint32(out, uint32(body))
	out[4] = byte(len(topic))
	copy(out[5:], topic)
	copy(out[5+len(topic):], compressed)
	return out, nil
}

// decodeFrame reads one frame from r and returns the topic and decompressed
// payload. Oversized or malformed frames return an error; the caller drops
// the connection rather than trying to resync.
func (c *wireCodec) decodeFrame(r io.Reader) (string, []byte, error) {
	var prefix [4]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return "", nil, err
	}
	body := binary.BigEndian.Uint32(prefix[:])
	if body < 1 || body > maxFrameSize {
		return "", nil, fmt.Errorf("bad frame length %d", body)
	}
	buf := make([]byte, body)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", nil, err
	}
	topicLen := int(buf[0])
	if topicLen == 0 || 1+topicLen > len(buf) {
		return "", nil, fmt.Errorf("bad topic length %d", topicLen)
	}
	topic := string(buf[1 : 1+topicLen])
	payload, err := c.dec.DecodeAll(buf[1+topicLen:], nil)
	if err != nil {
		return "", nil, fmt.Errorf("decompress: %w", err)
	}
	return topic, payload, nil
}
