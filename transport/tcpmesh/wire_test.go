package tcpmesh

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"
)

func newTestCodec(t *testing.T) *wireCodec {
	t.Helper()
	c, err := newWireCodec()
	if err != nil {
		t.Fatalf("newWireCodec: %v", err)
	}
	t.Cleanup(c.close)
	return c
}

func TestWireRoundTrip(t *testing.T) {
	c := newTestCodec(t)
	payloads := [][]byte{
		[]byte(`{"peer_id":"p","message":"hello"}`),
		[]byte(strings.Repeat("@@@@  ....", 800)), // ASCII-frame-like, compresses hard
		{},
	}
	for _, payload := range payloads {
		frame, err := c.encodeFrame("meet/video", payload)
		if err != nil {
			t.Fatalf("encodeFrame: %v", err)
		}
		topic, got, err := c.decodeFrame(bytes.NewReader(frame))
		if err != nil {
			t.Fatalf("decodeFrame: %v", err)
		}
		if topic != "meet/video" {
			t.Errorf("topic = %q", topic)
		}
		if !bytes.Equal(got, payload) {
			t.Errorf("payload mismatch: got %d bytes, want %d", len(got), len(payload))
		}
	}
}

func TestWireCompresses(t *testing.T) {
	c := newTestCodec(t)
	payload := []byte(strings.Repeat(" .:-=+*#%@", 320)) // 3200 bytes, one frame row repeated
	frame, err := c.encodeFrame("v", payload)
	if err != nil {
		t.Fatalf("encodeFrame: %v", err)
	}
	if len(frame) >= len(payload) {
		t.Errorf("frame %d bytes not smaller than payload %d bytes", len(frame), len(payload))
	}
}

func TestWireRejectsBadTopics(t *testing.T) {
	c := newTestCodec(t)
	if _, err := c.encodeFrame("", nil); err == nil {
		t.Error("empty topic accepted")
	}
	if _, err := c.encodeFrame(strings.Repeat("t", maxTopicLen+1), nil); err == nil {
		t.Error("oversized topic accepted")
	}
}

func TestWireRejectsBadFrames(t *testing.T) {
	c := newTestCodec(t)

	t.Run("zero length", func(t *testing.T) {
		if _, _, err := c.decodeFrame(bytes.NewReader([]byte{0, 0, 0, 0})); err == nil {
			t.Error("zero-length frame accepted")
		}
	})

	t.Run("oversized length", func(t *testing.T) {
		var prefix [4]byte
		binary.BigEndian.PutUint32(prefix[:], maxFrameSize+1)
		if _, _, err := c.decodeFrame(bytes.NewReader(prefix[:])); err == nil {
			t.Error("oversized frame accepted")
		}
	})

	t.Run("truncated body", func(t *testing.T) {
		frame, err := c.encodeFrame("t", []byte("payload"))
		if err != nil {
			t.Fatal(err)
		}
		if _, _, err := c.decodeFrame(bytes.NewReader(frame[:len(frame)-3])); err == nil {
			t.Error("truncated frame accepted")
		}
	})

	t.Run("topic longer than body", func(t *testing.T) {
		body := []byte{200, 'x', 'y'}
		buf := make([]byte, 4+len(body))
		binary.BigEndian.PutUint32(buf, uint32(len(body)))
		copy(buf[4:], body)
		if _, _, err := c.decodeFrame(bytes.NewReader(buf)); err == nil {
			t.Error("frame with runaway topic length accepted")
		}
	})

	t.Run("corrupt compression", func(t *testing.T) {
		body := []byte{1, 't', 0xde, 0xad, 0xbe, 0xef}
		buf := make([]byte, 4+len(body))
		binary.BigEndian.PutUint32(buf, uint32(len(body)))
		copy(buf[4:], body)
		if _, _, err := c.decodeFrame(bytes.NewReader(buf)); err == nil {
			t.Error("corrupt payload accepted")
		}
	})
}
