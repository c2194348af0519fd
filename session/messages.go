package session

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Wire envelopes, one per topic. Field names are fixed by the wire contract;
// every envelope is self-identifying through the topic it travels on and
// carries the sender's peer id for self-echo suppression.

// VideoEnvelope carries one ASCII frame plus the sender's mute switches.
type VideoEnvelope struct {
	PeerID       string `json:"peer_id"`
	Frame        string `json:"frame"`
	IsAudioMuted bool   `json:"is_audio_muted"`
	IsVideoMuted bool   `json:"is_video_muted"`
}

// AudioEnvelope carries one chunk of float32 PCM samples.
type AudioEnvelope struct {
	PeerID string    `json:"peer_id"`
	Data   []float32 `json:"data"`
}

// ChatEnvelope carries one chat line.
type ChatEnvelope struct {
	PeerID  string `json:"peer_id"`
	Message string `json:"message"`
}

// FileEnvelope carries a whole file as a single atomic unit. No chunking.
type FileEnvelope struct {
	PeerID   string    `json:"peer_id"`
	FileName string    `json:"file_name"`
	Content  ByteSlice `json:"content"`
}

// ControlMessage is the control-topic variant set. It marshals as a bare
// JSON string, e.g. "EndCall".
type ControlMessage string

// ControlEndCall asks every participant to terminate the call.
const ControlEndCall ControlMessage = "EndCall"

// ByteSlice marshals as a JSON array of numbers instead of base64, which is
// what the file topic schema specifies.
type ByteSlice []byte

// MarshalJSON renders the bytes as [1,2,3].
func (b ByteSlice) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(len(b)*4 + 2)
	buf.WriteByte('[')
	for i, v := range b {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Itoa(int(v)))
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts an array of numbers 0..255.
func (b *ByteSlice) UnmarshalJSON(data []byte) error {
	var ints []uint8
	if err := json.Unmarshal(data, &ints); err != nil {
		return err
	}
	*b = ByteSlice(ints)
	return nil
}

// shortPeerID returns the last six characters of a peer id, the form chat
// lines use to label remote senders.
func shortPeerID(id string) string {
	if len(id) <= 6 {
		return id
	}
	return id[len(id)-6:]
}
