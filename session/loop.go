// Package session contains the call coordinator: one single-threaded loop
// that multiplexes the media tick, keyboard input, transport events and
// download status updates. All session state is owned and mutated by the
// loop alone, so it needs no locking.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/2jungg/gomeet/transport"
)

const defaultTick = 50 * time.Millisecond

// FrameSource produces the outbound ASCII frame on demand. Capture
// substitutes the placeholder internally on any camera failure and never
// blocks past a camera frame interval.
type FrameSource interface {
	Capture() string
	Placeholder() string
}

// Renderer paints the terminal from the session view-model. Paint operations
// are idempotent; errors are fatal to the loop.
type Renderer interface {
	PaintWaiting(localPeerID string, listenAddrs []string) error
	PaintJoining() error
	PaintInCall(snap Snapshot) error
}

// KeyKind discriminates decoded keyboard events.
type KeyKind int

const (
	KeyRune KeyKind = iota
	KeyEnter
	KeyBackspace
	KeyEsc
)

// KeyEvent is one decoded key press from the input reader.
type KeyEvent struct {
	Kind KeyKind
	Rune rune
}

// Config wires the loop to its collaborators. All channels are consumed or
// fed exclusively by the loop goroutine.
type Config struct {
	PeerID    string
	Initial   CallState // WaitingForPeers (create) or Joining (join)
	Transport transport.Transport
	Frames    FrameSource
	AudioIn   <-chan []float32 // captured microphone chunks
	AudioOut  chan<- []float32 // playback queue
	Renderer  Renderer
	Keys      <-chan KeyEvent
	Picker    FilePicker
	Downloads string // downloads directory override, empty for default
	Tick      time.Duration
	Log       zerolog.Logger
}

// Loop holds the session state machine and view-model.
type Loop struct {
	cfg  Config
	tick time.Duration

	state       CallState
	listenAddrs []string
	remote      map[string]RemoteView
	chat        []string
	downloads   []DownloadEntry
	input       string
	inputMode   bool
	audioMuted  bool
	videoMuted  bool
	dirty       bool

	statusCh    chan downloadStatus
	downloadDir string
	done        chan struct{}
}

// New builds a loop in the configured initial state.
func New(cfg Config) *Loop {
	tick := cfg.Tick
	if tick <= 0 {
		tick = defaultTick
	}
	return &Loop{
		cfg:         cfg,
		tick:        tick,
		state:       cfg.Initial,
		remote:      make(map[string]RemoteView),
		statusCh:    make(chan downloadStatus, 64),
		downloadDir: downloadsDir(cfg.Downloads),
		done:        make(chan struct{}),
		dirty:       true,
	}
}

// Run drives the session until quit, EndCall, connection loss or input
// shutdown. Exactly one event source is serviced per iteration. Renderer
// errors propagate; everything else is handled in place.
func (l *Loop) Run() error {
	defer close(l.done)

	ticker := time.NewTicker(l.tick)
	defer ticker.Stop()

	for {
		// Waiting and joining screens are static: repaint only when dirty.
		// In-call painting happens on the tick instead, because video is
		// time-varying anyway.
		if l.dirty && l.state != InCall {
			var err error
			switch l.state {
			case WaitingForPeers:
				err = l.cfg.Renderer.PaintWaiting(l.cfg.PeerID, l.listenAddrs)
			case Joining:
				err = l.cfg.Renderer.PaintJoining()
			}
			if err != nil {
				return fmt.Errorf("paint: %w", err)
			}
			l.dirty = false
		}

		select {
		case <-ticker.C:
			if l.state != InCall {
				continue
			}
			if err := l.onTick(); err != nil {
				return err
			}

		case key, ok := <-l.cfg.Keys:
			if !ok {
				// Input reader died; rely on deferred teardown.
				l.cfg.Log.Warn().Msg("input channel closed")
				return nil
			}
			quit, err := l.onKey(key)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}

		case ev, ok := <-l.cfg.Transport.Events():
			if !ok {
				l.cfg.Log.Warn().Msg("transport event stream closed")
				return nil
			}
			if l.onTransportEvent(ev) {
				return nil
			}

		case st := <-l.statusCh:
			l.onDownloadStatus(st)
		}
	}
}

// onTick captures, publishes and repaints. Video publish is unconditional so
// remote peers keep seeing the mute flags; audio is skipped entirely while
// muted so a muted peer produces zero audio traffic.
func (l *Loop) onTick() error {
	var frame string
	if l.videoMuted {
		frame = l.cfg.Frames.Placeholder()
	} else {
		frame = l.cfg.Frames.Capture()
	}
	l.publish(transport.TopicVideo, VideoEnvelope{
		PeerID:       l.cfg.PeerID,
		Frame:        frame,
		IsAudioMuted: l.audioMuted,
		IsVideoMuted: l.videoMuted,
	})

	if !l.audioMuted {
		select {
		case chunk := <-l.cfg.AudioIn:
			l.publish(transport.TopicAudio, AudioEnvelope{PeerID: l.cfg.PeerID, Data: chunk})
		default:
			// no captured audio this tick; never wait for it
		}
	}

	if err := l.cfg.Renderer.PaintInCall(l.snapshot(frame)); err != nil {
		return fmt.Errorf("paint: %w", err)
	}
	l.dirty = false
	return nil
}

// onKey handles one key press. Returns quit=true when the loop should end.
func (l *Loop) onKey(key KeyEvent) (bool, error) {
	if l.inputMode {
		l.onInputModeKey(key)
		return false, nil
	}
	if key.Kind != KeyRune {
		return false, nil
	}
	switch key.Rune {
	case 'q':
		if l.state != WaitingForPeers {
			l.publish(transport.TopicControl, ControlEndCall)
		}
		return true, nil
	case 'i':
		l.inputMode = true
		l.dirty = true
	case 'm':
		l.audioMuted = !l.audioMuted
		l.dirty = true
	case 'v':
		l.videoMuted = !l.videoMuted
		l.dirty = true
	case 'f':
		l.sendFile()
	}
	return false, nil
}

func (l *Loop) onInputModeKey(key KeyEvent) {
	switch key.Kind {
	case KeyRune:
		l.input += string(key.Rune)
	case KeyBackspace:
		if n := len(l.input); n > 0 {
			// pop the last rune, not the last byte
			runes := []rune(l.input)
			l.input = string(runes[:len(runes)-1])
		}
	case KeyEnter:
		text := l.input
		l.publish(transport.TopicChat, ChatEnvelope{PeerID: l.cfg.PeerID, Message: text})
		l.chat = append(l.chat, "You: "+text)
		l.input = ""
		l.inputMode = false
	case KeyEsc:
		l.input = ""
		l.inputMode = false
	}
	l.dirty = true
}

// sendFile runs the picker (blocking the loop by design while the dialog is
// open), reads the file whole and broadcasts it.
func (l *Loop) sendFile() {
	if l.cfg.Picker == nil {
		return
	}
	path, err := l.cfg.Picker.Pick()
	if err != nil {
		l.cfg.Log.Error().Err(err).Msg("file picker failed")
		return
	}
	if path == "" {
		return
	}
	content, err := os.ReadFile(path)
	if err != nil {
		l.cfg.Log.Error().Err(err).Str("path", path).Msg("cannot read file")
		return
	}
	name, ok := sanitizeFileName(path)
	if !ok {
		return
	}
	if l.publish(transport.TopicFile, FileEnvelope{
		PeerID:   l.cfg.PeerID,
		FileName: name,
		Content:  content,
	}) {
		l.cfg.Log.Info().Str("file", name).Int("bytes", len(content)).Msg("file sent")
		l.chat = append(l.chat, "You sent a file: "+name)
		l.dirty = true
	}
}

// onTransportEvent applies one event. Returns true when the loop should end.
func (l *Loop) onTransportEvent(ev transport.Event) bool {
	switch ev.Kind {
	case transport.ConnectionEstablished:
		l.state = InCall
		l.dirty = true

	case transport.ConnectionClosed:
		// Best effort: tell whoever is left, then leave.
		l.publish(transport.TopicControl, ControlEndCall)
		return true

	case transport.IncomingConnectionError:
		l.cfg.Log.Debug().Msg("incoming connection error")

	case transport.NewListenAddress:
		l.listenAddrs = append(l.listenAddrs, ev.Addr+"/p2p/"+l.cfg.PeerID)
		l.dirty = true

	case transport.MessageReceived:
		return l.onMessage(ev.Topic, ev.Data)
	}
	return false
}

// onMessage dispatches strictly on the wire topic. Undecodable payloads and
// self-echoed envelopes are dropped silently.
func (l *Loop) onMessage(topic string, data []byte) bool {
	switch topic {
	case transport.TopicVideo:
		var env VideoEnvelope
		if json.Unmarshal(data, &env) != nil || env.PeerID == l.cfg.PeerID {
			return false
		}
		l.remote[env.PeerID] = RemoteView{
			LastFrame:  env.Frame,
			AudioMuted: env.IsAudioMuted,
			VideoMuted: env.IsVideoMuted,
		}
		l.dirty = true

	case transport.TopicAudio:
		var env AudioEnvelope
		if json.Unmarshal(data, &env) != nil || env.PeerID == l.cfg.PeerID {
			return false
		}
		select {
		case l.cfg.AudioOut <- env.Data:
		default:
			// playback queue full; drop rather than stall the loop
		}

	case transport.TopicChat:
		var env ChatEnvelope
		if json.Unmarshal(data, &env) != nil || env.PeerID == l.cfg.PeerID {
			return false
		}
		l.chat = append(l.chat, shortPeerID(env.PeerID)+": "+env.Message)
		l.dirty = true

	case transport.TopicFile:
		var env FileEnvelope
		if json.Unmarshal(data, &env) != nil || env.PeerID == l.cfg.PeerID {
			return false
		}
		l.downloads = append(l.downloads, DownloadEntry{
			FileName: env.FileName,
			PeerID:   env.PeerID,
			State:    Downloading,
		})
		index := len(l.downloads) - 1
		go saveFile(index, env.FileName, env.Content, l.downloadDir, l.statusCh, l.done, l.cfg.Log)
		l.dirty = true

	case transport.TopicControl:
		var msg ControlMessage
		if json.Unmarshal(data, &msg) != nil {
			return false
		}
		if msg == ControlEndCall {
			l.cfg.Log.Info().Msg("call ended by peer")
			return true
		}
	}
	return false
}

func (l *Loop) onDownloadStatus(st downloadStatus) {
	if st.index < 0 || st.index >= len(l.downloads) {
		return
	}
	l.downloads[st.index].State = st.state
	l.downloads[st.index].Path = st.path
	l.dirty = true
}

// publish marshals and broadcasts one envelope. Transient errors are logged
// at debug level and suppressed; they never abort the call. Reports whether
// the publish was handed to the transport.
func (l *Loop) publish(topic string, env any) bool {
	data, err := json.Marshal(env)
	if err != nil {
		l.cfg.Log.Debug().Err(err).Str("topic", topic).Msg("marshal failed")
		return false
	}
	if err := l.cfg.Transport.Publish(topic, data); err != nil {
		l.cfg.Log.Debug().Err(err).Str("topic", topic).Msg("publish failed")
		return false
	}
	return true
}

// snapshot copies the view-model for a paint.
func (l *Loop) snapshot(localFrame string) Snapshot {
	remote := make(map[string]RemoteView, len(l.remote))
	for id, v := range l.remote {
		remote[id] = v
	}
	chat := make([]string, len(l.chat))
	copy(chat, l.chat)
	downloads := make([]DownloadEntry, len(l.downloads))
	copy(downloads, l.downloads)
	return Snapshot{
		LocalFrame:      localFrame,
		LocalAudioMuted: l.audioMuted,
		LocalVideoMuted: l.videoMuted,
		RemoteViews:     remote,
		ChatLines:       chat,
		Downloads:       downloads,
		InputBuffer:     l.input,
		InputMode:       l.inputMode,
	}
}
