package device

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	malgo "github.com/gen2brain/malgo"
	"github.com/rs/zerolog"
)

const audioQueueDepth = 64

// AudioDevice owns the full-duplex malgo streams. Two single-producer
// single-consumer queues connect the real-time callbacks to the session
// loop:
//
//	capture callback → Captured queue → loop (drained one chunk per tick)
//	loop → Playback queue → playback callback (one chunk per callback)
//
// Both callbacks are non-blocking: capture drops the oldest chunk when the
// consumer lags, playback writes silence when the queue is empty. No mixing:
// a single chunk serves the whole output buffer and the remainder stays
// silent.
type AudioDevice struct {
	ctx      *malgo.AllocatedContext
	capture  *malgo.Device
	playback *malgo.Device

	captured chan []float32
	playQ    chan []float32

	closeOnce sync.Once
}

// StartAudio initializes capture and playback in 32-bit float at the device
// default sample rate. Format negotiation fails closed: any init error is a
// startup error for the process.
func StartAudio(log zerolog.Logger) (*AudioDevice, error) {
	mCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		log.Debug().Str("comp", "malgo").Msg(message)
	})
	if err != nil {
		return nil, fmt.Errorf("audio context: %w", err)
	}

	d := &AudioDevice{
		ctx:      mCtx,
		captured: make(chan []float32, audioQueueDepth),
		playQ:    make(chan []float32, audioQueueDepth),
	}

	capCfg := malgo.DefaultDeviceConfig(malgo.Capture)
	capCfg.Capture.Format = malgo.FormatF32
	capCfg.Capture.Channels = 1
	capture, err := malgo.InitDevice(mCtx.Context, capCfg, malgo.DeviceCallbacks{
		Data: func(_, pInput []byte, frameCount uint32) {
			if len(pInput) == 0 {
				return
			}
			chunk := bytesToFloat32(pInput)
			select {
			case d.captured <- chunk:
				return
			default:
			}
			// Consumer is lagging: drop the oldest chunk, keep the newest.
			select {
			case <-d.captured:
			default:
			}
			select {
			case d.captured <- chunk:
			default:
			}
		},
	})
	if err != nil {
		mCtx.Uninit()
		mCtx.Free()
		return nil, fmt.Errorf("capture device: %w", err)
	}
	d.capture = capture

	playCfg := malgo.DefaultDeviceConfig(malgo.Playback)
	playCfg.Playback.Format = malgo.FormatF32
	playCfg.Playback.Channels = 1
	playbackDev, err := malgo.InitDevice(mCtx.Context, playCfg, malgo.DeviceCallbacks{
		Data: func(pOutput, _ []byte, frameCount uint32) {
			for i := range pOutput {
				pOutput[i] = 0
			}
			select {
			case chunk := <-d.playQ:
				writeFloat32(pOutput, chunk)
			default:
				// queue empty → silence
			}
		},
	})
	if err != nil {
		capture.Uninit()
		mCtx.Uninit()
		mCtx.Free()
		return nil, fmt.Errorf("playback device: %w", err)
	}
	d.playback = playbackDev

	if err := capture.Start(); err != nil {
		d.Close()
		return nil, fmt.Errorf("capture start: %w", err)
	}
	if err := playbackDev.Start(); err != nil {
		d.Close()
		return nil, fmt.Errorf("playback start: %w", err)
	}
	log.Info().Uint32("sample_rate", capCfg.SampleRate).Msg("audio streams running")
	return d, nil
}

// Captured is the outbound queue of microphone chunks.
func (d *AudioDevice) Captured() <-chan []float32 {
	return d.captured
}

// Playback is the inbound queue consumed by the playback callback.
func (d *AudioDevice) Playback() chan<- []float32 {
	return d.playQ
}

// Close stops both streams and releases the device context.
func (d *AudioDevice) Close() {
	d.closeOnce.Do(func() {
		if d.capture != nil {
			_ = d.capture.Stop()
			d.capture.Uninit()
		}
		if d.playback != nil {
			_ = d.playback.Stop()
			d.playback.Uninit()
		}
		if d.ctx != nil {
			_ = d.ctx.Uninit()
			d.ctx.Free()
		}
	})
}

func bytesToFloat32(b []byte) []float32 {
	n := len(b) / 4
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return out
}

func writeFloat32(dst []byte, src []float32) {
	n := len(dst) / 4
	if n > len(src) {
		n = len(src)
	}
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint32(dst[4*i:], math.Float32bits(src[i]))
	}
}
