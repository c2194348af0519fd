package device

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	gocam "github.com/svanichkin/gocam"
)

// Camera turns the gocam stream into an on-demand ASCII frame source.
// A background goroutine converts frames into a latest-frame slot, so
// Capture never waits on the device: it returns whatever arrived last, or
// the synthesized card when nothing has.
type Camera struct {
	mu     sync.RWMutex
	latest string
}

// StartCamera begins capture. A missing or failing camera is not an error:
// the returned Camera simply serves NoCameraFrame until the process exits,
// matching the substitute-frame failure policy.
func StartCamera(ctx context.Context, log zerolog.Logger) *Camera {
	c := &Camera{}
	src, err := gocam.StartStream(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("camera unavailable, using placeholder frames")
		return c
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case f, ok := <-src:
				if !ok {
					log.Warn().Msg("camera stream ended")
					c.mu.Lock()
					c.latest = ""
					c.mu.Unlock()
					return
				}
				frame := FrameFromRGB(f.Data, f.Width, f.Height)
				c.mu.Lock()
				c.latest = frame
				c.mu.Unlock()
			}
		}
	}()
	return c
}

// Capture returns the most recent frame, falling back to the placeholder.
func (c *Camera) Capture() string {
	c.mu.RLock()
	frame := c.latest
	c.mu.RUnlock()
	if frame == "" {
		return NoCameraFrame()
	}
	return frame
}

// Placeholder returns the synthesized "no camera" frame.
func (c *Camera) Placeholder() string {
	return NoCameraFrame()
}
