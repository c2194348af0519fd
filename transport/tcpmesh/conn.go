package tcpmesh

import (
	"net"
	"sync"
)

type outFrame struct {
	topic   string
	payload []byte
}

// peerConn is one live TCP connection. Outbound frames go through a bounded
// queue with drop-oldest overflow so a stalled peer can never block Publish.
type peerConn struct {
	id   string
	nc   net.Conn
	out  chan outFrame
	done chan struct{}
	once sync.Once
}

func newPeerConn(nc net.Conn) *peerConn {
	if tc, ok := nc.(*net.TCPConn); ok {
		_ = tc.SetKeepAlive(true)
		_ = tc.SetNoDelay(true)
	}
	return &peerConn{
		id:   nc.RemoteAddr().String(),
		nc:   nc,
		out:  make(chan outFrame, 64),
		done: make(chan struct{}),
	}
}

// send enqueues a frame without blocking. When the queue is full the oldest
// frame is dropped first; if it is still full the new frame is dropped.
func (p *peerConn) send(f outFrame) {
	select {
	case p.out <- f:
		return
	default:
	}
	select {
	case <-p.out:
	default:
	}
	select {
	case p.out <- f:
	default:
	}
}

func (p *peerConn) close() {
	p.once.Do(func() {
		close(p.done)
		_ = p.nc.Close()
	})
}
