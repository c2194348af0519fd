// Package tcpmesh implements the topic-broadcast overlay over plain TCP.
// Every participant dials, or is dialed by, every other participant; there
// is no relaying between connections, so delivery is exactly as good as the
// direct links. That keeps the transport honest about its contract:
// unreliable, unordered, best-effort.
package tcpmesh

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/2jungg/gomeet/transport"
)

const dialTimeout = 10 * time.Second

// Mesh is the TCP implementation of transport.Transport.
type Mesh struct {
	log    zerolog.Logger
	codec  *wireCodec
	events chan transport.Event

	mu    sync.Mutex
	conns map[string]*peerConn
	ln    net.Listener
	addrs []string

	closed    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

var _ transport.Transport = (*Mesh)(nil)

// New creates an idle mesh. Call Listen and/or Dial to bring up links.
func New(log zerolog.Logger) (*Mesh, error) {
	codec, err := newWireCodec()
	if err != nil {
		return nil, err
	}
	return &Mesh{
		log:    log,
		codec:  codec,
		events: make(chan transport.Event, 256),
		conns:  make(map[string]*peerConn),
		closed: make(chan struct{}),
	}, nil
}

// Events returns the mesh event stream. The channel is closed by Close.
func (m *Mesh) Events() <-chan transport.Event {
	return m.events
}

// ListenAddrs returns the multiaddrs the mesh is currently bound to.
func (m *Mesh) ListenAddrs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.addrs))
	copy(out, m.addrs)
	return out
}

// Listen binds a TCP listener on the given port (0 for random) and starts
// the accept loop. One NewListenAddress event is emitted per reachable local
// address.
func (m *Mesh) Listen(port int) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	m.mu.Lock()
	m.ln = ln
	m.mu.Unlock()

	boundPort := ln.Addr().(*net.TCPAddr).Port
	for _, ip := range localUnicastIPs() {
		addr := FormatAddr(ip, boundPort)
		m.mu.Lock()
		m.addrs = append(m.addrs, addr)
		m.mu.Unlock()
		m.emit(transport.Event{Kind: transport.NewListenAddress, Addr: addr})
	}
	m.log.Info().Int("port", boundPort).Msg("listening")

	m.wg.Add(1)
	go m.acceptLoop(ln)
	return nil
}

// Dial connects to a peer multiaddr. The connection is registered and a
// ConnectionEstablished event is emitted before Dial returns.
func (m *Mesh) Dial(addr string) error {
	target, err := ParseAddr(addr)
	if err != nil {
		return err
	}
	nc, err := net.DialTimeout("tcp", target, dialTimeout)
	if err != nil {
		return fmt.Errorf("dial %s: %w", target, err)
	}
	m.addConn(nc)
	return nil
}

// Publish broadcasts one topic frame to all live connections. Frames to slow
// peers are dropped by the per-connection queue; encoding errors are the only
// failures reported.
func (m *Mesh) Publish(topic string, data []byte) error {
	select {
	case <-m.closed:
		return errors.New("mesh closed")
	default:
	}
	frame, err := m.codec.encodeFrame(topic, data)
	if err != nil {
		return err
	}
	m.mu.Lock()
	peers := make([]*peerConn, 0, len(m.conns))
	for _, p := range m.conns {
		peers = append(peers, p)
	}
	m.mu.Unlock()
	for _, p := range peers {
		p.send(outFrame{topic: topic, payload: frame})
	}
	return nil
}

// Close tears down the listener and every connection, waits for the per-conn
// goroutines, and closes the event channel.
func (m *Mesh) Close() error {
	m.closeOnce.Do(func() {
		close(m.closed)
		m.mu.Lock()
		ln := m.ln
		peers := make([]*peerConn, 0, len(m.conns))
		for _, p := range m.conns {
			peers = append(peers, p)
		}
		m.mu.Unlock()
		if ln != nil {
			_ = ln.Close()
		}
		for _, p := range peers {
			p.close()
		}
		m.wg.Wait()
		m.codec.close()
		close(m.events)
	})
	return nil
}

func (m *Mesh) acceptLoop(ln net.Listener) {
	defer m.wg.Done()
	for {
		nc, err := ln.Accept()
		if err != nil {
			select {
			case <-m.closed:
				return
			default:
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				m.emit(transport.Event{Kind: transport.IncomingConnectionError})
				continue
			}
			m.log.Error().Err(err).Msg("accept failed")
			m.emit(transport.Event{Kind: transport.IncomingConnectionError})
			return
		}
		m.addConn(nc)
	}
}

// addConn registers a connection and starts its reader and writer.
func (m *Mesh) addConn(nc net.Conn) {
	p := newPeerConn(nc)
	m.mu.Lock()
	m.conns[p.id] = p
	m.mu.Unlock()
	m.log.Info().Str("peer", p.id).Msg("connection established")
	m.emit(transport.Event{Kind: transport.ConnectionEstablished, Peer: p.id})

	m.wg.Add(2)
	go m.writeLoop(p)
	go m.readLoop(p)
}

func (m *Mesh) dropConn(p *peerConn) {
	p.close()
	m.mu.Lock()
	_, known := m.conns[p.id]
	delete(m.conns, p.id)
	m.mu.Unlock()
	if known {
		m.log.Info().Str("peer", p.id).Msg("connection closed")
		m.emit(transport.Event{Kind: transport.ConnectionClosed, Peer: p.id})
	}
}

func (m *Mesh) writeLoop(p *peerConn) {
	defer m.wg.Done()
	for {
		select {
		case <-p.done:
			return
		case f := <-p.out:
			if _, err := p.nc.Write(f.payload); err != nil {
				m.log.Debug().Err(err).Str("peer", p.id).Str("topic", f.topic).Msg("write failed")
				m.dropConn(p)
				return
			}
		}
	}
}

func (m *Mesh) readLoop(p *peerConn) {
	defer m.wg.Done()
	for {
		topic, payload, err := m.codec.decodeFrame(p.nc)
		if err != nil {
			select {
			case <-p.done:
			default:
				m.log.Debug().Err(err).Str("peer", p.id).Msg("read failed")
			}
			m.dropConn(p)
			return
		}
		m.emit(transport.Event{
			Kind:  transport.MessageReceived,
			Peer:  p.id,
			Topic: topic,
			Data:  payload,
		})
	}
}

// emit delivers an event unless the mesh is shutting down. The consumer is
// the session loop, which drains events until it exits and then closes the
// mesh, so a blocked send resolves either way.
func (m *Mesh) emit(ev transport.Event) {
	select {
	case m.events <- ev:
	case <-m.closed:
	}
}

// localUnicastIPs lists the addresses worth advertising: loopback plus every
// global unicast IP on an up interface.
func localUnicastIPs() []net.IP {
	var out []net.IP
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return []net.IP{net.IPv4(127, 0, 0, 1)}
	}
	for _, a := range addrs {
		ipNet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		ip := ipNet.IP
		if ip.IsLoopback() || ip.IsGlobalUnicast() {
			out = append(out, ip)
		}
	}
	if len(out) == 0 {
		out = append(out, net.IPv4(127, 0, 0, 1))
	}
	return out
}
