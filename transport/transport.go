// Package transport defines the overlay surface the session loop consumes:
// topic broadcast plus a single ordered event stream.
package transport

// Topic names carried on the wire. The session core dispatches strictly on
// these strings; anything else is dropped.
const (
	TopicVideo   = "video"
	TopicAudio   = "audio"
	TopicChat    = "chat"
	TopicControl = "control"
	TopicFile    = "file"
)

// EventKind discriminates the variants of Event.
type EventKind int

const (
	// ConnectionEstablished is emitted once per peer connection, inbound or
	// outbound.
	ConnectionEstablished EventKind = iota
	// ConnectionClosed is emitted when a peer connection is lost.
	ConnectionClosed
	// IncomingConnectionError is emitted when an inbound connection could not
	// be accepted.
	IncomingConnectionError
	// NewListenAddress is emitted for every address the transport is bound to.
	NewListenAddress
	// MessageReceived carries one topic-tagged payload from a peer.
	MessageReceived
)

// Event is the single tagged variant delivered by Events. Only the fields
// relevant to Kind are populated.
type Event struct {
	Kind  EventKind
	Peer  string // remote endpoint for connection events and messages
	Addr  string // bound multiaddr for NewListenAddress
	Topic string // wire topic for MessageReceived
	Data  []byte // payload for MessageReceived
}

// Transport broadcasts payloads to every connected peer on named topics.
// Delivery is unreliable, unordered and best-effort; duplicates are possible
// and large payloads may be dropped. Consumers must tolerate all of that.
type Transport interface {
	// Publish sends data on topic to all live connections. Fire-and-forget:
	// errors are advisory and never indicate partial delivery.
	Publish(topic string, data []byte) error
	// Events returns the stream of connection and message events. Events from
	// a single connection arrive in FIFO order; there is no cross-connection
	// ordering.
	Events() <-chan Event
	// Listen starts accepting inbound connections on the given TCP port
	// (0 picks a random one) and eventually emits NewListenAddress for each
	// bound address.
	Listen(port int) error
	// Dial connects to a peer multiaddr and emits ConnectionEstablished on
	// success.
	Dial(addr string) error
	// Close tears down all connections and stops the event stream.
	Close() error
}
