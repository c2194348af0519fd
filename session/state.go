package session

// CallState is the session state machine. WaitingForPeers (create) and
// Joining (join) both move to InCall on the first established connection;
// the loop terminates on quit, EndCall or loss of the last connection.
type CallState int

const (
	WaitingForPeers CallState = iota
	Joining
	InCall
)

func (s CallState) String() string {
	switch s {
	case WaitingForPeers:
		return "WaitingForPeers"
	case Joining:
		return "Joining"
	case InCall:
		return "InCall"
	}
	return "Unknown"
}

// RemoteView is the per-peer display slot: last-writer-wins, one slot per
// peer, no history.
type RemoteView struct {
	LastFrame  string
	AudioMuted bool
	VideoMuted bool
}

// DownloadState tracks one received file through its save.
type DownloadState int

const (
	Downloading DownloadState = iota
	Completed
	Failed
)

func (s DownloadState) String() string {
	switch s {
	case Downloading:
		return "downloading"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// DownloadEntry is one row of the downloads list. Entries are append-only;
// only State and Path mutate, keyed by position.
type DownloadEntry struct {
	FileName string
	PeerID   string
	State    DownloadState
	Path     string // set when State == Completed
}

// Snapshot is the view-model handed to the renderer on each in-call paint.
// The renderer owns none of this data; maps and slices are copied before
// painting so a paint can never observe a later mutation.
type Snapshot struct {
	LocalFrame      string
	LocalAudioMuted bool
	LocalVideoMuted bool
	RemoteViews     map[string]RemoteView
	ChatLines       []string
	Downloads       []DownloadEntry
	InputBuffer     string
	InputMode       bool
}
