package ui

import (
	"sort"
	"strings"

	"github.com/2jungg/gomeet/session"
)

// Screen composition is pure string building; the Terminal only ships the
// result to the screen. Raw mode needs explicit carriage returns, hence the
// "\r\n" line endings throughout.

const (
	paneGap      = 3
	chatTail     = 8
	footerHelp   = "q quit | i chat | m mute audio | v mute video | f send file"
	waitingTitle = "Waiting for peers to join..."
)

func composeWaiting(localPeerID string, listenAddrs []string) string {
	var b strings.Builder
	b.WriteString(waitingTitle + "\r\n")
	b.WriteString("Your Peer ID: " + localPeerID + "\r\n")
	b.WriteString("Listening on:\r\n")
	for _, addr := range listenAddrs {
		b.WriteString("  " + addr + "\r\n")
	}
	b.WriteString("\r\nShare an address above; a peer joins with:\r\n")
	b.WriteString("  gomeet join --address <addr>\r\n")
	return b.String()
}

func composeJoining() string {
	return "Joining room...\r\n"
}

func composeInCall(snap session.Snapshot, cols int) string {
	localTitle := "You"
	if snap.LocalAudioMuted {
		localTitle += " [mic off]"
	}
	if snap.LocalVideoMuted {
		localTitle += " [cam off]"
	}
	local := pane(localTitle, snap.LocalFrame)

	// Stable ordering: peers sorted by id, so panes do not jump around
	// between paints.
	ids := make([]string, 0, len(snap.RemoteViews))
	for id := range snap.RemoteViews {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	remotes := make([][]string, 0, len(ids))
	for _, id := range ids {
		v := snap.RemoteViews[id]
		title := "Peer " + tailID(id)
		if v.AudioMuted {
			title += " [mic off]"
		}
		if v.VideoMuted {
			title += " [cam off]"
		}
		remotes = append(remotes, pane(title, v.LastFrame))
	}

	var lines []string
	paneWidth := maxLineWidth(local)
	if len(remotes) > 0 && cols >= 2*paneWidth+paneGap {
		lines = append(lines, sideBySide(local, remotes[0], paneGap)...)
		remotes = remotes[1:]
	} else {
		lines = append(lines, local...)
	}
	for _, r := range remotes {
		lines = append(lines, "")
		lines = append(lines, r...)
	}

	lines = append(lines, "", "Chat:")
	chat := snap.ChatLines
	if len(chat) > chatTail {
		chat = chat[len(chat)-chatTail:]
	}
	for _, line := range chat {
		lines = append(lines, "  "+line)
	}

	if len(snap.Downloads) > 0 {
		lines = append(lines, "", "Downloads:")
		for _, d := range snap.Downloads {
			lines = append(lines, "  "+downloadLine(d))
		}
	}

	lines = append(lines, "")
	if snap.InputMode {
		lines = append(lines, "> "+snap.InputBuffer+"_")
	} else {
		lines = append(lines, footerHelp)
	}

	return strings.Join(lines, "\r\n") + "\r\n"
}

// pane stacks a title over the frame body.
func pane(title, frame string) []string {
	out := []string{title}
	return append(out, frameLines(frame)...)
}

// frameLines splits a newline-terminated frame into rows.
func frameLines(frame string) []string {
	trimmed := strings.TrimSuffix(frame, "\n")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}

// sideBySide joins two panes horizontally, padding the left pane to a
// uniform width.
func sideBySide(left, right []string, gap int) []string {
	width := maxLineWidth(left)
	n := len(left)
	if len(right) > n {
		n = len(right)
	}
	sep := strings.Repeat(" ", gap)
	out := make([]string, n)
	for i := 0; i < n; i++ {
		var l, r string
		if i < len(left) {
			l = left[i]
		}
		if i < len(right) {
			r = right[i]
		}
		out[i] = padTo(l, width) + sep + r
	}
	return out
}

func maxLineWidth(lines []string) int {
	w := 0
	for _, line := range lines {
		if len(line) > w {
			w = len(line)
		}
	}
	return w
}

func padTo(s string, w int) string {
	if len(s) >= w {
		return s
	}
	return s + strings.Repeat(" ", w-len(s))
}

func downloadLine(d session.DownloadEntry) string {
	switch d.State {
	case session.Completed:
		return d.FileName + " -> " + d.Path
	case session.Failed:
		return d.FileName + " (failed)"
	default:
		return d.FileName + " (downloading...)"
	}
}

func tailID(id string) string {
	if len(id) <= 6 {
		return id
	}
	return id[len(id)-6:]
}
