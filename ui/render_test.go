package ui

import (
	"strings"
	"testing"

	"github.com/2jungg/gomeet/session"
)

func TestComposeWaiting(t *testing.T) {
	out := composeWaiting("peer-123", []string{
		"/ip4/127.0.0.1/tcp/4242/p2p/peer-123",
		"/ip4/10.0.0.2/tcp/4242/p2p/peer-123",
	})
	for _, want := range []string{
		waitingTitle,
		"Your Peer ID: peer-123",
		"  /ip4/127.0.0.1/tcp/4242/p2p/peer-123",
		"  /ip4/10.0.0.2/tcp/4242/p2p/peer-123",
		"gomeet join --address",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("waiting screen missing %q:\n%s", want, out)
		}
	}
	if !strings.HasSuffix(out, "\r\n") {
		t.Error("raw mode output must end lines with CRLF")
	}
}

func TestComposeInCallStacked(t *testing.T) {
	snap := session.Snapshot{
		LocalFrame: "AAAA\nBBBB\n",
		RemoteViews: map[string]session.RemoteView{
			"peer-abcdef123456": {LastFrame: "CCCC\nDDDD\n", AudioMuted: true},
		},
		ChatLines: []string{"You: hi", "123456: hello"},
	}
	out := composeInCall(snap, 10) // far too narrow for side-by-side
	for _, want := range []string{
		"You\r\n",
		"Peer 123456 [mic off]",
		"AAAA",
		"CCCC",
		"Chat:",
		"  You: hi",
		"  123456: hello",
		footerHelp,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("call screen missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "AAAA") > strings.Index(out, "CCCC") {
		t.Error("local pane should come before the remote pane when stacked")
	}
}

func TestComposeInCallSideBySide(t *testing.T) {
	snap := session.Snapshot{
		LocalFrame: "AAAA\n",
		RemoteViews: map[string]session.RemoteView{
			"p1": {LastFrame: "CCCC\n"},
		},
	}
	out := composeInCall(snap, 200)
	if !strings.Contains(out, "AAAA   CCCC") {
		t.Errorf("wide terminal should place frames side by side:\n%s", out)
	}
}

func TestComposeInCallLocalMuteIndicators(t *testing.T) {
	snap := session.Snapshot{
		LocalFrame:      "AAAA\n",
		LocalAudioMuted: true,
		LocalVideoMuted: true,
	}
	out := composeInCall(snap, 80)
	if !strings.Contains(out, "You [mic off] [cam off]") {
		t.Errorf("local mute indicators missing:\n%s", out)
	}
}

func TestComposeInCallRemotePanesSortedByID(t *testing.T) {
	snap := session.Snapshot{
		LocalFrame: "L\n",
		RemoteViews: map[string]session.RemoteView{
			"zzz": {LastFrame: "ZF\n"},
			"aaa": {LastFrame: "AF\n"},
		},
	}
	out := composeInCall(snap, 1) // force stacking so order is observable
	if strings.Index(out, "Peer aaa") > strings.Index(out, "Peer zzz") {
		t.Errorf("remote panes not sorted by peer id:\n%s", out)
	}
}

func TestComposeInCallChatTail(t *testing.T) {
	var chat []string
	for _, s := range []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"} {
		chat = append(chat, "p: "+s)
	}
	out := composeInCall(session.Snapshot{LocalFrame: "L\n", ChatLines: chat}, 80)
	if strings.Contains(out, "p: 0") || strings.Contains(out, "p: 1\r") {
		t.Errorf("oldest chat lines should scroll out:\n%s", out)
	}
	if !strings.Contains(out, "p: 9") {
		t.Errorf("newest chat line missing:\n%s", out)
	}
}

func TestComposeInCallDownloads(t *testing.T) {
	snap := session.Snapshot{
		LocalFrame: "L\n",
		Downloads: []session.DownloadEntry{
			{FileName: "a.txt", State: session.Downloading},
			{FileName: "b.txt", State: session.Completed, Path: "/tmp/b.txt"},
			{FileName: "c.txt", State: session.Failed},
		},
	}
	out := composeInCall(snap, 80)
	for _, want := range []string{
		"Downloads:",
		"  a.txt (downloading...)",
		"  b.txt -> /tmp/b.txt",
		"  c.txt (failed)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("downloads section missing %q:\n%s", want, out)
		}
	}
}

func TestComposeInCallInputModeReplacesFooter(t *testing.T) {
	out := composeInCall(session.Snapshot{LocalFrame: "L\n", InputMode: true, InputBuffer: "hel"}, 80)
	if !strings.Contains(out, "> hel_") {
		t.Errorf("input prompt missing:\n%s", out)
	}
	if strings.Contains(out, footerHelp) {
		t.Errorf("footer help should be hidden while composing:\n%s", out)
	}
}

func TestSideBySidePadsShortPanes(t *testing.T) {
	left := []string{"ab", "a"}
	right := []string{"xy", "x", "z"}
	got := sideBySide(left, right, 1)
	want := []string{"ab xy", "a  x", "   z"}
	if len(got) != len(want) {
		t.Fatalf("rows = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %q, want %q", i, got[i], want[i])
		}
	}
}
