// Package ui owns the terminal: raw mode, the alternate screen, painting
// the session view-model and decoding keyboard input.
package ui

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"golang.org/x/term"

	"github.com/2jungg/gomeet/session"
)

// Terminal is the scoped terminal handle. Open enters raw mode and the
// alternate screen; Close restores both and is safe to call more than once,
// so it can sit in a defer and also run on panic paths.
type Terminal struct {
	fd        int
	out       *os.File
	oldState  *term.State
	closeOnce sync.Once
}

// Open acquires the terminal. Fails when stdin is not a terminal.
func Open() (*Terminal, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, errors.New("stdin is not a terminal")
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("raw mode: %w", err)
	}
	t := &Terminal{fd: fd, out: os.Stdout, oldState: oldState}
	// alt screen, hide cursor, clear
	fmt.Fprint(t.out, "\x1b[?1049h\x1b[?25l\x1b[2J\x1b[H")
	return t, nil
}

// Close leaves the alternate screen and restores the previous terminal mode.
func (t *Terminal) Close() {
	t.closeOnce.Do(func() {
		fmt.Fprint(t.out, "\x1b[?25h\x1b[?1049l")
		_ = term.Restore(t.fd, t.oldState)
	})
}

// size returns the terminal dimensions, with a sane floor when the query
// fails (e.g. output redirected).
func (t *Terminal) size() (cols, rows int) {
	cols, rows, err := term.GetSize(int(t.out.Fd()))
	if err != nil || cols <= 0 || rows <= 0 {
		return 80, 24
	}
	return cols, rows
}

func (t *Terminal) paint(body string) error {
	if _, err := fmt.Fprint(t.out, "\x1b[H\x1b[2J"+body); err != nil {
		return fmt.Errorf("terminal write: %w", err)
	}
	return nil
}

// PaintWaiting draws the create-side lobby screen.
func (t *Terminal) PaintWaiting(localPeerID string, listenAddrs []string) error {
	return t.paint(composeWaiting(localPeerID, listenAddrs))
}

// PaintJoining draws the join-side connecting screen.
func (t *Terminal) PaintJoining() error {
	return t.paint(composeJoining())
}

// PaintInCall draws the full call screen from the snapshot.
func (t *Terminal) PaintInCall(snap session.Snapshot) error {
	cols, _ := t.size()
	return t.paint(composeInCall(snap, cols))
}
