package ui

import (
	"bufio"
	"io"
	"unicode"

	"github.com/2jungg/gomeet/session"
)

// ReadKeys starts the blocking input reader on its own goroutine and returns
// the key channel the session loop consumes. The reader shares nothing with
// the loop beyond that channel; closing it signals shutdown (read error or
// EOF).
func ReadKeys(r io.Reader) <-chan session.KeyEvent {
	ch := make(chan session.KeyEvent, 16)
	go func() {
		defer close(ch)
		br := bufio.NewReader(r)
		for {
			ru, _, err := br.ReadRune()
			if err != nil {
				return
			}
			switch {
			case ru == '\r' || ru == '\n':
				ch <- session.KeyEvent{Kind: session.KeyEnter}
			case ru == 0x7f || ru == '\b':
				ch <- session.KeyEvent{Kind: session.KeyBackspace}
			case ru == 0x1b:
				// A bare ESC is the Esc key; ESC with more bytes queued is
				// the start of a control sequence (arrows, function keys)
				// which this UI ignores.
				if br.Buffered() == 0 {
					ch <- session.KeyEvent{Kind: session.KeyEsc}
					continue
				}
				discardEscapeSequence(br)
			case unicode.IsPrint(ru):
				ch <- session.KeyEvent{Kind: session.KeyRune, Rune: ru}
			}
		}
	}()
	return ch
}

// discardEscapeSequence consumes the remainder of a CSI/SS3 sequence after
// the leading ESC. Unknown single-byte escapes are dropped as-is.
func discardEscapeSequence(br *bufio.Reader) {
	b, err := br.ReadByte()
	if err != nil {
		return
	}
	if b != '[' && b != 'O' {
		return
	}
	for br.Buffered() > 0 {
		c, err := br.ReadByte()
		if err != nil {
			return
		}
		// final bytes of a CSI sequence are 0x40..0x7e
		if c >= 0x40 && c <= 0x7e {
			return
		}
	}
}
