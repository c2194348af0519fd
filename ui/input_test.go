package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/2jungg/gomeet/session"
)

func collectKeys(t *testing.T, input string) []session.KeyEvent {
	t.Helper()
	ch := ReadKeys(strings.NewReader(input))
	var out []session.KeyEvent
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, ev)
		case <-deadline:
			t.Fatal("key channel never closed")
		}
	}
}

func TestReadKeysDecoding(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []session.KeyEvent
	}{
		{
			name:  "printable runes",
			input: "qim",
			want: []session.KeyEvent{
				{Kind: session.KeyRune, Rune: 'q'},
				{Kind: session.KeyRune, Rune: 'i'},
				{Kind: session.KeyRune, Rune: 'm'},
			},
		},
		{
			name:  "carriage return and newline are both enter",
			input: "\r\n",
			want: []session.KeyEvent{
				{Kind: session.KeyEnter},
				{Kind: session.KeyEnter},
			},
		},
		{
			name:  "delete and backspace",
			input: "\x7f\b",
			want: []session.KeyEvent{
				{Kind: session.KeyBackspace},
				{Kind: session.KeyBackspace},
			},
		},
		{
			name:  "bare esc at end of input",
			input: "a\x1b",
			want: []session.KeyEvent{
				{Kind: session.KeyRune, Rune: 'a'},
				{Kind: session.KeyEsc},
			},
		},
		{
			name:  "arrow key sequence is swallowed",
			input: "a\x1b[Ab",
			want: []session.KeyEvent{
				{Kind: session.KeyRune, Rune: 'a'},
				{Kind: session.KeyRune, Rune: 'b'},
			},
		},
		{
			name:  "ss3 function key sequence is swallowed",
			input: "a\x1bOPb",
			want: []session.KeyEvent{
				{Kind: session.KeyRune, Rune: 'a'},
				{Kind: session.KeyRune, Rune: 'b'},
			},
		},
		{
			name:  "multibyte runes pass through",
			input: "héllo",
			want: []session.KeyEvent{
				{Kind: session.KeyRune, Rune: 'h'},
				{Kind: session.KeyRune, Rune: 'é'},
				{Kind: session.KeyRune, Rune: 'l'},
				{Kind: session.KeyRune, Rune: 'l'},
				{Kind: session.KeyRune, Rune: 'o'},
			},
		},
		{
			name:  "control bytes are dropped",
			input: "a\x01\x02b",
			want: []session.KeyEvent{
				{Kind: session.KeyRune, Rune: 'a'},
				{Kind: session.KeyRune, Rune: 'b'},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collectKeys(t, tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("events = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("event %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestReadKeysClosesOnEOF(t *testing.T) {
	ch := ReadKeys(strings.NewReader(""))
	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("unexpected event from empty input")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed on EOF")
	}
}
