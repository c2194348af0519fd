package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"report.pdf", "report.pdf", true},
		{"  report.pdf  ", "report.pdf", true},
		{"/home/u/report.pdf", "report.pdf", true},
		{"../../etc/passwd", "passwd", true},
		{"", "", false},
		{".", "", false},
		{"..", "", false},
		{"/", "", false},
		{"a/..", "", false},
	}
	for _, tt := range tests {
		got, ok := sanitizeFileName(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("sanitizeFileName(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSaveFileReportsCompleted(t *testing.T) {
	dir := t.TempDir()
	statusCh := make(chan downloadStatus, 1)
	done := make(chan struct{})
	defer close(done)

	saveFile(3, "notes.txt", []byte("body"), dir, statusCh, done, zerolog.Nop())

	st := <-statusCh
	if st.index != 3 || st.state != Completed {
		t.Fatalf("status = %+v", st)
	}
	if st.path != filepath.Join(dir, "notes.txt") {
		t.Errorf("path = %q", st.path)
	}
	content, err := os.ReadFile(st.path)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "body" {
		t.Errorf("content = %q", content)
	}
}

func TestSaveFileCreatesMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "downloads")
	statusCh := make(chan downloadStatus, 1)
	done := make(chan struct{})
	defer close(done)

	saveFile(0, "a.txt", []byte("x"), dir, statusCh, done, zerolog.Nop())
	if st := <-statusCh; st.state != Completed {
		t.Fatalf("status = %+v", st)
	}
}

func TestSaveFileReportsFailures(t *testing.T) {
	statusCh := make(chan downloadStatus, 1)
	done := make(chan struct{})
	defer close(done)

	saveFile(1, "..", []byte("x"), t.TempDir(), statusCh, done, zerolog.Nop())
	if st := <-statusCh; st.state != Failed {
		t.Fatalf("unsafe name: status = %+v", st)
	}
}

func TestSaveFileGivesUpWhenLoopIsGone(t *testing.T) {
	dir := t.TempDir()
	statusCh := make(chan downloadStatus) // unbuffered, nobody reading
	done := make(chan struct{})
	close(done)

	finished := make(chan struct{})
	go func() {
		saveFile(0, "a.txt", []byte("x"), dir, statusCh, done, zerolog.Nop())
		close(finished)
	}()
	<-finished
}
