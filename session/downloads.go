package session

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

type downloadStatus struct {
	index int
	state DownloadState
	path  string
}

// downloadsDir picks the directory received files land in: an explicit
// override, else ~/Downloads, else the working directory.
func downloadsDir(override string) string {
	if override != "" {
		return override
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Downloads")
}

// sanitizeFileName flattens an inbound file name to its base component. A
// hostile peer can send "../../x"; everything but the final element is
// discarded. Names that reduce to nothing are rejected.
func sanitizeFileName(name string) (string, bool) {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "" || base == "." || base == ".." || base == string(filepath.Separator) {
		return "", false
	}
	return base, true
}

// saveFile writes one received file and reports the terminal state on
// statusCh. Runs on its own goroutine; it never mutates the downloads list
// directly, only the loop does, driven by the status channel. The done
// channel keeps the goroutine from leaking if the loop exits first.
func saveFile(index int, fileName string, content []byte, dir string, statusCh chan<- downloadStatus, done <-chan struct{}, log zerolog.Logger) {
	report := func(st downloadStatus) {
		select {
		case statusCh <- st:
		case <-done:
		}
	}
	base, ok := sanitizeFileName(fileName)
	if !ok {
		log.Warn().Str("file", fileName).Msg("rejected unsafe file name")
		report(downloadStatus{index: index, state: Failed})
		return
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Error().Err(err).Str("dir", dir).Msg("cannot create downloads directory")
		report(downloadStatus{index: index, state: Failed})
		return
	}
	path := filepath.Join(dir, base)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		log.Error().Err(err).Str("path", path).Msg("file save failed")
		report(downloadStatus{index: index, state: Failed})
		return
	}
	log.Info().Str("path", path).Int("bytes", len(content)).Msg("file saved")
	report(downloadStatus{index: index, state: Completed, path: path})
}
