package session

import (
	"errors"

	"github.com/ncruces/zenity"
)

// FilePicker chooses a file to send. Pick may block; the loop tolerates the
// freeze while the dialog is open. An empty path with a nil error means the
// user cancelled.
type FilePicker interface {
	Pick() (string, error)
}

// DialogPicker opens the platform's native file chooser.
type DialogPicker struct{}

// Pick shows the dialog and returns the selected path.
func (DialogPicker) Pick() (string, error) {
	path, err := zenity.SelectFile(zenity.Title("Send file"))
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return "", nil
		}
		return "", err
	}
	return path, nil
}
