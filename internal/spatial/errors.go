package spatial

import (
	"errors"
	"fmt"
)

// ErrInitialization wraps every failure during Initialize. Engine failures
// are classified independently from capture failures so the UI can tell "the
// audio graph couldn't start" apart from a capture problem.
var ErrInitialization = errors.New("audio graph initialization failed")

func errConfig(msg string) error {
	return fmt.Errorf("%w: %s", ErrInitialization, msg)
}

// Explain returns actionable text for an engine failure. The UI never shows
// a raw error with no explanation.
func Explain(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrInitialization) {
		return "The spatial audio graph could not start. Reload the page and try again."
	}
	return "Something went wrong with the spatial audio engine."
}
