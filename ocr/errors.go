package ocr

import (
	"errors"
	"fmt"
)

// ErrEngineUnavailable reports that a required native dependency, binary, or
// platform is missing. It is raised at construction time, never per image.
var ErrEngineUnavailable = errors.New("ocr: engine unavailable")

// ErrUnsupportedEngine reports an unknown engine tag passed to New.
var ErrUnsupportedEngine = errors.New("ocr: unsupported engine")

// RecognitionError is a recoverable per-image failure. The batch processor
// converts it into a failure outcome and continues; it never aborts a run.
type RecognitionError struct {
	Engine string
	Image  string
	Err    error
}

func (e *RecognitionError) Error() string {
	return fmt.Sprintf("%s: recognize %s: %v", e.Engine, e.Image, e.Err)
}

func (e *RecognitionError) Unwrap() error { return e.Err }
