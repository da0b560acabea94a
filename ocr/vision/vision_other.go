//go:build !darwin || !cgo

package vision

import (
	"context"
	"fmt"

	"ocrpipe/ocr"
)

// New always fails off macOS: the Vision framework is an OS facility, so the
// missing platform is an engine-unavailable condition surfaced at
// construction time.
func New(cfg ocr.Config) (*Engine, error) {
	return nil, fmt.Errorf("%w: the Vision engine requires macOS", ocr.ErrEngineUnavailable)
}

func (e *Engine) Recognize(ctx context.Context, imagePath string) (ocr.Result, error) {
	return ocr.Result{}, fmt.Errorf("%w: the Vision engine requires macOS", ocr.ErrEngineUnavailable)
}
