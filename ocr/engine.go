package ocr

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"ocrpipe/observability"
)

// Engine is the contract every OCR backend implements: one image path in, one
// canonical Result out. Recognize blocks for the full duration of the native
// call; recoverable failures surface as *RecognitionError.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, imagePath string) (Result, error)
}

// Config carries construction settings common to the backends. Each backend
// reads the fields it understands and applies its own defaults for the rest.
type Config struct {
	// Language is the engine-native language code (e.g. "ch" for PaddleOCR,
	// "zh-Hans" for Vision, "eng" for Tesseract).
	Language string
	// AngleClassifier toggles text-angle classification where supported.
	AngleClassifier bool
	// FastRecognition trades accuracy for speed where supported.
	FastRecognition bool
	// Timeout bounds a single subprocess invocation for CLI-backed engines.
	Timeout time.Duration
	// Runner overrides the subprocess command for CLI-backed engines.
	Runner string
	// Logger receives per-image diagnostics. Defaults to NopLogger.
	Logger observability.Logger
}

// Builder constructs an engine from a resolved Config. Builders perform every
// environment check (platform, binary on PATH, native library probe) before
// returning, so construction failure is the only place ErrEngineUnavailable
// can originate.
type Builder func(cfg Config) (Engine, error)

var registry = map[string]Builder{}

// Register makes a backend available under the given tag. It is meant to be
// called from backend package init functions; later registrations under the
// same tag win, which lets tests install fakes.
func Register(tag string, b Builder) {
	registry[strings.ToLower(tag)] = b
}

// Tags returns the registered engine tags in sorted order.
func Tags() []string {
	tags := make([]string, 0, len(registry))
	for tag := range registry {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// New builds the engine registered under tag. Tags are case-insensitive.
// Unknown tags fail with ErrUnsupportedEngine.
func New(tag string, opts ...Option) (Engine, error) {
	cfg := Config{
		AngleClassifier: true,
		Logger:          observability.NopLogger{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	b, ok := registry[strings.ToLower(tag)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %s)",
			ErrUnsupportedEngine, tag, strings.Join(Tags(), ", "))
	}
	return b(cfg)
}
