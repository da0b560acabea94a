package ocr

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"ocrpipe/observability"
)

type fakeEngine struct {
	cfg Config
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Recognize(context.Context, string) (Result, error) {
	return Result{}, nil
}

func TestNewUnknownTag(t *testing.T) {
	_, err := New("no-such-engine")
	if !errors.Is(err, ErrUnsupportedEngine) {
		t.Fatalf("expected ErrUnsupportedEngine, got %v", err)
	}
}

func TestNewDispatchesCaseInsensitively(t *testing.T) {
	var got Config
	Register("Fake-Factory", func(cfg Config) (Engine, error) {
		got = cfg
		return &fakeEngine{cfg: cfg}, nil
	})

	eng, err := New("FAKE-factory",
		WithLanguage("en"),
		WithAngleClassifier(false),
		WithFastRecognition(true),
		WithTimeout(5*time.Second),
		WithRunner("/usr/local/bin/tool"),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if eng.Name() != "fake" {
		t.Fatalf("unexpected engine: %s", eng.Name())
	}
	if got.Language != "en" || got.AngleClassifier || !got.FastRecognition {
		t.Fatalf("options not applied: %+v", got)
	}
	if got.Timeout != 5*time.Second || got.Runner != "/usr/local/bin/tool" {
		t.Fatalf("options not applied: %+v", got)
	}
	if got.Logger == nil {
		t.Fatalf("logger must default to NopLogger")
	}
}

func TestNewConstructionFailurePropagates(t *testing.T) {
	Register("fake-broken", func(Config) (Engine, error) {
		return nil, ErrEngineUnavailable
	})
	_, err := New("fake-broken")
	if !errors.Is(err, ErrEngineUnavailable) {
		t.Fatalf("expected ErrEngineUnavailable, got %v", err)
	}
}

func TestTagsSortedAndListed(t *testing.T) {
	Register("fake-z", func(Config) (Engine, error) { return nil, nil })
	Register("fake-a", func(Config) (Engine, error) { return nil, nil })
	tags := Tags()
	for i := 1; i < len(tags); i++ {
		if tags[i-1] > tags[i] {
			t.Fatalf("tags not sorted: %v", tags)
		}
	}
	_, err := New("missing")
	if err == nil || !strings.Contains(err.Error(), "fake-a") {
		t.Fatalf("error should list supported tags: %v", err)
	}
}

func TestWithFastRecognitionTogglesBothWays(t *testing.T) {
	var cfg Config
	WithFastRecognition(true)(&cfg)
	if !cfg.FastRecognition {
		t.Fatalf("enable not applied: %+v", cfg)
	}
	WithFastRecognition(false)(&cfg)
	if cfg.FastRecognition {
		t.Fatalf("disable not applied: %+v", cfg)
	}
}

func TestWithLoggerNilKeepsDefault(t *testing.T) {
	cfg := Config{Logger: observability.NopLogger{}}
	WithLogger(nil)(&cfg)
	if cfg.Logger == nil {
		t.Fatalf("nil logger should be rejected")
	}
}
