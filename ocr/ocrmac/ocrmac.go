// Package ocrmac wraps the ocrmac command-line tool. The tool prints
// recognized text only; it reports no geometry and no confidence. The adapter
// therefore emits a single item whose confidence is a constant 1.0 (a
// documented fiction flagged via Item.Synthetic, not a measurement) and whose
// box is the whole-image rectangle, or no box at all when the image cannot
// be decoded locally.
package ocrmac

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"ocrpipe/observability"
	"ocrpipe/ocr"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	defaultBinary  = "ocrmac"
	defaultTimeout = 30 * time.Second
	probeTimeout   = 5 * time.Second
)

func init() {
	ocr.Register("ocrmac", func(cfg ocr.Config) (ocr.Engine, error) {
		return New(cfg)
	})
}

// runnerFunc executes the tool against one image and returns its stdout.
type runnerFunc func(ctx context.Context, imagePath string) ([]byte, error)

// Engine shells out to the ocrmac binary per image.
type Engine struct {
	timeout time.Duration
	run     runnerFunc
	log     observability.Logger
}

// New checks the platform and probes the binary before returning. Both checks
// happen here so a broken installation fails the run up front.
func New(cfg ocr.Config) (*Engine, error) {
	if runtime.GOOS != "darwin" {
		return nil, fmt.Errorf("%w: ocrmac requires macOS", ocr.ErrEngineUnavailable)
	}
	bin := cfg.Runner
	if bin == "" {
		bin = defaultBinary
	}
	if _, err := exec.LookPath(bin); err != nil {
		return nil, fmt.Errorf("%w: %s not found in PATH (brew install ocrmac)",
			ocr.ErrEngineUnavailable, bin)
	}
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()
	if err := exec.CommandContext(ctx, bin, "--version").Run(); err != nil {
		return nil, fmt.Errorf("%w: %s is installed but not runnable: %v",
			ocr.ErrEngineUnavailable, bin, err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	log := cfg.Logger
	if log == nil {
		log = observability.NopLogger{}
	}
	log.Info("ocrmac engine ready", observability.String("binary", bin))
	return &Engine{timeout: timeout, run: commandRunner(bin), log: log}, nil
}

func (e *Engine) Name() string { return "ocrmac" }

// Recognize runs the tool under the configured timeout. A non-zero exit or a
// timeout produces an empty result, not an error; the batch keeps going.
func (e *Engine) Recognize(ctx context.Context, imagePath string) (ocr.Result, error) {
	rctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	out, err := e.run(rctx, imagePath)
	if err != nil {
		if errors.Is(rctx.Err(), context.DeadlineExceeded) {
			e.log.Warn("ocrmac timed out",
				observability.String("image", imagePath),
				observability.Duration("timeout", e.timeout))
		} else {
			e.log.Warn("ocrmac exited abnormally",
				observability.String("image", imagePath),
				observability.Error("err", err))
		}
		return ocr.Result{}, nil
	}

	text := strings.TrimSpace(string(out))
	if text == "" {
		return ocr.Result{}, nil
	}

	item := ocr.Item{Text: text, Confidence: 1.0, Synthetic: true}
	if w, h, err := imageSize(imagePath); err == nil {
		// The tool gives no detection geometry; stand in the whole image.
		box := ocr.RectPolygon(0, 0, float64(w), float64(h))
		item.Box = &box
	}
	var res ocr.Result
	res.Append(item)
	return res, nil
}

func commandRunner(bin string) runnerFunc {
	return func(ctx context.Context, imagePath string) ([]byte, error) {
		return exec.CommandContext(ctx, bin, imagePath).Output()
	}
}

func imageSize(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}
