// Package paddle adapts the PaddleOCR toolchain. The engine shells out to a
// runner binary that performs detection and recognition and prints the result
// as JSON on stdout; the runner is opaque here, the package only normalizes
// its output into the canonical result shape. Current runners emit a
// structured per-page object (rec_texts/rec_scores/dt_polys); older releases
// emit a nested list of lines. Both shapes are recognized, see parse.go.
package paddle

import (
	"context"
	"fmt"
	"os/exec"

	"ocrpipe/observability"
	"ocrpipe/ocr"
)

const defaultRunner = "paddleocr-json"

func init() {
	ocr.Register("paddle", func(cfg ocr.Config) (ocr.Engine, error) {
		return New(cfg)
	})
}

// Engine runs PaddleOCR through its JSON runner binary.
type Engine struct {
	runner   string
	lang     string
	angleCls bool
	log      observability.Logger
}

// New verifies the runner binary is on PATH and returns the engine. A missing
// binary fails with ErrEngineUnavailable.
func New(cfg ocr.Config) (*Engine, error) {
	runner := cfg.Runner
	if runner == "" {
		runner = defaultRunner
	}
	path, err := exec.LookPath(runner)
	if err != nil {
		return nil, fmt.Errorf("%w: %s not found in PATH (install PaddleOCR and its JSON runner)",
			ocr.ErrEngineUnavailable, runner)
	}
	lang := cfg.Language
	if lang == "" {
		lang = "ch"
	}
	log := cfg.Logger
	if log == nil {
		log = observability.NopLogger{}
	}
	log.Info("paddle engine ready",
		observability.String("runner", path),
		observability.String("lang", lang))
	return &Engine{runner: path, lang: lang, angleCls: cfg.AngleClassifier, log: log}, nil
}

func (e *Engine) Name() string { return "PaddleOCR" }

// Recognize invokes the runner on one image and normalizes its JSON output.
// Runner failures are per-image errors, reported as *ocr.RecognitionError.
func (e *Engine) Recognize(ctx context.Context, imagePath string) (ocr.Result, error) {
	args := []string{"--image", imagePath, "--lang", e.lang}
	if e.angleCls {
		args = append(args, "--use-angle-cls")
	}
	out, err := exec.CommandContext(ctx, e.runner, args...).Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && len(exitErr.Stderr) > 0 {
			err = fmt.Errorf("%s: %s", err, exitErr.Stderr)
		}
		return ocr.Result{}, &ocr.RecognitionError{Engine: e.Name(), Image: imagePath, Err: err}
	}
	res, err := parseOutput(out)
	if err != nil {
		return ocr.Result{}, &ocr.RecognitionError{Engine: e.Name(), Image: imagePath, Err: err}
	}
	return res, nil
}
