// Package tesseract adapts the Tesseract native library through gosseract.
// Unlike the text-only CLI backend it reports true word-level geometry and a
// native per-word confidence.
package tesseract

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"ocrpipe/observability"
	"ocrpipe/ocr"
)

func init() {
	ocr.Register("tesseract", func(cfg ocr.Config) (ocr.Engine, error) {
		return New(cfg)
	})
}

// Engine runs Tesseract through short-lived gosseract clients, one per
// Recognize call, so an engine instance has no shared native state and is
// safe to use from a worker pool.
type Engine struct {
	clientFactory func() *gosseract.Client
	lang          string
	log           observability.Logger
}

// New verifies the requested language pack is installed and returns the
// engine. Missing trained data is an engine-unavailable condition, not a
// per-image failure.
func New(cfg ocr.Config) (*Engine, error) {
	lang := cfg.Language
	if lang == "" {
		lang = "eng"
	}
	available, err := gosseract.GetAvailableLanguages()
	if err != nil {
		return nil, fmt.Errorf("%w: tesseract language probe failed: %v",
			ocr.ErrEngineUnavailable, err)
	}
	found := false
	for _, l := range available {
		if l == lang {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: tesseract language %q not installed (have: %s)",
			ocr.ErrEngineUnavailable, lang, strings.Join(available, ", "))
	}
	log := cfg.Logger
	if log == nil {
		log = observability.NopLogger{}
	}
	log.Info("tesseract engine ready", observability.String("lang", lang))
	return &Engine{clientFactory: gosseract.NewClient, lang: lang, log: log}, nil
}

func (e *Engine) Name() string { return "Tesseract" }

// Recognize extracts word-level items from one image.
func (e *Engine) Recognize(ctx context.Context, imagePath string) (ocr.Result, error) {
	c := e.clientFactory()
	defer c.Close()

	if err := c.SetLanguage(e.lang); err != nil {
		return ocr.Result{}, &ocr.RecognitionError{Engine: e.Name(), Image: imagePath, Err: err}
	}
	if err := c.SetImage(imagePath); err != nil {
		return ocr.Result{}, &ocr.RecognitionError{Engine: e.Name(), Image: imagePath, Err: err}
	}

	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		// Word geometry can fail on some installations; fall back to the
		// plain text path with a boxless item and unknown confidence.
		text, terr := c.Text()
		if terr != nil {
			return ocr.Result{}, &ocr.RecognitionError{Engine: e.Name(), Image: imagePath, Err: terr}
		}
		var res ocr.Result
		if text = strings.TrimSpace(text); text != "" {
			res.Append(ocr.Item{Text: text})
		}
		return res, nil
	}
	return itemsFromBoxes(boxes), nil
}

// itemsFromBoxes converts gosseract word boxes into canonical items. Empty
// words are dropped; confidence arrives as a 0-100 percentage.
func itemsFromBoxes(boxes []gosseract.BoundingBox) ocr.Result {
	var res ocr.Result
	for _, b := range boxes {
		word := strings.TrimSpace(b.Word)
		if word == "" {
			continue
		}
		box := ocr.RectPolygon(
			float64(b.Box.Min.X),
			float64(b.Box.Min.Y),
			float64(b.Box.Dx()),
			float64(b.Box.Dy()),
		)
		res.Append(ocr.Item{
			Text:       word,
			Confidence: ocr.RoundConfidence(b.Confidence / 100),
			Box:        &box,
		})
	}
	return res
}
