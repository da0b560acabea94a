// Package vision adapts the macOS Vision framework (VNRecognizeTextRequest).
// The framework reports bounding boxes in a bottom-left-origin coordinate
// system with normalized [0,1] fractions; normalize converts them to
// top-left-origin pixel quadrilaterals. The darwin build talks to Vision
// through a small Objective-C bridge; on other platforms construction fails
// with ErrEngineUnavailable.
package vision

import (
	"ocrpipe/observability"
	"ocrpipe/ocr"
)

func init() {
	ocr.Register("vision", func(cfg ocr.Config) (ocr.Engine, error) {
		return New(cfg)
	})
}

// Engine recognizes text with the OS-native Vision API.
type Engine struct {
	lang string
	fast bool
	log  observability.Logger
}

func (e *Engine) Name() string { return "macOS Vision" }

// observation is one recognized fragment as reported by the bridge: text,
// native confidence, and the normalized bottom-left-origin bounding box.
type observation struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	W          float64 `json:"w"`
	H          float64 `json:"h"`
}

// frame is the full bridge payload for one image.
type frame struct {
	Width        int           `json:"width"`
	Height       int           `json:"height"`
	Observations []observation `json:"observations"`
}

// normalize converts Vision observations into the canonical result. For a
// normalized box (ox, oy, ow, oh) against image dimensions W x H the pixel
// rectangle is x = ox*W, y = (1-oy-oh)*H, w = ow*W, h = oh*H; corners are
// emitted top-left, top-right, bottom-right, bottom-left.
func normalize(f frame) ocr.Result {
	var res ocr.Result
	w, h := float64(f.Width), float64(f.Height)
	for _, o := range f.Observations {
		box := ocr.RectPolygon(o.X*w, (1-o.Y-o.H)*h, o.W*w, o.H*h)
		res.Append(ocr.Item{
			Text:       o.Text,
			Confidence: ocr.RoundConfidence(o.Confidence),
			Box:        &box,
		})
	}
	return res
}
