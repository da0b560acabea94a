package paddle

import (
	"bytes"
	"encoding/json"
	"fmt"

	"ocrpipe/ocr"
)

// structuredPage mirrors the dictionary shape emitted by current PaddleOCR
// releases. Scores and polygons are positional against rec_texts and may be
// shorter; missing entries degrade to zero confidence and boxless items.
type structuredPage struct {
	RecTexts  []string       `json:"rec_texts"`
	RecScores []float64      `json:"rec_scores"`
	DtPolys   [][][2]float64 `json:"dt_polys"`
}

// parseOutput normalizes runner output. The top level is a list of pages;
// each page is either the structured object form or the legacy list-of-lines
// form. The shape is decided by an explicit check on the leading token, not
// by trying one decode and falling back on error.
func parseOutput(data []byte) (ocr.Result, error) {
	var res ocr.Result
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return res, nil
	}
	var pages []json.RawMessage
	if err := json.Unmarshal(data, &pages); err != nil {
		return res, fmt.Errorf("parse runner output: %w", err)
	}
	for _, page := range pages {
		page = bytes.TrimSpace(page)
		if len(page) == 0 || bytes.Equal(page, []byte("null")) {
			continue
		}
		switch page[0] {
		case '{':
			if err := normalizeStructured(page, &res); err != nil {
				return ocr.Result{}, err
			}
		case '[':
			normalizeLegacy(page, &res)
		default:
			return ocr.Result{}, fmt.Errorf("unrecognized page shape: %.20s", page)
		}
	}
	return res, nil
}

func normalizeStructured(raw json.RawMessage, res *ocr.Result) error {
	var page structuredPage
	if err := json.Unmarshal(raw, &page); err != nil {
		return fmt.Errorf("parse structured page: %w", err)
	}
	for i, text := range page.RecTexts {
		var score float64
		if i < len(page.RecScores) {
			score = page.RecScores[i]
		}
		item := ocr.Item{Text: text, Confidence: ocr.RoundConfidence(score)}
		if i < len(page.DtPolys) {
			item.Box = polygonFrom(page.DtPolys[i])
		}
		res.Append(item)
	}
	return nil
}

// normalizeLegacy handles the old list-of-lines form:
// [[[[x,y]x4], ["text", conf]], ...]. Malformed lines are skipped rather than
// failing the page, matching how lenient the legacy consumers had to be.
func normalizeLegacy(raw json.RawMessage, res *ocr.Result) {
	var lines []json.RawMessage
	if json.Unmarshal(raw, &lines) != nil {
		return
	}
	for _, rawLine := range lines {
		var line []json.RawMessage
		if json.Unmarshal(rawLine, &line) != nil || len(line) < 2 {
			continue
		}
		var pair []json.RawMessage
		if json.Unmarshal(line[1], &pair) != nil || len(pair) < 2 {
			continue
		}
		var text string
		if json.Unmarshal(pair[0], &text) != nil {
			continue
		}
		var conf float64
		_ = json.Unmarshal(pair[1], &conf)
		var pts [][2]float64
		_ = json.Unmarshal(line[0], &pts)
		res.Append(ocr.Item{
			Text:       text,
			Confidence: ocr.RoundConfidence(conf),
			Box:        polygonFrom(pts),
		})
	}
}

// polygonFrom converts raw detector points into a Polygon, or nil unless the
// shape is a well-formed quadrilateral.
func polygonFrom(pts [][2]float64) *ocr.Polygon {
	if len(pts) != 4 {
		return nil
	}
	var p ocr.Polygon
	for i, pt := range pts {
		p[i] = ocr.Point{X: pt[0], Y: pt[1]}
	}
	return &p
}
