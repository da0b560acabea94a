// Package batch drives OCR engines over a directory of images and aggregates
// the per-image outcomes into a persisted run report.
package batch

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"ocrpipe/ocr"
)

// Outcome records the result of processing one image. It is a two-variant
// record: either the success fields (Seconds, TextCount, Items) or Err are
// populated, never both.
type Outcome struct {
	ImageName string
	ImagePath string
	Seconds   float64
	TextCount int
	Items     []ocr.Item
	Err       string
}

// Failed reports whether this outcome is the failure variant.
func (o Outcome) Failed() bool { return o.Err != "" }

type successOutcome struct {
	ImageName string     `json:"image_name"`
	ImagePath string     `json:"image_path"`
	Seconds   float64    `json:"processing_time"`
	TextCount int        `json:"text_count"`
	Items     []ocr.Item `json:"ocr_result"`
}

type failureOutcome struct {
	ImageName string  `json:"image_name"`
	ImagePath string  `json:"image_path"`
	Seconds   float64 `json:"processing_time"`
	Error     string  `json:"error"`
}

// MarshalJSON emits exactly one of the two wire variants.
func (o Outcome) MarshalJSON() ([]byte, error) {
	if o.Failed() {
		return json.Marshal(failureOutcome{
			ImageName: o.ImageName,
			ImagePath: o.ImagePath,
			Seconds:   0,
			Error:     o.Err,
		})
	}
	items := o.Items
	if items == nil {
		items = []ocr.Item{}
	}
	return json.Marshal(successOutcome{
		ImageName: o.ImageName,
		ImagePath: o.ImagePath,
		Seconds:   o.Seconds,
		TextCount: o.TextCount,
		Items:     items,
	})
}

// UnmarshalJSON accepts either wire variant.
func (o *Outcome) UnmarshalJSON(data []byte) error {
	var raw struct {
		ImageName string     `json:"image_name"`
		ImagePath string     `json:"image_path"`
		Seconds   float64    `json:"processing_time"`
		TextCount int        `json:"text_count"`
		Items     []ocr.Item `json:"ocr_result"`
		Error     string     `json:"error"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*o = Outcome{
		ImageName: raw.ImageName,
		ImagePath: raw.ImagePath,
		Seconds:   raw.Seconds,
		TextCount: raw.TextCount,
		Items:     raw.Items,
		Err:       raw.Error,
	}
	return nil
}

// Report is the aggregate record of one batch run. It is append-only while
// the run is in flight and never mutated after Save.
type Report struct {
	TotalImages int       `json:"total_images"`
	TotalTime   float64   `json:"total_time"`
	Results     []Outcome `json:"results"`
}

// Append adds one outcome; outcomes keep discovery order.
func (r *Report) Append(o Outcome) {
	r.Results = append(r.Results, o)
}

// Save writes the report as indented JSON. It is called exactly once, at the
// end of a run.
func (r *Report) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// roundSeconds reduces a duration to seconds at the millisecond precision
// the report serializes.
func roundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*1000) / 1000
}
