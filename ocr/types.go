package ocr

import (
	"encoding/json"
	"math"
)

// Point is a 2D coordinate in image pixel space with the origin in the
// upper-left corner. It serializes as a two-element array [x, y].
type Point struct {
	X float64
	Y float64
}

// MarshalJSON encodes the point as [x, y].
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.X, p.Y})
}

// UnmarshalJSON decodes a two-element [x, y] array.
func (p *Point) UnmarshalJSON(data []byte) error {
	var v [2]float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	p.X, p.Y = v[0], v[1]
	return nil
}

// Polygon is a quadrilateral detection region ordered clockwise from the
// top-left corner. Index 0 is the anchor downstream drawing code uses for
// marker and label placement.
type Polygon [4]Point

// RectPolygon builds the axis-aligned polygon for a pixel rectangle, emitting
// corners in top-left, top-right, bottom-right, bottom-left order.
func RectPolygon(x, y, w, h float64) Polygon {
	return Polygon{
		{X: x, Y: y},
		{X: x + w, Y: y},
		{X: x + w, Y: y + h},
		{X: x, Y: y + h},
	}
}

// Center returns the centroid of the polygon.
func (p Polygon) Center() Point {
	var cx, cy float64
	for _, pt := range p {
		cx += pt.X
		cy += pt.Y
	}
	return Point{X: cx / 4, Y: cy / 4}
}

// Item is a single recognized text fragment. Box is nil when the backend
// cannot provide geometry; it is never a partial shape.
type Item struct {
	Text       string   `json:"text"`
	Confidence float64  `json:"confidence"`
	Box        *Polygon `json:"box"`

	// Synthetic marks a confidence fabricated by a backend that has no
	// native signal (the text-only CLI tool reports a constant 1.0). It is
	// deliberately excluded from the wire format.
	Synthetic bool `json:"-"`
}

// Result is the canonical recognition output shared by every engine. Items
// preserve engine-reported order. Polys mirrors the boxes of the items that
// have geometry, in emission order, so len(Polys) never exceeds len(Items).
type Result struct {
	Items []Item
	Polys []Polygon
}

// Len reports the number of recognized items.
func (r Result) Len() int { return len(r.Items) }

// Append adds an item and, when it carries geometry, the matching polygon.
func (r *Result) Append(item Item) {
	r.Items = append(r.Items, item)
	if item.Box != nil {
		r.Polys = append(r.Polys, *item.Box)
	}
}

// RoundConfidence normalizes a confidence value to four decimal places, the
// precision every adapter stores and the report serializes.
func RoundConfidence(c float64) float64 {
	return math.Round(c*1e4) / 1e4
}
