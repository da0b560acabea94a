package annotate

import (
	"image"
	"image/color"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"ocrpipe/ocr"
)

var green = color.NRGBA{G: 255, A: 255}

const (
	markerRadius = 12
	lineWidth    = 2
)

// drawPolygon outlines the quadrilateral by connecting consecutive corners
// and closing back to the first.
func drawPolygon(img *image.NRGBA, poly ocr.Polygon, c color.NRGBA) {
	for i := range poly {
		next := poly[(i+1)%len(poly)]
		drawLine(img, int(poly[i].X), int(poly[i].Y), int(next.X), int(next.Y), c)
	}
}

// drawLine rasterizes a 2px-wide segment with Bresenham's algorithm,
// thickening each plotted pixel into a small block.
func drawLine(img *image.NRGBA, x1, y1, x2, y2 int, c color.NRGBA) {
	bounds := img.Bounds()
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy

	for {
		for ox := 0; ox < lineWidth; ox++ {
			for oy := 0; oy < lineWidth; oy++ {
				setPixel(img, bounds, x1+ox, y1+oy, c)
			}
		}
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// fillCircle paints a filled disc, clipped to the image bounds.
func fillCircle(img *image.NRGBA, cx, cy, r int, c color.NRGBA) {
	bounds := img.Bounds()
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				setPixel(img, bounds, x, y, c)
			}
		}
	}
}

// drawMarkerNumber centers the 1-based index inside a marker circle using
// the built-in bitmap face, which is always available.
func drawMarkerNumber(img *image.NRGBA, cx, cy, n int) {
	s := strconv.Itoa(n)
	face := basicfont.Face7x13
	width := font.MeasureString(face, s).Ceil()
	d := &font.Drawer{
		Dst:  img,
		Src:  image.Black,
		Face: face,
		Dot:  fixed.P(cx-width/2, cy+face.Metrics().Ascent.Ceil()/2),
	}
	d.DrawString(s)
}

// drawLabel renders text with its top edge at (x, top).
func drawLabel(img *image.NRGBA, face font.Face, text string, x, top int) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(green),
		Face: face,
		Dot:  fixed.P(x, top+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
}

func setPixel(img *image.NRGBA, bounds image.Rectangle, x, y int, c color.NRGBA) {
	if x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
		img.SetNRGBA(x, y, c)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
