// Package annotate renders recognition geometry onto copies of source
// images. For each annotated image it produces two derived files: one with
// numbered detection boxes and one with the recognized text drawn above each
// box. The source file is never modified.
package annotate

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"

	"ocrpipe/observability"
	"ocrpipe/ocr"
)

const (
	numberedPrefix = "annotated_"
	labeledPrefix  = "annotated_with_text_"

	maxLabelRunes = 20
)

// Annotator writes annotated copies of images into OutDir.
type Annotator struct {
	outDir string
	log    observability.Logger

	faceOnce sync.Once
	face     font.Face
}

func New(outDir string, log observability.Logger) *Annotator {
	if log == nil {
		log = observability.NopLogger{}
	}
	return &Annotator{outDir: outDir, log: log}
}

// Save writes the two annotated variants for one image. It is a no-op when
// the result carries no geometry, so an unmodified duplicate is never
// produced. Marker numbering follows item order: marker k corresponds to
// res.Items[k-1] even when earlier items are boxless.
func (a *Annotator) Save(imagePath string, res ocr.Result) error {
	if len(res.Polys) == 0 {
		return nil
	}
	src, err := imaging.Open(imagePath)
	if err != nil {
		return fmt.Errorf("open %s: %w", imagePath, err)
	}
	name := filepath.Base(imagePath)

	numbered := drawNumberedBoxes(src, res.Items)
	numberedPath := outputPath(a.outDir, numberedPrefix+name)
	if err := imaging.Save(numbered, numberedPath); err != nil {
		return fmt.Errorf("save %s: %w", numberedPath, err)
	}
	a.log.Info("annotated image saved", observability.String("path", numberedPath))

	labeled := drawTextLabels(src, res.Items, a.labelFace())
	labeledPath := outputPath(a.outDir, labeledPrefix+name)
	if err := imaging.Save(labeled, labeledPath); err != nil {
		return fmt.Errorf("save %s: %w", labeledPath, err)
	}
	a.log.Info("text-labeled image saved", observability.String("path", labeledPath))
	return nil
}

func (a *Annotator) labelFace() font.Face {
	a.faceOnce.Do(func() {
		a.face = loadLabelFace(16)
	})
	return a.face
}

// outputPath joins the output directory and file name, swapping extensions
// that have no Go encoder (webp) for png.
func outputPath(dir, name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".webp" {
		name = strings.TrimSuffix(name, filepath.Ext(name)) + ".png"
	}
	return filepath.Join(dir, name)
}

// drawNumberedBoxes outlines every detection polygon and stamps a filled
// circular marker holding the 1-based item index at the polygon's first
// point.
func drawNumberedBoxes(src image.Image, items []ocr.Item) *image.NRGBA {
	img := imaging.Clone(src)
	for i, item := range items {
		if item.Box == nil {
			continue
		}
		drawPolygon(img, *item.Box, green)
		anchor := (*item.Box)[0]
		cx, cy := int(anchor.X), int(anchor.Y)
		fillCircle(img, cx, cy, markerRadius, green)
		drawMarkerNumber(img, cx, cy, i+1)
	}
	return img
}

// drawTextLabels outlines every polygon and renders the item text above its
// top-left anchor, clamped so the label never leaves the image's top edge.
func drawTextLabels(src image.Image, items []ocr.Item, face font.Face) *image.NRGBA {
	img := imaging.Clone(src)
	for _, item := range items {
		if item.Box == nil {
			continue
		}
		drawPolygon(img, *item.Box, green)
	}
	for _, item := range items {
		if item.Box == nil {
			continue
		}
		anchor := (*item.Box)[0]
		drawLabel(img, face, truncateLabel(item.Text), int(anchor.X), labelTop(int(anchor.Y)))
	}
	return img
}

// labelTop positions a label 25px above the anchor with a floor of 0.
func labelTop(anchorY int) int {
	top := anchorY - 25
	if top < 0 {
		top = 0
	}
	return top
}

func truncateLabel(text string) string {
	runes := []rune(text)
	if len(runes) <= maxLabelRunes {
		return text
	}
	return string(runes[:maxLabelRunes])
}
