package annotate

import (
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
)

// labelFontPaths lists known system fonts able to render CJK and other
// non-Latin scripts, probed in order.
var labelFontPaths = []string{
	"/System/Library/Fonts/PingFang.ttc",
	"/System/Library/Fonts/STHeiti Light.ttc",
	"/System/Library/Fonts/Supplemental/Arial Unicode.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttc",
	`C:\Windows\Fonts\simhei.ttf`,
	`C:\Windows\Fonts\msyh.ttc`,
}

// loadLabelFace returns the first usable face from labelFontPaths, falling
// back to the built-in bitmap face so label rendering never fails outright.
func loadLabelFace(size float64) font.Face {
	for _, path := range labelFontPaths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if face := parseFace(data, size); face != nil {
			return face
		}
	}
	return basicfont.Face7x13
}

// parseFace handles both single fonts and .ttc collections; the first font
// in a collection is used.
func parseFace(data []byte, size float64) font.Face {
	coll, err := opentype.ParseCollection(data)
	if err != nil {
		return nil
	}
	f, err := coll.Font(0)
	if err != nil {
		return nil
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil
	}
	return face
}
