//go:build darwin && cgo

package vision

/*
#cgo CFLAGS: -x objective-c -fobjc-arc -mmacosx-version-min=10.15
#cgo LDFLAGS: -framework Vision -framework Foundation -framework CoreGraphics -framework ImageIO

#include <stdlib.h>

// Implemented in vision_darwin.m. Returns a malloc'd JSON document describing
// the recognized observations, or NULL when the image cannot be decoded or
// the request fails (an empty result, not an error).
extern char* visionRecognize(const char* imagePath, const char* language, int fast);
*/
import "C"

import (
	"context"
	"encoding/json"
	"unsafe"

	"ocrpipe/observability"
	"ocrpipe/ocr"
)

// New returns a Vision-backed engine. The framework ships with the OS, so the
// only construction check is the platform itself, satisfied by the build tag.
func New(cfg ocr.Config) (*Engine, error) {
	lang := cfg.Language
	if lang == "" {
		lang = "zh-Hans"
	}
	log := cfg.Logger
	if log == nil {
		log = observability.NopLogger{}
	}
	log.Info("vision engine ready", observability.String("lang", lang))
	return &Engine{lang: lang, fast: cfg.FastRecognition, log: log}, nil
}

// Recognize performs a blocking Vision request. An undecodable image yields
// an empty result rather than an error.
func (e *Engine) Recognize(ctx context.Context, imagePath string) (ocr.Result, error) {
	cPath := C.CString(imagePath)
	defer C.free(unsafe.Pointer(cPath))
	cLang := C.CString(e.lang)
	defer C.free(unsafe.Pointer(cLang))
	fast := C.int(0)
	if e.fast {
		fast = 1
	}

	out := C.visionRecognize(cPath, cLang, fast)
	if out == nil {
		e.log.Debug("vision returned no frame", observability.String("image", imagePath))
		return ocr.Result{}, nil
	}
	defer C.free(unsafe.Pointer(out))

	var f frame
	if err := json.Unmarshal([]byte(C.GoString(out)), &f); err != nil {
		return ocr.Result{}, &ocr.RecognitionError{Engine: e.Name(), Image: imagePath, Err: err}
	}
	return normalize(f), nil
}
