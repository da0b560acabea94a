// Package ocr defines the abstraction layer for plugging OCR engines into the
// batch pipeline. The interfaces are intentionally small so engines can be
// backed by native libraries, OS frameworks, or external binaries without
// leaking provider-specific concerns into callers. Backend packages register
// themselves under a tag; New builds the engine for a tag and performs all
// environment checks eagerly so a bad configuration surfaces before any image
// is touched.
package ocr
