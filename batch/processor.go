package batch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"ocrpipe/annotate"
	"ocrpipe/observability"
	"ocrpipe/ocr"
)

// Process runs one engine over one image and converts every failure into the
// failure-variant outcome. This is the local recovery boundary: nothing that
// happens here, including a panic inside a backend, can abort the batch.
func Process(ctx context.Context, eng ocr.Engine, ann *annotate.Annotator, imagePath string, log observability.Logger) Outcome {
	out := Outcome{
		ImageName: filepath.Base(imagePath),
		ImagePath: imagePath,
	}

	start := time.Now()
	res, err := safeRecognize(ctx, eng, imagePath)
	if err != nil {
		log.Error("recognition failed",
			observability.String("image", out.ImageName),
			observability.Error("err", err))
		out.Err = err.Error()
		return out
	}
	elapsed := time.Since(start)

	out.Seconds = roundSeconds(elapsed)
	out.TextCount = res.Len()
	out.Items = res.Items

	log.Info("image processed",
		observability.String("image", out.ImageName),
		observability.Int("texts", res.Len()),
		observability.Float64("seconds", out.Seconds))
	logPreview(log, res)

	if res.Len() > 0 {
		if aerr := ann.Save(imagePath, res); aerr != nil {
			log.Warn("annotation failed",
				observability.String("image", out.ImageName),
				observability.Error("err", aerr))
		}
	}
	return out
}

func safeRecognize(ctx context.Context, eng ocr.Engine, imagePath string) (res ocr.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s engine panic: %v", eng.Name(), r)
		}
	}()
	return eng.Recognize(ctx, imagePath)
}

// logPreview logs the first few recognized fragments at debug level.
func logPreview(log observability.Logger, res ocr.Result) {
	const limit = 5
	for i, item := range res.Items {
		if i == limit {
			log.Debug("preview truncated", observability.Int("remaining", res.Len()-limit))
			return
		}
		log.Debug("recognized",
			observability.String("text", item.Text),
			observability.Float64("confidence", item.Confidence))
	}
}
