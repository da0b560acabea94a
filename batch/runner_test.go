package batch

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ocrpipe/annotate"
	"ocrpipe/observability"
	"ocrpipe/ocr"
)

// stubEngine returns canned results keyed by image base name.
type stubEngine struct {
	recognize func(ctx context.Context, imagePath string) (ocr.Result, error)
	calls     atomic.Int64
}

func (s *stubEngine) Name() string { return "stub" }

func (s *stubEngine) Recognize(ctx context.Context, imagePath string) (ocr.Result, error) {
	s.calls.Add(1)
	return s.recognize(ctx, imagePath)
}

func writeImages(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, name)
		f, err := os.Create(path)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 64, 64))); err != nil {
			t.Fatalf("encode %s: %v", name, err)
		}
		f.Close()
	}
}

func textResult(texts ...string) ocr.Result {
	var res ocr.Result
	for _, text := range texts {
		box := ocr.RectPolygon(1, 1, 10, 10)
		res.Append(ocr.Item{Text: text, Confidence: 0.9, Box: &box})
	}
	return res
}

func testConfig(t *testing.T, tag, dataDir string) Config {
	t.Helper()
	work := t.TempDir()
	return Config{
		DataDir:    dataDir,
		OutputFile: filepath.Join(work, "ocr_results.json"),
		OutputDir:  filepath.Join(work, "output"),
		Engine:     tag,
		Logger:     observability.NopLogger{},
	}
}

func TestRunFailingImageDoesNotAbortBatch(t *testing.T) {
	dataDir := t.TempDir()
	writeImages(t, dataDir, "one.png", "three.png", "two.png")

	eng := &stubEngine{recognize: func(_ context.Context, imagePath string) (ocr.Result, error) {
		if filepath.Base(imagePath) == "three.png" {
			return ocr.Result{}, &ocr.RecognitionError{
				Engine: "stub", Image: imagePath, Err: errors.New("corrupt header"),
			}
		}
		return textResult("hello"), nil
	}}
	ocr.Register("stub-midfail", func(ocr.Config) (ocr.Engine, error) { return eng, nil })

	cfg := testConfig(t, "stub-midfail", dataDir)
	report, err := NewRunner(cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(report.Results) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(report.Results))
	}
	// Discovery order: one.png, three.png, two.png.
	if report.Results[0].Failed() || report.Results[2].Failed() {
		t.Fatalf("healthy images must succeed: %+v", report.Results)
	}
	mid := report.Results[1]
	if !mid.Failed() || !strings.Contains(mid.Err, "corrupt header") {
		t.Fatalf("expected middle outcome to fail, got %+v", mid)
	}
	if mid.Seconds != 0 {
		t.Fatalf("failure outcome must carry zero duration: %+v", mid)
	}
	if report.Results[0].TextCount != 1 || report.Results[0].Seconds < 0 {
		t.Fatalf("unexpected success outcome: %+v", report.Results[0])
	}

	// The report must have been persisted and parse back.
	data, err := os.ReadFile(cfg.OutputFile)
	if err != nil {
		t.Fatalf("report not persisted: %v", err)
	}
	var back Report
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("report not parseable: %v", err)
	}
	if back.TotalImages != 3 || len(back.Results) != 3 {
		t.Fatalf("persisted report wrong: %+v", back)
	}
}

func TestRunEmptyDirectoryWarnsAndPersistsNothing(t *testing.T) {
	dataDir := t.TempDir()
	ocr.Register("stub-empty", func(ocr.Config) (ocr.Engine, error) {
		return &stubEngine{recognize: func(context.Context, string) (ocr.Result, error) {
			return ocr.Result{}, nil
		}}, nil
	})

	cfg := testConfig(t, "stub-empty", dataDir)
	report, err := NewRunner(cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("empty directory must not be an error, got %v", err)
	}
	if report.TotalImages != 0 || len(report.Results) != 0 {
		t.Fatalf("expected empty report, got %+v", report)
	}
	if _, err := os.Stat(cfg.OutputFile); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("no report file should be written for an empty run")
	}
}

func TestRunEngineConstructionFailureIsFatal(t *testing.T) {
	dataDir := t.TempDir()
	writeImages(t, dataDir, "a.png")
	ocr.Register("stub-unavailable", func(ocr.Config) (ocr.Engine, error) {
		return nil, ocr.ErrEngineUnavailable
	})

	cfg := testConfig(t, "stub-unavailable", dataDir)
	_, err := NewRunner(cfg).Run(context.Background())
	if !errors.Is(err, ocr.ErrEngineUnavailable) {
		t.Fatalf("expected construction failure to propagate, got %v", err)
	}
}

func TestRunMissingDataDirIsFatal(t *testing.T) {
	ocr.Register("stub-nodir", func(ocr.Config) (ocr.Engine, error) {
		return &stubEngine{recognize: func(context.Context, string) (ocr.Result, error) {
			return ocr.Result{}, nil
		}}, nil
	})
	cfg := testConfig(t, "stub-nodir", filepath.Join(t.TempDir(), "absent"))
	_, err := NewRunner(cfg).Run(context.Background())
	if !errors.Is(err, ErrDirectoryNotFound) {
		t.Fatalf("expected ErrDirectoryNotFound, got %v", err)
	}
}

func TestRunParallelKeepsDiscoveryOrder(t *testing.T) {
	dataDir := t.TempDir()
	names := []string{"a.png", "b.png", "c.png", "d.png", "e.png"}
	writeImages(t, dataDir, names...)

	ocr.Register("stub-parallel", func(ocr.Config) (ocr.Engine, error) {
		return &stubEngine{recognize: func(_ context.Context, imagePath string) (ocr.Result, error) {
			// Earlier images sleep longer so completion order inverts
			// discovery order.
			base := filepath.Base(imagePath)
			delay := time.Duration('f'-base[0]) * 10 * time.Millisecond
			time.Sleep(delay)
			return textResult("text from " + base), nil
		}}, nil
	})

	cfg := testConfig(t, "stub-parallel", dataDir)
	cfg.Workers = 4
	report, err := NewRunner(cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(report.Results) != len(names) {
		t.Fatalf("expected %d outcomes, got %d", len(names), len(report.Results))
	}
	for i, name := range names {
		if report.Results[i].ImageName != name {
			t.Fatalf("outcome %d out of order: got %s, want %s", i, report.Results[i].ImageName, name)
		}
		want := "text from " + name
		if report.Results[i].Items[0].Text != want {
			t.Fatalf("outcome %d carries wrong result: %+v", i, report.Results[i].Items)
		}
	}
}

func TestSubmitAllDrainsWorkersOnFailure(t *testing.T) {
	var wg sync.WaitGroup
	var finished atomic.Bool
	err := submitAll(2, &wg, func(i int) error {
		if i == 0 {
			go func() {
				defer wg.Done()
				time.Sleep(50 * time.Millisecond)
				finished.Store(true)
			}()
			return nil
		}
		return errors.New("pool closed")
	})
	if err == nil || !strings.Contains(err.Error(), "submit image 1") {
		t.Fatalf("expected submission error, got %v", err)
	}
	// The first worker was still running when submission failed; the error
	// return must not race ahead of it.
	if !finished.Load() {
		t.Fatal("in-flight worker not drained before returning")
	}
}

func TestProcessRecoversEnginePanic(t *testing.T) {
	dataDir := t.TempDir()
	writeImages(t, dataDir, "a.png")
	eng := &stubEngine{recognize: func(context.Context, string) (ocr.Result, error) {
		panic("native crash")
	}}

	ann := annotate.New(t.TempDir(), observability.NopLogger{})
	out := Process(context.Background(), eng, ann, filepath.Join(dataDir, "a.png"), observability.NopLogger{})
	if !out.Failed() {
		t.Fatalf("panic must become the failure variant: %+v", out)
	}
	if !strings.Contains(out.Err, "native crash") {
		t.Fatalf("panic detail lost: %q", out.Err)
	}
}

func TestProcessAnnotatesOnlyWithGeometry(t *testing.T) {
	dataDir := t.TempDir()
	writeImages(t, dataDir, "a.png")
	outDir := t.TempDir()
	ann := annotate.New(outDir, observability.NopLogger{})

	// Boxless result: no annotation output.
	eng := &stubEngine{recognize: func(context.Context, string) (ocr.Result, error) {
		var res ocr.Result
		res.Append(ocr.Item{Text: "plain", Confidence: 1, Synthetic: true})
		return res, nil
	}}
	out := Process(context.Background(), eng, ann, filepath.Join(dataDir, "a.png"), observability.NopLogger{})
	if out.Failed() || out.TextCount != 1 {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	entries, _ := os.ReadDir(outDir)
	if len(entries) != 0 {
		t.Fatalf("boxless result must not produce annotations, found %d files", len(entries))
	}

	// Result with geometry: both annotated variants appear.
	eng = &stubEngine{recognize: func(context.Context, string) (ocr.Result, error) {
		return textResult("boxed"), nil
	}}
	out = Process(context.Background(), eng, ann, filepath.Join(dataDir, "a.png"), observability.NopLogger{})
	if out.Failed() {
		t.Fatalf("unexpected failure: %+v", out)
	}
	entries, _ = os.ReadDir(outDir)
	if len(entries) != 2 {
		t.Fatalf("expected 2 annotated files, found %d", len(entries))
	}
}

func TestRunUsesSingleEngineSequentially(t *testing.T) {
	dataDir := t.TempDir()
	writeImages(t, dataDir, "a.png", "b.png")

	built := 0
	eng := &stubEngine{recognize: func(context.Context, string) (ocr.Result, error) {
		return ocr.Result{}, nil
	}}
	ocr.Register("stub-single", func(ocr.Config) (ocr.Engine, error) {
		built++
		return eng, nil
	})

	cfg := testConfig(t, "stub-single", dataDir)
	if _, err := NewRunner(cfg).Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if built != 1 {
		t.Fatalf("sequential run must construct exactly one engine, got %d", built)
	}
	if got := eng.calls.Load(); got != 2 {
		t.Fatalf("expected 2 recognize calls, got %d", got)
	}
}
