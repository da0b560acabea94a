package batch

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"ocrpipe/annotate"
	"ocrpipe/observability"
	"ocrpipe/ocr"
)

// Config controls one batch run.
type Config struct {
	// DataDir is the directory scanned for input images.
	DataDir string
	// OutputFile is the path of the persisted JSON report.
	OutputFile string
	// OutputDir receives the annotated images.
	OutputDir string
	// Engine is the backend tag passed to ocr.New.
	Engine string
	// Options configure the backend (language, timeouts, test seams).
	Options []ocr.Option
	// Workers enables parallel processing when greater than 1. Each worker
	// owns its own engine instance and the report keeps discovery order
	// regardless of completion order.
	Workers int
	// Logger defaults to NopLogger.
	Logger observability.Logger
}

// Runner executes the batch state machine: construct engine, discover
// images, process each, aggregate, persist.
type Runner struct {
	cfg Config
	log observability.Logger
}

func NewRunner(cfg Config) *Runner {
	log := cfg.Logger
	if log == nil {
		log = observability.NopLogger{}
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Runner{cfg: cfg, log: log}
}

// Run drives one batch to completion and returns the persisted report.
// Engine construction and discovery failures are fatal; per-image failures
// are recorded in the report and never abort the run. An empty discovery
// ends the run with a warning and persists nothing.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	if err := os.MkdirAll(r.cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	eng, err := ocr.New(r.cfg.Engine, r.cfg.Options...)
	if err != nil {
		return nil, fmt.Errorf("initialize %q engine: %w", r.cfg.Engine, err)
	}

	files, err := DiscoverImages(r.cfg.DataDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		r.log.Warn("no image files found", observability.String("dir", r.cfg.DataDir))
		return &Report{}, nil
	}
	r.log.Info("starting batch",
		observability.String("engine", eng.Name()),
		observability.Int("images", len(files)),
		observability.Int("workers", r.cfg.Workers))

	ann := annotate.New(r.cfg.OutputDir, r.log)
	outcomes := make([]Outcome, len(files))
	start := time.Now()

	if r.cfg.Workers > 1 {
		err = r.processParallel(ctx, eng, ann, files, outcomes)
	} else {
		err = r.processSequential(ctx, eng, ann, files, outcomes)
	}
	if err != nil {
		return nil, err
	}

	report := &Report{TotalImages: len(files)}
	for _, o := range outcomes {
		report.Append(o)
	}
	report.TotalTime = roundSeconds(time.Since(start))

	if err := report.Save(r.cfg.OutputFile); err != nil {
		return nil, err
	}
	r.summarize(report)
	return report, nil
}

func (r *Runner) processSequential(ctx context.Context, eng ocr.Engine, ann *annotate.Annotator, files []string, outcomes []Outcome) error {
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.log.Info(fmt.Sprintf("[%d/%d] processing", i+1, len(files)),
			observability.String("image", path))
		outcomes[i] = Process(ctx, eng, ann, path, r.log)
	}
	return nil
}

// processParallel fans images out over an ants pool. Engines are pooled, one
// per worker, because backends are not required to be safe for concurrent
// use; the indexed outcomes slice restores discovery order no matter which
// worker finishes first.
func (r *Runner) processParallel(ctx context.Context, first ocr.Engine, ann *annotate.Annotator, files []string, outcomes []Outcome) error {
	workers := r.cfg.Workers
	if workers > len(files) {
		workers = len(files)
	}
	engines := make(chan ocr.Engine, workers)
	engines <- first
	for i := 1; i < workers; i++ {
		eng, err := ocr.New(r.cfg.Engine, r.cfg.Options...)
		if err != nil {
			return fmt.Errorf("initialize worker engine: %w", err)
		}
		engines <- eng
	}

	var wg sync.WaitGroup
	pool, err := ants.NewPoolWithFunc(workers, func(arg interface{}) {
		idx := arg.(int)
		defer wg.Done()
		eng := <-engines
		outcomes[idx] = Process(ctx, eng, ann, files[idx], r.log)
		engines <- eng
	})
	if err != nil {
		return fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	return submitAll(len(files), &wg, func(i int) error { return pool.Invoke(i) })
}

// submitAll feeds every index to invoke and waits for the workers. On a
// failed submission it still drains the workers already in flight, since
// they keep writing into the shared outcomes slice until done.
func submitAll(n int, wg *sync.WaitGroup, invoke func(int) error) error {
	for i := 0; i < n; i++ {
		wg.Add(1)
		if err := invoke(i); err != nil {
			wg.Done()
			wg.Wait()
			return fmt.Errorf("submit image %d: %w", i, err)
		}
	}
	wg.Wait()
	return nil
}

func (r *Runner) summarize(report *Report) {
	avg := 0.0
	if report.TotalImages > 0 {
		avg = report.TotalTime / float64(report.TotalImages)
	}
	r.log.Info("batch complete",
		observability.Int("total_images", report.TotalImages),
		observability.Float64("total_seconds", report.TotalTime),
		observability.Float64("avg_seconds_per_image", avg),
		observability.String("report", r.cfg.OutputFile),
		observability.String("annotated_dir", r.cfg.OutputDir))
}
