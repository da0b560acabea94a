package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ocrpipe/automation"
	"ocrpipe/batch"
	"ocrpipe/config"
	"ocrpipe/observability"
	"ocrpipe/ocr"

	// Register the available OCR backends.
	_ "ocrpipe/ocr/ocrmac"
	_ "ocrpipe/ocr/paddle"
	_ "ocrpipe/ocr/tesseract"
	_ "ocrpipe/ocr/vision"
)

var (
	flagDataDir    string
	flagOutputFile string
	flagOutputDir  string
	flagEngine     string
	flagLang       string
	flagAngleCls   bool
	flagFast       bool
	flagWorkers    int
	flagLogLevel   string

	flagScale float64
	flagType  string
	flagDelay time.Duration
)

func init() {
	cfg := config.Load()

	rootCmd.PersistentFlags().StringVar(&flagEngine, "engine", cfg.Engine, "OCR engine: "+joinTags())
	rootCmd.PersistentFlags().StringVar(&flagLang, "lang", cfg.Language, "Recognition language code")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")

	runCmd.Flags().StringVar(&flagDataDir, "data-dir", cfg.DataDir, "Directory of input images")
	runCmd.Flags().StringVar(&flagOutputFile, "output-file", cfg.OutputFile, "Path of the JSON report")
	runCmd.Flags().StringVar(&flagOutputDir, "output-dir", cfg.OutputDir, "Directory for annotated images")
	runCmd.Flags().BoolVar(&flagAngleCls, "angle-cls", cfg.AngleClassifier, "Enable angle classification (neural engine)")
	runCmd.Flags().BoolVar(&flagFast, "fast", cfg.FastRecognition, "Prefer speed over accuracy (vision engine)")
	runCmd.Flags().IntVar(&flagWorkers, "workers", cfg.Workers, "Concurrent workers")

	clickCmd.Flags().Float64Var(&flagScale, "scale", 2, "Display scaling divisor (2 on Retina)")
	clickCmd.Flags().StringVar(&flagType, "type", "", "Text to type after a successful click")
	clickCmd.Flags().DurationVar(&flagDelay, "delay", 3*time.Second, "Grace period to focus the target window")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(clickCmd)
	rootCmd.AddCommand(enginesCmd)
}

var rootCmd = &cobra.Command{
	Use:   "ocrpipe",
	Short: "Batch OCR pipeline with pluggable engines",
	Long: `ocrpipe runs a directory of images through an OCR engine, writes
annotated copies of each image, and persists a JSON report of every
recognized item. It can also locate text on the live screen and click it.`,
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Recognize every image in a directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := observability.NewZapLogger(flagLogLevel)
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		runner := batch.NewRunner(batch.Config{
			DataDir:    flagDataDir,
			OutputFile: flagOutputFile,
			OutputDir:  flagOutputDir,
			Engine:     flagEngine,
			Options:    engineOptions(log),
			Workers:    flagWorkers,
			Logger:     log,
		})
		_, err := runner.Run(ctx)
		return err
	},
}

var clickCmd = &cobra.Command{
	Use:   "click <text>",
	Short: "Find text on screen and click it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := observability.NewZapLogger(flagLogLevel)
		eng, err := ocr.New(flagEngine, engineOptions(log)...)
		if err != nil {
			return fmt.Errorf("initialize %q engine: %w", flagEngine, err)
		}
		screen, err := automation.NewScreenCapture()
		if err != nil {
			return err
		}
		pointer, err := automation.NewCliclick()
		if err != nil {
			return err
		}
		keyboard, err := automation.NewPasteKeyboard()
		if err != nil {
			return err
		}
		bot, err := automation.NewRobot(automation.RobotConfig{
			Engine:   eng,
			Screen:   screen,
			Pointer:  pointer,
			Keyboard: keyboard,
			Scale:    flagScale,
			Logger:   log,
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if flagDelay > 0 {
			log.Info("waiting before capture", observability.Duration("delay", flagDelay))
			select {
			case <-time.After(flagDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := bot.ClickText(ctx, args[0]); err != nil {
			return err
		}
		if flagType != "" {
			if err := bot.TypeText(ctx, flagType); err != nil {
				return err
			}
			if err := bot.PressKey(ctx, "enter"); err != nil {
				return err
			}
		}
		return nil
	},
}

var enginesCmd = &cobra.Command{
	Use:   "engines",
	Short: "List registered OCR engines",
	Run: func(cmd *cobra.Command, args []string) {
		for _, tag := range ocr.Tags() {
			fmt.Println(tag)
		}
	},
}

// engineOptions maps the shared flags onto engine options, translating
// the language code into each backend's dialect.
func engineOptions(log observability.Logger) []ocr.Option {
	lang := flagLang
	switch flagEngine {
	case "vision":
		lang = config.VisionLanguage(flagLang)
	case "tesseract":
		lang = config.TesseractLanguage(flagLang)
	}
	return []ocr.Option{
		ocr.WithLanguage(lang),
		ocr.WithAngleClassifier(flagAngleCls),
		ocr.WithFastRecognition(flagFast),
		ocr.WithLogger(log),
	}
}

func joinTags() string {
	out := ""
	for i, tag := range ocr.Tags() {
		if i > 0 {
			out += ", "
		}
		out += tag
	}
	return out
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
