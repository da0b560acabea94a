// Package config resolves pipeline settings from defaults, an optional
// .env file, and OCRPIPE_* environment variables, in that order.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config carries every tunable of the batch pipeline.
type Config struct {
	DataDir    string
	OutputFile string
	OutputDir  string

	Engine          string
	Language        string
	AngleClassifier bool
	FastRecognition bool
	Workers         int

	LogLevel string
}

// Defaults returns the stock configuration.
func Defaults() Config {
	return Config{
		DataDir:         "./data",
		OutputFile:      "ocr_results.json",
		OutputDir:       "./output",
		Engine:          "paddle",
		Language:        "ch",
		AngleClassifier: true,
		Workers:         1,
		LogLevel:        "info",
	}
}

// Load builds a Config from defaults overlaid with a .env file (when
// present) and the process environment. Environment variables always
// win over the file.
func Load() Config {
	// godotenv does not overwrite variables already set in the
	// environment, which gives the layering for free.
	_ = godotenv.Load()

	cfg := Defaults()
	setString(&cfg.DataDir, "OCRPIPE_DATA_DIR")
	setString(&cfg.OutputFile, "OCRPIPE_OUTPUT_FILE")
	setString(&cfg.OutputDir, "OCRPIPE_OUTPUT_DIR")
	setString(&cfg.Engine, "OCRPIPE_ENGINE")
	setString(&cfg.Language, "OCRPIPE_LANG")
	setBool(&cfg.AngleClassifier, "OCRPIPE_ANGLE_CLS")
	setBool(&cfg.FastRecognition, "OCRPIPE_FAST")
	setInt(&cfg.Workers, "OCRPIPE_WORKERS")
	setString(&cfg.LogLevel, "OCRPIPE_LOG_LEVEL")
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return cfg
}

// VisionLanguage translates the pipeline language code into the BCP 47
// tag the Vision framework expects.
func VisionLanguage(lang string) string {
	switch strings.ToLower(lang) {
	case "ch", "zh", "zh-hans":
		return "zh-Hans"
	case "en", "en-us":
		return "en-US"
	default:
		return lang
	}
}

// TesseractLanguage translates the pipeline language code into a
// tessdata language name.
func TesseractLanguage(lang string) string {
	switch strings.ToLower(lang) {
	case "ch", "zh", "zh-hans", "chi_sim":
		return "chi_sim"
	case "en", "eng":
		return "eng"
	default:
		return lang
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
