package ocr

import (
	"time"

	"ocrpipe/observability"
)

// Option mutates the Config passed to a backend builder.
type Option func(*Config)

// WithLanguage sets the engine-native language code.
func WithLanguage(lang string) Option {
	return func(cfg *Config) { cfg.Language = lang }
}

// WithAngleClassifier toggles text-angle classification for backends that
// support it (on by default).
func WithAngleClassifier(enabled bool) Option {
	return func(cfg *Config) { cfg.AngleClassifier = enabled }
}

// WithFastRecognition prefers speed over accuracy for backends that expose a
// recognition-level knob (off by default).
func WithFastRecognition(enabled bool) Option {
	return func(cfg *Config) { cfg.FastRecognition = enabled }
}

// WithTimeout bounds one subprocess invocation for CLI-backed engines.
func WithTimeout(d time.Duration) Option {
	return func(cfg *Config) { cfg.Timeout = d }
}

// WithRunner overrides the subprocess command for CLI-backed engines.
func WithRunner(path string) Option {
	return func(cfg *Config) { cfg.Runner = path }
}

// WithLogger routes engine diagnostics to the given logger.
func WithLogger(log observability.Logger) Option {
	return func(cfg *Config) {
		if log != nil {
			cfg.Logger = log
		}
	}
}
