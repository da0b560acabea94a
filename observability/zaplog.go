package observability

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log level names accepted by NewZapLogger.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// NewZapLogger builds a console logger at the given level. Unknown level
// names fall back to info.
func NewZapLogger(level string) Logger {
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		parseLevel(level),
	)
	return zapLogger{s: zap.New(core).Sugar()}
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

type zapLogger struct {
	s *zap.SugaredLogger
}

func (l zapLogger) Debug(msg string, fields ...Field) { l.s.Debugw(msg, kv(fields)...) }
func (l zapLogger) Info(msg string, fields ...Field)  { l.s.Infow(msg, kv(fields)...) }
func (l zapLogger) Warn(msg string, fields ...Field)  { l.s.Warnw(msg, kv(fields)...) }
func (l zapLogger) Error(msg string, fields ...Field) { l.s.Errorw(msg, kv(fields)...) }

func (l zapLogger) With(fields ...Field) Logger {
	return zapLogger{s: l.s.With(kv(fields)...)}
}

func kv(fields []Field) []interface{} {
	out := make([]interface{}, 0, 2*len(fields))
	for _, f := range fields {
		out = append(out, f.Key(), f.Value())
	}
	return out
}
