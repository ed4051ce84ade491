// Package logger builds the zap loggers used by the store and the CLI.
package logger

import (
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu   sync.Mutex
	base *zap.Logger
)

// encoderConfig is the console layout shared by every logger.
var encoderConfig = zapcore.EncoderConfig{
	TimeKey:        "time",
	LevelKey:       "level",
	NameKey:        "logger",
	CallerKey:      "caller",
	MessageKey:     "msg",
	StacktraceKey:  "stacktrace",
	LineEnding:     zapcore.DefaultLineEnding,
	EncodeLevel:    zapcore.CapitalLevelEncoder,
	EncodeTime:     zapcore.ISO8601TimeEncoder,
	EncodeDuration: zapcore.SecondsDurationEncoder,
	EncodeCaller:   zapcore.ShortCallerEncoder,
}

// New returns a console logger writing to w at the given level.
func New(w io.Writer, level zapcore.Level) *zap.Logger {
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(w),
		level,
	)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
}

// Init replaces the process logger with one writing to stderr at level.
// Stdout is left to command output. An empty level means warn.
func Init(level string) error {
	lvl := zapcore.WarnLevel
	if level != "" {
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			return err
		}
		lvl = parsed
	}

	mu.Lock()
	defer mu.Unlock()
	base = New(os.Stderr, lvl)
	return nil
}

// GetLogger returns a named logger. Before Init it is a no-op logger.
func GetLogger(name string) *zap.SugaredLogger {
	mu.Lock()
	defer mu.Unlock()
	if base == nil {
		return zap.NewNop().Named(name).Sugar()
	}
	return base.Named(name).Sugar()
}

// Sync flushes buffered log entries.
func Sync() {
	mu.Lock()
	defer mu.Unlock()
	if base != nil {
		_ = base.Sync()
	}
}
