// Package zaplog provides a zap-backed implementation of logging.Logger.
package zaplog

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/resgov/resgov/pkg/logging"
)

// Config selects the encoding, level and destination of the backing zap core.
type Config struct {
	Level  string // "debug", "info", "warn", "error"
	Format string // "json", "console"
	Output string // "stdout", "stderr", or a file path
}

// DefaultConfig returns a sensible default: info level, console encoding, stderr.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "console",
		Output: "stderr",
	}
}

type zapLogger struct {
	base   *zap.Logger
	sugar  *zap.SugaredLogger
	prefix string
}

// New builds a logging.Logger backed by zap.SugaredLogger.
func New(cfg Config) (logging.Logger, error) {
	base, err := newCore(cfg)
	if err != nil {
		return nil, err
	}
	return &zapLogger{base: base, sugar: base.Sugar()}, nil
}

func newCore(cfg Config) (*zap.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "ts"
	encoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	encoderConfig.LevelKey = "level"
	encoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder

	var encoder zapcore.Encoder
	if cfg.Format == "json" {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	writer, err := openWriter(cfg.Output)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewCore(encoder, writer, level)
	return zap.New(core), nil
}

func openWriter(output string) (zapcore.WriteSyncer, error) {
	switch output {
	case "", "stdout":
		return zapcore.AddSync(os.Stdout), nil
	case "stderr":
		return zapcore.AddSync(os.Stderr), nil
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("zaplog: open %s: %w", output, err)
		}
		return zapcore.AddSync(f), nil
	}
}

func parseLevel(s string) (zapcore.Level, error) {
	switch s {
	case "debug":
		return zapcore.DebugLevel, nil
	case "", "info":
		return zapcore.InfoLevel, nil
	case "warn":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("zaplog: invalid level %q", s)
	}
}

func (l *zapLogger) Debugf(format string, args ...interface{}) { l.sugar.Debugf(l.prefix+format, args...) }
func (l *zapLogger) Infof(format string, args ...interface{})  { l.sugar.Infof(l.prefix+format, args...) }
func (l *zapLogger) Warnf(format string, args ...interface{})  { l.sugar.Warnf(l.prefix+format, args...) }
func (l *zapLogger) Errorf(format string, args ...interface{}) { l.sugar.Errorf(l.prefix+format, args...) }

// Sync flushes any buffered log entries.
func (l *zapLogger) Sync() error {
	return l.base.Sync()
}

// WithPrefix returns a copy of the logger that prepends prefix to every message,
// mirroring logging.NewLogger's prefix behavior for collaborators built on zap.
func WithPrefix(l logging.Logger, prefix string) logging.Logger {
	if zl, ok := l.(*zapLogger); ok {
		return &zapLogger{base: zl.base, sugar: zl.sugar, prefix: prefix}
	}
	return logging.NewLogger(prefix, logging.LogFuncs{
		Debugf: l.Debugf,
		Infof:  l.Infof,
		Warnf:  l.Warnf,
		Errorf: l.Errorf,
	})
}
