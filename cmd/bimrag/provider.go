package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fwojciec/bimrag"
	"github.com/fwojciec/bimrag/gemini"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// resolveTitler selects the history titler. A Gemini key selects Gemini;
// otherwise the service's own title endpoint is used. Env values are passed
// in; env is only read in run().
func resolveTitler(ctx context.Context, geminiKey, geminiModel string, fallback bimrag.Titler, logger *zap.Logger) (bimrag.Titler, error) {
	if geminiKey == "" {
		return fallback, nil
	}
	opts := []gemini.Option{gemini.WithLogger(logger)}
	if geminiModel != "" {
		opts = append(opts, gemini.WithModel(geminiModel))
	}
	t, err := gemini.New(ctx, geminiKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("titler: %w", err)
	}
	return t, nil
}

// newLogger returns a debug-level JSON logger writing to a rotated file, or
// a no-op logger when path is empty. The TUI owns the terminal, so logs
// never go to stdout.
func newLogger(path string) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("log directory: %w", err)
	}
	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(rotator),
		zap.DebugLevel,
	)
	return zap.New(core), nil
}
