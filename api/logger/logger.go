package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu   sync.RWMutex
	base = zap.NewNop()
)

// Init replaces the global logger. Unknown levels fall back to info.
func Init(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	mu.Lock()
	base = l
	mu.Unlock()

	return l, nil
}

func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

func Infof(template string, args ...interface{}) {
	L().Sugar().Infof(template, args...)
}

func Warnf(template string, args ...interface{}) {
	L().Sugar().Warnf(template, args...)
}

func Errorf(template string, args ...interface{}) {
	L().Sugar().Errorf(template, args...)
}

func Fatalf(template string, args ...interface{}) {
	L().Sugar().Fatalf(template, args...)
}

func Sync() {
	_ = L().Sync()
}
