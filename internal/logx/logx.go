package logx

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var current atomic.Pointer[zap.Logger]

func init() {
	l, err := zap.NewProduction()
	if err != nil {
		l = zap.NewNop()
	}
	current.Store(l)
}

// Init builds the process logger. dev/local environments get a colored
// console encoder, everything else JSON.
func Init(level, appEnv string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var cfg zap.Config
	if appEnv == "local" || appEnv == "dev" {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	SetLogger(l)
	return nil
}

// SetLogger replaces the process logger; tests use it with an observer core.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	current.Store(l)
}

// Logger returns the underlying zap logger for structured call sites.
func Logger() *zap.Logger {
	return current.Load()
}

// Sync flushes buffered entries; call before exit.
func Sync() {
	_ = current.Load().Sync()
}

// --- Public API ---

func Debug(component, msg string, args ...any) {
	logGeneric(zapcore.DebugLevel, component, "", msg, args...)
}

func Info(component, msg string, args ...any) {
	logGeneric(zapcore.InfoLevel, component, "", msg, args...)
}

func Warn(component, msg string, args ...any) {
	logGeneric(zapcore.WarnLevel, component, "", msg, args...)
}

func Error(component, msg string, args ...any) {
	logGeneric(zapcore.ErrorLevel, component, "", msg, args...)
}

// L logs at info level tagged with a request id.
func L(id, component, msg string, args ...any) {
	logGeneric(zapcore.InfoLevel, component, id, msg, args...)
}

// --- Core ---

func logGeneric(level zapcore.Level, component, id, msg string, args ...any) {
	l := current.Load().WithOptions(zap.AddCallerSkip(2))
	if !l.Core().Enabled(level) {
		return
	}
	fields := []zap.Field{zap.String("component", component)}
	if id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	l.Log(level, fmt.Sprintf(msg, args...), fields...)
}
