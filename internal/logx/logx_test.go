package logx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T, level zapcore.Level) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(level)
	prev := Logger()
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(prev) })
	return logs
}

func TestInfo_TagsComponent(t *testing.T) {
	logs := observe(t, zapcore.DebugLevel)

	Info("HTTP", "listening on port :%s", "8080")

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "listening on port :8080", entries[0].Message)
	require.Equal(t, zapcore.InfoLevel, entries[0].Level)
	require.Equal(t, "HTTP", entries[0].ContextMap()["component"])
}

func TestL_TagsRequestID(t *testing.T) {
	logs := observe(t, zapcore.DebugLevel)

	L("req-1", "Resolver", "resolved by %s", "rules")

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "req-1", entries[0].ContextMap()["request_id"])
}

func TestLevelFiltering(t *testing.T) {
	logs := observe(t, zapcore.WarnLevel)

	Debug("App", "hidden")
	Info("App", "hidden")
	Warn("App", "shown")
	Error("App", "shown too")

	require.Equal(t, 2, logs.Len())
}

func TestTimer_End(t *testing.T) {
	logs := observe(t, zapcore.DebugLevel)

	timer := Start("req-2", "Primary", "Chat")
	time.Sleep(5 * time.Millisecond)
	elapsed := timer.End()

	require.GreaterOrEqual(t, elapsed, 5*time.Millisecond)
	require.Equal(t, 1, logs.FilterMessage("timing").Len())
}

func TestInit_InvalidLevel(t *testing.T) {
	prev := Logger()
	t.Cleanup(func() { SetLogger(prev) })

	require.Error(t, Init("loud", "dev"))
	require.NoError(t, Init("debug", "production"))
}
