package cosmwasm_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kromsten/cosmwasm/debuglog"
	"github.com/kromsten/cosmwasm/vmtest"
)

func TestAbortReachesHostAndPanics(t *testing.T) {
	env, host := vmtest.NewEnvironment()
	defer host.Close()

	require.Panics(t, func() {
		env.Abort("storage invariant violated")
	})
	require.Equal(t, "storage invariant violated", host.AbortMessage)
	require.Equal(t, 1, host.CallCount("abort"))
}

func TestLoggerWritesToDebugSink(t *testing.T) {
	env, host := vmtest.NewEnvironment()
	defer host.Close()

	logger := env.Logger(debuglog.WithName("contract"))
	logger.Info("instantiated", zap.Int64("count", 7))
	logger.Debug("low level detail")

	require.Len(t, host.DebugMessages, 2)
	require.Contains(t, host.DebugMessages[0], "instantiated")
	require.Contains(t, host.DebugMessages[0], "contract")
	require.Contains(t, host.DebugMessages[0], "7")
}

func TestLoggerLevelFilter(t *testing.T) {
	env, host := vmtest.NewEnvironment()
	defer host.Close()

	logger := env.Logger(debuglog.WithLevel(zapcore.WarnLevel))
	logger.Info("filtered out")
	logger.Warn("kept")

	require.Len(t, host.DebugMessages, 1)
	require.True(t, strings.Contains(host.DebugMessages[0], "kept"))
}
