package telemetry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/luizstacio/fuel-indexer/telemetry"
)

func TestZapLogger_WritesStructuredFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := telemetry.NewZapLogger(zap.New(core))

	logger.Info("block applied", "height", 10)
	logger.Warn("empty page", "namespace", "ns")
	logger.Error("handler trap", "identifier", "idx")

	entries := logs.All()
	assert.Len(t, entries, 3)
	assert.Equal(t, "block applied", entries[0].Message)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
}

func TestNopLogger_DiscardsEverything(t *testing.T) {
	var l telemetry.NopLogger
	l.Info("x")
	l.Warn("y")
	l.Error("z")
}
