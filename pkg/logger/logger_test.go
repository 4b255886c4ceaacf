package logger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithCarriesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewFromZap(zap.New(core)).With(String("user_id", "u-1"))

	at := time.Date(2024, 5, 10, 10, 0, 0, 0, time.UTC)
	log.Info("platform synced", Bool("ok", true), Time("from", at))

	entries := logs.FilterMessage("platform synced").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "u-1", fields["user_id"])
	assert.Equal(t, true, fields["ok"])
	assert.Equal(t, at, fields["from"])
}

func TestNewParsesLevel(t *testing.T) {
	assert.NotNil(t, New("test", "warn"))
	assert.NotNil(t, New("test", "not-a-level"))
}
