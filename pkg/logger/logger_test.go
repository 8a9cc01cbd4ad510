package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	l, err := New("debug", "console")
	require.NoError(t, err)
	assert.NotNil(t, l)

	_, err = New("loud", "json")
	assert.Error(t, err)
}

func TestContextMethodsAttachRequestID(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{Logger: zap.New(core)}

	ctx := WithRequestID(context.Background(), "req-42")
	l.WarnContext(ctx, "market fallback", StringField("ticker", "AAPL"))
	l.InfoContext(context.Background(), "no id")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "req-42", entries[0].ContextMap()["request_id"])
	assert.Equal(t, "AAPL", entries[0].ContextMap()["ticker"])
	_, ok := entries[1].ContextMap()["request_id"]
	assert.False(t, ok)
}
