package logger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestInit(t *testing.T) {
	flush, err := Init(Config{Level: "debug", Format: "console"})
	require.NoError(t, err)
	require.NotNil(t, flush)

	Named("test").Debug("logger ready")
	assert.NoError(t, flush(context.Background()))

	_, err = Init(Config{Level: "verbose"})
	assert.Error(t, err)
}

func TestStartSpanDisabled(t *testing.T) {
	tracingEnabled = false
	ctx, span := StartSpan(context.Background(), "noop", attribute.String("k", "v"))
	assert.False(t, span.SpanContext().IsValid())
	assert.Empty(t, TraceFields(ctx))
	EndSpan(span, errors.New("ignored"))
}
