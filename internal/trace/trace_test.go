package trace

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestDisabledIsNoop(t *testing.T) {
	require.NoError(t, Init(false, nil, "test"))
	ctx, span := StartSpan(context.Background(), "run")
	assert.False(t, span.SpanContext().IsValid())
	assert.Nil(t, Fields(ctx))
	End(span, nil)
	assert.NoError(t, Shutdown(context.Background()))
}

func TestEnabledExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init(true, &buf, "test"))
	assert.True(t, Enabled())

	ctx, span := StartSpan(context.Background(), "episode", attribute.Int("episode", 2))
	fields := Fields(ctx)
	require.Len(t, fields, 4)
	assert.Equal(t, "trace_id", fields[0])
	End(span, errors.New("boom"))

	require.NoError(t, Shutdown(context.Background()))
	assert.False(t, Enabled())

	out := buf.String()
	assert.Contains(t, out, `"Name": "episode"`)
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "spotsim")
}
