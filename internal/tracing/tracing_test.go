package tracing

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateRequestID(t *testing.T) {
	id1 := GenerateRequestID()
	id2 := GenerateRequestID()

	assert.True(t, strings.HasPrefix(id1, "req_"))
	assert.Len(t, id1, len("req_")+16)
	assert.NotEqual(t, id1, id2)
}

func TestGenerateTraceID(t *testing.T) {
	id1 := GenerateTraceID()
	id2 := GenerateTraceID()

	assert.Len(t, id1, 32)
	assert.NotEqual(t, id1, id2)
}

func TestGenerateSpanID(t *testing.T) {
	id1 := GenerateSpanID()
	id2 := GenerateSpanID()

	assert.Len(t, id1, 16)
	assert.NotEqual(t, id1, id2)
}

func TestContextRoundTrips(t *testing.T) {
	ctx := context.Background()

	ctx = WithRequestID(ctx, "req_abc")
	ctx = WithTraceID(ctx, "trace-1")
	ctx = WithSpanID(ctx, "span-1")
	start := time.Now()
	ctx = WithStartTime(ctx, start)

	assert.Equal(t, "req_abc", GetRequestID(ctx))
	assert.Equal(t, "trace-1", GetTraceID(ctx))
	assert.Equal(t, "span-1", GetSpanID(ctx))
	assert.Equal(t, start, GetStartTime(ctx))
}

func TestGettersOnEmptyContext(t *testing.T) {
	ctx := context.Background()

	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetTraceID(ctx))
	assert.Empty(t, GetSpanID(ctx))
	assert.True(t, GetStartTime(ctx).IsZero())
}

func TestWithFullTracing(t *testing.T) {
	ctx := WithFullTracing(context.Background())

	assert.NotEmpty(t, GetRequestID(ctx))
	assert.NotEmpty(t, GetTraceID(ctx))
	assert.NotEmpty(t, GetSpanID(ctx))
	assert.False(t, GetStartTime(ctx).IsZero())
}

func TestDuration(t *testing.T) {
	assert.Equal(t, time.Duration(0), Duration(context.Background()))

	ctx := WithStartTime(context.Background(), time.Now().Add(-50*time.Millisecond))
	assert.GreaterOrEqual(t, Duration(ctx), 50*time.Millisecond)
}
