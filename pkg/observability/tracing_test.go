package observability

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestTracerProviderExportsSessionSpans(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	var out bytes.Buffer
	tp, err := NewTracerProvider("kuberift", "test", &out)
	require.NoError(t, err)

	ctx, span := StartSpan(context.Background(), "dashboard.session")
	span.SetAttributes(AttrSessionID.String("01HX"), AttrPrincipal.String("ada"))
	AddEvent(ctx, "raw.started")
	RecordError(ctx, errors.New("exec failed"))
	RecordError(ctx, nil)
	span.End()

	require.NoError(t, tp.Shutdown(context.Background()))

	exported := out.String()
	assert.Contains(t, exported, "dashboard.session")
	assert.Contains(t, exported, "kuberift.session.id")
	assert.Contains(t, exported, "raw.started")
	assert.Contains(t, exported, "exec failed")
}

func TestTracerWithoutProviderIsNoop(t *testing.T) {
	_, span := StartSpan(context.Background(), "noop")
	defer span.End()
	assert.NotNil(t, Tracer())
}
