package observability

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestObservability_Spans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	obs, err := New("support-bot-test",
		WithRegisterer(prometheus.NewRegistry()),
		WithSpanProcessor(recorder),
		WithoutGlobal(),
	)
	require.NoError(t, err)
	defer obs.Shutdown(context.Background())

	_, span := obs.StartSpan(context.Background(), "dialogue.turn", attribute.String("intent", "greeting"))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "dialogue.turn", ended[0].Name())
	assert.Contains(t, ended[0].Attributes(), attribute.String("intent", "greeting"))
}

func TestObservability_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := New("support-bot-test", WithRegisterer(reg), WithoutGlobal())
	require.NoError(t, err)
	defer obs.Shutdown(context.Background())

	ctx := context.Background()
	obs.RecordJobProcessed(ctx, "dialogue-get-response", "success")
	obs.RecordJobDuration(ctx, "dialogue-get-response", 3*time.Millisecond, "success")

	families, err := reg.Gather()
	require.NoError(t, err)

	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	joined := strings.Join(names, ",")
	assert.Contains(t, joined, "jobs_processed")
	assert.Contains(t, joined, "jobs_duration")
}

func TestObservability_NilSafe(t *testing.T) {
	var obs *Observability
	ctx, span := obs.StartSpan(context.Background(), "noop")
	span.End()

	assert.NotNil(t, ctx)
	obs.RecordJobProcessed(ctx, "t", "success")
	assert.NoError(t, obs.Shutdown(ctx))
}
