package server

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/jonnyholland/ComposableArchitecturePattern/api"
	"github.com/jonnyholland/ComposableArchitecturePattern/courier"
	"github.com/jonnyholland/ComposableArchitecturePattern/errors"
	"github.com/jonnyholland/ComposableArchitecturePattern/logger"
	"github.com/jonnyholland/ComposableArchitecturePattern/observability"
	"github.com/jonnyholland/ComposableArchitecturePattern/resilience"
)

func TestJSONDecoder(t *testing.T) {
	var d JSONDecoder

	var v map[string]any
	require.NoError(t, d.Decode([]byte(`{"n": 12345678901234567890}`), &v, DecodeOptions{UseNumber: true}))
	assert.Equal(t, json.Number("12345678901234567890"), v["n"])

	assert.Error(t, d.Decode([]byte(`{"a":1} {"a":2}`), &v, DecodeOptions{}), "trailing values are rejected")

	var s struct{ A int }
	assert.Error(t, d.Decode([]byte(`{"A":1,"B":2}`), &s, DecodeOptions{DisallowUnknownFields: true}))
	assert.NoError(t, d.Decode([]byte(`{"A":1,"B":2}`), &s, DecodeOptions{}))
}

func TestPipeline_MetricsAndLogging(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	metrics, err := observability.NewPipelineMetrics(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test"))
	require.NoError(t, err)

	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "debug", Format: "json"}, "test", &buf)

	calls := 0
	c := courier.Func(func(context.Context, api.Request, string) ([]byte, error) {
		calls++
		if calls == 1 {
			return nil, errors.Network(nil)
		}
		return []byte(`true`), nil
	})
	p, err := New(Config{Environment: "test", BaseURL: "https://api.example.test"},
		WithCourier(c),
		WithMetrics(metrics),
		WithLogger(log),
		WithRetryPolicy(&resilience.RetryPolicy{MaxAttempts: 2, Backoff: resilience.NoBackoff()}),
	)
	require.NoError(t, err)

	desc := api.New("/flags", api.WithResponseKinds(api.KindFor[bool]()))
	ok, err := Execute[bool](context.Background(), p, desc, api.MethodGet)
	require.NoError(t, err)
	assert.True(t, ok)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	totals := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					totals[m.Name] += dp.Value
				}
			}
		}
	}
	assert.Equal(t, int64(2), totals["cap.attempts"])
	assert.Equal(t, int64(1), totals["cap.retries"])
	assert.Equal(t, int64(1), totals["cap.calls"])
	assert.Equal(t, int64(0), totals["cap.in_flight"])

	assert.Contains(t, buf.String(), "retrying after failure")
	assert.Contains(t, buf.String(), `"api_id":"`+desc.ID()+`"`)
}
