package observability_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Sumatoshi-tech/issuetrack/pkg/observability"
)

func setupTrackingMetrics(t *testing.T) (*observability.TrackingMetrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	tm, err := observability.NewTrackingMetrics(mp.Meter("test"))
	require.NoError(t, err)

	return tm, reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for idx := range rm.ScopeMetrics {
		for midx := range rm.ScopeMetrics[idx].Metrics {
			if rm.ScopeMetrics[idx].Metrics[midx].Name == name {
				return &rm.ScopeMetrics[idx].Metrics[midx]
			}
		}
	}

	return nil
}

func sumByAttr(t *testing.T, m *metricdata.Metrics, key string) map[string]int64 {
	t.Helper()

	require.NotNil(t, m)

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)

	out := make(map[string]int64)

	for _, dp := range sum.DataPoints {
		value, found := dp.Attributes.Value(attribute.Key(key))
		if !found {
			out[""] += dp.Value

			continue
		}

		out[value.AsString()] += dp.Value
	}

	return out
}

func TestTrackingMetrics_RecordFile(t *testing.T) {
	t.Parallel()

	tm, reader := setupTrackingMetrics(t)

	tm.RecordFile(context.Background(), observability.FileStats{
		Mode:       "branch",
		New:        2,
		Matched:    3,
		Closed:     1,
		Backdated:  2,
		ByStrategy: map[string]int{"exact": 2, "line_hash": 1},
		Duration:   3 * time.Millisecond,
	})
	tm.RecordFile(context.Background(), observability.FileStats{Mode: "branch", Matched: 1, ByStrategy: map[string]int{"exact": 1}})

	rm := collectMetrics(t, reader)

	assert.Equal(t, map[string]int64{"branch": 2}, sumByAttr(t, findMetric(rm, "issuetrack.files.total"), "tracking.mode"))
	assert.Equal(t,
		map[string]int64{"new": 2, "matched": 4, "closed": 1},
		sumByAttr(t, findMetric(rm, "issuetrack.issues.total"), "tracking.outcome"))
	assert.Equal(t,
		map[string]int64{"exact": 3, "line_hash": 1},
		sumByAttr(t, findMetric(rm, "issuetrack.matches.total"), "tracking.strategy"))
	assert.Equal(t,
		map[string]int64{"branch": 2},
		sumByAttr(t, findMetric(rm, "issuetrack.issues.backdated.total"), "tracking.mode"))

	hist := findMetric(rm, "issuetrack.file.duration.seconds")
	require.NotNil(t, hist)

	data, ok := hist.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, data.DataPoints, 1)
	assert.Equal(t, uint64(2), data.DataPoints[0].Count)
}

func TestTrackingMetrics_NilSafe(t *testing.T) {
	t.Parallel()

	var tm *observability.TrackingMetrics

	assert.NotPanics(t, func() {
		tm.RecordFile(context.Background(), observability.FileStats{New: 1})
	})
}
