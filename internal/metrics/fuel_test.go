package metrics_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mantle-dev/mantle/internal/metrics"
)

func waitForCount(t *testing.T, m *metrics.FuelMeter, function string, want uint64) metrics.FunctionStats {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if s, ok := m.Snapshot()[function]; ok && s.Count == want {
			return s
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s count=%d", function, want)
	return metrics.FunctionStats{}
}

func TestRecordAccumulatesStats(t *testing.T) {
	t.Parallel()

	m := metrics.NewFuelMeter()
	defer m.Close()

	m.Record("add", 100, 1)
	m.Record("add", 300, 2)
	m.Record("add", 50, 3)

	s := waitForCount(t, m, "add", 3)
	assert.Equal(t, uint64(450), s.TotalConsumed)
	assert.Equal(t, uint64(300), s.Max)
	assert.Equal(t, uint64(50), s.Min)
	assert.Equal(t, uint64(50), s.Last)
}

func TestResetClearsAllEntries(t *testing.T) {
	t.Parallel()

	m := metrics.NewFuelMeter()
	defer m.Close()

	m.Record("f", 10, 1)
	waitForCount(t, m, "f", 1)

	m.Reset()
	assert.Empty(t, m.Snapshot())
}

func TestCloseStopsWriterGoroutine(t *testing.T) {
	t.Parallel()

	m := metrics.NewFuelMeter()
	m.Close()
	require.NotPanics(t, func() {
		m.Record("after-close", 1, 1)
	})
	assert.Empty(t, m.Snapshot())
}
