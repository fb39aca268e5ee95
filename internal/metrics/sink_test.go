package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/agbru/tallyrun/internal/progress"
)

var (
	_ progress.Sink               = (*Sink)(nil)
	_ progress.Resetter           = (*Sink)(nil)
	_ progress.CompletionObserver = (*Sink)(nil)
)

func TestSinkRecordsSteps(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	s, err := NewSink(reg, nil)
	require.NoError(t, err)

	s.OnReset(2)
	for v := 1; v <= 3; v++ {
		s.OnProgress(0, v)
		s.OnWorkerTotalChanged(0, v)
		s.OnGrandTotalChanged(v)
	}
	s.OnProgress(1, 1)
	s.OnWorkerTotalChanged(1, 1)
	s.OnGrandTotalChanged(4)
	s.OnWorkerCompleted(1)

	require.Equal(t, 3.0, testutil.ToFloat64(s.steps.WithLabelValues("0")))
	require.Equal(t, 1.0, testutil.ToFloat64(s.steps.WithLabelValues("1")))
	require.Equal(t, 3.0, testutil.ToFloat64(s.progress.WithLabelValues("0")))
	require.Equal(t, 1.0, testutil.ToFloat64(s.workerTotal.WithLabelValues("1")))
	require.Equal(t, 4.0, testutil.ToFloat64(s.grandTotal))
	require.Equal(t, 2.0, testutil.ToFloat64(s.workers))
	require.Equal(t, 1.0, testutil.ToFloat64(s.completions))
	require.Equal(t, 1.0, testutil.ToFloat64(s.resets))
}

func TestSinkKeepsHighestGrandTotal(t *testing.T) {
	t.Parallel()

	s, err := NewSink(prometheus.NewRegistry(), nil)
	require.NoError(t, err)

	s.OnReset(2)
	s.OnGrandTotalChanged(7)
	s.OnGrandTotalChanged(6)
	require.Equal(t, 7.0, testutil.ToFloat64(s.grandTotal))
}

func TestSinkResetClearsGenerationSeries(t *testing.T) {
	t.Parallel()

	s, err := NewSink(prometheus.NewRegistry(), nil)
	require.NoError(t, err)

	s.OnReset(4)
	s.OnProgress(3, 50)
	s.OnGrandTotalChanged(50)

	s.OnReset(2)
	require.Equal(t, 2, testutil.CollectAndCount(s.progress, "tallyrun_worker_progress"))
	require.Equal(t, 0.0, testutil.ToFloat64(s.grandTotal))
	require.Equal(t, 2.0, testutil.ToFloat64(s.resets))
	// Step counters are cumulative across generations.
	require.Equal(t, 1.0, testutil.ToFloat64(s.steps.WithLabelValues("3")))
}

func TestSinkMemoryGauges(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	_, err := NewSink(reg, NewMemoryCollector())
	require.NoError(t, err)

	n, err := testutil.GatherAndCount(reg,
		"tallyrun_memory_heap_alloc_bytes",
		"tallyrun_memory_sys_bytes",
		"tallyrun_memory_gc_cycles",
	)
	require.NoError(t, err)
	require.Equal(t, 3, n)
}

func TestSinkDuplicateRegistration(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	_, err := NewSink(reg, nil)
	require.NoError(t, err)

	_, err = NewSink(reg, nil)
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "register progress collector"))
}
