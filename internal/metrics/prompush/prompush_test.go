package prompush

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesreport/internal/metrics"
)

// readCounterValue reads the current value of a Counter for assertions in tests.
func readCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()

	m := &dto.Metric{}
	require.NoError(t, c.Write(m))
	require.NotNil(t, m.GetCounter())
	return m.GetCounter().GetValue()
}

// readSummaryCountSum reads sample count and sum from a SummaryVec.
func readSummaryCountSum(t *testing.T, v *prometheus.SummaryVec, labels ...string) (uint64, float64) {
	t.Helper()

	m := &dto.Metric{}
	metric, ok := v.WithLabelValues(labels...).(prometheus.Metric)
	require.True(t, ok)
	require.NoError(t, metric.Write(m))
	require.NotNil(t, m.GetSummary())
	return m.GetSummary().GetSampleCount(), m.GetSummary().GetSampleSum()
}

func TestNewBackend(t *testing.T) {
	t.Parallel()

	_, err := NewBackend("salesreport", "")
	require.Error(t, err)

	b, err := NewBackend("", "http://pushgateway:9091")
	require.NoError(t, err)
	assert.Equal(t, "salesreport", b.jobName)

	b, err = NewBackend("nightly", "http://pushgateway:9091")
	require.NoError(t, err)
	assert.Equal(t, "nightly", b.jobName)
	assert.Equal(t, "http://pushgateway:9091", b.gatewayURL)
}

func TestIncCounter(t *testing.T) {
	t.Parallel()

	b, err := NewBackend("salesreport", "http://example.com")
	require.NoError(t, err)

	b.IncCounter(metrics.StepTotal, 1, metrics.Labels{"step": "load", "status": "success"})
	b.IncCounter(metrics.StepTotal, 1, metrics.Labels{"step": "load", "status": "success"})
	b.IncCounter(metrics.RecordsTotal, 6435, metrics.Labels{"kind": "ingested"})
	b.IncCounter(metrics.AggregateRowsTotal, 45, metrics.Labels{"aggregate": "stores"})
	b.IncCounter("unknown_metric", 10, metrics.Labels{"foo": "bar"})

	assert.Equal(t, 2.0, readCounterValue(t, b.stepCounter.WithLabelValues("load", "success")))
	assert.Equal(t, 6435.0, readCounterValue(t, b.recordCounter.WithLabelValues("ingested")))
	assert.Equal(t, 45.0, readCounterValue(t, b.aggCounter.WithLabelValues("stores")))
	assert.Equal(t, 0.0, readCounterValue(t, b.aggCounter.WithLabelValues("days")))
}

// TestNilCollectors ensures a zero-value backend does not panic.
func TestNilCollectors(t *testing.T) {
	t.Parallel()

	b := &Backend{}
	b.IncCounter(metrics.StepTotal, 1, metrics.Labels{"step": "s", "status": "success"})
	b.IncCounter(metrics.RecordsTotal, 1, metrics.Labels{"kind": "ingested"})
	b.IncCounter(metrics.AggregateRowsTotal, 1, metrics.Labels{"aggregate": "days"})
	b.ObserveHistogram(metrics.StepDurationSeconds, 1, metrics.Labels{})
}

func TestObserveHistogram(t *testing.T) {
	t.Parallel()

	b, err := NewBackend("salesreport", "http://example.com")
	require.NoError(t, err)

	lbls := metrics.Labels{"step": "export", "status": "success"}
	b.ObserveHistogram(metrics.StepDurationSeconds, 1.5, lbls)
	b.ObserveHistogram("other_metric", 2.0, lbls)

	count, sum := readSummaryCountSum(t, b.stepDuration, "export", "success")
	assert.EqualValues(t, 1, count)
	assert.Equal(t, 1.5, sum)
}

// TestFlush verifies that Flush pushes the registry to the Pushgateway under
// the job grouping key.
func TestFlush(t *testing.T) {
	t.Parallel()

	type pushed struct {
		method string
		path   string
		body   string
	}
	reqCh := make(chan pushed, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		body, _ := io.ReadAll(r.Body)
		reqCh <- pushed{method: r.Method, path: r.URL.Path, body: string(body)}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	b, err := NewBackend("salesreport", server.URL)
	require.NoError(t, err)
	b.IncCounter(metrics.StepTotal, 1, metrics.Labels{"step": "ingest", "status": "success"})

	require.NoError(t, b.Flush())

	select {
	case got := <-reqCh:
		assert.Equal(t, http.MethodPut, got.method)
		assert.True(t, strings.HasSuffix(got.path, "/job/salesreport"), got.path)
		assert.NotEmpty(t, got.body)
	default:
		t.Fatal("Flush() did not send a request to the Pushgateway")
	}
}

func BenchmarkIncCounterStep(b *testing.B) {
	backend, err := NewBackend("salesreport", "http://example.com")
	if err != nil {
		b.Fatal(err)
	}
	labels := metrics.Labels{"step": "load", "status": "success"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		backend.IncCounter(metrics.StepTotal, 1, labels)
	}
}
