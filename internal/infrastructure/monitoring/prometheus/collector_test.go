package prometheus

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCollector(t *testing.T) MetricsCollector {
	t.Helper()
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "molscreen_test"}, nil)
	require.NoError(t, err)
	return c
}

// scrapeMetrics runs the exposition handler and returns its output.
func scrapeMetrics(t *testing.T, c MetricsCollector) string {
	t.Helper()
	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(w.Result().Body)
	require.NoError(t, err)
	return string(body)
}

func TestNewMetricsCollector_RequiresNamespace(t *testing.T) {
	_, err := NewMetricsCollector(CollectorConfig{}, nil)
	assert.Error(t, err)
}

func TestRegisterCounter_ObservationsAppearInScrape(t *testing.T) {
	c := newTestCollector(t)

	counter := c.RegisterCounter("screens_total", "Screen verdicts.", "result", "reason")
	counter.WithLabelValues("reject", "size").Inc()
	counter.WithLabelValues("reject", "size").Inc()
	counter.WithLabelValues("pass", "").Inc()

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `molscreen_test_screens_total{reason="size",result="reject"} 2`)
	assert.Contains(t, out, `molscreen_test_screens_total{reason="",result="pass"} 1`)
}

func TestRegisterCounter_DuplicateReturnsSameSeries(t *testing.T) {
	c := newTestCollector(t)

	a := c.RegisterCounter("dup_total", "first", "l")
	b := c.RegisterCounter("dup_total", "second", "l")
	a.WithLabelValues("x").Inc()
	b.WithLabelValues("x").Inc()

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `molscreen_test_dup_total{l="x"} 2`)
}

func TestRegisterGaugeAndHistogram(t *testing.T) {
	c := newTestCollector(t)

	gauge := c.RegisterGauge("fp_rate", "False positive rate.", "op")
	gauge.WithLabelValues("substructure").Set(0.25)

	hist := c.RegisterHistogram("encode_seconds", "Encode latency.", []float64{0.001, 0.01, 0.1}, "op")
	hist.WithLabelValues("ingest").Observe(0.005)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `molscreen_test_fp_rate{op="substructure"} 0.25`)
	assert.Contains(t, out, `molscreen_test_encode_seconds_count{op="ingest"} 1`)
	assert.Contains(t, out, `molscreen_test_encode_seconds_bucket{op="ingest",le="0.01"} 1`)
}

func TestTimer(t *testing.T) {
	c := newTestCollector(t)
	hist := c.RegisterHistogram("timed_seconds", "help", nil, "op")

	timer := NewTimer(hist.WithLabelValues("x"))
	timer.ObserveDuration()

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `molscreen_test_timed_seconds_count{op="x"} 1`)

	assert.NotPanics(t, func() { NewTimer(nil).ObserveDuration() })
}

func TestNewAppMetrics_FullyPopulated(t *testing.T) {
	m := NewAppMetrics(newTestCollector(t))
	require.NotNil(t, m)

	assert.NotNil(t, m.HTTPRequestsTotal)
	assert.NotNil(t, m.HTTPRequestDuration)
	assert.NotNil(t, m.ScreensTotal)
	assert.NotNil(t, m.OracleCallsTotal)
	assert.NotNil(t, m.EncodeDuration)
	assert.NotNil(t, m.RecordBytes)
	assert.NotNil(t, m.FalsePositiveRate)
	assert.NotNil(t, m.SearchDuration)
	assert.NotNil(t, m.CandidatesScanned)
	assert.NotNil(t, m.IngestTotal)
	assert.NotNil(t, m.DBQueryDuration)
	assert.NotNil(t, m.CacheHitsTotal)
	assert.NotNil(t, m.CacheMissesTotal)
	assert.NotNil(t, m.ErrorsTotal)
}

func TestNopAppMetrics_SafeEverywhere(t *testing.T) {
	m := NewNopAppMetrics()
	assert.NotPanics(t, func() {
		m.ScreensTotal.WithLabelValues("pass", "").Inc()
		m.IngestTotal.WithLabelValues("ok").Add(3)
		m.FalsePositiveRate.WithLabelValues("substructure").Set(0.5)
		m.EncodeDuration.WithLabelValues("query").Observe(0.001)
	})
}

func TestAppMetrics_EndToEndScrape(t *testing.T) {
	c := newTestCollector(t)
	m := NewAppMetrics(c)

	m.ScreensTotal.WithLabelValues("reject", "rings").Inc()
	m.IngestTotal.WithLabelValues("duplicate").Inc()

	out := scrapeMetrics(t, c)
	assert.True(t, strings.Contains(out, `molscreen_test_screens_total{reason="rings",result="reject"} 1`))
	assert.True(t, strings.Contains(out, `molscreen_test_ingest_total{status="duplicate"} 1`))
}
