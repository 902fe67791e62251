package prometheus

// AppMetrics holds the screening service's metric set.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec

	// Screening layer
	ScreensTotal      CounterVec   // labels: result ("pass"|"reject"), reason
	OracleCallsTotal  CounterVec   // labels: op ("substructure"|"count"|"exact")
	EncodeDuration    HistogramVec // labels: op ("ingest"|"query")
	RecordBytes       HistogramVec // labels: op ("ingest")
	FalsePositiveRate GaugeVec     // labels: op; oracle rejections / screen passes

	// Search layer
	SearchDuration    HistogramVec // labels: op ("substructure"|"exact"|"count")
	CandidatesScanned HistogramVec // labels: op
	IngestTotal       CounterVec   // labels: status ("ok"|"duplicate"|"error")

	// Infrastructure layer
	DBQueryDuration  HistogramVec // labels: query
	CacheHitsTotal   CounterVec   // labels: cache
	CacheMissesTotal CounterVec   // labels: cache

	// System health
	ErrorsTotal CounterVec // labels: code
}

// Default buckets
var (
	DefaultHTTPDurationBuckets   = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultEncodeDurationBuckets = []float64{.0001, .0005, .001, .005, .01, .05, .1, .5}
	DefaultSearchDurationBuckets = []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10}
	DefaultRecordSizeBuckets     = []float64{16, 64, 256, 1024, 4096, 16384, 65536}
	DefaultCandidateBuckets      = []float64{1, 10, 100, 1000, 10000, 100000}
	DefaultDBDurationBuckets     = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5}
)

// NewAppMetrics registers every metric against the collector and returns the
// populated set.  Registration failures degrade to no-ops inside the
// collector, so the returned struct is always fully usable.
func NewAppMetrics(c MetricsCollector) *AppMetrics {
	return &AppMetrics{
		HTTPRequestsTotal: c.RegisterCounter("http_requests_total",
			"Total HTTP requests by method, path, and status.",
			"method", "path", "status"),
		HTTPRequestDuration: c.RegisterHistogram("http_request_duration_seconds",
			"HTTP request latency.", DefaultHTTPDurationBuckets,
			"method", "path"),

		ScreensTotal: c.RegisterCounter("screens_total",
			"Containment screen verdicts by result and rejecting check.",
			"result", "reason"),
		OracleCallsTotal: c.RegisterCounter("oracle_calls_total",
			"Isomorphism oracle invocations by operation.",
			"op"),
		EncodeDuration: c.RegisterHistogram("encode_duration_seconds",
			"Fingerprint encoding latency.", DefaultEncodeDurationBuckets,
			"op"),
		RecordBytes: c.RegisterHistogram("record_bytes",
			"Assembled record sizes in bytes, prefix included.",
			DefaultRecordSizeBuckets, "op"),
		FalsePositiveRate: c.RegisterGauge("screen_false_positive_rate",
			"Fraction of screen passes the oracle subsequently rejected.",
			"op"),

		SearchDuration: c.RegisterHistogram("search_duration_seconds",
			"End-to-end search latency by operation.",
			DefaultSearchDurationBuckets, "op"),
		CandidatesScanned: c.RegisterHistogram("search_candidates_scanned",
			"Candidates fetched from storage per search.",
			DefaultCandidateBuckets, "op"),
		IngestTotal: c.RegisterCounter("ingest_total",
			"Molecule ingest outcomes.", "status"),

		DBQueryDuration: c.RegisterHistogram("db_query_duration_seconds",
			"Record store query latency.", DefaultDBDurationBuckets,
			"query"),
		CacheHitsTotal: c.RegisterCounter("cache_hits_total",
			"Cache hits by cache name.", "cache"),
		CacheMissesTotal: c.RegisterCounter("cache_misses_total",
			"Cache misses by cache name.", "cache"),

		ErrorsTotal: c.RegisterCounter("errors_total",
			"Errors surfaced to callers by error code.", "code"),
	}
}

// NewNopAppMetrics returns an AppMetrics whose every member discards
// observations.  Intended for tests and for components constructed without
// a metrics pipeline.
func NewNopAppMetrics() *AppMetrics {
	return &AppMetrics{
		HTTPRequestsTotal:   &noopCounterVec{},
		HTTPRequestDuration: &noopHistogramVec{},
		ScreensTotal:        &noopCounterVec{},
		OracleCallsTotal:    &noopCounterVec{},
		EncodeDuration:      &noopHistogramVec{},
		RecordBytes:         &noopHistogramVec{},
		FalsePositiveRate:   &noopGaugeVec{},
		SearchDuration:      &noopHistogramVec{},
		CandidatesScanned:   &noopHistogramVec{},
		IngestTotal:         &noopCounterVec{},
		DBQueryDuration:     &noopHistogramVec{},
		CacheHitsTotal:      &noopCounterVec{},
		CacheMissesTotal:    &noopCounterVec{},
		ErrorsTotal:         &noopCounterVec{},
	}
}
