package observability

import (
	"time"

	"github.com/carlosvigna/finhawk-bff/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

const (
	metricRequestDuration = "finhawk_request_duration_seconds"
	metricUpstreamErrors  = "finhawk_upstream_errors_total"
	metricCacheHits       = "finhawk_cache_hits_total"
	metricCacheMisses     = "finhawk_cache_misses_total"
	metricBillsAggregated = "finhawk_bills_aggregated_total"
	metricDataQuality     = "finhawk_bills_data_quality_total"
	metricRequests        = "finhawk_requests_total"
)

// Metrics holds all Prometheus metrics for the BFF.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	upstreamErrors  *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	billsAggregated prometheus.Counter
	dataQuality     *prometheus.CounterVec
	requestsTotal   *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. A private registry lets tests call NewMetrics
// repeatedly without duplicate collector panics.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricRequestDuration,
				Help:    "Duration of dashboard operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		upstreamErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricUpstreamErrors,
				Help: "Total errors from the FinHawk API, by kind.",
			},
			[]string{"kind"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricCacheHits,
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricCacheMisses,
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		billsAggregated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: metricBillsAggregated,
				Help: "Total bill records fed into dashboard aggregations.",
			},
		),
		dataQuality: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricDataQuality,
				Help: "Bill records degraded during aggregation, by issue.",
			},
			[]string{"issue"},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricRequests,
				Help: "Total dashboard requests processed.",
			},
			[]string{"status"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrUpstreamError increments the upstream error counter.
func (m *Metrics) IncrUpstreamError(kind string) {
	m.upstreamErrors.WithLabelValues(kind).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// RecordDataQuality counts the aggregated records and their issues.
func (m *Metrics) RecordDataQuality(q domain.DataQuality) {
	m.billsAggregated.Add(float64(q.Total))
	if q.UnresolvedType > 0 {
		m.dataQuality.WithLabelValues("unresolved_type").Add(float64(q.UnresolvedType))
	}
	if q.MissingMaturity > 0 {
		m.dataQuality.WithLabelValues("missing_maturity").Add(float64(q.MissingMaturity))
	}
	if q.Uncategorized > 0 {
		m.dataQuality.WithLabelValues("uncategorized").Add(float64(q.Uncategorized))
	}
}

// IncrRequest increments the request counter with a status label.
func (m *Metrics) IncrRequest(status string) {
	m.requestsTotal.WithLabelValues(status).Inc()
}

// Snapshot returns the cumulative values served by GET /v1/metrics/bff.
func (m *Metrics) Snapshot() *domain.BFFMetrics {
	families := m.gather()

	requests := labelSums(families[metricRequests], "status")
	totalRequests := requests["success"] + requests["error"]
	hits := sumAll(families[metricCacheHits])
	misses := sumAll(families[metricCacheMisses])

	snap := &domain.BFFMetrics{
		TotalRequests:     int64(totalRequests),
		UpstreamErrors:    toInt64(labelSums(families[metricUpstreamErrors], "kind")),
		BillsAggregated:   int64(sumAll(families[metricBillsAggregated])),
		DataQualityIssues: toInt64(labelSums(families[metricDataQuality], "issue")),
		Period:            "all_time",
	}
	if totalRequests > 0 {
		snap.ErrorRate = requests["error"] / totalRequests
	}
	if hits+misses > 0 {
		snap.CacheHitRate = hits / (hits + misses)
	}
	if count, sum := histogramTotals(families[metricRequestDuration]); count > 0 {
		snap.AvgLatencyMs = sum / float64(count) * 1000
	}
	return snap
}

func (m *Metrics) gather() map[string]*dto.MetricFamily {
	out := make(map[string]*dto.MetricFamily)
	mfs, err := m.Registry.Gather()
	if err != nil {
		return out
	}
	for _, mf := range mfs {
		out[mf.GetName()] = mf
	}
	return out
}

// labelSums returns the counter value for each value of label.
func labelSums(mf *dto.MetricFamily, label string) map[string]float64 {
	out := make(map[string]float64)
	if mf == nil {
		return out
	}
	for _, metric := range mf.GetMetric() {
		for _, lp := range metric.GetLabel() {
			if lp.GetName() == label {
				out[lp.GetValue()] += metric.GetCounter().GetValue()
			}
		}
	}
	return out
}

func sumAll(mf *dto.MetricFamily) float64 {
	if mf == nil {
		return 0
	}
	var total float64
	for _, metric := range mf.GetMetric() {
		total += metric.GetCounter().GetValue()
	}
	return total
}

func histogramTotals(mf *dto.MetricFamily) (uint64, float64) {
	if mf == nil {
		return 0, 0
	}
	var (
		count uint64
		sum   float64
	)
	for _, metric := range mf.GetMetric() {
		h := metric.GetHistogram()
		count += h.GetSampleCount()
		sum += h.GetSampleSum()
	}
	return count, sum
}

func toInt64(in map[string]float64) map[string]int64 {
	out := make(map[string]int64, len(in))
	for k, v := range in {
		out[k] = int64(v)
	}
	return out
}
