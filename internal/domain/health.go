package domain

// ============================================================
// Health & Metrics API Responses
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded, unhealthy
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an individual service.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latencyMs"`
	LastChecked string `json:"lastChecked"`
}

// BFFMetrics is returned by GET /v1/metrics/bff.
type BFFMetrics struct {
	TotalRequests     int64            `json:"totalRequests"`
	ErrorRate         float64          `json:"errorRate"`
	CacheHitRate      float64          `json:"cacheHitRate"`
	AvgLatencyMs      float64          `json:"avgLatencyMs"`
	UpstreamErrors    map[string]int64 `json:"upstreamErrors"`
	BillsAggregated   int64            `json:"billsAggregated"`
	DataQualityIssues map[string]int64 `json:"dataQualityIssues"`
	Period            string           `json:"period"`
}
