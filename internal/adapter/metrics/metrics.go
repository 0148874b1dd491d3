package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// IngestMetrics holds all Prometheus metrics for the webhook ingestion
// service.
type IngestMetrics struct {
	// WebhooksTotal counts ingestion requests by outcome and canonical topic.
	// Ignored topics get their own outcome so they stay distinguishable from
	// synchronized events in telemetry while the response is still a 200.
	WebhooksTotal     *prometheus.CounterVec
	SignatureFailures prometheus.Counter
	TenantCacheHits   prometheus.Counter
	TenantCacheMisses prometheus.Counter
}

// NewIngestMetrics initializes and registers the metrics against reg. Tests
// pass a fresh registry to avoid duplicate registration across cases.
func NewIngestMetrics(reg prometheus.Registerer) *IngestMetrics {
	factory := promauto.With(reg)
	return &IngestMetrics{
		WebhooksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storesync",
			Subsystem: "ingest",
			Name:      "webhooks_total",
			Help:      "Total number of webhook deliveries by outcome and topic.",
		}, []string{"outcome", "topic"}), // outcome: synced, ignored, error_validation, error_auth, error_not_found, error_config, error_transient, error_processing
		SignatureFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "storesync",
			Subsystem: "ingest",
			Name:      "signature_failures_total",
			Help:      "Total number of webhook deliveries rejected for signature mismatch.",
		}),
		TenantCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "storesync",
			Subsystem: "directory",
			Name:      "tenant_cache_hits_total",
			Help:      "Total number of tenant resolutions served from cache.",
		}),
		TenantCacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "storesync",
			Subsystem: "directory",
			Name:      "tenant_cache_misses_total",
			Help:      "Total number of tenant resolutions that fell through to the directory.",
		}),
	}
}
