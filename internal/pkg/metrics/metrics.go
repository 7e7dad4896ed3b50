package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry owns the service's Prometheus collectors.
type Registry struct {
	reg *prometheus.Registry

	JobsEnqueued      *prometheus.CounterVec // by origin: create, update, delete, full
	JobsDropped       prometheus.Counter
	JobsFailed        prometheus.Counter
	RepairsScheduled  prometheus.Counter
	JobDurationSec    prometheus.Histogram
	ProductsEvaluated prometheus.Counter
	SnapshotsWritten  *prometheus.CounterVec // by op: upsert, clear
	BatchesFlushed    prometheus.Counter
	HistoryFailures   prometheus.Counter
	CacheHits         prometheus.Counter
	CacheMisses       prometheus.Counter
	OutboxRelayed     *prometheus.CounterVec // by result: published, retry, failed
}

// NewRegistry creates a private registry with all collectors registered.
func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	enqueued := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "promo_recalc_jobs_enqueued_total",
		Help: "Recalculation jobs accepted by the queue.",
	}, []string{"origin"})
	dropped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "promo_recalc_jobs_dropped_total",
		Help: "Recalculation jobs rejected because the queue was full or unavailable.",
	})
	failed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "promo_recalc_jobs_failed_total",
		Help: "Recalculation jobs that ended with an error.",
	})
	repairs := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "promo_recalc_repairs_scheduled_total",
		Help: "Full recalculations scheduled after a failed job.",
	})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "promo_recalc_job_duration_seconds",
		Buckets: prometheus.DefBuckets,
	})
	evaluated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "promo_recalc_products_evaluated_total",
	})
	written := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "promo_recalc_snapshots_written_total",
	}, []string{"op"})
	flushed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "promo_recalc_batches_flushed_total",
	})
	historyFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "promo_history_write_failures_total",
	})
	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{Name: "promo_price_cache_hits_total"})
	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{Name: "promo_price_cache_misses_total"})

	outboxRelayed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "promo_outbox_events_relayed_total",
		Help: "Outbox events handled by the relay.",
	}, []string{"result"})

	r.MustRegister(enqueued, dropped, failed, repairs, duration, evaluated, written, flushed, historyFailures, cacheHits, cacheMisses, outboxRelayed)

	return &Registry{
		reg:               r,
		JobsEnqueued:      enqueued,
		JobsDropped:       dropped,
		JobsFailed:        failed,
		RepairsScheduled:  repairs,
		JobDurationSec:    duration,
		ProductsEvaluated: evaluated,
		SnapshotsWritten:  written,
		BatchesFlushed:    flushed,
		HistoryFailures:   historyFailures,
		CacheHits:         cacheHits,
		CacheMisses:       cacheMisses,
		OutboxRelayed:     outboxRelayed,
	}
}

// Gatherer exposes the underlying registry, mostly for tests.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

// Handler serves the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
