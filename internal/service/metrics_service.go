package service

import (
	"fmt"
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/negative-records-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for HTTP traffic,
// caching and the record access workflow.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter

	locksClaimed    prometheus.Counter
	lockTransfers   prometheus.Counter
	unlockRequests  *prometheus.CounterVec
	prints          *prometheus.CounterVec
	paymentRequired prometheus.Counter
	effectFailures  *prometheus.CounterVec

	cacheHitCount  uint64
	cacheMissCount uint64
}

// NewMetricsService registers the Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	locksClaimed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "record_locks_claimed_total",
		Help: "Locks created by a first search touch or an approval on an unlocked record",
	})

	lockTransfers := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "record_lock_transfers_total",
		Help: "Locks reassigned by an approved unlock request",
	})

	unlockRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "unlock_requests_total",
		Help: "Unlock requests by resulting status",
	}, []string{"status"})

	prints := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "record_prints_total",
		Help: "Successful record prints",
	}, []string{"billed"})

	paymentRequired := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "payment_required_total",
		Help: "Prints rejected for insufficient prepaid credit",
	})

	effectFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "effect_failures_total",
		Help: "Post-commit side effects that failed",
	}, []string{"kind"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses,
		locksClaimed, lockTransfers, unlockRequests, prints, paymentRequired, effectFailures, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheHitRatio:   cacheHitRatio,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		locksClaimed:    locksClaimed,
		lockTransfers:   lockTransfers,
		unlockRequests:  unlockRequests,
		prints:          prints,
		paymentRequired: paymentRequired,
		effectFailures:  effectFailures,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry returns the underlying registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	if total := hits + misses; total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// RecordLocksClaimed counts newly created locks.
func (m *MetricsService) RecordLocksClaimed(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.locksClaimed.Add(float64(n))
}

// RecordLockTransfer counts an ownership transfer.
func (m *MetricsService) RecordLockTransfer() {
	if m == nil {
		return
	}
	m.lockTransfers.Inc()
}

// RecordUnlockRequests counts requests entering the given status.
func (m *MetricsService) RecordUnlockRequests(status models.UnlockRequestStatus, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.unlockRequests.WithLabelValues(string(status)).Add(float64(n))
}

// RecordPrint counts a completed print.
func (m *MetricsService) RecordPrint(billed bool) {
	if m == nil {
		return
	}
	m.prints.WithLabelValues(strconv.FormatBool(billed)).Inc()
}

// RecordPaymentRequired counts a print rejected for lack of credit.
func (m *MetricsService) RecordPaymentRequired() {
	if m == nil {
		return
	}
	m.paymentRequired.Inc()
}

// RecordEffectFailure counts a failed post-commit effect.
func (m *MetricsService) RecordEffectFailure(kind models.EffectKind) {
	if m == nil {
		return
	}
	m.effectFailures.WithLabelValues(string(kind)).Inc()
}
