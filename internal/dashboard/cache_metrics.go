package dashboard

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	cacheMetricsMu          sync.Mutex
	cacheMetricsInitialized bool

	cacheHitCounter     *prometheus.CounterVec
	cacheMissCounter    *prometheus.CounterVec
	seriesBuildDuration *prometheus.HistogramVec
	cacheMetricsError   error
)

// SetupCacheMetrics registers the series cache collectors once. Later calls
// return the first outcome.
func SetupCacheMetrics(reg prometheus.Registerer) error {
	cacheMetricsMu.Lock()
	defer cacheMetricsMu.Unlock()
	if cacheMetricsInitialized {
		return cacheMetricsError
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	cacheHitCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "findash_series_cache_hits_total",
		Help: "Number of derived series served from the cache.",
	}, []string{"source"})
	cacheMissCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "findash_series_cache_miss_total",
		Help: "Number of derived series computed because the cache had no entry.",
	}, []string{"source"})
	seriesBuildDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "findash_series_build_duration_seconds",
		Help:    "Duration required to resolve derived series, cached or not.",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})

	for _, collector := range []prometheus.Collector{cacheHitCounter, cacheMissCounter, seriesBuildDuration} {
		if err := reg.Register(collector); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				switch c := already.ExistingCollector.(type) {
				case *prometheus.CounterVec:
					if collector == cacheHitCounter {
						cacheHitCounter = c
					} else {
						cacheMissCounter = c
					}
				case *prometheus.HistogramVec:
					seriesBuildDuration = c
				default:
					cacheMetricsError = fmt.Errorf("dashboard cache metrics: unexpected collector type %T", c)
				}
				continue
			}
			cacheMetricsError = err
			cacheHitCounter = nil
			cacheMissCounter = nil
			seriesBuildDuration = nil
			cacheMetricsInitialized = true
			return cacheMetricsError
		}
	}

	cacheMetricsInitialized = true
	return cacheMetricsError
}

func recordCacheHit(source string) {
	if cacheHitCounter == nil {
		return
	}
	cacheHitCounter.WithLabelValues(source).Inc()
}

func recordCacheMiss(source string) {
	if cacheMissCounter == nil {
		return
	}
	cacheMissCounter.WithLabelValues(source).Inc()
}

func observeSeriesBuild(source string, d time.Duration) {
	if seriesBuildDuration == nil {
		return
	}
	seriesBuildDuration.WithLabelValues(source).Observe(d.Seconds())
}
