// internal/generator/metrics.go
package generator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	generationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qr_generations_total",
			Help: "QR generations by rendering method, format and outcome.",
		},
		[]string{"method", "format", "status"},
	)
	generationFallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qr_generation_fallbacks_total",
		Help: "Generations retried with the fallback method.",
	})
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qr_cache_hits_total",
		Help: "Generation cache hits.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qr_cache_misses_total",
		Help: "Generation cache misses, including expired entries.",
	})
)
