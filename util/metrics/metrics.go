// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Borrows = promauto.NewCounter(prometheus.CounterOpts{
		Name: "booklend_borrows_total",
		Help: "Successful borrow operations.",
	})

	Returns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "booklend_returns_total",
		Help: "Successful return operations.",
	})

	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "booklend_cache_hits_total",
		Help: "Book cache hits.",
	})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "booklend_cache_misses_total",
		Help: "Book cache misses.",
	})

	OnlineUsers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "booklend_online_users",
		Help: "Users currently marked online.",
	})
)
