package monitor

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/halcyonchain/nodectl/pkg/logger"
)

var (
	// NodeUp is 1 while the watch loop sees the tracked node process alive.
	NodeUp = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "nodectl_node_up",
		Help: "Whether the supervised node process is alive",
	})
	// ChecksTotal counts liveness polls performed by the watch loop.
	ChecksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "nodectl_liveness_checks_total",
		Help: "Total number of liveness checks",
	})
	// StaleCleanupsTotal counts stale PID files removed, partitioned by the
	// action that found them.
	StaleCleanupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nodectl_stale_cleanups_total",
		Help: "Total number of stale pid files removed",
	}, []string{"action"})
)

var registerOnce sync.Once

// InitMetrics registers the metrics and starts an HTTP server exposing them
// on addr. Used by watch mode; one-shot actions never call it.
func InitMetrics(addr string) {
	registerOnce.Do(func() {
		prometheus.MustRegister(NodeUp)
		prometheus.MustRegister(ChecksTotal)
		prometheus.MustRegister(StaleCleanupsTotal)
	})

	go func() {
		http.Handle("/metrics", promhttp.Handler())
		logger.Log.Info("Metrics server starting", "addr", addr)
		if err := http.ListenAndServe(addr, nil); err != nil {
			logger.Log.Error("Metrics server failed", "err", err)
		}
	}()
}
