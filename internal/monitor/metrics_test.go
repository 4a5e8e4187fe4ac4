package monitor

import (
	"testing"
	"time"
)

func TestMetricsInitialization(t *testing.T) {
	addr := "127.0.0.1:0" // Random port
	InitMetrics(addr)

	// Exercise the metrics to see if they are working
	NodeUp.Set(1)
	ChecksTotal.Inc()
	StaleCleanupsTotal.WithLabelValues("watch").Inc()

	time.Sleep(100 * time.Millisecond)
}

func TestMetricsValues(t *testing.T) {
	NodeUp.Set(0)
	ChecksTotal.Inc()
	StaleCleanupsTotal.WithLabelValues("status").Inc()
}
