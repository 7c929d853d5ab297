package dashboard

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricThreadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "kuberift",
		Name:      "dashboard_threads_total",
		Help:      "Total number of dashboard render threads started.",
	})
	metricThreadsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "kuberift",
		Name:      "dashboard_threads_active",
		Help:      "Number of dashboard render threads currently running.",
	})
	metricRawSessions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kuberift",
		Name:      "dashboard_raw_sessions_total",
		Help:      "Raw terminal takeovers by outcome.",
	}, []string{"outcome"})
)

func threadStarted() {
	metricThreadsTotal.Inc()
	metricThreadsActive.Inc()
}

func threadStopped() {
	metricThreadsActive.Dec()
}

func recordRaw(err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metricRawSessions.WithLabelValues(outcome).Inc()
}
