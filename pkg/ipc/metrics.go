package ipc

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	metricSessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "kuberift",
		Subsystem: "ipc",
		Name:      "sessions_active",
		Help:      "Number of connected dashboard sessions.",
	})
	metricSessionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "kuberift",
		Subsystem: "ipc",
		Name:      "sessions_total",
		Help:      "Dashboard sessions accepted.",
	})
	metricSessionsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kuberift",
		Subsystem: "ipc",
		Name:      "sessions_rejected_total",
		Help:      "Dashboard connections refused before the websocket upgrade.",
	}, []string{"reason"})
	metricFramesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kuberift",
		Subsystem: "ipc",
		Name:      "frames_received_total",
		Help:      "Frames received from dashboard clients by type.",
	}, []string{"type"})
)

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if _, err := s.authorize(r); err != nil {
		respondError(w, http.StatusUnauthorized, err)
		return
	}
	promhttp.Handler().ServeHTTP(w, r)
}

func rejectSession(reason string) {
	metricSessionsRejected.WithLabelValues(reason).Inc()
}

func frameReceived(typ string) {
	switch typ {
	case FrameInput, FrameResize, FrameClose:
	default:
		typ = "unknown"
	}
	metricFramesReceived.WithLabelValues(typ).Inc()
}
