package panels

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var metricWidgetViews = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "kuberift",
	Name:      "widget_views_total",
	Help:      "Number of times each resource widget was opened.",
}, []string{"widget"})

func recordView(widget string) {
	metricWidgetViews.WithLabelValues(widget).Inc()
}
