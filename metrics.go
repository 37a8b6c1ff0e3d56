package sitehooks

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the site's prometheus collectors on a private registry so
// several Apps can coexist in one process. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry       *prometheus.Registry
	imagesServed   prometheus.Counter
	imagesDeclined prometheus.Counter
	pagesRendered  *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		imagesServed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sitehooks",
			Name:      "images_served_total",
			Help:      "Images served from local disk.",
		}),
		imagesDeclined: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sitehooks",
			Name:      "images_declined_total",
			Help:      "Image requests passed on because no file matched.",
		}),
		pagesRendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sitehooks",
			Name:      "pages_rendered_total",
			Help:      "Pages rendered through the hook pipeline.",
		}, []string{"kind"}),
	}
	m.registry.MustRegister(m.imagesServed, m.imagesDeclined, m.pagesRendered)
	return m
}

// Handler exposes the registry in the prometheus text format. A nil
// *Metrics answers 404.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) imageServed() {
	if m != nil {
		m.imagesServed.Inc()
	}
}

func (m *Metrics) imageDeclined() {
	if m != nil {
		m.imagesDeclined.Inc()
	}
}

func (m *Metrics) pageRendered(kind string) {
	if m != nil {
		m.pagesRendered.WithLabelValues(kind).Inc()
	}
}
