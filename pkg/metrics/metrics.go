package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector agrupa los contadores de negocio en un registry propio (sin estado global).
// Todos los métodos aceptan receptor nil para que los casos de uso funcionen sin métricas.
type Collector struct {
	registry       *prometheus.Registry
	registrations  *prometheus.CounterVec
	logins         *prometheus.CounterVec
	tokenRejects   prometheus.Counter
	uploads        *prometheus.CounterVec
	uploadDuration prometheus.Histogram
}

// New construye el collector con las métricas de proceso y de runtime Go.
func New(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Registros de usuario por resultado.",
		}, []string{"result"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Intentos de login por resultado.",
		}, []string{"result"}),
		tokenRejects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_rejections_total",
			Help:      "Bearer tokens rechazados.",
		}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Documentos subidos por tipo y resultado.",
		}, []string{"kind", "result"}),
		uploadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upload_duration_seconds",
			Help:      "Duración del pipeline de subida.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.registrations, c.logins, c.tokenRejects, c.uploads, c.uploadDuration,
	)
	return c
}

// Handler expone el registry en formato Prometheus.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry devuelve el registry (tests).
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

func (c *Collector) ObserveRegistration(result string) {
	if c == nil {
		return
	}
	c.registrations.WithLabelValues(result).Inc()
}

func (c *Collector) ObserveLogin(result string) {
	if c == nil {
		return
	}
	c.logins.WithLabelValues(result).Inc()
}

func (c *Collector) ObserveTokenRejected() {
	if c == nil {
		return
	}
	c.tokenRejects.Inc()
}

// ObserveUpload registra una subida; kind es "pdf" o "raw".
func (c *Collector) ObserveUpload(kind, result string, seconds float64) {
	if c == nil {
		return
	}
	c.uploads.WithLabelValues(kind, result).Inc()
	c.uploadDuration.Observe(seconds)
}
