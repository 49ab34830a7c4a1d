package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Validation outcomes
const (
	OutcomeValid       = "valid"
	OutcomeNotFound    = "not_found"
	OutcomeMalformed   = "malformed"
	OutcomeUnreachable = "unreachable"
)

// Recorder collects certificate service metrics on its own registry
type Recorder struct {
	registry *prometheus.Registry

	generated      *prometheus.CounterVec
	generateErrors prometheus.Counter
	validations    *prometheus.CounterVec
	downloads      prometheus.Counter
	layoutScale    prometheus.Histogram
	swept          prometheus.Counter
}

// NewRecorder registers all collectors on a fresh registry
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		generated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "certificates_generated_total",
				Help: "Total number of certificates issued, by type and orientation",
			},
			[]string{"cert_type", "orientation"},
		),
		generateErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "certificates_generate_errors_total",
			Help: "Total number of failed certificate generations",
		}),
		validations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "certificates_validations_total",
				Help: "Total number of validation lookups, by outcome",
			},
			[]string{"outcome"},
		),
		downloads: factory.NewCounter(prometheus.CounterOpts{
			Name: "certificates_downloads_total",
			Help: "Total number of certificate documents served",
		}),
		layoutScale: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "certificates_layout_scale",
			Help:    "Scale chosen by the layout fit search",
			Buckets: prometheus.LinearBuckets(0.5, 0.05, 11),
		}),
		swept: factory.NewCounter(prometheus.CounterOpts{
			Name: "certificates_documents_swept_total",
			Help: "Total number of stale documents removed by the janitor",
		}),
	}
}

func (r *Recorder) CertificateGenerated(certType, orientation string, scale float64) {
	r.generated.WithLabelValues(certType, orientation).Inc()
	r.layoutScale.Observe(scale)
}

func (r *Recorder) GenerateFailed() {
	r.generateErrors.Inc()
}

func (r *Recorder) Validation(outcome string) {
	r.validations.WithLabelValues(outcome).Inc()
}

func (r *Recorder) Download() {
	r.downloads.Inc()
}

func (r *Recorder) DocumentsSwept(n int) {
	r.swept.Add(float64(n))
}

// Handler returns an HTTP handler exposing the registry
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
