// Package metrics exposes Prometheus instrumentation for forecast runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors of the service. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	FitDuration     *prometheus.HistogramVec
	FamilyRuns      *prometheus.CounterVec
	Requests        *prometheus.CounterVec
	CacheLookups    *prometheus.CounterVec
	EventsPublished *prometheus.CounterVec
	DatasetRecords  prometheus.Gauge
}

// New creates and registers all collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(reg)
}

// NewWithRegistry registers all collectors on reg
func NewWithRegistry(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		FitDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crimecast_fit_duration_seconds",
				Help:    "Time spent fitting and forecasting one model family",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"family"},
		),
		FamilyRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crimecast_family_runs_total",
				Help: "Model family runs by outcome",
			},
			[]string{"family", "outcome"},
		),
		Requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crimecast_forecast_requests_total",
				Help: "Forecast requests by result code",
			},
			[]string{"code"},
		),
		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crimecast_cache_lookups_total",
				Help: "Forecast cache lookups by result",
			},
			[]string{"result"},
		),
		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crimecast_events_published_total",
				Help: "Forecast events published by result",
			},
			[]string{"result"},
		),
		DatasetRecords: factory.NewGauge(prometheus.GaugeOpts{
			Name: "crimecast_dataset_records",
			Help: "Number of records in the loaded dataset",
		}),
	}
}

// ObserveFit records the duration and outcome of one family run
func (m *Metrics) ObserveFit(family, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.FitDuration.WithLabelValues(family).Observe(d.Seconds())
	m.FamilyRuns.WithLabelValues(family, outcome).Inc()
}

// ObserveRequest counts a forecast request by result code
func (m *Metrics) ObserveRequest(code string) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(code).Inc()
}

// ObserveCache counts a cache hit or miss
func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// ObservePublish counts a published or failed event
func (m *Metrics) ObservePublish(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.EventsPublished.WithLabelValues(result).Inc()
}

// SetDatasetRecords records the size of the loaded dataset
func (m *Metrics) SetDatasetRecords(n int) {
	if m == nil {
		return
	}
	m.DatasetRecords.Set(float64(n))
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
