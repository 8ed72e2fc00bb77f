package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	predictions  *prometheus.CounterVec
	anomalies    *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	capabilities *prometheus.GaugeVec
	ledgerEvents prometheus.Gauge
	ledgerAssets prometheus.Gauge
	alerts       *prometheus.CounterVec
}

// New creates a recorder registered on the default Prometheus registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a recorder registered on reg.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		predictions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartrental_predictions_total",
				Help: "Scoring calls by capability and outcome",
			},
			[]string{"capability", "outcome"},
		),
		anomalies: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartrental_anomaly_checks_total",
				Help: "Anomaly checks by equipment type and verdict",
			},
			[]string{"equipment_type", "anomalous"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartrental_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "smartrental_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		capabilities: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "smartrental_capability_available",
				Help: "1 when the artifacts behind a capability are loaded",
			},
			[]string{"capability"},
		),
		ledgerEvents: f.NewGauge(prometheus.GaugeOpts{
			Name: "smartrental_ledger_events",
			Help: "Rental events in the active snapshot",
		}),
		ledgerAssets: f.NewGauge(prometheus.GaugeOpts{
			Name: "smartrental_ledger_assets",
			Help: "Distinct assets in the active snapshot",
		}),
		alerts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartrental_alerts_published_total",
				Help: "Risk alerts handed to the alert backend",
			},
			[]string{"backend", "result"},
		),
	}
}

func (r *Recorder) RecordPrediction(capability, outcome string) {
	r.predictions.WithLabelValues(capability, outcome).Inc()
}

func (r *Recorder) RecordAnomaly(equipmentType string, anomalous bool) {
	v := "false"
	if anomalous {
		v = "true"
	}
	r.anomalies.WithLabelValues(equipmentType, v).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

func (r *Recorder) SetCapability(capability string, available bool) {
	v := 0.0
	if available {
		v = 1
	}
	r.capabilities.WithLabelValues(capability).Set(v)
}

func (r *Recorder) SetLedgerSize(events, assets int) {
	r.ledgerEvents.Set(float64(events))
	r.ledgerAssets.Set(float64(assets))
}

func (r *Recorder) RecordAlert(backend string, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	r.alerts.WithLabelValues(backend, result).Inc()
}
