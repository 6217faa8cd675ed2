package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors emnrd exposes, grounded on the
// reference application's PrometheusMetrics (spec.md DOMAIN STACK).
type Metrics struct {
	framesProcessed prometheus.Counter
	outputGain      prometheus.Gauge
	meanMaskGain    prometheus.Gauge
	noiseFloorDB    prometheus.Gauge
	gainMethod      *prometheus.GaugeVec
	noiseMethod     *prometheus.GaugeVec
}

// NewMetrics registers emnrd's collectors against the default registry.
func NewMetrics() *Metrics {
	return &Metrics{
		framesProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "emnrd",
			Name:      "frames_processed_total",
			Help:      "Total number of analysis frames processed by the engine.",
		}),
		outputGain: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "emnrd",
			Name:      "output_gain",
			Help:      "Current overall output gain scalar (g_o).",
		}),
		meanMaskGain: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "emnrd",
			Name:      "mean_mask_gain",
			Help:      "Mean per-bin spectral mask value of the most recently processed frame.",
		}),
		noiseFloorDB: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "emnrd",
			Name:      "noise_floor_db",
			Help:      "Mean estimated noise power of the most recently processed frame, in dB.",
		}),
		gainMethod: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "emnrd",
			Name:      "gain_method",
			Help:      "1 for the currently active gain method, 0 otherwise, labelled by method name.",
		}, []string{"method"}),
		noiseMethod: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "emnrd",
			Name:      "noise_method",
			Help:      "1 for the currently active noise method, 0 otherwise, labelled by method name.",
		}, []string{"method"}),
	}
}

var gainMethodNames = map[int]string{0: "amplitude_mmse", 1: "log_mmse", 2: "gamma_table", 3: "two_stage"}
var noiseMethodNames = map[int]string{0: "minimum_statistics", 1: "spp", 2: "mcra"}

// SetActiveMethods updates the gain_method/noise_method indicator gauges.
func (m *Metrics) SetActiveMethods(gain, noise int) {
	for v, name := range gainMethodNames {
		val := 0.0
		if v == gain {
			val = 1.0
		}
		m.gainMethod.WithLabelValues(name).Set(val)
	}
	for v, name := range noiseMethodNames {
		val := 0.0
		if v == noise {
			val = 1.0
		}
		m.noiseMethod.WithLabelValues(name).Set(val)
	}
}

// ObserveFrame records per-frame telemetry: the mean mask gain applied and
// the mean estimated noise power (in dB) for the frame just processed.
func (m *Metrics) ObserveFrame(meanMask, meanNoiseDB, outputGain float64) {
	m.framesProcessed.Inc()
	m.meanMaskGain.Set(meanMask)
	m.noiseFloorDB.Set(meanNoiseDB)
	m.outputGain.Set(outputGain)
}
