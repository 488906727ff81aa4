// Package metrics collects automation counters in a private Prometheus
// registry. All Recorder methods are nil-safe so components can run without
// instrumentation.
package metrics

import (
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	dto "github.com/prometheus/client_model/go"
)

// Recorder owns the registry and the automation collectors.
type Recorder struct {
	registry        *prometheus.Registry
	ticks           *prometheus.CounterVec
	pausedTicks     prometheus.Counter
	tickErrors      *prometheus.CounterVec
	transitions     *prometheus.CounterVec
	ocrResults      *prometheus.CounterVec
	captureFailures prometheus.Counter
	captureDuration prometheus.Histogram
	runs            *prometheus.CounterVec
}

// New builds a Recorder with Go and process collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		ticks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "autologin_ticks_total",
			Help: "Detection loop ticks that reached stage handling",
		}, []string{"stage"}),
		pausedTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "autologin_paused_ticks_total",
			Help: "Ticks skipped because the target window lacked focus or pointer",
		}),
		tickErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "autologin_tick_errors_total",
			Help: "Ticks that failed transiently",
		}, []string{"stage"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "autologin_stage_transitions_total",
			Help: "Stage transitions by destination stage",
		}, []string{"to"}),
		ocrResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "autologin_ocr_results_total",
			Help: "OCR attempts per region and outcome (hit, miss, empty, capture_error)",
		}, []string{"region", "result"}),
		captureFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "autologin_capture_failures_total",
			Help: "Screen captures and pixel samples that failed",
		}),
		captureDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "autologin_capture_duration_seconds",
			Help:    "Region capture latency",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25},
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "autologin_runs_total",
			Help: "Completed automation runs by outcome",
		}, []string{"outcome"}),
	}
	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.ticks, r.pausedTicks, r.tickErrors, r.transitions,
		r.ocrResults, r.captureFailures, r.captureDuration, r.runs,
	)
	return r
}

// Registry exposes the underlying registry (e.g. for promhttp in a host).
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

func (r *Recorder) Tick(stage string) {
	if r != nil {
		r.ticks.WithLabelValues(stage).Inc()
	}
}

func (r *Recorder) PausedTick() {
	if r != nil {
		r.pausedTicks.Inc()
	}
}

func (r *Recorder) TickError(stage string) {
	if r != nil {
		r.tickErrors.WithLabelValues(stage).Inc()
	}
}

func (r *Recorder) Transition(to string) {
	if r != nil {
		r.transitions.WithLabelValues(to).Inc()
	}
}

func (r *Recorder) OCRResult(region, result string) {
	if r != nil {
		r.ocrResults.WithLabelValues(region, result).Inc()
	}
}

func (r *Recorder) CaptureFailed() {
	if r != nil {
		r.captureFailures.Inc()
	}
}

func (r *Recorder) ObserveCapture(d time.Duration) {
	if r != nil {
		r.captureDuration.Observe(d.Seconds())
	}
}

func (r *Recorder) Run(outcome string) {
	if r != nil {
		r.runs.WithLabelValues(outcome).Inc()
	}
}

// Summary flattens the autologin_* counters into "name{labels}" -> value.
// Histograms contribute their sample count.
func (r *Recorder) Summary() map[string]float64 {
	out := map[string]float64{}
	if r == nil {
		return out
	}
	families, err := r.registry.Gather()
	if err != nil {
		return out
	}
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "autologin_") {
			continue
		}
		for _, m := range mf.GetMetric() {
			key := mf.GetName() + labelSuffix(m.GetLabel())
			switch {
			case m.GetCounter() != nil:
				out[key] = m.GetCounter().GetValue()
			case m.GetHistogram() != nil:
				out[key+"_count"] = float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return out
}

func labelSuffix(labels []*dto.LabelPair) string {
	if len(labels) == 0 {
		return ""
	}
	parts := make([]string, 0, len(labels))
	for _, l := range labels {
		parts = append(parts, l.GetName()+"="+l.GetValue())
	}
	sort.Strings(parts)
	return "{" + strings.Join(parts, ",") + "}"
}
