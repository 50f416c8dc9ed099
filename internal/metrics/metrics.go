// Package metrics exposes Prometheus instrumentation for the extraction pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const Namespace = "paper"

// Recorder holds the pipeline collectors. All methods are safe on a nil *Recorder.
type Recorder struct {
	DocumentsTotal       *prometheus.CounterVec
	BatchesTotal         *prometheus.CounterVec
	AcquisitionTotal     *prometheus.CounterVec
	OCRPagesTotal        prometheus.Counter
	DocumentDurationSecs prometheus.Histogram
}

// New creates and registers the collectors on reg (default registerer when nil).
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Recorder{
		DocumentsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "documents_total",
				Help:      "Documents processed, by outcome (ok or error kind)",
			},
			[]string{"outcome"},
		),
		BatchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "batches_total",
				Help:      "Batches finished, by final status",
			},
			[]string{"status"},
		),
		AcquisitionTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "text_acquisition_total",
				Help:      "Successful text acquisitions, by method",
			},
			[]string{"method"},
		),
		OCRPagesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "ocr_pages_total",
				Help:      "Pages that went through OCR",
			},
		),
		DocumentDurationSecs: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "document_duration_seconds",
				Help:      "Wall time spent on one document",
				Buckets:   prometheus.ExponentialBuckets(0.25, 2, 12), // 0.25s to ~8.5min
			},
		),
	}
}

func (r *Recorder) ObserveDocument(outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.DocumentsTotal.WithLabelValues(outcome).Inc()
	r.DocumentDurationSecs.Observe(elapsed.Seconds())
}

func (r *Recorder) ObserveBatch(status string) {
	if r == nil {
		return
	}
	r.BatchesTotal.WithLabelValues(status).Inc()
}

// ObserveAcquisition counts one acquisition; ocrPages is added only for the OCR method.
func (r *Recorder) ObserveAcquisition(method string, ocrPages int) {
	if r == nil {
		return
	}
	r.AcquisitionTotal.WithLabelValues(method).Inc()
	if ocrPages > 0 {
		r.OCRPagesTotal.Add(float64(ocrPages))
	}
}
