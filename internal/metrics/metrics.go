// Package metrics provides Prometheus metrics for document intake
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Extraction metrics
	ExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bol_extractions_total",
			Help: "Total number of document extractions",
		},
		[]string{"method", "status"},
	)

	ExtractionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bol_extraction_duration_seconds",
			Help:    "Time taken to turn a document into a job record",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		},
		[]string{"method"},
	)

	FieldConfidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bol_field_confidence",
			Help:    "Field extraction confidence score (0-100)",
			Buckets: prometheus.LinearBuckets(10, 10, 10),
		},
	)

	OCRPagesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bol_ocr_pages_total",
			Help: "Total number of pages sent through OCR",
		},
	)

	// Review metrics
	ReviewTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bol_review_transitions_total",
			Help: "Total number of review state transitions",
		},
		[]string{"from", "to"},
	)

	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bol_submissions_total",
			Help: "Total number of job submissions to the record store",
		},
		[]string{"outcome"},
	)

	// Record store API metrics
	RecordStoreCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bol_recordstore_calls_total",
			Help: "Total number of record store API calls",
		},
		[]string{"method", "status"},
	)

	RecordStoreCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bol_recordstore_call_duration_seconds",
			Help:    "Duration of record store API calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// gRPC metrics
	RPCsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bol_grpc_requests_total",
			Help: "Total number of gRPC requests handled",
		},
		[]string{"method", "code"},
	)
)

// RecordExtraction records one finished extraction.
func RecordExtraction(method, status string, pages, confidence int, duration time.Duration) {
	ExtractionsTotal.WithLabelValues(method, status).Inc()
	if status != StatusOK {
		return
	}
	ExtractionDuration.WithLabelValues(method).Observe(duration.Seconds())
	FieldConfidence.Observe(float64(confidence))
	if method == "ocr" {
		OCRPagesTotal.Add(float64(pages))
	}
}

// RecordTransition records a review state change
func RecordTransition(from, to string) {
	ReviewTransitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordSubmission records a submission outcome
func RecordSubmission(outcome string) {
	SubmissionsTotal.WithLabelValues(outcome).Inc()
}

// RecordStoreCall records a record store round trip; status 0 means the request never got a response.
func RecordStoreCall(method string, status int, duration time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	RecordStoreCallsTotal.WithLabelValues(method, label).Inc()
	RecordStoreCallDuration.WithLabelValues(method).Observe(duration.Seconds())
}

func RecordRPC(method, code string) {
	RPCsTotal.WithLabelValues(method, code).Inc()
}

// Outcome labels.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Timer is a helper for measuring duration
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer was created
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
