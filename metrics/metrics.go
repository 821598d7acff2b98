// Package metrics exposes Prometheus instrumentation for the HTTP surface.
// The classifier and scorer stay side-effect free; callers record here.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/liamcoop/prescreen/documents"
	"github.com/liamcoop/prescreen/eligibility"
)

var (
	DocumentsClassified = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prescreen_documents_classified_total",
			Help: "Total number of documents classified, by inferred category",
		},
		[]string{"category"},
	)

	Evaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prescreen_evaluations_total",
			Help: "Total number of eligibility evaluations, by label",
		},
		[]string{"label"},
	)

	EvaluationScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "prescreen_evaluation_score",
			Help:    "Distribution of eligibility scores",
			Buckets: []float64{0, 20, 40, 60, 80, 100},
		},
	)

	EvaluationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "prescreen_evaluation_duration_seconds",
			Help:    "Duration of a single evaluation",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		},
	)

	Exports = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "prescreen_exports_total",
			Help: "Total number of snapshots exported",
		},
	)

	ContactRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prescreen_contact_requests_total",
			Help: "Total number of contact requests, by outcome",
		},
		[]string{"outcome"},
	)
)

// ObserveClassified records one classification per document
func ObserveClassified(docs []documents.ClassifiedDocument) {
	for _, d := range docs {
		DocumentsClassified.WithLabelValues(string(d.Category)).Inc()
	}
}

// ObserveEvaluation records a result and how long it took.
// Call with time.Now() taken before evaluating.
func ObserveEvaluation(result eligibility.Result, start time.Time) {
	Evaluations.WithLabelValues(labelName(result.Label)).Inc()
	EvaluationScore.Observe(float64(result.Score))
	EvaluationDuration.Observe(time.Since(start).Seconds())
}

// labelName keeps label values short and free of punctuation
func labelName(l eligibility.Label) string {
	switch l {
	case eligibility.LabelExcellent:
		return "excellent"
	case eligibility.LabelGood:
		return "good"
	case eligibility.LabelFair:
		return "fair"
	default:
		return "low"
	}
}
