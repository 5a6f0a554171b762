// internal/common/metrics/metrics.go
package metrics

import (
	"time"

	"support-bot/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)

// TurnRecorder exports dialogue turn metrics.
type TurnRecorder struct {
	turns        *prometheus.CounterVec
	augmented    *prometheus.CounterVec
	entities     *prometheus.CounterVec
	turnDuration *prometheus.HistogramVec
}

// NewTurnRecorder registers the dialogue metrics with reg. A nil reg uses
// the default registerer.
func NewTurnRecorder(reg prometheus.Registerer) *TurnRecorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &TurnRecorder{
		turns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dialogue_turns_total",
				Help: "Dialogue turns by match tier and intent",
			},
			[]string{"tier", "intent"},
		),
		augmented: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dialogue_augmented_replies_total",
				Help: "Replies extended with entity information",
			},
			[]string{"intent"},
		),
		entities: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dialogue_entities_extracted_total",
				Help: "Entities extracted from utterances by type",
			},
			[]string{"type"},
		),
		turnDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dialogue_turn_duration_seconds",
				Help:    "Time to produce a reply",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
			},
			[]string{"tier"},
		),
	}
}

// ObserveTurn records one turn. Fallback turns carry the intent label "none".
func (r *TurnRecorder) ObserveTurn(tier models.MatchTier, intent string, augmented bool, elapsed time.Duration) {
	if intent == "" {
		intent = "none"
	}
	r.turns.WithLabelValues(string(tier), intent).Inc()
	r.turnDuration.WithLabelValues(string(tier)).Observe(elapsed.Seconds())
	if augmented {
		r.augmented.WithLabelValues(intent).Inc()
	}
}

func (r *TurnRecorder) ObserveEntities(types []string) {
	for _, t := range types {
		r.entities.WithLabelValues(t).Inc()
	}
}
