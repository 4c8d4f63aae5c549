package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	SubmissionsCreated   prometheus.Counter
	SubmissionsDeduped   prometheus.Counter
	SubmissionsSubmitted prometheus.Counter
	IncompleteRejections prometheus.Counter
	ReferenceRetries     prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		SubmissionsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "intake_submissions_created_total",
			Help: "Total number of submissions created",
		}),
		SubmissionsDeduped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "intake_submissions_deduped_total",
			Help: "Total number of create calls answered with an existing submission",
		}),
		SubmissionsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "intake_submissions_submitted_total",
			Help: "Total number of submissions advanced to SUBMITTED",
		}),
		IncompleteRejections: promauto.NewCounter(prometheus.CounterOpts{
			Name: "intake_submissions_incomplete_rejections_total",
			Help: "Total number of submit attempts rejected for missing required documents",
		}),
		ReferenceRetries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "intake_reference_allocation_retries_total",
			Help: "Total number of reference regenerations after a uniqueness collision",
		}),
	}
}

func (m *Metrics) IncrementCreated() { m.SubmissionsCreated.Inc() }

func (m *Metrics) IncrementDeduped() { m.SubmissionsDeduped.Inc() }

func (m *Metrics) IncrementSubmitted() { m.SubmissionsSubmitted.Inc() }

func (m *Metrics) IncrementIncompleteRejections() { m.IncompleteRejections.Inc() }

func (m *Metrics) IncrementReferenceRetries() { m.ReferenceRetries.Inc() }
