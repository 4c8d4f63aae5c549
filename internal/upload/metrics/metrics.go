package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	UploadsAccepted  prometheus.Counter
	UploadsFailed    prometheus.Counter
	UploadsCappedOut prometheus.Counter
	FallbackWrites   prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		UploadsAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "intake_uploads_accepted_total",
			Help: "Total number of document uploads stored successfully",
		}),
		UploadsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "intake_uploads_failed_total",
			Help: "Total number of document uploads that failed after validation",
		}),
		UploadsCappedOut: promauto.NewCounter(prometheus.CounterOpts{
			Name: "intake_uploads_attempt_limit_total",
			Help: "Total number of uploads rejected by the attempt limit",
		}),
		FallbackWrites: promauto.NewCounter(prometheus.CounterOpts{
			Name: "intake_uploads_fallback_writes_total",
			Help: "Total number of uploads written to the fallback store",
		}),
	}
}
