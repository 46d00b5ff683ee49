package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_uploads_total",
		Help: "Content store uploads by result.",
	}, []string{"result"})

	PublishesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_queue_publishes_total",
		Help: "Queue records published by result.",
	}, []string{"result"})

	BatchesCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ingest_batches_completed_total",
		Help: "Share batches whose every item was enqueued.",
	})
)
