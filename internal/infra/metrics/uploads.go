package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(uploadsTotal, uploadBytes, queuePublishTotal) }

var uploadsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "uploads_total",
		Help: "Upload intake attempts by outcome.",
	},
	[]string{"outcome"}, // 'accepted', 'rejected', 'failed', 'throttled'
)

var uploadBytes = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "upload_bytes",
		Help:    "Size distribution of accepted uploads in bytes.",
		Buckets: prometheus.ExponentialBuckets(1<<10, 4, 10), // 1KiB .. ~256MiB
	},
)

var queuePublishTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "queue_publish_total",
		Help: "Queue publish attempts by outcome.",
	},
	[]string{"outcome"}, // 'ok', 'error'
)

func IncUpload(outcome string) {
	uploadsTotal.WithLabelValues(norm(outcome)).Inc()
}

func ObserveUploadSize(n int64) {
	uploadBytes.Observe(float64(n))
}

func IncQueuePublish(outcome string) {
	queuePublishTotal.WithLabelValues(norm(outcome)).Inc()
}
