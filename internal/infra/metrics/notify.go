package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(notifyRequestsTotal, wsConnections, wsFramesTotal) }

var notifyRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "notify_requests_total",
		Help: "Internal webhook calls by outcome.",
	},
	[]string{"outcome"}, // 'delivered', 'dropped', 'invalid', 'unauthorized'
)

var wsConnections = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "ws_connections",
		Help: "Live status connections currently registered.",
	},
)

var wsFramesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ws_frames_total",
		Help: "Status frames by result.",
	},
	[]string{"result"}, // 'delivered', 'dropped', 'error'
)

func IncNotify(outcome string) {
	notifyRequestsTotal.WithLabelValues(norm(outcome)).Inc()
}

func WSConnInc() { wsConnections.Inc() }
func WSConnDec() { wsConnections.Dec() }

func IncWSFrame(result string) {
	wsFramesTotal.WithLabelValues(norm(result)).Inc()
}
