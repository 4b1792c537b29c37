package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	chatTurns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_turns_total",
		Help: "Chat turns processed, labelled by outcome.",
	}, []string{"outcome"})

	gatewayRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_requests_total",
		Help: "Outbound gateway requests, labelled by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})

	gatewayLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gateway_request_duration_seconds",
		Help:    "Latency of outbound gateway requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
)

// RecordChatTurn counts one completed or aborted chat turn
func RecordChatTurn(outcome string) {
	chatTurns.WithLabelValues(outcome).Inc()
}

// RecordGatewayRequest counts one outbound gateway call and records its latency
func RecordGatewayRequest(endpoint, outcome string, elapsed time.Duration) {
	gatewayRequests.WithLabelValues(endpoint, outcome).Inc()
	gatewayLatency.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}
