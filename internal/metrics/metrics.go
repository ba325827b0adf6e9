package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_http_requests_total",
			Help: "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relay_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	LLMPings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_llm_pings_total",
			Help: "Provider connectivity checks.",
		},
		[]string{"provider", "outcome"},
	)
	LLMChats = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_llm_chats_total",
			Help: "Provider completion calls.",
		},
		[]string{"provider", "outcome"},
	)
	LLMChatDur = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relay_llm_chat_duration_seconds",
			Help:    "Provider completion latency in seconds.",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider", "outcome"},
	)

	// Resolutions counts replies by the responder that produced them.
	Resolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_resolutions_total",
			Help: "Chat replies by producing responder.",
		},
		[]string{"source"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequests, HTTPDuration, LLMPings, LLMChats, LLMChatDur, Resolutions)
}

// ObserveChat records one provider completion call.
func ObserveChat(provider string, err error, seconds float64) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	LLMChats.WithLabelValues(provider, outcome).Inc()
	LLMChatDur.WithLabelValues(provider, outcome).Observe(seconds)
}

// ObservePing records one provider connectivity check.
func ObservePing(provider string, err error) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	LLMPings.WithLabelValues(provider, outcome).Inc()
}

// Handler exposes all registered metrics in Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
