package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Command outcomes.
const (
	OutcomeOK      = "ok"
	OutcomeMissing = "missing_bytes"
	OutcomeContent = "content"
	OutcomeInvalid = "invalid_input"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "alpd",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "alpd",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
	codecCommands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "alpd",
			Subsystem: "codec",
			Name:      "commands_total",
			Help:      "Decoded ALP commands by outcome.",
		},
		[]string{"node", "outcome"},
	)
	codecActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "alpd",
			Subsystem: "codec",
			Name:      "actions_total",
			Help:      "Decoded ALP actions by opcode.",
		},
		[]string{"node", "op"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, codecCommands, codecActions)
	})
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}

// RecordCommand counts one decoded command and each action it yielded,
// including the actions of a partial decode.
func RecordCommand(node, outcome string, ops []string) {
	RegisterMetrics()
	codecCommands.WithLabelValues(node, outcome).Inc()
	for _, op := range ops {
		codecActions.WithLabelValues(node, op).Inc()
	}
}
