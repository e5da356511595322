// Prometheus instrumentation for outbound provider calls. Labels are kept
// to provider and concrete model id so cardinality stays bounded.
package ai

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

var (
	// aiCalls counts completed provider invocations.
	aiCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_provider_calls_total",
			Help: "Total number of AI provider calls by outcome.",
		},
		[]string{"provider", "model", "status"},
	)

	// aiTokens accumulates token usage split by direction.
	aiTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_provider_tokens_total",
			Help: "Total tokens consumed by AI provider calls.",
		},
		[]string{"provider", "model", "direction"},
	)

	// aiCost accumulates the estimated spend in USD.
	aiCost = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_provider_cost_usd_total",
			Help: "Estimated cumulative USD cost of AI provider calls.",
		},
		[]string{"provider", "model"},
	)

	// aiLatency records call latency. Buckets cover sub-second cache-warm
	// calls through multi-minute vision generations.
	aiLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_provider_call_duration_seconds",
			Help:    "Duration of AI provider calls in seconds.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120, 300},
		},
		[]string{"provider", "model"},
	)
)

func init() {
	prometheus.MustRegister(aiCalls, aiTokens, aiCost, aiLatency)
}

// observeCall records a successful invocation.
func observeCall(provider, model string, u Usage, cost decimal.Decimal, d time.Duration, ok bool) {
	status := "completed"
	if !ok {
		status = "failed"
	}
	aiCalls.WithLabelValues(provider, model, status).Inc()
	aiTokens.WithLabelValues(provider, model, "input").Add(float64(u.InputTokens))
	aiTokens.WithLabelValues(provider, model, "output").Add(float64(u.OutputTokens))
	if f, _ := cost.Float64(); f > 0 {
		aiCost.WithLabelValues(provider, model).Add(f)
	}
	aiLatency.WithLabelValues(provider, model).Observe(d.Seconds())
}

// ObserveFailure records a failed or timed-out invocation. Called by the
// orchestrating service, which is where the failure is classified.
func ObserveFailure(provider, model, status string) {
	aiCalls.WithLabelValues(provider, model, status).Inc()
}
