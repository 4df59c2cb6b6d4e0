package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studiodesk_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "studiodesk_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method", "route"},
	)

	// Agent metrics
	AgentRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studiodesk_agent_runs_total",
			Help: "Total number of agent runs",
		},
		[]string{"agent", "status"}, // status: success|error
	)

	AgentDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "studiodesk_agent_duration_seconds",
			Help:    "Agent run duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"agent"},
	)

	AgentIterations = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "studiodesk_agent_iterations",
			Help:    "Tool-calling iterations per agent run",
			Buckets: []float64{1, 2, 3, 4, 5, 8},
		},
		[]string{"agent"},
	)

	LLMTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studiodesk_llm_tokens_total",
			Help: "Total tokens used by language model calls",
		},
		[]string{"provider", "model", "type"}, // type: prompt|completion
	)

	// Tool metrics
	ToolCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studiodesk_tool_calls_total",
			Help: "Total number of tool calls",
		},
		[]string{"tool", "status"},
	)

	ToolDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "studiodesk_tool_duration_seconds",
			Help:    "Tool execution duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"tool"},
	)

	// Degraded paths
	MemoryAppendFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "studiodesk_memory_append_failures_total",
			Help: "Session memory appends that failed and were dropped",
		},
	)

	TranslationFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "studiodesk_translation_fallbacks_total",
			Help: "Translations that fell back to the original text",
		},
	)

	// Cache metrics
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studiodesk_cache_lookups_total",
			Help: "Response cache lookups",
		},
		[]string{"result"}, // result: hit|miss|error
	)

	RateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studiodesk_rate_limited_total",
			Help: "Requests rejected by a rate limiter",
		},
		[]string{"limiter"},
	)

	// System metrics
	KafkaMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studiodesk_kafka_messages_total",
			Help: "Total number of Kafka messages consumed",
		},
		[]string{"topic", "status"},
	)
)

var registerOnce sync.Once

// Register registers all collectors with the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequests, HTTPDuration,
			AgentRuns, AgentDuration, AgentIterations, LLMTokens,
			ToolCalls, ToolDuration,
			MemoryAppendFailures, TranslationFallbacks,
			CacheLookups, RateLimited,
			KafkaMessages,
		)
	})
}

// Handler returns Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordHTTPRequest records one served request
func RecordHTTPRequest(method, route string, code int, duration time.Duration) {
	HTTPRequests.WithLabelValues(method, route, httpStatusClass(code)).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func httpStatusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

// RecordAgentRun records an agent run
func RecordAgentRun(agent string, iterations int, duration time.Duration, err error) {
	AgentRuns.WithLabelValues(agent, status(err)).Inc()
	AgentDuration.WithLabelValues(agent).Observe(duration.Seconds())
	if iterations > 0 {
		AgentIterations.WithLabelValues(agent).Observe(float64(iterations))
	}
}

// RecordTokens records language model token usage
func RecordTokens(provider, model string, prompt, completion int) {
	if prompt > 0 {
		LLMTokens.WithLabelValues(provider, model, "prompt").Add(float64(prompt))
	}
	if completion > 0 {
		LLMTokens.WithLabelValues(provider, model, "completion").Add(float64(completion))
	}
}

// RecordToolCall records a tool execution
func RecordToolCall(tool string, duration time.Duration, err error) {
	ToolCalls.WithLabelValues(tool, status(err)).Inc()
	ToolDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

// RecordCacheLookup records a response cache hit, miss or error
func RecordCacheLookup(result string) {
	CacheLookups.WithLabelValues(result).Inc()
}

// RecordKafkaMessage records a consumed Kafka message
func RecordKafkaMessage(topic string, err error) {
	KafkaMessages.WithLabelValues(topic, status(err)).Inc()
}
