package metrics

import "github.com/prometheus/client_golang/prometheus"

// AgentMetrics exposes counters/histograms for the conversation agent and its tools.
type AgentMetrics struct {
	toolInvocations *prometheus.CounterVec
	toolLatency     *prometheus.HistogramVec
	llmRequests     *prometheus.CounterVec
	turnsTotal      prometheus.Counter
}

func NewAgentMetrics(reg prometheus.Registerer) *AgentMetrics {
	m := &AgentMetrics{
		toolInvocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hospitalagent",
			Subsystem: "tools",
			Name:      "invocations_total",
			Help:      "Total tool invocations by tool name and outcome",
		}, []string{"tool", "status"}),
		toolLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hospitalagent",
			Subsystem: "tools",
			Name:      "latency_seconds",
			Help:      "Latency of tool execution",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tool"}),
		llmRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hospitalagent",
			Subsystem: "llm",
			Name:      "requests_total",
			Help:      "Total LLM completion requests",
		}, []string{"status"}),
		turnsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hospitalagent",
			Subsystem: "conversation",
			Name:      "turns_total",
			Help:      "Total conversation turns processed",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.toolInvocations, m.toolLatency, m.llmRequests, m.turnsTotal)
	return m
}

func (m *AgentMetrics) ObserveTool(tool, status string, seconds float64) {
	if m == nil {
		return
	}
	m.toolInvocations.WithLabelValues(tool, status).Inc()
	m.toolLatency.WithLabelValues(tool).Observe(seconds)
}

func (m *AgentMetrics) ObserveLLMRequest(status string) {
	if m == nil {
		return
	}
	m.llmRequests.WithLabelValues(status).Inc()
}

func (m *AgentMetrics) ObserveTurn() {
	if m == nil {
		return
	}
	m.turnsTotal.Inc()
}
