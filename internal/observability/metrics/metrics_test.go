package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestAgentMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewAgentMetrics(reg)
	m.ObserveTool("get_available_doctors", "ok", 0.02)
	m.ObserveTool("book_appointment", "conflict", 0.05)
	m.ObserveLLMRequest("ok")
	m.ObserveTurn()
}

func TestAgentMetricsNilSafe(t *testing.T) {
	var m *AgentMetrics
	m.ObserveTool("tool", "ok", 0.1)
	m.ObserveLLMRequest("error")
	m.ObserveTurn()
}
