// Package triage routes free-text symptom descriptions to a medical
// specialty using retrieval over the hospital guide plus a constrained
// classification call.
package triage

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/medibot-ai/hospital-agent/internal/knowledge"
	"github.com/medibot-ai/hospital-agent/internal/llm"
	"github.com/medibot-ai/hospital-agent/internal/validate"
	"github.com/medibot-ai/hospital-agent/pkg/logging"
)

var triageTracer = otel.Tracer("hospitalagent.internal.triage")

// SafeDefault is returned whenever retrieval or classification fails. A
// routing failure must never block the booking flow.
const SafeDefault = "General Physician"

// Emergency is the sentinel the classifier emits for emergency symptoms. The
// conversation policy must not proceed to doctor lookup for this value.
const Emergency = "EMERGENCY"

const topK = 3

// Router maps symptom text to a specialty name.
type Router struct {
	retriever knowledge.Retriever
	client    llm.Client
	logger    *logging.Logger
}

// NewRouter builds a specialty router.
func NewRouter(retriever knowledge.Retriever, client llm.Client, logger *logging.Logger) *Router {
	if retriever == nil {
		panic("triage: retriever required")
	}
	if client == nil {
		panic("triage: llm client required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Router{retriever: retriever, client: client, logger: logger}
}

// Route returns the classifier's trimmed output verbatim: "EMERGENCY",
// "General Physician", or a specialty name taken from the retrieved passages.
// The value is NOT checked against the allow-list here; the doctors tool is
// the enforcement point. Out-of-list outputs are logged for visibility.
func (r *Router) Route(ctx context.Context, symptoms string) string {
	ctx, span := triageTracer.Start(ctx, "triage.route")
	defer span.End()

	symptoms = strings.TrimSpace(symptoms)
	if symptoms == "" {
		// Treat "no symptoms" as a vague complaint.
		return SafeDefault
	}

	passages, err := r.retriever.Query(ctx, symptoms, topK)
	if err != nil {
		span.RecordError(err)
		r.logger.Warn("triage retrieval failed, using safe default", "error", err)
		return SafeDefault
	}

	prompt := buildPrompt(symptoms, passages)
	resp, err := r.client.Complete(ctx, llm.Request{
		Messages:    []llm.ChatMessage{{Role: llm.RoleUser, Content: prompt}},
		Temperature: 0,
		MaxTokens:   32,
	})
	if err != nil {
		span.RecordError(err)
		r.logger.Warn("triage classification failed, using safe default", "error", err)
		return SafeDefault
	}

	specialty := strings.TrimSpace(resp.Text)
	if specialty == "" {
		return SafeDefault
	}
	span.SetAttributes(attribute.String("hospitalagent.specialty", specialty))

	if specialty != Emergency && validate.Specialty(specialty) != nil {
		r.logger.Warn("triage produced out-of-list specialty", "specialty", specialty)
	}
	return specialty
}

func buildPrompt(symptoms string, passages []string) string {
	context := strings.Join(passages, "\n\n")
	return fmt.Sprintf(`You are an expert medical router. Your job is to extract the correct medical specialty
from the provided context, based on the patient's symptoms.

The user's symptoms are: %q

Here is the hospital guide (context) from the knowledge base:
---
%s
---

Based *only* on the context and symptoms, what is the single, exact specialty name
the patient should be referred to?

- If the symptoms are an EMERGENCY (e.g., severe chest pain, stroke, can't breathe),
  return the string "EMERGENCY".
- If the symptoms are vague or general (e.g., "feel sick", "checkup"),
  return the string "General Physician".
- For all other cases, return the *exact* specialty name from the text
  (e.g., "Cardiology", "Dermatology", "Neurology").

Do not add any explanation or conversational text. Just return the specialty name.

Specialty:`, symptoms, context)
}
