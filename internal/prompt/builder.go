package prompt

import (
	"strings"

	"github.com/mlenarti/itinera/internal/assemble"
	"github.com/mlenarti/itinera/internal/session"
)

// DefaultSystemInstructions frames the assistant's role and pins answers to
// the supplied grounding.
const DefaultSystemInstructions = `You are a helpful and knowledgeable travel planning assistant. Provide accurate, detailed travel advice based on the information in the context below.

INSTRUCTIONS:
- Answer using ONLY the information provided in the context
- Be specific: include prices, locations and dates from the context when relevant
- If the context does not contain enough information to fully answer, say so
- Live data (flights, weather, exchange rates) is indicative, not a quote
- Format your response in a clear, organized way`

const noContextPlaceholder = "No specific context available."

// Builder renders the final prompt under a fixed size ceiling.
type Builder struct {
	system  string
	ceiling int
}

func NewBuilder(system string, ceiling int) *Builder {
	if strings.TrimSpace(system) == "" {
		system = DefaultSystemInstructions
	}
	return &Builder{system: system, ceiling: ceiling}
}

// Build concatenates the system framing, a window of prior turns, the
// assembled context and the current question. If the result is over the
// ceiling, history is trimmed oldest-first; only when no history is left do
// context sections get dropped, lowest priority first. Current-turn
// grounding always outlives history.
func (b *Builder) Build(ctx assemble.Context, history []session.Turn, query string) string {
	out := b.render(ctx, history, query)
	for len(out) > b.ceiling && len(history) > 0 {
		history = history[1:]
		out = b.render(ctx, history, query)
	}
	for len(out) > b.ceiling && !ctx.Empty() {
		ctx = ctx.WithoutLast()
		out = b.render(ctx, history, query)
	}
	return out
}

func (b *Builder) render(ctx assemble.Context, history []session.Turn, query string) string {
	var sb strings.Builder
	sb.WriteString(b.system)
	sb.WriteString("\n\nCONTEXT INFORMATION:\n")
	if ctx.Empty() {
		sb.WriteString(noContextPlaceholder)
	} else {
		sb.WriteString(ctx.Text())
	}
	if len(history) > 0 {
		sb.WriteString("\n\nPrevious conversation:")
		for _, t := range history {
			sb.WriteString("\nUser: " + t.UserText)
			sb.WriteString("\nAssistant: " + t.AssistantText)
		}
	}
	sb.WriteString("\n\nUSER QUESTION:\n")
	sb.WriteString(query)
	sb.WriteString("\n\nYOUR RESPONSE:")
	return sb.String()
}
