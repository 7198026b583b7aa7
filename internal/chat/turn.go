package chat

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/todoflow-ai/todoflow/internal/domain"
)

// Turn accumulates the in-flight assistant response for a single exchange.
// It is created when a submit is accepted and discarded once the turn
// commits or fails.
type Turn struct {
	text        strings.Builder
	sawToolCall bool
	final       *domain.Message
}

// NewTurn starts an empty turn.
func NewTurn() *Turn {
	return &Turn{}
}

// Append concatenates a text delta and returns the full partial text so
// far, for incremental rendering.
func (t *Turn) Append(delta string) string {
	t.text.WriteString(delta)
	return t.text.String()
}

// Text returns the accumulated partial text.
func (t *Turn) Text() string {
	return t.text.String()
}

// MarkToolCall records that the agent invoked a tool during this turn.
// The flag is sticky: once set it survives until the turn is discarded,
// including through the failure path.
func (t *Turn) MarkToolCall() {
	t.sawToolCall = true
}

// SawToolCall reports whether any tool invocation was observed.
func (t *Turn) SawToolCall() bool {
	return t.sawToolCall
}

// Finalize converts the accumulated text into a committed assistant
// message with a fresh id and timestamp. The content may be empty if no
// text delta ever arrived. Repeated calls return the same message.
func (t *Turn) Finalize() domain.Message {
	if t.final == nil {
		t.final = &domain.Message{
			ID:        uuid.New().String(),
			Role:      domain.RoleAssistant,
			Content:   t.text.String(),
			Timestamp: time.Now(),
		}
	}
	return *t.final
}
