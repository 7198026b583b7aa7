// Package chat implements the streaming interaction controller: it owns
// the conversation history, runs one turn at a time against the backend's
// chat stream, and tells the host application when the persisted task
// list may have gone stale.
package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/todoflow-ai/todoflow/internal/domain"
	"github.com/todoflow-ai/todoflow/internal/logging"
	"github.com/todoflow-ai/todoflow/internal/stream"
)

// Fixed identity and content of the assistant message committed when a
// turn fails in transport. The fixed id lets renderers tell it apart
// from real answers.
const (
	ErrorMessageID = "assistant-error"
	errorContent   = "Sorry, something went wrong while answering. Please try again."
)

// Streamer opens one streaming exchange with the agent backend.
type Streamer interface {
	ChatStream(ctx context.Context, message string) (<-chan stream.Event, error)
}

// HistoryFetcher returns the authoritative conversation history.
type HistoryFetcher interface {
	History(ctx context.Context, limit int) ([]domain.Message, error)
}

// Hooks are the controller's outward notifications. All callbacks are
// optional and are invoked synchronously on the submitting goroutine.
type Hooks struct {
	// OnPartial fires whenever the in-progress assistant text changes,
	// and once with "" when the turn ends.
	OnPartial func(text string)
	// OnHistory fires after the history list changes.
	OnHistory func(msgs []domain.Message)
	// OnTasksChanged fires at most once per turn, when the agent invoked
	// a tool and the cached task list should be refetched. The controller
	// does not refetch tasks itself.
	OnTasksChanged func()
}

// Controller sequences conversational turns. It is not safe for
// concurrent use: one caller drives it, and Submit runs a full turn
// before returning. A reentrant Submit from a hook is a no-op.
type Controller struct {
	streamer Streamer
	history  HistoryFetcher
	hooks    Hooks
	log      *logging.Logger

	messages     []domain.Message
	partial      string
	inFlight     bool
	historyLimit int
}

// NewController creates a controller with an empty history.
func NewController(streamer Streamer, history HistoryFetcher, historyLimit int, hooks Hooks, log *logging.Logger) *Controller {
	return &Controller{
		streamer:     streamer,
		history:      history,
		hooks:        hooks,
		log:          log.Sub("chat"),
		historyLimit: historyLimit,
	}
}

// Messages returns the committed history in display order.
func (c *Controller) Messages() []domain.Message {
	out := make([]domain.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Partial returns the in-progress assistant text, or "" when idle.
func (c *Controller) Partial() string {
	return c.partial
}

// InFlight reports whether a turn is currently being processed.
func (c *Controller) InFlight() bool {
	return c.inFlight
}

// RefreshHistory replaces the local history wholesale with the backend's
// view. A fetch failure is swallowed: a stale or empty history is an
// acceptable degraded state and is not surfaced to the user.
func (c *Controller) RefreshHistory(ctx context.Context) {
	msgs, err := c.history.History(ctx, c.historyLimit)
	if err != nil {
		c.log.Warn().Err(err).Msg("history fetch failed, keeping current view")
		return
	}
	c.messages = msgs
	c.notifyHistory()
}

// Submit runs one conversational turn: append the user message, drain
// the event stream into the turn accumulator, commit the assistant
// message, and evaluate the sync notifier. It is a silent no-op when the
// text trims to empty or a turn is already in flight; callers are
// expected to disable input while InFlight, but the guard holds either
// way. The controller is always idle again when Submit returns.
func (c *Controller) Submit(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if text == "" || c.inFlight {
		return
	}
	c.inFlight = true
	defer func() { c.inFlight = false }()

	// Optimistic append: the user message is committed before the agent
	// answers, matching what the backend persists.
	c.append(domain.Message{
		ID:        uuid.New().String(),
		Role:      domain.RoleUser,
		Content:   text,
		Timestamp: time.Now(),
	})
	c.setPartial("")

	turn := NewTurn()
	err := c.drain(ctx, text, turn)

	var msg domain.Message
	if err != nil {
		c.log.Warn().Err(err).Msg("turn failed")
		msg = domain.Message{
			ID:        ErrorMessageID,
			Role:      domain.RoleAssistant,
			Content:   errorContent,
			Timestamp: time.Now(),
		}
	} else {
		msg = turn.Finalize()
	}
	c.append(msg)
	c.setPartial("")

	// The tool-call flag survives a failed turn: the server may have
	// mutated tasks before the stream broke.
	if turn.SawToolCall() && c.hooks.OnTasksChanged != nil {
		c.hooks.OnTasksChanged()
	}
}

// drain consumes the turn's event stream until the transport ends.
// Frames after the terminal event are ignored by the decoder while the
// body finishes draining.
func (c *Controller) drain(ctx context.Context, text string, turn *Turn) error {
	ch, err := c.streamer.ChatStream(ctx, text)
	if err != nil {
		return err
	}
	for evt := range ch {
		switch evt.Kind {
		case stream.KindTextDelta:
			c.setPartial(turn.Append(evt.Text))
		case stream.KindToolCall:
			turn.MarkToolCall()
		case stream.KindTerminal:
			// Nothing to do; keep draining until the channel closes.
		case stream.KindError:
			return errors.New(evt.Text)
		}
	}
	return nil
}

func (c *Controller) append(msg domain.Message) {
	c.messages = append(c.messages, msg)
	c.notifyHistory()
}

func (c *Controller) setPartial(text string) {
	c.partial = text
	if c.hooks.OnPartial != nil {
		c.hooks.OnPartial(text)
	}
}

func (c *Controller) notifyHistory() {
	if c.hooks.OnHistory != nil {
		c.hooks.OnHistory(c.Messages())
	}
}
