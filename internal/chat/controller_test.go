package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todoflow-ai/todoflow/internal/domain"
	"github.com/todoflow-ai/todoflow/internal/logging"
	"github.com/todoflow-ai/todoflow/internal/stream"
)

// mockStreamer replays a scripted event sequence per ChatStream call, or
// fails the call outright.
type mockStreamer struct {
	scripts [][]stream.Event
	errs    []error
	calls   int
}

func (m *mockStreamer) ChatStream(ctx context.Context, message string) (<-chan stream.Event, error) {
	i := m.calls
	m.calls++

	if i < len(m.errs) && m.errs[i] != nil {
		return nil, m.errs[i]
	}

	var script []stream.Event
	if i < len(m.scripts) {
		script = m.scripts[i]
	}

	ch := make(chan stream.Event, len(script))
	for _, evt := range script {
		ch <- evt
	}
	close(ch)
	return ch, nil
}

// mockHistory serves a canned history or an error.
type mockHistory struct {
	msgs  []domain.Message
	err   error
	calls int
}

func (m *mockHistory) History(ctx context.Context, limit int) ([]domain.Message, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.msgs, nil
}

func newTestController(s Streamer, h HistoryFetcher, hooks Hooks) *Controller {
	return NewController(s, h, 15, hooks, logging.New(nil, "silent"))
}

func textEvt(s string) stream.Event  { return stream.Event{Kind: stream.KindTextDelta, Text: s} }
func toolEvt() stream.Event          { return stream.Event{Kind: stream.KindToolCall} }
func terminalEvt() stream.Event      { return stream.Event{Kind: stream.KindTerminal} }
func errEvt(msg string) stream.Event { return stream.Event{Kind: stream.KindError, Text: msg} }

func TestSubmit_ToolCallTurn(t *testing.T) {
	// Scenario: the agent streams text, invokes a tool, then terminates.
	streamer := &mockStreamer{scripts: [][]stream.Event{{
		textEvt("Sure, "),
		textEvt("adding it now."),
		toolEvt(),
		terminalEvt(),
	}}}

	syncs := 0
	c := newTestController(streamer, &mockHistory{}, Hooks{
		OnTasksChanged: func() { syncs++ },
	})

	c.Submit(context.Background(), "Add a task to buy milk")

	msgs := c.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, domain.RoleUser, msgs[0].Role)
	assert.Equal(t, "Add a task to buy milk", msgs[0].Content)
	assert.Equal(t, domain.RoleAssistant, msgs[1].Role)
	assert.Equal(t, "Sure, adding it now.", msgs[1].Content)
	assert.Equal(t, 1, syncs, "exactly one sync signal per tool-using turn")
	assert.False(t, c.InFlight())
	assert.Empty(t, c.Partial())
}

func TestSubmit_TextOnlyTurn(t *testing.T) {
	streamer := &mockStreamer{scripts: [][]stream.Event{{
		textEvt("Hi there!"),
		terminalEvt(),
	}}}

	syncs := 0
	c := newTestController(streamer, &mockHistory{}, Hooks{
		OnTasksChanged: func() { syncs++ },
	})

	c.Submit(context.Background(), "hello")

	msgs := c.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "Hi there!", msgs[1].Content)
	assert.Equal(t, 0, syncs, "no sync signal without a tool invocation")
}

func TestSubmit_TransportFailure(t *testing.T) {
	streamer := &mockStreamer{errs: []error{errors.New("no response body")}}

	syncs := 0
	c := newTestController(streamer, &mockHistory{}, Hooks{
		OnTasksChanged: func() { syncs++ },
	})

	c.Submit(context.Background(), "hi")

	msgs := c.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, domain.RoleUser, msgs[0].Role)
	assert.Equal(t, ErrorMessageID, msgs[1].ID)
	assert.Equal(t, domain.RoleAssistant, msgs[1].Role)
	assert.Equal(t, 0, syncs)
	assert.False(t, c.InFlight(), "a failed turn must return to idle")
	assert.Empty(t, c.Partial(), "no partial text survives a failed turn")
}

func TestSubmit_MidStreamFailureDropsPartialText(t *testing.T) {
	streamer := &mockStreamer{scripts: [][]stream.Event{{
		textEvt("I was about to say"),
		errEvt("connection reset"),
	}}}

	c := newTestController(streamer, &mockHistory{}, Hooks{})
	c.Submit(context.Background(), "hi")

	msgs := c.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, ErrorMessageID, msgs[1].ID)
	assert.NotContains(t, msgs[1].Content, "I was about to say")
	assert.Empty(t, c.Partial())
}

func TestSubmit_SyncFiresOnFailureAfterToolCall(t *testing.T) {
	// The server may have mutated tasks before the stream broke, so the
	// sync signal still fires on the failure path.
	streamer := &mockStreamer{scripts: [][]stream.Event{{
		toolEvt(),
		errEvt("connection reset"),
	}}}

	syncs := 0
	c := newTestController(streamer, &mockHistory{}, Hooks{
		OnTasksChanged: func() { syncs++ },
	})

	c.Submit(context.Background(), "delete everything")

	assert.Equal(t, 1, syncs)
	assert.Equal(t, ErrorMessageID, c.Messages()[1].ID)
}

func TestSubmit_AtMostOneSync(t *testing.T) {
	streamer := &mockStreamer{scripts: [][]stream.Event{{
		toolEvt(),
		textEvt("working"),
		toolEvt(),
		toolEvt(),
		terminalEvt(),
	}}}

	syncs := 0
	c := newTestController(streamer, &mockHistory{}, Hooks{
		OnTasksChanged: func() { syncs++ },
	})

	c.Submit(context.Background(), "do three things")
	assert.Equal(t, 1, syncs, "k tool calls still mean one sync signal")
}

func TestSubmit_EmptyTextIsNoOp(t *testing.T) {
	streamer := &mockStreamer{}
	c := newTestController(streamer, &mockHistory{}, Hooks{})

	c.Submit(context.Background(), "")
	c.Submit(context.Background(), "   \n\t ")

	assert.Empty(t, c.Messages())
	assert.Equal(t, 0, streamer.calls)
}

func TestSubmit_GuardWhileInFlight(t *testing.T) {
	// Submit is synchronous, so the only way to hit the guard is a
	// reentrant call from a hook mid-turn.
	streamer := &mockStreamer{scripts: [][]stream.Event{{
		textEvt("first"),
		terminalEvt(),
	}}}

	var c *Controller
	reentered := false
	c = newTestController(streamer, &mockHistory{}, Hooks{
		OnPartial: func(text string) {
			if text != "" && !reentered {
				reentered = true
				c.Submit(context.Background(), "sneaky second submit")
			}
		},
	})

	c.Submit(context.Background(), "first message")

	require.True(t, reentered)
	msgs := c.Messages()
	require.Len(t, msgs, 2, "the reentrant submit must not touch history")
	assert.Equal(t, "first message", msgs[0].Content)
	assert.Equal(t, "first", msgs[1].Content)
	assert.Equal(t, 1, streamer.calls)
}

func TestSubmit_RecoveryAfterFailure(t *testing.T) {
	streamer := &mockStreamer{
		errs: []error{errors.New("network down"), nil},
		scripts: [][]stream.Event{
			nil,
			{textEvt("Back online!"), terminalEvt()},
		},
	}

	c := newTestController(streamer, &mockHistory{}, Hooks{})

	c.Submit(context.Background(), "first try")
	c.Submit(context.Background(), "second try")

	msgs := c.Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, "first try", msgs[0].Content)
	assert.Equal(t, ErrorMessageID, msgs[1].ID)
	assert.Equal(t, "second try", msgs[2].Content)
	assert.Equal(t, "Back online!", msgs[3].Content)
}

func TestSubmit_PartialTextObservable(t *testing.T) {
	streamer := &mockStreamer{scripts: [][]stream.Event{{
		textEvt("a"),
		textEvt("b"),
		textEvt("c"),
		terminalEvt(),
	}}}

	var partials []string
	c := newTestController(streamer, &mockHistory{}, Hooks{
		OnPartial: func(text string) { partials = append(partials, text) },
	})

	c.Submit(context.Background(), "spell abc")

	// Cleared on accept, grown per delta, cleared after commit.
	assert.Equal(t, []string{"", "a", "ab", "abc", ""}, partials)
}

func TestRefreshHistory_ReplacesWholesale(t *testing.T) {
	history := &mockHistory{msgs: []domain.Message{
		{ID: "m1", Role: domain.RoleUser, Content: "old question"},
		{ID: "m2", Role: domain.RoleAssistant, Content: "old answer"},
	}}

	var observed [][]domain.Message
	c := newTestController(&mockStreamer{}, history, Hooks{
		OnHistory: func(msgs []domain.Message) { observed = append(observed, msgs) },
	})

	c.RefreshHistory(context.Background())
	require.Len(t, c.Messages(), 2)

	history.msgs = []domain.Message{{ID: "m3", Role: domain.RoleUser, Content: "only one"}}
	c.RefreshHistory(context.Background())

	msgs := c.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "m3", msgs[0].ID)
	assert.Len(t, observed, 2)
}

func TestRefreshHistory_FetchFailureSwallowed(t *testing.T) {
	history := &mockHistory{msgs: []domain.Message{{ID: "m1", Role: domain.RoleUser, Content: "kept"}}}
	c := newTestController(&mockStreamer{}, history, Hooks{})

	c.RefreshHistory(context.Background())
	require.Len(t, c.Messages(), 1)

	history.err = errors.New("backend down")
	c.RefreshHistory(context.Background())

	msgs := c.Messages()
	require.Len(t, msgs, 1, "failed fetch keeps the current view")
	assert.Equal(t, "m1", msgs[0].ID)
}

func TestSubmit_TrailingEventsAfterTerminalIgnoredByDecoder(t *testing.T) {
	// The decoder stops emitting after the sentinel, so the controller
	// only ever sees post-terminal events if a transport misbehaves; the
	// accumulator still only commits once.
	streamer := &mockStreamer{scripts: [][]stream.Event{{
		textEvt("done"),
		terminalEvt(),
	}}}

	c := newTestController(streamer, &mockHistory{}, Hooks{})
	c.Submit(context.Background(), "finish up")

	msgs := c.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "done", msgs[1].Content)
}
