package stream

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// feedAll runs a whole wire string through a fresh decoder in one chunk.
func feedAll(s string) []Event {
	return NewDecoder().Feed(s)
}

func TestFeed_SingleChunk(t *testing.T) {
	wire := "data: {\"type\":\"text\",\"content\":\"Sure, \"}\n\n" +
		"data: {\"type\":\"text\",\"content\":\"adding it now.\"}\n\n" +
		"data: {\"type\":\"tool_call\",\"status\":\"executing\",\"tool\":\"create_task\"}\n\n" +
		"data: [DONE]\n\n"

	events := feedAll(wire)
	require.Len(t, events, 4)
	assert.Equal(t, Event{Kind: KindTextDelta, Text: "Sure, "}, events[0])
	assert.Equal(t, Event{Kind: KindTextDelta, Text: "adding it now."}, events[1])
	assert.Equal(t, Event{Kind: KindToolCall}, events[2])
	assert.Equal(t, Event{Kind: KindTerminal}, events[3])
}

// Splitting the stream at any byte boundary must yield the same events
// as feeding it whole.
func TestFeed_ChunkBoundaryInvariance(t *testing.T) {
	wire := "data: {\"type\":\"text\",\"content\":\"Hello\"}\n\n" +
		"data: {\"type\":\"tool_call\"}\n\n" +
		"data: {\"type\":\"text\",\"content\":\" world\"}\n\n" +
		"data: [DONE]\n\n"

	want := feedAll(wire)
	require.NotEmpty(t, want)

	for split := 1; split < len(wire); split++ {
		t.Run(fmt.Sprintf("split=%d", split), func(t *testing.T) {
			dec := NewDecoder()
			got := append(dec.Feed(wire[:split]), dec.Feed(wire[split:])...)
			assert.Equal(t, want, got)
		})
	}
}

func TestFeed_SplitMidRecord(t *testing.T) {
	dec := NewDecoder()

	events := dec.Feed("data: {\"typ")
	assert.Empty(t, events)

	events = dec.Feed("e\":\"text\",\"content\":\"ok\"}\n")
	require.Len(t, events, 1)
	assert.Equal(t, Event{Kind: KindTextDelta, Text: "ok"}, events[0])
}

func TestFeed_ManySmallChunks(t *testing.T) {
	wire := "data: {\"type\":\"text\",\"content\":\"a\"}\n" +
		"data: {\"type\":\"text\",\"content\":\"b\"}\n" +
		"data: [DONE]\n"

	dec := NewDecoder()
	var got []Event
	for _, b := range []byte(wire) {
		got = append(got, dec.Feed(string(b))...)
	}
	assert.Equal(t, feedAll(wire), got)
}

func TestFeed_MalformedPayloadDropped(t *testing.T) {
	wire := "data: {not json at all\n" +
		"data: {\"type\":\"text\",\"content\":\"ok\"}\n" +
		"data: [DONE]\n"

	events := feedAll(wire)
	require.Len(t, events, 2)
	assert.Equal(t, KindTextDelta, events[0].Kind)
	assert.Equal(t, KindTerminal, events[1].Kind)
}

func TestFeed_UnknownTypeIgnored(t *testing.T) {
	wire := "data: {\"type\":\"usage\",\"tokens\":42}\n" +
		"data: {\"type\":\"text\",\"content\":\"hi\"}\n" +
		"data: [DONE]\n"

	events := feedAll(wire)
	require.Len(t, events, 2)
	assert.Equal(t, Event{Kind: KindTextDelta, Text: "hi"}, events[0])
}

func TestFeed_NonEventLinesIgnored(t *testing.T) {
	wire := "\n" +
		": keep-alive\n" +
		"event: message\n" +
		"data: {\"type\":\"text\",\"content\":\"hi\"}\n" +
		"data: [DONE]\n"

	events := feedAll(wire)
	require.Len(t, events, 2)
	assert.Equal(t, Event{Kind: KindTextDelta, Text: "hi"}, events[0])
}

func TestFeed_IgnoresEverythingAfterTerminal(t *testing.T) {
	dec := NewDecoder()

	// Trailing frame in the same chunk.
	events := dec.Feed("data: [DONE]\ndata: {\"type\":\"text\",\"content\":\"late\"}\n")
	require.Len(t, events, 1)
	assert.Equal(t, KindTerminal, events[0].Kind)
	assert.True(t, dec.Done())

	// Trailing frames in later chunks while the transport drains.
	events = dec.Feed("data: {\"type\":\"text\",\"content\":\"later\"}\n")
	assert.Empty(t, events)
}

func TestFeed_CRLFLines(t *testing.T) {
	wire := "data: {\"type\":\"text\",\"content\":\"hi\"}\r\n" +
		"data: [DONE]\r\n"

	events := feedAll(wire)
	require.Len(t, events, 2)
	assert.Equal(t, Event{Kind: KindTextDelta, Text: "hi"}, events[0])
	assert.Equal(t, KindTerminal, events[1].Kind)
}

func TestFeed_EmptyDelta(t *testing.T) {
	events := feedAll("data: {\"type\":\"text\",\"content\":\"\"}\n")
	require.Len(t, events, 1)
	assert.Equal(t, Event{Kind: KindTextDelta, Text: ""}, events[0])
}

func TestClassify_Table(t *testing.T) {
	tests := []struct {
		payload string
		want    Event
		ok      bool
	}{
		{`{"type":"text","content":"abc"}`, Event{Kind: KindTextDelta, Text: "abc"}, true},
		{`{"type":"tool_call","status":"preparing"}`, Event{Kind: KindToolCall}, true},
		{`{"type":"done"}`, Event{}, false},
		{`{"content":"no type"}`, Event{}, false},
		{`[1,2,3]`, Event{}, false},
		{``, Event{}, false},
	}

	for _, tt := range tests {
		got, ok := classify(tt.payload)
		assert.Equal(t, tt.ok, ok, "payload %q", tt.payload)
		if ok {
			assert.Equal(t, tt.want, got, "payload %q", tt.payload)
		}
	}
}
