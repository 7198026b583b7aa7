// Package stream decodes the server-sent event stream produced by the
// TodoFlow chat endpoint into discrete, classified events.
//
// The wire framing is one event per line: lines of interest carry a
// "data:" prefix followed by either the terminal sentinel or a JSON
// record with a "type" discriminator. Chunk boundaries are arbitrary and
// may split a frame anywhere, so the decoder keeps undecoded trailing
// bytes between Feed calls.
package stream

import (
	"encoding/json"
	"strings"
)

const (
	eventPrefix      = "data:"
	terminalSentinel = "[DONE]"
)

// EventKind classifies a decoded stream event.
type EventKind int

const (
	// KindTextDelta carries an incremental fragment of assistant text.
	KindTextDelta EventKind = iota
	// KindToolCall marks a state-changing tool invocation on the server.
	// Its payload is opaque to the client.
	KindToolCall
	// KindTerminal signals the end of the turn's event stream.
	KindTerminal
	// KindError is produced by the transport layer when the stream fails
	// mid-read. The decoder itself never emits it.
	KindError
)

// Event is one decoded frame from the chat stream. Events are transient:
// they are consumed as they arrive and never stored.
type Event struct {
	Kind EventKind
	Text string // text fragment for KindTextDelta, error detail for KindError
}

// Decoder incrementally decodes raw stream chunks into events.
// A Decoder is single-use: after the terminal sentinel it decodes nothing
// further, and a new instance is required for the next turn.
type Decoder struct {
	carry string
	done  bool
}

// NewDecoder returns a decoder for one turn's stream.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed appends a chunk to the carry-over buffer and returns the events
// completed by it, in wire order. An incomplete trailing line is held
// until the next call. Once the terminal sentinel has been seen, Feed
// returns nil regardless of input: the transport may still be draining,
// but trailing frames are ignored.
func (d *Decoder) Feed(chunk string) []Event {
	if d.done {
		return nil
	}
	d.carry += chunk

	var events []Event
	for {
		idx := strings.IndexByte(d.carry, '\n')
		if idx < 0 {
			break
		}
		line := d.carry[:idx]
		d.carry = d.carry[idx+1:]

		evt, ok := decodeLine(line)
		if !ok {
			continue
		}
		events = append(events, evt)
		if evt.Kind == KindTerminal {
			d.done = true
			break
		}
	}
	return events
}

// Done reports whether the terminal sentinel has been decoded.
func (d *Decoder) Done() bool {
	return d.done
}

// decodeLine turns one complete line into an event. Lines without the
// event prefix (blank separators, comments) produce nothing.
func decodeLine(line string) (Event, bool) {
	line = strings.TrimRight(line, "\r")
	if !strings.HasPrefix(line, eventPrefix) {
		return Event{}, false
	}
	payload := strings.TrimSpace(strings.TrimPrefix(line, eventPrefix))
	if payload == terminalSentinel {
		return Event{Kind: KindTerminal}, true
	}
	return classify(payload)
}

// frame is the wire shape of a structured chat event. Fields beyond the
// discriminator and text content are ignored.
type frame struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// classify maps a raw payload onto the closed set of event kinds.
// Unparseable payloads are dropped without error: the server flushes one
// JSON record per line, but intermediaries can re-chunk mid-record and
// the rest of the bytes arrive later. Unknown types are dropped too.
func classify(payload string) (Event, bool) {
	var f frame
	if err := json.Unmarshal([]byte(payload), &f); err != nil {
		return Event{}, false
	}
	switch f.Type {
	case "text":
		return Event{Kind: KindTextDelta, Text: f.Content}, true
	case "tool_call":
		return Event{Kind: KindToolCall}, true
	default:
		return Event{}, false
	}
}
