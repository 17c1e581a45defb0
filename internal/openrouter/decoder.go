package openrouter

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/tidwall/gjson"
)

// Usage is the token accounting record the API attaches to a stream.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Event is one decoded frame of a completion stream: a content delta, a
// usage record, or both when the API packs them into the same frame.
type Event struct {
	Delta string
	Usage *Usage
}

// Decoder turns a raw event-stream body into a sequence of Events. Framing
// is line based: lines prefixed with "data:" carry a JSON payload, the
// literal payload "[DONE]" ends the stream, everything else is ignored.
// Reading whole lines makes the decoder independent of how the transport
// chunks the bytes, including multi-byte runes split across reads.
type Decoder struct {
	r       *bufio.Reader
	done    bool
	emitted bool
}

// NewDecoder creates a decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Next returns the next decoded event. It returns io.EOF when the stream
// terminates via [DONE] or natural closure. A transport interruption after
// at least one content delta is reported as io.EOF as well: partial output
// already handed to the caller is never retracted. Cancellation errors
// always surface.
func (d *Decoder) Next() (Event, error) {
	if d.done {
		return Event{}, io.EOF
	}

	for {
		line, err := d.r.ReadString('\n')
		if err != nil {
			d.done = true
			if errors.Is(err, io.EOF) {
				// An incomplete trailing line is dropped; events end with
				// a line break.
				return Event{}, io.EOF
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return Event{}, err
			}
			if d.emitted {
				return Event{}, io.EOF
			}
			return Event{}, err
		}

		ev, ok, end := d.decodeLine(line)
		if end {
			d.done = true
			return Event{}, io.EOF
		}
		if !ok {
			continue
		}
		if ev.Delta != "" {
			d.emitted = true
		}
		return ev, nil
	}
}

// decodeLine parses one line of the stream. Malformed JSON payloads are
// skipped; the API occasionally emits heartbeats and partial garbage.
func (d *Decoder) decodeLine(line string) (ev Event, ok bool, end bool) {
	line = strings.TrimSpace(line)
	if line == "" || !strings.HasPrefix(line, "data:") {
		return Event{}, false, false
	}

	payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
	if payload == "[DONE]" {
		return Event{}, false, true
	}
	if !gjson.Valid(payload) {
		return Event{}, false, false
	}

	ev.Delta = gjson.Get(payload, "choices.0.delta.content").String()
	if u := gjson.Get(payload, "usage"); u.IsObject() {
		ev.Usage = &Usage{
			PromptTokens:     int(u.Get("prompt_tokens").Int()),
			CompletionTokens: int(u.Get("completion_tokens").Int()),
			TotalTokens:      int(u.Get("total_tokens").Int()),
		}
	}
	if ev.Delta == "" && ev.Usage == nil {
		return Event{}, false, false
	}
	return ev, true, false
}
