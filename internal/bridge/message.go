package bridge

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
)

// Frame types
const (
	FrameCall  = "call"
	FrameEvent = "event"
)

// ErrMalformedFrame is returned for frames that are not valid events
var ErrMalformedFrame = errors.New("malformed bridge frame")

// Frame is one message on the wire
type Frame struct {
	Type string            `json:"type"`
	Name string            `json:"name"`
	Args []json.RawMessage `json:"args"`
}

type outbound struct {
	Type string        `json:"type"`
	Name string        `json:"name"`
	Args []interface{} `json:"args"`
}

// EncodeCall encodes a host to peer call
func EncodeCall(action Action, args []interface{}) ([]byte, error) {
	if args == nil {
		args = []interface{}{}
	}
	data, err := sonic.Marshal(outbound{Type: FrameCall, Name: string(action), Args: args})
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", action, err)
	}
	return data, nil
}

// EncodeEvent encodes a peer to host event. Peers written in Go use it.
func EncodeEvent(event Event, args ...interface{}) ([]byte, error) {
	if args == nil {
		args = []interface{}{}
	}
	data, err := sonic.Marshal(outbound{Type: FrameEvent, Name: string(event), Args: args})
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", event, err)
	}
	return data, nil
}

// DecodeFrame parses a frame of either type
func DecodeFrame(data []byte) (Frame, error) {
	var f Frame
	if err := sonic.Unmarshal(data, &f); err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if f.Name == "" {
		return Frame{}, fmt.Errorf("%w: missing name", ErrMalformedFrame)
	}
	return f, nil
}

// Args are the positional arguments of an inbound event
type Args []json.RawMessage

// Len returns the number of arguments
func (a Args) Len() int { return len(a) }

// Raw returns argument i, or nil when absent
func (a Args) Raw(i int) json.RawMessage {
	if i < 0 || i >= len(a) {
		return nil
	}
	return a[i]
}

// IsNull reports whether argument i is absent or JSON null
func (a Args) IsNull(i int) bool {
	raw := a.Raw(i)
	return raw == nil || string(raw) == "null"
}

// Decode unmarshals argument i into v
func (a Args) Decode(i int, v interface{}) error {
	raw := a.Raw(i)
	if raw == nil {
		return fmt.Errorf("missing argument %d", i)
	}
	if err := sonic.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("argument %d: %w", i, err)
	}
	return nil
}

// String returns argument i as a string, or "" when it is not one
func (a Args) String(i int) string {
	var s string
	if err := a.Decode(i, &s); err != nil {
		return ""
	}
	return s
}

// Value returns argument i decoded into a generic value
func (a Args) Value(i int) interface{} {
	var v interface{}
	if err := a.Decode(i, &v); err != nil {
		return nil
	}
	return v
}
