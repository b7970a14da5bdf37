package bridge

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/bookview/internal/infrastructure/monitoring"
)

// State is the readiness of a channel
type State int

const (
	StateDisconnected State = iota
	StateConnected
	StateReady
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnected:
		return "connected"
	case StateReady:
		return "ready"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

var (
	// ErrAlreadyAttached is returned when a transport is attached twice
	ErrAlreadyAttached = errors.New("channel already has a transport")

	// ErrClosed is returned for operations on a closed channel
	ErrClosed = errors.New("channel closed")
)

// Transport delivers encoded frames to the peer
type Transport interface {
	Send(frame []byte) error
}

// Handler receives the arguments of one inbound event
type Handler func(args Args)

type pendingCall struct {
	action Action
	args   []interface{}
}

// Channel is one host side of the bridge. It is not safe for concurrent use;
// see the package documentation.
type Channel struct {
	state     State
	transport Transport

	// Insertion ordered; an overwrite keeps the original slot
	pending []pendingCall
	slots   map[Action]int

	handlers map[Event]Handler
	onReady  func()

	logger  *zap.Logger
	metrics *monitoring.Metrics
}

// NewChannel creates a disconnected channel
func NewChannel(logger *zap.Logger, metrics *monitoring.Metrics) *Channel {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Channel{
		state:    StateDisconnected,
		slots:    make(map[Action]int),
		handlers: make(map[Event]Handler),
		logger:   logger,
		metrics:  metrics,
	}
}

// State returns the current state
func (c *Channel) State() State {
	return c.state
}

// Ready reports whether calls are sent immediately
func (c *Channel) Ready() bool {
	return c.state == StateReady
}

// On registers the handler for event, replacing any previous one
func (c *Channel) On(event Event, h Handler) {
	c.handlers[event] = h
}

// OnReady registers a hook that runs at the ready transition, before the
// pending calls are flushed
func (c *Channel) OnReady(fn func()) {
	c.onReady = fn
}

// Attach binds the peer transport
func (c *Channel) Attach(t Transport) error {
	switch c.state {
	case StateClosed:
		return ErrClosed
	case StateDisconnected:
		c.transport = t
		c.state = StateConnected
		return nil
	default:
		return ErrAlreadyAttached
	}
}

// Detach unbinds the transport. A channel that never became ready goes back
// to disconnected with its pending calls intact; a ready channel closes.
// It reports whether the channel is now closed.
func (c *Channel) Detach() bool {
	c.transport = nil
	switch c.state {
	case StateConnected:
		c.state = StateDisconnected
	case StateReady:
		c.state = StateClosed
	}
	return c.state == StateClosed
}

// Enqueue sends the call now when ready, otherwise keeps the latest args
// for action until the ready transition. Actions outside the catalog are
// dropped.
func (c *Channel) Enqueue(action Action, args ...interface{}) {
	if !action.Valid() {
		c.logger.Warn("Dropped call outside the catalog", zap.String("action", string(action)))
		if c.metrics != nil {
			c.metrics.RecordBridgeDropped("unknown_action")
		}
		return
	}

	switch c.state {
	case StateClosed:
		c.logger.Debug("Dropped call on closed channel", zap.String("action", string(action)))
		if c.metrics != nil {
			c.metrics.RecordBridgeDropped("closed")
		}
	case StateReady:
		c.send(action, args)
	default:
		if i, ok := c.slots[action]; ok {
			c.pending[i].args = args
			return
		}
		c.slots[action] = len(c.pending)
		c.pending = append(c.pending, pendingCall{action: action, args: args})
	}
}

// Pending returns the queued actions in flush order
func (c *Channel) Pending() []Action {
	actions := make([]Action, len(c.pending))
	for i, p := range c.pending {
		actions[i] = p.action
	}
	return actions
}

// Receive handles one inbound frame from the peer
func (c *Channel) Receive(data []byte) {
	if c.state == StateClosed {
		return
	}

	frame, err := DecodeFrame(data)
	if err != nil || frame.Type != FrameEvent {
		c.logger.Debug("Ignored malformed frame", zap.Error(err), zap.Int("bytes", len(data)))
		if c.metrics != nil {
			c.metrics.RecordBridgeDropped("malformed")
		}
		return
	}

	event, ok := ParseEvent(frame.Name)
	if !ok {
		c.logger.Debug("Ignored unknown event", zap.String("event", frame.Name))
		return
	}
	if c.metrics != nil {
		c.metrics.RecordBridgeMessage(monitoring.Inbound, string(event))
	}

	if event == EventBridgeReady {
		c.becomeReady()
		return
	}

	if h, ok := c.handlers[event]; ok {
		h(Args(frame.Args))
	}
}

func (c *Channel) becomeReady() {
	if c.state != StateConnected {
		return
	}
	c.state = StateReady

	if c.onReady != nil {
		c.onReady()
	}
	if h, ok := c.handlers[EventBridgeReady]; ok {
		h(nil)
	}

	pending := c.pending
	c.pending = nil
	c.slots = make(map[Action]int)
	for _, p := range pending {
		c.send(p.action, p.args)
	}
}

func (c *Channel) send(action Action, args []interface{}) {
	if c.transport == nil {
		return
	}

	frame, err := EncodeCall(action, args)
	if err != nil {
		c.logger.Error("Failed to encode call", zap.String("action", string(action)), zap.Error(err))
		return
	}
	if err := c.transport.Send(frame); err != nil {
		c.logger.Warn("Failed to send call", zap.String("action", string(action)), zap.Error(err))
		if c.metrics != nil {
			c.metrics.RecordBridgeDropped("send_failed")
		}
		return
	}
	if c.metrics != nil {
		c.metrics.RecordBridgeMessage(monitoring.Outbound, string(action))
	}
}

// String describes the channel for logs
func (c *Channel) String() string {
	return fmt.Sprintf("bridge channel (%s, %d pending)", c.state, len(c.pending))
}
