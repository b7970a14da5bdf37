// Package callback correlates outgoing requests over the one-way bridge
// with the replies that come back for them.
//
// A caller issues an id, sends it along with its call, and registers a
// continuation. The reply event carrying the same id resolves it exactly
// once. Registries are confined to one bridge loop and carry no locks.
package callback

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
)

// ID correlates one request with its reply
type ID uint64

// Ids are unique for the life of the process, across registries
var lastID atomic.Uint64

// Continuation receives the reply payload
type Continuation func(payload json.RawMessage)

// Registry holds pending continuations
type Registry struct {
	pending map[ID]Continuation
}

// New creates an empty registry
func New() *Registry {
	return &Registry{pending: make(map[ID]Continuation)}
}

// Issue returns a fresh id
func (r *Registry) Issue() ID {
	return ID(lastID.Add(1))
}

// Register stores fn under id. Registering an id that is still pending is
// a programming error and panics.
func (r *Registry) Register(id ID, fn Continuation) {
	if _, exists := r.pending[id]; exists {
		panic(fmt.Sprintf("callback: id %d registered twice", id))
	}
	r.pending[id] = fn
}

// Resolve removes and invokes the continuation for id. Unknown or already
// resolved ids are ignored and report false.
func (r *Registry) Resolve(id ID, payload json.RawMessage) bool {
	fn, ok := r.pending[id]
	if !ok {
		return false
	}
	delete(r.pending, id)
	if fn != nil {
		fn(payload)
	}
	return true
}

// PurgeAll drops every pending continuation without invoking any and
// returns how many were dropped
func (r *Registry) PurgeAll() int {
	n := len(r.pending)
	r.pending = make(map[ID]Continuation)
	return n
}

// Pending returns the number of outstanding continuations
func (r *Registry) Pending() int {
	return len(r.pending)
}
