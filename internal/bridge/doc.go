// Package bridge implements the message pump between the host and the
// rendering surface.
//
// A Channel queues outbound calls until the peer reports bridge_ready, then
// flushes them in first-insertion order and sends every later call
// immediately. Inbound events are dispatched synchronously by name.
//
// Channels, callback registries and views carry no locks. They must only
// be touched from the goroutine running their Loop.
//
// Wire format (JSON text frames):
//
//	host -> peer: {"type":"call","name":"<action>","args":[...]}
//	peer -> host: {"type":"event","name":"<event>","args":[...]}
package bridge
