// Package viewer is the host side controller of the rendering surface.
//
// A View owns the bridge channel and the callback registry of one surface.
// It sends create_view when the peer reports ready, turns the inbound event
// catalog into Host calls, and exposes typed methods for every host to peer
// action. It also decides navigation policy, tracks the reading position
// carried in the URL fragment, and handles console output and renderer
// crashes.
//
// A View must only be used from the goroutine running its bridge.Loop.
package viewer
