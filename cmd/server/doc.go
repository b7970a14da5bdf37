// Package main is the entry point for the bookview host server.
//
// One loopback listener carries two surfaces:
//
//	bookview://internal.invalid/...  → virtual content server (shell, manifest, book/, aux/)
//	everything else                  → control (/health, /metrics, /bridge)
//
// The rendering surface fetches content through the listener as a proxy and
// attaches to /bridge with the token printed at startup.
//
// Configuration:
//   - Environment variables
//   - Optional TOML file (-config), layered over the environment
//   - CLI flags (override both)
//
// Usage:
//
//	./server -book /tmp/unpacked -source ~/books/one.epub -shell viewer.html -script viewer.js
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
