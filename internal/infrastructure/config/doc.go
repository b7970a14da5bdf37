// Package config provides 12-factor configuration for the viewer backend.
//
// Configuration is loaded from environment variables with defaults. An
// optional TOML file can be layered on top, and CLI flags in cmd/server take
// precedence over both.
//
// Configuration Sections:
//   - Server: loopback listener (host, port)
//   - Content: private scheme/host, book directory, auxiliary asset root, shell document
//   - Bridge: inbound event rate limit, write timeout
//   - Session: preference store location
//   - Logging: log level and output format
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("serving %s://%s on %s\n", cfg.Content.Scheme, cfg.Content.Host, cfg.Server.Addr())
//
// Environment Variables:
//   - HOST, PORT
//   - CONTENT_SCHEME, CONTENT_HOST, BOOK_DIR, BOOK_SOURCE
//   - ASSETS_DIR, PATCHED_ASSET, ASSETS_EXCLUDE
//   - SHELL_PATH, SCRIPT_PATH, TRANSLATIONS_PATH
//   - BRIDGE_EVENTS_RPS, BRIDGE_EVENTS_BURST, BRIDGE_WRITE_TIMEOUT
//   - PREFS_PATH
//   - LOG_LEVEL, LOG_DEV
package config
