// Package logging provides structured logging using uber/zap.
//
// Two modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Components receive a *zap.Logger named after themselves (content, bridge,
// viewer, ...) and attach context with typed fields. Details that must not
// cross the content boundary, such as resolved filesystem paths and I/O
// causes, are only ever written here.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.Component("content").Warn("containment violation",
//	    zap.String("name", name), zap.Error(err))
package logging
