// Package http provides the control surface handlers.
//
// Routes:
//   - GET /        liveness
//   - GET /health  open book and bridge snapshot taken on the bridge loop
package http
