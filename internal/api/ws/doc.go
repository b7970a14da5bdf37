// Package ws binds a WebSocket connection to the bridge.
//
// The peer connects to /bridge?token=<bridge token>. Each text frame it
// sends is validated, rate limited and posted to the bridge loop; calls from
// the host are written back as text frames by a per-connection writer. Only
// one peer is attached at a time.
//
// Example Usage:
//
//	handler := ws.NewHandler(loop, view, token, ws.DefaultOptions(), logger, metrics)
//	router.GET("/bridge", handler.HandleConnection)
package ws
