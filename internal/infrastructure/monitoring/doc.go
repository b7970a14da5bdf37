/*
Package monitoring provides Prometheus metrics for the viewer backend.

# Overview

Each Metrics value owns a private registry, so several servers (or tests) can
live in one process without duplicate-registration panics.

# Metrics

  - Content requests by route and outcome, with latency
  - Control (HTTP) requests by method, path and status
  - Bridge messages by direction and name
  - Pending correlated callbacks
  - Open bridge connections
  - Uptime

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	metrics.RecordContentRequest("book", "ok", time.Since(start))
	metrics.RecordBridgeMessage(monitoring.Outbound, "start_book_load")
*/
package monitoring
