package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware creates a Gin middleware for control request metrics
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method

		c.Next()

		// Route templates keep label cardinality bounded
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		metrics.RecordHTTPRequest(method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

// Timer measures a content request
type Timer struct {
	start   time.Time
	metrics *Metrics
	route   string
}

// NewTimer creates a new timer for route
func NewTimer(metrics *Metrics, route string) *Timer {
	return &Timer{
		start:   time.Now(),
		metrics: metrics,
		route:   route,
	}
}

// Stop records the elapsed time with the outcome and payload size
func (t *Timer) Stop(outcome string, size int) {
	if t == nil || t.metrics == nil {
		return
	}
	t.metrics.RecordContentRequest(t.route, outcome, size, time.Since(t.start))
}
