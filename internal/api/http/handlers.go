package http

import (
	"context"
	"net/http"
	"time"

	"github.com/GriffinCanCode/bookview/internal/bridge"
	"github.com/GriffinCanCode/bookview/internal/domain/book"
	"github.com/GriffinCanCode/bookview/internal/domain/viewer"
	"github.com/gin-gonic/gin"
)

const snapshotTimeout = 2 * time.Second

// Handlers contains the control surface HTTP handlers
type Handlers struct {
	books   *book.Session
	loop    *bridge.Loop
	view    *viewer.View
	started time.Time
}

// NewHandlers creates a new handler set
func NewHandlers(books *book.Session, loop *bridge.Loop, view *viewer.View) *Handlers {
	return &Handlers{
		books:   books,
		loop:    loop,
		view:    view,
		started: time.Now(),
	}
}

// Root handles liveness check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "bookview",
	})
}

type bridgeSnapshot struct {
	State            string   `json:"state"`
	PendingActions   []string `json:"pending_actions"`
	PendingCallbacks int      `json:"pending_callbacks"`
}

// Health reports the open book and the bridge state
func (h *Handlers) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), snapshotTimeout)
	defer cancel()

	var snap bridgeSnapshot
	err := h.loop.Do(ctx, func() {
		ch := h.view.Channel()
		snap.State = ch.State().String()
		snap.PendingCallbacks = h.view.Callbacks().Pending()
		snap.PendingActions = make([]string, 0, len(ch.Pending()))
		for _, action := range ch.Pending() {
			snap.PendingActions = append(snap.PendingActions, string(action))
		}
	})
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         "healthy",
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
		"book":           bookStatus(h.books.Current()),
		"bridge":         snap,
	})
}

func bookStatus(ctx *book.Context) gin.H {
	if ctx == nil {
		return gin.H{"open": false}
	}
	return gin.H{
		"open":      true,
		"root":      ctx.Root(),
		"source":    ctx.Source(),
		"resources": len(ctx.Manifest().Resources),
	}
}
