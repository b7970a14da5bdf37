package ws

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/bookview/internal/bridge"
	"github.com/GriffinCanCode/bookview/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/bookview/internal/shared/id"
	"github.com/GriffinCanCode/bookview/internal/shared/utils"
)

var upgrader = websocket.Upgrader{
	// The bridge token gates access
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ErrOutboxFull is returned when the peer does not keep up with host calls
var ErrOutboxFull = errors.New("bridge outbox full")

// Peer is the bridge endpoint a connection drives. Its methods run on the
// bridge loop.
type Peer interface {
	Attach(t bridge.Transport) error
	Receive(frame []byte)
	Detach()
}

// Options tunes a connection
type Options struct {
	EventsPerSecond float64
	EventsBurst     int
	WriteTimeout    time.Duration
	Outbox          int
}

// DefaultOptions returns the defaults used when the config leaves them unset
func DefaultOptions() Options {
	return Options{
		EventsPerSecond: 200,
		EventsBurst:     400,
		WriteTimeout:    10 * time.Second,
		Outbox:          256,
	}
}

// Handler manages bridge connections
type Handler struct {
	loop      *bridge.Loop
	peer      Peer
	token     id.Token
	opts      Options
	validator *utils.JSONSizeValidator
	logger    *zap.Logger
	metrics   *monitoring.Metrics
}

// NewHandler creates a new bridge handler
func NewHandler(loop *bridge.Loop, peer Peer, token id.Token, opts Options, logger *zap.Logger, metrics *monitoring.Metrics) *Handler {
	defaults := DefaultOptions()
	if opts.EventsPerSecond <= 0 {
		opts.EventsPerSecond = defaults.EventsPerSecond
	}
	if opts.EventsBurst <= 0 {
		opts.EventsBurst = defaults.EventsBurst
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaults.WriteTimeout
	}
	if opts.Outbox <= 0 {
		opts.Outbox = defaults.Outbox
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		loop:      loop,
		peer:      peer,
		token:     token,
		opts:      opts,
		validator: utils.DefaultJSONValidator(),
		logger:    logger,
		metrics:   metrics,
	}
}

// HandleConnection upgrades the request and pumps frames until the peer
// goes away
func (h *Handler) HandleConnection(c *gin.Context) {
	if !h.authorized(c.Query("token")) {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	connID := id.NewConnectionID()
	logger := h.logger.With(zap.String("conn_id", connID.String()))
	conn.SetReadLimit(int64(h.validator.MaxSize()))

	t := newTransport(conn, h.opts.Outbox, h.opts.WriteTimeout)
	go t.writePump(logger)
	defer t.close()

	var attachErr error
	if err := h.loop.Do(c.Request.Context(), func() { attachErr = h.peer.Attach(t) }); err != nil {
		logger.Warn("Bridge loop unavailable", zap.Error(err))
		return
	}
	if attachErr != nil {
		logger.Warn("Rejected bridge connection", zap.Error(attachErr))
		t.closeWith(websocket.ClosePolicyViolation, "bridge already attached")
		return
	}

	if h.metrics != nil {
		h.metrics.IncBridgeConnections()
		defer h.metrics.DecBridgeConnections()
	}
	logger.Info("Bridge connected")

	h.readPump(conn, logger)

	_ = h.loop.Post(h.peer.Detach)
	logger.Info("Bridge disconnected")
}

func (h *Handler) authorized(token string) bool {
	if h.token == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.token)) == 1
}

func (h *Handler) readPump(conn *websocket.Conn, logger *zap.Logger) {
	limiter := rate.NewLimiter(rate.Limit(h.opts.EventsPerSecond), h.opts.EventsBurst)

	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("WebSocket read error", zap.Error(err))
			}
			return
		}
		if kind != websocket.TextMessage {
			h.drop("binary")
			continue
		}
		if !limiter.Allow() {
			h.drop("rate_limited")
			continue
		}
		if err := h.validator.ValidateJSON(data); err != nil {
			logger.Debug("Dropped invalid frame", zap.Error(err))
			h.drop("invalid")
			continue
		}

		if err := h.loop.Post(func() { h.peer.Receive(data) }); err != nil {
			return
		}
	}
}

func (h *Handler) drop(reason string) {
	if h.metrics != nil {
		h.metrics.RecordBridgeDropped(reason)
	}
}

// transport queues frames for the connection's writer goroutine so the
// bridge loop never blocks on the network
type transport struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
	outbox       chan []byte
	done         chan struct{}

	mu       sync.Mutex
	closed   bool
	stopOnce sync.Once
}

func newTransport(conn *websocket.Conn, size int, writeTimeout time.Duration) *transport {
	return &transport{
		conn:         conn,
		writeTimeout: writeTimeout,
		outbox:       make(chan []byte, size),
		done:         make(chan struct{}),
	}
}

// Send implements bridge.Transport
func (t *transport) Send(frame []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return websocket.ErrCloseSent
	}
	select {
	case t.outbox <- frame:
		return nil
	default:
		return ErrOutboxFull
	}
}

func (t *transport) writePump(logger *zap.Logger) {
	for {
		select {
		case frame := <-t.outbox:
			t.conn.SetWriteDeadline(time.Now().Add(t.writeTimeout))
			if err := t.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				logger.Warn("WebSocket write error", zap.Error(err))
				t.conn.Close()
				return
			}
		case <-t.done:
			return
		}
	}
}

func (t *transport) close() {
	t.stopOnce.Do(func() {
		t.mu.Lock()
		t.closed = true
		t.mu.Unlock()
		close(t.done)
	})
}

func (t *transport) closeWith(code int, reason string) {
	t.close()
	msg := websocket.FormatCloseMessage(code, reason)
	_ = t.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(t.writeTimeout))
}
