package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/bookview/internal/api/content"
	controlhttp "github.com/GriffinCanCode/bookview/internal/api/http"
	"github.com/GriffinCanCode/bookview/internal/api/middleware"
	"github.com/GriffinCanCode/bookview/internal/api/ws"
	"github.com/GriffinCanCode/bookview/internal/bridge"
	"github.com/GriffinCanCode/bookview/internal/domain/assets"
	"github.com/GriffinCanCode/bookview/internal/domain/book"
	"github.com/GriffinCanCode/bookview/internal/domain/session"
	"github.com/GriffinCanCode/bookview/internal/domain/shell"
	"github.com/GriffinCanCode/bookview/internal/domain/viewer"
	"github.com/GriffinCanCode/bookview/internal/infrastructure/config"
	"github.com/GriffinCanCode/bookview/internal/infrastructure/logging"
	"github.com/GriffinCanCode/bookview/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/bookview/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/bookview/internal/shared/id"
)

const (
	loopBacklog     = 256
	shutdownTimeout = 5 * time.Second
)

// Server wraps the loopback listener and its dependencies
type Server struct {
	config  *config.Config
	logger  *logging.Logger
	metrics *monitoring.Metrics
	tracer  *tracing.Tracer

	books   *book.Session
	prefs   *session.Store
	view    *viewer.View
	loop    *bridge.Loop
	token   id.Token
	content *content.Server

	contentHandler http.Handler
	control        *gin.Engine
}

// NewServer creates a server with a logger built from cfg
func NewServer(cfg *config.Config) (*Server, error) {
	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		return nil, err
	}
	return New(cfg, logger)
}

// New creates a server instance
func New(cfg *config.Config, logger *logging.Logger) (*Server, error) {
	logger.Info("Initializing bookview server",
		zap.String("addr", cfg.Server.Addr()),
		zap.String("scheme", cfg.Content.Scheme),
		zap.String("host", cfg.Content.Host),
	)

	metrics := monitoring.NewMetrics()

	prefs := session.NewMemory()
	if cfg.Session.PrefsPath != "" {
		store, err := session.Open(cfg.Session.PrefsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open preferences: %w", err)
		}
		prefs = store
	}

	origin := strings.ToLower(cfg.Content.Scheme + "://" + cfg.Content.Host)

	var docs content.Shell
	if cfg.Content.ShellPath != "" {
		paths := cfg.Content
		docs = shell.NewLazyDocument(func() (shell.Source, error) {
			return shell.FileSource(paths.ShellPath, paths.ScriptPath, paths.TranslationsPath)
		})
	}

	var aux content.Assets
	if cfg.Content.AssetsDir != "" {
		root, err := assets.NewRoot(cfg.Content.AssetsDir, assets.Options{
			PatchedAsset: cfg.Content.PatchedAsset,
			BaseURL:      origin + "/aux",
			Exclude:      cfg.Content.AssetsExclude,
			Logger:       logger.Component("assets"),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open assets: %w", err)
		}
		aux = root
	}

	books := book.NewSession()
	contentServer := content.NewServer(content.Options{
		Scheme:  cfg.Content.Scheme,
		Host:    cfg.Content.Host,
		Session: books,
		Shell:   docs,
		Assets:  aux,
		Logger:  logger.Component("content"),
		Metrics: metrics,
	})

	view := viewer.New(viewer.Options{
		Scheme:  cfg.Content.Scheme,
		Host:    viewer.LogHost{Logger: logger.Component("host")},
		Prefs:   prefs,
		Logger:  logger.Component("viewer"),
		Metrics: metrics,
	})
	loop := bridge.NewLoop(loopBacklog)
	token := id.NewToken()
	tracer := tracing.New(logger.Component("trace"))

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	contentEngine := gin.New()
	contentEngine.Use(gin.Recovery())
	contentEngine.Use(tracing.HTTPMiddleware(tracer))
	contentEngine.Use(logging.GinMiddleware(logger.Component("content")))
	contentEngine.NoRoute(content.Handler(contentServer))

	control := gin.New()
	control.Use(gin.Recovery())
	control.Use(tracing.HTTPMiddleware(tracer))
	control.Use(logging.GinMiddleware(logger.Component("http")))
	control.Use(monitoring.Middleware(metrics))
	control.Use(middleware.CORS(middleware.DefaultCORSConfig(origin)))
	control.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))

	handlers := controlhttp.NewHandlers(books, loop, view)
	wsHandler := ws.NewHandler(loop, view, token, ws.Options{
		EventsPerSecond: float64(cfg.Bridge.EventsPerSecond),
		EventsBurst:     cfg.Bridge.EventsBurst,
		WriteTimeout:    cfg.Bridge.WriteTimeout,
	}, logger.Component("bridge"), metrics)

	control.GET("/", handlers.Root)
	control.GET("/health", handlers.Health)
	control.GET("/metrics", gin.WrapH(metrics.Handler()))
	control.GET("/bridge", wsHandler.HandleConnection)

	logger.Info("Server initialized successfully")

	return &Server{
		config:         cfg,
		logger:         logger,
		metrics:        metrics,
		tracer:         tracer,
		books:          books,
		prefs:          prefs,
		view:           view,
		loop:           loop,
		token:          token,
		content:        contentServer,
		contentHandler: gzhttp.GzipHandler(contentEngine),
		control:        control,
	}, nil
}

// ServeHTTP sends requests naming the private scheme or host to the content
// engine and everything else to the control engine
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req := content.RequestFromHTTP(r)
	if strings.EqualFold(req.Scheme, s.config.Content.Scheme) || strings.EqualFold(req.Host, s.config.Content.Host) {
		s.contentHandler.ServeHTTP(w, r)
		return
	}
	s.control.ServeHTTP(w, r)
}

// Token returns the credential a peer must present on /bridge
func (s *Server) Token() id.Token {
	return s.token
}

// BridgeURL returns the path and query a peer connects to
func (s *Server) BridgeURL() string {
	return "/bridge?token=" + s.token.String()
}

// Metrics returns the server's metrics
func (s *Server) Metrics() *monitoring.Metrics {
	return s.metrics
}

// Books returns the active book session
func (s *Server) Books() *book.Session {
	return s.books
}

// Prefs returns the preference store
func (s *Server) Prefs() *session.Store {
	return s.prefs
}

// OpenBook makes the book at root current and queues it for the peer
func (s *Server) OpenBook(root, source string) error {
	ctx, err := book.Open(root, source)
	if err != nil {
		return fmt.Errorf("failed to open book: %w", err)
	}
	s.books.Replace(ctx)
	s.logger.Info("Book opened",
		zap.String("root", ctx.Root()),
		zap.Int("resources", len(ctx.Manifest().Resources)),
	)

	return s.loop.Post(func() {
		s.view.StartBookLoad(ctx, nil, nil)
	})
}

// Start runs the bridge loop until ctx ends and opens the configured book
func (s *Server) Start(ctx context.Context) error {
	go s.loop.Run(ctx)

	if dir := s.config.Content.BookDir; dir != "" {
		if err := s.OpenBook(dir, s.config.Content.BookSource); err != nil {
			return err
		}
	}
	return nil
}

// Run starts the server and serves until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              s.config.Server.Addr(),
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server",
			zap.String("addr", srv.Addr),
			zap.String("bridge", s.BridgeURL()),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown failed", zap.Error(err))
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

// Close drops outstanding callbacks and stops the bridge loop
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.loop.Do(ctx, s.view.Shutdown); err != nil && !errors.Is(err, bridge.ErrLoopStopped) {
		s.logger.Warn("Failed to shut down view", zap.Error(err))
	}
	s.loop.Stop()
	s.tracer.Close()

	_ = s.logger.Sync()
	return nil
}
