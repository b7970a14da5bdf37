package content

import (
	"errors"
	"net/url"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/bookview/internal/domain/assets"
	"github.com/GriffinCanCode/bookview/internal/domain/book"
	"github.com/GriffinCanCode/bookview/internal/domain/resource"
	"github.com/GriffinCanCode/bookview/internal/infrastructure/monitoring"
)

var (
	ErrMethodNotAllowed     = errors.New("method not allowed")
	ErrHostOrSchemeMismatch = errors.New("host or scheme mismatch")
	ErrNotFound             = errors.New("not found")
	ErrReadFailure          = errors.New("read failure")
)

// Failure is the only error detail that crosses the boundary
type Failure int

const (
	FailureNone Failure = iota
	FailureMethodNotAllowed
	FailureNotFound
	FailureRequestFailed
)

func (f Failure) String() string {
	switch f {
	case FailureNone:
		return "ok"
	case FailureMethodNotAllowed:
		return "method_not_allowed"
	case FailureNotFound:
		return "not_found"
	case FailureRequestFailed:
		return "request_failed"
	default:
		return "unknown"
	}
}

// Request is one inbound resource request. Path is still percent-encoded.
type Request struct {
	Method string
	Scheme string
	Host   string
	Path   string
}

// Reply carries a payload, or a non-zero Failure and nothing else
type Reply struct {
	MIME    string
	Body    []byte
	Failure Failure
}

// OK reports whether the reply carries a payload
func (r Reply) OK() bool {
	return r.Failure == FailureNone
}

// Shell supplies the shell document
type Shell interface {
	Bytes() ([]byte, error)
}

// Assets is the auxiliary asset root
type Assets interface {
	Manifest() ([]byte, error)
	Read(name string) (assets.Asset, error)
}

// Options configures a Server
type Options struct {
	Scheme  string
	Host    string
	Session *book.Session
	Shell   Shell
	Assets  Assets
	Logger  *zap.Logger
	Metrics *monitoring.Metrics
}

type route struct {
	prefix string
	exact  bool
	label  string
	serve  func(s *Server, name string) (Reply, error)
}

// Server validates, routes and replies to resource requests
type Server struct {
	scheme  string
	host    string
	session *book.Session
	shell   Shell
	assets  Assets
	logger  *zap.Logger
	metrics *monitoring.Metrics
	routes  []route
}

// NewServer creates a content server
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	session := opts.Session
	if session == nil {
		session = book.NewSession()
	}

	routes := []route{
		{prefix: "", exact: true, label: "shell", serve: (*Server).serveShell},
		{prefix: "manifest", exact: true, label: "manifest", serve: (*Server).serveManifest},
		{prefix: "book/", label: "book", serve: (*Server).serveBook},
		{prefix: "aux/", label: "aux", serve: (*Server).serveAux},
	}
	sort.SliceStable(routes, func(i, j int) bool {
		return len(routes[i].prefix) > len(routes[j].prefix)
	})

	return &Server{
		scheme:  strings.ToLower(opts.Scheme),
		host:    strings.ToLower(opts.Host),
		session: session,
		shell:   opts.Shell,
		assets:  opts.Assets,
		logger:  logger,
		metrics: opts.Metrics,
		routes:  routes,
	}
}

// Session returns the book session the server reads from
func (s *Server) Session() *book.Session {
	return s.session
}

// BaseURL returns scheme://host
func (s *Server) BaseURL() string {
	return s.scheme + "://" + s.host
}

// Matches reports whether scheme and host name the private origin
func (s *Server) Matches(scheme, host string) bool {
	return strings.EqualFold(scheme, s.scheme) && strings.EqualFold(host, s.host)
}

// Serve produces exactly one reply for req
func (s *Server) Serve(req Request) Reply {
	r, name, err := s.match(req)
	label := "unmatched"
	if r != nil {
		label = r.label
	}
	timer := monitoring.NewTimer(s.metrics, label)

	var reply Reply
	if err == nil {
		reply, err = r.serve(s, name)
	}
	if err != nil {
		reply = Reply{Failure: s.classify(req, err)}
	}

	timer.Stop(reply.Failure.String(), len(reply.Body))
	return reply
}

// match validates req and picks its route
func (s *Server) match(req Request) (*route, string, error) {
	if req.Method != "GET" {
		return nil, "", ErrMethodNotAllowed
	}
	if !s.Matches(req.Scheme, req.Host) {
		return nil, "", ErrHostOrSchemeMismatch
	}

	decoded, err := url.PathUnescape(req.Path)
	if err != nil {
		return nil, "", ErrNotFound
	}
	decoded = strings.TrimPrefix(decoded, "/")

	for i := range s.routes {
		r := &s.routes[i]
		if r.exact {
			if decoded == r.prefix {
				return r, "", nil
			}
			continue
		}
		if strings.HasPrefix(decoded, r.prefix) {
			return r, decoded[len(r.prefix):], nil
		}
	}
	return nil, "", ErrNotFound
}

func (s *Server) classify(req Request, err error) Failure {
	switch {
	case errors.Is(err, ErrMethodNotAllowed):
		return FailureMethodNotAllowed
	case errors.Is(err, ErrHostOrSchemeMismatch):
		s.logger.Debug("Rejected request for foreign origin",
			zap.String("scheme", req.Scheme), zap.String("host", req.Host))
		return FailureNotFound
	case errors.Is(err, ErrNotFound):
		return FailureNotFound
	default:
		return FailureRequestFailed
	}
}

func (s *Server) serveShell(string) (Reply, error) {
	if s.shell == nil {
		return Reply{}, ErrNotFound
	}
	body, err := s.shell.Bytes()
	if err != nil {
		s.logger.Error("Failed to build shell document", zap.Error(err))
		return Reply{}, ErrReadFailure
	}
	return Reply{MIME: "text/html", Body: body}, nil
}

func (s *Server) serveManifest(string) (Reply, error) {
	ctx := s.session.Current()
	if ctx == nil {
		return Reply{}, ErrNotFound
	}

	manifest, metadata := ctx.RawManifest(), ctx.RawMetadata()
	body := make([]byte, 0, len(manifest)+len(metadata)+3)
	body = append(body, '[')
	body = append(body, manifest...)
	body = append(body, ',')
	body = append(body, metadata...)
	body = append(body, ']')

	return Reply{MIME: ctx.ManifestMIME(), Body: body}, nil
}

func (s *Server) serveBook(name string) (Reply, error) {
	ctx := s.session.Current()
	if ctx == nil {
		return Reply{}, ErrNotFound
	}

	res, err := resource.NewRegistry(ctx, s.logger).Read(name)
	switch {
	case err == nil:
		return Reply{MIME: res.MIME, Body: res.Body}, nil
	case errors.Is(err, resource.ErrNotFound):
		return Reply{}, ErrNotFound
	default:
		return Reply{}, ErrReadFailure
	}
}

func (s *Server) serveAux(name string) (Reply, error) {
	if s.assets == nil {
		return Reply{}, ErrNotFound
	}

	if name == assets.ManifestName {
		body, err := s.assets.Manifest()
		if err != nil {
			return Reply{}, ErrReadFailure
		}
		return Reply{MIME: "application/json", Body: body}, nil
	}

	asset, err := s.assets.Read(name)
	switch {
	case err == nil:
		mimeType := resource.NormalizeMIME(resource.GuessMIME(name, "", asset.Body))
		return Reply{MIME: mimeType, Body: asset.Body}, nil
	case errors.Is(err, assets.ErrNotFound):
		return Reply{}, ErrNotFound
	default:
		s.logger.Error("Failed to serve asset", zap.String("name", name), zap.Error(err))
		return Reply{}, ErrReadFailure
	}
}
