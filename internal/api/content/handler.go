package content

import (
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler adapts the server to gin. Requests in absolute form carry the
// private scheme and host in their URL; origin-form requests fall back to
// the Host header and http.
func Handler(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		reply := s.Serve(RequestFromHTTP(c.Request))
		WriteReply(c, reply)
	}
}

// RequestFromHTTP extracts a Request from r
func RequestFromHTTP(r *http.Request) Request {
	scheme, host := r.URL.Scheme, r.URL.Host
	if host == "" {
		host = r.Host
	}
	if scheme == "" {
		scheme = "http"
	}
	return Request{
		Method: r.Method,
		Scheme: scheme,
		Host:   stripPort(host),
		Path:   r.URL.EscapedPath(),
	}
}

// WriteReply renders reply. Failures carry an empty body.
func WriteReply(c *gin.Context, reply Reply) {
	switch reply.Failure {
	case FailureNone:
		c.Header("Cache-Control", "no-store")
		c.Data(http.StatusOK, reply.MIME, reply.Body)
	case FailureMethodNotAllowed:
		c.AbortWithStatus(http.StatusMethodNotAllowed)
	case FailureNotFound:
		c.AbortWithStatus(http.StatusNotFound)
	default:
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}

func stripPort(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}
