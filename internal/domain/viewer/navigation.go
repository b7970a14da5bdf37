package viewer

import (
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// NavigationType classifies a navigation request
type NavigationType int

const (
	NavigationLink NavigationType = iota
	NavigationTyped
	NavigationFormSubmitted
	NavigationBackForward
	NavigationReload
	NavigationRedirect
	NavigationOther
)

// NavigationRequest is a request by the surface to load a URL
type NavigationRequest struct {
	URL  string
	Type NavigationType
}

// PositionFragment prefixes the reading position in the URL fragment
const PositionFragment = "bookpos="

// Navigate decides whether the surface may load req in place. Web links are
// handed to the host and blocked.
func (v *View) Navigate(req NavigationRequest) bool {
	if req.Type == NavigationReload || req.Type == NavigationBackForward {
		return true
	}

	u, err := url.Parse(req.URL)
	if err != nil {
		v.logger.Warn("Blocking unparseable navigation", zap.String("url", req.URL), zap.Error(err))
		return false
	}

	switch strings.ToLower(u.Scheme) {
	case v.scheme, "data":
		return true
	case "http", "https":
		v.host.OpenExternal(req.URL)
		return false
	default:
		v.logger.Warn("Blocking navigation", zap.String("url", req.URL))
		return false
	}
}

// URLChanged tracks the reading position the surface writes into the URL
// fragment
func (v *View) URLChanged(rawURL string) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return
	}
	fragment := u.Fragment
	if !strings.HasPrefix(fragment, PositionFragment) {
		return
	}
	cfi := strings.TrimPrefix(fragment, PositionFragment)
	if cfi == "" {
		return
	}
	v.currentCFI = cfi
	v.host.PositionChanged(cfi)
}

// CurrentCFI returns the last position seen in the URL fragment
func (v *View) CurrentCFI() string {
	return v.currentCFI
}
