package viewer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNavigate(t *testing.T) {
	host := &recordingHost{}
	v := New(Options{Scheme: "bookview", Host: host, Logger: zap.NewNop()})

	tests := []struct {
		name  string
		req   NavigationRequest
		allow bool
	}{
		{"reload", NavigationRequest{URL: "https://example.com", Type: NavigationReload}, true},
		{"back forward", NavigationRequest{URL: "file:///etc/passwd", Type: NavigationBackForward}, true},
		{"private scheme", NavigationRequest{URL: "bookview://internal.invalid/#bookpos=x", Type: NavigationLink}, true},
		{"private scheme upper", NavigationRequest{URL: "BOOKVIEW://internal.invalid/", Type: NavigationTyped}, true},
		{"data", NavigationRequest{URL: "data:text/html,hi", Type: NavigationLink}, true},
		{"http", NavigationRequest{URL: "http://example.com/a", Type: NavigationLink}, false},
		{"https", NavigationRequest{URL: "https://example.com/b", Type: NavigationLink}, false},
		{"file", NavigationRequest{URL: "file:///etc/passwd", Type: NavigationLink}, false},
		{"javascript", NavigationRequest{URL: "javascript:alert(1)", Type: NavigationOther}, false},
		{"garbage", NavigationRequest{URL: "%zz://x", Type: NavigationLink}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allow, v.Navigate(tt.req))
		})
	}

	assert.Equal(t, []string{"http://example.com/a", "https://example.com/b"}, host.external)
}

func TestURLChanged(t *testing.T) {
	host := &recordingHost{}
	v := New(Options{Scheme: "bookview", Host: host})

	v.URLChanged("bookview://internal.invalid/#bookpos=epubcfi(/6/2!/4)")
	v.URLChanged("bookview://internal.invalid/#bookpos=")
	v.URLChanged("bookview://internal.invalid/#other")
	v.URLChanged("bookview://internal.invalid/")

	assert.Equal(t, []string{"epubcfi(/6/2!/4)"}, host.positions)
	assert.Equal(t, "epubcfi(/6/2!/4)", v.CurrentCFI())
}

func TestConsoleMessage(t *testing.T) {
	host := &recordingHost{}
	v := New(Options{Host: host})

	v.ConsoleMessage(ConsoleInfo, "loaded", 1, "userscript:viewer.js")
	v.ConsoleMessage(ConsoleWarning, "slow", 2, "userscript:viewer.js")
	v.ConsoleMessage(ConsoleError, "page error", 3, "bookview://internal.invalid/book/x.html")
	v.ConsoleMessage(ConsoleError, "boom", 42, "userscript:viewer.js")

	assert.Equal(t, []string{"Error in viewer: userscript:viewer.js:42: boom"}, host.errors)
	assert.Equal(t, "INFO", ConsoleInfo.String())
	assert.Equal(t, "WARNING", ConsoleWarning.String())
	assert.Equal(t, "ERROR", ConsoleError.String())
}

func TestRenderProcessDiedNotifiesOnce(t *testing.T) {
	host := &recordingHost{}
	v := New(Options{Host: host})

	v.RenderProcessDied("crashed", 11)
	v.RenderProcessDied("crashed", 11)
	v.RenderProcessDied("killed", 9)

	assert.Len(t, host.errors, 1)
	assert.Contains(t, host.errors[0], "exit code 11")
}
