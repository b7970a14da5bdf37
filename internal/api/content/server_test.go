package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/bookview/internal/domain/assets"
	"github.com/GriffinCanCode/bookview/internal/domain/book"
	"github.com/GriffinCanCode/bookview/internal/domain/shell"
	"github.com/GriffinCanCode/bookview/internal/infrastructure/monitoring"
)

const (
	testScheme = "bookview"
	testHost   = "internal.invalid"

	// Delimiter characters inside the blobs must survive untouched
	testManifest = `{"files": {"chapter1.html": {"mimetype": "text/html", "size": 12}, "font1.otf": {"mimetype": "application/vnd.ms-opentype", "size": 4}}, "note": "a,b]["}`
	testMetadata = `{"title": "[x], {y}",  "tags": [ ]}`
)

var fontBytes = []byte{0x4f, 0x54, 0x54, 0x4f}

type fixture struct {
	server    *Server
	session   *book.Session
	workspace string
	bookRoot  string
}

func write(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	workspace := t.TempDir()
	bookRoot := filepath.Join(workspace, "books", "one")
	write(t, filepath.Join(bookRoot, "chapter1.html"), []byte("<p>one</p>\n\n"))
	write(t, filepath.Join(bookRoot, "font1.otf"), fontBytes)
	write(t, filepath.Join(workspace, "secrets.txt"), []byte("secret"))

	auxDir := filepath.Join(workspace, "aux")
	write(t, filepath.Join(auxDir, "MathJax.js"), []byte("load();\n//# sourceMappingURL=MathJax.js.map\n"))
	write(t, filepath.Join(auxDir, "viewer.css"), []byte("body{}"))

	ctx, err := book.Load(bookRoot, []byte(testManifest), []byte(testMetadata), "")
	require.NoError(t, err)
	session := book.NewSession()
	session.Replace(ctx)

	aux, err := assets.NewRoot(auxDir, assets.Options{
		PatchedAsset: "MathJax.js",
		BaseURL:      testScheme + "://" + testHost + "/aux",
	})
	require.NoError(t, err)

	server := NewServer(Options{
		Scheme:  testScheme,
		Host:    testHost,
		Session: session,
		Shell: shell.NewDocument(shell.Source{
			HTML:   []byte("<html><head></head><body></body></html>"),
			Script: []byte("boot(__TRANSLATIONS_DATA__);"),
		}),
		Assets:  aux,
		Logger:  zap.NewNop(),
		Metrics: monitoring.NewMetrics(),
	})

	return &fixture{server: server, session: session, workspace: workspace, bookRoot: bookRoot}
}

func get(path string) Request {
	return Request{Method: "GET", Scheme: testScheme, Host: testHost, Path: path}
}

func TestServeShell(t *testing.T) {
	f := newFixture(t)

	for _, path := range []string{"", "/"} {
		reply := f.server.Serve(get(path))
		require.True(t, reply.OK(), path)
		assert.Equal(t, "text/html", reply.MIME)
		assert.Contains(t, string(reply.Body), "boot(null);")
	}
}

func TestServeManifestIsByteIdentical(t *testing.T) {
	f := newFixture(t)

	reply := f.server.Serve(get("/manifest"))
	require.True(t, reply.OK())
	assert.Equal(t, "["+testManifest+","+testMetadata+"]", string(reply.Body))
	assert.Equal(t, book.ManifestMIME, reply.MIME)
}

func TestServeManifestUsesStoredMIME(t *testing.T) {
	f := newFixture(t)
	ctx, err := book.Load(f.bookRoot, []byte(`[]`), []byte(`null`), "application/x-custom+json")
	require.NoError(t, err)
	f.session.Replace(ctx)

	reply := f.server.Serve(get("/manifest"))
	require.True(t, reply.OK())
	assert.Equal(t, "[[],null]", string(reply.Body))
	assert.Equal(t, "application/x-custom+json", reply.MIME)
}

func TestServeManifestVerbatim(t *testing.T) {
	f := newFixture(t)

	for _, manifest := range []string{`"a,]"`, `{"files":{"a":"x"}}`, `{"files":{"a":{"size":1.5}}}`, `{ "files" : {} }`} {
		t.Run(manifest, func(t *testing.T) {
			ctx, err := book.Load(f.bookRoot, []byte(manifest), []byte(`{}`), "")
			require.NoError(t, err)
			f.session.Replace(ctx)

			reply := f.server.Serve(get("/manifest"))
			require.True(t, reply.OK())
			assert.Equal(t, "["+manifest+",{}]", string(reply.Body))
		})
	}
}

func TestServeBook(t *testing.T) {
	f := newFixture(t)

	reply := f.server.Serve(get("/book/chapter1.html"))
	require.True(t, reply.OK())
	assert.Equal(t, "text/html", reply.MIME)
	assert.Equal(t, "<p>one</p>\n\n", string(reply.Body))

	reply = f.server.Serve(get("/book/font1.otf"))
	require.True(t, reply.OK())
	assert.Equal(t, "application/x-font-ttf", reply.MIME)
	assert.Equal(t, fontBytes, reply.Body)

	// Names are percent-decoded before resolution
	reply = f.server.Serve(get("/book/chapter%31.html"))
	assert.True(t, reply.OK())
}

func TestServeBookContainment(t *testing.T) {
	f := newFixture(t)

	for _, path := range []string{
		"/book/../../secrets.txt",
		"/book/text/../chapter1.html",
		"/book/..%2F..%2Fsecrets.txt",
		"/book/%2E%2E/%2E%2E/secrets.txt",
		"/book/" + filepath.Join(f.workspace, "secrets.txt"),
		"/book/chapter1.html%00",
		"/book/",
		"/book/missing.html",
		"/book/%zz",
	} {
		t.Run(path, func(t *testing.T) {
			reply := f.server.Serve(get(path))
			assert.Equal(t, FailureNotFound, reply.Failure)
			assert.Empty(t, reply.Body)
			assert.Empty(t, reply.MIME)
		})
	}
}

func TestServeAux(t *testing.T) {
	f := newFixture(t)

	reply := f.server.Serve(get("/aux/viewer.css"))
	require.True(t, reply.OK())
	assert.Equal(t, "text/css", reply.MIME)
	assert.Equal(t, "body{}", string(reply.Body))

	reply = f.server.Serve(get("/aux/MathJax.js"))
	require.True(t, reply.OK())
	assert.Contains(t, string(reply.Body), `window.MathJax.root = "bookview://internal.invalid/aux";`)
	assert.NotContains(t, string(reply.Body), "sourceMappingURL")
}

func TestServeAuxManifestIsStable(t *testing.T) {
	f := newFixture(t)

	first := f.server.Serve(get("/aux/manifest.json"))
	require.True(t, first.OK())
	assert.Equal(t, "application/json", first.MIME)
	assert.Contains(t, string(first.Body), `"viewer.css"`)

	// Served on every access, not only the first
	second := f.server.Serve(get("/aux/manifest.json"))
	require.True(t, second.OK())
	assert.Equal(t, first.Body, second.Body)
}

func TestServeAuxContainment(t *testing.T) {
	f := newFixture(t)

	for _, path := range []string{"/aux/../secrets.txt", "/aux/../books/one/chapter1.html", "/aux/missing.js", "/aux/"} {
		reply := f.server.Serve(get(path))
		assert.Equal(t, FailureNotFound, reply.Failure, path)
	}
}

func TestServeRouting(t *testing.T) {
	f := newFixture(t)

	for _, path := range []string{"/manifest/extra", "/manifests", "/books/chapter1.html", "/book", "/aux", "/other"} {
		reply := f.server.Serve(get(path))
		assert.Equal(t, FailureNotFound, reply.Failure, path)
	}
}

func TestServeValidation(t *testing.T) {
	f := newFixture(t)

	for _, method := range []string{"POST", "PUT", "HEAD", "DELETE"} {
		req := get("/book/chapter1.html")
		req.Method = method
		assert.Equal(t, FailureMethodNotAllowed, f.server.Serve(req).Failure, method)
	}

	wrongHost := get("/book/chapter1.html")
	wrongHost.Host = "example.com"
	assert.Equal(t, FailureNotFound, f.server.Serve(wrongHost).Failure)

	wrongScheme := get("/book/chapter1.html")
	wrongScheme.Scheme = "https"
	assert.Equal(t, FailureNotFound, f.server.Serve(wrongScheme).Failure)

	upper := get("/book/chapter1.html")
	upper.Host = "INTERNAL.invalid"
	assert.True(t, f.server.Serve(upper).OK())
}

func TestServeWithoutBook(t *testing.T) {
	f := newFixture(t)
	f.session.Replace(nil)

	assert.Equal(t, FailureNotFound, f.server.Serve(get("/manifest")).Failure)
	assert.Equal(t, FailureNotFound, f.server.Serve(get("/book/chapter1.html")).Failure)
	assert.True(t, f.server.Serve(get("/")).OK())
}

func TestServeFollowsBookSwap(t *testing.T) {
	f := newFixture(t)

	other := filepath.Join(f.workspace, "books", "two")
	write(t, filepath.Join(other, "chapter1.html"), []byte("<p>two</p>"))
	ctx, err := book.Load(other, []byte(`{"files": {}}`), []byte(`{}`), "")
	require.NoError(t, err)
	f.session.Replace(ctx)

	reply := f.server.Serve(get("/book/chapter1.html"))
	require.True(t, reply.OK())
	assert.Equal(t, "<p>two</p>", string(reply.Body))
	assert.Equal(t, FailureNotFound, f.server.Serve(get("/book/font1.otf")).Failure)
}

func TestServeUnreadable(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	f := newFixture(t)
	write(t, filepath.Join(f.bookRoot, "locked.html"), []byte("x"))
	require.NoError(t, os.Chmod(filepath.Join(f.bookRoot, "locked.html"), 0o000))

	reply := f.server.Serve(get("/book/locked.html"))
	assert.Equal(t, FailureRequestFailed, reply.Failure)
	assert.Empty(t, reply.Body)
}

func TestFailureString(t *testing.T) {
	assert.Equal(t, "ok", FailureNone.String())
	assert.Equal(t, "not_found", FailureNotFound.String())
	assert.Equal(t, "method_not_allowed", FailureMethodNotAllowed.String())
	assert.Equal(t, "request_failed", FailureRequestFailed.String())
}
