package book

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/bytedance/sonic"
	"github.com/tidwall/gjson"

	"github.com/GriffinCanCode/bookview/internal/shared/paths"
)

// Well-known files written into the book root by the conversion step
const (
	ManifestName = "calibre-book-manifest.json"
	MetadataName = "calibre-book-metadata.json"

	// ManifestMIME is the type the manifest is stored and served as
	ManifestMIME = "application/json"
)

// ErrMalformedManifest is returned when the manifest or metadata blob cannot be parsed
var ErrMalformedManifest = errors.New("malformed book manifest")

// Resource describes one file listed in the manifest
type Resource struct {
	Name string
	MIME string
	Size int64
}

// Manifest is the parsed form of the manifest blob
type Manifest struct {
	Resources []Resource
	Spine     []string
	TOC       json.RawMessage

	index map[string]int
}

// Lookup returns the manifest entry for name
func (m Manifest) Lookup(name string) (Resource, bool) {
	i, ok := m.index[name]
	if !ok {
		return Resource{}, false
	}
	return m.Resources[i], true
}

// Context is an immutable snapshot of one open book
type Context struct {
	root         string
	source       string
	manifest     Manifest
	metadata     interface{}
	rawManifest  []byte
	rawMetadata  []byte
	manifestMIME string
}

// Load builds a Context from an extracted book root and its two blobs.
// Parse failures wrap ErrMalformedManifest and produce no context at all.
func Load(root string, manifestRaw, metadataRaw []byte, manifestMIME string) (*Context, error) {
	if root == "" {
		return nil, fmt.Errorf("book root cannot be empty")
	}

	canonical, err := paths.Canonical(root)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize book root: %w", err)
	}
	info, err := os.Stat(canonical)
	if err != nil {
		return nil, fmt.Errorf("failed to stat book root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("book root %s is not a directory", canonical)
	}

	manifest, err := parseManifest(manifestRaw)
	if err != nil {
		return nil, err
	}

	var metadata interface{}
	if err := sonic.Unmarshal(metadataRaw, &metadata); err != nil {
		return nil, fmt.Errorf("%w: metadata: %v", ErrMalformedManifest, err)
	}

	if manifestMIME == "" {
		manifestMIME = ManifestMIME
	}

	return &Context{
		root:         canonical,
		manifest:     manifest,
		metadata:     metadata,
		rawManifest:  append([]byte(nil), manifestRaw...),
		rawMetadata:  append([]byte(nil), metadataRaw...),
		manifestMIME: manifestMIME,
	}, nil
}

// Open reads the manifest and metadata from the book root and loads them.
// source is the path of the original e-book file and is only reported back
// to the rendering surface.
func Open(root, source string) (*Context, error) {
	canonical, err := paths.Canonical(root)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize book root: %w", err)
	}

	manifestRaw, err := readBookFile(canonical, ManifestName)
	if err != nil {
		return nil, err
	}
	metadataRaw, err := readBookFile(canonical, MetadataName)
	if err != nil {
		return nil, err
	}

	ctx, err := Load(canonical, manifestRaw, metadataRaw, ManifestMIME)
	if err != nil {
		return nil, err
	}
	ctx.source = source
	return ctx, nil
}

func readBookFile(root, name string) ([]byte, error) {
	path, err := paths.Resolve(root, name)
	if err != nil {
		return nil, fmt.Errorf("failed to locate %s: %w", name, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

// parseManifest accepts any valid JSON. Resources, spine and toc are read
// from an object root when present; entries of other shapes are skipped.
func parseManifest(raw []byte) (Manifest, error) {
	if !gjson.ValidBytes(raw) {
		return Manifest{}, fmt.Errorf("%w: invalid JSON", ErrMalformedManifest)
	}

	m := Manifest{index: make(map[string]int)}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return m, nil
	}

	// Walk the object in document order
	root.Get("files").ForEach(func(key, file gjson.Result) bool {
		name := key.String()
		if !file.IsObject() {
			return true
		}
		if _, seen := m.index[name]; seen {
			return true
		}
		var size int64
		if s := file.Get("size"); s.Type == gjson.Number {
			size = int64(s.Float())
		}
		var mimeType string
		if mt := file.Get("mimetype"); mt.Type == gjson.String {
			mimeType = mt.String()
		}
		m.index[name] = len(m.Resources)
		m.Resources = append(m.Resources, Resource{Name: name, MIME: mimeType, Size: size})
		return true
	})

	root.Get("spine").ForEach(func(_, item gjson.Result) bool {
		if item.Type == gjson.String {
			m.Spine = append(m.Spine, item.String())
		}
		return true
	})

	if toc := root.Get("toc"); toc.Exists() {
		m.TOC = json.RawMessage(toc.Raw)
	}

	return m, nil
}

// Root returns the canonical absolute book root
func (c *Context) Root() string { return c.root }

// Source returns the path of the original e-book file
func (c *Context) Source() string { return c.source }

// Key identifies the book to the rendering surface
func (c *Context) Key() []string { return []string{c.root} }

// Manifest returns the parsed manifest. Callers must not modify it.
func (c *Context) Manifest() Manifest { return c.manifest }

// Metadata returns the parsed metadata value
func (c *Context) Metadata() interface{} { return c.metadata }

// RawManifest returns the stored manifest blob. Callers must not modify it.
func (c *Context) RawManifest() []byte { return c.rawManifest }

// RawMetadata returns the stored metadata blob. Callers must not modify it.
func (c *Context) RawMetadata() []byte { return c.rawMetadata }

// ManifestMIME returns the type the manifest blob was stored with
func (c *Context) ManifestMIME() string { return c.manifestMIME }

// Session owns the single active book. Swaps are atomic; a nil Current
// means no book is open.
type Session struct {
	current atomic.Pointer[Context]
}

// NewSession creates an empty session
func NewSession() *Session {
	return &Session{}
}

// Current returns the active book or nil
func (s *Session) Current() *Context {
	return s.current.Load()
}

// Replace makes ctx the active book and returns the previous one
func (s *Session) Replace(ctx *Context) *Context {
	return s.current.Swap(ctx)
}
