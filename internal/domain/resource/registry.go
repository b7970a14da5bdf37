package resource

import (
	"errors"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/bookview/internal/domain/book"
	"github.com/GriffinCanCode/bookview/internal/shared/paths"
)

var (
	// ErrNotFound covers unresolvable names, missing files and directories
	ErrNotFound = errors.New("resource not found")

	// ErrUnreadable is returned for I/O failures on a resolved file. The
	// cause is logged, never attached.
	ErrUnreadable = errors.New("resource unreadable")
)

// Resource is the content of one book file
type Resource struct {
	Name string
	MIME string
	Body []byte
}

// Registry serves files from one book snapshot
type Registry struct {
	book   *book.Context
	logger *zap.Logger
}

// NewRegistry creates a registry bound to ctx
func NewRegistry(ctx *book.Context, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{book: ctx, logger: logger}
}

// Book returns the snapshot the registry is bound to
func (r *Registry) Book() *book.Context {
	return r.book
}

// Resolve maps name to a canonical path inside the book root. It fails for
// traversal, absolute names, symlink escapes and missing targets.
func (r *Registry) Resolve(name string) (string, bool) {
	path, err := paths.Resolve(r.book.Root(), name)
	if err != nil {
		switch {
		case errors.Is(err, paths.ErrEscapesRoot):
			r.logger.Warn("Rejected resource outside book root", zap.String("name", name))
		case errors.Is(err, fs.ErrNotExist), errors.Is(err, paths.ErrInvalidName):
		default:
			r.logger.Error("Failed to resolve book resource", zap.String("name", name), zap.Error(err))
		}
		return "", false
	}
	return path, true
}

// Read resolves name and returns its bytes with a normalized content type
func (r *Registry) Read(name string) (Resource, error) {
	path, ok := r.Resolve(name)
	if !ok {
		return Resource{}, ErrNotFound
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Resource{}, ErrNotFound
		}
		r.logger.Error("Failed to stat book resource", zap.String("name", name), zap.Error(err))
		return Resource{}, ErrUnreadable
	}
	if info.IsDir() {
		return Resource{}, ErrNotFound
	}

	body, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Resource{}, ErrNotFound
		}
		r.logger.Error("Failed to read book resource", zap.String("name", name), zap.Error(err))
		return Resource{}, ErrUnreadable
	}

	advertised := ""
	if entry, ok := r.book.Manifest().Lookup(name); ok {
		advertised = entry.MIME
	}

	return Resource{
		Name: name,
		MIME: NormalizeMIME(GuessMIME(name, advertised, body)),
		Body: body,
	}, nil
}
