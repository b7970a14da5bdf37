package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/bytedance/sonic"
	"github.com/charlievieth/fastwalk"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/bookview/internal/shared/paths"
	"github.com/GriffinCanCode/bookview/internal/shared/utils"
)

// ManifestName is the logical name the asset manifest is served under
const ManifestName = "manifest.json"

var (
	// ErrNotFound covers names outside the root and missing files
	ErrNotFound = errors.New("asset not found")

	// ErrUnreadable is returned for I/O failures on a contained asset
	ErrUnreadable = errors.New("asset unreadable")
)

// Options configures a Root
type Options struct {
	// PatchedAsset is the one name whose content goes through PatchLoader
	PatchedAsset string
	// BaseURL is where the loader finds its siblings, e.g. bookview://internal.invalid/aux
	BaseURL string
	// Exclude lists doublestar globs, relative to the root, left out of the manifest
	Exclude []string
	Logger  *zap.Logger
}

// Asset is the content of one auxiliary file
type Asset struct {
	Name    string
	Body    []byte
	Patched bool
}

// Root is a static asset directory. The manifest is built on first use and
// kept for the life of the process.
type Root struct {
	dir    string
	opts   Options
	hasher *utils.Hasher
	logger *zap.Logger

	manifestOnce sync.Once
	manifest     []byte
	manifestErr  error
}

// NewRoot opens dir as an asset root
func NewRoot(dir string, opts Options) (*Root, error) {
	canonical, err := paths.Canonical(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize asset root: %w", err)
	}
	info, err := os.Stat(canonical)
	if err != nil {
		return nil, fmt.Errorf("failed to stat asset root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("asset root %s is not a directory", canonical)
	}

	for _, pattern := range opts.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Root{
		dir:    canonical,
		opts:   opts,
		hasher: utils.DefaultHasher(),
		logger: logger,
	}, nil
}

// Dir returns the canonical root directory
func (r *Root) Dir() string {
	return r.dir
}

// Manifest returns the JSON map of relative path to BLAKE3 digest. It is
// computed once; later changes to the directory are not reflected.
func (r *Root) Manifest() ([]byte, error) {
	r.manifestOnce.Do(func() {
		r.manifest, r.manifestErr = r.buildManifest()
		if r.manifestErr != nil {
			r.logger.Error("Failed to build asset manifest", zap.String("root", r.dir), zap.Error(r.manifestErr))
			return
		}
		r.logger.Debug("Built asset manifest", zap.String("root", r.dir), zap.Int("bytes", len(r.manifest)))
	})
	return r.manifest, r.manifestErr
}

func (r *Root) buildManifest() ([]byte, error) {
	var (
		mu      sync.Mutex
		digests = make(map[string]string)
	)

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, r.dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := paths.ToSlashRel(r.dir, p)
		if err != nil {
			return err
		}
		if r.excluded(rel) {
			return nil
		}

		sum, err := r.hasher.HashFile(p)
		if err != nil {
			return err
		}

		// Callbacks run concurrently
		mu.Lock()
		digests[rel] = sum
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk asset root: %w", err)
	}

	// Map keys are emitted sorted, so the output is deterministic
	data, err := sonic.ConfigStd.Marshal(digests)
	if err != nil {
		return nil, fmt.Errorf("failed to encode asset manifest: %w", err)
	}
	return data, nil
}

func (r *Root) excluded(rel string) bool {
	for _, pattern := range r.opts.Exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// Read returns the asset for name. Names that are not contained in the root
// are ErrNotFound, as are directories.
func (r *Root) Read(name string) (Asset, error) {
	path, err := paths.Resolve(r.dir, name)
	if err != nil {
		switch {
		case errors.Is(err, paths.ErrEscapesRoot):
			r.logger.Warn("Rejected asset outside root", zap.String("name", name))
		case errors.Is(err, fs.ErrNotExist), errors.Is(err, paths.ErrInvalidName):
		default:
			r.logger.Error("Failed to resolve asset", zap.String("name", name), zap.Error(err))
		}
		return Asset{}, ErrNotFound
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Asset{}, ErrNotFound
		}
		r.logger.Error("Failed to stat asset", zap.String("name", name), zap.Error(err))
		return Asset{}, ErrUnreadable
	}
	if info.IsDir() {
		return Asset{}, ErrNotFound
	}

	body, err := os.ReadFile(path)
	if err != nil {
		r.logger.Error("Failed to read asset", zap.String("name", name), zap.Error(err))
		return Asset{}, ErrUnreadable
	}

	if r.isPatched(name) {
		return Asset{Name: name, Body: PatchLoader(body, r.opts.BaseURL), Patched: true}, nil
	}
	return Asset{Name: name, Body: body}, nil
}

func (r *Root) isPatched(name string) bool {
	if r.opts.PatchedAsset == "" {
		return false
	}
	return filepath.ToSlash(filepath.Clean(filepath.FromSlash(name))) == r.opts.PatchedAsset
}
