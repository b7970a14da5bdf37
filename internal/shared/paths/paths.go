package paths

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	// ErrEscapesRoot is returned when a name resolves outside its root.
	ErrEscapesRoot = errors.New("path escapes root")

	// ErrInvalidName is returned for names that can never be resolved
	// (empty, absolute, or containing NUL bytes).
	ErrInvalidName = errors.New("invalid logical name")
)

// Canonical returns the absolute, symlink-free form of path.
func Canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// Within reports whether path lies inside root. Both must be absolute and
// clean. The root itself counts as inside.
func Within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	if filepath.IsAbs(rel) || rel == ".." {
		return false
	}
	return !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// ValidateName rejects logical names that must never reach the filesystem.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidName)
	}
	if strings.ContainsRune(name, 0) {
		return fmt.Errorf("%w: contains NUL", ErrInvalidName)
	}
	if strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) ||
		filepath.IsAbs(name) || filepath.VolumeName(name) != "" {
		return fmt.Errorf("%w: absolute path %q", ErrInvalidName, name)
	}
	return nil
}

// Resolve maps a slash-separated logical name to a canonical path inside
// root, which must itself be canonical. Names with any ".." segment are
// rejected even when they would stay inside root. Missing targets surface as the
// underlying fs error so callers can match them with errors.Is(err, fs.ErrNotExist).
func Resolve(root, name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}

	if hasParentSegment(name) {
		return "", fmt.Errorf("%w: %q has a parent segment", ErrEscapesRoot, name)
	}

	joined := filepath.Join(root, filepath.FromSlash(name))
	if !Within(root, joined) {
		return "", fmt.Errorf("%w: %q", ErrEscapesRoot, name)
	}

	resolved, err := filepath.EvalSymlinks(joined)
	if err != nil {
		return "", err
	}

	// Symlinks inside the root may still point out of it
	if !Within(root, resolved) {
		return "", fmt.Errorf("%w: %q via symlink", ErrEscapesRoot, name)
	}

	return resolved, nil
}

// ToSlashRel returns path relative to root using forward slashes, the form
// logical names and manifests use.
func ToSlashRel(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// hasParentSegment reports whether any segment of name is "..", whichever
// separator it uses
func hasParentSegment(name string) bool {
	for _, seg := range strings.FieldsFunc(name, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == ".." {
			return true
		}
	}
	return false
}
