// Package paths provides the containment checks that keep logical names inside
// a sandboxed root.
//
// A logical name is a requester-supplied relative path. It is resolved by
// joining it with a canonical root, evaluating symlinks, and verifying that
// the canonical result still lies inside that root. The check is made on the
// canonical path, never on the raw string, so ".." segments, absolute
// overrides and symlinks pointing out of the root are all rejected.
//
// # Usage
//
//	root, err := paths.Canonical("/books/current")
//	full, err := paths.Resolve(root, "text/chapter1.html")
//	if errors.Is(err, paths.ErrEscapesRoot) {
//	    // log locally, report "not found" to the requester
//	}
package paths
