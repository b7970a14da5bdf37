// Package assets serves the read-only auxiliary asset root that sits outside
// any book. It owns the memoized asset manifest and the loader transform
// applied to the one patched asset.
package assets
