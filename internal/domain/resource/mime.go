package resource

import (
	"mime"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// CanonicalFontMIME is what legacy font types are rewritten to
const CanonicalFontMIME = "application/x-font-ttf"

// Legacy font types the rendering surface warns about
var fontOverrides = map[string]string{
	"application/vnd.ms-opentype": CanonicalFontMIME,
	"application/x-font-truetype": CanonicalFontMIME,
	"application/font-sfnt":       CanonicalFontMIME,
}

// Types book files commonly carry that system tables often lack or disagree on
var bookTypes = map[string]string{
	".html":  "text/html",
	".htm":   "text/html",
	".xhtml": "application/xhtml+xml",
	".css":   "text/css",
	".js":    "application/javascript",
	".svg":   "image/svg+xml",
	".png":   "image/png",
	".jpg":   "image/jpeg",
	".jpeg":  "image/jpeg",
	".gif":   "image/gif",
	".webp":  "image/webp",
	".otf":   "application/vnd.ms-opentype",
	".ttf":   "application/x-font-truetype",
	".woff":  "font/woff",
	".woff2": "font/woff2",
	".ncx":   "application/x-dtbncx+xml",
	".opf":   "application/oebps-package+xml",
	".json":  "application/json",
	".txt":   "text/plain",
}

// NormalizeMIME rewrites legacy font types to the canonical truetype type.
// Every other type passes through unchanged.
func NormalizeMIME(mimeType string) string {
	if canonical, ok := fontOverrides[mimeType]; ok {
		return canonical
	}
	return mimeType
}

// GuessMIME picks a content type for name. The advertised type wins, then
// the extension, then content sniffing.
func GuessMIME(name, advertised string, body []byte) string {
	if advertised != "" {
		return advertised
	}

	ext := strings.ToLower(path.Ext(name))
	if t, ok := bookTypes[ext]; ok {
		return t
	}
	if ext != "" {
		if t := mime.TypeByExtension(ext); t != "" {
			return t
		}
	}

	return mimetype.Detect(body).String()
}
