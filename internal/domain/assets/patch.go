package assets

import (
	"bytes"
	"strconv"
)

var sourceMapPrefix = []byte("//# sourceMappingURL=")

// PatchLoader adapts the math loader to the embedded environment. Source map
// references are dropped and the loader root is pinned to base ahead of the
// original code. The input is not modified.
func PatchLoader(raw []byte, base string) []byte {
	var out bytes.Buffer
	out.Grow(len(raw) + len(base) + 64)

	out.WriteString("window.MathJax = window.MathJax || {};\n")
	out.WriteString("window.MathJax.root = ")
	out.WriteString(strconv.Quote(base))
	out.WriteString(";\n")

	rest := raw
	for len(rest) > 0 {
		line := rest
		next := []byte(nil)
		if i := bytes.IndexByte(rest, '\n'); i >= 0 {
			line, next = rest[:i+1], rest[i+1:]
		}
		if !bytes.HasPrefix(bytes.TrimLeft(line, " \t"), sourceMapPrefix) {
			out.Write(line)
		}
		rest = next
	}

	return out.Bytes()
}
