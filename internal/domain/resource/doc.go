// Package resource resolves logical names against an open book and reads
// the files they name.
//
// Every name is joined with the book root, canonicalized and checked to lie
// within the root before any read happens. Reads are synchronous blocking
// file I/O executed on the caller's goroutine; on slow storage a read can
// stall the request it serves.
package resource
