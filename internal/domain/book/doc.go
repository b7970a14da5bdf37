// Package book holds the immutable snapshot of one open book.
//
// A Context is built once when a book is opened: the root is canonicalized
// and the manifest and metadata blobs are parsed eagerly. The raw blobs are
// kept byte-for-byte so they can be served again without re-serialization.
// A Context is never mutated; opening another book builds a new one and
// swaps it into the Session wholesale, so requests already in flight keep
// the snapshot they started with.
package book
