// Package session persists the viewer's keyed preference store.
//
// The store holds session data grouped by logical key, the main window
// state and geometry, and the old-preferences migration flag. It is read
// once at startup and written after every change through a temporary file
// and rename.
package session
