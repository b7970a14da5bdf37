// Package utils holds small helpers shared across packages: content
// hashing and bridge payload validation.
package utils
