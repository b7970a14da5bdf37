package utils

import (
	"fmt"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

// Bridge frame limits (in bytes)
const (
	MaxFrameSize      = 4 * 1024 * 1024 // 4MB - a single bridge frame
	MaxSessionKeySize = 256
	MaxJSONDepth      = 64
)

// JSONSizeValidator validates JSON size limits
type JSONSizeValidator struct {
	maxSize int
}

// NewJSONSizeValidator creates a new validator with the specified max size
func NewJSONSizeValidator(maxSize int) *JSONSizeValidator {
	return &JSONSizeValidator{maxSize: maxSize}
}

// DefaultJSONValidator returns a validator with the bridge frame limit
func DefaultJSONValidator() *JSONSizeValidator {
	return NewJSONSizeValidator(MaxFrameSize)
}

// MaxSize returns the configured limit
func (v *JSONSizeValidator) MaxSize() int {
	return v.maxSize
}

// ValidateSize checks if the data size is within limits
func (v *JSONSizeValidator) ValidateSize(data []byte) error {
	size := len(data)
	if size > v.maxSize {
		return fmt.Errorf("JSON size %d bytes exceeds maximum %d bytes", size, v.maxSize)
	}
	return nil
}

// ValidateJSON validates both size and JSON structure
func (v *JSONSizeValidator) ValidateJSON(data []byte) error {
	// Check size first (faster than parsing)
	if err := v.ValidateSize(data); err != nil {
		return err
	}
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid JSON")
	}
	return nil
}

// ValidateJSONDepth checks if JSON nesting depth is within limits
func ValidateJSONDepth(data interface{}, maxDepth int) error {
	return checkDepth(data, 0, maxDepth)
}

func checkDepth(data interface{}, currentDepth int, maxDepth int) error {
	if currentDepth > maxDepth {
		return fmt.Errorf("JSON nesting depth %d exceeds maximum %d", currentDepth, maxDepth)
	}

	switch v := data.(type) {
	case map[string]interface{}:
		for _, value := range v {
			if err := checkDepth(value, currentDepth+1, maxDepth); err != nil {
				return err
			}
		}
	case []interface{}:
		for _, value := range v {
			if err := checkDepth(value, currentDepth+1, maxDepth); err != nil {
				return err
			}
		}
	}

	return nil
}

// ValidateSessionKey checks a session data key sent by the peer
func ValidateSessionKey(key string) error {
	if key == "" {
		return fmt.Errorf("session key is required")
	}
	if !utf8.ValidString(key) {
		return fmt.Errorf("session key must be valid UTF-8")
	}
	if len(key) > MaxSessionKeySize {
		return fmt.Errorf("session key exceeds maximum length of %d", MaxSessionKeySize)
	}
	return nil
}
