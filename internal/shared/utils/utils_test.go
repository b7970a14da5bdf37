package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasher(t *testing.T) {
	h := DefaultHasher()
	assert.Equal(t, BLAKE3, h.Algorithm())

	// BLAKE3 of the empty input
	assert.Equal(t, "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262", h.Hash(nil))
	assert.Equal(t, h.Hash([]byte("abc")), h.HashString("abc"))
	assert.NotEqual(t, h.HashString("abc"), h.HashString("abd"))

	sha := NewHasher(SHA256)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", sha.HashString("abc"))
}

func TestHashReaderMatchesHash(t *testing.T) {
	h := DefaultHasher()
	data := strings.Repeat("chunk", 10000)

	sum, err := h.HashReader(strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, h.HashString(data), sum)
}

func TestHashFile(t *testing.T) {
	h := DefaultHasher()
	path := filepath.Join(t.TempDir(), "asset.js")
	require.NoError(t, os.WriteFile(path, []byte("var x;"), 0o644))

	sum, err := h.HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, h.HashString("var x;"), sum)

	_, err = h.HashFile(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestJSONSizeValidator(t *testing.T) {
	v := NewJSONSizeValidator(16)

	assert.NoError(t, v.ValidateJSON([]byte(`{"a":1}`)))
	assert.Error(t, v.ValidateJSON([]byte(`{"a":`)))
	assert.Error(t, v.ValidateSize([]byte(strings.Repeat("x", 17))))
	assert.Equal(t, MaxFrameSize, DefaultJSONValidator().MaxSize())
}

func TestValidateJSONDepth(t *testing.T) {
	shallow := map[string]interface{}{"a": []interface{}{1, 2}}
	assert.NoError(t, ValidateJSONDepth(shallow, 3))

	var deep interface{} = "leaf"
	for i := 0; i < 5; i++ {
		deep = []interface{}{deep}
	}
	assert.Error(t, ValidateJSONDepth(deep, 3))
}

func TestValidateSessionKey(t *testing.T) {
	assert.NoError(t, ValidateSessionKey("standalone_font_settings"))
	assert.Error(t, ValidateSessionKey(""))
	assert.Error(t, ValidateSessionKey("\xff\xfe"))
	assert.Error(t, ValidateSessionKey(strings.Repeat("k", MaxSessionKeySize+1)))
}
