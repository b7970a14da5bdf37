package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeMIME(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"application/vnd.ms-opentype", "application/x-font-ttf"},
		{"application/x-font-truetype", "application/x-font-ttf"},
		{"application/font-sfnt", "application/x-font-ttf"},
		{"application/x-font-ttf", "application/x-font-ttf"},
		{"text/html", "text/html"},
		{"font/woff2", "font/woff2"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeMIME(tt.in))
		})
	}
}

func TestGuessMIME(t *testing.T) {
	tests := []struct {
		name       string
		file       string
		advertised string
		body       []byte
		want       string
	}{
		{"advertised wins", "page.css", "text/html", nil, "text/html"},
		{"book table", "page.XHTML", "", nil, "application/xhtml+xml"},
		{"book font", "font.ttf", "", nil, "application/x-font-truetype"},
		{"system table", "manual.pdf", "", nil, "application/pdf"},
		{"sniffed", "blob", "", []byte("GIF89a\x01\x00\x01\x00"), "image/gif"},
		{"sniffed text", "README", "", []byte("plain words"), "text/plain; charset=utf-8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GuessMIME(tt.file, tt.advertised, tt.body))
		})
	}
}
