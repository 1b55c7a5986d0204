package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextTextualFamilies(t *testing.T) {
	tests := []struct {
		name string
		mime string
	}{
		{"plain", "text/plain"},
		{"plain with charset", "text/plain; charset=utf-8"},
		{"markdown", "text/markdown"},
		{"csv", "text/csv"},
		{"json", "application/json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Text([]byte("hello world"), tt.mime)
			assert.True(t, ok)
			assert.Equal(t, "hello world", got)
		})
	}
}

func TestTextRawCap(t *testing.T) {
	data := []byte(strings.Repeat("x", 25000))

	got, ok := Text(data, "text/plain")
	assert.True(t, ok)
	assert.Len(t, got, RawTextLimit)
}

func TestTextUnsupportedFamily(t *testing.T) {
	got, ok := Text([]byte{0x50, 0x4b, 0x03, 0x04}, "application/zip")
	assert.False(t, ok)
	assert.Equal(t, "", got)
}

func TestTextEmptyTextFile(t *testing.T) {
	_, ok := Text([]byte("   \n  "), "text/plain")
	assert.False(t, ok)
}

func TestTextBrokenPDF(t *testing.T) {
	// not a real PDF; extraction fails and must yield no text, no panic
	got, ok := Text([]byte("definitely not a pdf"), "application/pdf")
	assert.False(t, ok)
	assert.Equal(t, "", got)
}
