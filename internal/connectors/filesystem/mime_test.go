package filesystem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectMIMEType(t *testing.T) {
	tests := []struct {
		filename     string
		expectedMIME string
	}{
		// No extension
		{"file", "text/plain"},

		{"doc.md", "text/markdown"},
		{"code.go", "text/x-go"},
		{"config.yml", "text/yaml"},
		{"data.csv", "text/csv"},
		{"data.tsv", "text/tab-separated-values"},
		{"page.html", "text/html"},
		{"doc.pdf", "application/pdf"},
		{"report.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
		{"sheet.xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
		{"scan.png", "image/png"},
		{"scan.jpeg", "image/jpeg"},

		// Unknown extension - use truly obscure extensions to avoid platform MIME registrations
		{"file.zzzzunknown", "application/octet-stream"},

		// Case insensitive
		{"FILE.MD", "text/markdown"},
		{"File.Yaml", "text/yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.expectedMIME, DetectMIMEType(tt.filename))
		})
	}

	t.Run("strips charset from mime type", func(t *testing.T) {
		for _, file := range []string{"file.css", "file.js"} {
			assert.NotContains(t, DetectMIMEType(file), ";")
		}
	})
}

func TestIsHidden(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{".hidden", true},
		{"path/to/.hidden", true},
		{"dir/.git/config", true},
		{"file.txt", false},
		{"path/to/file.txt", false},
		{".", false},
		{"..", false},
		{"path/../file", false},
		{"", false},
		{"file.hidden", false},
		{"/a/.b/.c/file", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, isHidden(tt.path))
		})
	}
}
