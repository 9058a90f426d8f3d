package archive

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectKey(t *testing.T) {
	tests := []struct {
		contentType string
		ext         string
	}{
		{"image/jpeg", ".jpg"},
		{"image/png", ".png"},
		{"image/webp", ".webp"},
		{"application/octet-stream", ".jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			key := objectKey(42, tt.contentType)
			assert.True(t, strings.HasPrefix(key, "visitors/42/"), key)
			assert.True(t, strings.HasSuffix(key, tt.ext), key)
		})
	}

	assert.NotEqual(t, objectKey(1, "image/jpeg"), objectKey(1, "image/jpeg"))
}
