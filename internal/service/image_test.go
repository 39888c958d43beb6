package service_test

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/service"
)

func TestDecodeDataURI(t *testing.T) {
	payload := []byte("image bytes")
	encoded := base64.StdEncoding.EncodeToString(payload)

	tests := []struct {
		name    string
		value   string
		ext     string
		wantErr bool
	}{
		{"png", "data:image/png;base64," + encoded, "png", false},
		{"upper-case type", "data:image/JPEG;base64," + encoded, "jpeg", false},
		{"surrounding whitespace", "  data:image/gif;base64," + encoded + "\n", "gif", false},
		{"not a data uri", "https://example.com/a.png", "", true},
		{"not an image", "data:text/plain;base64," + encoded, "", true},
		{"bad base64", "data:image/png;base64,@@@", "", true},
		{"empty", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, ext, err := service.DecodeDataURI(tt.value)
			if tt.wantErr {
				assert.Equal(t, service.KindValidation, service.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, payload, data)
			assert.Equal(t, tt.ext, ext)
		})
	}
}

func TestLocalImageStore(t *testing.T) {
	root := t.TempDir()
	images := service.NewImageService(service.NewLocalImageStore(root, "/media"))
	ctx := context.Background()

	url, err := images.Save(ctx, []byte("\x89PNG\r\n\x1a\nbody"), ".PNG")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "/media/recipes/images/"), url)
	require.True(t, strings.HasSuffix(url, ".png"), url)

	path := filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(url, "/media/")))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG\r\n\x1a\nbody", string(data))

	images.Delete(ctx, url)
	assert.NoFileExists(t, path)

	// Unknown and foreign URLs are ignored.
	images.Delete(ctx, url)
	images.Delete(ctx, "https://cdn.example.com/x.png")
	images.Delete(ctx, "")

	_, err = images.Save(ctx, []byte("data"), "")
	assert.Equal(t, service.KindValidation, service.KindOf(err))
}
