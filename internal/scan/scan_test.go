package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("data"), 0o644))
}

func TestDiscoverImages(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.jpg")
	writeFile(t, dir, "a.PNG")
	writeFile(t, dir, "notes.txt")
	writeFile(t, dir, "archive.zip")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
	writeFile(t, filepath.Join(dir, "nested"), "deep.jpg")

	files, err := DiscoverImages(context.Background(), dir)
	require.NoError(t, err)

	// Only allow-listed extensions, no recursion, sorted by name.
	require.Len(t, files, 2)
	assert.Equal(t, "a.PNG", files[0].Name)
	assert.Equal(t, "image/png", files[0].MIMEType)
	assert.Equal(t, "b.jpg", files[1].Name)
	assert.Equal(t, "image/jpeg", files[1].MIMEType)
}

func TestDiscoverImages_MissingDir(t *testing.T) {
	_, err := DiscoverImages(context.Background(), filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestMIMETypeFor(t *testing.T) {
	testCases := []struct {
		name     string
		wantMIME string
		wantErr  bool
	}{
		{name: "photo.jpeg", wantMIME: "image/jpeg"},
		{name: "photo.JPG", wantMIME: "image/jpeg"},
		{name: "anim.gif", wantMIME: "image/gif"},
		{name: "scan.tiff", wantMIME: "image/tiff"},
		{name: "modern.webp", wantMIME: "image/webp"},
		{name: "document.pdf", wantErr: true},
		{name: "noextension", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mime, err := MIMETypeFor(tc.name)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedType)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantMIME, mime)
		})
	}
}
