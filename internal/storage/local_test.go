package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalImageStore_SaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalImageStore(dir, "http://localhost:8080")
	require.NoError(t, err)
	store.now = func() time.Time { return time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC) }
	ctx := context.Background()

	imgPath, err := store.Save(ctx, "pancakes.png", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/images/20240301T123000000000000Z-pancakes.png", imgPath)

	data, err := os.ReadFile(filepath.Join(dir, "20240301T123000000000000Z-pancakes.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, store.Delete(ctx, imgPath))
	_, err = os.Stat(filepath.Join(dir, "20240301T123000000000000Z-pancakes.png"))
	assert.True(t, os.IsNotExist(err))

	// Deleting again is a no-op.
	assert.NoError(t, store.Delete(ctx, imgPath))
}

func TestLocalImageStore_DeleteIgnoresForeignPaths(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalImageStore(dir, "http://localhost:8080")
	require.NoError(t, err)

	outside := filepath.Join(t.TempDir(), "keep.png")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))

	tests := []string{
		"https://cdn.example.com/images/keep.png",
		"http://localhost:8080/images/../keep.png",
		"http://localhost:8080/images/",
		"",
	}

	for _, imgPath := range tests {
		assert.NoError(t, store.Delete(context.Background(), imgPath), imgPath)
	}
	_, err = os.Stat(outside)
	assert.NoError(t, err)
}

func TestObjectName(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 30, 0, 5, time.UTC)

	tests := []struct {
		name     string
		original string
		want     string
	}{
		{name: "plain", original: "cake.jpg", want: "20240301T123000000000005Z-cake.jpg"},
		{name: "spaces", original: "my cake.jpg", want: "20240301T123000000000005Z-my-cake.jpg"},
		{name: "directories stripped", original: "../../etc/passwd", want: "20240301T123000000000005Z-passwd"},
		{name: "windows path", original: `C:\photos\pie.png`, want: "20240301T123000000000005Z-pie.png"},
		{name: "empty", original: "", want: "20240301T123000000000005Z-image"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, objectName(now, tt.original))
		})
	}
}
