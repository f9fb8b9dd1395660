package services

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage(t *testing.T) {
	storage := NewLocalStorage(t.TempDir())
	ctx := context.Background()

	require.NoError(t, storage.Save(ctx, "avatar.png", strings.NewReader("image bytes"), "image/png"))

	f, err := storage.Open(ctx, "avatar.png")
	require.NoError(t, err)
	defer f.Close()

	content, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "image bytes", string(content))

	t.Run("path components are stripped from filenames", func(t *testing.T) {
		require.NoError(t, storage.Save(ctx, "../escape.png", strings.NewReader("x"), "image/png"))

		f, err := storage.Open(ctx, "escape.png")
		require.NoError(t, err)
		f.Close()
	})

	t.Run("missing files yield an error", func(t *testing.T) {
		_, err := storage.Open(ctx, "nope.png")
		assert.Error(t, err)
	})
}

func TestNewFileStorage(t *testing.T) {
	t.Run("defaults to local", func(t *testing.T) {
		storage, err := NewFileStorage(map[string]string{"STORAGE_DIR": t.TempDir()})
		require.NoError(t, err)
		_, ok := storage.(*LocalStorage)
		assert.True(t, ok)
	})

	t.Run("s3 requires a bucket", func(t *testing.T) {
		_, err := NewFileStorage(map[string]string{"STORAGE_BACKEND": "s3"})
		assert.Error(t, err)
	})
}

func TestMockEmailer(t *testing.T) {
	emailer := NewMockEmailer()
	require.NoError(t, emailer.Send("Subject", "<p>Body</p>", []string{"a@example.com"}))
	require.Len(t, emailer.Sent, 1)
	assert.Equal(t, []string{"a@example.com"}, emailer.Sent[0].To)
}
