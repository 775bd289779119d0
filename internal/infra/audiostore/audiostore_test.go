package audiostore

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalStorePut(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir)
	require.NoError(t, err)

	path, err := store.Put(context.Background(), "stories/2024-06-21/a.mp3", []byte("ID3"), "audio/mpeg")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "stories", "2024-06-21", "a.mp3"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, []byte("ID3"), data)
}

func TestLocalStoreKeepsKeysInsideDir(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir)
	require.NoError(t, err)

	path, err := store.Put(context.Background(), "../../escape.mp3", []byte("x"), "audio/mpeg")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "escape.mp3"), path)
}

func TestSanitizeEndpoint(t *testing.T) {
	require.Equal(t, "acct.r2.cloudflarestorage.com", sanitizeEndpoint("https://acct.r2.cloudflarestorage.com/bucket"))
	require.Equal(t, "localhost:9000", sanitizeEndpoint(" http://localhost:9000 "))
}

func TestNewS3Store(t *testing.T) {
	store, err := NewS3Store("http://localhost:9000", "key", "secret", "audio", "us-east-1", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	require.Equal(t, "audio", store.bucket)
}
