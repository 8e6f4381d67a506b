package httpsnap

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch_Success(t *testing.T) {
	content := []byte("snapshot bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write(content)
	}))
	defer srv.Close()

	f := New(Config{DataDir: t.TempDir()})
	path, err := f.Fetch(context.Background(), srv.URL+"/archives/index.db")
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestFetch_DigestVerified(t *testing.T) {
	content := []byte("content-addressed snapshot")
	sum := sha256.Sum256(content)
	digest := hex.EncodeToString(sum[:])

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write(content)
	}))
	defer srv.Close()

	f := New(Config{DataDir: t.TempDir()})

	path, err := f.Fetch(context.Background(), srv.URL+"/index.db#sha256="+digest)
	require.NoError(t, err)
	assert.FileExists(t, path)

	_, err = f.Fetch(context.Background(), srv.URL+"/index.db#sha256="+hex.EncodeToString(make([]byte, 32)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "digest mismatch")
}

func TestFetch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := New(Config{DataDir: t.TempDir()})
	_, err := f.Fetch(context.Background(), srv.URL+"/missing.db")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}
