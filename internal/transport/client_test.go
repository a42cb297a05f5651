package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crankboy/romdb/pkg/constants"
	"github.com/crankboy/romdb/pkg/errors"
)

func TestClientFetchHTTP(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("game ( comment \"Tetris\" rom ( crc 46DF91AD ) )"))
	}))
	defer server.Close()

	c := New()
	defer c.CloseIdleConnections()

	data, err := c.Fetch(context.Background(), server.URL+"/gb.dat")
	require.NoError(t, err)
	assert.Contains(t, string(data), "Tetris")
	assert.Equal(t, constants.DefaultUserAgent, gotUA)
}

func TestClientFetchCustomUserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer server.Close()

	c := New(WithUserAgent("romdb-test/1.0"), WithTimeout(time.Second))
	_, err := c.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "romdb-test/1.0", gotUA)
}

func TestClientFetchHTTPStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := New().Fetch(context.Background(), server.URL)
	require.Error(t, err)

	var fetchErr *errors.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
	assert.True(t, errors.IsSourceUnavailable(err))
}

func TestClientFetchUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()

	_, err := New(WithTimeout(2*time.Second)).Fetch(context.Background(), addr)
	require.Error(t, err)
	assert.True(t, errors.IsSourceUnavailable(err))
}

func TestClientFetchCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Fetch(ctx, server.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClientFetchFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Game Boy.dat")
	require.NoError(t, os.WriteFile(path, []byte("catalog"), 0o644))

	c := New()

	data, err := c.Fetch(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "catalog", string(data))

	data, err = c.Fetch(context.Background(), "file://"+filepath.ToSlash(path))
	require.NoError(t, err)
	assert.Equal(t, "catalog", string(data))

	_, err = c.Fetch(context.Background(), filepath.Join(t.TempDir(), "missing.dat"))
	assert.True(t, errors.IsSourceUnavailable(err))
}

func TestClientFetchTLS(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("clrmamepro ( name \"Nintendo - Game Boy\" )"))
	}))
	defer server.Close()

	// The default client does not trust the test certificate.
	_, err := New().Fetch(context.Background(), server.URL)
	require.Error(t, err)

	data, err := New(WithHTTPClient(server.Client())).Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Nintendo - Game Boy")
}
