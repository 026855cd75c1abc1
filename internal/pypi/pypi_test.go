package pypi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukaforge/cicd/internal/store"
	"github.com/dukaforge/cicd/pkg/types"
)

func indexServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestLatestVersion(t *testing.T) {
	srv := indexServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/requests/json", r.URL.Path)
		fmt.Fprint(w, `{"info": {"name": "requests", "version": "2.31.0"}}`)
	})

	c := NewClient(srv.URL, nil, 0)
	version, err := c.LatestVersion(context.Background(), "requests")
	require.NoError(t, err)
	assert.Equal(t, "2.31.0", version)
}

func TestLatestVersionCanonicalizesName(t *testing.T) {
	srv := indexServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/typing-extensions/json", r.URL.Path)
		fmt.Fprint(w, `{"info": {"name": "typing_extensions", "version": "4.12.0"}}`)
	})

	c := NewClient(srv.URL, nil, 0)
	version, err := c.LatestVersion(context.Background(), "Typing.Extensions")
	require.NoError(t, err)
	assert.Equal(t, "4.12.0", version)
}

func TestLatestVersionNotFound(t *testing.T) {
	srv := indexServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	c := NewClient(srv.URL, nil, 0)
	_, err := c.LatestVersion(context.Background(), "no-such-package")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestLatestVersionNameMismatch(t *testing.T) {
	srv := indexServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"info": {"name": "other-package", "version": "1.0.0"}}`)
	})

	c := NewClient(srv.URL, nil, 0)
	_, err := c.LatestVersion(context.Background(), "requests")
	assert.ErrorIs(t, err, types.ErrUnableToResolve)
}

func TestLatestVersionUsesCache(t *testing.T) {
	s, err := store.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	var hits int
	srv := indexServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprint(w, `{"info": {"name": "requests", "version": "2.31.0"}}`)
	})

	c := NewClient(srv.URL, s, time.Hour)

	for i := 0; i < 3; i++ {
		version, err := c.LatestVersion(context.Background(), "requests")
		require.NoError(t, err)
		assert.Equal(t, "2.31.0", version)
	}
	assert.Equal(t, 1, hits, "second and third lookups come from the cache")
}

func TestLatestVersionServerError(t *testing.T) {
	srv := indexServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "index is down", http.StatusInternalServerError)
	})

	c := NewClient(srv.URL, nil, 0)
	_, err := c.LatestVersion(context.Background(), "requests")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}
