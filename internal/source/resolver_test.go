package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/siteforge/demoimport/internal/config"
	"github.com/siteforge/demoimport/internal/logger"
	"github.com/siteforge/demoimport/internal/model"
	apperrors "github.com/siteforge/demoimport/pkg/errors"
)

func newTestResolver(t *testing.T, catalog config.CatalogConfig) *Resolver {
	t.Helper()
	if catalog.Timeout == 0 {
		catalog.Timeout = 5
	}
	return NewResolver(nil, t.TempDir(), catalog, "https://site.example", logger.NewNop())
}

func TestResolve_LocalPassesThroughWithoutExistenceCheck(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t, config.CatalogConfig{})
	path, err := r.Resolve(context.Background(), model.SourceLocal, "/srv/content/demo.xml")

	require.NoError(t, err)
	require.Equal(t, "/srv/content/demo.xml", path)
}

func TestResolve_RemoteStagesDownload(t *testing.T) {
	t.Parallel()

	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		got = req.Clone(context.Background())
		_, _ = w.Write([]byte("<rss>demo content</rss>"))
	}))
	defer srv.Close()

	r := newTestResolver(t, config.CatalogConfig{LicenseKey: "abc123"})
	path, err := r.Resolve(context.Background(), model.SourceRemote, srv.URL+"/demo.xml")

	require.NoError(t, err)
	require.Equal(t, r.StagingPath(), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "<rss>demo content</rss>", string(data))

	require.NotNil(t, got)
	require.Equal(t, "abc123", got.URL.Query().Get("key"))
	require.True(t, strings.HasPrefix(got.Header.Get("User-Agent"), "demoimport/"), "user agent must carry the site fingerprint")
	require.Equal(t, "https://site.example", got.Header.Get("Origin"))
}

func TestResolve_DefaultsToFreeLicenseKey(t *testing.T) {
	t.Parallel()

	var query url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		query = req.URL.Query()
	}))
	defer srv.Close()

	r := newTestResolver(t, config.CatalogConfig{})
	_, err := r.Resolve(context.Background(), model.SourceRemote, srv.URL+"/demo.xml")

	require.NoError(t, err)
	require.Equal(t, "free", query.Get("key"))
}

func TestResolve_MirrorHostRewrite(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte("mirrored"))
	}))
	defer srv.Close()

	mirror := strings.TrimPrefix(srv.URL, "http://")
	r := newTestResolver(t, config.CatalogConfig{
		APIHost:     "api.example.com",
		MirrorHost:  mirror,
		ReplaceHost: true,
	})

	path, err := r.Resolve(context.Background(), model.SourceRemote, "http://api.example.com/demo.xml")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "mirrored", string(data))
}

func TestResolve_FetchErrorStillReturnsStagingPath(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	r := newTestResolver(t, config.CatalogConfig{})
	path, err := r.Resolve(context.Background(), model.SourceRemote, srv.URL+"/demo.xml")

	require.Error(t, err)
	var fetchErr *apperrors.FetchError
	require.ErrorAs(t, err, &fetchErr)
	require.Equal(t, r.StagingPath(), path, "callers need the path to decide the next step")

	_, statErr := os.Stat(path)
	require.True(t, os.IsNotExist(statErr), "a failed fetch must not leave a staging file")
}

func TestResolve_OverwritesPreviousStagedDownload(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("second"))
	}))
	defer srv.Close()

	r := newTestResolver(t, config.CatalogConfig{})
	require.NoError(t, os.MkdirAll(filepath.Dir(r.StagingPath()), 0o755))
	require.NoError(t, os.WriteFile(r.StagingPath(), []byte("first download, longer than the next"), 0o644))

	path, err := r.Resolve(context.Background(), model.SourceRemote, srv.URL+"/demo.xml")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "second", string(data))
}
