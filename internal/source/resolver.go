// Package source resolves a content package location to a local file path.
// Local sources pass through untouched; remote sources are downloaded to a
// fixed staging file under the uploads directory.
package source

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/siteforge/demoimport/internal/config"
	"github.com/siteforge/demoimport/internal/logger"
	"github.com/siteforge/demoimport/internal/model"
	apperrors "github.com/siteforge/demoimport/pkg/errors"
)

// StagingFileName is the well-known staging file, reused and overwritten on
// every remote-sourced run.
const StagingFileName = "demo-import-content.xml"

// Resolver decides where content comes from and stages remote downloads.
type Resolver struct {
	client     *http.Client
	uploadsDir string
	catalog    config.CatalogConfig
	siteURL    string
	log        *logger.Logger
}

// NewResolver creates a resolver. client may be nil, in which case a client
// with the catalog timeout is used.
func NewResolver(client *http.Client, uploadsDir string, catalog config.CatalogConfig, siteURL string, log *logger.Logger) *Resolver {
	if client == nil {
		client = &http.Client{Timeout: catalog.FetchTimeout()}
	}
	return &Resolver{
		client:     client,
		uploadsDir: uploadsDir,
		catalog:    catalog,
		siteURL:    siteURL,
		log:        log.WithComponent("source"),
	}
}

// StagingPath returns the staging file path for remote downloads.
func (r *Resolver) StagingPath() string {
	return filepath.Join(r.uploadsDir, StagingFileName)
}

// Resolve maps (source, location) to a local file path. Local locations are
// returned unchanged with no existence check; existence is verified at the
// import step. Remote fetch failures are returned as a FetchError alongside
// the computed staging path: the caller logs them and proceeds, letting a
// missing staging file hard-fail at the import step instead.
func (r *Resolver) Resolve(ctx context.Context, src model.Source, location string) (string, error) {
	if src != model.SourceRemote {
		r.log.Info("using local content file")
		return location, nil
	}

	r.log.Progress("saving remote content package")
	path := r.StagingPath()

	fetchURL, err := r.buildURL(location)
	if err != nil {
		return path, apperrors.NewFetchError(location, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return path, apperrors.NewFetchError(fetchURL, err)
	}
	req.Header.Set("User-Agent", r.userAgent())
	req.Header.Set("Origin", r.siteURL)

	resp, err := r.client.Do(req)
	if err != nil {
		return path, apperrors.NewFetchError(fetchURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return path, apperrors.NewFetchError(fetchURL, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	if err := r.stage(resp.Body, path); err != nil {
		return path, apperrors.NewFetchError(fetchURL, err)
	}

	r.log.WithFields(map[string]any{"path": path}).Info("saved remote content package")
	return path, nil
}

// buildURL applies the mirror host rewrite and appends the licensing key.
func (r *Resolver) buildURL(location string) (string, error) {
	if r.catalog.ReplaceHost && r.catalog.MirrorHost != "" && r.catalog.APIHost != "" {
		location = strings.Replace(location, r.catalog.APIHost, r.catalog.MirrorHost, 1)
	}

	parsed, err := url.Parse(location)
	if err != nil {
		return "", err
	}

	query := parsed.Query()
	key := r.catalog.LicenseKey
	if key == "" {
		key = "free"
	}
	query.Set("key", key)
	parsed.RawQuery = query.Encode()

	return parsed.String(), nil
}

// stage writes the response body to the staging file, replacing any previous
// staged download.
func (r *Resolver) stage(body io.Reader, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// userAgent identifies this site to the catalog without leaking its URL.
func (r *Resolver) userAgent() string {
	sum := md5.Sum([]byte(r.siteURL))
	return "demoimport/" + hex.EncodeToString(sum[:])
}
