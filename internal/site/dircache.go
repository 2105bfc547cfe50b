package site

import (
	"context"
	"os"
	"path/filepath"
)

// DirBuilderCache is a BuilderCache over the page builder's generated-assets
// directory. Clearing drops every compiled file so the builder regenerates
// them against the imported content.
type DirBuilderCache struct {
	Dir string
}

// Ready reports whether the cache directory exists.
func (c *DirBuilderCache) Ready(ctx context.Context) bool {
	if c == nil || c.Dir == "" {
		return false
	}
	info, err := os.Stat(c.Dir)
	return err == nil && info.IsDir()
}

// Clear removes the directory contents, keeping the directory itself.
func (c *DirBuilderCache) Clear(ctx context.Context) error {
	entries, err := os.ReadDir(c.Dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(c.Dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

var _ BuilderCache = (*DirBuilderCache)(nil)
