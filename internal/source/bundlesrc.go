package source

import (
	"context"
	"os"
	"time"

	"github.com/corpuskit/corpus/internal/bundle"
	"github.com/corpuskit/corpus/internal/catalog"
	"github.com/corpuskit/corpus/internal/errors"
)

// BundleSource reads a collection backed by a packed bundle. The bundle is
// decoded once at open time and held in memory for the source's lifetime.
type BundleSource struct {
	col     catalog.Collection
	b       *bundle.Bundle
	modTime time.Time
}

// OpenBundle loads and decodes the collection's bundle artifact.
func OpenBundle(ctx context.Context, col catalog.Collection) (*BundleSource, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Timeout("bundle open canceled", err)
	}

	// Stat before read: a write that lands in between shows up as a
	// mismatched mtime on the next freshness check.
	info, err := os.Stat(col.Source)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound("bundle file not found: "+col.Source, err).
				WithDetail("collection", col.ID)
		}
		return nil, errors.IO("failed to stat bundle", err).WithDetail("path", col.Source)
	}

	data, err := os.ReadFile(col.Source)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound("bundle file not found: "+col.Source, err).
				WithDetail("collection", col.ID)
		}
		return nil, errors.IO("failed to read bundle", err).WithDetail("path", col.Source)
	}

	b, err := bundle.Decode(data)
	if err != nil {
		return nil, err
	}
	return &BundleSource{col: col, b: b, modTime: info.ModTime()}, nil
}

func (s *BundleSource) Collection() catalog.Collection {
	return s.col
}

// ModTime returns the bundle file's modification time at open.
func (s *BundleSource) ModTime() time.Time {
	return s.modTime
}

func (s *BundleSource) Paths(_ context.Context) ([]string, error) {
	return s.b.Paths(), nil
}

func (s *BundleSource) Content(_ context.Context, path string) (string, error) {
	content, ok := s.b.Get(path)
	if !ok {
		return "", errors.NotFound("file not found in collection: "+path, nil).
			WithDetail("collection", s.col.ID).
			WithDetail("path", path)
	}
	return content, nil
}
