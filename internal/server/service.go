// Package server exposes the retrieval API over HTTP and MCP stdio
// transports. Both transports delegate to the same Service, which resolves
// collections through the catalog and reads them through sources.
package server

import (
	"context"
	"log/slog"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/corpuskit/corpus/internal/catalog"
	"github.com/corpuskit/corpus/internal/errors"
	"github.com/corpuskit/corpus/internal/search"
	"github.com/corpuskit/corpus/internal/source"
)

// DefaultCacheSize is the decoded-bundle cache capacity when the caller does
// not configure one.
const DefaultCacheSize = 16

// CollectionInfo is the listing row for a collection.
type CollectionInfo struct {
	ID     string   `json:"id"`
	Name   string   `json:"name,omitempty"`
	Kind   string   `json:"kind"`
	Source string   `json:"source"`
	Tags   []string `json:"tags,omitempty"`
}

// Service implements the retrieval operations behind every transport.
// Decoded bundles are cached per collection id; directory collections are
// re-read on every call so results track the live tree.
type Service struct {
	store  *catalog.Store
	engine *search.Engine
	cache  *lru.Cache[string, *source.BundleSource]
	logger *slog.Logger
}

// NewService creates a service over the catalog store.
func NewService(store *catalog.Store, cacheSize int) (*Service, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, *source.BundleSource](cacheSize)
	if err != nil {
		return nil, errors.Internal("failed to create bundle cache", err)
	}
	return &Service{
		store:  store,
		engine: search.NewEngine(),
		cache:  cache,
		logger: slog.Default(),
	}, nil
}

// InvalidateCache drops all cached bundles. Called when the catalog file
// changes on disk.
func (s *Service) InvalidateCache() {
	s.cache.Purge()
	s.logger.Debug("bundle cache purged")
}

// ListCollections returns all registered collections.
func (s *Service) ListCollections(_ context.Context) ([]CollectionInfo, error) {
	cols, err := s.store.List()
	if err != nil {
		return nil, err
	}
	out := make([]CollectionInfo, 0, len(cols))
	for _, col := range cols {
		out = append(out, CollectionInfo{
			ID:     col.ID,
			Name:   col.Name,
			Kind:   string(col.Kind),
			Source: col.Source,
			Tags:   col.Tags,
		})
	}
	return out, nil
}

// ListFiles returns the relative paths of a collection's files.
func (s *Service) ListFiles(ctx context.Context, id string) ([]string, error) {
	src, err := s.open(ctx, id)
	if err != nil {
		return nil, err
	}
	return src.Paths(ctx)
}

// GetFile returns a file's content, optionally restricted to an inclusive
// 1-based line range. Zero start or end leaves that side unbounded.
func (s *Service) GetFile(ctx context.Context, id, path string, start, end int) (string, error) {
	src, err := s.open(ctx, id)
	if err != nil {
		return "", err
	}
	return source.GetFile(ctx, src, path, start, end)
}

// Search runs a ranked query against one collection.
func (s *Service) Search(ctx context.Context, id, query string, opts search.Options) ([]search.Result, error) {
	src, err := s.open(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.engine.Search(ctx, src, query, opts)
}

// open resolves a collection id to a source, serving bundle sources from the
// cache when possible.
func (s *Service) open(ctx context.Context, id string) (source.Source, error) {
	col, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}

	if col.Kind != catalog.KindBundle {
		return source.Open(ctx, col)
	}

	if cached, ok := s.cache.Get(id); ok && cached.Collection().Source == col.Source {
		// Revalidate against the file's mtime so a re-pack over the same
		// path is picked up without a catalog mutation.
		if info, err := os.Stat(col.Source); err == nil && info.ModTime().Equal(cached.ModTime()) {
			return cached, nil
		}
		s.cache.Remove(id)
	}
	src, err := source.OpenBundle(ctx, col)
	if err != nil {
		return nil, err
	}
	s.cache.Add(id, src)
	return src, nil
}
