package source

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/corpuskit/corpus/internal/catalog"
	"github.com/corpuskit/corpus/internal/errors"
	"github.com/corpuskit/corpus/internal/selector"
)

// DirSource reads a collection backed by a raw directory. Every call walks
// the directory fresh, so results always reflect the current tree.
type DirSource struct {
	col catalog.Collection
	sel *selector.Selector
}

// OpenDir creates a source over a directory collection.
func OpenDir(col catalog.Collection) *DirSource {
	return &DirSource{col: col, sel: selector.New()}
}

func (d *DirSource) Collection() catalog.Collection {
	return d.col
}

func (d *DirSource) Paths(ctx context.Context) ([]string, error) {
	sel, err := d.sel.Select(ctx, selector.Options{Root: d.col.Source})
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(sel.Files))
	for _, f := range sel.Files {
		paths = append(paths, f.Path)
	}
	return paths, nil
}

func (d *DirSource) Content(_ context.Context, rel string) (string, error) {
	clean := path.Clean(rel)
	if clean == ".." || strings.HasPrefix(clean, "../") || path.IsAbs(clean) {
		return "", errors.Validation("path escapes collection root: "+rel, nil).
			WithDetail("path", rel)
	}

	data, err := os.ReadFile(filepath.Join(d.col.Source, filepath.FromSlash(clean)))
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NotFound("file not found in collection: "+rel, err).
				WithDetail("collection", d.col.ID).
				WithDetail("path", rel)
		}
		return "", errors.IO("failed to read file", err).WithDetail("path", rel)
	}
	return string(data), nil
}
