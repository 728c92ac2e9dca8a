// Package source provides uniform read access to a collection's files,
// whether the collection is a packed bundle or a raw directory. Retrieval
// and search go through this layer so they never care which kind backs a
// collection.
package source

import (
	"context"
	"strconv"
	"strings"

	"github.com/corpuskit/corpus/internal/catalog"
	"github.com/corpuskit/corpus/internal/errors"
)

// Source reads an opened collection.
type Source interface {
	// Collection returns the catalog entry this source was opened from.
	Collection() catalog.Collection
	// Paths lists the collection's relative file paths in stable order.
	Paths(ctx context.Context) ([]string, error)
	// Content returns one file's full content. Missing paths are NotFound.
	Content(ctx context.Context, path string) (string, error)
}

// Open resolves a catalog entry to a readable source.
func Open(ctx context.Context, col catalog.Collection) (Source, error) {
	switch col.Kind {
	case catalog.KindBundle:
		return OpenBundle(ctx, col)
	case catalog.KindDirectory:
		return OpenDir(col), nil
	default:
		return nil, errors.Validation("unknown collection kind: "+string(col.Kind), nil).
			WithDetail("id", col.ID)
	}
}

// GetFile returns a file's content restricted to an inclusive 1-based line
// range. Zero start or end means unbounded on that side. Out-of-range bounds
// clamp to the file; an end before the start is a validation error.
func GetFile(ctx context.Context, src Source, path string, start, end int) (string, error) {
	content, err := src.Content(ctx, path)
	if err != nil {
		return "", err
	}
	return sliceLines(content, start, end)
}

func sliceLines(content string, start, end int) (string, error) {
	if start < 0 || end < 0 {
		return "", errors.New(errors.ErrCodeInvalidRange, "line numbers must be positive", nil)
	}
	if end != 0 && start != 0 && end < start {
		return "", errors.New(errors.ErrCodeInvalidRange, "line range end precedes start", nil).
			WithDetail("start", strconv.Itoa(start)).
			WithDetail("end", strconv.Itoa(end))
	}
	if start == 0 && end == 0 {
		return content, nil
	}

	trailingNewline := strings.HasSuffix(content, "\n")
	trimmed := strings.TrimSuffix(content, "\n")
	if trimmed == "" {
		return "", nil
	}
	lines := strings.Split(trimmed, "\n")

	if start == 0 {
		start = 1
	}
	if end == 0 || end > len(lines) {
		end = len(lines)
	}
	if start > len(lines) {
		return "", nil
	}

	out := strings.Join(lines[start-1:end], "\n")
	if trailingNewline || end < len(lines) {
		out += "\n"
	}
	return out, nil
}
