// Package pack orchestrates a full pack run: select files, encode the
// bundle, render the index artifacts, write everything atomically and
// optionally register the result in the catalog. A single run is
// single-threaded end to end so the bundle and its indexes are always
// derived from the same traversal.
package pack

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/corpuskit/corpus/internal/bundle"
	"github.com/corpuskit/corpus/internal/catalog"
	"github.com/corpuskit/corpus/internal/errors"
	"github.com/corpuskit/corpus/internal/fetch"
	"github.com/corpuskit/corpus/internal/index"
	"github.com/corpuskit/corpus/internal/selector"
)

// Options configures one pack run.
type Options struct {
	// Root is a local directory or a remote repository URL.
	Root string

	Include           []string
	Exclude           []string
	NoDefaultExcludes bool
	RespectGitignore  bool
	MaxFileSize       int64

	Encoding bundle.Encoding
	// Output is the bundle path. Empty derives <slug>.corpus.txt in the
	// working directory.
	Output string
	// WriteManifest also writes the Corpus v1 JSON sidecar next to the
	// bundle.
	WriteManifest bool

	// Register adds the finished bundle to the catalog.
	Register     bool
	RegisterID   string
	RegisterName string
	RegisterTags []string
	Overwrite    bool
	Store        *catalog.Store

	// FetchTimeout bounds the clone of a remote root.
	FetchTimeout time.Duration
}

// Result reports what a pack run produced.
type Result struct {
	BundlePath   string
	ManifestPath string
	Files        int
	TotalBytes   int64
	BundleBytes  int64
	Warnings     []string
	Collection   *catalog.Collection
}

// Packer runs pack jobs.
type Packer struct {
	logger *slog.Logger
}

// New creates a packer.
func New() *Packer {
	return &Packer{logger: slog.Default()}
}

// Run executes one pack job. On any failure nothing is left at the output
// path; artifacts are written through temp files and renamed only on
// success.
func (p *Packer) Run(ctx context.Context, opts Options) (*Result, error) {
	root := opts.Root
	rootDesc := index.Root{Kind: index.RootDirectory, Source: root}

	if fetch.IsRemote(opts.Root) {
		repo, err := fetch.Parse(opts.Root)
		if err != nil {
			return nil, err
		}
		tmp, err := os.MkdirTemp("", "corpus-fetch-*")
		if err != nil {
			return nil, errors.IO("failed to create fetch directory", err)
		}
		defer func() { _ = os.RemoveAll(tmp) }()

		root, err = repo.Clone(ctx, tmp, opts.FetchTimeout)
		if err != nil {
			return nil, err
		}
		rootDesc = index.Root{Kind: index.RootRepo, Source: repo.Describe()}
	}

	sel, err := selector.New().Select(ctx, selector.Options{
		Root:              root,
		Include:           opts.Include,
		Exclude:           opts.Exclude,
		NoDefaultExcludes: opts.NoDefaultExcludes,
		RespectGitignore:  opts.RespectGitignore,
		MaxFileSize:       opts.MaxFileSize,
	})
	if err != nil {
		return nil, err
	}
	if len(sel.Files) == 0 {
		return nil, errors.Validation("no files matched the selection", nil).
			WithDetail("root", opts.Root).
			WithSuggestion("check the include and exclude patterns")
	}

	header := index.HumanHeader(sel.Files)
	data, err := bundle.NewEncoder(opts.Encoding).Encode(sel.Files, header)
	if err != nil {
		return nil, err
	}

	output := opts.Output
	if output == "" {
		output = catalog.Slug(rootDesc.Source) + ".corpus.txt"
	}
	if err := bundle.WriteAtomic(output, data); err != nil {
		return nil, err
	}

	result := &Result{
		BundlePath:  output,
		Files:       len(sel.Files),
		BundleBytes: int64(len(data)),
		Warnings:    sel.Warnings,
	}
	for _, f := range sel.Files {
		result.TotalBytes += f.Size
	}

	if opts.WriteManifest {
		manifest, err := index.NewManifest(sel.Files, rootDesc, opts.Encoding).Encode()
		if err != nil {
			return nil, err
		}
		result.ManifestPath = index.SidecarPath(output)
		if err := bundle.WriteAtomic(result.ManifestPath, manifest); err != nil {
			return nil, err
		}
	}

	if opts.Register {
		if opts.Store == nil {
			return nil, errors.Internal("catalog store required for registration", nil)
		}
		col, err := opts.Store.Add(ctx, catalog.AddOptions{
			Source:    output,
			ID:        opts.RegisterID,
			Name:      opts.RegisterName,
			Kind:      catalog.KindBundle,
			Tags:      opts.RegisterTags,
			Overwrite: opts.Overwrite,
		})
		if err != nil {
			return nil, err
		}
		result.Collection = &col
	}

	p.logger.Info("pack complete",
		slog.String("root", opts.Root),
		slog.String("output", output),
		slog.Int("files", result.Files),
		slog.Int64("bytes", result.BundleBytes))

	return result, nil
}
