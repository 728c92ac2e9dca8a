package selector

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	gitignore "github.com/monochromegane/go-gitignore"

	"github.com/corpuskit/corpus/internal/errors"
)

// Selector discovers files under a root directory according to glob rules.
type Selector struct {
	logger *slog.Logger
}

// New creates a new Selector.
func New() *Selector {
	return &Selector{logger: slog.Default()}
}

// Select walks the root and returns the ordered set of matching files.
// Traversal order is lexicographic by relative path, so repeated runs over
// unchanged input yield identical selections. Unreadable entries and symlinks
// are skipped with a recorded warning, never a fatal error.
func (s *Selector) Select(ctx context.Context, opts Options) (*Selection, error) {
	root := opts.Root
	if root == "" {
		root = "."
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.IO("failed to resolve root path", err).WithDetail("root", root)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound("root directory not found: "+absRoot, err)
		}
		return nil, errors.IO("failed to stat root directory", err).WithDetail("root", absRoot)
	}
	if !info.IsDir() {
		return nil, errors.Validation("root path is not a directory: "+absRoot, nil)
	}

	include, err := CompileGlobs(opts.Include)
	if err != nil {
		return nil, err
	}

	excludePatterns := opts.Exclude
	if !opts.NoDefaultExcludes {
		excludePatterns = append(append([]string{}, defaultExcludes...), opts.Exclude...)
	}
	exclude, err := CompileGlobs(excludePatterns)
	if err != nil {
		return nil, err
	}

	maxFileSize := opts.MaxFileSize
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}

	var ignoreMatcher gitignore.IgnoreMatcher
	if opts.RespectGitignore {
		if m, err := gitignore.NewGitIgnore(filepath.Join(absRoot, ".gitignore")); err == nil {
			ignoreMatcher = m
		}
	}

	sel := &Selection{Root: absRoot}

	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			sel.Warnings = append(sel.Warnings, fmt.Sprintf("skipped unreadable entry: %s", path))
			return nil
		}

		rel, err := filepath.Rel(absRoot, path)
		if err != nil || rel == "." {
			return nil
		}
		relPath := filepath.ToSlash(rel)

		if d.IsDir() {
			// Directory patterns like **/.git/** only match with the
			// trailing separator present.
			if matchAny(exclude, relPath) || matchAny(exclude, relPath+"/") {
				return filepath.SkipDir
			}
			if ignoreMatcher != nil && ignoreMatcher.Match(path, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			sel.Warnings = append(sel.Warnings, fmt.Sprintf("skipped symlink: %s", relPath))
			return nil
		}

		if matchAny(exclude, relPath) {
			return nil
		}
		if len(include) > 0 && !matchAny(include, relPath) {
			return nil
		}
		// The matcher resolves paths against its own base directory, so it
		// needs the absolute walk path.
		if ignoreMatcher != nil && ignoreMatcher.Match(path, false) {
			return nil
		}

		entry, warn, err := s.readEntry(path, relPath, maxFileSize)
		if err != nil {
			return err
		}
		if warn != "" {
			sel.Warnings = append(sel.Warnings, warn)
			return nil
		}
		if entry != nil {
			sel.Files = append(sel.Files, *entry)
		}
		return nil
	})

	if walkErr != nil {
		if walkErr == context.Canceled || walkErr == context.DeadlineExceeded {
			return nil, errors.Timeout("selection canceled", walkErr)
		}
		return nil, walkErr
	}

	// WalkDir visits entries in lexical order per directory, but files from a
	// parent directory can interleave with subdirectory contents. Sort to the
	// documented full-path order.
	sort.Slice(sel.Files, func(i, j int) bool {
		return sel.Files[i].Path < sel.Files[j].Path
	})

	s.logger.Debug("selection complete",
		slog.String("root", absRoot),
		slog.Int("files", len(sel.Files)),
		slog.Int("warnings", len(sel.Warnings)))

	return sel, nil
}

// readEntry reads file metadata, skipping binaries and oversized files.
// Returns a warning string for skipped-but-not-fatal cases.
func (s *Selector) readEntry(absPath, relPath string, maxFileSize int64) (*FileEntry, string, error) {
	f, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Sprintf("skipped unreadable file: %s", relPath), nil
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Sprintf("skipped unstatable file: %s", relPath), nil
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Sprintf("skipped oversized file: %s (%d bytes)", relPath, info.Size()), nil
	}

	// Binary sniff: a NUL byte in the first 512 bytes excludes the file from
	// text encodings.
	head := make([]byte, 512)
	n, err := f.Read(head)
	if err != nil && err != io.EOF {
		return nil, fmt.Sprintf("skipped unreadable file: %s", relPath), nil
	}
	if bytes.ContainsRune(head[:n], 0) {
		return nil, fmt.Sprintf("skipped binary file: %s", relPath), nil
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, "", errors.IO("failed to rewind file", err).WithDetail("path", relPath)
	}

	hasher := sha256.New()
	lines, size, err := countLines(io.TeeReader(f, hasher))
	if err != nil {
		return nil, fmt.Sprintf("skipped unreadable file: %s", relPath), nil
	}

	return &FileEntry{
		Path:    relPath,
		AbsPath: absPath,
		Size:    size,
		Lines:   lines,
		Hash:    hex.EncodeToString(hasher.Sum(nil)),
	}, "", nil
}

// countLines counts lines the way the index reports them: newline count plus
// one for an unterminated trailing line.
func countLines(r io.Reader) (lines int, size int64, err error) {
	br := bufio.NewReader(r)
	var lastByte byte
	for {
		chunk, err := br.ReadBytes('\n')
		size += int64(len(chunk))
		if len(chunk) > 0 {
			lastByte = chunk[len(chunk)-1]
			lines += strings.Count(string(chunk), "\n")
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, 0, err
		}
	}
	if size > 0 && lastByte != '\n' {
		lines++
	}
	return lines, size, nil
}
