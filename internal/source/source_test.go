package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpuskit/corpus/internal/bundle"
	"github.com/corpuskit/corpus/internal/catalog"
	corpuserrors "github.com/corpuskit/corpus/internal/errors"
	"github.com/corpuskit/corpus/internal/selector"
)

var testFiles = map[string]string{
	"client.go": "package client\n\nfunc Dial() {}\n",
	"sub/util.go": "package sub\n",
}

func dirCollection(t *testing.T) catalog.Collection {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range testFiles {
		abs := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
		require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
	}
	return catalog.Collection{ID: "repo", Kind: catalog.KindDirectory, Source: dir}
}

func bundleCollection(t *testing.T) catalog.Collection {
	t.Helper()
	col := dirCollection(t)

	sel, err := selector.New().Select(context.Background(), selector.Options{Root: col.Source})
	require.NoError(t, err)

	enc, err := bundle.ParseEncoding("gzip")
	require.NoError(t, err)
	data, err := bundle.NewEncoder(enc).Encode(sel.Files, "")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "repo.bundle")
	require.NoError(t, bundle.WriteAtomic(path, data))
	return catalog.Collection{ID: "repo", Kind: catalog.KindBundle, Source: path}
}

func TestOpenDispatchesOnKind(t *testing.T) {
	ctx := context.Background()

	for name, col := range map[string]catalog.Collection{
		"directory": dirCollection(t),
		"bundle":    bundleCollection(t),
	} {
		t.Run(name, func(t *testing.T) {
			src, err := Open(ctx, col)
			require.NoError(t, err)

			paths, err := src.Paths(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"client.go", "sub/util.go"}, paths)

			content, err := src.Content(ctx, "client.go")
			require.NoError(t, err)
			assert.Equal(t, testFiles["client.go"], content)

			_, err = src.Content(ctx, "missing.go")
			require.Error(t, err)
			assert.True(t, corpuserrors.IsNotFound(err))
		})
	}
}

func TestOpenUnknownKind(t *testing.T) {
	_, err := Open(context.Background(), catalog.Collection{ID: "x", Kind: "ftp"})
	require.Error(t, err)
	assert.True(t, corpuserrors.IsValidation(err))
}

func TestOpenBundleCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.bundle")
	require.NoError(t, os.WriteFile(path, []byte{0x1f, 0x8b, 0x00}, 0o644))

	_, err := Open(context.Background(), catalog.Collection{ID: "bad", Kind: catalog.KindBundle, Source: path})
	require.Error(t, err)
	assert.True(t, corpuserrors.IsDecodeError(err))
}

func TestDirSourceRejectsEscapingPath(t *testing.T) {
	src := OpenDir(dirCollection(t))
	_, err := src.Content(context.Background(), "../outside.txt")
	require.Error(t, err)
	assert.True(t, corpuserrors.IsValidation(err))
}

func TestGetFileLineRanges(t *testing.T) {
	content := "one\ntwo\nthree\nfour\nfive\n"
	col := catalog.Collection{ID: "c", Kind: catalog.KindDirectory, Source: t.TempDir()}
	require.NoError(t, os.WriteFile(filepath.Join(col.Source, "f.txt"), []byte(content), 0o644))
	src := OpenDir(col)
	ctx := context.Background()

	tests := []struct {
		name       string
		start, end int
		want       string
	}{
		{name: "full file", start: 0, end: 0, want: content},
		{name: "middle range", start: 2, end: 4, want: "two\nthree\nfour\n"},
		{name: "start only", start: 4, end: 0, want: "four\nfive\n"},
		{name: "end only", start: 0, end: 2, want: "one\ntwo\n"},
		{name: "end clamps to file", start: 3, end: 99, want: "three\nfour\nfive\n"},
		{name: "start past file is empty", start: 10, end: 0, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GetFile(ctx, src, "f.txt", tt.start, tt.end)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetFileEndBeforeStart(t *testing.T) {
	col := catalog.Collection{ID: "c", Kind: catalog.KindDirectory, Source: t.TempDir()}
	require.NoError(t, os.WriteFile(filepath.Join(col.Source, "f.txt"), []byte("a\nb\nc\nd\ne\n"), 0o644))

	_, err := GetFile(context.Background(), OpenDir(col), "f.txt", 5, 3)
	require.Error(t, err)
	assert.True(t, corpuserrors.IsValidation(err))

	var cerr *corpuserrors.CorpusError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "5", cerr.Details["start"])
	assert.Equal(t, "3", cerr.Details["end"])
}

func TestSliceLinesUnterminatedFile(t *testing.T) {
	got, err := sliceLines("a\nb\nc", 2, 3)
	require.NoError(t, err)
	assert.Equal(t, "b\nc", got)

	got, err = sliceLines("a\nb\nc", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\n", got)
}
