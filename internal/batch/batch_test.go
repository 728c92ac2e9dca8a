package batch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpuskit/corpus/internal/catalog"
	corpuserrors "github.com/corpuskit/corpus/internal/errors"
)

func TestLoadJobs(t *testing.T) {
	input := `
{"root": "/data/a", "include": ["**/*.go"], "id": "a"}
# a comment line

{"root": "/data/b", "encoding": "gzip"}
`
	jobs, err := LoadJobs(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "/data/a", jobs[0].Root)
	assert.Equal(t, []string{"**/*.go"}, jobs[0].Include)
	assert.Equal(t, "gzip", jobs[1].Encoding)
}

func TestLoadJobsMalformedLine(t *testing.T) {
	_, err := LoadJobs(strings.NewReader(`{"root": "/data/a"}` + "\n{broken\n"))
	require.Error(t, err)
	assert.True(t, corpuserrors.IsValidation(err))
	assert.Contains(t, err.Error(), "line 2")

	var cerr *corpuserrors.CorpusError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "2", cerr.Details["line"])
}

func TestLoadJobsMissingRoot(t *testing.T) {
	_, err := LoadJobs(strings.NewReader(`{"id": "a"}`))
	require.Error(t, err)
	assert.True(t, corpuserrors.IsValidation(err))
}

func makeRoot(t *testing.T, name string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n"), 0o644))
	return dir
}

func TestRunExecutesAllJobs(t *testing.T) {
	store := catalog.NewStore(filepath.Join(t.TempDir(), "catalog.yaml"))
	outDir := t.TempDir()

	jobs := []Job{
		{Root: makeRoot(t, "alpha"), Output: filepath.Join(outDir, "alpha.txt"), ID: "alpha"},
		{Root: makeRoot(t, "beta"), Output: filepath.Join(outDir, "beta.txt"), ID: "beta", Encoding: "gzip"},
	}

	results, err := NewRunner(store, 2).Run(context.Background(), jobs)
	require.NoError(t, err)
	require.Len(t, results, 2)

	for _, res := range results {
		require.NoError(t, res.Err)
		require.NotNil(t, res.Result)
		assert.FileExists(t, res.Result.BundlePath)
		assert.FileExists(t, res.Result.ManifestPath)
	}

	cols, err := store.List()
	require.NoError(t, err)
	assert.Len(t, cols, 2)
}

func TestRunFailFast(t *testing.T) {
	outDir := t.TempDir()
	jobs := []Job{
		{Root: filepath.Join(t.TempDir(), "missing"), Output: filepath.Join(outDir, "bad.txt")},
		{Root: makeRoot(t, "good"), Output: filepath.Join(outDir, "good.txt")},
	}

	results, err := NewRunner(nil, 1).Run(context.Background(), jobs)
	require.Error(t, err)
	require.Len(t, results, 2)
	assert.Error(t, results[0].Err)
	assert.True(t, corpuserrors.IsNotFound(results[0].Err))
}

func TestRunWithoutStoreSkipsRegistration(t *testing.T) {
	jobs := []Job{
		{Root: makeRoot(t, "alpha"), Output: filepath.Join(t.TempDir(), "a.txt"), ID: "alpha"},
	}

	results, err := NewRunner(nil, 2).Run(context.Background(), jobs)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Nil(t, results[0].Result.Collection)
}
