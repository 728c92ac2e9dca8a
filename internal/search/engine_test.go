package search

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpuskit/corpus/internal/catalog"
	corpuserrors "github.com/corpuskit/corpus/internal/errors"
)

// memSource is an in-memory source for engine tests.
type memSource struct {
	paths []string
	files map[string]string
}

func newMemSource(ordered []string, files map[string]string) *memSource {
	return &memSource{paths: ordered, files: files}
}

func (m *memSource) Collection() catalog.Collection {
	return catalog.Collection{ID: "mem", Kind: catalog.KindDirectory}
}

func (m *memSource) Paths(_ context.Context) ([]string, error) {
	return m.paths, nil
}

func (m *memSource) Content(_ context.Context, path string) (string, error) {
	content, ok := m.files[path]
	if !ok {
		return "", corpuserrors.NotFound("no such file: "+path, nil)
	}
	return content, nil
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "words", query: "connect timeout", want: []string{"connect", "timeout"}},
		{name: "punctuation boundaries", query: "db.connect(timeout=5)", want: []string{"db", "connect", "timeout", "5"}},
		{name: "case folded", query: "Connect TIMEOUT", want: []string{"connect", "timeout"}},
		{name: "duplicates dropped", query: "retry retry retry", want: []string{"retry"}},
		{name: "empty", query: "", want: []string{}},
		{name: "only punctuation", query: "!!! ---", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.query, false)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTokenizeCaseSensitive(t *testing.T) {
	assert.Equal(t, []string{"Connect", "Timeout"}, Tokenize("Connect Timeout", true))
}

func TestSearchRanksBothTermsAboveOne(t *testing.T) {
	lines := make([]string, 50)
	for i := range lines {
		lines[i] = "filler"
	}
	lines[41] = "# connect timeout handling"
	clientGo := strings.Join(lines, "\n") + "\n"

	utilLines := make([]string, 10)
	for i := range utilLines {
		utilLines[i] = "filler"
	}
	utilLines[6] = "# timeout only"
	utilGo := strings.Join(utilLines, "\n") + "\n"

	src := newMemSource([]string{"client.go", "util.go"}, map[string]string{
		"client.go": clientGo,
		"util.go":   utilGo,
	})

	results, err := NewEngine().Search(context.Background(), src, "connect timeout", Options{})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "client.go", results[0].Path)
	assert.Equal(t, 42, results[0].Line)
	assert.Equal(t, "util.go", results[1].Path)
	assert.Equal(t, 7, results[1].Line)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestFullQueryOutranksScatteredTerms(t *testing.T) {
	src := newMemSource([]string{"a.txt"}, map[string]string{
		"a.txt": "retry the connection after a very long timeout elapses\nconnect timeout\n",
	})

	results, err := NewEngine().Search(context.Background(), src, "connect timeout", Options{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 2, results[0].Line, "contiguous full-query match ranks first")
}

func TestSearchEmptyQuery(t *testing.T) {
	src := newMemSource([]string{"a.txt"}, map[string]string{"a.txt": "content\n"})

	results, err := NewEngine().Search(context.Background(), src, "   ", Options{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchDeterministic(t *testing.T) {
	src := newMemSource([]string{"a.txt", "b.txt"}, map[string]string{
		"a.txt": "alpha beta\nbeta\nalpha\n",
		"b.txt": "beta alpha\nalpha beta gamma\n",
	})
	engine := NewEngine()

	first, err := engine.Search(context.Background(), src, "alpha beta", Options{})
	require.NoError(t, err)
	second, err := engine.Search(context.Background(), src, "alpha beta", Options{})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSearchTieBreakByPathThenLine(t *testing.T) {
	src := newMemSource([]string{"b.txt", "a.txt"}, map[string]string{
		"a.txt": "token\ntoken\n",
		"b.txt": "token\n",
	})

	results, err := NewEngine().Search(context.Background(), src, "token", Options{})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "a.txt", results[0].Path)
	assert.Equal(t, 1, results[0].Line)
	assert.Equal(t, "a.txt", results[1].Path)
	assert.Equal(t, 2, results[1].Line)
	assert.Equal(t, "b.txt", results[2].Path)
}

func TestSearchTopK(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 100; i++ {
		b.WriteString("needle here\n")
	}
	src := newMemSource([]string{"a.txt"}, map[string]string{"a.txt": b.String()})
	engine := NewEngine()

	results, err := engine.Search(context.Background(), src, "needle", Options{})
	require.NoError(t, err)
	assert.Len(t, results, DefaultTopK)

	results, err = engine.Search(context.Background(), src, "needle", Options{TopK: 3})
	require.NoError(t, err)
	assert.Len(t, results, 3)

	_, err = engine.Search(context.Background(), src, "needle", Options{TopK: MaxTopK + 1})
	require.Error(t, err)
	assert.True(t, corpuserrors.IsValidation(err))
}

func TestSearchCaseSensitive(t *testing.T) {
	src := newMemSource([]string{"a.txt"}, map[string]string{"a.txt": "Timeout\ntimeout\n"})
	engine := NewEngine()

	results, err := engine.Search(context.Background(), src, "Timeout", Options{CaseSensitive: true})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].Line)

	results, err = engine.Search(context.Background(), src, "Timeout", Options{})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearchProximityBonus(t *testing.T) {
	src := newMemSource([]string{"a.txt"}, map[string]string{
		"a.txt": "beta alpha\nalpha " + strings.Repeat("x", 60) + " beta\n",
	})

	results, err := NewEngine().Search(context.Background(), src, "alpha beta", Options{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 1, results[0].Line, "adjacent terms outrank distant terms")
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestSearchCanceledContext(t *testing.T) {
	src := newMemSource([]string{"a.txt"}, map[string]string{"a.txt": "needle\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEngine().Search(ctx, src, "needle", Options{})
	require.Error(t, err)
	assert.True(t, corpuserrors.IsTimeout(err))
}
