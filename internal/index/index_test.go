package index

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpuskit/corpus/internal/bundle"
	corpuserrors "github.com/corpuskit/corpus/internal/errors"
	"github.com/corpuskit/corpus/internal/selector"
)

var entries = []selector.FileEntry{
	{Path: "a/main.py", Size: 21, Lines: 2},
	{Path: "readme.md", Size: 33, Lines: 3},
}

func TestHumanHeader(t *testing.T) {
	header := HumanHeader(entries)

	lines := strings.Split(header, "\n")
	assert.Equal(t, "a/main.py\t21\t2", lines[0])
	assert.Equal(t, "readme.md\t33\t3", lines[1])
	assert.Equal(t, bundle.IndexSeparator, lines[2])
	assert.True(t, strings.HasSuffix(header, bundle.IndexSeparator+"\n\n"))
}

func TestManifestRoundTrip(t *testing.T) {
	enc, err := bundle.ParseEncoding("gzip")
	require.NoError(t, err)

	m := NewManifest(entries, Root{Kind: RootDirectory, Source: "/data/repo"}, enc)
	assert.Equal(t, SchemaVersion, m.Schema)
	assert.Equal(t, int64(54), m.TotalBytes)
	assert.Equal(t, "gzip", m.Encoding)

	data, err := m.Encode()
	require.NoError(t, err)

	parsed, err := ParseManifest(data)
	require.NoError(t, err)
	assert.Equal(t, m.Root, parsed.Root)
	require.Len(t, parsed.Files, 2)
	assert.Equal(t, "a/main.py", parsed.Files[0].Path)
	assert.Equal(t, 3, parsed.Files[1].Lines)
}

func TestManifestPreservesSelectionOrder(t *testing.T) {
	m := NewManifest(entries, Root{Kind: RootDirectory, Source: "."}, bundle.Encoding{})
	paths := make([]string, 0, len(m.Files))
	for _, f := range m.Files {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{"a/main.py", "readme.md"}, paths)
}

func TestParseManifestRejectsUnknownSchema(t *testing.T) {
	_, err := ParseManifest([]byte(`{"schema":"corpus/v9","files":[]}`))
	require.Error(t, err)
	assert.True(t, corpuserrors.IsDecodeError(err))
}

func TestParseManifestRejectsGarbage(t *testing.T) {
	_, err := ParseManifest([]byte("not json"))
	require.Error(t, err)
	assert.True(t, corpuserrors.IsDecodeError(err))
}

func TestSidecarPath(t *testing.T) {
	assert.Equal(t, "out/bundle.txt.index.json", SidecarPath("out/bundle.txt"))
}
