package bundle

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corpuserrors "github.com/corpuskit/corpus/internal/errors"
	"github.com/corpuskit/corpus/internal/selector"
)

// makeEntries writes files under a temp dir and returns entries in the order
// given, mirroring what the selector produces.
func makeEntries(t *testing.T, files []DecodedFile) []selector.FileEntry {
	t.Helper()
	dir := t.TempDir()
	entries := make([]selector.FileEntry, 0, len(files))
	for _, f := range files {
		abs := filepath.Join(dir, filepath.FromSlash(f.Path))
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
		require.NoError(t, os.WriteFile(abs, []byte(f.Content), 0o644))
		entries = append(entries, selector.FileEntry{Path: f.Path, AbsPath: abs, Size: int64(len(f.Content))})
	}
	return entries
}

var sampleFiles = []DecodedFile{
	{Path: "a/main.py", Content: "def main():\n    pass\n"},
	{Path: "readme.md", Content: "# Title\n\nBody without trailing newline"},
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	encodings := []string{"plain", "gzip", "base64"}
	for _, name := range encodings {
		t.Run(name, func(t *testing.T) {
			enc, err := ParseEncoding(name)
			require.NoError(t, err)

			entries := makeEntries(t, sampleFiles)
			header := "a/main.py\t21\t2\nreadme.md\t33\t3\n" + IndexSeparator + "\n\n"
			data, err := NewEncoder(enc).Encode(entries, header)
			require.NoError(t, err)

			b, err := Decode(data)
			require.NoError(t, err)

			assert.Equal(t, []string{"a/main.py", "readme.md"}, b.Paths())
			for _, want := range sampleFiles {
				got, ok := b.Get(want.Path)
				require.True(t, ok)
				assert.Equal(t, want.Content, got)
			}
			assert.Contains(t, b.Header, "a/main.py")
		})
	}
}

func TestBase64UnwrapsToPlainBytes(t *testing.T) {
	entries := makeEntries(t, sampleFiles)
	header := "index\n" + IndexSeparator + "\n\n"

	plain, err := NewEncoder(Encoding{Mode: ModePlain}).Encode(entries, header)
	require.NoError(t, err)

	wrapped, err := NewEncoder(Encoding{Mode: ModePlain, Gzip: true, Base64: true}).Encode(entries, header)
	require.NoError(t, err)
	require.NotEqual(t, plain, wrapped)

	unwrapped, err := Unwrap(wrapped)
	require.NoError(t, err)
	assert.Equal(t, plain, unwrapped)
}

func TestNewEncodingRejectsBase64WithoutGzip(t *testing.T) {
	_, err := NewEncoding(ModePlain, false, true)
	require.Error(t, err)
	assert.True(t, corpuserrors.IsValidation(err))
}

func TestParseEncoding(t *testing.T) {
	tests := []struct {
		name string
		want Encoding
	}{
		{name: "plain", want: Encoding{Mode: ModePlain}},
		{name: "compressed", want: Encoding{Mode: ModeCompressed}},
		{name: "max-compressed", want: Encoding{Mode: ModeMaxCompressed}},
		{name: "gzip", want: Encoding{Mode: ModePlain, Gzip: true}},
		{name: "base64", want: Encoding{Mode: ModePlain, Gzip: true, Base64: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := ParseEncoding(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, enc)
			assert.Equal(t, tt.name, enc.Label())
		})
	}

	_, err := ParseEncoding("zstd")
	require.Error(t, err)
	assert.True(t, corpuserrors.IsValidation(err))
}

func TestCompressText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "trailing spaces", in: "a  \nb\t\n", want: "a\nb\n"},
		{name: "blank run collapsed", in: "a\n\n\n\nb\n", want: "a\n\nb\n"},
		{name: "already compact", in: "a\nb\n", want: "a\nb\n"},
		{name: "whitespace only line is blank", in: "a\n   \n\t\nb\n", want: "a\n\nb\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompressText(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, CompressText(got), "compression is idempotent")
		})
	}
}

func TestStripComments(t *testing.T) {
	tests := []struct {
		name string
		path string
		in   string
		want string
	}{
		{
			name: "go line comment",
			path: "main.go",
			in:   "package main\n\n// doc comment\nfunc main() {} // trailing\n",
			want: "package main\n\nfunc main() {}\n",
		},
		{
			name: "marker inside string kept",
			path: "main.go",
			in:   "s := \"http://example.com\"\n",
			want: "s := \"http://example.com\"\n",
		},
		{
			name: "block comment spanning lines",
			path: "lib.c",
			in:   "int x;\n/* first\nsecond */\nint y;\n",
			want: "int x;\nint y;\n",
		},
		{
			name: "python hash",
			path: "app.py",
			in:   "# module doc\nx = 1  # inline\n",
			want: "x = 1\n",
		},
		{
			name: "unknown extension unchanged",
			path: "notes.txt",
			in:   "# not a comment here\n",
			want: "# not a comment here\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripComments(tt.in, tt.path))
		})
	}
}

func TestMaxCompressedMode(t *testing.T) {
	entries := makeEntries(t, []DecodedFile{
		{Path: "app.py", Content: "# header comment\n\n\ndef f():   \n    return 1  # answer\n"},
	})

	data, err := NewEncoder(Encoding{Mode: ModeMaxCompressed}).Encode(entries, "")
	require.NoError(t, err)

	b, err := Decode(data)
	require.NoError(t, err)
	got, ok := b.Get("app.py")
	require.True(t, ok)
	assert.Equal(t, "\ndef f():\n    return 1\n", got)
}

func TestDecodeCorruptGzip(t *testing.T) {
	_, err := Decode([]byte{0x1f, 0x8b, 0xff, 0x00, 0x01})
	require.Error(t, err)
	assert.True(t, corpuserrors.IsDecodeError(err))
}

func TestDecodeMissingEndMarker(t *testing.T) {
	text := FileStartMarker("a.txt") + "\ncontent without end\n"
	_, err := Decode([]byte(text))
	require.Error(t, err)
	assert.True(t, corpuserrors.IsDecodeError(err))
}

func TestDecodeNoMarkers(t *testing.T) {
	_, err := Decode([]byte("just some text\n"))
	require.Error(t, err)
	assert.True(t, corpuserrors.IsDecodeError(err))
}

func TestDecodeDuplicatePath(t *testing.T) {
	text := FileStartMarker("a.txt") + "\none\n" + FileEndMarker("a.txt") + "\n\n" +
		FileStartMarker("a.txt") + "\ntwo\n" + FileEndMarker("a.txt") + "\n\n"
	_, err := Decode([]byte(text))
	require.Error(t, err)
	assert.True(t, corpuserrors.IsDecodeError(err))
}

func TestWriteAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "bundle.txt")

	require.NoError(t, WriteAtomic(path, []byte("first")))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))

	require.NoError(t, WriteAtomic(path, []byte("second")))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), ".corpus-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers, "no temp files left behind")
}
