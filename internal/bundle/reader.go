package bundle

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"io"
	"strings"

	"github.com/corpuskit/corpus/internal/errors"
)

// DecodedFile is one file recovered from a bundle, in bundle order.
type DecodedFile struct {
	Path    string
	Content string
}

// Bundle is the decoded form of a bundle artifact.
type Bundle struct {
	// Header is the human index block, without the separator line. Empty
	// when the bundle was written without an index header.
	Header string
	Files  []DecodedFile

	byPath map[string]int
}

// Get returns the content of the file at path.
func (b *Bundle) Get(path string) (string, bool) {
	i, ok := b.byPath[path]
	if !ok {
		return "", false
	}
	return b.Files[i].Content, true
}

// Paths returns the bundle's file paths in bundle order.
func (b *Bundle) Paths() []string {
	out := make([]string, len(b.Files))
	for i, f := range b.Files {
		out[i] = f.Path
	}
	return out
}

// Decode unwraps base64 and gzip layers as needed and parses the textual
// bundle body. The wrapping is detected from the data itself: a gzip magic
// number means gzip, otherwise data that decodes as base64-of-gzip is
// treated as base64, otherwise the data is taken as text.
func Decode(data []byte) (*Bundle, error) {
	text, err := Unwrap(data)
	if err != nil {
		return nil, err
	}
	return parseText(text)
}

// Unwrap removes the base64 and gzip layers, returning the textual payload.
// Plain textual input passes through unchanged.
func Unwrap(data []byte) ([]byte, error) {
	if isGzip(data) {
		return gunzip(data)
	}

	trimmed := bytes.TrimSpace(data)
	if decoded, err := base64.StdEncoding.DecodeString(string(trimmed)); err == nil && isGzip(decoded) {
		return gunzip(decoded)
	}

	return data, nil
}

func isGzip(data []byte) bool {
	return len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b
}

func gunzip(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.DecodeError("corrupt gzip bundle", err)
	}
	defer func() { _ = zr.Close() }()

	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, errors.DecodeError("corrupt gzip bundle", err)
	}
	return out, nil
}

// parseText splits the textual bundle into its header and framed files.
func parseText(data []byte) (*Bundle, error) {
	text := string(data)
	b := &Bundle{byPath: make(map[string]int)}

	// Strip the human index header, if present.
	if idx := strings.Index(text, IndexSeparator+"\n"); idx >= 0 {
		b.Header = text[:idx]
		text = strings.TrimPrefix(text[idx+len(IndexSeparator)+1:], "\n")
	}

	for len(text) > 0 {
		start := strings.Index(text, fileStartPrefix)
		if start < 0 {
			break
		}
		text = text[start+len(fileStartPrefix):]

		eol := strings.IndexByte(text, '\n')
		if eol < 0 || !strings.HasSuffix(text[:eol], markerSuffix) {
			return nil, errors.DecodeError("malformed file start marker", nil)
		}
		path := strings.TrimSuffix(text[:eol], markerSuffix)
		text = text[eol+1:]

		endMarker := "\n" + FileEndMarker(path)
		end := strings.Index(text, endMarker)
		if end < 0 {
			return nil, errors.DecodeError("missing end marker for file: "+path, nil).
				WithDetail("path", path)
		}

		if _, dup := b.byPath[path]; dup {
			return nil, errors.DecodeError("duplicate file in bundle: "+path, nil).
				WithDetail("path", path)
		}
		b.byPath[path] = len(b.Files)
		b.Files = append(b.Files, DecodedFile{Path: path, Content: text[:end]})
		text = text[end+len(endMarker):]
	}

	if len(b.Files) == 0 {
		return nil, errors.DecodeError("no file markers found in bundle", nil).
			WithSuggestion("check that the input is a corpus bundle")
	}
	return b, nil
}
