package bundle

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"os"

	"github.com/corpuskit/corpus/internal/errors"
	"github.com/corpuskit/corpus/internal/selector"
)

// Encoder renders a selected file set into a single bundle artifact.
type Encoder struct {
	enc Encoding
}

// NewEncoder creates an encoder for the given encoding.
func NewEncoder(enc Encoding) *Encoder {
	return &Encoder{enc: enc}
}

// Encode reads each file from disk and serializes the set in order, framed by
// start and end markers, with the human index header (if any) prepended
// before the first file. The gzip and base64 layers wrap the complete textual
// payload, header included, so unwrapping reproduces the textual bundle
// exactly.
func (e *Encoder) Encode(files []selector.FileEntry, header string) ([]byte, error) {
	contents := make(map[string]string, len(files))
	for _, f := range files {
		raw, err := os.ReadFile(f.AbsPath)
		if err != nil {
			return nil, errors.IO("failed to read file for bundling", err).WithDetail("path", f.Path)
		}
		contents[f.Path] = string(raw)
	}
	return e.EncodeContents(files, contents, header)
}

// EncodeContents is the in-memory variant of Encode, for callers that already
// hold file contents keyed by the entries' relative paths.
func (e *Encoder) EncodeContents(entries []selector.FileEntry, contents map[string]string, header string) ([]byte, error) {
	var body bytes.Buffer
	if header != "" {
		body.WriteString(header)
	}

	for _, f := range entries {
		content, ok := contents[f.Path]
		if !ok {
			return nil, errors.Internal("missing content for bundled file: "+f.Path, nil)
		}
		body.WriteString(FileStartMarker(f.Path))
		body.WriteByte('\n')
		body.WriteString(e.enc.transform(content, f.Path))
		body.WriteByte('\n')
		body.WriteString(FileEndMarker(f.Path))
		body.WriteString("\n\n")
	}

	out := body.Bytes()
	if e.enc.Gzip {
		var err error
		out, err = gzipBytes(out)
		if err != nil {
			return nil, errors.Internal("gzip compression failed", err)
		}
	}
	if e.enc.Base64 {
		enc := make([]byte, base64.StdEncoding.EncodedLen(len(out)))
		base64.StdEncoding.Encode(enc, out)
		out = enc
	}
	return out, nil
}

func gzipBytes(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
