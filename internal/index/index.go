// Package index renders the two index artifacts derived from a selection:
// the human-readable header prepended to a bundle and the machine-readable
// Corpus v1 manifest written as a JSON sidecar.
package index

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/corpuskit/corpus/internal/bundle"
	"github.com/corpuskit/corpus/internal/errors"
	"github.com/corpuskit/corpus/internal/selector"
)

// SchemaVersion identifies the manifest schema.
const SchemaVersion = "corpus/v1"

// Root kinds for the manifest's root descriptor.
const (
	RootDirectory = "directory"
	RootRepo      = "repo"
)

// Root describes where the bundled files came from.
type Root struct {
	Kind   string `json:"kind"`
	Source string `json:"source"`
}

// ManifestFile is one file's row in the manifest.
type ManifestFile struct {
	Path  string `json:"path"`
	Size  int64  `json:"size"`
	Lines int    `json:"lines"`
}

// Manifest is the Corpus v1 machine-readable index. It is built from the
// same ordered entries the encoder consumed, so membership and order always
// match the bundle.
type Manifest struct {
	Schema      string         `json:"schema"`
	GeneratedAt time.Time      `json:"generatedAt"`
	Root        Root           `json:"root"`
	Encoding    string         `json:"encoding"`
	TotalBytes  int64          `json:"totalBytes"`
	Files       []ManifestFile `json:"files"`
}

// NewManifest builds a manifest over the ordered selection.
func NewManifest(files []selector.FileEntry, root Root, enc bundle.Encoding) *Manifest {
	m := &Manifest{
		Schema:      SchemaVersion,
		GeneratedAt: time.Now().UTC().Truncate(time.Second),
		Root:        root,
		Encoding:    enc.Label(),
		Files:       make([]ManifestFile, 0, len(files)),
	}
	for _, f := range files {
		m.TotalBytes += f.Size
		m.Files = append(m.Files, ManifestFile{Path: f.Path, Size: f.Size, Lines: f.Lines})
	}
	return m
}

// SidecarPath returns the manifest path for a bundle output path.
func SidecarPath(bundlePath string) string {
	return bundlePath + ".index.json"
}

// Encode serializes the manifest with stable two-space indentation so
// sidecar files diff cleanly across runs.
func (m *Manifest) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, errors.Internal("failed to marshal manifest", err)
	}
	return append(data, '\n'), nil
}

// ParseManifest decodes a Corpus v1 manifest, rejecting unknown schemas.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.DecodeError("malformed manifest JSON", err)
	}
	if m.Schema != SchemaVersion {
		return nil, errors.DecodeError("unsupported manifest schema: "+m.Schema, nil).
			WithDetail("schema", m.Schema).
			WithSuggestion("expected schema " + SchemaVersion)
	}
	return &m, nil
}

// HumanHeader renders the index block prepended to textual bundles: one
// tab-separated line per file followed by the separator line and a blank
// line before the first file's content.
func HumanHeader(files []selector.FileEntry) string {
	var b strings.Builder
	for _, f := range files {
		fmt.Fprintf(&b, "%s\t%d\t%d\n", f.Path, f.Size, f.Lines)
	}
	b.WriteString(bundle.IndexSeparator)
	b.WriteString("\n\n")
	return b.String()
}
