// Package catalog maintains the named registry of collections a corpus
// installation knows about. The registry is a YAML file under CORPUS_HOME,
// mutated under an advisory file lock so concurrent CLI invocations never
// lose updates.
package catalog

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Kind distinguishes how a collection's files are read.
type Kind string

const (
	// KindBundle points at a packed bundle artifact.
	KindBundle Kind = "bundle"
	// KindDirectory points at a raw directory tree.
	KindDirectory Kind = "directory"
)

// Collection is one catalog entry.
type Collection struct {
	ID      string    `yaml:"id"`
	Name    string    `yaml:"name,omitempty"`
	Kind    Kind      `yaml:"kind"`
	Source  string    `yaml:"source"`
	Tags    []string  `yaml:"tags,omitempty"`
	AddedAt time.Time `yaml:"addedAt"`
}

// Catalog is the persisted registry document.
type Catalog struct {
	Collections []Collection `yaml:"collections"`
}

// Get returns the collection with the given id.
func (c *Catalog) Get(id string) (Collection, bool) {
	for _, col := range c.Collections {
		if col.ID == id {
			return col, true
		}
	}
	return Collection{}, false
}

const catalogFile = "catalog.yaml"

// DefaultPath resolves the catalog location: $CORPUS_HOME/catalog.yaml when
// set, otherwise ~/.local/share/corpus/catalog.yaml.
func DefaultPath() (string, error) {
	if home := os.Getenv("CORPUS_HOME"); home != "" {
		return filepath.Join(home, catalogFile), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "corpus", catalogFile), nil
}

// Slug derives a catalog id from a display name, source path or URL: the
// final path element, lowercased, with runs of non-alphanumerics collapsed
// to single hyphens.
func Slug(source string) string {
	base := strings.TrimRight(source, "/")
	if i := strings.LastIndexAny(base, "/\\"); i >= 0 {
		base = base[i+1:]
	}
	base = strings.TrimSuffix(base, ".git")
	base = strings.ToLower(base)

	var b strings.Builder
	hyphen := false
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			hyphen = false
		default:
			if !hyphen && b.Len() > 0 {
				b.WriteByte('-')
				hyphen = true
			}
		}
	}
	slug := strings.TrimRight(b.String(), "-")
	if slug == "" {
		slug = "collection"
	}
	return slug
}

// normalizeTags returns the tags sorted with duplicates and blanks removed.
func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	if len(out) == 0 {
		return nil
	}
	return out
}

// uniqueSlug appends a numeric suffix until the slug is free in the catalog.
func uniqueSlug(c *Catalog, base string) string {
	if _, taken := c.Get(base); !taken {
		return base
	}
	for n := 2; ; n++ {
		candidate := base + "-" + strconv.Itoa(n)
		if _, taken := c.Get(candidate); !taken {
			return candidate
		}
	}
}
