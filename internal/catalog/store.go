package catalog

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"

	"github.com/corpuskit/corpus/internal/errors"
)

// lockRetry is the poll interval while waiting for the catalog lock.
const lockRetry = 50 * time.Millisecond

// Store persists the catalog to a YAML file. Reads load a snapshot of the
// file as it is at call time; mutations take an exclusive flock for the
// load-modify-write cycle.
type Store struct {
	path   string
	logger *slog.Logger
}

// NewStore creates a store over the given catalog file path.
func NewStore(path string) *Store {
	return &Store{path: path, logger: slog.Default()}
}

// Path returns the backing file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the current catalog snapshot. A missing file is an empty
// catalog, not an error.
func (s *Store) Load() (*Catalog, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Catalog{}, nil
		}
		return nil, errors.IO("failed to read catalog", err).WithDetail("path", s.path)
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errors.DecodeError("malformed catalog file", err).WithDetail("path", s.path)
	}
	return &c, nil
}

// AddOptions configures a registration.
type AddOptions struct {
	// Source is the bundle file or directory to register.
	Source string
	// ID overrides slug derivation. Without it the id is a slug of Name,
	// or of Source when Name is empty. A duplicate explicit ID is a
	// conflict unless Overwrite is set; a derived slug is deduplicated
	// instead.
	ID        string
	Name      string
	Kind      Kind // auto-detected from Source when empty
	Tags      []string
	Overwrite bool
}

// Add registers a collection and returns the stored entry.
func (s *Store) Add(ctx context.Context, opts AddOptions) (Collection, error) {
	abs, err := filepath.Abs(opts.Source)
	if err != nil {
		return Collection{}, errors.Validation("invalid source path: "+opts.Source, err)
	}

	kind := opts.Kind
	if kind == "" {
		info, err := os.Stat(abs)
		if err != nil {
			return Collection{}, errors.NotFound("source not found: "+abs, err)
		}
		if info.IsDir() {
			kind = KindDirectory
		} else {
			kind = KindBundle
		}
	}

	var added Collection
	err = s.mutate(ctx, func(c *Catalog) error {
		id := opts.ID
		switch {
		case id == "":
			base := opts.Name
			if base == "" {
				base = abs
			}
			id = uniqueSlug(c, Slug(base))
		case !opts.Overwrite:
			if _, taken := c.Get(id); taken {
				return errors.Conflict("collection id already registered: "+id, nil).
					WithDetail("id", id).
					WithSuggestion("pass a different id or use --force to replace it")
			}
		default:
			c.remove(id)
		}

		added = Collection{
			ID:      id,
			Name:    opts.Name,
			Kind:    kind,
			Source:  abs,
			Tags:    normalizeTags(opts.Tags),
			AddedAt: time.Now().UTC().Truncate(time.Second),
		}
		c.Collections = append(c.Collections, added)
		return nil
	})
	if err != nil {
		return Collection{}, err
	}

	s.logger.Info("collection registered",
		slog.String("id", added.ID),
		slog.String("kind", string(added.Kind)),
		slog.String("source", added.Source))
	return added, nil
}

// Remove unregisters a collection by id. The underlying bundle or directory
// is left untouched.
func (s *Store) Remove(ctx context.Context, id string) error {
	return s.mutate(ctx, func(c *Catalog) error {
		if !c.remove(id) {
			return errors.NotFound("unknown collection: "+id, nil).WithDetail("id", id)
		}
		return nil
	})
}

// List returns all registered collections in registration order.
func (s *Store) List() ([]Collection, error) {
	c, err := s.Load()
	if err != nil {
		return nil, err
	}
	return c.Collections, nil
}

// Get looks up one collection by id.
func (s *Store) Get(id string) (Collection, error) {
	c, err := s.Load()
	if err != nil {
		return Collection{}, err
	}
	col, ok := c.Get(id)
	if !ok {
		return Collection{}, errors.NotFound("unknown collection: "+id, nil).WithDetail("id", id)
	}
	return col, nil
}

// remove deletes the entry with the given id, reporting whether it existed.
func (c *Catalog) remove(id string) bool {
	for i, col := range c.Collections {
		if col.ID == id {
			c.Collections = append(c.Collections[:i], c.Collections[i+1:]...)
			return true
		}
	}
	return false
}

// mutate runs fn over the catalog under the exclusive file lock and persists
// the result atomically.
func (s *Store) mutate(ctx context.Context, fn func(*Catalog) error) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.IO("failed to create catalog directory", err).WithDetail("path", s.path)
	}

	fl := flock.New(s.path + ".lock")
	locked, err := fl.TryLockContext(ctx, lockRetry)
	if err != nil {
		if ctx.Err() != nil {
			return errors.Timeout("timed out waiting for catalog lock", err)
		}
		return errors.IO("failed to acquire catalog lock", err).WithDetail("path", s.path)
	}
	if !locked {
		return errors.IO("failed to acquire catalog lock", nil).WithDetail("path", s.path)
	}
	defer func() { _ = fl.Unlock() }()

	c, err := s.Load()
	if err != nil {
		return err
	}
	if err := fn(c); err != nil {
		return err
	}
	return s.save(c)
}

// save writes the catalog through a temp file and rename.
func (s *Store) save(c *Catalog) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Internal("failed to marshal catalog", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".catalog-*.tmp")
	if err != nil {
		return errors.IO("failed to create temporary catalog file", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.IO("failed to write catalog", err).WithDetail("path", s.path)
	}
	if err := tmp.Close(); err != nil {
		return errors.IO("failed to flush catalog", err).WithDetail("path", s.path)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return errors.IO("failed to set catalog permissions", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return errors.IO("failed to replace catalog", err).WithDetail("path", s.path)
	}
	return nil
}
