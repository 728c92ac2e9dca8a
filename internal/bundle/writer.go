package bundle

import (
	"os"
	"path/filepath"

	"github.com/corpuskit/corpus/internal/errors"
)

// WriteAtomic writes data to path through a temporary file in the same
// directory followed by a rename, so readers never observe a partial bundle.
func WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.IO("failed to create output directory", err).WithDetail("dir", dir)
	}

	tmp, err := os.CreateTemp(dir, ".corpus-*.tmp")
	if err != nil {
		return errors.IO("failed to create temporary file", err).WithDetail("dir", dir)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.IO("failed to write bundle", err).WithDetail("path", path)
	}
	if err := tmp.Close(); err != nil {
		return errors.IO("failed to flush bundle", err).WithDetail("path", path)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return errors.IO("failed to set bundle permissions", err).WithDetail("path", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errors.IO("failed to move bundle into place", err).WithDetail("path", path)
	}
	return nil
}
