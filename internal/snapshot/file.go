package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore keeps blobs as files in one directory. Writes go to a temporary
// file in the same directory which is then renamed over the destination, so
// readers see either the old or the new content.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) WriteBlob(ctx context.Context, name string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if name == "" || name != filepath.Base(name) {
		return fmt.Errorf("invalid blob name %q", name)
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("error creating output directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("error creating temporary file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("error syncing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error closing %s: %w", name, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("error setting permissions on %s: %w", name, err)
	}

	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("error replacing %s: %w", name, err)
	}
	return nil
}

func (s *FileStore) ReadBlob(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", name, err)
	}
	return data, nil
}

func (s *FileStore) Close() error { return nil }
