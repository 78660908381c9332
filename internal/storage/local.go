package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps files in a single directory
type LocalStore struct {
	dir string
}

// NewLocalStore creates dir if needed and returns a store rooted there
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// Dir returns the output directory
func (s *LocalStore) Dir() string {
	return s.dir
}

// Save writes data through a temp file and renames it into place
func (s *LocalStore) Save(ctx context.Context, name string, data []byte, contentType string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing %s: %w", name, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("setting permissions on %s: %w", name, err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming %s: %w", name, err)
	}
	return nil
}

// Open opens a stored file for reading
func (s *LocalStore) Open(ctx context.Context, name string) (io.ReadCloser, FileInfo, error) {
	if err := ValidateName(name); err != nil {
		return nil, FileInfo{}, err
	}

	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, FileInfo{}, ErrNotFound
		}
		return nil, FileInfo{}, fmt.Errorf("opening %s: %w", name, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, FileInfo{}, fmt.Errorf("stat %s: %w", name, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, FileInfo{}, ErrNotFound
	}

	return f, FileInfo{Name: name, Size: info.Size(), ModTime: info.ModTime()}, nil
}

// List returns the regular files of the directory
func (s *LocalStore) List(ctx context.Context) ([]FileInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading output directory: %w", err)
	}

	files := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Removed between ReadDir and Info
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("stat %s: %w", entry.Name(), err)
		}
		files = append(files, FileInfo{Name: entry.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}
	return files, nil
}

// Delete removes a stored file
func (s *LocalStore) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("deleting %s: %w", name, err)
	}
	return nil
}

// Close is a no-op
func (s *LocalStore) Close() error {
	return nil
}
