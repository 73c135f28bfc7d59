package blobstore

import (
	"context"
	"errors"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hupe1980/typedjson/internal/fs"
)

const tmpSuffix = ".tmp"

// LocalStore implements Store using the local file system.
//
// Blob names map to paths below the root directory. Writes go through a
// temporary file that is synced and renamed into place.
type LocalStore struct {
	root string
	fs   fs.FileSystem
	perm os.FileMode
}

// LocalOption configures a LocalStore.
type LocalOption func(*LocalStore)

// WithFileSystem replaces the file system, e.g. with fs.FaultyFS in tests.
func WithFileSystem(fsys fs.FileSystem) LocalOption {
	return func(s *LocalStore) {
		s.fs = fsys
	}
}

// WithFileMode sets the permission bits of created blobs. Default 0644.
func WithFileMode(perm os.FileMode) LocalOption {
	return func(s *LocalStore) {
		s.perm = perm
	}
}

// NewLocalStore creates a new LocalStore rooted at the given directory.
func NewLocalStore(root string, optFns ...LocalOption) *LocalStore {
	s := &LocalStore{root: root, fs: fs.Default, perm: 0o644}
	for _, fn := range optFns {
		fn(s)
	}
	return s
}

// Root returns the root directory.
func (s *LocalStore) Root() string { return s.root }

func (s *LocalStore) path(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(name)), nil
}

// Get reads a blob.
func (s *LocalStore) Get(_ context.Context, name string) ([]byte, error) {
	p, err := s.path(name)
	if err != nil {
		return nil, err
	}
	return s.fs.ReadFile(p)
}

// Put writes a blob atomically.
func (s *LocalStore) Put(_ context.Context, name string, data []byte) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	if err := s.fs.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	return fs.WriteFileAtomic(s.fs, p, data, s.perm)
}

// Delete removes a blob.
func (s *LocalStore) Delete(_ context.Context, name string) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// List returns all blob names with the given prefix. Temporary files of
// unfinished writes are skipped.
func (s *LocalStore) List(_ context.Context, prefix string) ([]string, error) {
	var names []string
	if err := s.walk("", prefix, &names); err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

func (s *LocalStore) walk(dir, prefix string, names *[]string) error {
	entries, err := s.fs.ReadDir(filepath.Join(s.root, filepath.FromSlash(dir)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		name := e.Name()
		if dir != "" {
			name = path.Join(dir, name)
		}
		if e.IsDir() {
			// Only descend into directories that can contain matches.
			if strings.HasPrefix(name+"/", prefix) || strings.HasPrefix(prefix, name+"/") {
				if err := s.walk(name, prefix, names); err != nil {
					return err
				}
			}
			continue
		}
		if strings.HasSuffix(name, tmpSuffix) || !strings.HasPrefix(name, prefix) {
			continue
		}
		*names = append(*names, name)
	}
	return nil
}
