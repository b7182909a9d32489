/*
Package fstree provides a dead simple file-based storage backend.
Every key is a file below the base path, so stored records can also be used
directly by external tools (eg. cmsearch on CMs/RF00001.cm).
*/
package fstree

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/renameio"

	"github.com/safing/biodb/storage"
)

const (
	defaultFileMode = os.FileMode(0o644)
	defaultDirMode  = os.FileMode(0o755)
)

// FSTree storage.
type FSTree struct {
	name     string
	basePath string
}

func init() {
	_ = storage.Register("fstree", NewFSTree)
}

// NewFSTree returns a (new) FSTree storage.
func NewFSTree(name, location string) (storage.Interface, error) {
	basePath, err := filepath.Abs(location)
	if err != nil {
		return nil, fmt.Errorf("fstree: failed to validate path %s: %w", location, err)
	}

	file, err := os.Stat(basePath)
	switch {
	case os.IsNotExist(err):
		err = os.MkdirAll(basePath, defaultDirMode)
		if err != nil {
			return nil, fmt.Errorf("fstree: failed to create directory %s: %w", basePath, err)
		}
	case err != nil:
		return nil, fmt.Errorf("fstree: failed to stat path %s: %w", basePath, err)
	case !file.IsDir():
		return nil, fmt.Errorf("fstree: provided storage path (%s) is a file", basePath)
	}

	return &FSTree{
		name:     name,
		basePath: basePath,
	}, nil
}

func (fst *FSTree) buildFilePath(key string) (string, error) {
	err := storage.CheckKey(key)
	if err != nil {
		return "", err
	}
	// build filepath
	dstPath := filepath.Join(fst.basePath, filepath.FromSlash(key)) // Join also calls Clean()
	if !strings.HasPrefix(dstPath, fst.basePath+string(filepath.Separator)) {
		return "", fmt.Errorf("fstree: key integrity check failed, compiled path is %s", dstPath)
	}
	return dstPath, nil
}

// Location returns the file path of key.
func (fst *FSTree) Location(key string) string {
	return filepath.Join(fst.basePath, filepath.FromSlash(key))
}

// Get returns the data stored at key.
func (fst *FSTree) Get(key string) ([]byte, error) {
	dstPath, err := fst.buildFilePath(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(dstPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("fstree: failed to read file %s: %w", dstPath, err)
	}
	return data, nil
}

// Exists returns whether key exists.
func (fst *FSTree) Exists(key string) (bool, error) {
	dstPath, err := fst.buildFilePath(key)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(dstPath)
	switch {
	case os.IsNotExist(err):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("fstree: failed to stat %s: %w", dstPath, err)
	default:
		return !info.IsDir(), nil
	}
}

// Put stores data at key. The file is replaced atomically.
func (fst *FSTree) Put(key string, data []byte) error {
	dstPath, err := fst.buildFilePath(key)
	if err != nil {
		return err
	}

	err = renameio.WriteFile(dstPath, data, defaultFileMode)
	if err != nil {
		// create dir and try again
		err = os.MkdirAll(filepath.Dir(dstPath), defaultDirMode)
		if err != nil {
			return fmt.Errorf("fstree: failed to create directory %s: %w", filepath.Dir(dstPath), err)
		}
		err = renameio.WriteFile(dstPath, data, defaultFileMode)
		if err != nil {
			return fmt.Errorf("fstree: could not write file %s: %w", dstPath, err)
		}
	}

	return nil
}

// Delete deletes the entry at key.
func (fst *FSTree) Delete(key string) error {
	dstPath, err := fst.buildFilePath(key)
	if err != nil {
		return err
	}

	// remove entry
	err = os.Remove(dstPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("fstree: could not delete %s: %w", dstPath, err)
	}

	return nil
}

// Keys returns all keys with the given prefix in ascending order.
func (fst *FSTree) Keys(prefix string) ([]string, error) {
	// start walking at the deepest directory of the prefix
	walkRoot := fst.basePath
	if idx := strings.LastIndex(prefix, "/"); idx > 0 {
		walkRoot = filepath.Join(fst.basePath, filepath.FromSlash(prefix[:idx]))
	}

	var keys []string
	err := filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
		switch {
		case err != nil && errors.Is(err, fs.ErrNotExist):
			return filepath.SkipDir
		case err != nil:
			return fmt.Errorf("fstree: error in walking fs: %w", err)
		case d.IsDir():
			return nil
		}

		key, err := filepath.Rel(fst.basePath, path)
		if err != nil {
			return fmt.Errorf("fstree: failed to extract key from filepath %s: %w", path, err)
		}
		key = filepath.ToSlash(key)
		// skip temporary files of pending writes
		if strings.HasPrefix(filepath.Base(path), ".") {
			return nil
		}
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil && !errors.Is(err, filepath.SkipDir) {
		return nil, err
	}

	sort.Strings(keys)
	return keys, nil
}

// Shutdown shuts down the storage.
func (fst *FSTree) Shutdown() error {
	return nil
}
