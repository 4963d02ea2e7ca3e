package kv

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/spf13/afero"
)

// FileBackend stores one file per key under a directory. Keys are path-escaped so any
// string is a valid key.
type FileBackend struct {
	mu    sync.Mutex
	fs    afero.Fs
	dir   string
	quota int64
}

// NewFileBackend creates the directory if needed. quota <= 0 means unlimited; otherwise the
// summed size of all stored files may not exceed it.
func NewFileBackend(fsys afero.Fs, dir string, quota int64) (*FileBackend, error) {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	if err := fsys.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create store directory %s: %w", dir, err)
	}
	return &FileBackend{fs: fsys, dir: dir, quota: quota}, nil
}

func (f *FileBackend) path(key string) string {
	return filepath.Join(f.dir, url.PathEscape(key)+".json")
}

func (f *FileBackend) Get(_ context.Context, key string) ([]byte, error) {
	data, err := afero.ReadFile(f.fs, f.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

func (f *FileBackend) Set(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	target := f.path(key)

	if f.quota > 0 {
		used, err := f.usage()
		if err != nil {
			return err
		}
		if info, err := f.fs.Stat(target); err == nil {
			used -= info.Size()
		}
		if used+int64(len(value)) > f.quota {
			return capacityExceeded("file", key, nil)
		}
	}

	tmp := target + ".tmp"
	if err := afero.WriteFile(f.fs, tmp, value, 0600); err != nil {
		_ = f.fs.Remove(tmp)
		if isDiskFull(err) {
			return capacityExceeded("file", key, err)
		}
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := f.fs.Rename(tmp, target); err != nil {
		_ = f.fs.Remove(tmp)
		return fmt.Errorf("failed to commit %s: %w", key, err)
	}
	return nil
}

func (f *FileBackend) Remove(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.fs.Remove(f.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

func (f *FileBackend) Close() error {
	return nil
}

// usage sums stored file sizes. Caller holds f.mu.
func (f *FileBackend) usage() (int64, error) {
	entries, err := afero.ReadDir(f.fs, f.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to list %s: %w", f.dir, err)
	}
	var total int64
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		total += entry.Size()
	}
	return total, nil
}

func isDiskFull(err error) bool {
	return errors.Is(err, syscall.ENOSPC)
}
