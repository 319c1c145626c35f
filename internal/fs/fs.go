package fs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FS abstracts filesystem operations.
type FS interface {
	Open(path string) (io.ReadSeekCloser, error)
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, perm os.FileMode) error
	MkdirAll(path string, perm os.FileMode) error
	Remove(path string) error
	Rename(oldPath, newPath string) error
	Chmod(path string, perm os.FileMode) error
	Stat(path string) (os.FileInfo, error)
	ReadDir(path string) ([]os.DirEntry, error)
	CreateTempFile(dir, pattern string) (io.WriteCloser, string, error)
	IsNotExist(err error) bool
	Exists(path string) bool
	IsDir(path string) bool
}

type syncer interface {
	Sync() error
}

// WriteFileAtomic writes data to a temp file in the target directory and
// renames it into place, so readers never observe a partial file.
func WriteFileAtomic(fsys FS, path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	w, tmp, err := fsys.CreateTempFile(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp in %q: %w", dir, err)
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		fsys.Remove(tmp)
		return fmt.Errorf("write temp %q: %w", tmp, err)
	}
	if s, ok := w.(syncer); ok {
		if err := s.Sync(); err != nil {
			w.Close()
			fsys.Remove(tmp)
			return fmt.Errorf("sync temp %q: %w", tmp, err)
		}
	}
	if err := w.Close(); err != nil {
		fsys.Remove(tmp)
		return fmt.Errorf("close temp %q: %w", tmp, err)
	}
	if err := fsys.Chmod(tmp, perm); err != nil {
		fsys.Remove(tmp)
		return fmt.Errorf("chmod temp %q: %w", tmp, err)
	}
	if err := fsys.Rename(tmp, path); err != nil {
		fsys.Remove(tmp)
		return fmt.Errorf("rename %q -> %q: %w", tmp, path, err)
	}
	return nil
}
