package pairtree

import (
	"io"
	"os"

	"github.com/google/renameio"
	"github.com/pkg/errors"
)

// FS is the filesystem a Store keeps its tree on.  Paths are absolute
// or relative to the process working directory, joined with the
// platform separator.
type FS interface {
	Stat(path string) (os.FileInfo, error)
	// Mkdir creates a single directory and fails if it already
	// exists.
	Mkdir(path string) error
	MkdirAll(path string) error
	// ReadDir returns the entries of path sorted by name.
	ReadDir(path string) ([]os.DirEntry, error)
	Remove(path string) error
	RemoveAll(path string) error
	// Create opens path for writing, truncating it if it exists.
	Create(path string) (io.WriteCloser, error)
	Open(path string) (io.ReadCloser, error)
	// WriteFileAtomic replaces path with data so that readers see
	// either the old or the new content.
	WriteFileAtomic(path string, data []byte) error
}

// file modes
const (
	DirPerm  os.FileMode = 0755
	FilePerm os.FileMode = 0644
)

// OSFS is the FS backed by the local operating system.
type OSFS struct{}

func (OSFS) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

func (OSFS) Mkdir(path string) error {
	return os.Mkdir(path, DirPerm)
}

func (OSFS) MkdirAll(path string) error {
	return os.MkdirAll(path, DirPerm)
}

func (OSFS) ReadDir(path string) ([]os.DirEntry, error) {
	return os.ReadDir(path)
}

func (OSFS) Remove(path string) error {
	return os.Remove(path)
}

func (OSFS) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

func (OSFS) Create(path string) (io.WriteCloser, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, FilePerm)
}

func (OSFS) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

func (OSFS) WriteFileAtomic(path string, data []byte) error {
	return renameio.WriteFile(path, data, FilePerm)
}

// exists reports whether path can be stat'ed.  Errors other than
// "does not exist" are returned rather than treated as absence.
func exists(fsys FS, path string) (ok bool, err error) {
	_, err = fsys.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Wrapf(err, "stat %s", path)
}

// isDir is exists for directories.
func isDir(fsys FS, path string) (ok bool, err error) {
	info, err := fsys.Stat(path)
	if err == nil {
		return info.IsDir(), nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Wrapf(err, "stat %s", path)
}

// readAll reads the whole file at path.
func readAll(fsys FS, path string) (buf []byte, err error) {
	fh, err := fsys.Open(path)
	if err != nil {
		return
	}
	defer fh.Close()
	return io.ReadAll(fh)
}
