package pairtree

import (
	"io"
	"os"
	"path/filepath"
)

// Object is a handle on one object in a Store.  It carries no state of
// its own; every method goes to the store.
type Object struct {
	Store    *Store
	ID       string
	URI      string // Store.URIBase + ID
	Location string // object directory
}

// AddBytestream copies src into the part name under subpath.
func (obj *Object) AddBytestream(name string, src io.Reader, subpath string) (n int64, err error) {
	return obj.AddBytestreamWithBuffer(name, src, subpath, 0)
}

// AddBytestreamWithBuffer is AddBytestream copying bufSize bytes at a
// time.  A bufSize <= 0 uses the store's BufferSize.
func (obj *Object) AddBytestreamWithBuffer(name string, src io.Reader, subpath string, bufSize int) (n int64, err error) {
	return obj.Store.PutStream(obj.ID, subpath, name, src, bufSize)
}

// AddBytes stores buf as the part name under subpath.
func (obj *Object) AddBytes(name string, buf []byte, subpath string) (n int64, err error) {
	return obj.Store.PutBytes(obj.ID, subpath, name, buf)
}

// AddBytestreamByPath is AddBytestream with subpath and name given as
// one relative path.
func (obj *Object) AddBytestreamByPath(relpath string, src io.Reader) (n int64, err error) {
	subpath, name := splitPart(relpath)
	return obj.AddBytestream(name, src, subpath)
}

// AddFile streams the file at srcPath into the object under subpath.
// The part keeps the file's base name unless newName is given.
func (obj *Object) AddFile(srcPath, subpath, newName string) (n int64, err error) {
	return obj.AddFileWithBuffer(srcPath, subpath, newName, 0)
}

// AddFileWithBuffer is AddFile copying bufSize bytes at a time.
func (obj *Object) AddFileWithBuffer(srcPath, subpath, newName string, bufSize int) (n int64, err error) {
	fh, err := os.Open(srcPath)
	if os.IsNotExist(err) {
		return 0, &FileNotFoundError{Path: srcPath}
	}
	if err != nil {
		return
	}
	defer fh.Close()
	if newName == "" {
		newName = filepath.Base(srcPath)
	}
	return obj.AddBytestreamWithBuffer(newName, fh, subpath, bufSize)
}

// GetBytestream opens a part for reading.  The caller must close it.
func (obj *Object) GetBytestream(name, subpath string) (rd io.ReadCloser, err error) {
	return obj.Store.GetStream(obj.ID, subpath, name)
}

// GetBytes returns the whole content of a part.
func (obj *Object) GetBytes(name, subpath string) (buf []byte, err error) {
	return obj.Store.GetBytes(obj.ID, subpath, name)
}

func (obj *Object) GetBytestreamByPath(relpath string) (rd io.ReadCloser, err error) {
	subpath, name := splitPart(relpath)
	return obj.GetBytestream(name, subpath)
}

func (obj *Object) GetBytesByPath(relpath string) (buf []byte, err error) {
	subpath, name := splitPart(relpath)
	return obj.GetBytes(name, subpath)
}

func (obj *Object) DelFile(name, subpath string) error {
	return obj.Store.DelStream(obj.ID, subpath, name)
}

func (obj *Object) DelFileByPath(relpath string) error {
	subpath, name := splitPart(relpath)
	return obj.DelFile(name, subpath)
}

// ListParts lists the object directory, or subpath below it.
func (obj *Object) ListParts(subpath string) (names []string, err error) {
	return obj.Store.ListParts(obj.ID, subpath)
}

func (obj *Object) IsFile(name, subpath string) (ok bool, err error) {
	return obj.Store.IsFile(obj.ID, subpath, name)
}

// splitPart splits a relative part path into subpath and name.
func splitPart(relpath string) (subpath, name string) {
	subpath, name = filepath.Split(filepath.Clean(relpath))
	subpath = filepath.Clean(subpath)
	if subpath == "." {
		subpath = ""
	}
	return
}
