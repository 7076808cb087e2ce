package pairtree

import (
	"fmt"
	"path/filepath"
)

// NotAPairtreeStoreError is returned by Open when Dir lacks a version
// marker, or does not exist and no URI base was given to create it.
type NotAPairtreeStoreError struct {
	Dir    string
	Reason string
}

func (e *NotAPairtreeStoreError) Error() string {
	return fmt.Sprintf("not a pairtree store: %s: %s", e.Dir, e.Reason)
}

type ObjectExistsError struct {
	ID string
}

func (e *ObjectExistsError) Error() string {
	return fmt.Sprintf("object already exists: %q", e.ID)
}

type ObjectNotFoundError struct {
	ID string
}

func (e *ObjectNotFoundError) Error() string {
	return fmt.Sprintf("object not found: %q", e.ID)
}

// PartNotFoundError is returned when a named part, or the subpath it
// should live under, is missing from an object.
type PartNotFoundError struct {
	ID      string
	Subpath string
	Name    string
}

func (e *PartNotFoundError) Error() string {
	return fmt.Sprintf("part not found: %q in object %q", filepath.Join(e.Subpath, e.Name), e.ID)
}

// FileNotFoundError is returned when the source of Object.AddFile does
// not exist.
type FileNotFoundError struct {
	Path string
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("file not found: %s", e.Path)
}

type UnknownEncodingError struct {
	Encoded string
	Offset  int
}

func (e *UnknownEncodingError) Error() string {
	return fmt.Sprintf("unknown encoding at offset %d: %q", e.Offset, e.Encoded)
}

// ShortyLengthMismatchError is returned by Open when the caller asks
// for a shorty length other than the one the store was created with.
type ShortyLengthMismatchError struct {
	Dir    string
	Stored int
	Wanted int
}

func (e *ShortyLengthMismatchError) Error() string {
	return fmt.Sprintf("store %s uses shorty length %d, not %d", e.Dir, e.Stored, e.Wanted)
}

type NotInStoreError struct {
	Path string
	Root string
}

func (e *NotInStoreError) Error() string {
	return fmt.Sprintf("%s is not below store root %s", e.Path, e.Root)
}

// StrayEntryError is returned by Walk for a directory in the store root
// that is too long to be a shorty.
type StrayEntryError struct {
	Path string
}

func (e *StrayEntryError) Error() string {
	return fmt.Sprintf("not a shorty directory: %s", e.Path)
}
