package pairtree

import (
	"path/filepath"
	"strings"
)

// DefaultShortyLength is the number of encoded characters per
// directory level when a store doesn't say otherwise.
const DefaultShortyLength = 2

// Path is the location of one object in one store.
type Path struct {
	Store    *Store
	ID       string   // raw identifier
	Encoded  string   // Encode(ID)
	Shorties []string // Encoded split into directory names
	Rel      string   // relative to Store.Dir
	Abs      string   // Store.Dir joined with Rel
}

func (path Path) New(store *Store, id string) *Path {
	path.Store = store
	path.ID = id
	path.Encoded = Encode(id)
	path.Shorties = chop(path.Encoded, store.ShortyLength)
	path.Rel = filepath.Join(path.Shorties...)
	path.Abs = filepath.Join(store.Dir, path.Rel)
	return &path
}

// Part returns the file path of a part named name under subpath.
func (path *Path) Part(subpath, name string) string {
	return filepath.Join(path.Abs, subpath, name)
}

// Segments encodes id and splits the result into directory names of
// shortyLength characters; the last one may be shorter.  The empty id
// has no segments.
func Segments(id string, shortyLength int) []string {
	return chop(Encode(id), shortyLength)
}

func chop(encoded string, shortyLength int) (shorties []string) {
	if shortyLength < 1 {
		shortyLength = DefaultShortyLength
	}
	for len(encoded) > 0 {
		n := shortyLength
		if n > len(encoded) {
			n = len(encoded)
		}
		shorties = append(shorties, encoded[:n])
		encoded = encoded[n:]
	}
	return
}

// IDFromDirpath rebuilds the identifier of the object at dirpath by
// collecting directory names up to root.  It is only the inverse of
// Segments when dirpath was built with the same shorty length.
func IDFromDirpath(dirpath, root string) (id string, err error) {
	shorties, err := shortiesFromDirpath(dirpath, root)
	if err != nil {
		return
	}
	return Decode(strings.Join(shorties, ""))
}

// shortiesFromDirpath walks from dirpath up to root and returns the
// directory names in between, in root-to-leaf order.
func shortiesFromDirpath(dirpath, root string) (shorties []string, err error) {
	root = filepath.Clean(root)
	head := filepath.Clean(dirpath)
	for head != root {
		parent, tail := filepath.Split(head)
		parent = filepath.Clean(parent)
		if tail == "" || parent == head {
			// ran off the top of the filesystem
			return nil, &NotInStoreError{Path: dirpath, Root: root}
		}
		shorties = append(shorties, tail)
		head = parent
	}
	for i, j := 0, len(shorties)-1; i < j; i, j = i+1, j-1 {
		shorties[i], shorties[j] = shorties[j], shorties[i]
	}
	return
}
