package pairtree

import (
	"io"
	"path/filepath"
	"sort"
	"time"

	. "github.com/stevegt/goadapt"
	"github.com/vmihailenco/msgpack"
)

// Index is a snapshot of a store's objects and parts.  It holds only
// data derived from the tree, so a lost or stale index can always be
// rebuilt with BuildIndex; the store stays the source of truth.
type Index struct {
	URIBase      string       `msgpack:"uri_base"`
	ShortyLength int          `msgpack:"shorty_length"`
	Built        time.Time    `msgpack:"built"`
	Entries      []IndexEntry `msgpack:"entries"`
}

// IndexEntry describes one object.
type IndexEntry struct {
	ID    string      `msgpack:"id"`
	Rel   string      `msgpack:"rel"` // object directory relative to the store root
	Parts []IndexPart `msgpack:"parts"`
}

// IndexPart is one file in an object; Name is relative to the object
// directory.
type IndexPart struct {
	Name string `msgpack:"name"`
	Size int64  `msgpack:"size"`
}

// BuildIndex walks the store and records every object with its parts.
// Subdirectories of an object are descended into unless they are
// shorties, which belong to the objects below.
func (store *Store) BuildIndex() (idx *Index, err error) {
	defer Return(&err)
	idx = &Index{
		URIBase:      store.URIBase,
		ShortyLength: store.ShortyLength,
		Built:        time.Now().UTC(),
	}
	err = store.Walk(func(id string) (err error) {
		path := store.Path(id)
		parts, err := store.listFiles(path)
		if err != nil {
			return
		}
		idx.Entries = append(idx.Entries, IndexEntry{ID: id, Rel: path.Rel, Parts: parts})
		return
	})
	Ck(err)
	sort.Slice(idx.Entries, func(i, j int) bool { return idx.Entries[i].ID < idx.Entries[j].ID })
	return
}

// listFiles returns the files in an object directory, recursing into
// subpaths but not into shorty directories.
func (store *Store) listFiles(path *Path) (parts []IndexPart, err error) {
	stack := []string{path.Abs}
	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		entries, err := store.FS.ReadDir(dir)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			fn := filepath.Join(dir, entry.Name())
			if entry.IsDir() {
				if dir == path.Abs && len(entry.Name()) <= store.ShortyLength && len(filepath.Base(dir)) == store.ShortyLength {
					// next level of the tree, not a subpath
					continue
				}
				stack = append(stack, fn)
				continue
			}
			info, err := entry.Info()
			if err != nil {
				return nil, err
			}
			rel, err := filepath.Rel(path.Abs, fn)
			if err != nil {
				return nil, err
			}
			parts = append(parts, IndexPart{Name: rel, Size: info.Size()})
		}
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].Name < parts[j].Name })
	return
}

// Encode writes the index to w as msgpack.
func (idx *Index) Encode(w io.Writer) error {
	return msgpack.NewEncoder(w).Encode(idx)
}

// DecodeIndex reads an index written by Index.Encode.
func DecodeIndex(r io.Reader) (idx *Index, err error) {
	idx = &Index{}
	err = msgpack.NewDecoder(r).Decode(idx)
	if err != nil {
		return nil, err
	}
	return
}

// Lookup returns the entry for id.
func (idx *Index) Lookup(id string) (entry IndexEntry, ok bool) {
	i := sort.Search(len(idx.Entries), func(i int) bool { return idx.Entries[i].ID >= id })
	if i < len(idx.Entries) && idx.Entries[i].ID == id {
		return idx.Entries[i], true
	}
	return
}

// IDs returns the indexed ids in sorted order.
func (idx *Index) IDs() (ids []string) {
	for _, entry := range idx.Entries {
		ids = append(ids, entry.ID)
	}
	return
}
