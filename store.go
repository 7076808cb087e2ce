package pairtree

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	. "github.com/stevegt/goadapt"
)

// Store is a pairtree rooted at Dir.  Fill in the exported fields and
// call Open to get a usable store.
type Store struct {
	Dir          string // store root
	URIBase      string // prefix of object URIs; required to create a store
	ShortyLength int    // characters per directory level; 0 means use the stored or default value
	IDScheme     string // NumericIDs or UUIDIDs, for generated ids
	BufferSize   int    // PutStream chunk size
	Log          logrus.FieldLogger
	FS           FS
}

// Open validates the store at Dir and returns it ready for use.  When
// Dir does not exist it is created, provided URIBase is set; otherwise
// Open fails with NotAPairtreeStoreError.  An existing store's prefix
// file replaces URIBase, and its config supplies ShortyLength.
func (store Store) Open() (out *Store, err error) {
	defer Return(&err)

	if store.Dir == "" {
		return nil, &NotAPairtreeStoreError{Reason: "no directory given"}
	}
	store.Dir = filepath.Clean(store.Dir)
	if store.FS == nil {
		store.FS = OSFS{}
	}
	if store.Log == nil {
		store.Log = discardLogger()
	}
	if store.BufferSize <= 0 {
		store.BufferSize = DefaultBufferSize
	}
	switch store.IDScheme {
	case "", NumericIDs, UUIDIDs:
	default:
		ErrnoIf(true, syscall.EINVAL, "unknown id scheme: %q", store.IDScheme)
	}

	found, err := exists(store.FS, store.Dir)
	Ck(err)
	if !found {
		if store.URIBase == "" {
			return nil, &NotAPairtreeStoreError{Dir: store.Dir, Reason: "no uri base set for a new store"}
		}
		err = store.create()
		Ck(err)
		return &store, nil
	}

	dir, err := isDir(store.FS, store.Dir)
	Ck(err)
	if !dir {
		return nil, &NotAPairtreeStoreError{Dir: store.Dir, Reason: "not a directory"}
	}
	ok, err := exists(store.FS, filepath.Join(store.Dir, VersionFile))
	Ck(err)
	if !ok {
		return nil, &NotAPairtreeStoreError{Dir: store.Dir, Reason: "missing " + VersionFile}
	}

	prefixfn := filepath.Join(store.Dir, PrefixFile)
	ok, err = exists(store.FS, prefixfn)
	Ck(err)
	if ok {
		buf, err := readAll(store.FS, prefixfn)
		Ck(err)
		store.URIBase = strings.TrimSpace(string(buf))
	}

	err = store.loadConfig()
	if err != nil {
		return nil, err
	}
	if store.ShortyLength < 1 {
		store.ShortyLength = DefaultShortyLength
	}

	store.Log.WithFields(logrus.Fields{
		"dir":    store.Dir,
		"shorty": store.ShortyLength,
	}).Debug("opened store")
	return &store, nil
}

// create makes a new store root and its metadata files.
func (store *Store) create() (err error) {
	defer Return(&err)
	if store.ShortyLength < 1 {
		store.ShortyLength = DefaultShortyLength
	}
	if store.IDScheme == "" {
		store.IDScheme = NumericIDs
	}
	err = store.FS.MkdirAll(store.Dir)
	Ck(err)
	err = store.FS.WriteFileAtomic(filepath.Join(store.Dir, VersionFile), []byte(VersionText))
	Ck(err)
	err = store.FS.WriteFileAtomic(filepath.Join(store.Dir, PrefixFile), []byte(store.URIBase))
	Ck(err)
	err = store.writeConfig()
	Ck(err)
	store.Log.WithFields(logrus.Fields{
		"dir":     store.Dir,
		"uribase": store.URIBase,
		"shorty":  store.ShortyLength,
	}).Debug("created store")
	return
}

// Path returns the location of id in the store.
func (store *Store) Path(id string) *Path {
	return Path{}.New(store, id)
}

// resolve is Path for operations that modify an object; the empty id
// maps to the store root and is refused.
func (store *Store) resolve(id string) (path *Path, err error) {
	defer Return(&err)
	ErrnoIf(id == "", syscall.EINVAL, "empty id")
	return store.Path(id), nil
}

// partPath returns the file path for name under subpath in the object
// at path.  Neither may climb out of the object directory.
func partPath(path *Path, subpath, name string) (fn string, err error) {
	defer Return(&err)
	ErrnoIf(name == "", syscall.EINVAL, "empty part name")
	rel := filepath.Clean(filepath.Join(subpath, name))
	ErrnoIf(rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)), syscall.EINVAL, "part path escapes object: %s", rel)
	return filepath.Join(path.Abs, rel), nil
}

// shadowsShorty reports whether a part at rel would be read as the
// next shorty of a longer id.  That can only happen when the object's
// last shorty is full length and rel starts with a name no longer
// than a shorty.
func shadowsShorty(path *Path, rel string) bool {
	l := path.Store.ShortyLength
	last := path.Shorties[len(path.Shorties)-1]
	if len(last) < l {
		return false
	}
	first := strings.SplitN(filepath.Clean(rel), string(filepath.Separator), 2)[0]
	return len(first) <= l
}

func (store *Store) object(path *Path) *Object {
	return &Object{
		Store:    store,
		ID:       path.ID,
		URI:      store.URIBase + path.ID,
		Location: path.Abs,
	}
}

// Exists reports whether id's object directory exists.
func (store *Store) Exists(id string) (ok bool, err error) {
	if id == "" {
		return false, nil
	}
	return isDir(store.FS, store.Path(id).Abs)
}

// CreateObject makes the directory for id.  It fails with
// ObjectExistsError if the directory is already there, including when
// another process created it first.
func (store *Store) CreateObject(id string) (obj *Object, err error) {
	path, err := store.resolve(id)
	if err != nil {
		return
	}
	err = store.FS.MkdirAll(filepath.Dir(path.Abs))
	if err != nil {
		return
	}
	err = store.FS.Mkdir(path.Abs)
	if os.IsExist(err) {
		return nil, &ObjectExistsError{ID: id}
	}
	if err != nil {
		return
	}
	store.Log.WithFields(logrus.Fields{"id": id, "path": path.Rel}).Debug("created object")
	return store.object(path), nil
}

// GetObject returns a handle to the object for id.  An empty id asks
// for a new object with a generated id.  A missing object is created
// when create is true and is an ObjectNotFoundError otherwise.
func (store *Store) GetObject(id string, create bool) (obj *Object, err error) {
	if id == "" {
		return store.NewObject()
	}
	ok, err := store.Exists(id)
	if err != nil {
		return
	}
	if ok {
		return store.object(store.Path(id)), nil
	}
	if create {
		return store.CreateObject(id)
	}
	return nil, &ObjectNotFoundError{ID: id}
}

// NewObject creates an object under a generated id that is not in use.
func (store *Store) NewObject() (obj *Object, err error) {
	for {
		var id string
		id, err = store.newID()
		if err != nil {
			return
		}
		obj, err = store.CreateObject(id)
		var inUse *ObjectExistsError
		if errors.As(err, &inUse) {
			store.Log.WithField("id", id).Debug("generated id in use, retrying")
			continue
		}
		return
	}
}

// DeleteObject removes id's object directory and everything in it.
// Deleting a missing object does nothing.  Directories above the
// object that are left empty are removed too, so they are not later
// listed as objects of their own.
func (store *Store) DeleteObject(id string) (err error) {
	defer Return(&err)
	path, err := store.resolve(id)
	Ck(err)
	ok, err := isDir(store.FS, path.Abs)
	Ck(err)
	if !ok {
		return
	}
	err = store.FS.RemoveAll(path.Abs)
	Ck(err)
	for dir := filepath.Dir(path.Abs); dir != store.Dir; dir = filepath.Dir(dir) {
		entries, err := store.FS.ReadDir(dir)
		Ck(err)
		if len(entries) > 0 {
			break
		}
		err = store.FS.Remove(dir)
		Ck(err)
	}
	store.Log.WithFields(logrus.Fields{"id": id, "path": path.Rel}).Debug("deleted object")
	return
}

// Walk calls fn with the id of every object in the store, in sorted
// encoded order.  The tree is traversed with an explicit stack.  A
// directory below the root holds an object when its name is shorter
// than a shorty, when it contains a file or a directory longer than a
// shorty, or when it is empty.  Short-named directories end an id, so
// their subdirectories are parts and are not descended into.
//
// A directory name that doesn't decode, or a directory in the root
// longer than a shorty, fails the walk.  An error from
// fn stops the walk and is returned.
func (store *Store) Walk(fn func(id string) error) (err error) {
	stack := []string{store.Dir}
	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := store.FS.ReadDir(dir)
		if err != nil {
			return err
		}
		atRoot := dir == store.Dir
		terminal := !atRoot && len(filepath.Base(dir)) < store.ShortyLength
		isObject := terminal || (!atRoot && len(entries) == 0)
		var subdirs []string
		for _, entry := range entries {
			name := entry.Name()
			if atRoot {
				if !entry.IsDir() {
					continue
				}
				if len(name) > store.ShortyLength {
					return &StrayEntryError{Path: filepath.Join(dir, name)}
				}
				subdirs = append(subdirs, name)
				continue
			}
			if !entry.IsDir() || len(name) > store.ShortyLength {
				isObject = true
				continue
			}
			if !terminal {
				subdirs = append(subdirs, name)
			}
		}

		if isObject {
			id, err := IDFromDirpath(dir, store.Dir)
			if err != nil {
				return err
			}
			err = fn(id)
			if err != nil {
				return err
			}
		}

		// push in reverse so the smallest name is popped first
		for i := len(subdirs) - 1; i >= 0; i-- {
			stack = append(stack, filepath.Join(dir, subdirs[i]))
		}
	}
	return nil
}

// ListIDs returns the ids of all objects in the store, sorted.
func (store *Store) ListIDs() (ids []string, err error) {
	err = store.Walk(func(id string) error {
		ids = append(ids, id)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)
	return
}

// IDFromPath returns the id of the object that contains path, which may
// be the object directory itself or any file or directory inside it.
func (store *Store) IDFromPath(path string) (id string, err error) {
	abs := filepath.Clean(path)
	shorties, err := shortiesFromDirpath(abs, store.Dir)
	if err != nil {
		return
	}
	n := len(shorties)
	for i, shorty := range shorties {
		if len(shorty) > store.ShortyLength {
			n = i
			break
		}
		if len(shorty) < store.ShortyLength {
			n = i + 1
			break
		}
		// a full-length name is a shorty unless it is a file
		info, err := store.FS.Stat(filepath.Join(append([]string{store.Dir}, shorties[:i+1]...)...))
		if err == nil && !info.IsDir() {
			n = i
			break
		}
	}
	if n == 0 {
		return "", &NotInStoreError{Path: path, Root: store.Dir}
	}
	return Decode(strings.Join(shorties[:n], ""))
}

// PutStream copies src into the part name under subpath of id's
// object, creating the object and subpath directories as needed and
// overwriting any existing part.  src is read bufSize bytes at a time;
// bufSize <= 0 uses the store's BufferSize.  A failed copy can leave a
// truncated part behind.
//
// When the object's last shorty is full length, the first component of
// subpath/name must be longer than a shorty, or the part would be
// listed as a separate object; such parts fail with EINVAL.
func (store *Store) PutStream(id, subpath, name string, src io.Reader, bufSize int) (n int64, err error) {
	path, err := store.resolve(id)
	if err != nil {
		return
	}
	fn, err := partPath(path, subpath, name)
	if err != nil {
		return
	}
	rel := filepath.Join(subpath, name)
	if shadowsShorty(path, rel) {
		return 0, errors.Wrapf(syscall.EINVAL, "part %s of %q starts with a shorty-length name", rel, id)
	}
	err = store.FS.MkdirAll(filepath.Dir(fn))
	if err != nil {
		return
	}
	fh, err := store.FS.Create(fn)
	if err != nil {
		return
	}
	if bufSize <= 0 {
		bufSize = store.BufferSize
	}
	n, err = copyChunks(fh, src, bufSize)
	cerr := fh.Close()
	if err == nil {
		err = cerr
	}
	if err != nil {
		return n, errors.Wrapf(err, "writing %s", fn)
	}
	store.Log.WithFields(logrus.Fields{
		"id":    id,
		"part":  filepath.Join(subpath, name),
		"bytes": n,
	}).Debug("put stream")
	return
}

// PutBytes stores buf as the part name under subpath of id's object.
func (store *Store) PutBytes(id, subpath, name string, buf []byte) (n int64, err error) {
	return store.PutStream(id, subpath, name, bytes.NewReader(buf), 0)
}

// partFile returns the path of an existing part, or PartNotFoundError.
func (store *Store) partFile(id, subpath, name string) (fn string, err error) {
	path, err := store.resolve(id)
	if err != nil {
		return
	}
	fn, err = partPath(path, subpath, name)
	if err != nil {
		return
	}
	info, err := store.FS.Stat(fn)
	if os.IsNotExist(err) || (err == nil && info.IsDir()) {
		return "", &PartNotFoundError{ID: id, Subpath: subpath, Name: name}
	}
	return
}

// GetStream opens a part for reading.  The caller must close it.
func (store *Store) GetStream(id, subpath, name string) (rd io.ReadCloser, err error) {
	fn, err := store.partFile(id, subpath, name)
	if err != nil {
		return
	}
	return store.FS.Open(fn)
}

// GetBytes returns the whole content of a part.
func (store *Store) GetBytes(id, subpath, name string) (buf []byte, err error) {
	fn, err := store.partFile(id, subpath, name)
	if err != nil {
		return
	}
	return readAll(store.FS, fn)
}

// DelStream removes a part.
func (store *Store) DelStream(id, subpath, name string) (err error) {
	fn, err := store.partFile(id, subpath, name)
	if err != nil {
		return
	}
	err = store.FS.Remove(fn)
	if err != nil {
		return
	}
	store.Log.WithFields(logrus.Fields{"id": id, "part": filepath.Join(subpath, name)}).Debug("deleted stream")
	return
}

// IsFile reports whether the part exists.
func (store *Store) IsFile(id, subpath, name string) (ok bool, err error) {
	_, err = store.partFile(id, subpath, name)
	var notFound *PartNotFoundError
	if errors.As(err, &notFound) {
		return false, nil
	}
	return err == nil, err
}

// ListParts returns the names of the entries in id's object directory,
// or in subpath below it, sorted.
func (store *Store) ListParts(id, subpath string) (names []string, err error) {
	path, err := store.resolve(id)
	if err != nil {
		return
	}
	ok, err := isDir(store.FS, path.Abs)
	if err != nil {
		return
	}
	if !ok {
		return nil, &ObjectNotFoundError{ID: id}
	}
	dir := path.Abs
	if subpath != "" {
		dir, err = partPath(path, "", subpath)
		if err != nil {
			return
		}
		ok, err = isDir(store.FS, dir)
		if err != nil {
			return
		}
		if !ok {
			return nil, &PartNotFoundError{ID: id, Name: subpath}
		}
	}
	entries, err := store.FS.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return
}
