package pairtree

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	. "github.com/stevegt/goadapt"
)

// Event is a filesystem change inside a store, tagged with the id of
// the object it happened in.
type Event struct {
	ID   string
	Path string
	Op   fsnotify.Op
}

// Watcher reports changes to a store's objects.  fsnotify only
// watches single directories, so Watcher adds every directory of the
// tree and picks up new ones as they are created.  Callers must keep
// receiving from both Events and Errors until they call Close.
type Watcher struct {
	Events  chan Event
	Errors  chan error
	store   *Store
	watcher *fsnotify.Watcher
	done    chan struct{}

	closeOnce sync.Once
}

// Watch starts watching the store.  Call Close to stop.
func (store *Store) Watch() (w *Watcher, err error) {
	defer Return(&err)
	fw, err := fsnotify.NewWatcher()
	Ck(err)
	w = &Watcher{
		Events:  make(chan Event),
		Errors:  make(chan error),
		store:   store,
		watcher: fw,
		done:    make(chan struct{}),
	}
	_, err = w.addTree(store.Dir)
	if err != nil {
		fw.Close()
		return nil, err
	}
	go w.run()
	return w, nil
}

// Close stops the watcher and closes Events and Errors.  Calls after
// the first do nothing.
func (w *Watcher) Close() (err error) {
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return
}

// addTree watches dir and every directory below it, and returns the
// paths it found under dir.  Entries created before their directory
// was watched only show up here.
func (w *Watcher) addTree(dir string) (found []string, err error) {
	stack := []string{dir}
	for len(stack) > 0 {
		d := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		err = w.watcher.Add(d)
		if err != nil {
			return found, errors.Wrapf(err, "watching %s", d)
		}
		entries, err := w.store.FS.ReadDir(d)
		if err != nil {
			return found, err
		}
		for _, entry := range entries {
			fn := filepath.Join(d, entry.Name())
			found = append(found, fn)
			if entry.IsDir() {
				stack = append(stack, fn)
			}
		}
	}
	return
}

func (w *Watcher) run() {
	defer close(w.Errors)
	defer close(w.Events)
	for {
		select {
		case <-w.done:
			return
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if !w.sendErr(err) {
				return
			}
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.handle(ev) {
				return
			}
		}
	}
}

// handle translates one fsnotify event.  It returns false once the
// watcher is closed.
func (w *Watcher) handle(ev fsnotify.Event) bool {
	if !w.send(ev.Name, ev.Op) {
		return false
	}
	if ev.Op&fsnotify.Create == 0 {
		return true
	}
	ok, err := isDir(w.store.FS, ev.Name)
	if err != nil {
		return w.sendErr(err)
	}
	if !ok {
		return true
	}
	found, err := w.addTree(ev.Name)
	for _, fn := range found {
		if !w.send(fn, fsnotify.Create) {
			return false
		}
	}
	if err != nil {
		return w.sendErr(err)
	}
	return true
}

func (w *Watcher) send(fn string, op fsnotify.Op) bool {
	id, err := w.store.IDFromPath(fn)
	var outside *NotInStoreError
	if errors.As(err, &outside) {
		// the root or one of its metadata files
		return true
	}
	if err != nil {
		return w.sendErr(err)
	}
	w.store.Log.WithFields(logrus.Fields{"id": id, "path": fn, "op": op}).Debug("watch event")
	select {
	case w.Events <- Event{ID: id, Path: fn, Op: op}:
		return true
	case <-w.done:
		return false
	}
}

func (w *Watcher) sendErr(err error) bool {
	select {
	case w.Errors <- err:
		return true
	case <-w.done:
		return false
	}
}
