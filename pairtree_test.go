package pairtree

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/stevegt/goadapt"
)

const testStoreDirPrefix = "pairtree"

// test boolean condition
func tassert(t *testing.T, cond bool, txt string, args ...interface{}) {
	t.Helper() // cause file:line info to show caller
	if !cond {
		t.Fatalf(txt, args...)
	}
}

func mkbuf(s string) []byte {
	tmp := []byte(s)
	return tmp
}

// tempdir returns a scratch directory that is removed after the test,
// unless DEBUG=1, in which case it is kept and printed.
func tempdir(t *testing.T) (dir string) {
	if os.Getenv("DEBUG") == "1" {
		dir, err := ioutil.TempDir("", testStoreDirPrefix)
		Ck(err)
		fmt.Println(dir)
		// no cleanup
		return dir
	}
	// automatically cleaned up
	return t.TempDir()
}

// setup creates a new store.  Fields already set in store are kept;
// Dir is always a fresh directory.
func setup(t *testing.T, store *Store) *Store {
	if store == nil {
		store = &Store{}
	}
	Assert(store.Dir == "")
	store.Dir = filepath.Join(tempdir(t), "data")
	if store.URIBase == "" {
		store.URIBase = "info:local/"
	}
	if os.Getenv("DEBUG") == "1" {
		store.Log = NewLogger(os.Stderr, true)
	}
	out, err := store.Open()
	tassert(t, err == nil, "Open: %v", err)
	tassert(t, out != nil, "store is nil")
	return out
}

// reopen opens the store at dir again with default settings.
func reopen(t *testing.T, dir string) *Store {
	store, err := Store{Dir: dir}.Open()
	tassert(t, err == nil, "Open: %v", err)
	return store
}

func TestGetGID(t *testing.T) {
	n := GetGID()
	if n == 0 {
		t.Fatalf("oh no n is 0")
	}
}

func TestNewLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewLogger(buf, false)
	log.Debug("hidden")
	log.WithField("id", "ark:/13030/xt12t3").Info("shown")
	out := buf.String()
	tassert(t, !strings.Contains(out, "hidden"), "debug message logged at info level: %s", out)
	tassert(t, strings.Contains(out, "shown"), "missing info message: %s", out)
	tassert(t, strings.Contains(out, "gid "), "missing goroutine id: %s", out)

	buf.Reset()
	log = NewLogger(buf, true)
	log.Debug("hidden")
	tassert(t, strings.Contains(buf.String(), "hidden"), "missing debug message: %s", buf.String())
}
