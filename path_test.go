package pairtree

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func TestSegments(t *testing.T) {
	expect := []string{"ar", "k+", "=1", "30", "30", "=x", "t1", "2t", "3"}
	got := Segments("ark:/13030/xt12t3", 2)
	tassert(t, strings.Join(got, "/") == strings.Join(expect, "/"), "expected %v, got %v", expect, got)

	got = Segments("what-the-*@?#!^!?", 2)
	expect = []string{"wh", "at", "-t", "he", "-^", "2a", "@^", "3f", "#!", "^5", "e!", "^3", "f"}
	tassert(t, strings.Join(got, "/") == strings.Join(expect, "/"), "expected %v, got %v", expect, got)

	got = Segments("abcdef", 3)
	tassert(t, len(got) == 2 && got[0] == "abc" && got[1] == "def", "got %v", got)

	got = Segments("", 2)
	tassert(t, len(got) == 0, "got %v", got)

	// zero falls back to the default
	got = Segments("abc", 0)
	tassert(t, len(got) == 2 && got[0] == "ab" && got[1] == "c", "got %v", got)
}

func TestSegmentsConcat(t *testing.T) {
	for _, id := range roundTripIDs {
		for l := 1; l <= 5; l++ {
			shorties := Segments(id, l)
			for i, s := range shorties {
				if i < len(shorties)-1 {
					tassert(t, len(s) == l, "%q: shorty %d is %q", id, i, s)
				} else {
					tassert(t, len(s) > 0 && len(s) <= l, "%q: last shorty is %q", id, s)
				}
			}
			tassert(t, strings.Join(shorties, "") == Encode(id), "%q: shorties %v", id, shorties)
		}
	}
}

func TestPathRoundTrip(t *testing.T) {
	root := filepath.Join("/", "srv", "pairtree_root")
	for l := 1; l <= 4; l++ {
		for _, id := range roundTripIDs {
			dirpath := filepath.Join(append([]string{root}, Segments(id, l)...)...)
			got, err := IDFromDirpath(dirpath, root)
			tassert(t, err == nil, "IDFromDirpath(%q): %v", dirpath, err)
			tassert(t, got == id, "shorty length %d: expected %q got %q", l, id, got)
		}
	}
}

func TestIDFromDirpathRelative(t *testing.T) {
	got, err := IDFromDirpath("data/fo/ob/ar/+", "data")
	tassert(t, err == nil, "%v", err)
	tassert(t, got == "foobar:", "got %q", got)

	got, err = IDFromDirpath("data/fo/ob/ar/+/", "data/")
	tassert(t, err == nil, "%v", err)
	tassert(t, got == "foobar:", "got %q", got)
}

func TestIDFromDirpathOutside(t *testing.T) {
	for _, dirpath := range []string{"/etc/passwd", "other/fo/ob", "/"} {
		_, err := IDFromDirpath(dirpath, "/srv/data")
		var nis *NotInStoreError
		tassert(t, errors.As(err, &nis), "%q: expected NotInStoreError, got %v", dirpath, err)
	}
}

func TestPath(t *testing.T) {
	store := setup(t, nil)

	path := store.Path("ark:/13030/xt12t3")
	tassert(t, path.ID == "ark:/13030/xt12t3", "id %q", path.ID)
	tassert(t, path.Encoded == "ark+=13030=xt12t3", "encoded %q", path.Encoded)
	tassert(t, len(path.Shorties) == 9, "shorties %v", path.Shorties)

	relpath := filepath.Join("ar", "k+", "=1", "30", "30", "=x", "t1", "2t", "3")
	tassert(t, path.Rel == relpath, "expected %s, got %s", relpath, path.Rel)
	expect := filepath.Join(store.Dir, relpath)
	tassert(t, path.Abs == expect, "expected %s, got %s", expect, path.Abs)

	part := path.Part("data/mine", "foo.txt")
	expect = filepath.Join(store.Dir, relpath, "data", "mine", "foo.txt")
	tassert(t, part == expect, "expected %s, got %s", expect, part)
}
