package pairtree

import (
	"bytes"
	"strings"
	"testing"
)

func TestIndex(t *testing.T) {
	store := setup(t, nil)
	_, err := store.PutBytes("ark:/13030/xt12t3", "data/mine", "foo.txt", mkbuf("foo"))
	tassert(t, err == nil, "%v", err)
	_, err = store.PutBytes("ark:/13030/xt12t3", "", "a", mkbuf("abc"))
	tassert(t, err == nil, "%v", err)
	_, err = store.CreateObject("empty")
	tassert(t, err == nil, "%v", err)
	// "ab" is a shorty below "ab" and a parent of "abcd"
	_, err = store.PutBytes("ab", "", "x.txt", mkbuf("xx"))
	tassert(t, err == nil, "%v", err)
	_, err = store.PutBytes("abcd", "", "y.txt", mkbuf("yyyy"))
	tassert(t, err == nil, "%v", err)

	idx, err := store.BuildIndex()
	tassert(t, err == nil, "%v", err)
	tassert(t, idx.ShortyLength == 2 && idx.URIBase == "info:local/", "%#v", idx)
	tassert(t, strings.Join(idx.IDs(), ",") == "ab,abcd,ark:/13030/xt12t3,empty", "ids %v", idx.IDs())

	buf := &bytes.Buffer{}
	err = idx.Encode(buf)
	tassert(t, err == nil, "%v", err)
	got, err := DecodeIndex(buf)
	tassert(t, err == nil, "%v", err)
	tassert(t, got.Built.Equal(idx.Built), "built %v != %v", got.Built, idx.Built)

	entry, ok := got.Lookup("ark:/13030/xt12t3")
	tassert(t, ok, "missing entry")
	tassert(t, entry.Rel == store.Path("ark:/13030/xt12t3").Rel, "rel %q", entry.Rel)
	tassert(t, len(entry.Parts) == 2, "parts %#v", entry.Parts)
	tassert(t, entry.Parts[0].Name == "a" && entry.Parts[0].Size == 3, "%#v", entry.Parts[0])
	tassert(t, entry.Parts[1].Name == "data/mine/foo.txt" && entry.Parts[1].Size == 3, "%#v", entry.Parts[1])

	entry, ok = got.Lookup("ab")
	tassert(t, ok, "missing entry")
	tassert(t, len(entry.Parts) == 1 && entry.Parts[0].Name == "x.txt", "parts %#v", entry.Parts)

	entry, ok = got.Lookup("empty")
	tassert(t, ok && len(entry.Parts) == 0, "%v %#v", ok, entry)

	_, ok = got.Lookup("nope")
	tassert(t, !ok, "found missing id")
}
