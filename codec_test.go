package pairtree

import (
	"testing"

	"github.com/pkg/errors"
)

var roundTripIDs = []string{
	"",
	"foobar",
	"ark:/13030/xt12t3",
	"http://n2t.info/urn:nbn:se:kb:repos-1",
	"what-the-*@?#!^!?",
	`"*+,<=>?\^|`,
	"^5e^2a",
	"^",
	"a b\tc\nd",
	"\x00\x01\x7f",
	"owërdœ.file",
	"ウ",
	"日本語/テキスト.txt",
	"emoji 😀 and 𝄞",
	"=+,",
	"...///:::",
}

func TestEncodeExamples(t *testing.T) {
	cases := []struct{ id, encoded string }{
		{"ark:/13030/xt12t3", "ark+=13030=xt12t3"},
		{"what-the-*@?#!^!?", "what-the-^2a@^3f#!^5e!^3f"},
		{"http://n2t.info/urn:nbn:se:kb:repos-1", "http+==n2t,info=urn+nbn+se+kb+repos-1"},
		{"ウ", "^e3^82^a6"},
		{"a b", "a^20b"},
		{"", ""},
		{"\x7f", "^7f"},
		{"foobar://ark.1", "foobar+==ark,1"},
	}
	for _, c := range cases {
		got := Encode(c.id)
		tassert(t, got == c.encoded, "Encode(%q): expected %q got %q", c.id, c.encoded, got)
		back, err := Decode(got)
		tassert(t, err == nil, "Decode(%q): %v", got, err)
		tassert(t, back == c.id, "Decode(%q): expected %q got %q", got, c.id, back)
	}
}

func TestRoundTrip(t *testing.T) {
	for _, id := range roundTripIDs {
		encoded := Encode(id)
		for _, r := range encoded {
			tassert(t, r > 0x20 && r < 0x7f, "Encode(%q) = %q has non-visible char %q", id, encoded, r)
		}
		got, err := Decode(encoded)
		tassert(t, err == nil, "Decode(%q): %v", encoded, err)
		tassert(t, got == id, "round trip: expected %q got %q", id, got)
	}
}

func TestRoundTripAllRunes(t *testing.T) {
	// every codepoint in the BMP and a sample of the rest
	for r := rune(0); r < 0x30000; r++ {
		if r >= 0xd800 && r <= 0xdfff {
			// surrogates aren't valid in UTF-8
			continue
		}
		if r > 0x10000 && r%97 != 0 {
			continue
		}
		id := "x" + string(r) + "y"
		got, err := Decode(Encode(id))
		if err != nil || got != id {
			t.Fatalf("rune %U: got %q err %v", r, got, err)
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	bad := []string{
		// truncated escapes
		"^",
		"^2",
		// not hex
		"ab^zz",
		// multibyte runs cut short
		"^e3",
		"^e3^82",
		// continuation bytes never decode
		"^80^80^80^80^80^80^80",
		"^ff^41",
	}
	for _, s := range bad {
		_, err := Decode(s)
		tassert(t, err != nil, "Decode(%q): expected error", s)
		var ue *UnknownEncodingError
		tassert(t, errors.As(err, &ue), "Decode(%q): expected UnknownEncodingError, got %T %v", s, err, err)
	}
}

func TestDecodeUppercaseHex(t *testing.T) {
	got, err := Decode("^2A^E3^82^A6")
	tassert(t, err == nil, "%v", err)
	tassert(t, got == "*ウ", "got %q", got)
}
