package pairtree

import (
	"encoding/hex"
	"strings"
	"unicode/utf8"
)

// maxCharBytes is the longest escape run Decode will try to assemble
// into one character.
const maxCharBytes = 6

const hexdigits = "0123456789abcdef"

var (
	pass2    = strings.NewReplacer("/", "=", ":", "+", ".", ",")
	revPass2 = strings.NewReplacer("=", "/", "+", ":", ",", ".")
)

// mustEscape reports whether r is hex-escaped in the first encoding
// pass.
func mustEscape(r rune) bool {
	if r < 0x21 || r > 0x7e {
		return true
	}
	switch r {
	case '"', '*', '+', ',', '<', '=', '>', '?', '\\', '^', '|':
		return true
	}
	return false
}

// Encode converts id into its filesystem-safe pairtree form.  Every
// byte of a control, reserved or non-ASCII character becomes a ^hh
// escape, then '/', ':' and '.' are replaced with '=', '+' and ','.
func Encode(id string) string {
	var b strings.Builder
	b.Grow(len(id))
	for i := 0; i < len(id); {
		r, size := utf8.DecodeRuneInString(id[i:])
		if !mustEscape(r) {
			b.WriteRune(r)
			i += size
			continue
		}
		// one escape per byte; an invalid byte decodes as a
		// one-byte RuneError and is escaped on its own
		for _, c := range []byte(id[i : i+size]) {
			b.WriteByte('^')
			b.WriteByte(hexdigits[c>>4])
			b.WriteByte(hexdigits[c&0x0f])
		}
		i += size
	}
	return pass2.Replace(b.String())
}

// Decode reverses Encode.  It fails with an UnknownEncodingError when
// an escape sequence is malformed or a run of escaped bytes does not
// form a UTF-8 character within six bytes.
func Decode(encoded string) (id string, err error) {
	s := revPass2.Replace(encoded)
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] != '^' {
			b.WriteByte(s[i])
			i++
			continue
		}
		c, ok := hexPair(s, i)
		if !ok {
			return "", &UnknownEncodingError{Encoded: encoded, Offset: i}
		}
		if c < 0x7f {
			b.WriteByte(c)
			i += 3
			continue
		}
		// first byte of a multibyte character; widen the window one
		// escape at a time until the bytes decode
		buf := []byte{c}
		next := i + 3
		for {
			if utf8.FullRune(buf) {
				r, size := utf8.DecodeRune(buf)
				// (RuneError, 1) means invalid; a literal U+FFFD is 3 bytes
				if size == len(buf) && !(r == utf8.RuneError && size == 1) {
					break
				}
			}
			if len(buf) == maxCharBytes {
				return "", &UnknownEncodingError{Encoded: encoded, Offset: i}
			}
			c, ok = hexPair(s, next)
			if !ok {
				return "", &UnknownEncodingError{Encoded: encoded, Offset: i}
			}
			buf = append(buf, c)
			next += 3
		}
		b.Write(buf)
		i = next
	}
	return b.String(), nil
}

// hexPair decodes the ^hh token starting at s[i].
func hexPair(s string, i int) (c byte, ok bool) {
	if i+3 > len(s) || s[i] != '^' {
		return
	}
	buf, err := hex.DecodeString(s[i+1 : i+3])
	if err != nil {
		return
	}
	return buf[0], true
}
