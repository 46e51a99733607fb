// Package charset guesses the text encoding of an input file and wraps readers
// so the rest of the pipeline only ever sees UTF-8.
//
// Detection is trial decoding of a fixed-size byte sample against an ordered
// candidate list. It is a heuristic: the sample may decode cleanly while a
// later part of the file does not.
package charset

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Canonical encoding names returned by Detect.
const (
	UTF8   = "utf-8"
	UTF16  = "utf-16"
	Latin1 = "latin1"
	CP1252 = "cp1252"
)

// DefaultSampleBytes is the number of leading bytes Detect inspects.
const DefaultSampleBytes = 4096

// DefaultCandidates is the order in which encodings are tried.
var DefaultCandidates = []string{UTF8, UTF16, Latin1, CP1252}

// aliases maps accepted spellings to canonical names.
var aliases = map[string]string{
	"utf-8":        UTF8,
	"utf8":         UTF8,
	"utf-8-sig":    UTF8,
	"utf-16":       UTF16,
	"utf16":        UTF16,
	"utf-16le":     UTF16,
	"utf-16be":     UTF16,
	"latin1":       Latin1,
	"latin-1":      Latin1,
	"iso-8859-1":   Latin1,
	"iso8859-1":    Latin1,
	"cp1252":       CP1252,
	"windows-1252": CP1252,
}

// Canonical returns the canonical name for an encoding alias.
func Canonical(name string) (string, error) {
	c, ok := aliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("charset: unknown encoding %q", name)
	}
	return c, nil
}

// Lookup returns the x/text encoding for name. UTF-8 and UTF-16 variants strip
// a leading byte-order mark when decoding.
func Lookup(name string) (encoding.Encoding, error) {
	c, err := Canonical(name)
	if err != nil {
		return nil, err
	}
	switch c {
	case UTF8:
		return unicode.UTF8BOM, nil
	case UTF16:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), nil
	case Latin1:
		return charmap.ISO8859_1, nil
	default:
		return charmap.Windows1252, nil
	}
}

// NewReader wraps r so that reads yield UTF-8 decoded from the named encoding.
// UTF-8 input is validated: an invalid sequence surfaces as
// encoding.ErrInvalidUTF8 from Read instead of being replaced.
func NewReader(r io.Reader, name string) (io.Reader, error) {
	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	if c, _ := Canonical(name); c == UTF8 {
		return transform.NewReader(r, transform.Chain(encoding.UTF8Validator, enc.NewDecoder())), nil
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

// Detect returns the first candidate that decodes the first sampleBytes bytes
// of the file at path. It falls back to UTF-8 when nothing matches or the file
// cannot be read, and never fails.
func Detect(path string, sampleBytes int, candidates []string) string {
	if sampleBytes <= 0 {
		sampleBytes = DefaultSampleBytes
	}
	if len(candidates) == 0 {
		candidates = DefaultCandidates
	}

	sample, truncated, err := readSample(path, sampleBytes)
	if err != nil {
		log.Debugf("charset: sample %s: %v; assuming %s", path, err, UTF8)
		return UTF8
	}

	for _, name := range candidates {
		c, err := Canonical(name)
		if err != nil {
			log.Warnf("charset: skipping candidate: %v", err)
			continue
		}
		if Decodes(c, sample, truncated) {
			return c
		}
	}
	return UTF8
}

// readSample reads up to n bytes and reports whether the file continues past
// the sample.
func readSample(path string, n int) ([]byte, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false, err
	}
	defer f.Close()

	buf := make([]byte, n+1)
	m, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, false, err
	}
	if m > n {
		return buf[:n], true, nil
	}
	return buf[:m], false, nil
}

// Decodes reports whether sample is a valid byte sequence in the canonical
// encoding c. When truncated is true, an incomplete character at the very end
// of the sample is tolerated.
func Decodes(c string, sample []byte, truncated bool) bool {
	switch c {
	case UTF8:
		return validUTF8(sample, truncated)
	case UTF16:
		return validUTF16(sample, truncated)
	case Latin1:
		return true
	case CP1252:
		return validCP1252(sample)
	default:
		return false
	}
}

func validUTF8(b []byte, truncated bool) bool {
	if utf8.Valid(b) {
		return true
	}
	if !truncated {
		return false
	}
	for i := 1; i < utf8.UTFMax && i <= len(b); i++ {
		tail := b[len(b)-i:]
		if !utf8.RuneStart(tail[0]) {
			continue
		}
		return !utf8.FullRune(tail) && utf8.Valid(b[:len(b)-i])
	}
	return false
}

var (
	bomLE = []byte{0xFF, 0xFE}
	bomBE = []byte{0xFE, 0xFF}
)

// validUTF16 requires a byte-order mark: without one almost any even-length
// byte string is well-formed UTF-16 and the candidate would shadow the
// single-byte encodings.
func validUTF16(b []byte, truncated bool) bool {
	var le bool
	switch {
	case bytes.HasPrefix(b, bomLE):
		le = true
	case bytes.HasPrefix(b, bomBE):
	default:
		return false
	}
	b = b[2:]
	if len(b)%2 == 1 {
		if !truncated {
			return false
		}
		b = b[:len(b)-1]
	}

	unit := func(i int) uint16 {
		if le {
			return uint16(b[i]) | uint16(b[i+1])<<8
		}
		return uint16(b[i])<<8 | uint16(b[i+1])
	}

	for i := 0; i < len(b); i += 2 {
		u := unit(i)
		switch {
		case u >= 0xD800 && u <= 0xDBFF:
			if i+2 >= len(b) {
				return truncated
			}
			next := unit(i + 2)
			if next < 0xDC00 || next > 0xDFFF {
				return false
			}
			i += 2
		case u >= 0xDC00 && u <= 0xDFFF:
			return false
		}
	}
	return true
}

// cp1252Undefined lists the byte values Windows-1252 leaves unassigned.
var cp1252Undefined = [256]bool{0x81: true, 0x8D: true, 0x8F: true, 0x90: true, 0x9D: true}

func validCP1252(b []byte) bool {
	for _, c := range b {
		if cp1252Undefined[c] {
			return false
		}
	}
	return true
}
