package import_pkg

import (
	"bufio"
	"io"
	"strings"
	"unicode/utf8"
)

// Backslash-escaped characters are carried through encoding/csv as private
// use runes and restored once the row is split into fields.
const (
	escComma     = '\uE000'
	escQuote     = '\uE001'
	escBackslash = '\uE002'
	escNewline   = '\uE003'
	escReturn    = '\uE004'
)

var unescapeFields = strings.NewReplacer(
	string(escComma), ",",
	string(escQuote), `"`,
	string(escBackslash), `\`,
	string(escNewline), "\n",
	string(escReturn), "\r",
)

// escapeReader drops the backslash in front of any character and shields
// characters that are significant to the CSV parser, so `O\"Neil` reads as
// O"Neil and `Lee\, Jr` stays in one field.
type escapeReader struct {
	src *bufio.Reader
	buf []byte
	err error
}

func newEscapeReader(r io.Reader) *escapeReader {
	return &escapeReader{src: bufio.NewReader(r)}
}

func (e *escapeReader) Read(p []byte) (int, error) {
	for len(e.buf) < len(p) && e.err == nil {
		r, _, err := e.src.ReadRune()
		if err != nil {
			e.err = err
			break
		}
		if r != '\\' {
			e.buf = utf8.AppendRune(e.buf, r)
			continue
		}

		next, _, err := e.src.ReadRune()
		if err != nil {
			// Trailing backslash at end of input is kept as is
			e.buf = append(e.buf, '\\')
			e.err = err
			break
		}
		e.buf = utf8.AppendRune(e.buf, shield(next))
	}

	if len(e.buf) == 0 {
		return 0, e.err
	}
	n := copy(p, e.buf)
	e.buf = e.buf[n:]
	return n, nil
}

func shield(r rune) rune {
	switch r {
	case ',':
		return escComma
	case '"':
		return escQuote
	case '\\':
		return escBackslash
	case '\n':
		return escNewline
	case '\r':
		return escReturn
	default:
		return r
	}
}

func unescape(fields []string) {
	for i, f := range fields {
		fields[i] = unescapeFields.Replace(f)
	}
}
