package contacts

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// bomReader drops a leading UTF-8 byte order mark. Spreadsheet exports on
// Windows add one, and without this the first header name would carry it.
type bomReader struct {
	r       *bufio.Reader
	checked bool
}

func newBOMReader(r io.Reader) *bomReader {
	return &bomReader{r: bufio.NewReader(r)}
}

func (b *bomReader) Read(p []byte) (int, error) {
	if !b.checked {
		b.checked = true
		if head, err := b.r.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
			_, _ = b.r.Discard(len(utf8BOM))
		}
	}
	return b.r.Read(p)
}

// utf8Sanitizer replaces each invalid UTF-8 byte with '?' while streaming.
// A multi-byte rune split across two reads is carried to the next chunk.
type utf8Sanitizer struct {
	r     io.Reader
	chunk []byte
	carry []byte
	out   []byte
	err   error
}

func newUTF8Sanitizer(r io.Reader) *utf8Sanitizer {
	return &utf8Sanitizer{r: r, chunk: make([]byte, 4096)}
}

func (s *utf8Sanitizer) Read(p []byte) (int, error) {
	for len(s.out) == 0 {
		if s.err != nil {
			return 0, s.err
		}
		s.fill()
	}
	n := copy(p, s.out)
	s.out = s.out[n:]
	return n, nil
}

// fill reads one chunk from the source and appends its sanitized form to out.
func (s *utf8Sanitizer) fill() {
	n, err := s.r.Read(s.chunk)
	data := append(s.carry, s.chunk[:n]...)
	s.carry = nil
	if err != nil {
		s.err = err
	} else if cut := partialRuneTail(data); cut > 0 {
		s.carry = append([]byte(nil), data[len(data)-cut:]...)
		data = data[:len(data)-cut]
	}

	out := s.out[:0]
	for i := 0; i < len(data); {
		if data[i] < utf8.RuneSelf {
			out = append(out, data[i])
			i++
			continue
		}
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			out = append(out, '?')
			i++
			continue
		}
		out = append(out, data[i:i+size]...)
		i += size
	}
	s.out = out
}

// partialRuneTail reports how many trailing bytes form the start of a rune
// that is not complete yet.
func partialRuneTail(data []byte) int {
	for i := 1; i <= utf8.UTFMax-1 && i <= len(data); i++ {
		b := data[len(data)-i]
		if b&0xC0 == 0x80 {
			continue // continuation byte
		}
		if b < utf8.RuneSelf {
			return 0
		}
		if !utf8.FullRune(data[len(data)-i:]) {
			return i
		}
		return 0
	}
	return 0
}

// SanitizeReader wraps r so that a leading BOM is dropped and invalid UTF-8
// is replaced. Parse applies it automatically.
func SanitizeReader(r io.Reader) io.Reader {
	return newUTF8Sanitizer(newBOMReader(r))
}
