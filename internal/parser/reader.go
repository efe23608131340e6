package parser

import (
	"bufio"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// maxLineSize bounds a single source line. Long single-line records with many
// __NL__ markers can run past bufio's 64KB default.
const maxLineSize = 1024 * 1024

// LineReader yields the lines of a UTF-8 source in order.
// Both \n and \r\n terminators are accepted; a leading byte-order mark is dropped.
type LineReader struct {
	scanner *bufio.Scanner
	line    int
}

// NewLineReader wraps r. Invalid UTF-8 sequences decode to U+FFFD.
func NewLineReader(r io.Reader) *LineReader {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	scanner := bufio.NewScanner(decoded)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &LineReader{scanner: scanner}
}

// Scan advances to the next line, returning false at end of input or on error.
func (r *LineReader) Scan() bool {
	if !r.scanner.Scan() {
		return false
	}
	r.line++
	return true
}

// Text returns the current line without its terminator.
func (r *LineReader) Text() string {
	return r.scanner.Text()
}

// Line returns the 1-based number of the current line.
func (r *LineReader) Line() int {
	return r.line
}

// Err returns the first non-EOF error encountered while reading.
func (r *LineReader) Err() error {
	return r.scanner.Err()
}
