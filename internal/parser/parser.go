package parser

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	commentMarker = "//"
	fence         = "```"
)

var (
	// ErrInvalidLine marks a line that is neither a record nor a block name.
	ErrInvalidLine = errors.New("invalid line")
	// ErrEmptyCode marks a record without any code.
	ErrEmptyCode = errors.New("empty code")
	// ErrUnterminatedBlock marks a block still open at end of input.
	ErrUnterminatedBlock = errors.New("unterminated block")
)

// Record is one parsed name/code pair
type Record struct {
	Line      int      // Source line of the name
	Name      string   // Trimmed, quote-escaped name
	Code      string   // Single-line code, trimmed and quote-escaped
	Block     []string // Multi-line code, one quote-escaped entry per source line
	Multiline bool     // Whether the record came from a fenced block
}

// Empty reports whether the record carries no code at all
func (r Record) Empty() bool {
	if r.Multiline {
		return len(r.Block) == 0
	}
	return r.Code == ""
}

// Sink receives every complete record in source order.
// An error returned by Add aborts parsing.
type Sink interface {
	Add(rec Record) error
}

// ParseError reports the source line a fatal error was found at
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Text)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parser turns source lines into records.
// Multi-line state lives here; everything derived from records lives in the sink.
type Parser struct {
	sink Sink

	currentKey    string
	keyLine       int
	block         []string
	waitingForEnd bool
}

// NewParser creates a parser that hands records to sink
func NewParser(sink Sink) *Parser {
	return &Parser{sink: sink}
}

// ParseFile parses the file at path
func (p *Parser) ParseFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	if err := p.Parse(file); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Parse consumes r to the end
func (p *Parser) Parse(r io.Reader) error {
	lines := NewLineReader(r)
	for lines.Scan() {
		if err := p.parseLine(lines.Line(), lines.Text()); err != nil {
			return err
		}
	}
	if err := lines.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return p.finish()
}

func (p *Parser) parseLine(lineNo int, line string) error {
	trimmed := strings.TrimSpace(line)

	// Blank lines and comments
	if trimmed == "" || strings.HasPrefix(line, commentMarker) {
		return nil
	}

	// Inside a block: fences toggle, everything else is code
	if p.currentKey != "" {
		if trimmed == fence {
			if !p.waitingForEnd {
				p.waitingForEnd = true
				return nil
			}
			return p.flushBlock()
		}
		// Leading indentation is part of the code
		p.block = append(p.block, escapeQuotes(line))
		return nil
	}

	left, right := splitOnFirstSpace(line)
	// A leading space leaves the name empty; the rest of the line is still code
	name := escapeQuotes(strings.TrimSpace(left))

	// A name alone opens a block
	if strings.TrimSpace(right) == "" {
		if p.currentKey != "" {
			return &ParseError{Line: lineNo, Text: line, Err: ErrInvalidLine}
		}
		p.currentKey = name
		p.keyLine = lineNo
		return nil
	}

	return p.emit(Record{
		Line: lineNo,
		Name: name,
		Code: escapeQuotes(strings.TrimSpace(right)),
	}, line)
}

func (p *Parser) flushBlock() error {
	rec := Record{
		Line:      p.keyLine,
		Name:      p.currentKey,
		Block:     p.block,
		Multiline: true,
	}
	p.currentKey = ""
	p.keyLine = 0
	p.block = nil
	p.waitingForEnd = false
	return p.emit(rec, rec.Name)
}

func (p *Parser) emit(rec Record, text string) error {
	if rec.Empty() {
		return &ParseError{Line: rec.Line, Text: text, Err: ErrEmptyCode}
	}
	if err := p.sink.Add(rec); err != nil {
		return &ParseError{Line: rec.Line, Text: text, Err: err}
	}
	return nil
}

func (p *Parser) finish() error {
	if p.currentKey == "" {
		return nil
	}
	return &ParseError{Line: p.keyLine, Text: p.currentKey, Err: ErrUnterminatedBlock}
}

// splitOnFirstSpace splits at the first space.
// Without a space the whole line is the left part.
func splitOnFirstSpace(s string) (string, string) {
	left, right, found := strings.Cut(s, " ")
	if !found {
		return s, ""
	}
	return left, right
}

func escapeQuotes(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
