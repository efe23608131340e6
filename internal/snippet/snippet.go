package snippet

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf16"

	"fortio.org/log"

	"github.com/gubarz/snipgen/internal/parser"
)

// Markers understood inside single-line code, and the snippet placeholders
const (
	NewlineToken = "__NL__"
	SpaceToken   = "__SP__"
	CursorToken  = "${0}"

	colorPrefix = "color-"
	spacePrefix = "space-"

	// Code shorter than this is readable enough to be its own description
	maxDescLen = 30
)

// ErrDuplicatePrefix marks a name used by more than one record
var ErrDuplicatePrefix = errors.New("duplicate prefix")

// Entry is one snippet definition.
// Text fields hold JSON string contents: quotes are already escaped.
type Entry struct {
	Key         string
	Prefix      string
	Description string
	Scope       string
	Body        []string
	Line        int
}

// Literal renders the entry as a JSON object member, "key":{...}
func (e *Entry) Literal() string {
	var b strings.Builder
	fmt.Fprintf(&b, `"%s":{"prefix":"%s","description":"%s","scope":"%s","body":[`,
		e.Key, e.Prefix, e.Description, e.Scope)
	for i, line := range e.Body {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(line)
		b.WriteByte('"')
	}
	b.WriteString("]}")
	return b.String()
}

// Duplicate records a prefix that was defined again
type Duplicate struct {
	Name      string
	FirstLine int
	Line      int
}

// DuplicateError wraps a Duplicate as an error
type DuplicateError struct {
	Duplicate
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("line %d: %v %q (first defined at line %d)", e.Line, ErrDuplicatePrefix, e.Name, e.FirstLine)
}

func (e *DuplicateError) Unwrap() error {
	return ErrDuplicatePrefix
}

// Builder accumulates the state of one run: committed entries, seen names and
// descriptions, the key disambiguation counter and any duplicates.
type Builder struct {
	scope      string
	entries    []*Entry
	names      map[string]int // name -> line it was committed from
	descs      map[string]bool
	counter    int
	duplicates []Duplicate
}

// NewBuilder creates a builder writing scope into every entry
func NewBuilder(scope string) *Builder {
	return &Builder{
		scope: scope,
		names: make(map[string]int),
		descs: make(map[string]bool),
	}
}

// Add implements parser.Sink
func (b *Builder) Add(rec parser.Record) error {
	if rec.Empty() {
		return parser.ErrEmptyCode
	}

	desc := rec.Name
	if !rec.Multiline && utf16Len(rec.Code) < maxDescLen {
		desc = rec.Code
	}

	key := desc
	if b.descs[desc] {
		b.counter++
		key = fmt.Sprintf("%s_%d", desc, b.counter)
	}

	entry := &Entry{
		Key:         key,
		Prefix:      rec.Name,
		Description: desc,
		Scope:       b.scope,
		Body:        buildBody(rec),
		Line:        rec.Line,
	}

	if first, ok := b.names[rec.Name]; ok {
		log.S(log.Error, "Duplicate prefix", log.Str("name", rec.Name), log.Attr("line", rec.Line), log.Attr("first_line", first))
		b.duplicates = append(b.duplicates, Duplicate{Name: rec.Name, FirstLine: first, Line: rec.Line})
		return nil
	}

	b.entries = append(b.entries, entry)
	b.names[rec.Name] = rec.Line
	b.descs[desc] = true
	log.Debugf("Added %q as %q (line %d)", entry.Prefix, entry.Key, entry.Line)
	return nil
}

// utf16Len measures s the way editors do: characters outside the BMP count twice
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// buildBody produces the body lines of a record
func buildBody(rec parser.Record) []string {
	var body []string
	if rec.Multiline {
		for _, line := range rec.Block {
			body = append(body, strings.TrimRightFunc(line, unicode.IsSpace))
		}
	} else {
		for _, frag := range strings.Split(rec.Code, NewlineToken) {
			body = append(body, strings.ReplaceAll(strings.TrimSpace(frag), SpaceToken, " "))
		}
	}

	// Color values are emitted as written
	if strings.HasPrefix(rec.Name, colorPrefix) {
		return body
	}

	// Spacing snippets look alike once expanded; label them
	if strings.HasPrefix(rec.Name, spacePrefix) {
		body = append([]string{"/* " + rec.Name + " */"}, body...)
	}

	if !containsCursor(body) {
		body = append(body, CursorToken)
	}
	return body
}

func containsCursor(body []string) bool {
	for _, line := range body {
		if strings.Contains(line, CursorToken) {
			return true
		}
	}
	return false
}

// Collection returns everything built so far
func (b *Builder) Collection() *Collection {
	return &Collection{
		Scope:      b.scope,
		Entries:    b.entries,
		Duplicates: b.duplicates,
	}
}

// Collection is the result of a complete parse
type Collection struct {
	Scope      string
	Entries    []*Entry
	Duplicates []Duplicate
}

// Err returns one DuplicateError per duplicate, joined, or nil
func (c *Collection) Err() error {
	var errs []error
	for _, dup := range c.Duplicates {
		errs = append(errs, &DuplicateError{Duplicate: dup})
	}
	return errors.Join(errs...)
}

// Literal concatenates all entries into one JSON object text
func (c *Collection) Literal() string {
	members := make([]string, len(c.Entries))
	for i, e := range c.Entries {
		members[i] = e.Literal()
	}
	return "{" + strings.Join(members, ",") + "}"
}

// Find returns the entry with the given prefix
func (c *Collection) Find(prefix string) (*Entry, bool) {
	for _, e := range c.Entries {
		if e.Prefix == prefix {
			return e, true
		}
	}
	return nil, false
}

// Load parses the file at path into a collection.
// Parse failures are returned as errors; duplicates are reported by Collection.Err.
func Load(path, scope string) (*Collection, error) {
	b := NewBuilder(scope)
	if err := parser.NewParser(b).ParseFile(path); err != nil {
		return nil, err
	}
	c := b.Collection()
	log.Infof("Parsed %d snippets from %s", len(c.Entries), path)
	return c, nil
}
