package snippet

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/gubarz/snipgen/internal/parser"
)

const scope = "css,less,scss"

func build(t *testing.T, input string) *Collection {
	t.Helper()
	b := NewBuilder(scope)
	if err := parser.NewParser(b).Parse(strings.NewReader(input)); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return b.Collection()
}

func TestBuildEntry(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Entry
	}{
		{
			name:  "short code is the description",
			input: "rounded-sm border-radius: 0.125rem;",
			expected: Entry{
				Key:         "border-radius: 0.125rem;",
				Prefix:      "rounded-sm",
				Description: "border-radius: 0.125rem;",
				Body:        []string{"border-radius: 0.125rem;", "${0}"},
			},
		},
		{
			name:  "long code falls back to the name",
			input: "truncate overflow: hidden;__NL__text-overflow: ellipsis;__NL__white-space: nowrap;",
			expected: Entry{
				Key:         "truncate",
				Prefix:      "truncate",
				Description: "truncate",
				Body:        []string{"overflow: hidden;", "text-overflow: ellipsis;", "white-space: nowrap;", "${0}"},
			},
		},
		{
			name:  "newline and space markers",
			input: "gap-x a: 1;__NL__  b:__SP__",
			expected: Entry{
				Key:         "a: 1;__NL__  b:__SP__",
				Prefix:      "gap-x",
				Description: "a: 1;__NL__  b:__SP__",
				Body:        []string{"a: 1;", "b: ", "${0}"},
			},
		},
		{
			name:  "existing cursor is kept",
			input: "m margin: ${1:0}${0};",
			expected: Entry{
				Key:         "margin: ${1:0}${0};",
				Prefix:      "m",
				Description: "margin: ${1:0}${0};",
				Body:        []string{"margin: ${1:0}${0};"},
			},
		},
		{
			name:  "quotes stay escaped",
			input: `content-none content: "";`,
			expected: Entry{
				Key:         `content: \"\";`,
				Prefix:      "content-none",
				Description: `content: \"\";`,
				Body:        []string{`content: \"\";`, "${0}"},
			},
		},
		{
			name:  "color values are not decorated",
			input: "color-red-500 #ef4444",
			expected: Entry{
				Key:         "#ef4444",
				Prefix:      "color-red-500",
				Description: "#ef4444",
				Body:        []string{"#ef4444"},
			},
		},
		{
			name:  "spacing snippets get a label",
			input: "space-x-1 margin-left: 0.25rem;",
			expected: Entry{
				Key:         "margin-left: 0.25rem;",
				Prefix:      "space-x-1",
				Description: "margin-left: 0.25rem;",
				Body:        []string{"/* space-x-1 */", "margin-left: 0.25rem;", "${0}"},
			},
		},
		{
			name:  "block keeps indentation and drops trailing space",
			input: "flex-center\n```\ndisplay: flex;   \n  align-items: center;\n```\n",
			expected: Entry{
				Key:         "flex-center",
				Prefix:      "flex-center",
				Description: "flex-center",
				Body:        []string{"display: flex;", "  align-items: center;", "${0}"},
			},
		},
		{
			name:  "block markers are not expanded",
			input: "blk\n```\n  a:__SP__b __NL__ c;\n```\n",
			expected: Entry{
				Key:         "blk",
				Prefix:      "blk",
				Description: "blk",
				Body:        []string{"  a:__SP__b __NL__ c;", "${0}"},
			},
		},
		{
			name:  "block with cursor gets no extra cursor",
			input: "blk\n```\n  ${0}\n```\n",
			expected: Entry{
				Key:         "blk",
				Prefix:      "blk",
				Description: "blk",
				Body:        []string{"  ${0}"},
			},
		},
		{
			name:  "spacing block gets a label",
			input: "space-blk\n```\nmargin: 0;\n```\n",
			expected: Entry{
				Key:         "space-blk",
				Prefix:      "space-blk",
				Description: "space-blk",
				Body:        []string{"/* space-blk */", "margin: 0;", "${0}"},
			},
		},
		{
			name:  "color block is not decorated",
			input: "color-blk\n```\n#fff\n```\n",
			expected: Entry{
				Key:         "color-blk",
				Prefix:      "color-blk",
				Description: "color-blk",
				Body:        []string{"#fff"},
			},
		},
		{
			name:  "29 characters is still the description",
			input: "w29 " + strings.Repeat("a", 29),
			expected: Entry{
				Key:         strings.Repeat("a", 29),
				Prefix:      "w29",
				Description: strings.Repeat("a", 29),
				Body:        []string{strings.Repeat("a", 29), "${0}"},
			},
		},
		{
			name:  "30 characters falls back to the name",
			input: "w30 " + strings.Repeat("a", 30),
			expected: Entry{
				Key:         "w30",
				Prefix:      "w30",
				Description: "w30",
				Body:        []string{strings.Repeat("a", 30), "${0}"},
			},
		},
		{
			name:  "astral characters count twice",
			input: "e29 a" + strings.Repeat("\U0001F600", 14),
			expected: Entry{
				Key:         "a" + strings.Repeat("\U0001F600", 14),
				Prefix:      "e29",
				Description: "a" + strings.Repeat("\U0001F600", 14),
				Body:        []string{"a" + strings.Repeat("\U0001F600", 14), "${0}"},
			},
		},
		{
			name:  "15 astral characters are 30 units",
			input: "e30 " + strings.Repeat("\U0001F600", 15),
			expected: Entry{
				Key:         "e30",
				Prefix:      "e30",
				Description: "e30",
				Body:        []string{strings.Repeat("\U0001F600", 15), "${0}"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := build(t, tt.input)
			if len(c.Entries) != 1 {
				t.Fatalf("expected 1 entry, got %d", len(c.Entries))
			}
			got := *c.Entries[0]
			tt.expected.Scope = scope
			tt.expected.Line = 1
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("expected %+v, got %+v", tt.expected, got)
			}
		})
	}
}

func TestDuplicateDescriptions(t *testing.T) {
	c := build(t, strings.Join([]string{
		"flex display: flex;",
		"d-flex display: flex;",
		"hidden display: none;",
		"d-none display: none;",
		"flexbox display: flex;",
	}, "\n"))

	if err := c.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}

	var keys []string
	for _, e := range c.Entries {
		keys = append(keys, e.Key)
	}
	expected := []string{
		"display: flex;",
		"display: flex;_1",
		"display: none;",
		"display: none;_2",
		"display: flex;_3",
	}
	if !reflect.DeepEqual(keys, expected) {
		t.Errorf("expected keys %q, got %q", expected, keys)
	}
	for _, e := range c.Entries[1:2] {
		if e.Description != "display: flex;" {
			t.Errorf("description should not carry the suffix, got %q", e.Description)
		}
	}
}

func TestDuplicatePrefixes(t *testing.T) {
	c := build(t, strings.Join([]string{
		"flex display: flex;",
		"hidden display: none;",
		"flex display: inline-flex;",
		"hidden visibility: hidden;",
		"block display: block;",
	}, "\n"))

	if len(c.Entries) != 3 {
		t.Errorf("expected 3 committed entries, got %d", len(c.Entries))
	}

	expected := []Duplicate{
		{Name: "flex", FirstLine: 1, Line: 3},
		{Name: "hidden", FirstLine: 2, Line: 4},
	}
	if !reflect.DeepEqual(c.Duplicates, expected) {
		t.Errorf("expected %+v, got %+v", expected, c.Duplicates)
	}

	err := c.Err()
	if !errors.Is(err, ErrDuplicatePrefix) {
		t.Fatalf("expected ErrDuplicatePrefix, got %v", err)
	}
	var dupErr *DuplicateError
	if !errors.As(err, &dupErr) || dupErr.Name != "flex" {
		t.Errorf("expected DuplicateError for flex, got %v", err)
	}
	if !strings.Contains(err.Error(), `"hidden"`) {
		t.Errorf("error should mention every duplicate: %v", err)
	}
}

func TestAddEmptyRecord(t *testing.T) {
	b := NewBuilder(scope)
	err := b.Add(parser.Record{Name: "empty", Multiline: true})
	if !errors.Is(err, parser.ErrEmptyCode) {
		t.Errorf("expected ErrEmptyCode, got %v", err)
	}
	if err := b.Add(parser.Record{Name: "empty"}); !errors.Is(err, parser.ErrEmptyCode) {
		t.Errorf("expected ErrEmptyCode, got %v", err)
	}
}

func TestLiteral(t *testing.T) {
	c := build(t, "rounded-sm border-radius: 0.125rem;\nhidden display: none;")

	expected := `{"border-radius: 0.125rem;":{"prefix":"rounded-sm","description":"border-radius: 0.125rem;","scope":"css,less,scss","body":["border-radius: 0.125rem;","${0}"]},` +
		`"display: none;":{"prefix":"hidden","description":"display: none;","scope":"css,less,scss","body":["display: none;","${0}"]}}`
	if got := c.Literal(); got != expected {
		t.Errorf("expected\n%s\ngot\n%s", expected, got)
	}

	empty := NewBuilder(scope).Collection()
	if got := empty.Literal(); got != "{}" {
		t.Errorf("expected {}, got %s", got)
	}
}

func TestFind(t *testing.T) {
	c := build(t, "hidden display: none;")
	if e, ok := c.Find("hidden"); !ok || e.Key != "display: none;" {
		t.Errorf("Find(hidden) = %+v, %v", e, ok)
	}
	if _, ok := c.Find("missing"); ok {
		t.Error("Find(missing) should fail")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tw.txt")
	if err := os.WriteFile(path, []byte("// css\nhidden display: none;\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path, scope)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(c.Entries) != 1 || c.Entries[0].Line != 2 {
		t.Errorf("unexpected entries: %+v", c.Entries)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.txt"), scope); err == nil {
		t.Error("expected error for missing input")
	}
}
