package emitter

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/tidwall/gjson"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ErrMalformedJSON is returned when the assembled entries do not parse
var ErrMalformedJSON = errors.New("assembled snippets are not valid JSON")

const indent = "  "

// document is the value stored under each snippet key
type document struct {
	Prefix      string   `json:"prefix"`
	Description string   `json:"description"`
	Scope       string   `json:"scope"`
	Body        []string `json:"body"`
}

// Format validates raw as a JSON object of snippets and re-encodes it with
// stable indentation. Keys keep their first-seen order; a repeated key keeps
// its first position and its last value.
func Format(raw []byte) ([]byte, error) {
	if !gjson.ValidBytes(raw) {
		return nil, ErrMalformedJSON
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return nil, ErrMalformedJSON
	}

	docs := orderedmap.New[string, document]()
	root.ForEach(func(key, value gjson.Result) bool {
		docs.Set(key.String(), decodeDocument(value))
		return true
	})

	return encode(docs)
}

func decodeDocument(value gjson.Result) document {
	lines := value.Get("body").Array()
	doc := document{
		Prefix:      value.Get("prefix").String(),
		Description: value.Get("description").String(),
		Scope:       value.Get("scope").String(),
		Body:        make([]string, 0, len(lines)),
	}
	for _, line := range lines {
		doc.Body = append(doc.Body, line.String())
	}
	return doc
}

func encode(docs *orderedmap.OrderedMap[string, document]) ([]byte, error) {
	var compact bytes.Buffer
	compact.WriteByte('{')
	for pair := docs.Oldest(); pair != nil; pair = pair.Next() {
		if compact.Len() > 1 {
			compact.WriteByte(',')
		}
		if err := appendJSON(&compact, pair.Key); err != nil {
			return nil, err
		}
		compact.WriteByte(':')
		if err := appendJSON(&compact, pair.Value); err != nil {
			return nil, err
		}
	}
	compact.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", indent); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// appendJSON writes v without HTML escaping; selectors like "& > a" stay readable
func appendJSON(dst *bytes.Buffer, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	dst.Write(unescapeLineSeparators(bytes.TrimRight(buf.Bytes(), "\n")))
	return nil
}

// unescapeLineSeparators turns the encoder's \u2028 and \u2029 escapes back
// into the characters themselves. An escape is real only when preceded by an
// even number of backslashes; "\\u2028" is literal text and stays.
func unescapeLineSeparators(b []byte) []byte {
	if !bytes.Contains(b, []byte(`\u202`)) {
		return b
	}
	out := make([]byte, 0, len(b))
	backslashes := 0
	for i := 0; i < len(b); i++ {
		if b[i] == '\\' && backslashes%2 == 0 && i+6 <= len(b) {
			switch string(b[i : i+6]) {
			case `\u2028`:
				out = append(out, "\u2028"...)
				i += 5
				backslashes = 0
				continue
			case `\u2029`:
				out = append(out, "\u2029"...)
				i += 5
				backslashes = 0
				continue
			}
		}
		if b[i] == '\\' {
			backslashes++
		} else {
			backslashes = 0
		}
		out = append(out, b[i])
	}
	return out
}
