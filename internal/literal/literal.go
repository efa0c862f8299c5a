// Package literal decodes the stringified nested values found in catalog
// exports. Upstream fields arrive either as JSON or as Python literal reprs
// (single quotes, None/True/False), sometimes with bare keys. Decoding never
// fails past this package: callers get a value or "nothing".
package literal

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/titanous/json5"
)

// Strategy is one attempt at turning source text into a value.
type Strategy func(string) (any, error)

var (
	// Strict accepts standard JSON only.
	Strict Strategy = parseJSON
	// Structural accepts Python literal syntax by translating its keywords
	// and handing the result to a JSON5 decoder, which already understands
	// single quoted strings and unquoted keys.
	Structural Strategy = parseStructural
	// Repaired quotes bare keys and replaces None with 0 before retrying
	// the structural decode.
	Repaired Strategy = func(s string) (any, error) {
		return parseStructural(Repair(s))
	}
)

// Decode runs strategies in order and returns the first successful value.
// Already decoded values (anything but a string) are returned as is, nulls and
// blank strings decode to nothing.
func Decode(raw any, strategies ...Strategy) (any, bool) {
	switch t := raw.(type) {
	case nil:
		return nil, false
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil, false
		}
		for _, try := range strategies {
			v, err := try(s)
			if err == nil {
				return v, true
			}
		}
		return nil, false
	default:
		return raw, true
	}
}

// DecodeList is Decode narrowed to lists. ok is false when the value decoded
// to something other than a list; undecodable input is an empty list.
func DecodeList(raw any, strategies ...Strategy) (items []any, ok bool) {
	v, decoded := Decode(raw, strategies...)
	if !decoded {
		return []any{}, true
	}
	list, isList := v.([]any)
	if !isList {
		return nil, false
	}
	return list, true
}

var bareKey = regexp.MustCompile(`([a-zA-Z_]+):`)

// Repair applies the textual fixes seen in hand-edited exports: bare keys
// are quoted and None becomes 0.
func Repair(s string) string {
	fixed := bareKey.ReplaceAllString(s, `'$1':`)
	return strings.ReplaceAll(fixed, "None", "0")
}

func parseJSON(s string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	return v, nil
}

func parseStructural(s string) (any, error) {
	var v any
	if err := json5.Unmarshal([]byte(translatePython(s)), &v); err != nil {
		return nil, err
	}
	return v, nil
}

var pythonKeywords = map[string]string{
	"None":  "null",
	"True":  "true",
	"False": "false",
}

// translatePython rewrites Python keywords and tuple brackets found outside
// of string literals.
func translatePython(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			b.WriteByte(c)
			switch c {
			case '\\':
				if i+1 < len(s) {
					i++
					b.WriteByte(s[i])
				}
			case quote:
				quote = 0
			}
			continue
		}
		switch {
		case c == '\'' || c == '"':
			quote = c
			b.WriteByte(c)
		case c == '(':
			b.WriteByte('[')
		case c == ')':
			b.WriteByte(']')
		case isIdentStart(c):
			j := i
			for j < len(s) && isIdentPart(s[j]) {
				j++
			}
			word := s[i:j]
			if repl, ok := pythonKeywords[word]; ok {
				word = repl
			}
			b.WriteString(word)
			i = j - 1
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
