// Package decoding turns loosely structured agent answers into typed résumé data.
// Every function here is total: malformed input degrades to defaults.
package decoding

import (
	"bytes"
	"encoding/json"
	"strings"
)

// RawKind discriminates RawAnswer variants
type RawKind int

const (
	RawEmpty  RawKind = iota // nothing usable
	RawObject                // a JSON object
	RawText                  // text that is not a JSON object
)

func (k RawKind) String() string {
	switch k {
	case RawObject:
		return "object"
	case RawText:
		return "text"
	default:
		return "empty"
	}
}

// RawAnswer is an agent answer before interpretation.
type RawAnswer struct {
	kind   RawKind
	object map[string]any
	text   string
}

// Kind returns the variant.
func (r RawAnswer) Kind() RawKind { return r.kind }

// Object returns the decoded object and true for RawObject answers.
func (r RawAnswer) Object() (map[string]any, bool) {
	return r.object, r.kind == RawObject
}

// Text returns the raw text for RawText answers.
func (r RawAnswer) Text() (string, bool) {
	return r.text, r.kind == RawText
}

// ParseRaw classifies answer bytes. A JSON string that itself holds an object
// is unwrapped one level; text with an object embedded in prose is salvaged.
func ParseRaw(data []byte) RawAnswer {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return RawAnswer{kind: RawEmpty}
	}

	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		if obj, ok := embeddedObject(string(trimmed)); ok {
			return RawAnswer{kind: RawObject, object: obj}
		}
		return RawAnswer{kind: RawText, text: string(trimmed)}
	}

	switch val := v.(type) {
	case map[string]any:
		return RawAnswer{kind: RawObject, object: val}
	case string:
		if obj, ok := embeddedObject(val); ok {
			return RawAnswer{kind: RawObject, object: obj}
		}
		if strings.TrimSpace(val) == "" {
			return RawAnswer{kind: RawEmpty}
		}
		return RawAnswer{kind: RawText, text: val}
	case nil:
		return RawAnswer{kind: RawEmpty}
	default:
		return RawAnswer{kind: RawText, text: string(trimmed)}
	}
}

// FromValue classifies an already-decoded value.
func FromValue(v any) RawAnswer {
	switch val := v.(type) {
	case nil:
		return RawAnswer{kind: RawEmpty}
	case map[string]any:
		return RawAnswer{kind: RawObject, object: val}
	case string:
		return ParseRaw([]byte(val))
	case []byte:
		return ParseRaw(val)
	case json.RawMessage:
		return ParseRaw(val)
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return RawAnswer{kind: RawEmpty}
		}
		return ParseRaw(data)
	}
}

// embeddedObject extracts the outermost {...} span of s if it parses as an object.
func embeddedObject(s string) (map[string]any, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return nil, false
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(s[start:end+1]), &obj); err != nil {
		return nil, false
	}
	return obj, true
}
