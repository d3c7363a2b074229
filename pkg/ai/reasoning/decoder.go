package reasoning

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// Kind tags how a structured response was recovered.
type Kind int

const (
	// Unparseable means text came back but no step could decode it.
	Unparseable Kind = iota
	StrictJSON
	FencedJSON
	// ExtractedJSON is strict JSON cut out of surrounding prose.
	ExtractedJSON
	LegacyLiteral
)

func (k Kind) String() string {
	switch k {
	case StrictJSON:
		return "strict_json"
	case FencedJSON:
		return "fenced_json"
	case ExtractedJSON:
		return "extracted_json"
	case LegacyLiteral:
		return "legacy_literal"
	default:
		return "unparseable"
	}
}

// Decoded is the result of Decode. Value is a map[string]interface{} or a
// []interface{} unless Kind is Unparseable, in which case it is nil.
type Decoded struct {
	Kind  Kind
	Value interface{}
	Raw   string
}

func (d Decoded) OK() bool {
	return d.Kind != Unparseable
}

// Object returns the decoded value as a JSON object.
func (d Decoded) Object() (map[string]interface{}, bool) {
	m, ok := d.Value.(map[string]interface{})
	return m, ok
}

// Array returns the decoded value as a JSON array.
func (d Decoded) Array() ([]interface{}, bool) {
	a, ok := d.Value.([]interface{})
	return a, ok
}

var fencePattern = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*\\n?(.*?)```")

// Decode recovers a JSON object or array from model output. It tries, in
// order: the whole text as strict JSON, each fenced code block, the outermost
// bracketed span as strict JSON, then a repaired decode of that span (single
// quotes, Python literals, trailing commas). Content parts shaped like
// {"type": "text", "text": "..."} are unwrapped and decoded again.
func Decode(raw string) Decoded {
	return decode(raw, 0)
}

const maxUnwrapDepth = 3

func decode(raw string, depth int) Decoded {
	text := strings.TrimSpace(raw)
	if text == "" {
		return Decoded{Kind: Unparseable, Raw: raw}
	}

	if v, ok := strictContainer(text); ok {
		return finish(StrictJSON, v, raw, depth)
	}

	for _, match := range fencePattern.FindAllStringSubmatch(text, -1) {
		if v, ok := strictContainer(strings.TrimSpace(match[1])); ok {
			return finish(FencedJSON, v, raw, depth)
		}
	}

	if span := bracketedSpan(text); span != "" {
		if v, ok := strictContainer(span); ok {
			return finish(ExtractedJSON, v, raw, depth)
		}
		if repaired, err := jsonrepair.JSONRepair(span); err == nil {
			if v, ok := strictContainer(repaired); ok {
				return finish(LegacyLiteral, v, raw, depth)
			}
		}
	}

	return Decoded{Kind: Unparseable, Raw: raw}
}

func finish(kind Kind, v interface{}, raw string, depth int) Decoded {
	if inner, ok := textPart(v); ok && depth < maxUnwrapDepth {
		nested := decode(inner, depth+1)
		if nested.OK() {
			if nested.Kind < kind {
				nested.Kind = kind
			}
			nested.Raw = raw
			return nested
		}
	}
	return Decoded{Kind: kind, Value: v, Raw: raw}
}

// strictContainer accepts only objects and arrays; a bare string or number
// is not structured output.
func strictContainer(text string) (interface{}, bool) {
	var v interface{}
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, false
	}
	switch v.(type) {
	case map[string]interface{}, []interface{}:
		return v, true
	}
	return nil, false
}

// textPart detects a content-part wrapper, alone or as a one-element list.
func textPart(v interface{}) (string, bool) {
	if list, ok := v.([]interface{}); ok && len(list) == 1 {
		v = list[0]
	}
	m, ok := v.(map[string]interface{})
	if !ok || len(m) != 2 {
		return "", false
	}
	if t, _ := m["type"].(string); t != "text" {
		return "", false
	}
	s, ok := m["text"].(string)
	return s, ok
}

// bracketedSpan returns text from the first '{' or '[' to the last matching
// closer, or "" if there is none.
func bracketedSpan(text string) string {
	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return ""
	}
	closer := byte('}')
	if text[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(text, closer)
	if end <= start {
		return ""
	}
	return text[start : end+1]
}
