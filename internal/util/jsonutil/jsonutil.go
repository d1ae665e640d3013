package jsonutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// ErrEmpty is returned by UnmarshalFlex when the payload has no content.
var ErrEmpty = errors.New("jsonutil: empty payload")

// MarshalNoEscape encodes v into JSON without escaping <, >, & into \u003c, etc.
func MarshalNoEscape(v any) ([]byte, error) {
	return encode(v, "")
}

// MarshalNoEscapeIndent is MarshalNoEscape with two-space indentation.
func MarshalNoEscapeIndent(v any) ([]byte, error) {
	return encode(v, "  ")
}

func encode(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	// Remove trailing newline from json.Encoder.Encode
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalFlex decodes model output into v with best effort:
//  1. direct unmarshal
//  2. strip a markdown code fence and retry
//  3. unwrap a JSON document that was returned as a quoted string
//
// The first error is returned when every attempt fails.
func UnmarshalFlex(raw []byte, v any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return ErrEmpty
	}
	firstErr := json.Unmarshal(trimmed, v)
	if firstErr == nil {
		return nil
	}
	if unfenced, ok := stripFence(string(trimmed)); ok {
		if err := json.Unmarshal([]byte(unfenced), v); err == nil {
			return nil
		}
	}
	var inner string
	if err := json.Unmarshal(trimmed, &inner); err == nil {
		inner = strings.TrimSpace(inner)
		if inner == "" {
			return ErrEmpty
		}
		if err := json.Unmarshal([]byte(inner), v); err == nil {
			return nil
		}
	}
	return firstErr
}

func stripFence(s string) (string, bool) {
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return "", false
	}
	body := strings.TrimSuffix(strings.TrimPrefix(s, "```"), "```")
	// Drop the info string ("json") on the opening line.
	if i := strings.IndexByte(body, '\n'); i >= 0 {
		body = body[i+1:]
	}
	return strings.TrimSpace(body), true
}
