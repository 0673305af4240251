package trace

import (
	"fmt"
	"strings"
)

// secretKeys is matched case-insensitively against map keys at any depth;
// net-new (the teacher has no trace redaction), but kept in the teacher's
// doc-comment style and placed alongside the Builder it protects.
var secretKeys = map[string]bool{
	"password":      true,
	"token":         true,
	"api_key":       true,
	"apikey":        true,
	"secret":        true,
	"client_secret": true,
	"access_token":  true,
	"refresh_token": true,
	"authorization": true,
	"private_key":   true,
}

const redactedPlaceholder = "<REDACTED>"

// Redact walks a node's input/output snapshot, replacing secret-like
// values and binary payloads so a trace file is safe to share. Returns a
// new map; the input is never mutated.
func Redact(v map[string]any) map[string]any {
	if v == nil {
		return nil
	}
	out := make(map[string]any, len(v))
	for k, val := range v {
		if secretKeys[strings.ToLower(k)] {
			out[k] = redactedPlaceholder
			continue
		}
		out[k] = redactValue(val)
	}
	return out
}

func redactValue(v any) any {
	switch t := v.(type) {
	case []byte:
		return fmt.Sprintf("<binary data: %d bytes>", len(t))
	case map[string]any:
		return Redact(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = redactValue(item)
		}
		return out
	default:
		return v
	}
}
