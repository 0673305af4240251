package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pflow-dev/pflow-core/internal/pflowerr"
)

// knownTopLevelKeys mirrors Workflow's JSON tags, used to reject unknown
// top-level keys with a precise pointer while leaving nodes[].params,
// edges[] extras, and inputs{}/outputs{} extras permissive by design.
var knownTopLevelKeys = map[string]struct{}{
	"ir_version":        {},
	"name":              {},
	"description":       {},
	"search_keywords":   {},
	"capabilities":      {},
	"typical_use_cases": {},
	"nodes":             {},
	"edges":             {},
	"inputs":            {},
	"outputs":           {},
}

// Load decodes a canonical IR document from r. When draft is true, a
// missing ir_version is defaulted to "0.1.0" and a missing edges array is
// defaulted to empty — the loader's explicit "caller marks source as
// draft" rule; non-draft sources must already carry both fields.
func Load(r io.Reader, draft bool) (*Workflow, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading IR source: %w", err)
	}

	var shadow map[string]json.RawMessage
	if err := json.Unmarshal(raw, &shadow); err != nil {
		return nil, pflowerr.IRSchemaError("", fmt.Sprintf("invalid JSON: %v", err))
	}
	for key := range shadow {
		if _, ok := knownTopLevelKeys[key]; !ok {
			return nil, pflowerr.IRSchemaError("/"+key, fmt.Sprintf("unknown top-level key %q", key))
		}
	}

	if draft {
		raw, err = applyDraftDefaults(raw, shadow)
		if err != nil {
			return nil, err
		}
	}

	var w Workflow
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&w); err != nil {
		return nil, pflowerr.IRSchemaError("", fmt.Sprintf("decoding IR: %v", err))
	}

	if w.IRVersion == "" {
		return nil, pflowerr.IRSchemaError("/ir_version", "ir_version is required")
	}
	if w.Edges == nil {
		return nil, pflowerr.IRSchemaError("/edges", "edges is required")
	}

	w.Normalize()
	return &w, nil
}

// applyDraftDefaults re-marshals raw with ir_version/edges filled in when
// absent, operating on the shadow map so it never disturbs fields it
// doesn't touch.
func applyDraftDefaults(raw []byte, shadow map[string]json.RawMessage) ([]byte, error) {
	changed := false
	if _, ok := shadow["ir_version"]; !ok {
		shadow["ir_version"] = json.RawMessage(`"0.1.0"`)
		changed = true
	}
	if _, ok := shadow["edges"]; !ok {
		shadow["edges"] = json.RawMessage(`[]`)
		changed = true
	}
	if !changed {
		return raw, nil
	}
	out, err := json.Marshal(shadow)
	if err != nil {
		return nil, fmt.Errorf("applying draft defaults: %w", err)
	}
	return out, nil
}
