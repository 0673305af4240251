package template

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pflow-dev/pflow-core/internal/pflowerr"
)

// refPattern matches a single ${...} reference: a dotted/indexed path
// starting with a letter or underscore. Indexing uses [N]; dots separate
// path segments, e.g. "items[0].name" or "node_a.result".
var refPattern = regexp.MustCompile(`\$\{([a-zA-Z_][\w.\-]*(?:\[\d+\])?(?:\.[a-zA-Z_][\w.\-]*(?:\[\d+\])?)*)\}`)

// Scope is anything the resolver can look a dotted path up against: the
// flat shared store, a node's namespaced view, or a plain map of inputs.
// internal/store.Store and internal/store.Namespaced both satisfy this via
// their Get method plus a Keys-derived variable list built by the caller.
type Scope interface {
	Get(key string) (interface{}, bool)
}

// Resolver resolves ${...} templates against an ordered list of scopes,
// consulted inputs-first, then flat context, then node namespaces — the
// resolution order the specification requires so a node output never
// shadows a declared workflow input.
type Resolver struct {
	scopes    []Scope
	available []string // variable names surfaced in error messages
}

// NewResolver builds a Resolver that looks up top-level names against
// scopes in order, first match wins.
func NewResolver(scopes ...Scope) *Resolver {
	return &Resolver{scopes: scopes}
}

// WithAvailable records the set of variable names to report in
// TemplateUnresolved errors (typically the store's non-system key list).
func (r *Resolver) WithAvailable(names []string) *Resolver {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	r.available = sorted
	return r
}

// Resolve resolves a single template string.
//
// If s is EXACTLY one ${expr} reference with no surrounding text, the
// referenced value's native Go type is returned unchanged (int, bool,
// []byte, []interface{}, map[string]interface{}, ...). Any other shape —
// multiple references, or a reference embedded in literal text — produces
// a string, with each reference substituted via its JSON representation.
// A []byte value discovered in the multi-reference path is rejected: byte
// payloads can only flow through the sole-reference path.
func (r *Resolver) Resolve(s string) (interface{}, error) {
	matches := refPattern.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s, nil
	}

	if isSoleReference(s, matches[0]) {
		path := s[matches[0][2]:matches[0][3]]
		return r.lookup(s, path)
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(s[last:m[0]])
		path := s[m[2]:m[3]]
		val, err := r.lookup(s, path)
		if err != nil {
			return nil, err
		}
		if _, ok := val.([]byte); ok {
			return nil, pflowerr.New(pflowerr.CodeTemplateTypeMismatch, pflowerr.CategoryTemplate,
				fmt.Sprintf("binary value from %q cannot be embedded in a mixed-text template", path))
		}
		rendered, err := stringify(val)
		if err != nil {
			return nil, pflowerr.Wrap(pflowerr.CodeTemplateTypeMismatch, pflowerr.CategoryTemplate, err,
				"cannot stringify value of %q for template substitution", path)
		}
		b.WriteString(rendered)
		last = m[1]
	}
	b.WriteString(s[last:])
	return b.String(), nil
}

// ResolveNested walks a JSON-like value (map, slice, string, or scalar)
// and resolves every string leaf, leaving non-string leaves untouched.
// This is how an entire node params block gets resolved in one pass.
func (r *Resolver) ResolveNested(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case string:
		return r.Resolve(t)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			resolved, err := r.ResolveNested(val)
			if err != nil {
				return nil, err
			}
			out[k] = resolved
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			resolved, err := r.ResolveNested(val)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil
	default:
		return v, nil
	}
}

// isSoleReference reports whether match m is the only reference in s and
// spans the entire string (no literal characters before or after it).
func isSoleReference(s string, m []int) bool {
	return m[0] == 0 && m[1] == len(s)
}

// lookup resolves a dotted/indexed path against the resolver's scopes in
// order, returning a structured TemplateUnresolved error on miss.
func (r *Resolver) lookup(origTemplate, path string) (interface{}, error) {
	segments, err := splitPath(path)
	if err != nil {
		return nil, pflowerr.Wrap(pflowerr.CodeTemplateUnresolved, pflowerr.CategoryTemplate, err,
			"malformed template path %q", path)
	}

	head := segments[0].name
	var root interface{}
	found := false
	for _, scope := range r.scopes {
		if v, ok := scope.Get(head); ok {
			root, found = v, true
			break
		}
	}
	if !found {
		return nil, &pflowerr.TemplateUnresolved{
			Error: pflowerr.New(pflowerr.CodeTemplateUnresolved, pflowerr.CategoryTemplate,
				fmt.Sprintf("variable %q not found", head)).WithHint("check spelling or available_variables"),
			Template:           origTemplate,
			Variable:           path,
			AvailableVariables: r.available,
		}
	}

	cur := root
	if segments[0].index != nil {
		v, err := indexInto(cur, *segments[0].index)
		if err != nil {
			return nil, r.unresolvedField(origTemplate, path, head, err)
		}
		cur = v
	}

	for _, seg := range segments[1:] {
		v, err := fieldInto(cur, seg.name)
		if err != nil {
			return nil, r.unresolvedField(origTemplate, path, seg.name, err)
		}
		cur = v
		if seg.index != nil {
			v, err := indexInto(cur, *seg.index)
			if err != nil {
				return nil, r.unresolvedField(origTemplate, path, seg.name, err)
			}
			cur = v
		}
	}
	return cur, nil
}

func (r *Resolver) unresolvedField(origTemplate, path, field string, cause error) error {
	return &pflowerr.TemplateUnresolved{
		Error: pflowerr.Wrap(pflowerr.CodeTemplateUnresolved, pflowerr.CategoryTemplate, cause,
			"cannot resolve %q in template %q", path, origTemplate),
		Template:           origTemplate,
		Variable:           path,
		AvailableVariables: r.available,
		AvailableFields:    availableFieldNames(field),
	}
}

type pathSegment struct {
	name  string
	index *int
}

// splitPath parses "a.b[0].c" into [{a nil} {b 0} {c nil}].
func splitPath(path string) ([]pathSegment, error) {
	parts := strings.Split(path, ".")
	segs := make([]pathSegment, 0, len(parts))
	for _, p := range parts {
		name := p
		var idx *int
		if open := strings.IndexByte(p, '['); open >= 0 {
			if !strings.HasSuffix(p, "]") {
				return nil, fmt.Errorf("malformed index in segment %q", p)
			}
			name = p[:open]
			n, err := strconv.Atoi(p[open+1 : len(p)-1])
			if err != nil {
				return nil, fmt.Errorf("malformed index in segment %q: %w", p, err)
			}
			idx = &n
		}
		segs = append(segs, pathSegment{name: name, index: idx})
	}
	return segs, nil
}

func fieldInto(v interface{}, field string) (interface{}, error) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("cannot access field %q of non-object value", field)
	}
	val, ok := m[field]
	if !ok {
		return nil, fmt.Errorf("field %q not present", field)
	}
	return val, nil
}

func indexInto(v interface{}, idx int) (interface{}, error) {
	list, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("cannot index non-list value at [%d]", idx)
	}
	if idx < 0 || idx >= len(list) {
		return nil, fmt.Errorf("index [%d] out of range (length %d)", idx, len(list))
	}
	return list[idx], nil
}

func availableFieldNames(near string) []string {
	return []string{near}
}

// stringify renders val for embedding in a mixed-text template: plain
// strings pass through unquoted, everything else is JSON-encoded so
// structured values remain machine-readable when interpolated.
func stringify(val interface{}) (string, error) {
	switch t := val.(type) {
	case string:
		return t, nil
	case nil:
		return "", nil
	case float64, int, int64, bool:
		return fmt.Sprintf("%v", t), nil
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}
