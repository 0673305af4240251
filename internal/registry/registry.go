// Package registry implements the node-type catalog: built-in nodes
// self-register at init() time, MCP discovery injects virtual entries at
// runtime, and the builtin catalog (not the virtual entries) is cached to
// disk so a warm start does zero re-registration work.
package registry

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
)

// VirtualMCPFilePath is the sentinel FilePath carried by every MCP tool
// entry: all virtual entries share one underlying implementation and are
// disambiguated at execution time by injected __mcp_server__/__mcp_tool__
// params, not by FilePath.
const VirtualMCPFilePath = "virtual://mcp"

// FieldSpec describes one input, param, or output field of a node's
// interface.
type FieldSpec struct {
	Key         string `json:"key"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

// InterfaceSpec is a node type's declared contract.
type InterfaceSpec struct {
	Description string      `json:"description,omitempty"`
	Inputs      []FieldSpec `json:"inputs,omitempty"`
	Params      []FieldSpec `json:"params,omitempty"`
	Outputs     []FieldSpec `json:"outputs,omitempty"`
	Actions     []string    `json:"actions,omitempty"`
}

// Entry is one registry record: a resolvable node type.
type Entry struct {
	Key        string        `json:"key"`
	ClassName  string        `json:"class_name"`
	ModulePath string        `json:"module_path"`
	FilePath   string        `json:"file_path"`
	Interface  InterfaceSpec `json:"interface"`
}

// IsVirtual reports whether e is an MCP-synthesized entry rather than a
// built-in node.
func (e Entry) IsVirtual() bool { return e.FilePath == VirtualMCPFilePath }

// Settings controls registry filtering, mirroring the teacher's
// env-override-on-top-of-config-flag pattern (internal/config).
type Settings struct {
	Allow             []string
	Deny              []string
	TestNodesEnabled  bool
}

// builtins is the process-wide catalog of statically linked node types,
// populated by each internal/nodes/* package's init() calling
// MustRegisterBuiltin — Go's own import graph plays the role of the
// teacher's dynamic module scan, since Go has no runtime import().
var builtins = struct {
	mu      sync.RWMutex
	entries map[string]Entry
}{entries: make(map[string]Entry)}

// MustRegisterBuiltin registers a compiled-in node type. Called from
// init() in internal/nodes/*; panics on duplicate key since that
// indicates a programming error, not a runtime condition.
func MustRegisterBuiltin(e Entry) {
	builtins.mu.Lock()
	defer builtins.mu.Unlock()
	if _, dup := builtins.entries[e.Key]; dup {
		panic(fmt.Sprintf("registry: duplicate builtin node type %q", e.Key))
	}
	builtins.entries[e.Key] = e
}

// Registry merges the compiled-in builtin catalog with runtime-registered
// virtual (MCP) entries and applies allow/deny filtering at Load time.
type Registry struct {
	mu       sync.RWMutex
	settings Settings
	virtual  map[string]Entry
}

// New builds a Registry with the given filter settings.
func New(settings Settings) *Registry {
	return &Registry{settings: settings, virtual: make(map[string]Entry)}
}

// RegisterVirtual adds or replaces an MCP-synthesized entry, used by
// internal/mcp discovery exactly as the specification describes.
func (r *Registry) RegisterVirtual(typeID string, iface InterfaceSpec, implRef string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.virtual[typeID] = Entry{
		Key:        typeID,
		ClassName:  "MCPNode",
		ModulePath: implRef,
		FilePath:   VirtualMCPFilePath,
		Interface:  iface,
	}
}

// Catalog is the filtered, merged view of the registry returned by Load.
type Catalog struct {
	Entries map[string]Entry
}

// Load returns the active catalog: all builtins plus all registered
// virtual entries, with allow/deny filtering applied now (not at
// registration or cache-write time) so one underlying set of entries
// serves both includeFiltered=true (agent) and =false (user) callers.
func (r *Registry) Load(includeFiltered bool) *Catalog {
	builtins.mu.RLock()
	r.mu.RLock()
	defer builtins.mu.RUnlock()
	defer r.mu.RUnlock()

	merged := make(map[string]Entry, len(builtins.entries)+len(r.virtual))
	for k, v := range builtins.entries {
		merged[k] = v
	}
	for k, v := range r.virtual {
		merged[k] = v
	}

	out := make(map[string]Entry, len(merged))
	for k, v := range merged {
		if includeFiltered || r.passesFilter(k) {
			out[k] = v
		}
	}
	return &Catalog{Entries: out}
}

// testNodePrefix marks node types meant only for deterministic workflow
// testing (internal/nodes/testnodes); they're hidden from the catalog
// unless Settings.TestNodesEnabled (or its PFLOW_TEST_NODES_ENABLED
// override) is set, independent of any allow/deny glob — spec.md's
// "a distinguished variable may override the test-nodes-enabled setting".
const testNodePrefix = "test-"

func (r *Registry) passesFilter(typeID string) bool {
	if !r.settings.TestNodesEnabled && strings.HasPrefix(typeID, testNodePrefix) {
		return false
	}
	for _, pattern := range r.settings.Deny {
		if matched, _ := path.Match(pattern, typeID); matched {
			return false
		}
	}
	if len(r.settings.Allow) == 0 {
		return true
	}
	for _, pattern := range r.settings.Allow {
		if matched, _ := path.Match(pattern, typeID); matched {
			return true
		}
	}
	return false
}

// Get returns a single entry from the unfiltered catalog, satisfying the
// compiler's "registry lookup always sees everything, filtering is a
// discovery-surface concern" requirement.
func (r *Registry) Get(typeID string) (*Entry, bool) {
	builtins.mu.RLock()
	r.mu.RLock()
	defer builtins.mu.RUnlock()
	defer r.mu.RUnlock()

	if e, ok := r.virtual[typeID]; ok {
		return &e, true
	}
	if e, ok := builtins.entries[typeID]; ok {
		return &e, true
	}
	return nil, false
}

// Resolves implements ir.TypeResolver.
func (r *Registry) Resolves(typeID string) bool {
	_, ok := r.Get(typeID)
	return ok
}

// List returns every entry in the unfiltered catalog, sorted by key, for
// discovery UIs (`pflow list nodes`).
func (r *Registry) List() []Entry {
	cat := r.Load(true)
	out := make([]Entry, 0, len(cat.Entries))
	for _, e := range cat.Entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Search performs a case-insensitive substring match over key and
// description, grounded on the teacher's capability/aggregator
// search-style list helpers.
func (r *Registry) Search(query string) []Entry {
	q := strings.ToLower(query)
	var out []Entry
	for _, e := range r.List() {
		if strings.Contains(strings.ToLower(e.Key), q) || strings.Contains(strings.ToLower(e.Interface.Description), q) {
			out = append(out, e)
		}
	}
	return out
}
