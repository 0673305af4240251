// Package nodes is the small built-in node library that exercises the
// compiler/wrapper/runtime pipeline end to end: http, shell, write-file,
// and a deliberately thin llm node (the LLM client library itself is a
// declared external collaborator per spec.md, out of scope). Each file
// self-registers its node type into internal/registry at init() time.
//
// spec.md treats individual node business logic as deliberately out of
// scope ("file I/O, HTTP, shell, git, etc."); this package exists only
// because SPEC_FULL.md's testable scenarios (spec.md §8) need concrete
// node types to exercise the compiler, wrappers, and runtime against.
package nodes

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/pflow-dev/pflow-core/internal/registry"
	"github.com/pflow-dev/pflow-core/internal/wrap"
)

// Constructor builds a fresh wrap.NodeRunner for one compiled node
// instance from its raw (pre-template) IR params.
type Constructor func(params map[string]interface{}) wrap.NodeRunner

var constructors = struct {
	mu sync.RWMutex
	m  map[string]Constructor
}{m: make(map[string]Constructor)}

// Register both publishes typeID's catalog entry (so `pflow list nodes`
// and the compiler's registry lookups see it) and records the Constructor
// the compiler uses to instantiate it. Called once per type from each
// file's init() in this package and in internal/nodes/testnodes.
func Register(typeID string, iface registry.InterfaceSpec, classRef string, ctor Constructor) {
	registry.MustRegisterBuiltin(registry.Entry{
		Key:        typeID,
		ClassName:  classRef,
		ModulePath: "github.com/pflow-dev/pflow-core/internal/nodes",
		FilePath:   typeID + ".go",
		Interface:  iface,
	})

	constructors.mu.Lock()
	defer constructors.mu.Unlock()
	if _, dup := constructors.m[typeID]; dup {
		panic(fmt.Sprintf("nodes: duplicate constructor for %q", typeID))
	}
	constructors.m[typeID] = ctor
}

// New instantiates the builtin node type registered under typeID, used by
// internal/compiler while assembling the wrapper chain for a compiled
// node. ok is false for any type not in this package (including MCP
// virtual types, which internal/mcp constructs instead).
func New(typeID string, params map[string]interface{}) (wrap.NodeRunner, bool) {
	constructors.mu.RLock()
	defer constructors.mu.RUnlock()
	ctor, ok := constructors.m[typeID]
	if !ok {
		return nil, false
	}
	return ctor(params), true
}

// Base is embedded by every concrete node type: it holds the
// (initially raw, later template-resolved) Params map and the retry
// policy extracted from two reserved param keys, "max_attempts" and
// "wait" (seconds). A missing "max_attempts" defaults to 1 (exactly one
// attempt, never zero); the compiler rejects any non-positive configured
// value outright rather than silently clamping it, per spec.md's
// "subtle trap" callout.
type Base struct {
	Params      map[string]interface{}
	MaxAttempts int
	Wait        time.Duration
}

// NewBase extracts retry configuration from initialParams (the IR node's
// raw, pre-template Params — retry policy is fixed at compile time, not
// re-evaluated per invocation) and seeds Params for the first Prep call
// before TemplatedRunner overwrites it with resolved values.
func NewBase(initialParams map[string]interface{}) Base {
	attempts := 1
	if v, ok := initialParams["max_attempts"]; ok {
		attempts = toInt(v, 1)
	}
	wait := time.Duration(0)
	if v, ok := initialParams["wait"]; ok {
		wait = time.Duration(toFloat(v, 0) * float64(time.Second))
	}
	return Base{Params: initialParams, MaxAttempts: attempts, Wait: wait}
}

// SetParams implements wrap.ParamSetter.
func (b *Base) SetParams(p map[string]interface{}) { b.Params = p }

// RetryPolicy implements wrap.NodeRunner.
func (b Base) RetryPolicy() wrap.RetryPolicy {
	return wrap.RetryPolicy{MaxAttempts: b.MaxAttempts, Wait: b.Wait}
}

// cloneBase produces an independent copy safe for a separate invocation
// (a fresh Params map, never shared with the original).
func (b Base) cloneBase() Base {
	cp := make(map[string]interface{}, len(b.Params))
	for k, v := range b.Params {
		cp[k] = v
	}
	return Base{Params: cp, MaxAttempts: b.MaxAttempts, Wait: b.Wait}
}

func (b Base) stringParam(key, fallback string) string {
	if v, ok := b.Params[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return fallback
}

func toInt(v interface{}, fallback int) int {
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	case string:
		if n, err := strconv.Atoi(t); err == nil {
			return n
		}
	}
	return fallback
}

func toFloat(v interface{}, fallback float64) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case string:
		if f, err := strconv.ParseFloat(t, 64); err == nil {
			return f
		}
	}
	return fallback
}
