// Package store implements the shared, typed-polymorphic key-value map that
// is carried through a single workflow execution (the "shared store" of the
// runtime design). Any Go value is legal (including []byte); namespacing for
// per-node outputs is implemented by Namespaced, not by this type.
package store

import "sync"

// Store is a flat, concurrency-safe key-value map. Keys beginning with "__"
// are system-reserved and invisible to user templates (callers filter them
// out when building the "available variables" list for templates, see
// internal/template).
type Store struct {
	mu   sync.RWMutex
	data map[string]interface{}
}

// New creates a Store seeded with the given initial values (typically a
// workflow's resolved inputs). The map is copied; later mutation of seed
// by the caller does not affect the store.
func New(seed map[string]interface{}) *Store {
	s := &Store{data: make(map[string]interface{}, len(seed))}
	for k, v := range seed {
		s.data[k] = v
	}
	return s
}

// Get returns the raw value for key and whether it was present.
func (s *Store) Get(key string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

// Set stores value under key, overwriting any previous value.
func (s *Store) Set(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

// Has reports whether key is present.
func (s *Store) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[key]
	return ok
}

// Delete removes key, if present.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
}

// Keys returns all keys currently present, in no particular order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys
}

// Snapshot returns a shallow copy of the underlying map, excluding
// system-reserved ("__"-prefixed) keys unless includeSystem is true.
func (s *Store) Snapshot(includeSystem bool) map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]interface{}, len(s.data))
	for k, v := range s.data {
		if !includeSystem && isSystemKey(k) {
			continue
		}
		out[k] = v
	}
	return out
}

// Namespace returns the per-node output map for nodeID, creating it (as an
// empty map[string]interface{}) if it does not yet exist. This is how node
// outputs land in their namespace: the NamespacedRunner wrapper (see
// internal/wrap) redirects an inner node's bare-key writes into
// Namespace(nodeID)[key] without the inner node knowing its own id.
func (s *Store) Namespace(nodeID string) map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ns, ok := s.data[nodeID].(map[string]interface{})
	if !ok {
		ns = make(map[string]interface{})
		s.data[nodeID] = ns
	}
	return ns
}

func isSystemKey(key string) bool {
	return len(key) >= 2 && key[0] == '_' && key[1] == '_'
}
