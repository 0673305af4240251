package store

// Accessor is the map-like surface both *Store and *Namespaced expose.
// internal/wrap's NodeRunner is built against this interface rather than
// the concrete *Store so NamespacedRunner can hand an inner node a
// *Namespaced view transparently — the inner node (and internal/template's
// Resolver) never knows whether it holds the flat root store or a
// per-node namespaced view over it.
type Accessor interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{})
	Has(key string) bool
	Delete(key string)
	Keys() []string
	Items() map[string]interface{}
}

// Items returns every key/value pair currently in the store, including
// system ("__"-prefixed) keys, satisfying Accessor.
func (s *Store) Items() map[string]interface{} {
	return s.Snapshot(true)
}

var (
	_ Accessor = (*Store)(nil)
	_ Accessor = (*Namespaced)(nil)
)
