package registry

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"sort"

	"github.com/pflow-dev/pflow-core/pkg/logging"
)

// cacheFile is the on-disk catalog cache, keyed by a content hash of the
// builtin node source tree so a cache hit requires zero re-registration
// work (the idempotence property spec.md §8 calls out) — grounded on the
// teacher's registry-cache.json content-hash idiom used for MCP discovery
// caching (see internal/mcp/discovery.go).
type cacheFile struct {
	SourceHash string           `json:"source_hash"`
	Entries    map[string]Entry `json:"entries"`
}

// CachePath returns the default registry cache location.
func CachePath(configDir string) string {
	return filepath.Join(configDir, "registry-cache.json")
}

// SourceHash computes a stable content hash over the current builtin
// catalog, used to detect whether a previously written cache is still
// valid. Virtual (MCP) entries are excluded: their own cache entry
// lifecycle is owned by internal/mcp's discovery/mtime logic.
func SourceHash() string {
	builtins.mu.RLock()
	defer builtins.mu.RUnlock()

	keys := make([]string, 0, len(builtins.entries))
	for k := range builtins.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := fnv.New64a()
	for _, k := range keys {
		e := builtins.entries[k]
		b, _ := json.Marshal(e)
		h.Write(b)
	}
	return fmt.Sprintf("%x", h.Sum64())
}

// LoadCache reads a previously written cache file, returning (nil, false)
// if absent, stale (source hash mismatch), or unreadable — any of which
// means the caller should fall back to live registration.
func LoadCache(path string) (map[string]Entry, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var cf cacheFile
	if err := json.Unmarshal(data, &cf); err != nil {
		logging.Warn("Registry", "Discarding unreadable cache at %s: %v", path, err)
		return nil, false
	}
	if cf.SourceHash != SourceHash() {
		return nil, false
	}
	return cf.Entries, true
}

// SaveCache writes the current builtin catalog (not virtual entries,
// which are runtime/session scoped) to path.
func SaveCache(path string) error {
	builtins.mu.RLock()
	entries := make(map[string]Entry, len(builtins.entries))
	for k, v := range builtins.entries {
		entries[k] = v
	}
	builtins.mu.RUnlock()

	cf := cacheFile{SourceHash: SourceHash(), Entries: entries}
	data, err := json.MarshalIndent(cf, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling registry cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating registry cache dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing registry cache: %w", err)
	}
	logging.Info("Registry", "Wrote registry cache with %d entries to %s", len(entries), path)
	return nil
}
