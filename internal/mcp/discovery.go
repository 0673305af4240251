package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	mcpsdk "github.com/mark3labs/mcp-go/mcp"

	"github.com/pflow-dev/pflow-core/internal/registry"
	"github.com/pflow-dev/pflow-core/pkg/logging"
)

const discoverySubsystem = "MCPDiscovery"

// discoveryCacheEntry records enough about one server's last-seen
// configuration to decide whether it needs rediscovering.
type discoveryCacheEntry struct {
	ConfigHash string `json:"config_hash"`
}

// discoveryCacheFile is the on-disk cache, keyed by server name — a
// sibling of internal/registry's own registry-cache.json, grounded on the
// same content-hash idiom but scoped to MCP server configuration instead
// of the builtin node source tree.
type discoveryCacheFile struct {
	ConfigMtime time.Time                       `json:"config_mtime"`
	Servers     map[string]discoveryCacheEntry `json:"servers"`
}

// DiscoveryCachePath returns the default MCP discovery cache location.
func DiscoveryCachePath(configDir string) string {
	return filepath.Join(configDir, "mcp-discovery-cache.json")
}

// LoadCatalog reads and parses a ServerCatalog JSON file.
func LoadCatalog(path string) (ServerCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ServerCatalog{}, fmt.Errorf("mcp: reading server catalog %s: %w", path, err)
	}
	var cat ServerCatalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return ServerCatalog{}, fmt.Errorf("mcp: parsing server catalog %s: %w", path, err)
	}
	return cat, nil
}

var catalogCache = struct {
	mu  sync.RWMutex
	cat ServerCatalog
}{}

// ServerConfigFor looks up a server's raw (unexpanded) configuration by
// name, from the most recently discovered/loaded catalog. mcp.Node.Exec
// uses this to reconnect to a server at invocation time — discovery and
// invocation are separate processes (spawn-list-stop vs. spawn-call-stop)
// but share the same catalog.
func ServerConfigFor(name string) (ServerConfig, bool) {
	catalogCache.mu.RLock()
	defer catalogCache.mu.RUnlock()
	cfg, ok := catalogCache.cat.MCPServers[name]
	return cfg, ok
}

// setCatalog records the catalog most recently loaded from disk, making
// it visible to ServerConfigFor.
func setCatalog(cat ServerCatalog) {
	catalogCache.mu.Lock()
	defer catalogCache.mu.Unlock()
	catalogCache.cat = cat
}

func configHash(cfg ServerConfig) string {
	h := fnv.New64a()
	b, _ := json.Marshal(cfg)
	h.Write(b)
	return fmt.Sprintf("%x", h.Sum64())
}

// Discoverer runs the MCP discovery lifecycle: for each server whose
// configuration has changed since the last run, spawn it, list its tools,
// register a virtual registry.Entry per tool, then stop it. A cache hit
// (nothing changed) spawns nothing — spec.md §8's idempotence property.
type Discoverer struct {
	CatalogPath string
	CacheDir    string
	Registry    *registry.Registry
	Verbose     bool

	// newClient is a seam for tests; defaults to NewClient.
	newClient func(cfg ServerConfig) (Client, error)

	watcher *fsnotify.Watcher
}

func (d *Discoverer) clientFactory() func(cfg ServerConfig) (Client, error) {
	if d.newClient != nil {
		return d.newClient
	}
	return NewClient
}

// Discover runs one discovery pass.
func (d *Discoverer) Discover(ctx context.Context) error {
	info, err := os.Stat(d.CatalogPath)
	if err != nil {
		return fmt.Errorf("mcp discovery: stating catalog %s: %w", d.CatalogPath, err)
	}

	cachePath := DiscoveryCachePath(d.CacheDir)
	cache := loadDiscoveryCache(cachePath)

	catalog, err := LoadCatalog(d.CatalogPath)
	if err != nil {
		return err
	}
	setCatalog(catalog)

	if !info.ModTime().After(cache.ConfigMtime) && sameServerSet(cache, catalog) {
		allUnchanged := true
		for name, cfg := range catalog.MCPServers {
			if cache.Servers[name].ConfigHash != configHash(cfg) {
				allUnchanged = false
				break
			}
		}
		if allUnchanged {
			logging.Debug(discoverySubsystem, "catalog unchanged, skipping discovery for %d servers", len(catalog.MCPServers))
			return nil
		}
	}

	newCache := discoveryCacheFile{ConfigMtime: info.ModTime(), Servers: make(map[string]discoveryCacheEntry, len(catalog.MCPServers))}

	names := make([]string, 0, len(catalog.MCPServers))
	for name := range catalog.MCPServers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cfg := catalog.MCPServers[name]
		hash := configHash(cfg)
		newCache.Servers[name] = discoveryCacheEntry{ConfigHash: hash}

		if existing, ok := cache.Servers[name]; ok && existing.ConfigHash == hash {
			logging.Debug(discoverySubsystem, "server %q unchanged, skipping", name)
			continue
		}

		if err := d.discoverServer(ctx, name, cfg); err != nil {
			logging.Warn(discoverySubsystem, "discovering server %q: %v", name, err)
		}
	}

	return saveDiscoveryCache(cachePath, newCache)
}

func (d *Discoverer) discoverServer(ctx context.Context, name string, rawCfg ServerConfig) error {
	cfg := ExpandServerConfig(rawCfg)

	client, err := d.clientFactory()(cfg)
	if err != nil {
		return err
	}
	if err := client.Initialize(ctx); err != nil {
		return fmt.Errorf("starting server %q: %w", name, err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logging.Debug(discoverySubsystem, "stopping server %q: %v", name, err)
		}
	}()

	tools, err := client.ListTools(ctx)
	if err != nil {
		return fmt.Errorf("listing tools for server %q: %w", name, err)
	}

	for _, tool := range tools {
		typeID := fmt.Sprintf("mcp-%s-%s", name, tool.Name)
		d.Registry.RegisterVirtual(typeID, interfaceSpecFromTool(tool), "internal/mcp.Node")
		logging.Info(discoverySubsystem, "registered %s", typeID)
	}
	return nil
}

// Watch starts an fsnotify watch on the catalog file's directory,
// re-running Discover on any write event until ctx is cancelled — live
// config reload without a poll loop, the home fsnotify earns in this
// spec per SPEC_FULL.md §4.6.
func (d *Discoverer) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("mcp discovery: creating watcher: %w", err)
	}
	d.watcher = watcher

	dir := filepath.Dir(d.CatalogPath)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("mcp discovery: watching %s: %w", dir, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != d.CatalogPath || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if err := d.Discover(ctx); err != nil {
					logging.Warn(discoverySubsystem, "re-discovery after config change: %v", err)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logging.Warn(discoverySubsystem, "watcher error: %v", err)
			}
		}
	}()
	return nil
}

func interfaceSpecFromTool(tool mcpsdk.Tool) registry.InterfaceSpec {
	spec := registry.InterfaceSpec{Description: tool.Description}

	required := make(map[string]struct{}, len(tool.InputSchema.Required))
	for _, r := range tool.InputSchema.Required {
		required[r] = struct{}{}
	}

	keys := make([]string, 0, len(tool.InputSchema.Properties))
	for k := range tool.InputSchema.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		field := registry.FieldSpec{Key: key}
		if prop, ok := tool.InputSchema.Properties[key].(map[string]interface{}); ok {
			if t, ok := prop["type"].(string); ok {
				field.Type = t
			}
			if desc, ok := prop["description"].(string); ok {
				field.Description = desc
			}
		}
		if _, ok := required[key]; ok {
			field.Required = true
		}
		spec.Params = append(spec.Params, field)
	}
	return spec
}

func sameServerSet(cache discoveryCacheFile, catalog ServerCatalog) bool {
	if len(cache.Servers) != len(catalog.MCPServers) {
		return false
	}
	for name := range catalog.MCPServers {
		if _, ok := cache.Servers[name]; !ok {
			return false
		}
	}
	return true
}

func loadDiscoveryCache(path string) discoveryCacheFile {
	data, err := os.ReadFile(path)
	if err != nil {
		return discoveryCacheFile{Servers: map[string]discoveryCacheEntry{}}
	}
	var cf discoveryCacheFile
	if err := json.Unmarshal(data, &cf); err != nil {
		logging.Warn(discoverySubsystem, "discarding unreadable discovery cache at %s: %v", path, err)
		return discoveryCacheFile{Servers: map[string]discoveryCacheEntry{}}
	}
	if cf.Servers == nil {
		cf.Servers = map[string]discoveryCacheEntry{}
	}
	return cf
}

func saveDiscoveryCache(path string, cf discoveryCacheFile) error {
	data, err := json.MarshalIndent(cf, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling mcp discovery cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating mcp discovery cache dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing mcp discovery cache: %w", err)
	}
	return nil
}
