package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pflow-dev/pflow-core/internal/ir"
	"github.com/pflow-dev/pflow-core/internal/ir/markdown"
)

// workflowsSubdir is the on-disk home for saved workflow definitions under
// a pflow config directory, per SPEC_FULL.md §6's
// `~/.pflow/workflows/<name>.json`.
const workflowsSubdir = "workflows"

func workflowsDir(configDir string) string {
	return filepath.Join(configDir, workflowsSubdir)
}

// loadWorkflowFile parses a workflow from disk: markdown front-end for
// ".pflow.md" sources, the canonical JSON IR loader otherwise.
func loadWorkflowFile(path string) (*ir.Workflow, error) {
	if strings.HasSuffix(path, ".pflow.md") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		return markdown.Parse(string(data))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return ir.Load(f, true)
}

// resolveWorkflowRef turns a CLI/tool-call "ref" into a file path: an
// existing path is used as-is; otherwise it's treated as a saved
// workflow's name under configDir/workflows, tried as both .json and
// .pflow.md.
func resolveWorkflowRef(configDir, ref string) (string, error) {
	if _, err := os.Stat(ref); err == nil {
		return ref, nil
	}

	dir := workflowsDir(configDir)
	for _, ext := range []string{".json", ".pflow.md"} {
		candidate := filepath.Join(dir, ref+ext)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no workflow file or saved workflow named %q", ref)
}

// listSavedWorkflows scans configDir/workflows for workflow definitions,
// parsing each far enough to report name/description/search keywords —
// the listing discover_workflows and `pflow list workflows` both need.
func listSavedWorkflows(configDir string) ([]*ir.Workflow, error) {
	dir := workflowsDir(configDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	var out []*ir.Workflow
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".json") && !strings.HasSuffix(name, ".pflow.md") {
			continue
		}
		w, err := loadWorkflowFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// matchesQuery reports whether w is relevant to a discover_workflows/search
// query, checked against name, description, and search keywords.
func matchesQuery(w *ir.Workflow, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(w.Name), q) || strings.Contains(strings.ToLower(w.Description), q) {
		return true
	}
	for _, kw := range w.SearchKeywords {
		if strings.Contains(strings.ToLower(kw), q) {
			return true
		}
	}
	return false
}
