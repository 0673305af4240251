package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pflow-dev/pflow-core/internal/ir"
)

func writeWorkflowFile(t *testing.T, dir, fileName string) string {
	t.Helper()
	return writeNamedWorkflowFile(t, dir, fileName, "demo")
}

func writeNamedWorkflowFile(t *testing.T, dir, fileName, workflowName string) string {
	t.Helper()
	path := filepath.Join(dir, fileName)
	data := `{"ir_version":"1","name":"` + workflowName + `","nodes":[{"id":"a","type":"builtin.noop"}],"edges":[]}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("writing workflow fixture: %v", err)
	}
	return path
}

func TestResolveWorkflowRef_ExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := writeWorkflowFile(t, dir, "direct.json")

	resolved, err := resolveWorkflowRef(dir, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved != path {
		t.Errorf("expected %q, got %q", path, resolved)
	}
}

func TestResolveWorkflowRef_SavedName(t *testing.T) {
	configDir := t.TempDir()
	workflowsDirPath := workflowsDir(configDir)
	if err := os.MkdirAll(workflowsDirPath, 0755); err != nil {
		t.Fatalf("creating workflows dir: %v", err)
	}
	writeWorkflowFile(t, workflowsDirPath, "demo.json")

	resolved, err := resolveWorkflowRef(configDir, "demo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(resolved) != "demo.json" {
		t.Errorf("expected to resolve to demo.json, got %q", resolved)
	}
}

func TestResolveWorkflowRef_Unknown(t *testing.T) {
	configDir := t.TempDir()
	if _, err := resolveWorkflowRef(configDir, "does-not-exist"); err == nil {
		t.Error("expected an error for an unknown workflow reference")
	}
}

func TestListSavedWorkflows_MissingDir(t *testing.T) {
	configDir := t.TempDir()
	workflows, err := listSavedWorkflows(configDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if workflows != nil {
		t.Errorf("expected nil workflows for a missing directory, got %v", workflows)
	}
}

func TestListSavedWorkflows_SortedByName(t *testing.T) {
	configDir := t.TempDir()
	dir := workflowsDir(configDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("creating workflows dir: %v", err)
	}
	writeNamedWorkflowFile(t, dir, "z.json", "zeta")
	writeNamedWorkflowFile(t, dir, "a.json", "alpha")

	workflows, err := listSavedWorkflows(configDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(workflows) != 2 {
		t.Fatalf("expected 2 workflows, got %d", len(workflows))
	}
	if workflows[0].Name != "alpha" || workflows[1].Name != "zeta" {
		t.Errorf("expected [alpha, zeta], got [%s, %s]", workflows[0].Name, workflows[1].Name)
	}
}

func TestMatchesQuery(t *testing.T) {
	w := &ir.Workflow{Name: "deploy-service", Description: "Builds and deploys", SearchKeywords: []string{"ci", "release"}}

	cases := []struct {
		query string
		want  bool
	}{
		{"", true},
		{"deploy", true},
		{"DEPLOY", true},
		{"release", true},
		{"nonexistent", false},
	}
	for _, c := range cases {
		if got := matchesQuery(w, c.query); got != c.want {
			t.Errorf("matchesQuery(%q) = %v, want %v", c.query, got, c.want)
		}
	}
}
