package cmd

import "testing"

func TestToGenericList(t *testing.T) {
	type item struct {
		Name string `json:"name"`
	}
	out, err := toGenericList([]item{{Name: "http"}, {Name: "shell"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 items, got %d", len(out))
	}
	first, ok := out[0].(map[string]interface{})
	if !ok {
		t.Fatalf("expected element to decode to a map, got %T", out[0])
	}
	if first["name"] != "http" {
		t.Errorf("expected name %q, got %v", "http", first["name"])
	}
}

func TestRunList_RejectsUnknownResourceType(t *testing.T) {
	if err := runList(listCmd, []string{"bogus"}); err == nil {
		t.Error("expected an error for an unknown resource type")
	} else if _, ok := err.(*UsageError); !ok {
		t.Errorf("expected a *UsageError, got %T: %v", err, err)
	}
}
