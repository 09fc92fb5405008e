package mcp

import (
	"sort"
	"testing"
)

func TestToolSchemaRegistry(t *testing.T) {
	expectedTools := []string{"cx_cst"}

	for _, name := range expectedTools {
		schema, ok := toolSchemaRegistry[name]
		if !ok {
			t.Errorf("toolSchemaRegistry missing tool: %s", name)
			continue
		}
		if schema.Name != name {
			t.Errorf("schema name mismatch: got %q, want %q", schema.Name, name)
		}
		if schema.Description == "" {
			t.Errorf("tool %s has empty description", name)
		}
	}

	if len(toolSchemaRegistry) != len(expectedTools) {
		t.Errorf("toolSchemaRegistry has %d tools, want %d", len(toolSchemaRegistry), len(expectedTools))
	}
}

func TestToolSchemaParameters(t *testing.T) {
	tests := []struct {
		tool          string
		requiredParam string
	}{
		{"cx_cst", "source"},
	}

	for _, tt := range tests {
		schema, ok := toolSchemaRegistry[tt.tool]
		if !ok {
			t.Fatalf("missing tool: %s", tt.tool)
		}

		found := false
		for _, p := range schema.Parameters {
			if p.Name == tt.requiredParam {
				found = true
				if !p.Required {
					t.Errorf("tool %s param %s should be required", tt.tool, tt.requiredParam)
				}
			}
		}
		if !found {
			t.Errorf("tool %s missing parameter %s", tt.tool, tt.requiredParam)
		}
	}
}

func TestToolSchemaOptionalParamsNotRequired(t *testing.T) {
	schema, ok := toolSchemaRegistry["cx_cst"]
	if !ok {
		t.Fatal("missing tool: cx_cst")
	}

	optional := map[string]bool{"path": true, "query": true, "history": true}
	for _, p := range schema.Parameters {
		if optional[p.Name] && p.Required {
			t.Errorf("param %s is marked required but should not be", p.Name)
		}
	}
}

func TestAllToolsMatchesRegistry(t *testing.T) {
	registryNames := make([]string, 0, len(toolSchemaRegistry))
	for name := range toolSchemaRegistry {
		registryNames = append(registryNames, name)
	}
	sort.Strings(registryNames)

	allToolsCopy := make([]string, len(AllTools))
	copy(allToolsCopy, AllTools)
	sort.Strings(allToolsCopy)

	if len(registryNames) != len(allToolsCopy) {
		t.Errorf("schema registry has %d tools, AllTools has %d", len(registryNames), len(allToolsCopy))
	}

	for i, name := range registryNames {
		if i >= len(allToolsCopy) {
			t.Errorf("AllTools missing: %s", name)
			continue
		}
		if name != allToolsCopy[i] {
			t.Errorf("mismatch at index %d: registry=%s, AllTools=%s", i, name, allToolsCopy[i])
		}
	}
}

func TestCallToolUnknownTool(t *testing.T) {
	s := &Server{tools: map[string]bool{"cx_cst": true}}
	if _, err := s.CallTool("cx_bogus", nil); err == nil {
		t.Error("expected error for unknown tool")
	}
}

func TestCallToolRequiresSource(t *testing.T) {
	s := &Server{tools: map[string]bool{"cx_cst": true}}
	if _, err := s.CallTool("cx_cst", map[string]interface{}{}); err == nil {
		t.Error("expected error when source is missing")
	}
}

func TestCallToolHistoryRequiresPath(t *testing.T) {
	s := &Server{tools: map[string]bool{"cx_cst": true}}
	if _, err := s.CallTool("cx_cst", map[string]interface{}{"history": true}); err == nil {
		t.Error("expected error when history requested without path")
	}
}
