package policy

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingReturnsDefault(t *testing.T) {
	root := t.TempDir()

	pol, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if pol.Version != 1 {
		t.Errorf("Version = %d, want 1", pol.Version)
	}
	if len(pol.Tidy.AssertionMethods) == 0 {
		t.Error("default policy should carry assertion methods")
	}
	if pol.ExcludesField("Widget", "count", "widget.cs") {
		t.Error("default policy should exclude nothing")
	}
}

func TestLoadPolicyFile(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".seal"), 0755); err != nil {
		t.Fatal(err)
	}
	content := `version: 1
exclude:
  fields:
    - "Widget.legacy*"
  types:
    - "Generated*"
  documents:
    - "gen/*"
tidy:
  assertionMethods:
    - Equal
`
	if err := os.WriteFile(filepath.Join(root, ".seal", "policy.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	pol, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := pol.Tidy.AssertionMethods; len(got) != 1 || got[0] != "Equal" {
		t.Errorf("AssertionMethods = %v, want [Equal]", got)
	}

	tests := []struct {
		name      string
		typeName  string
		fieldName string
		docPath   string
		want      bool
	}{
		{"field pattern", "Widget", "legacyCount", "widget.cs", true},
		{"field no match", "Widget", "count", "widget.cs", false},
		{"type pattern", "GeneratedProto", "anything", "proto.cs", true},
		{"document pattern", "Plain", "x", "gen/plain.cs", true},
		{"nothing matches", "Plain", "x", "src/plain.cs", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := pol.ExcludesField(tc.typeName, tc.fieldName, tc.docPath)
			if got != tc.want {
				t.Errorf("ExcludesField(%s, %s, %s) = %v, want %v",
					tc.typeName, tc.fieldName, tc.docPath, got, tc.want)
			}
		})
	}
}

func TestLoadMalformedPolicy(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".seal"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, ".seal", "policy.yaml"), []byte("exclude: ["), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(root); err == nil {
		t.Error("Load should fail on malformed YAML")
	}
}

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		pattern string
		s       string
		want    bool
	}{
		{"Widget.count", "Widget.count", true},
		{"Widget.count", "Widget.counter", false},
		{"Widget.*", "Widget.count", true},
		{"*.count", "Widget.count", true},
		{"*legacy*", "Widget.legacyCount", true},
		{"gen/*", "gen/a/b.cs", true},
		{"gen/*", "src/gen.cs", false},
		{"", "anything", false},
	}

	for _, tc := range tests {
		t.Run(tc.pattern+"/"+tc.s, func(t *testing.T) {
			if got := matchPattern(tc.pattern, tc.s); got != tc.want {
				t.Errorf("matchPattern(%q, %q) = %v, want %v", tc.pattern, tc.s, got, tc.want)
			}
		})
	}
}
