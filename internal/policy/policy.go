// Package policy loads the optional per-repo analysis policy from .seal/policy.yaml.
// Policy can only make the analysis more conservative: exclusion patterns remove
// fields from the promotable set after verdicts are computed, never the reverse.
package policy

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"seal/internal/errors"
)

// Policy holds per-repo overrides for promotion and tidy behavior.
type Policy struct {
	Version int `yaml:"version"`

	// Exclude lists fields that must never be promoted even when proven safe.
	Exclude ExcludeRules `yaml:"exclude"`

	// Tidy configures the local single-file rules.
	Tidy TidyRules `yaml:"tidy"`
}

// ExcludeRules are glob-style patterns matched against field and type names.
type ExcludeRules struct {
	// Fields matches "TypeName.fieldName" with * wildcards.
	Fields []string `yaml:"fields"`
	// Types matches the declaring type name with * wildcards.
	Types []string `yaml:"types"`
	// Documents matches the declaring document path with * wildcards.
	Documents []string `yaml:"documents"`
}

// TidyRules configures the local rules.
type TidyRules struct {
	// AssertionMethods are callee simple names whose two-argument calls are
	// normalized to expected-first order.
	AssertionMethods []string `yaml:"assertionMethods"`
}

// Default returns the policy used when no policy file exists.
func Default() *Policy {
	return &Policy{
		Version: 1,
		Tidy: TidyRules{
			AssertionMethods: []string{"AreEqual", "AreNotEqual", "assertEquals"},
		},
	}
}

// Load reads .seal/policy.yaml under root. A missing file returns the default
// policy; a malformed file is an error.
func Load(root string) (*Policy, error) {
	path := filepath.Join(root, ".seal", "policy.yaml")
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, errors.New(errors.ConfigInvalid, "cannot read policy file", err)
	}

	pol := Default()
	if err := yaml.Unmarshal(content, pol); err != nil {
		return nil, errors.New(errors.ConfigInvalid, "cannot parse policy file", err).
			WithDetails(map[string]string{"path": path})
	}
	if pol.Version != 1 {
		return nil, errors.New(errors.ConfigInvalid, "unsupported policy version", nil).
			WithDetails(map[string]int{"version": pol.Version})
	}
	if len(pol.Tidy.AssertionMethods) == 0 {
		pol.Tidy.AssertionMethods = Default().Tidy.AssertionMethods
	}
	return pol, nil
}

// Save writes the policy to .seal/policy.yaml.
func (p *Policy) Save(root string) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(root, ".seal", "policy.yaml"), data, 0644)
}

// ExcludesField reports whether a field is excluded from promotion.
// typeName is the declaring type's simple name, fieldName the field's name,
// and docPath the (first) declaring document path.
func (p *Policy) ExcludesField(typeName, fieldName, docPath string) bool {
	qualified := typeName + "." + fieldName
	for _, pat := range p.Exclude.Fields {
		if matchPattern(pat, qualified) {
			return true
		}
	}
	for _, pat := range p.Exclude.Types {
		if matchPattern(pat, typeName) {
			return true
		}
	}
	for _, pat := range p.Exclude.Documents {
		if matchPattern(pat, docPath) {
			return true
		}
	}
	return false
}

// matchPattern matches s against a pattern with * wildcards.
func matchPattern(pattern, s string) bool {
	if pattern == "" {
		return false
	}
	parts := strings.Split(pattern, "*")
	if len(parts) == 1 {
		return pattern == s
	}

	// Anchored prefix
	if parts[0] != "" {
		if !strings.HasPrefix(s, parts[0]) {
			return false
		}
		s = s[len(parts[0]):]
	}
	// Anchored suffix
	last := parts[len(parts)-1]
	if last != "" {
		if !strings.HasSuffix(s, last) {
			return false
		}
		s = s[:len(s)-len(last)]
	}
	// Middle segments must appear in order
	for _, part := range parts[1 : len(parts)-1] {
		if part == "" {
			continue
		}
		idx := strings.Index(s, part)
		if idx < 0 {
			return false
		}
		s = s[idx+len(part):]
	}
	return true
}
