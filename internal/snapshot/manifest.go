package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"seal/internal/errors"
)

// ManifestVersion is the manifest schema version this build reads and writes.
const ManifestVersion = 1

// Manifest declares the project structure of a SCIP-built program. SCIP
// indexes carry documents and symbols but no assembly identity, so the
// manifest supplies it: which documents belong to which assembly and which
// visibility extension grants each assembly declares.
type Manifest struct {
	Version  int               `toml:"version"`
	Projects []ManifestProject `toml:"project"`
}

// ManifestProject maps a set of indexed documents to one assembly.
type ManifestProject struct {
	// Assembly is the assembly name, as visibility extension targets spell it.
	Assembly string `toml:"assembly"`

	// SourceRoot, when set, is prepended to document paths from the index.
	SourceRoot string `toml:"source_root,omitempty"`

	// Documents lists path prefixes claiming indexed documents for this
	// project. A project with no prefixes is the catch-all; at most one
	// project may be a catch-all.
	Documents []string `toml:"documents,omitempty"`

	// VisibleTo lists assemblies this project extends internal visibility to.
	VisibleTo []string `toml:"visible_to,omitempty"`
}

// LoadManifest reads and validates a project manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(
				errors.ManifestInvalid,
				fmt.Sprintf("SCIP snapshots need a project manifest, none found at %s", path),
				err,
			)
		}
		return nil, errors.New(
			errors.ManifestInvalid,
			fmt.Sprintf("failed to read project manifest %s", path),
			err,
		)
	}

	var man Manifest
	if err := toml.Unmarshal(data, &man); err != nil {
		return nil, errors.New(
			errors.ManifestInvalid,
			fmt.Sprintf("failed to parse project manifest %s", path),
			err,
		)
	}
	if man.Version == 0 {
		man.Version = ManifestVersion
	}
	if err := man.Validate(); err != nil {
		return nil, err
	}
	return &man, nil
}

// WriteManifest writes a manifest to the given path, creating parent
// directories as needed.
func WriteManifest(path string, man *Manifest) error {
	data, err := toml.Marshal(man)
	if err != nil {
		return errors.New(errors.InternalError, "failed to marshal project manifest", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.New(errors.InternalError, "failed to create manifest directory", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.New(errors.InternalError, fmt.Sprintf("failed to write project manifest %s", path), err)
	}
	return nil
}

// DefaultManifest returns a single-project catch-all manifest for assembly.
func DefaultManifest(assembly string) *Manifest {
	return &Manifest{
		Version:  ManifestVersion,
		Projects: []ManifestProject{{Assembly: assembly}},
	}
}

// Validate checks structural manifest rules.
func (m *Manifest) Validate() error {
	if m.Version != ManifestVersion {
		return errors.New(
			errors.ManifestInvalid,
			fmt.Sprintf("unsupported manifest version %d, this build reads version %d", m.Version, ManifestVersion),
			nil,
		)
	}
	if len(m.Projects) == 0 {
		return errors.New(errors.ManifestInvalid, "manifest declares no projects", nil)
	}

	seen := make(map[string]bool, len(m.Projects))
	catchAlls := 0
	for i, p := range m.Projects {
		if p.Assembly == "" {
			return errors.New(
				errors.ManifestInvalid,
				fmt.Sprintf("manifest project %d has no assembly name", i),
				nil,
			)
		}
		if seen[p.Assembly] {
			return errors.New(
				errors.ManifestInvalid,
				fmt.Sprintf("manifest declares assembly %q twice", p.Assembly),
				nil,
			)
		}
		seen[p.Assembly] = true
		if len(p.Documents) == 0 {
			catchAlls++
		}
	}
	if catchAlls > 1 {
		return errors.New(
			errors.ManifestInvalid,
			"manifest has more than one catch-all project, list document prefixes for all but one",
			nil,
		)
	}
	return nil
}

// projectFor returns the index of the project claiming docPath: the first
// project with a matching document prefix, falling back to the catch-all.
func (m *Manifest) projectFor(docPath string) (int, bool) {
	catchAll := -1
	for i, p := range m.Projects {
		if len(p.Documents) == 0 {
			if catchAll < 0 {
				catchAll = i
			}
			continue
		}
		for _, pref := range p.Documents {
			if matchPrefix(docPath, pref) {
				return i, true
			}
		}
	}
	if catchAll >= 0 {
		return catchAll, true
	}
	return 0, false
}

// matchPrefix reports whether docPath equals pref or sits below it as a
// path segment boundary.
func matchPrefix(docPath, pref string) bool {
	pref = strings.TrimSuffix(pref, "/")
	if pref == "" {
		return true
	}
	return docPath == pref || strings.HasPrefix(docPath, pref+"/")
}
