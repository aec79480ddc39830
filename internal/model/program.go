// Package model holds the Program Model: the resolved, ID-keyed view of a
// multi-project codebase that the scanners, the visibility resolver, and the
// rewriter consume. The model is plain data produced by an external indexer;
// symbols reference each other by stable string IDs instead of pointers, so
// the logically cyclic type graph stays acyclic in memory.
package model

import (
	"fmt"
	"sort"
)

// FormatVersion is the snapshot schema version this build understands.
const FormatVersion = 1

// Program is the full set of projects analyzed together. Anything outside
// its assembly names is an unknown consumer.
type Program struct {
	FormatVersion int        `json:"formatVersion"`
	Projects      []*Project `json:"projects"`
	Types         []*Type    `json:"types,omitempty"`
	Fields        []*Field   `json:"fields,omitempty"`

	// SnapshotID identifies the snapshot bytes this program was decoded
	// from. The loader fills it; it is not part of the encoded form.
	SnapshotID string `json:"-"`

	typesByID    map[string]*Type
	fieldsByID   map[string]*Field
	fieldsByType map[string][]*Field
	groups       map[string]GroupSite
	assemblies   map[string]bool
}

// Project is one assembly: a compilation boundary with its own name,
// attributes, and documents.
type Project struct {
	AssemblyName string      `json:"assemblyName"`
	Attributes   []Attribute `json:"attributes,omitempty"`
	Documents    []*Document `json:"documents,omitempty"`
}

// GroupSite locates a declaration group inside the program.
type GroupSite struct {
	Project  *Project
	Document *Document
	Group    *FieldGroup
}

// DocumentRef pairs a document with its owning project.
type DocumentRef struct {
	Project  *Project
	Document *Document
}

// BuildIndexes validates cross-references and builds the lookup tables.
// It must be called once after decoding and before any lookup.
func (p *Program) BuildIndexes() error {
	if p.FormatVersion != FormatVersion {
		return fmt.Errorf("unsupported snapshot format version %d", p.FormatVersion)
	}

	p.typesByID = make(map[string]*Type, len(p.Types))
	for _, t := range p.Types {
		if t.ID == "" {
			return fmt.Errorf("type %q has no ID", t.Name)
		}
		if _, dup := p.typesByID[t.ID]; dup {
			return fmt.Errorf("duplicate type ID %q", t.ID)
		}
		p.typesByID[t.ID] = t
	}

	p.fieldsByID = make(map[string]*Field, len(p.Fields))
	p.fieldsByType = make(map[string][]*Field)
	for _, f := range p.Fields {
		if f.ID == "" {
			return fmt.Errorf("field %q has no ID", f.Name)
		}
		if _, dup := p.fieldsByID[f.ID]; dup {
			return fmt.Errorf("duplicate field ID %q", f.ID)
		}
		p.fieldsByID[f.ID] = f
		p.fieldsByType[f.DeclaringType] = append(p.fieldsByType[f.DeclaringType], f)
	}

	p.assemblies = make(map[string]bool, len(p.Projects))
	p.groups = make(map[string]GroupSite)
	for _, proj := range p.Projects {
		if proj.AssemblyName == "" {
			return fmt.Errorf("project with empty assembly name")
		}
		p.assemblies[proj.AssemblyName] = true
		for _, doc := range proj.Documents {
			if doc.Path == "" {
				return fmt.Errorf("document with empty path in %q", proj.AssemblyName)
			}
			for i := range doc.Groups {
				g := &doc.Groups[i]
				if g.ID == "" {
					return fmt.Errorf("group with no ID in %q", doc.Path)
				}
				if _, dup := p.groups[g.ID]; dup {
					return fmt.Errorf("duplicate group ID %q", g.ID)
				}
				p.groups[g.ID] = GroupSite{Project: proj, Document: doc, Group: g}
			}
		}
	}

	return nil
}

// TypeByID looks up a type; nil when the ID is unknown.
func (p *Program) TypeByID(id string) *Type {
	return p.typesByID[id]
}

// FieldByID looks up a field; nil when the ID is unknown.
func (p *Program) FieldByID(id string) *Field {
	return p.fieldsByID[id]
}

// FieldsOfType returns every field declared on the given type.
func (p *Program) FieldsOfType(typeID string) []*Field {
	return p.fieldsByType[typeID]
}

// GroupByID locates a declaration group; ok is false when unknown.
func (p *Program) GroupByID(id string) (GroupSite, bool) {
	site, ok := p.groups[id]
	return site, ok
}

// HasAssembly reports whether a base assembly name belongs to the program.
func (p *Program) HasAssembly(name string) bool {
	return p.assemblies[name]
}

// AssemblyNames returns the program's assembly names, sorted.
func (p *Program) AssemblyNames() []string {
	names := make([]string, 0, len(p.assemblies))
	for name := range p.assemblies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DocumentRefs returns every document with its owning project, in project
// and then document order. Scans iterate this list.
func (p *Program) DocumentRefs() []DocumentRef {
	var refs []DocumentRef
	for _, proj := range p.Projects {
		for _, doc := range proj.Documents {
			refs = append(refs, DocumentRef{Project: proj, Document: doc})
		}
	}
	return refs
}

// DocumentCount returns the number of documents across all projects.
func (p *Program) DocumentCount() int {
	n := 0
	for _, proj := range p.Projects {
		n += len(proj.Documents)
	}
	return n
}

// ProjectOf returns the project owning an assembly name; nil when unknown.
func (p *Program) ProjectOf(assembly string) *Project {
	for _, proj := range p.Projects {
		if proj.AssemblyName == assembly {
			return proj
		}
	}
	return nil
}
