// Package testutil provides shared fixtures for analysis tests: a compact
// builder for program snapshots and helpers that write them to disk in the
// formats the loader accepts.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"seal/internal/model"
)

// ProgramBuilder assembles small in-memory programs for tests. Methods
// operate on the most recently added project and document, so fixtures read
// top to bottom like the source layout they describe.
type ProgramBuilder struct {
	prog *model.Program
}

// NewProgram starts an empty program fixture.
func NewProgram() *ProgramBuilder {
	return &ProgramBuilder{
		prog: &model.Program{FormatVersion: model.FormatVersion},
	}
}

// Project appends a project with the given assembly name and makes it
// current.
func (b *ProgramBuilder) Project(assembly string) *ProgramBuilder {
	b.prog.Projects = append(b.prog.Projects, &model.Project{AssemblyName: assembly})
	return b
}

// VisibleTo attaches a visibility extension attribute naming target to the
// current project.
func (b *ProgramBuilder) VisibleTo(target string) *ProgramBuilder {
	p := b.curProject()
	p.Attributes = append(p.Attributes, model.Attribute{
		Name:      model.VisibilityExtensionAttr,
		Arguments: []model.AttributeArg{{Kind: model.AttrKindString, Value: target}},
	})
	return b
}

// Attr attaches an arbitrary assembly-level attribute to the current project.
func (b *ProgramBuilder) Attr(attr model.Attribute) *ProgramBuilder {
	p := b.curProject()
	p.Attributes = append(p.Attributes, attr)
	return b
}

// Document appends a document to the current project and makes it current.
func (b *ProgramBuilder) Document(path string, lang model.Language, text string) *ProgramBuilder {
	p := b.curProject()
	p.Documents = append(p.Documents, &model.Document{Path: path, Language: lang, Text: text})
	return b
}

// Type registers a type in the current project's assembly.
func (b *ProgramBuilder) Type(id, name string, acc model.Accessibility) *ProgramBuilder {
	b.prog.Types = append(b.prog.Types, &model.Type{
		ID:            id,
		Name:          name,
		Assembly:      b.curProject().AssemblyName,
		Accessibility: acc,
	})
	return b
}

// ValueType registers a value type in the current project's assembly.
func (b *ProgramBuilder) ValueType(id, name string, acc model.Accessibility) *ProgramBuilder {
	b.prog.Types = append(b.prog.Types, &model.Type{
		ID:            id,
		Name:          name,
		Assembly:      b.curProject().AssemblyName,
		Accessibility: acc,
		ValueType:     true,
	})
	return b
}

// NestedType registers a type contained in another type.
func (b *ProgramBuilder) NestedType(id, name, containing string, acc model.Accessibility) *ProgramBuilder {
	b.prog.Types = append(b.prog.Types, &model.Type{
		ID:             id,
		Name:           name,
		Assembly:       b.curProject().AssemblyName,
		Accessibility:  acc,
		ContainingType: containing,
	})
	return b
}

// Field registers a field on declType.
func (b *ProgramBuilder) Field(id, name, declType string, acc model.Accessibility) *ProgramBuilder {
	b.prog.Fields = append(b.prog.Fields, &model.Field{
		ID:            id,
		Name:          name,
		DeclaringType: declType,
		Accessibility: acc,
	})
	return b
}

// ReadonlyField registers a field that is already immutable.
func (b *ProgramBuilder) ReadonlyField(id, name, declType string, acc model.Accessibility) *ProgramBuilder {
	b.Field(id, name, declType, acc)
	b.lastField().ReadOnly = true
	return b
}

// ConstField registers a compile-time constant field.
func (b *ProgramBuilder) ConstField(id, name, declType string, acc model.Accessibility) *ProgramBuilder {
	b.Field(id, name, declType, acc)
	b.lastField().Const = true
	return b
}

// ExternField registers a field with externally managed storage.
func (b *ProgramBuilder) ExternField(id, name, declType string, acc model.Accessibility) *ProgramBuilder {
	b.Field(id, name, declType, acc)
	b.lastField().Extern = true
	return b
}

// Group adds a declaration group to the current document and links the named
// fields to it.
func (b *ProgramBuilder) Group(id string, span model.Span, insertOffset int, fieldIDs ...string) *ProgramBuilder {
	doc := b.curDocument()
	doc.Groups = append(doc.Groups, model.FieldGroup{
		ID:           id,
		Span:         span,
		InsertOffset: insertOffset,
		Fields:       fieldIDs,
	})
	for _, fid := range fieldIDs {
		f := b.fieldByID(fid)
		f.Groups = append(f.Groups, id)
	}
	return b
}

// Assign records an assignment in the current document.
func (b *ProgramBuilder) Assign(a model.Assignment) *ProgramBuilder {
	doc := b.curDocument()
	doc.Assignments = append(doc.Assignments, a)
	return b
}

// Invoke records an invocation in the current document.
func (b *ProgramBuilder) Invoke(inv model.Invocation) *ProgramBuilder {
	doc := b.curDocument()
	doc.Invocations = append(doc.Invocations, inv)
	return b
}

// Directive records a using directive in the current document.
func (b *ProgramBuilder) Directive(name string, span model.Span) *ProgramBuilder {
	doc := b.curDocument()
	doc.Directives = append(doc.Directives, model.Directive{Name: name, Span: span})
	return b
}

// Build indexes the program and fails the test on any structural error.
func (b *ProgramBuilder) Build(t *testing.T) *model.Program {
	t.Helper()
	if err := b.prog.BuildIndexes(); err != nil {
		t.Fatalf("fixture program invalid: %v", err)
	}
	return b.prog
}

// Raw returns the program without indexing, for tests that exercise
// validation themselves.
func (b *ProgramBuilder) Raw() *model.Program {
	return b.prog
}

func (b *ProgramBuilder) curProject() *model.Project {
	if len(b.prog.Projects) == 0 {
		panic("testutil: add a Project before project-scoped entries")
	}
	return b.prog.Projects[len(b.prog.Projects)-1]
}

func (b *ProgramBuilder) curDocument() *model.Document {
	p := b.curProject()
	if len(p.Documents) == 0 {
		panic("testutil: add a Document before document-scoped entries")
	}
	return p.Documents[len(p.Documents)-1]
}

func (b *ProgramBuilder) lastField() *model.Field {
	return b.prog.Fields[len(b.prog.Fields)-1]
}

func (b *ProgramBuilder) fieldByID(id string) *model.Field {
	for _, f := range b.prog.Fields {
		if f.ID == id {
			return f
		}
	}
	panic("testutil: group references unknown field " + id)
}

// InCtor builds the enclosing-member marker for code inside a constructor of
// typeID.
func InCtor(typeID string) model.Member {
	return model.Member{DeclaringType: typeID, Constructor: true}
}

// InMethod builds the enclosing-member marker for code inside an ordinary
// member of typeID.
func InMethod(typeID string) model.Member {
	return model.Member{DeclaringType: typeID, Constructor: false}
}

// FieldWrite is shorthand for a plain assignment to a field.
func FieldWrite(fieldID string, encl model.Member, span model.Span) model.Assignment {
	return model.Assignment{
		Target:    model.SymbolRef{Symbol: fieldID, Kind: model.KindField},
		Enclosing: encl,
		Span:      span,
	}
}

// WriteJSONSnapshot marshals prog into dir as a JSON snapshot and returns
// its path.
func WriteJSONSnapshot(t *testing.T, dir string, prog *model.Program) string {
	t.Helper()
	data, err := json.MarshalIndent(prog, "", "  ")
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	path := filepath.Join(dir, "program.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	return path
}
