package model

// Language identifies a document's source language. It selects the
// immutability qualifier and the validation grammar.
type Language string

const (
	LangCSharp Language = "csharp"
	LangJava   Language = "java"
)

// Span is a half-open byte range [Start, End) within a document's text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Contains reports whether the span fully contains other.
func (s Span) Contains(other Span) bool {
	return s.Start <= other.Start && other.End <= s.End
}

// Document is one compilation unit. Text may be embedded in the snapshot;
// when empty, the document's bytes are read from the source root at rewrite
// time. Scanning never needs the text, only rewriting does.
type Document struct {
	Path     string   `json:"path"`
	Language Language `json:"language"`
	Text     string   `json:"text,omitempty"`

	Directives  []Directive  `json:"directives,omitempty"`
	Groups      []FieldGroup `json:"groups,omitempty"`
	Assignments []Assignment `json:"assignments,omitempty"`
	Invocations []Invocation `json:"invocations,omitempty"`
}

// HasInlineText reports whether the snapshot embedded the document bytes.
func (d *Document) HasInlineText() bool {
	return d.Text != ""
}

// Directive is an import/using statement. Span covers the full directive
// statement without its line terminator.
type Directive struct {
	Name string `json:"name"`
	Span Span   `json:"span"`
}

// FieldGroup is one physical field declaration statement. A statement may
// declare several fields at once; the group is the rewrite unit, and it is
// rewritten only when every declared field is promotable.
type FieldGroup struct {
	// ID is unique across the program so partial declarations in other
	// documents can reference their sibling groups.
	ID   string `json:"id"`
	Span Span   `json:"span"`
	// InsertOffset is the byte offset where the immutability qualifier is
	// inserted, immediately before the declared type.
	InsertOffset int `json:"insertOffset"`
	// Fields lists the declared field IDs in declaration order.
	Fields []string `json:"fields"`
}

// Assignment is a write through `=` or a compound operator.
type Assignment struct {
	Target    SymbolRef `json:"target"`
	Compound  bool      `json:"compound,omitempty"`
	Enclosing Member    `json:"enclosing"`
	Span      Span      `json:"span"`
}

// RefMode is an argument or parameter passing mode.
type RefMode string

const (
	RefNone RefMode = ""
	RefRef  RefMode = "ref"
	RefOut  RefMode = "out"
	// RefIn is a readonly by-reference mode; the callee cannot write
	// through it, so it never disqualifies.
	RefIn RefMode = "in"
)

// Writable reports whether the mode lets the callee mutate the argument.
func (m RefMode) Writable() bool {
	return m == RefRef || m == RefOut
}

// Param is a declared parameter of a callee.
type Param struct {
	Type string  `json:"type"`
	Mode RefMode `json:"mode,omitempty"`
}

// Callee describes the target of an invocation. HasBody is false for
// external/opaque implementations the analysis cannot see inside.
type Callee struct {
	Symbol  string  `json:"symbol,omitempty"`
	Name    string  `json:"name,omitempty"`
	HasBody bool    `json:"hasBody,omitempty"`
	Params  []Param `json:"params,omitempty"`
}

// Argument is one argument at a call site.
type Argument struct {
	Ref     SymbolRef `json:"ref,omitempty"`
	Mode    RefMode   `json:"mode,omitempty"`
	Literal bool      `json:"literal,omitempty"`
	Span    Span      `json:"span"`
}

// Invocation is a call site, including indexer and element accesses that
// dispatch to a callable.
type Invocation struct {
	Callee    Callee     `json:"callee"`
	Args      []Argument `json:"args,omitempty"`
	Enclosing Member     `json:"enclosing"`
	Span      Span       `json:"span"`
}
