package model

// SymbolKind classifies what a resolved symbol reference points at.
type SymbolKind string

const (
	KindField    SymbolKind = "field"
	KindLocal    SymbolKind = "local"
	KindParam    SymbolKind = "param"
	KindProperty SymbolKind = "property"
	KindMethod   SymbolKind = "method"
	KindType     SymbolKind = "type"
)

// SymbolRef is the resolution of an expression to a symbol.
// An empty Symbol means the expression could not be resolved; unresolved
// references are never treated as field writes and never become candidates.
type SymbolRef struct {
	Symbol string     `json:"symbol,omitempty"`
	Kind   SymbolKind `json:"kind,omitempty"`
}

// IsField reports whether the reference resolved to a field symbol.
func (r SymbolRef) IsField() bool {
	return r.Symbol != "" && r.Kind == KindField
}

// Accessibility is a declared accessibility level. The zero value means the
// declaration carried no explicit modifier.
type Accessibility string

const (
	AccessUnspecified       Accessibility = ""
	AccessPrivate           Accessibility = "private"
	AccessPrivateProtected  Accessibility = "privateProtected"
	AccessInternal          Accessibility = "internal"
	AccessProtected         Accessibility = "protected"
	AccessProtectedInternal Accessibility = "protectedInternal"
	AccessPublic            Accessibility = "public"
)

// EffectiveForField resolves an unspecified accessibility the way a bare
// field declaration does: private.
func (a Accessibility) EffectiveForField() Accessibility {
	if a == AccessUnspecified {
		return AccessPrivate
	}
	return a
}

// EffectiveForContext resolves an unspecified accessibility for non-field
// contexts (types, members): internal. Unspecified contexts stay subject
// to the assembly-leak check.
func (a Accessibility) EffectiveForContext() Accessibility {
	if a == AccessUnspecified {
		return AccessInternal
	}
	return a
}

// IsPublicTier reports whether the accessibility is visible to arbitrary
// external code when the containing type is: public, protected, or
// protected-internal. Protected counts because an external subclass can
// observe the member.
func (a Accessibility) IsPublicTier() bool {
	switch a {
	case AccessPublic, AccessProtected, AccessProtectedInternal:
		return true
	}
	return false
}

// IsInternalTier reports whether the accessibility is bounded by the
// assembly: internal or private-protected. These leak outside the program
// only through a visibility extension naming an out-of-program assembly.
func (a Accessibility) IsInternalTier() bool {
	switch a {
	case AccessInternal, AccessPrivateProtected:
		return true
	}
	return false
}

// Type is one entry of the program-wide type table.
type Type struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Assembly      string        `json:"assembly"`
	Accessibility Accessibility `json:"accessibility,omitempty"`
	// ContainingType is the enclosing type's ID, empty for top-level types.
	ContainingType string `json:"containingType,omitempty"`
	// ValueType marks non-reference types; by-ref parameters of these are
	// the hazardous case for opaque callees.
	ValueType bool `json:"valueType,omitempty"`
}

// Field is one entry of the program-wide field table. One logical field may
// be declared at several physical sites when its type is split across files;
// Groups lists every declaration group it appears in.
type Field struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	DeclaringType string        `json:"declaringType"`
	Accessibility Accessibility `json:"accessibility,omitempty"`
	ReadOnly      bool          `json:"readOnly,omitempty"`
	Const         bool          `json:"const,omitempty"`
	Extern        bool          `json:"extern,omitempty"`
	Groups        []string      `json:"groups"`
}

// Member identifies the lexically enclosing member of a statement site.
type Member struct {
	// DeclaringType is the ID of the type whose body contains the site.
	DeclaringType string `json:"declaringType,omitempty"`
	// Constructor is true inside instance and static constructor bodies.
	Constructor bool `json:"constructor,omitempty"`
}

// Attribute is a declarative annotation on a project (assembly).
type Attribute struct {
	Name      string         `json:"name"`
	Arguments []AttributeArg `json:"arguments,omitempty"`
}

// AttributeArg is a single attribute argument with its literal kind.
type AttributeArg struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

// VisibilityExtensionAttr is the attribute name granting another assembly
// access to internal members. The single argument names the grantee; any
// metadata after the first comma (keys, versions) is ignored for matching.
const VisibilityExtensionAttr = "VisibleTo"

// AttrKindString is the argument kind carrying an assembly name.
const AttrKindString = "string"
