// Package visibility decides whether declarations are reachable from code
// outside the analyzed program. A field that outside code could observe or
// mutate must never be promoted, so every verdict here errs toward
// "reachable" when the model cannot prove otherwise.
package visibility

import (
	"strings"
	"sync"

	"seal/internal/model"
)

// Resolver answers reachability questions against one program model.
// Assembly leak determinations are memoized for the lifetime of the
// resolver; the extension-attribute set of an assembly does not change
// mid-analysis. Safe for concurrent use by scan workers.
type Resolver struct {
	prog *model.Program

	mu    sync.Mutex
	leaks map[string]bool
}

// NewResolver builds a resolver over an indexed program.
func NewResolver(prog *model.Program) *Resolver {
	return &Resolver{
		prog:  prog,
		leaks: make(map[string]bool),
	}
}

// FieldReachable reports whether the field is reachable from outside the
// program.
//
//   - private fields are never reachable through visibility; only direct
//     write sites can disqualify them.
//   - public-tier fields (public, protected, protected internal) are
//     reachable exactly when their declaring type is.
//   - internal-tier fields (internal, private protected) are reachable only
//     when their assembly extends internal visibility past the program
//     boundary.
func (r *Resolver) FieldReachable(f *model.Field) bool {
	acc := f.Accessibility.EffectiveForField()
	switch {
	case acc == model.AccessPrivate:
		return false
	case acc.IsInternalTier():
		t := r.prog.TypeByID(f.DeclaringType)
		if t == nil {
			return true
		}
		return r.assemblyLeaks(t.Assembly)
	case acc.IsPublicTier():
		return r.typeReachable(f.DeclaringType)
	}
	return true
}

// typeReachable walks the containing-type chain. Public-tier links recurse
// upward and bottom out reachable at top level; internal-tier links reduce
// to the assembly leak check; a private link stops the walk unreachable.
// Unknown or cyclic chains count as reachable.
func (r *Resolver) typeReachable(typeID string) bool {
	seen := make(map[string]bool)
	for typeID != "" {
		if seen[typeID] {
			return true
		}
		seen[typeID] = true

		t := r.prog.TypeByID(typeID)
		if t == nil {
			return true
		}
		acc := t.Accessibility.EffectiveForContext()
		switch {
		case acc == model.AccessPrivate:
			return false
		case acc.IsInternalTier():
			return r.assemblyLeaks(t.Assembly)
		case acc.IsPublicTier():
			typeID = t.ContainingType
		default:
			return true
		}
	}
	return true
}

// assemblyLeaks reports whether the assembly grants internal visibility to
// any assembly outside the program.
func (r *Resolver) assemblyLeaks(assembly string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if leaked, ok := r.leaks[assembly]; ok {
		return leaked
	}
	leaked := r.computeLeak(assembly)
	r.leaks[assembly] = leaked
	return leaked
}

func (r *Resolver) computeLeak(assembly string) bool {
	proj := r.prog.ProjectOf(assembly)
	if proj == nil {
		// The assembly is outside the model, assume its internals leak.
		return true
	}
	for _, attr := range proj.Attributes {
		if attr.Name != model.VisibilityExtensionAttr {
			continue
		}
		target, ok := extensionTarget(attr)
		if !ok {
			continue
		}
		if !r.prog.HasAssembly(target) {
			return true
		}
	}
	return false
}

// extensionTarget extracts the base name of the assembly a visibility
// extension grants access to. Full names carry version and key parts after
// a comma; only the base name participates in boundary matching. Malformed
// declarations are skipped rather than failing the assembly.
func extensionTarget(attr model.Attribute) (string, bool) {
	if len(attr.Arguments) != 1 {
		return "", false
	}
	arg := attr.Arguments[0]
	if arg.Kind != model.AttrKindString {
		return "", false
	}
	base, _, _ := strings.Cut(arg.Value, ",")
	base = strings.TrimSpace(base)
	if base == "" {
		return "", false
	}
	return base, true
}
