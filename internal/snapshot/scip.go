package snapshot

import (
	"fmt"
	"strings"

	scippb "github.com/sourcegraph/scip/bindings/go/scip"
	"google.golang.org/protobuf/proto"

	"seal/internal/errors"
	"seal/internal/model"
)

// loadSCIP parses a SCIP index and materializes it as a program model.
//
// SCIP is a lossy source compared to the JSON encoding. The conversion keeps
// the result safe rather than complete:
//
//   - Accessibility comes from a best-effort parse of the signature block in
//     symbol documentation. Unparseable symbols default to public, which can
//     only exclude candidates, never admit them.
//   - WriteAccess occurrences become assignments. A write is credited to a
//     constructor only when it falls inside the enclosing range of a
//     constructor of the field's own type; otherwise the enclosing member
//     stays unknown and the write disqualifies.
//   - Call-site parameter info is absent, so by-ref flow through value types
//     cannot be reconstructed. Fields declared on value types are dropped
//     from the model entirely.
//   - Declaration groups are absent, so a SCIP-built model yields verdicts
//     but no rewrite sites.
func loadSCIP(data []byte, man *Manifest) (*model.Program, error) {
	var index scippb.Index
	if err := proto.Unmarshal(data, &index); err != nil {
		return nil, errors.New(
			errors.SnapshotInvalid,
			"failed to parse SCIP index",
			err,
		).WithDetails(map[string]any{"hint": "verify the index with: scip print --index=<path>"})
	}
	return convertIndex(&index, man)
}

func convertIndex(index *scippb.Index, man *Manifest) (*model.Program, error) {
	prog := &model.Program{FormatVersion: model.FormatVersion}

	for _, mp := range man.Projects {
		proj := &model.Project{AssemblyName: mp.Assembly}
		for _, target := range mp.VisibleTo {
			proj.Attributes = append(proj.Attributes, model.Attribute{
				Name:      model.VisibilityExtensionAttr,
				Arguments: []model.AttributeArg{{Kind: model.AttrKindString, Value: target}},
			})
		}
		prog.Projects = append(prog.Projects, proj)
	}

	// Assign every indexed document to its manifest project.
	docProject := make(map[*scippb.Document]int, len(index.Documents))
	for _, doc := range index.Documents {
		pi, ok := man.projectFor(doc.RelativePath)
		if !ok {
			return nil, errors.New(
				errors.ManifestInvalid,
				fmt.Sprintf("no manifest project claims document %s", doc.RelativePath),
				nil,
			)
		}
		docProject[doc] = pi
		prog.Projects[pi].Documents = append(prog.Projects[pi].Documents, convertDocument(doc, man.Projects[pi]))
	}

	// Symbol tables need two passes: types first, then fields, because a
	// field's declaring type can be defined in another document.
	types := make(map[string]*model.Type)
	for _, doc := range index.Documents {
		assembly := man.Projects[docProject[doc]].Assembly
		for _, sym := range doc.Symbols {
			if !isTypeKind(sym.Kind) {
				continue
			}
			if _, dup := types[sym.Symbol]; dup {
				continue
			}
			t := convertType(sym, assembly)
			types[sym.Symbol] = t
			prog.Types = append(prog.Types, t)
		}
	}

	fields := make(map[string]*model.Field)
	ctors := make(map[string]string) // constructor symbol -> declaring type symbol
	for _, doc := range index.Documents {
		for _, sym := range doc.Symbols {
			switch {
			case isFieldKind(sym.Kind):
				if _, dup := fields[sym.Symbol]; dup {
					continue
				}
				f := convertField(sym)
				if decl, ok := types[f.DeclaringType]; ok && decl.ValueType {
					// By-ref flow through value types is invisible here.
					continue
				}
				fields[sym.Symbol] = f
				prog.Fields = append(prog.Fields, f)
			case isConstructorSymbol(sym):
				ctors[sym.Symbol] = declaringTypeOfTerm(sym.Symbol)
			}
		}
	}

	// Occurrence pass: constructor extents first, then write occurrences.
	for _, doc := range collectDocs(index, docProject, prog) {
		convertOccurrences(doc.scip, doc.model, fields, ctors)
	}

	return prog, nil
}

type docPair struct {
	scip  *scippb.Document
	model *model.Document
}

// collectDocs pairs each SCIP document with its converted model document.
// Documents were appended per project in index order, so positions line up.
func collectDocs(index *scippb.Index, docProject map[*scippb.Document]int, prog *model.Program) []docPair {
	next := make([]int, len(prog.Projects))
	pairs := make([]docPair, 0, len(index.Documents))
	for _, doc := range index.Documents {
		pi := docProject[doc]
		pairs = append(pairs, docPair{scip: doc, model: prog.Projects[pi].Documents[next[pi]]})
		next[pi]++
	}
	return pairs
}

func convertDocument(doc *scippb.Document, mp ManifestProject) *model.Document {
	path := doc.RelativePath
	if mp.SourceRoot != "" {
		path = strings.TrimSuffix(mp.SourceRoot, "/") + "/" + path
	}
	return &model.Document{
		Path:     path,
		Language: convertLanguage(doc.Language),
		Text:     doc.Text,
	}
}

func convertLanguage(lang string) model.Language {
	switch strings.ToLower(lang) {
	case "csharp", "c#", "cs":
		return model.LangCSharp
	case "java":
		return model.LangJava
	}
	return model.Language(strings.ToLower(lang))
}

func convertType(sym *scippb.SymbolInformation, assembly string) *model.Type {
	acc, _ := parseSignatureModifiers(sym.Documentation)
	return &model.Type{
		ID:             sym.Symbol,
		Name:           symbolBaseName(sym),
		Assembly:       assembly,
		Accessibility:  acc,
		ContainingType: containingOfType(sym.Symbol),
		ValueType:      sym.Kind == scippb.SymbolInformation_Struct || sym.Kind == scippb.SymbolInformation_Enum,
	}
}

func convertField(sym *scippb.SymbolInformation) *model.Field {
	acc, mods := parseSignatureModifiers(sym.Documentation)
	decl := sym.EnclosingSymbol
	if decl == "" {
		decl = declaringTypeOfTerm(sym.Symbol)
	}
	return &model.Field{
		ID:            sym.Symbol,
		Name:          symbolBaseName(sym),
		DeclaringType: decl,
		Accessibility: acc,
		ReadOnly:      mods.readonly,
		Const:         sym.Kind == scippb.SymbolInformation_Constant || mods.konst,
		Extern:        mods.extern,
	}
}

// convertOccurrences maps WriteAccess occurrences onto assignments in the
// model document. Definition occurrences are declaration sites, not
// mutations, and are skipped.
func convertOccurrences(doc *scippb.Document, out *model.Document, fields map[string]*model.Field, ctors map[string]string) {
	type ctorExtent struct {
		typeSymbol string
		rng        *scippb.Range
	}
	var extents []ctorExtent
	for _, occ := range doc.Occurrences {
		if occ.SymbolRoles&int32(scippb.SymbolRole_Definition) == 0 {
			continue
		}
		typeSym, ok := ctors[occ.Symbol]
		if !ok || len(occ.EnclosingRange) == 0 {
			continue
		}
		rng := scippb.NewRangeUnchecked(occ.EnclosingRange)
		extents = append(extents, ctorExtent{typeSymbol: typeSym, rng: &rng})
	}

	for _, occ := range doc.Occurrences {
		if occ.SymbolRoles&int32(scippb.SymbolRole_WriteAccess) == 0 {
			continue
		}
		if occ.SymbolRoles&int32(scippb.SymbolRole_Definition) != 0 {
			continue
		}
		field, ok := fields[occ.Symbol]
		if !ok {
			continue
		}

		encl := model.Member{}
		writeRange := scippb.NewRangeUnchecked(occ.Range)
		for _, ext := range extents {
			if ext.typeSymbol == field.DeclaringType && rangeWithin(&writeRange, ext.rng) {
				encl = model.Member{DeclaringType: field.DeclaringType, Constructor: true}
				break
			}
		}

		// Byte spans are unknowable without document text offsets; writes
		// carry an empty span, which the scanners never consult.
		out.Assignments = append(out.Assignments, model.Assignment{
			Target:    model.SymbolRef{Symbol: field.ID, Kind: model.KindField},
			Enclosing: encl,
		})
	}
}

func isTypeKind(kind scippb.SymbolInformation_Kind) bool {
	switch kind {
	case scippb.SymbolInformation_Class,
		scippb.SymbolInformation_Struct,
		scippb.SymbolInformation_Enum,
		scippb.SymbolInformation_Interface:
		return true
	}
	return false
}

func isFieldKind(kind scippb.SymbolInformation_Kind) bool {
	switch kind {
	case scippb.SymbolInformation_Field,
		scippb.SymbolInformation_StaticField,
		scippb.SymbolInformation_Constant:
		return true
	}
	return false
}

// isConstructorSymbol recognizes instance and static constructors. Kind is
// authoritative when the indexer sets it; the descriptor spelling covers
// indexers that leave Kind unspecified.
func isConstructorSymbol(sym *scippb.SymbolInformation) bool {
	if sym.Kind == scippb.SymbolInformation_Constructor {
		return true
	}
	for _, pat := range []string{"#.ctor(", "#.cctor(", "#`.ctor`(", "#`.cctor`("} {
		if strings.Contains(sym.Symbol, pat) {
			return true
		}
	}
	return false
}

// declaringTypeOfTerm returns the symbol of the type declaring a term or
// method symbol: the prefix through the last type descriptor.
func declaringTypeOfTerm(symbol string) string {
	i := strings.LastIndex(symbol, "#")
	if i < 0 {
		return ""
	}
	return symbol[:i+1]
}

// containingOfType returns the symbol of the type containing a nested type
// symbol, or empty for top-level types.
func containingOfType(symbol string) string {
	s := strings.TrimSuffix(symbol, "#")
	i := strings.LastIndex(s, "#")
	if i < 0 {
		return ""
	}
	return s[:i+1]
}

// symbolBaseName extracts a display name: the indexer-provided one when set,
// otherwise the last descriptor stripped of its suffix punctuation.
func symbolBaseName(sym *scippb.SymbolInformation) string {
	if sym.DisplayName != "" {
		return sym.DisplayName
	}
	s := strings.TrimRight(sym.Symbol, ".#)(")
	if i := strings.LastIndexAny(s, "#/. "); i >= 0 {
		s = s[i+1:]
	}
	return strings.Trim(s, "`")
}

type modifierFlags struct {
	readonly bool
	konst    bool
	extern   bool
}

// parseSignatureModifiers scans the fenced signature block indexers place in
// symbol documentation. Symbols without a parseable signature default to
// public so they can never become candidates by accident.
func parseSignatureModifiers(docs []string) (model.Accessibility, modifierFlags) {
	var flags modifierFlags
	sig := signatureBlock(docs)
	if sig == "" {
		return model.AccessPublic, flags
	}

	acc := model.AccessUnspecified
	private, protected, internal := false, false, false
	for _, tok := range strings.Fields(sig) {
		switch tok {
		case "public":
			acc = model.AccessPublic
		case "private":
			private = true
		case "protected":
			protected = true
		case "internal":
			internal = true
		case "readonly":
			flags.readonly = true
		case "const":
			flags.konst = true
		case "extern":
			flags.extern = true
		}
	}
	switch {
	case acc == model.AccessPublic:
	case protected && internal:
		acc = model.AccessProtectedInternal
	case private && protected:
		acc = model.AccessPrivateProtected
	case protected:
		acc = model.AccessProtected
	case internal:
		acc = model.AccessInternal
	case private:
		acc = model.AccessPrivate
	default:
		acc = model.AccessPublic
	}
	return acc, flags
}

// signatureBlock returns the body of the first fenced code block in the
// documentation entries, or empty when none exists.
func signatureBlock(docs []string) string {
	for _, doc := range docs {
		start := strings.Index(doc, "```")
		if start < 0 {
			continue
		}
		rest := doc[start+3:]
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			rest = rest[nl+1:]
		}
		if end := strings.Index(rest, "```"); end >= 0 {
			rest = rest[:end]
		}
		if s := strings.TrimSpace(rest); s != "" {
			return s
		}
	}
	return ""
}

// rangeWithin reports whether inner lies entirely inside outer.
func rangeWithin(inner, outer *scippb.Range) bool {
	return !posBefore(inner.Start, outer.Start) && !posBefore(outer.End, inner.End)
}

func posBefore(a, b scippb.Position) bool {
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Character < b.Character
}
