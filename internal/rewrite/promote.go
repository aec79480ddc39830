package rewrite

import (
	"fmt"
	"sort"

	"seal/internal/errors"
	"seal/internal/model"
)

// Qualifier returns the immutability qualifier inserted for lang, including
// its trailing separator.
func Qualifier(lang model.Language) (string, error) {
	switch lang {
	case model.LangCSharp:
		return "readonly ", nil
	case model.LangJava:
		return "final ", nil
	}
	return "", errors.New(
		errors.UnsupportedLanguage,
		fmt.Sprintf("no immutability qualifier known for language %q", lang),
		nil,
	)
}

// Plan fixes which declaration groups gain the qualifier.
//
// A group qualifies only when every field it declares is promotable: a
// statement declaring two fields is never split. A logical field declared
// at several physical sites is treated as one unit, so one disqualified
// sibling anywhere unwinds the field from all of its sites. Fields without
// declaration sites (lossy snapshots) cannot be rewritten at all.
type Plan struct {
	// Groups holds the IDs of every group to rewrite.
	Groups map[string]bool

	// Fields lists the field IDs gaining the qualifier, sorted.
	Fields []string
}

// NewPlan computes the rewrite plan for the promotable set.
func NewPlan(prog *model.Program, promotable map[string]bool) *Plan {
	live := make(map[string]bool)
	for id := range promotable {
		if f := prog.FieldByID(id); f != nil && len(f.Groups) > 0 {
			live[id] = true
		}
	}

	refs := prog.DocumentRefs()
	for changed := true; changed; {
		changed = false
		for _, ref := range refs {
			for i := range ref.Document.Groups {
				g := &ref.Document.Groups[i]
				qualified := true
				for _, fid := range g.Fields {
					if !live[fid] {
						qualified = false
						break
					}
				}
				if qualified {
					continue
				}
				for _, fid := range g.Fields {
					if live[fid] {
						delete(live, fid)
						changed = true
					}
				}
			}
		}
	}

	plan := &Plan{Groups: make(map[string]bool)}
	for _, ref := range refs {
		for i := range ref.Document.Groups {
			g := &ref.Document.Groups[i]
			if len(g.Fields) == 0 {
				continue
			}
			qualified := true
			for _, fid := range g.Fields {
				if !live[fid] {
					qualified = false
					break
				}
			}
			if qualified {
				plan.Groups[g.ID] = true
			}
		}
	}
	plan.Fields = make([]string, 0, len(live))
	for id := range live {
		plan.Fields = append(plan.Fields, id)
	}
	sort.Strings(plan.Fields)
	return plan
}

// Touches reports whether the plan rewrites any group in the document,
// letting callers skip loading text for documents the plan never edits.
func (p *Plan) Touches(doc *model.Document) bool {
	for i := range doc.Groups {
		if p.Groups[doc.Groups[i].ID] {
			return true
		}
	}
	return false
}

// PromoteDocument rewrites one document's text according to the plan. The
// text is passed in explicitly since documents may carry their text inline
// or live on disk. Returns the rewritten text and the IDs of the groups it
// changed, in document order.
func PromoteDocument(doc *model.Document, text string, plan *Plan) (string, []string, error) {
	var edits []TextEdit
	var groupIDs []string
	for i := range doc.Groups {
		g := &doc.Groups[i]
		if !plan.Groups[g.ID] {
			continue
		}
		qual, err := Qualifier(doc.Language)
		if err != nil {
			return "", nil, err
		}
		if g.InsertOffset < g.Span.Start || g.InsertOffset > g.Span.End {
			return "", nil, errors.New(
				errors.RewriteConflict,
				fmt.Sprintf("group %s insert offset %d escapes its span [%d,%d)", g.ID, g.InsertOffset, g.Span.Start, g.Span.End),
				nil,
			)
		}
		edits = append(edits, TextEdit{Start: g.InsertOffset, End: g.InsertOffset, Text: qual})
		groupIDs = append(groupIDs, g.ID)
	}
	if len(edits) == 0 {
		return text, nil, nil
	}

	out, err := ApplyEdits(text, edits)
	if err != nil {
		return "", nil, err
	}
	return out, groupIDs, nil
}
