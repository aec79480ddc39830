package rules

import (
	"fmt"

	"seal/internal/errors"
	"seal/internal/model"
	"seal/internal/rewrite"
)

// ReorderAssertionArgs returns the edits that swap the two arguments of
// configured assertion calls whose only literal operand sits in second
// position, so the expected value reads first. Calls with zero literal
// operands or with both operands literal are left alone.
func ReorderAssertionArgs(doc *model.Document, text string, methods map[string]bool) ([]rewrite.TextEdit, error) {
	var edits []rewrite.TextEdit
	for i := range doc.Invocations {
		inv := &doc.Invocations[i]
		if !methods[inv.Callee.Name] || len(inv.Args) != 2 {
			continue
		}
		actual, expected := inv.Args[0], inv.Args[1]
		if actual.Literal || !expected.Literal {
			continue
		}
		if err := checkArgSpans(doc, text, actual.Span, expected.Span); err != nil {
			return nil, err
		}
		edits = append(edits,
			rewrite.TextEdit{Start: actual.Span.Start, End: actual.Span.End, Text: text[expected.Span.Start:expected.Span.End]},
			rewrite.TextEdit{Start: expected.Span.Start, End: expected.Span.End, Text: text[actual.Span.Start:actual.Span.End]},
		)
	}
	return edits, nil
}

func checkArgSpans(doc *model.Document, text string, a, b model.Span) error {
	if a.Start < 0 || a.End < a.Start || b.End < b.Start || b.End > len(text) || a.End > b.Start {
		return errors.New(errors.RewriteConflict,
			fmt.Sprintf("argument spans [%d,%d) and [%d,%d) malformed in %s", a.Start, a.End, b.Start, b.End, doc.Path), nil)
	}
	return nil
}

// MethodSet builds the lookup used by ReorderAssertionArgs from the policy's
// assertion method list.
func MethodSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// Apply runs the named rules over one document and returns the rewritten
// text together with the number of edits applied. Unknown rule names are
// ignored so a newer config does not break an older binary.
func Apply(doc *model.Document, text string, ruleNames []string, assertMethods []string) (string, int, error) {
	var edits []rewrite.TextEdit
	for _, name := range ruleNames {
		switch name {
		case RuleDirectives:
			es, err := SortDirectives(doc, text)
			if err != nil {
				return "", 0, err
			}
			edits = append(edits, es...)
		case RuleAssertions:
			es, err := ReorderAssertionArgs(doc, text, MethodSet(assertMethods))
			if err != nil {
				return "", 0, err
			}
			edits = append(edits, es...)
		}
	}
	if len(edits) == 0 {
		return text, 0, nil
	}
	out, err := rewrite.ApplyEdits(text, edits)
	if err != nil {
		return "", 0, err
	}
	return out, len(edits), nil
}
