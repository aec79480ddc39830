// Package rules implements the single-file transforms behind "seal tidy".
// The rules read the snapshot's syntactic facts for a document and produce
// text edits through the rewrite machinery. They never feed into promotion
// verdicts.
package rules

import (
	"fmt"
	"sort"
	"strings"

	"seal/internal/errors"
	"seal/internal/model"
	"seal/internal/rewrite"
)

// Rule names accepted in tidy.rules.
const (
	RuleDirectives = "directives"
	RuleAssertions = "assertions"
)

// systemPrefixes lists the namespace roots that sort ahead of everything
// else, per language.
var systemPrefixes = map[model.Language][]string{
	model.LangCSharp: {"System"},
	model.LangJava:   {"java", "javax"},
}

func isSystemDirective(lang model.Language, name string) bool {
	for _, p := range systemPrefixes[lang] {
		if name == p || strings.HasPrefix(name, p+".") {
			return true
		}
	}
	return false
}

func directiveLess(lang model.Language, a, b model.Directive) bool {
	sa, sb := isSystemDirective(lang, a.Name), isSystemDirective(lang, b.Name)
	if sa != sb {
		return sa
	}
	return a.Name < b.Name
}

// SortDirectives returns the edits that reorder every contiguous directive
// run in doc: system namespaces first, then lexicographic, with duplicate
// directives collapsed. A run that is already in order produces no edit, so
// tidying a tidy file leaves it byte-identical.
func SortDirectives(doc *model.Document, text string) ([]rewrite.TextEdit, error) {
	if len(doc.Directives) == 0 {
		return nil, nil
	}
	dirs := make([]model.Directive, len(doc.Directives))
	copy(dirs, doc.Directives)
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Span.Start < dirs[j].Span.Start })

	for _, d := range dirs {
		if d.Span.Start < 0 || d.Span.End < d.Span.Start || d.Span.End > len(text) {
			return nil, errors.New(errors.RewriteConflict,
				fmt.Sprintf("directive span [%d,%d) out of range in %s", d.Span.Start, d.Span.End, doc.Path), nil)
		}
	}

	var edits []rewrite.TextEdit
	for start := 0; start < len(dirs); {
		end := start + 1
		for end < len(dirs) && blankBetween(text, dirs[end-1].Span.End, dirs[end].Span.Start) {
			end++
		}
		if edit := sortRun(doc.Language, text, dirs[start:end]); edit != nil {
			edits = append(edits, *edit)
		}
		start = end
	}
	return edits, nil
}

// blankBetween reports whether only whitespace separates two spans, which
// is what makes adjacent directives part of the same run. A comment or any
// other code between them starts a new run.
func blankBetween(text string, from, to int) bool {
	if from < 0 || to < from || to > len(text) {
		return false
	}
	return strings.TrimSpace(text[from:to]) == ""
}

func sortRun(lang model.Language, text string, run []model.Directive) *rewrite.TextEdit {
	ordered := true
	seen := make(map[string]bool, len(run))
	for i, d := range run {
		if seen[d.Name] {
			ordered = false
			break
		}
		seen[d.Name] = true
		if i > 0 && directiveLess(lang, d, run[i-1]) {
			ordered = false
			break
		}
	}
	if ordered {
		return nil
	}

	// Statements are rejoined with the run's first separator, which also
	// normalizes spacing freed up by collapsed duplicates.
	sep := "\n"
	if len(run) > 1 {
		sep = text[run[0].Span.End:run[1].Span.Start]
	}

	sorted := make([]model.Directive, len(run))
	copy(sorted, run)
	sort.SliceStable(sorted, func(i, j int) bool { return directiveLess(lang, sorted[i], sorted[j]) })

	parts := make([]string, 0, len(sorted))
	kept := make(map[string]bool, len(sorted))
	for _, d := range sorted {
		if kept[d.Name] {
			continue
		}
		kept[d.Name] = true
		parts = append(parts, text[d.Span.Start:d.Span.End])
	}

	first, last := run[0].Span.Start, run[len(run)-1].Span.End
	replacement := strings.Join(parts, sep)
	if replacement == text[first:last] {
		return nil
	}
	return &rewrite.TextEdit{Start: first, End: last, Text: replacement}
}
