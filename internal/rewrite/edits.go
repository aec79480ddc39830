// Package rewrite turns promotion verdicts into rewritten document text.
// Edits are byte-offset string surgery; the package never reparses source
// to find insertion points, the model already carries them.
package rewrite

import (
	"fmt"
	"sort"
	"strings"

	"seal/internal/errors"
)

// TextEdit replaces the half-open byte range [Start, End) with Text. An
// insertion has Start == End.
type TextEdit struct {
	Start int
	End   int
	Text  string
}

// ApplyEdits applies the edits to src and returns the result. Edits may be
// given in any order but must be in bounds and non-overlapping; two
// insertions at the same offset are ambiguous and rejected as well.
func ApplyEdits(src string, edits []TextEdit) (string, error) {
	if len(edits) == 0 {
		return src, nil
	}

	sorted := make([]TextEdit, len(edits))
	copy(sorted, edits)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var b strings.Builder
	b.Grow(len(src) + grownBy(sorted))
	prev := 0
	for i, e := range sorted {
		if e.Start < 0 || e.End < e.Start || e.End > len(src) {
			return "", errors.New(
				errors.RewriteConflict,
				fmt.Sprintf("edit [%d,%d) is out of bounds for %d bytes of source", e.Start, e.End, len(src)),
				nil,
			)
		}
		if e.Start < prev || (i > 0 && e.Start == sorted[i-1].Start) {
			return "", errors.New(
				errors.RewriteConflict,
				fmt.Sprintf("edit [%d,%d) overlaps a preceding edit", e.Start, e.End),
				nil,
			)
		}
		b.WriteString(src[prev:e.Start])
		b.WriteString(e.Text)
		prev = e.End
	}
	b.WriteString(src[prev:])
	return b.String(), nil
}

func grownBy(edits []TextEdit) int {
	n := 0
	for _, e := range edits {
		n += len(e.Text) - (e.End - e.Start)
	}
	if n < 0 {
		return 0
	}
	return n
}
