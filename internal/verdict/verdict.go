// Package verdict computes and caches promotion verdicts: which fields of a
// program snapshot can safely gain the immutability qualifier.
package verdict

import (
	"sort"
)

// Verdicts is the finalized analysis result for one program snapshot. All
// slices are sorted field IDs.
type Verdicts struct {
	SnapshotID string `json:"snapshotId" msgpack:"snapshotId"`

	// Candidates are the fields eligible before write analysis.
	Candidates []string `json:"candidates" msgpack:"candidates"`

	// Written are the fields disqualified by a write site somewhere in the
	// program.
	Written []string `json:"written" msgpack:"written"`

	// Promotable is Candidates minus Written, fixed only after the whole
	// program has been scanned.
	Promotable []string `json:"promotable" msgpack:"promotable"`
}

// IsPromotable reports whether the field may gain the qualifier.
func (v *Verdicts) IsPromotable(fieldID string) bool {
	i := sort.SearchStrings(v.Promotable, fieldID)
	return i < len(v.Promotable) && v.Promotable[i] == fieldID
}

// PromotableSet returns the promotable IDs as a set for rewrite lookups.
func (v *Verdicts) PromotableSet() map[string]bool {
	set := make(map[string]bool, len(v.Promotable))
	for _, id := range v.Promotable {
		set[id] = true
	}
	return set
}
