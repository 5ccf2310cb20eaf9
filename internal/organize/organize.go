// Package organize puts processed sections into canonical presentation order.
package organize

import (
	"sort"

	"github.com/dgallion1/jobparse/internal/doctree"
)

// Sort returns a new slice ordered by section priority, ties broken by
// OriginalOrder. The input is not modified.
func Sort(sections []doctree.ProcessedSection) []doctree.ProcessedSection {
	out := make([]doctree.ProcessedSection, len(sections))
	copy(out, sections)
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := out[i].Type.Priority(), out[j].Type.Priority()
		if pi != pj {
			return pi < pj
		}
		return out[i].OriginalOrder < out[j].OriginalOrder
	})
	return out
}
