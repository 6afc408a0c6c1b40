package sfc

import (
	"sort"
)

// Edit replaces the text between Start and End with Text.
type Edit struct {
	Start, End int
	Text       string
}

// Splice applies edits to src. Edit offsets are expressed in a coordinate
// space where src begins at base, so edits computed against a whole file can
// be applied to one block by passing the block's start offset. Edits are
// applied from the highest offset down and must not overlap.
func Splice(src string, base int, edits []Edit) string {
	if len(edits) == 0 {
		return src
	}
	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start > sorted[j].Start
	})

	out := src
	for _, e := range sorted {
		start, end := e.Start-base, e.End-base
		if start < 0 || end > len(out) || start > end {
			continue
		}
		out = out[:start] + e.Text + out[end:]
	}
	return out
}
