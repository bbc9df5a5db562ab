package aggregate

import (
	"path/filepath"
	"sort"
)

// OrderSources returns a copy of paths sorted by file base name, with ties
// broken by the full path. The input slice is not modified.
func OrderSources(paths []string) []string {
	ordered := make([]string, len(paths))
	copy(ordered, paths)

	sort.SliceStable(ordered, func(i, j int) bool {
		bi, bj := filepath.Base(ordered[i]), filepath.Base(ordered[j])
		if bi != bj {
			return bi < bj
		}
		return ordered[i] < ordered[j]
	})

	return ordered
}
