package testutil

import (
	"path/filepath"
	"strings"
)

// NormalizePaths rewrites absolute paths under root as <fixture>/... with
// forward slashes, so path listings compare equal across machines.
func NormalizePaths(root string, lines []string) string {
	var b strings.Builder
	prefixes := []string{root}
	if resolved, err := filepath.EvalSymlinks(root); err == nil && resolved != root {
		prefixes = append(prefixes, resolved)
	}

	for _, line := range lines {
		for _, p := range prefixes {
			if strings.HasPrefix(line, p) {
				line = "<fixture>" + line[len(p):]
				break
			}
		}
		b.WriteString(filepath.ToSlash(line))
		b.WriteString("\n")
	}
	return b.String()
}
