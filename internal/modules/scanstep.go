package modules

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"apiscan/internal/paths"
)

// DefaultScanStepName is used when a declaration omits the step name.
const DefaultScanStepName = "scanApi"

// ScanStep describes a module's API scan step: whether it is enabled and
// which snapshot files it declares as outputs. Outputs are relative to the
// module directory unless absolute and may contain filepath.Match patterns.
//
// The declared outputs are turned into concrete files by ResolveOutputs.
// Resolution is the only step-side work apiscan performs; it never runs the
// scanner itself.
type ScanStep struct {
	Name    string   `json:"name"`
	Enabled bool     `json:"enabled"`
	Outputs []string `json:"outputs"`

	dir      string
	targets  []string
	resolved bool
}

// NewScanStep creates a scan step whose relative outputs resolve against dir.
func NewScanStep(name string, enabled bool, dir string, outputs ...string) *ScanStep {
	if name == "" {
		name = DefaultScanStepName
	}
	return &ScanStep{
		Name:    name,
		Enabled: enabled,
		Outputs: outputs,
		dir:     dir,
	}
}

// ResolveOutputs materialises the declared outputs into absolute file paths.
// Literal entries are kept whether or not the file exists yet; pattern
// entries expand to the files currently matching them. The result is cached,
// so repeated calls are no-ops.
func (s *ScanStep) ResolveOutputs() error {
	if s.resolved {
		return nil
	}

	seen := make(map[string]bool)
	var targets []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			targets = append(targets, p)
		}
	}

	for _, out := range s.Outputs {
		if !hasMeta(out) {
			add(paths.AbsClean(s.dir, out))
			continue
		}
		pattern := filepath.Clean(out)
		if !filepath.IsAbs(pattern) {
			// The module directory is a literal prefix even when its name
			// contains pattern characters.
			pattern = filepath.Join(globEscape(paths.AbsClean(s.dir, ".")), pattern)
		}
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return fmt.Errorf("scan step %s: output %q: %w", s.Name, out, err)
		}
		for _, match := range matches {
			add(filepath.Clean(match))
		}
	}

	s.targets = targets
	s.resolved = true
	return nil
}

// Resolved reports whether ResolveOutputs has completed.
func (s *ScanStep) Resolved() bool {
	return s.resolved
}

// Targets returns a copy of the resolved output files. It is empty until
// ResolveOutputs has been called.
func (s *ScanStep) Targets() []string {
	out := make([]string, len(s.targets))
	copy(out, s.targets)
	return out
}

// ValidateOutputPattern rejects output entries that can never resolve.
func ValidateOutputPattern(pattern string) error {
	if strings.TrimSpace(pattern) == "" {
		return fmt.Errorf("output must not be empty")
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return fmt.Errorf("output %q: %w", pattern, err)
	}
	return nil
}

func hasMeta(path string) bool {
	return strings.ContainsAny(path, `*?[`)
}

// globEscape quotes the pattern characters in a literal path. filepath.Match
// has no escape character on Windows, where such names cannot be matched.
func globEscape(path string) string {
	if runtime.GOOS == "windows" {
		return path
	}
	var b strings.Builder
	for _, r := range path {
		if strings.ContainsRune(`*?[\`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
