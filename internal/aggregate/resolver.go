package aggregate

import (
	"fmt"
	"path/filepath"

	apierrors "apiscan/internal/errors"
	"apiscan/internal/modules"
)

// ResolveSources returns the snapshot files contributed by every module whose
// scan step exists and is enabled, de-duplicated by cleaned absolute path.
// The order of the result is unspecified; see OrderSources.
//
// Step outputs must already be resolved. An enabled step that was not is
// reported as STEP_UNRESOLVED rather than treated as having no outputs.
func ResolveSources(mods []*modules.Module) ([]string, error) {
	seen := make(map[string]bool)
	sources := []string{}

	for _, m := range mods {
		if m == nil || !m.HasEnabledScan() {
			continue
		}
		step := m.Scan
		if !step.Resolved() {
			return nil, apierrors.NewApiscanError(apierrors.StepUnresolved,
				fmt.Sprintf("outputs of %s in module %s were not resolved", step.Name, m.Path), nil).WithPath(m.Dir)
		}

		for _, target := range step.Targets() {
			// ScanStep targets are already absolute.
			p := filepath.Clean(target)
			if seen[p] {
				continue
			}
			seen[p] = true
			sources = append(sources, p)
		}
	}

	return sources, nil
}
