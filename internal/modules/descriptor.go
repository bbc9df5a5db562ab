package modules

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	apierrors "apiscan/internal/errors"
)

// StepDescriptorFile is the module-local scan step descriptor consulted when
// a module's declaration carries no [module.scan] table.
const StepDescriptorFile = "apiscan.toml"

// stepDescriptor is the schema of apiscan.toml:
//
//	[scan]
//	name = "scanApi"
//	enabled = true
//	outputs = ["build/api/core.txt"]
type stepDescriptor struct {
	Scan *ScanDeclaration `toml:"scan"`
}

// LoadStepDescriptor reads <dir>/apiscan.toml. It returns nil without error
// when the file is absent or has no [scan] table.
func LoadStepDescriptor(dir string) (*ScanStep, error) {
	path := filepath.Join(dir, StepDescriptorFile)

	var desc stepDescriptor
	md, err := toml.DecodeFile(path, &desc)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, apierrors.NewApiscanError(apierrors.GraphInvalid, "invalid scan step descriptor", err).WithPath(path)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, apierrors.NewApiscanError(apierrors.GraphInvalid,
			fmt.Sprintf("unknown keys in scan step descriptor: %s", strings.Join(keys, ", ")), nil).WithPath(path)
	}

	if desc.Scan == nil {
		return nil, nil
	}
	step, err := desc.Scan.toStep(dir)
	if err != nil {
		return nil, apierrors.NewApiscanError(apierrors.GraphInvalid, "invalid scan step descriptor", err).WithPath(path)
	}
	return step, nil
}
