package aggregate

import (
	"path/filepath"

	"apiscan/internal/modules"
)

// ApiOutputDir is the directory, relative to the build directory, that
// receives the aggregate by default.
const ApiOutputDir = "api"

// Target describes where the aggregate is written.
type Target struct {
	OutputDir string `json:"outputDir" yaml:"outputDir"`
	BaseName  string `json:"baseName" yaml:"baseName"`
	Version   string `json:"version,omitempty" yaml:"version,omitempty"`
}

// DefaultTarget derives the target from the project: <buildDir>/api/api-<name>
// with the project version, if any.
func DefaultTarget(project modules.ProjectInfo) Target {
	return Target{
		OutputDir: filepath.Join(project.BuildDir, ApiOutputDir),
		BaseName:  "api-" + project.Name,
		Version:   project.Version,
	}
}

// FileName returns <baseName>-<version>.txt, or <baseName>.txt when the
// version is empty.
func (t Target) FileName() string {
	if t.Version == "" {
		return t.BaseName + ".txt"
	}
	return t.BaseName + "-" + t.Version + ".txt"
}

// Path returns the full target path. It is recomputed on every call.
func (t Target) Path() string {
	return filepath.Join(t.OutputDir, t.FileName())
}
