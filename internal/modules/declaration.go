package modules

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	apierrors "apiscan/internal/errors"
	"apiscan/internal/paths"
)

// ModulesDeclarationFile is the default filename for module declarations
const ModulesDeclarationFile = "MODULES.toml"

// ModulesFile represents the root structure of a MODULES.toml file.
//
//	version = 1
//
//	[project]
//	name = "corda"
//	version = "4.0"
//	build_dir = "build"
//
//	[[module]]
//	name = "core"
//	path = "core"
//	include = "MODULES.toml"
//
//	[module.scan]
//	enabled = true
//	outputs = ["build/api/*.txt"]
//
// A top-level [scan] table describes the scan step of the module the file
// belongs to: the project root for the root declaration, the including
// module for a nested one.
type ModulesFile struct {
	// Version is the schema version
	Version int `toml:"version"`

	// Project is only allowed in the root declaration
	Project *ProjectDeclaration `toml:"project"`

	// Scan is the owning module's scan step
	Scan *ScanDeclaration `toml:"scan"`

	// Modules is the list of declared child modules
	Modules []ModuleDeclaration `toml:"module"`
}

// ProjectDeclaration names the project and its build output directory.
type ProjectDeclaration struct {
	Name     string `toml:"name"`
	Version  string `toml:"version"`
	BuildDir string `toml:"build_dir"`
}

// ModuleDeclaration represents a declared module
type ModuleDeclaration struct {
	// Name defaults to the last element of Path
	Name string `toml:"name"`

	// Path is the module directory, relative to the declaring file
	Path string `toml:"path"`

	// Include names a nested declaration, relative to the module directory
	Include string `toml:"include,omitempty"`

	// Scan is the module's scan step
	Scan *ScanDeclaration `toml:"scan,omitempty"`
}

// ScanDeclaration declares a scan step. Enabled defaults to true.
type ScanDeclaration struct {
	Name    string   `toml:"name"`
	Enabled *bool    `toml:"enabled"`
	Outputs []string `toml:"outputs"`
}

// toStep validates the declaration and builds the step for a module in dir.
func (d *ScanDeclaration) toStep(dir string) (*ScanStep, error) {
	enabled := true
	if d.Enabled != nil {
		enabled = *d.Enabled
	}
	for _, out := range d.Outputs {
		if err := ValidateOutputPattern(out); err != nil {
			return nil, err
		}
	}
	outputs := make([]string, len(d.Outputs))
	copy(outputs, d.Outputs)
	return NewScanStep(d.Name, enabled, dir, outputs...), nil
}

// ParseModulesFile parses a MODULES.toml file from the given path. Unknown
// keys are rejected.
func ParseModulesFile(filePath string) (*ModulesFile, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(filePath), err)
	}

	var modulesFile ModulesFile
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&modulesFile); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			keys := make([]string, 0, len(strict.Errors))
			for _, e := range strict.Errors {
				keys = append(keys, strings.Join(e.Key(), "."))
			}
			return nil, fmt.Errorf("failed to parse %s: unknown keys: %s", filepath.Base(filePath), strings.Join(keys, ", "))
		}
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(filePath), err)
	}

	if modulesFile.Version < 1 {
		modulesFile.Version = 1
	}
	if modulesFile.Version > 1 {
		return nil, fmt.Errorf("unsupported %s version %d", filepath.Base(filePath), modulesFile.Version)
	}

	return &modulesFile, nil
}

// LoadGraph builds the project graph rooted at repoRoot from the declaration
// file (relative to repoRoot; ModulesDeclarationFile when empty). Without a
// default MODULES.toml the graph is the root module alone, with whatever scan
// step its apiscan.toml describes. Any other declaration file must exist.
func LoadGraph(repoRoot, declarationFile string) (*Graph, error) {
	if declarationFile == "" {
		declarationFile = ModulesDeclarationFile
	}
	optional := filepath.Clean(declarationFile) == ModulesDeclarationFile

	rootDir, err := filepath.Abs(repoRoot)
	if err != nil {
		return nil, apierrors.NewApiscanError(apierrors.GraphInvalid, "cannot resolve project root", err).WithPath(repoRoot)
	}
	declPath := paths.AbsClean(rootDir, declarationFile)

	modulesFile, err := ParseModulesFile(declPath)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			modulesFile = &ModulesFile{Version: 1}
		} else {
			return nil, apierrors.NewApiscanError(apierrors.GraphInvalid, "invalid module declaration", err).WithPath(declPath)
		}
	}

	project := ProjectInfo{Name: filepath.Base(rootDir), Dir: rootDir}
	if p := modulesFile.Project; p != nil {
		if p.Name != "" {
			project.Name = p.Name
		}
		project.Version = p.Version
		if p.BuildDir != "" {
			project.BuildDir = paths.AbsClean(rootDir, p.BuildDir)
		}
	}

	g := NewGraph(project)
	l := &loader{projectDir: rootDir, visiting: map[string]bool{declPath: true}}
	if err := l.populate(g.Root, declPath, modulesFile); err != nil {
		return nil, err
	}
	if g.Root.Scan == nil {
		if g.Root.Scan, err = LoadStepDescriptor(rootDir); err != nil {
			return nil, err
		}
	}
	return g, nil
}

type loader struct {
	projectDir string
	visiting   map[string]bool
}

func (l *loader) invalid(path, format string, args ...interface{}) error {
	return apierrors.NewApiscanError(apierrors.GraphInvalid, fmt.Sprintf(format, args...), nil).WithPath(path)
}

// populate attaches f's scan step and child modules to m. declPath is the
// absolute path of f; child paths are relative to its directory.
func (l *loader) populate(m *Module, declPath string, f *ModulesFile) error {
	declDir := filepath.Dir(declPath)

	if f.Scan != nil {
		if m.Scan != nil {
			return l.invalid(declPath, "module %s declares its scan step twice", m.Path)
		}
		step, err := f.Scan.toStep(m.Dir)
		if err != nil {
			return apierrors.NewApiscanError(apierrors.GraphInvalid, "invalid scan step", err).WithPath(declPath)
		}
		m.Scan = step
	}

	names := make(map[string]bool)
	for i, decl := range f.Modules {
		if strings.TrimSpace(decl.Path) == "" {
			return l.invalid(declPath, "module[%d] is missing required 'path' field", i)
		}

		dir := paths.AbsClean(declDir, decl.Path)
		rel, err := filepath.Rel(l.projectDir, dir)
		if err != nil {
			rel = dir
		}

		name := decl.Name
		if name == "" {
			name = filepath.Base(dir)
		}
		if names[name] {
			return l.invalid(declPath, "duplicate module name %q", name)
		}
		names[name] = true

		child := NewModule(name, rel, dir)
		if decl.Scan != nil {
			step, err := decl.Scan.toStep(dir)
			if err != nil {
				return apierrors.NewApiscanError(apierrors.GraphInvalid,
					fmt.Sprintf("invalid scan step for module %s", name), err).WithPath(declPath)
			}
			child.Scan = step
		}

		if decl.Include != "" {
			if err := l.include(child, paths.AbsClean(dir, decl.Include)); err != nil {
				return err
			}
		}

		if child.Scan == nil {
			if child.Scan, err = LoadStepDescriptor(dir); err != nil {
				return err
			}
		}

		m.AddChild(child)
	}
	return nil
}

// include loads a nested declaration into m, rejecting include cycles.
func (l *loader) include(m *Module, includePath string) error {
	if l.visiting[includePath] {
		return l.invalid(includePath, "include cycle through module %s", m.Path)
	}

	nested, err := ParseModulesFile(includePath)
	if err != nil {
		return apierrors.NewApiscanError(apierrors.GraphInvalid,
			fmt.Sprintf("cannot load declaration included by module %s", m.Name), err).WithPath(includePath)
	}
	if nested.Project != nil {
		return l.invalid(includePath, "[project] is only allowed in the root declaration")
	}

	l.visiting[includePath] = true
	defer delete(l.visiting, includePath)

	return l.populate(m, includePath, nested)
}
