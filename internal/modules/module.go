package modules

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"

	"apiscan/internal/paths"
)

// Module is one node of a project graph. A module owns at most one scan
// step; modules without one contribute nothing to an aggregation.
type Module struct {
	// ID is a stable identifier derived from Path
	ID string `json:"id"`

	// Name is the human-readable name of the module
	Name string `json:"name"`

	// Path is the module directory relative to the project root, slash separated.
	// The root module has Path ".".
	Path string `json:"path"`

	// Dir is the absolute module directory
	Dir string `json:"-"`

	// Scan is the module's scan step, nil when the module has none
	Scan *ScanStep `json:"scan,omitempty"`

	// Children are nested modules in declaration order
	Children []*Module `json:"children,omitempty"`
}

// NewModule creates a module rooted at dir. relPath is the slash-separated
// path from the project root.
func NewModule(name, relPath, dir string) *Module {
	if relPath == "" {
		relPath = "."
	}
	return &Module{
		ID:   GenerateStableModuleID(relPath),
		Name: name,
		Path: filepath.ToSlash(relPath),
		Dir:  dir,
	}
}

// AddChild appends child and returns it.
func (m *Module) AddChild(child *Module) *Module {
	m.Children = append(m.Children, child)
	return child
}

// HasEnabledScan reports whether the module contributes snapshot files.
func (m *Module) HasEnabledScan() bool {
	return m.Scan != nil && m.Scan.Enabled
}

// GenerateStableModuleID derives a module ID from its root-relative path.
func GenerateStableModuleID(modulePath string) string {
	normalized := filepath.ToSlash(filepath.Clean(modulePath))
	hash := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("apiscan:mod:%s", hex.EncodeToString(hash[:8]))
}

// ProjectInfo describes the project a graph was loaded for.
type ProjectInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
	// Dir is the absolute project root
	Dir string `json:"dir"`
	// BuildDir is the absolute build output directory
	BuildDir string `json:"buildDir"`
}

// Graph is an explicit, caller-constructed project graph.
type Graph struct {
	Project ProjectInfo `json:"project"`
	Root    *Module     `json:"root"`
}

// NewGraph creates a graph whose root module is the project itself. An empty
// BuildDir defaults to <Dir>/build.
func NewGraph(project ProjectInfo) *Graph {
	if project.BuildDir == "" {
		project.BuildDir = filepath.Join(project.Dir, "build")
	}
	project.BuildDir = paths.AbsClean(project.Dir, project.BuildDir)
	return &Graph{
		Project: project,
		Root:    NewModule(project.Name, ".", project.Dir),
	}
}

// AllModules returns the root and every descendant, pre-order, children in
// declaration order.
func (g *Graph) AllModules() []*Module {
	if g == nil || g.Root == nil {
		return nil
	}
	var out []*Module
	var walk func(*Module)
	walk = func(m *Module) {
		out = append(out, m)
		for _, c := range m.Children {
			walk(c)
		}
	}
	walk(g.Root)
	return out
}

// ResolveOutputs runs output resolution on every enabled scan step in the
// graph. It must be called before sources are resolved; it never runs a
// scanner.
func (g *Graph) ResolveOutputs() error {
	for _, m := range g.AllModules() {
		if !m.HasEnabledScan() {
			continue
		}
		if err := m.Scan.ResolveOutputs(); err != nil {
			return fmt.Errorf("module %s: %w", m.Path, err)
		}
	}
	return nil
}

// Stats summarises a graph for display.
type Stats struct {
	Modules      int `json:"modules"`
	ScanSteps    int `json:"scanSteps"`
	EnabledSteps int `json:"enabledSteps"`
}

// Stats counts modules and scan steps.
func (g *Graph) Stats() Stats {
	var s Stats
	for _, m := range g.AllModules() {
		s.Modules++
		if m.Scan != nil {
			s.ScanSteps++
			if m.Scan.Enabled {
				s.EnabledSteps++
			}
		}
	}
	return s
}

// ExternalModules returns the modules whose directory lies outside the
// project directory, in AllModules order.
func (g *Graph) ExternalModules() []*Module {
	var out []*Module
	for _, m := range g.AllModules() {
		if !paths.IsWithinRepo(m.Dir, g.Project.Dir) {
			out = append(out, m)
		}
	}
	return out
}
