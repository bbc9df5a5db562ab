package main

import (
	"apiscan/internal/aggregate"
	"apiscan/internal/modules"
	"apiscan/internal/paths"
	"apiscan/internal/storage"
)

// GenerateResponseCLI is printed by `apiscan generate`.
type GenerateResponseCLI struct {
	RunID       string   `json:"runId" yaml:"runId"`
	Target      string   `json:"target" yaml:"target"`
	Sources     []string `json:"sources" yaml:"sources"`
	SourceCount int      `json:"sourceCount" yaml:"sourceCount"`
	Bytes       int64    `json:"bytes" yaml:"bytes"`
	Digest      string   `json:"digest" yaml:"digest"`
	DurationMs  int64    `json:"durationMs" yaml:"durationMs"`
}

func newGenerateResponse(result *aggregate.Result, repoRoot string) *GenerateResponseCLI {
	return &GenerateResponseCLI{
		RunID:       result.RunID,
		Target:      paths.DisplayPath(result.Target, repoRoot),
		Sources:     displayPaths(result.Sources, repoRoot),
		SourceCount: len(result.Sources),
		Bytes:       result.Bytes,
		Digest:      result.Digest,
		DurationMs:  result.Duration.Milliseconds(),
	}
}

// SourcesResponseCLI is printed by `apiscan sources`.
type SourcesResponseCLI struct {
	Target  string   `json:"target" yaml:"target"`
	Sources []string `json:"sources" yaml:"sources"`
}

// ModulesResponseCLI is printed by `apiscan modules`.
type ModulesResponseCLI struct {
	Project string           `json:"project" yaml:"project"`
	Version string           `json:"version,omitempty" yaml:"version,omitempty"`
	Stats   modules.Stats    `json:"stats" yaml:"stats"`
	Modules []ModuleEntryCLI `json:"modules" yaml:"modules"`
}

// ModuleEntryCLI is one module of the tree, flattened with its depth.
type ModuleEntryCLI struct {
	ID      string   `json:"id" yaml:"id"`
	Name    string   `json:"name" yaml:"name"`
	Path    string   `json:"path" yaml:"path"`
	Depth   int      `json:"depth" yaml:"depth"`
	Step    string   `json:"step,omitempty" yaml:"step,omitempty"`
	Enabled bool     `json:"enabled" yaml:"enabled"`
	Outputs []string `json:"outputs,omitempty" yaml:"outputs,omitempty"`
}

func newModulesResponse(graph *modules.Graph) *ModulesResponseCLI {
	resp := &ModulesResponseCLI{
		Project: graph.Project.Name,
		Version: graph.Project.Version,
		Stats:   graph.Stats(),
		Modules: []ModuleEntryCLI{},
	}

	var walk func(m *modules.Module, depth int)
	walk = func(m *modules.Module, depth int) {
		entry := ModuleEntryCLI{ID: m.ID, Name: m.Name, Path: m.Path, Depth: depth}
		if m.Scan != nil {
			entry.Step = m.Scan.Name
			entry.Enabled = m.Scan.Enabled
			entry.Outputs = m.Scan.Outputs
		}
		resp.Modules = append(resp.Modules, entry)
		for _, c := range m.Children {
			walk(c, depth+1)
		}
	}
	if graph.Root != nil {
		walk(graph.Root, 0)
	}
	return resp
}

// HistoryResponseCLI is printed by `apiscan history`.
type HistoryResponseCLI struct {
	Runs []*storage.Run `json:"runs" yaml:"runs"`
}

// RunResponseCLI is printed by `apiscan history show`.
type RunResponseCLI struct {
	storage.Run `yaml:",inline"`
	Archived    bool `json:"archived" yaml:"archived"`
}

func displayPaths(in []string, repoRoot string) []string {
	out := make([]string, len(in))
	for i, p := range in {
		out[i] = paths.DisplayPath(p, repoRoot)
	}
	return out
}
