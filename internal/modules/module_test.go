package modules

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestNewGraph_Defaults(t *testing.T) {
	root := t.TempDir()
	g := NewGraph(ProjectInfo{Name: "corda", Dir: root})

	if g.Project.BuildDir != filepath.Join(root, "build") {
		t.Errorf("BuildDir = %q, want %q", g.Project.BuildDir, filepath.Join(root, "build"))
	}
	if g.Root.Path != "." || g.Root.Dir != root || g.Root.Name != "corda" {
		t.Errorf("unexpected root module %+v", g.Root)
	}
}

func TestAllModules_PreOrder(t *testing.T) {
	g := NewGraph(ProjectInfo{Name: "root", Dir: "/p"})
	a := g.Root.AddChild(NewModule("a", "a", "/p/a"))
	a.AddChild(NewModule("a1", "a/a1", "/p/a/a1"))
	g.Root.AddChild(NewModule("b", "b", "/p/b"))

	var names []string
	for _, m := range g.AllModules() {
		names = append(names, m.Name)
	}
	if got := strings.Join(names, ","); got != "root,a,a1,b" {
		t.Errorf("AllModules order = %s, want root,a,a1,b", got)
	}

	var nilGraph *Graph
	if nilGraph.AllModules() != nil {
		t.Error("nil graph should have no modules")
	}
}

func TestGraph_ExternalModules(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "corda")
	for _, dir := range []string{filepath.Join(root, "core"), filepath.Join(base, "shared")} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
	}

	g := NewGraph(ProjectInfo{Name: "corda", Dir: root})
	g.Root.AddChild(NewModule("core", "core", filepath.Join(root, "core")))
	shared := g.Root.AddChild(NewModule("shared", "../shared", filepath.Join(base, "shared")))

	got := g.ExternalModules()
	if len(got) != 1 || got[0] != shared {
		t.Errorf("ExternalModules() = %v, want only shared", got)
	}
}

func TestGraph_ResolveOutputsOnlyEnabled(t *testing.T) {
	root := t.TempDir()
	g := NewGraph(ProjectInfo{Name: "root", Dir: root})

	on := g.Root.AddChild(NewModule("on", "on", filepath.Join(root, "on")))
	on.Scan = NewScanStep("", true, on.Dir, "api.txt")
	off := g.Root.AddChild(NewModule("off", "off", filepath.Join(root, "off")))
	off.Scan = NewScanStep("", false, off.Dir, "api.txt")
	g.Root.AddChild(NewModule("none", "none", filepath.Join(root, "none")))

	if err := g.ResolveOutputs(); err != nil {
		t.Fatalf("ResolveOutputs failed: %v", err)
	}
	if !on.Scan.Resolved() {
		t.Error("enabled step should be resolved")
	}
	if off.Scan.Resolved() {
		t.Error("disabled step should not be resolved")
	}

	stats := g.Stats()
	if stats.Modules != 4 || stats.ScanSteps != 2 || stats.EnabledSteps != 1 {
		t.Errorf("Stats = %+v", stats)
	}
}

func TestGenerateStableModuleID(t *testing.T) {
	id1 := GenerateStableModuleID("core/api")
	id2 := GenerateStableModuleID("core/./api")
	id3 := GenerateStableModuleID("core/impl")

	if id1 != id2 {
		t.Errorf("equivalent paths should share an ID: %s vs %s", id1, id2)
	}
	if id1 == id3 {
		t.Error("different paths should have different IDs")
	}
	if !strings.HasPrefix(id1, "apiscan:mod:") || len(id1) != len("apiscan:mod:")+16 {
		t.Errorf("unexpected ID format %q", id1)
	}
}
