package modules

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	apierrors "apiscan/internal/errors"
)

func TestParseModulesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "MODULES.toml")
	writeFile(t, path, `
version = 1

[project]
name = "corda"
version = "4.0"
build_dir = "out"

[[module]]
name = "core"
path = "core"

[module.scan]
name = "scanApi"
outputs = ["build/api/core.txt"]

[[module]]
path = "finance"
include = "MODULES.toml"
`)

	f, err := ParseModulesFile(path)
	if err != nil {
		t.Fatalf("ParseModulesFile failed: %v", err)
	}
	if f.Version != 1 {
		t.Errorf("Version = %d, want 1", f.Version)
	}
	if f.Project == nil || f.Project.Name != "corda" || f.Project.Version != "4.0" || f.Project.BuildDir != "out" {
		t.Errorf("Project = %+v", f.Project)
	}
	if len(f.Modules) != 2 {
		t.Fatalf("expected 2 modules, got %d", len(f.Modules))
	}
	core := f.Modules[0]
	if core.Scan == nil || core.Scan.Enabled != nil || len(core.Scan.Outputs) != 1 {
		t.Errorf("core scan = %+v", core.Scan)
	}
	if f.Modules[1].Include != "MODULES.toml" {
		t.Errorf("Include = %q", f.Modules[1].Include)
	}
}

func TestParseModulesFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{"unknown key", "version = 1\n[[module]]\npath = \"a\"\ncolour = \"red\"\n", "colour"},
		{"bad toml", "version = \n", "failed to parse"},
		{"future version", "version = 2\n", "unsupported"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "MODULES.toml")
			writeFile(t, path, tt.content)

			_, err := ParseModulesFile(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q should mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestLoadGraph_Nested(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "MODULES.toml"), `
version = 1

[project]
name = "corda"
version = "4.0"

[scan]
enabled = false
outputs = ["build/api/root.txt"]

[[module]]
name = "core"
path = "core"
[module.scan]
outputs = ["build/api/core.txt"]

[[module]]
name = "finance"
path = "finance"
include = "MODULES.toml"

[[module]]
path = "tools/explorer"
`)
	writeFile(t, filepath.Join(root, "finance", "MODULES.toml"), `
[scan]
outputs = ["build/api/finance.txt"]

[[module]]
path = "contracts"
[module.scan]
enabled = false
outputs = ["build/api/contracts.txt"]
`)
	writeFile(t, filepath.Join(root, "tools", "explorer", "apiscan.toml"), `
[scan]
name = "scanExplorer"
outputs = ["api.txt"]
`)

	g, err := LoadGraph(root, "")
	if err != nil {
		t.Fatalf("LoadGraph failed: %v", err)
	}

	if g.Project.Name != "corda" || g.Project.Version != "4.0" {
		t.Errorf("Project = %+v", g.Project)
	}
	if g.Project.BuildDir != filepath.Join(root, "build") {
		t.Errorf("BuildDir = %q", g.Project.BuildDir)
	}

	var got []string
	for _, m := range g.AllModules() {
		state := "none"
		if m.Scan != nil {
			state = "off"
			if m.Scan.Enabled {
				state = "on"
			}
		}
		got = append(got, m.Path+":"+state)
	}
	want := ".:off,core:on,finance:on,finance/contracts:off,tools/explorer:on"
	if strings.Join(got, ",") != want {
		t.Errorf("modules = %s, want %s", strings.Join(got, ","), want)
	}

	explorer := g.AllModules()[4]
	if explorer.Name != "explorer" || explorer.Scan.Name != "scanExplorer" {
		t.Errorf("explorer = %+v scan=%+v", explorer, explorer.Scan)
	}

	contracts := g.AllModules()[3]
	if err := g.ResolveOutputs(); err != nil {
		t.Fatal(err)
	}
	finance := g.AllModules()[2]
	wantTarget := filepath.Join(root, "finance", "build", "api", "finance.txt")
	if targets := finance.Scan.Targets(); len(targets) != 1 || targets[0] != wantTarget {
		t.Errorf("finance targets = %v, want [%s]", targets, wantTarget)
	}
	if contracts.Scan.Resolved() {
		t.Error("disabled step should stay unresolved")
	}
}

func TestLoadGraph_NoDeclaration(t *testing.T) {
	root := t.TempDir()

	g, err := LoadGraph(root, "")
	if err != nil {
		t.Fatalf("LoadGraph failed: %v", err)
	}
	if g.Project.Name != filepath.Base(root) {
		t.Errorf("Project.Name = %q, want %q", g.Project.Name, filepath.Base(root))
	}
	if len(g.AllModules()) != 1 || g.Root.Scan != nil {
		t.Errorf("expected bare root module, got %+v", g.AllModules())
	}
}

func TestLoadGraph_NamedDeclarationMissing(t *testing.T) {
	root := t.TempDir()

	for _, name := range []string{"", "MODULES.toml", "./MODULES.toml"} {
		if _, err := LoadGraph(root, name); err != nil {
			t.Errorf("LoadGraph(%q) with no default declaration: %v", name, err)
		}
	}

	g, err := LoadGraph(root, "typo-MODULES.toml")
	if err == nil {
		t.Fatalf("LoadGraph should fail for a missing named declaration, got graph %+v", g)
	}
	if code := apierrors.CodeOf(err); code != apierrors.GraphInvalid {
		t.Errorf("CodeOf(err) = %q, want %q", code, apierrors.GraphInvalid)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("error should wrap fs.ErrNotExist, got %v", err)
	}
}

func TestLoadGraph_RootDescriptor(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "apiscan.toml"), "[scan]\noutputs = [\"build/api/*.txt\"]\n")

	g, err := LoadGraph(root, "")
	if err != nil {
		t.Fatalf("LoadGraph failed: %v", err)
	}
	if g.Root.Scan == nil || !g.Root.Scan.Enabled {
		t.Fatalf("root should pick up apiscan.toml, got %+v", g.Root.Scan)
	}
}

func TestLoadGraph_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		wantMsg string
	}{
		{
			name: "missing path",
			files: map[string]string{
				"MODULES.toml": "[[module]]\nname = \"x\"\n",
			},
			wantMsg: "missing required 'path'",
		},
		{
			name: "duplicate names",
			files: map[string]string{
				"MODULES.toml": "[[module]]\npath = \"a/x\"\n[[module]]\npath = \"b/x\"\n",
			},
			wantMsg: "duplicate module name",
		},
		{
			name: "bad pattern",
			files: map[string]string{
				"MODULES.toml": "[[module]]\npath = \"a\"\n[module.scan]\noutputs = [\"[bad\"]\n",
			},
			wantMsg: "invalid scan step",
		},
		{
			name: "include cycle",
			files: map[string]string{
				"MODULES.toml":   "[[module]]\npath = \"a\"\ninclude = \"MODULES.toml\"\n",
				"a/MODULES.toml": "[[module]]\npath = \"..\"\nname = \"back\"\ninclude = \"MODULES.toml\"\n",
			},
			wantMsg: "include cycle",
		},
		{
			name: "missing include",
			files: map[string]string{
				"MODULES.toml": "[[module]]\npath = \"a\"\ninclude = \"MODULES.toml\"\n",
			},
			wantMsg: "cannot load declaration",
		},
		{
			name: "project in include",
			files: map[string]string{
				"MODULES.toml":   "[[module]]\npath = \"a\"\ninclude = \"MODULES.toml\"\n",
				"a/MODULES.toml": "[project]\nname = \"nested\"\n",
			},
			wantMsg: "[project] is only allowed",
		},
		{
			name: "scan declared twice",
			files: map[string]string{
				"MODULES.toml":   "[[module]]\npath = \"a\"\ninclude = \"MODULES.toml\"\n[module.scan]\noutputs = [\"x.txt\"]\n",
				"a/MODULES.toml": "[scan]\noutputs = [\"y.txt\"]\n",
			},
			wantMsg: "declares its scan step twice",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			for name, content := range tt.files {
				writeFile(t, filepath.Join(root, filepath.FromSlash(name)), content)
			}

			_, err := LoadGraph(root, "")
			if err == nil {
				t.Fatal("expected error")
			}
			if apierrors.CodeOf(err) != apierrors.GraphInvalid {
				t.Errorf("CodeOf(%v) = %q, want GRAPH_INVALID", err, apierrors.CodeOf(err))
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q should mention %q", err, tt.wantMsg)
			}
		})
	}
}
