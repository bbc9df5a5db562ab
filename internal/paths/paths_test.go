package paths

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStateLayout(t *testing.T) {
	root := filepath.Join("repo", "root")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"state dir", GetStateDir(root), filepath.Join(root, ".apiscan")},
		{"config", GetConfigPath(root), filepath.Join(root, ".apiscan", "config.json")},
		{"history", GetHistoryDBPath(root), filepath.Join(root, ".apiscan", "history.db")},
		{"log", GetLogPath(root), filepath.Join(root, ".apiscan", "logs", "apiscan.log")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %s, want %s", tt.got, tt.want)
			}
		})
	}
}

func TestEnsureStateDir(t *testing.T) {
	root := t.TempDir()

	dir, err := EnsureStateDir(root)
	if err != nil {
		t.Fatalf("EnsureStateDir failed: %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("expected directory at %s", dir)
	}

	// Second call is a no-op
	if _, err := EnsureStateDir(root); err != nil {
		t.Fatalf("EnsureStateDir (again) failed: %v", err)
	}
}

func TestAbsClean(t *testing.T) {
	base := t.TempDir()

	tests := []struct {
		name string
		path string
		want string
	}{
		{"relative", "core/build/api.txt", filepath.Join(base, "core", "build", "api.txt")},
		{"dot segments", "core/../core/./api.txt", filepath.Join(base, "core", "api.txt")},
		{"absolute untouched", filepath.Join(base, "x.txt"), filepath.Join(base, "x.txt")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AbsClean(base, tt.path); got != tt.want {
				t.Errorf("AbsClean(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestCanonicalizePath(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "core", "build", "api", "core.txt")
	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := CanonicalizePath(file, root)
	if err != nil {
		t.Fatalf("CanonicalizePath failed: %v", err)
	}
	if got != "core/build/api/core.txt" {
		t.Errorf("got %q, want core/build/api/core.txt", got)
	}

	// Missing files are canonicalized without error
	missing := filepath.Join(root, "gone.txt")
	if got, err := CanonicalizePath(missing, root); err != nil || got != "gone.txt" {
		t.Errorf("CanonicalizePath(missing) = %q, %v", got, err)
	}
}

func TestDisplayPathAndIsWithinRepo(t *testing.T) {
	root := t.TempDir()
	inside := filepath.Join(root, "a", "b.txt")
	outside := filepath.Join(filepath.Dir(root), "elsewhere.txt")
	if err := os.MkdirAll(filepath.Dir(inside), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(inside, nil, 0644); err != nil {
		t.Fatal(err)
	}

	if got := DisplayPath(inside, root); got != "a/b.txt" {
		t.Errorf("DisplayPath(inside) = %q", got)
	}
	if got := DisplayPath(outside, root); got != filepath.ToSlash(outside) {
		t.Errorf("DisplayPath(outside) = %q", got)
	}
	if !IsWithinRepo(inside, root) {
		t.Error("inside path should be within repo")
	}
	if IsWithinRepo(outside, root) {
		t.Error("outside path should not be within repo")
	}
}
