// Package testutil provides testing utilities for golden tests.
package testutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// FixtureContext holds information about a loaded fixture.
type FixtureContext struct {
	// Name is the fixture directory name under testdata/fixtures
	Name string

	// Root is a scratch copy of the fixture's project/ tree. Tests may
	// write into it freely.
	Root string

	// ExpectedDir is the path to the fixture's expected/ directory
	ExpectedDir string
}

// LoadFixture copies testdata/fixtures/<name>/project into a temporary
// directory, failing the test on error.
func LoadFixture(t *testing.T, name string) *FixtureContext {
	t.Helper()

	fixtureDir := filepath.Join(getFixturesRoot(t), name)
	projectDir := filepath.Join(fixtureDir, "project")
	if _, err := os.Stat(projectDir); os.IsNotExist(err) {
		t.Fatalf("Fixture project not found: %s", projectDir)
	}

	root := t.TempDir()
	if err := copyTree(projectDir, root); err != nil {
		t.Fatalf("Failed to copy fixture %s: %v", name, err)
	}

	return &FixtureContext{
		Name:        name,
		Root:        root,
		ExpectedDir: filepath.Join(fixtureDir, "expected"),
	}
}

// ExpectedPath returns the path to a golden file within the fixture.
func (f *FixtureContext) ExpectedPath(name string) string {
	return filepath.Join(f.ExpectedDir, name)
}

// Path returns the absolute path of a slash-separated path inside the copy.
func (f *FixtureContext) Path(rel string) string {
	return filepath.Join(f.Root, filepath.FromSlash(rel))
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, 0o644)
	})
}

// getFixturesRoot returns the absolute path to testdata/fixtures/.
func getFixturesRoot(t *testing.T) string {
	t.Helper()

	// Get the directory of this source file
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get caller information")
	}

	// Navigate from internal/testutil to project root
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(thisFile)))
	fixturesRoot := filepath.Join(projectRoot, "testdata", "fixtures")

	if _, err := os.Stat(fixturesRoot); os.IsNotExist(err) {
		t.Fatalf("Fixtures root not found: %s", fixturesRoot)
	}

	return fixturesRoot
}

// AvailableFixtures returns the fixtures that contain a project/ tree.
func AvailableFixtures(t *testing.T) []string {
	t.Helper()

	root := getFixturesRoot(t)
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("Failed to read fixtures directory: %v", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() || isHiddenDir(entry.Name()) {
			continue
		}
		if _, err := os.Stat(filepath.Join(root, entry.Name(), "project")); err == nil {
			names = append(names, entry.Name())
		}
	}

	return names
}

func isHiddenDir(name string) bool {
	return len(name) > 0 && name[0] == '.'
}
