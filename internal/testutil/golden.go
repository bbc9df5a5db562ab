package testutil

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"strings"
	"testing"
)

// go test ./... -run TestGolden -update
var updateGolden = flag.Bool("update", false, "rewrite expected files from actual output")

// maxReportedLines caps the mismatch report.
const maxReportedLines = 20

// CompareGolden fails t unless got equals the fixture's expected/<name> file
// byte for byte. Path listings should go through NormalizePaths first. With
// -update the expected file is rewritten instead.
func CompareGolden(t *testing.T, fixture *FixtureContext, name string, got []byte) {
	t.Helper()

	path := fixture.ExpectedPath(name)
	if *updateGolden {
		UpdateGolden(t, fixture, name, got)
		t.Logf("updated %s", path)
		return
	}

	want, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		t.Fatalf("no expected file %s; run with -update to create it. got:\n%s", path, got)
	}
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("%s differs from %s (-want +got):\n%s", name, path, lineDiff(string(want), string(got)))
	}
}

// UpdateGolden writes data as the fixture's expected/<name> file.
func UpdateGolden(t *testing.T, fixture *FixtureContext, name string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(fixture.ExpectedDir, 0o755); err != nil {
		t.Fatalf("create %s: %v", fixture.ExpectedDir, err)
	}
	if err := os.WriteFile(fixture.ExpectedPath(name), data, 0o644); err != nil {
		t.Fatalf("write golden %s: %v", name, err)
	}
}

// lineDiff lists the lines that differ position by position. Aggregates are
// concatenations, so a misordered source shows up as a run of changed lines
// starting where the order first diverges.
func lineDiff(want, got string) string {
	wantLines := strings.SplitAfter(want, "\n")
	gotLines := strings.SplitAfter(got, "\n")

	var b strings.Builder
	reported := 0
	for i := 0; i < max(len(wantLines), len(gotLines)); i++ {
		var w, g string
		if i < len(wantLines) {
			w = wantLines[i]
		}
		if i < len(gotLines) {
			g = gotLines[i]
		}
		if w == g {
			continue
		}
		if reported == maxReportedLines {
			b.WriteString("...\n")
			break
		}
		reported++
		fmt.Fprintf(&b, "line %d:\n", i+1)
		if i < len(wantLines) {
			fmt.Fprintf(&b, "-%q\n", w)
		}
		if i < len(gotLines) {
			fmt.Fprintf(&b, "+%q\n", g)
		}
	}
	return b.String()
}
