package aggregate

import (
	"context"
	"os"
	"testing"

	"apiscan/internal/modules"
	"apiscan/internal/testutil"
)

func TestGolden(t *testing.T) {
	for _, name := range testutil.AvailableFixtures(t) {
		t.Run(name, func(t *testing.T) {
			fixture := testutil.LoadFixture(t, name)

			graph, err := modules.LoadGraph(fixture.Root, "")
			if err != nil {
				t.Fatalf("LoadGraph failed: %v", err)
			}

			gen := NewGenerator(nil, nil)
			ordered, err := gen.Plan(graph)
			if err != nil {
				t.Fatalf("Plan failed: %v", err)
			}
			testutil.CompareGolden(t, fixture, "sources.txt", []byte(testutil.NormalizePaths(fixture.Root, ordered)))

			target := DefaultTarget(graph.Project)
			result, err := gen.Generate(context.Background(), graph, target)
			if err != nil {
				t.Fatalf("Generate failed: %v", err)
			}
			content, err := os.ReadFile(result.Target)
			if err != nil {
				t.Fatal(err)
			}
			testutil.CompareGolden(t, fixture, target.FileName(), content)

			// A second run over the same tree is byte-identical.
			again, err := gen.Generate(context.Background(), graph, target)
			if err != nil {
				t.Fatal(err)
			}
			if again.Digest != result.Digest {
				t.Errorf("digest changed between runs: %s vs %s", result.Digest, again.Digest)
			}
		})
	}
}
