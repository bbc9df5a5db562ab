// Package aggregate builds a project's consolidated API snapshot.
//
// Every module with an enabled scan step contributes the snapshot files its
// step declares. The aggregator collects them, puts them in a stable order
// and concatenates them byte-for-byte into one target file:
//
//	<outputDir>/<baseName>[-<version>].txt
//
// The pipeline runs in two phases. The project graph first resolves each
// enabled step's declared outputs into concrete files
// (modules.Graph.ResolveOutputs); aggregation then only reads those results.
//
// Basic usage:
//
//	graph, err := modules.LoadGraph(repoRoot, "")
//	if err != nil {
//	    return err
//	}
//
//	gen := aggregate.NewGenerator(logger, nil)
//	result, err := gen.Generate(ctx, graph, aggregate.DefaultTarget(graph.Project))
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Target, result.Bytes, result.Digest)
//
// The same inputs always produce byte-identical output.
package aggregate
