// +build ignore

// generate_testdata.go creates standard category datasets for benchmarking.
// Usage: go run scripts/generate_testdata.go
//
// Creates:
//   tests/testdata/benchmark/small.json   (complete tree, depth 3, breadth 5)
//   tests/testdata/benchmark/medium.json  (complete tree, depth 4, breadth 6)
//   tests/testdata/benchmark/large.json   (complete tree, depth 4, breadth 10)
//   tests/testdata/benchmark/messy.json   (5000 random paths with padding and duplicates)
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vanderheijden86/cattree/pkg/testutil"
)

type datasetSpec struct {
	name    string
	depth   int
	breadth int
	random  int
}

var datasets = []datasetSpec{
	{name: "small", depth: 3, breadth: 5},
	{name: "medium", depth: 4, breadth: 6},
	{name: "large", depth: 4, breadth: 10},
	{name: "messy", random: 5000},
}

func main() {
	outputDir := "tests/testdata/benchmark"
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	for _, ds := range datasets {
		var paths []string
		if ds.random > 0 {
			fmt.Printf("Generating %s dataset (%d random paths)...\n", ds.name, ds.random)
			gen := testutil.New(testutil.GeneratorConfig{Seed: int64(ds.random), MaxDepth: 4})
			paths = gen.Messy(gen.Random(ds.random))
		} else {
			fmt.Printf("Generating %s dataset (%d nodes)...\n", ds.name, testutil.FullNodeCount(ds.depth, ds.breadth))
			paths = testutil.QuickFull(ds.depth, ds.breadth)
		}

		data := testutil.ToJSON(paths)
		outputPath := filepath.Join(outputDir, ds.name+".json")
		if err := os.WriteFile(outputPath, []byte(data), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", outputPath, err)
			os.Exit(1)
		}

		fmt.Printf("  Written %s (%d bytes, %d paths)\n", outputPath, len(data), len(paths))
	}

	fmt.Println("\nDone! Test datasets created in", outputDir)
}
