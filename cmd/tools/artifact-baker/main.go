// cmd/tools/artifact-baker/main.go
//
// Bakes the fixture model and pipeline artifacts from the embedded housing
// sample. The real training process lives elsewhere; this exists so the demo
// and the tests have reproducible artifacts to load.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"housepredict/internal/artifact"
)

func main() {
	outDir := flag.String("out", ".", "Output directory for the artifact files")
	trees := flag.Int("trees", 25, "Number of trees in the forest")
	depth := flag.Int("depth", 8, "Maximum tree depth")
	seed := flag.Int64("seed", 42, "Random seed (fixed seed gives identical artifacts)")
	flag.Parse()

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create output dir: %v\n", err)
		os.Exit(1)
	}

	modelPath := filepath.Join(*outDir, "house_price_model.gob")
	pipelinePath := filepath.Join(*outDir, "preprocessing_pipeline.gob")

	err := artifact.BakeFixtures(modelPath, pipelinePath, artifact.FitOptions{
		NumTrees: *trees,
		MaxDepth: *depth,
		Seed:     *seed,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "bake artifacts: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("wrote %s\n", modelPath)
	fmt.Printf("wrote %s\n", pipelinePath)
}
