// Package main builds trailing-window form features from the long team table.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"team-form-lab/internal/config"
	"team-form-lab/internal/pipeline"
)

func main() {
	input := flag.String("input", config.DefaultProcessedPath, "Long-format team match CSV")
	output := flag.String("output", config.DefaultFeaturesPath, "Feature CSV")
	window := flag.Int("window", config.DefaultWindow, "Trailing window size")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	if *window < 1 {
		fmt.Fprintf(os.Stderr, "Invalid -window %d: must be >= 1\n", *window)
		os.Exit(1)
	}

	runner := pipeline.NewRunner(pipeline.RunnerOptions{
		ProcessedPath: *input,
		FeaturesPath:  *output,
		Window:        *window,
		Logger:        log.New(os.Stdout, "[features] ", log.LstdFlags),
		Verbose:       *verbose,
	})

	res, err := runner.RunFeatures(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %s (%d rows)\n", *output, res.FeatureRows)
}
