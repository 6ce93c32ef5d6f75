// Package main converts the raw results table into the long team table.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"team-form-lab/internal/config"
	"team-form-lab/internal/pipeline"
)

func main() {
	input := flag.String("input", config.DefaultInputPath, "Raw results CSV")
	output := flag.String("output", config.DefaultProcessedPath, "Long-format team match CSV")
	cutoff := flag.String("cutoff", config.DefaultCutoffDate, "Earliest match date kept (YYYY-MM-DD)")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	cutoffDate, err := time.Parse(time.DateOnly, *cutoff)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid -cutoff %q: want YYYY-MM-DD\n", *cutoff)
		os.Exit(1)
	}

	runner := pipeline.NewRunner(pipeline.RunnerOptions{
		InputPath:     *input,
		ProcessedPath: *output,
		Cutoff:        cutoffDate,
		Logger:        log.New(os.Stdout, "[reshape] ", log.LstdFlags),
		Verbose:       *verbose,
	})

	res, err := runner.RunReshape(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %s (%d team rows)\n", *output, res.Reshape.RowsEmitted)
}
