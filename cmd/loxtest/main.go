package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/example/loxgo/testrunner"
)

func main() {
	dir := flag.String("dir", "testrunner/testdata", "directory of .lox conformance scripts")
	filter := flag.String("filter", "", "filter scripts by path substring")
	limit := flag.Int("limit", 0, "maximum number of scripts to run (0 = all)")
	timeout := flag.Duration("timeout", testrunner.DefaultTimeout, "per-script timeout")
	verbose := flag.Bool("v", false, "verbose output (print each result as it completes)")
	flag.Parse()

	if _, err := os.Stat(*dir); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error: script directory not found at %s\n", *dir)
		os.Exit(1)
	}

	cfg := testrunner.Config{
		Dir:     *dir,
		Filter:  *filter,
		Limit:   *limit,
		Timeout: *timeout,
		Verbose: *verbose,
	}

	results, summary, err := testrunner.Run(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if !*verbose {
		for _, r := range results {
			fmt.Println(r)
		}
	}

	fmt.Println()
	fmt.Println("=== Summary ===")
	fmt.Printf("Total:   %d\n", summary.Total)
	fmt.Printf("Passed:  %d\n", summary.Passed)
	fmt.Printf("Failed:  %d\n", summary.Failed)
	fmt.Printf("Skipped: %d\n", summary.Skipped)
	fmt.Printf("Errors:  %d\n", summary.Errors)
	if ran := summary.Total - summary.Skipped; ran > 0 {
		fmt.Printf("Pass rate: %.1f%% (%d/%d excluding skipped)\n",
			float64(summary.Passed)/float64(ran)*100, summary.Passed, ran)
	}
	fmt.Printf("Elapsed: %s\n", summary.Elapsed)

	if summary.Failed > 0 || summary.Errors > 0 {
		os.Exit(1)
	}
}
