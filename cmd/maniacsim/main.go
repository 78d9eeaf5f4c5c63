package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/horazont/maniaclab/config"
	"github.com/horazont/maniaclab/telemetry"
)

func main() {
	configPath := flag.String("config", "", "Config YAML file (empty = embedded defaults)")
	only := flag.String("scenario", "", "Comma-separated scenario names to run (empty = all)")
	outputDir := flag.String("output", "", "Directory for per-scenario telemetry CSVs (empty = disabled)")
	verbose := flag.Bool("v", false, "Log structured automaton events via slog")
	flag.Parse()

	config.MustInit(*configPath)

	var logger *slog.Logger
	if *verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
		slog.SetDefault(logger)
	}
	console := telemetry.NewLogger(os.Stdout, logger)

	selected := selectScenarios(*only)
	if len(selected) == 0 {
		fmt.Fprintln(os.Stderr, "no matching scenarios")
		os.Exit(2)
	}

	failures := 0
	for _, sc := range selected {
		var out *telemetry.OutputManager
		if *outputDir != "" {
			dir := fmt.Sprintf("%s/%s", *outputDir, sc.name)
			var err error
			out, err = telemetry.NewOutputManager(dir)
			if err != nil {
				fmt.Fprintf(os.Stderr, "scenario %s: %v\n", sc.name, err)
				failures++
				continue
			}
		}

		console.Logf("running %s...", sc.name)
		result := sc.run(out)
		out.Close()

		console.Logf("%s", formatPass(result))
		if !result.passed {
			failures++
		}
	}

	console.Logf("\n%d/%d scenarios passed", len(selected)-failures, len(selected))
	if failures > 0 {
		os.Exit(1)
	}
}

// selectScenarios returns the scenarios matching the comma-separated names
// in spec (empty means all), preserving the declared scenario order.
func selectScenarios(spec string) []scenario {
	if spec == "" {
		return scenarios
	}
	wanted := make(map[string]bool)
	for _, name := range strings.Split(spec, ",") {
		wanted[strings.TrimSpace(name)] = true
	}
	var out []scenario
	for _, sc := range scenarios {
		if wanted[sc.name] {
			out = append(out, sc)
		}
	}
	return out
}
