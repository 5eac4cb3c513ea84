// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Command featurestore-bench runs the ggb benchmark driver against an
// on-disk dataset, timing ingest, build, and a batched gather
// workload, and reporting latency/throughput statistics.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kubax/ggb"
	"github.com/kubax/ggb/bench"
)

func main() {
	var (
		engine        = flag.String("engine", "in_memory", "engine to benchmark: in_memory, mmap, or all")
		projectRoot   = flag.String("project-root", ".", "project root containing bench/data")
		allQueryCSVs  = flag.Bool("all-query-csvs", false, "load every query CSV in the run directory instead of just the first")
		jsonResults   = flag.String("json-out", "", "optional path to append one JSON result line per engine run")
		verbose       = flag.Bool("v", false, "enable structured debug logging to stderr")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <dataset> <run_id>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(1)
	}
	dataset, runID := flag.Arg(0), flag.Arg(1)

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(dataset, runID, *engine, *projectRoot, *allQueryCSVs, *jsonResults, logger); err != nil {
		logger.Error("benchmark failed", "error", err)
		os.Exit(1)
	}
}

func run(dataset, runID, engine, projectRoot string, allQueryCSVs bool, jsonResultsPath string, logger *slog.Logger) error {
	var cfgOpts []bench.ConfigOption
	if allQueryCSVs {
		cfgOpts = append(cfgOpts, bench.WithAllQueryCSVs())
	}
	cfg, err := bench.LoadRunConfig(projectRoot, dataset, runID, cfgOpts...)
	if err != nil {
		return fmt.Errorf("load run config: %w", err)
	}

	engines, err := resolveEngineConfigs(engine, projectRoot, dataset, runID)
	if err != nil {
		return err
	}

	var jsonFile *os.File
	if jsonResultsPath != "" {
		jsonFile, err = os.OpenFile(jsonResultsPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open json results file: %w", err)
		}
		defer func() { _ = jsonFile.Close() }()
	}

	for _, engineCfg := range engines {
		builder, err := ggb.NewBuilder(engineCfg, ggb.WithBuilderLogger(logger))
		if err != nil {
			return fmt.Errorf("new builder: %w", err)
		}

		var runnerOpts []bench.RunnerOption
		runnerOpts = append(runnerOpts, bench.WithRunnerLogger(logger), bench.WithSink(bench.NewLogSink(logger)))
		if jsonFile != nil {
			runnerOpts = append(runnerOpts, bench.WithSink(bench.NewJSONSink(jsonFile)))
		}

		runner := bench.NewRunner(builder, engineCfg, cfg, runnerOpts...)
		if _, err := runner.Run(context.Background()); err != nil {
			return fmt.Errorf("run: %w", err)
		}
	}

	return nil
}

func resolveEngineConfigs(engine, projectRoot, dataset, runID string) ([]ggb.EngineConfig, error) {
	mmapPath := filepath.Join(projectRoot, "bench", "data", dataset, runID+".flatmmap.bin")

	switch engine {
	case "in_memory":
		return []ggb.EngineConfig{ggb.InMemoryConfig{}}, nil
	case "mmap":
		return []ggb.EngineConfig{ggb.FlatMmapConfig{DBPath: mmapPath}}, nil
	case "all":
		return []ggb.EngineConfig{ggb.InMemoryConfig{}, ggb.FlatMmapConfig{DBPath: mmapPath}}, nil
	default:
		return nil, fmt.Errorf("unknown engine %q: want in_memory, mmap, or all", engine)
	}
}
