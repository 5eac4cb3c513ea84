// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package bench

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/kubax/ggb"
	"github.com/kubax/ggb/ingest"
)

// RunnerOption configures a Runner.
type RunnerOption func(*runnerOptions)

type runnerOptions struct {
	logger *slog.Logger
	sinks  []ResultSink
}

// WithRunnerLogger sets the logger used for per-step progress messages.
func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(o *runnerOptions) {
		o.logger = logger
	}
}

// WithSink registers a ResultSink to receive the run's final statistics.
// May be called more than once; every registered sink is invoked.
func WithSink(sink ResultSink) RunnerOption {
	return func(o *runnerOptions) {
		o.sinks = append(o.sinks, sink)
	}
}

// Runner orchestrates one end-to-end benchmark: ingest, build, a
// cold-cache eviction attempt (flat-mmap only), a timed gather loop
// over the run's query batches, and statistics reporting.
type Runner struct {
	builder   ggb.FeatureStoreBuilder
	engineCfg ggb.EngineConfig
	cfg       *RunConfig
	logger    *slog.Logger
	sinks     []ResultSink
}

// NewRunner constructs a Runner over a freshly created builder (not
// yet populated) and its engine config, so the runner can recognize a
// flat-mmap backend for the cold-cache eviction step.
func NewRunner(builder ggb.FeatureStoreBuilder, engineCfg ggb.EngineConfig, cfg *RunConfig, opts ...RunnerOption) *Runner {
	options := runnerOptions{logger: discardLogger()}
	for _, opt := range opts {
		opt(&options)
	}
	return &Runner{
		builder:   builder,
		engineCfg: engineCfg,
		cfg:       cfg,
		logger:    options.logger,
		sinks:     options.sinks,
	}
}

// BenchResult is the outcome of one Runner.Run call.
type BenchResult struct {
	Stats          BenchStats
	NumTensorsRead int
}

// Run executes the nine-step benchmark orchestration and reports the
// result to every registered sink before returning it.
func (r *Runner) Run(ctx context.Context) (*BenchResult, error) {
	r.logger.Info("starting benchmark runner", "dataset", r.cfg.DatasetName, "run_id", r.cfg.RunID)

	var numNodes int
	ingestTimer := NewNamedScopedTimer("feature ingest", r.logger)
	n, err := ingest.IngestFeatures(r.cfg.NodeFeatPath, r.builder, ingest.WithFeaturesLogger(r.logger))
	ingestTimer.Stop()
	if err != nil {
		return nil, fmt.Errorf("bench: ingest features: %w", err)
	}
	numNodes = n

	var edges []ggb.Edge
	edgeTimer := NewNamedScopedTimer("edge ingest", r.logger)
	edges, err = ingest.IngestEdges(r.cfg.EdgeListPath, ingest.WithEdgesLogger(r.logger))
	edgeTimer.Stop()
	if err != nil {
		return nil, fmt.Errorf("bench: ingest edges: %w", err)
	}
	topology := &ggb.GraphTopology{Edges: edges}

	var store ggb.FeatureStore
	buildTimer := NewNamedScopedTimer("build", r.logger)
	store, err = r.builder.Build(topology)
	buildTimer.Stop()
	if err != nil {
		return nil, fmt.Errorf("bench: build: %w", err)
	}
	// the edge buffer is not retained by either core engine; release it
	// before the query-batch load and gather loop.
	edges = nil
	topology = nil

	batches, err := loadQueryBatches(r.cfg.QueryCSVs, r.logger)
	if err != nil {
		return nil, fmt.Errorf("bench: load query batches: %w", err)
	}

	if fc, ok := r.engineCfg.(ggb.FlatMmapConfig); ok {
		evictPageCache(fc.DBPath, r.logger)
	}

	before := CaptureIOSnapshot()
	if !before.Available {
		r.logger.Warn("IO snapshot unavailable on this platform")
	}

	latenciesUs := make([]int64, 0, len(batches))
	var numTensorsRead int
	for _, batch := range batches {
		timer := NewScopedTimer(func(us int64) { latenciesUs = append(latenciesUs, us) })
		if _, err := store.GetMultiTensor(ctx, batch); err != nil {
			timer.Stop()
			return nil, fmt.Errorf("bench: gather: %w", err)
		}
		timer.Stop()
		numTensorsRead += len(batch)
	}

	after := CaptureIOSnapshot()

	tensorSize, _ := store.TensorSize()
	stats := ComputeStats(latenciesUs, numTensorsRead, tensorSize, before, after)

	r.logger.Info("benchmark complete",
		"num_nodes_ingested", numNodes,
		"num_tensors_read", numTensorsRead,
	)

	name := engineName(r.engineCfg)
	for _, sink := range r.sinks {
		if err := sink.Report(r.cfg, name, stats); err != nil {
			r.logger.Warn("sink report failed", "error", err)
		}
	}

	return &BenchResult{Stats: stats, NumTensorsRead: numTensorsRead}, nil
}

// loadQueryBatches reads every path in paths into an ordered list of
// key batches: one batch per non-empty line, each line a
// comma-separated list of decimal node IDs. Unparseable IDs are
// skipped with a warning rather than aborting the batch, matching the
// source's per-field tolerance in its ingest path.
func loadQueryBatches(paths []string, logger *slog.Logger) ([][]ggb.Key, error) {
	var batches [][]ggb.Key
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}

		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			var batch []ggb.Key
			for _, field := range strings.Split(line, ",") {
				id, err := strconv.ParseUint(strings.TrimSpace(field), 10, 64)
				if err != nil {
					logger.Warn("skipping unparseable node id in query batch", "path", path, "field", field)
					continue
				}
				batch = append(batch, ggb.Key(id))
			}
			batches = append(batches, batch)
		}
		scanErr := scanner.Err()
		_ = f.Close()
		if scanErr != nil {
			return nil, fmt.Errorf("scan %s: %w", path, scanErr)
		}
	}
	logger.Info("loaded query batches", "count", len(batches))
	return batches, nil
}
