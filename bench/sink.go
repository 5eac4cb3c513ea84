// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package bench

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/kubax/ggb"
)

// ResultSink emits a completed benchmark's statistics. A Runner may be
// configured with any number of sinks.
type ResultSink interface {
	Report(cfg *RunConfig, engineName string, stats BenchStats) error
}

// LogSink renders a human-readable report via slog at Info level,
// mirroring the padded ASCII-table format this project's benchmark
// driver has always used.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink returns a LogSink that reports through logger. A nil
// logger reports through the package default (discard).
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = discardLogger()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Report(cfg *RunConfig, engineName string, stats BenchStats) error {
	var b strings.Builder
	rule := strings.Repeat("=", 60)
	dash := strings.Repeat("-", 60)

	fmt.Fprintf(&b, "\n%s\n", rule)
	fmt.Fprintf(&b, " BENCHMARK: %s\n", cfg.DatasetName)
	fmt.Fprintf(&b, "%s\n", rule)
	fmt.Fprintf(&b, " %-20s : %s\n", "Run ID", cfg.RunID)
	fmt.Fprintf(&b, " %-20s : %s\n", "Engine Type", engineName)
	fmt.Fprintf(&b, " %-20s : batch=%d, hops=%d, fanout=%d\n", "Sampling",
		cfg.Sampling.BatchSize, cfg.Sampling.NumHops, cfg.Sampling.FanOut)
	fmt.Fprintf(&b, "%s\n", dash)
	fmt.Fprintf(&b, " %-20s : %12d reqs\n", "Total Queries", stats.TotalQueries)
	fmt.Fprintf(&b, " %-20s : %12.3f MM\n", "Total Tensors", stats.TotalTensorsM)
	fmt.Fprintf(&b, "%s\n", dash)
	fmt.Fprintf(&b, " %-20s : %12.2f req/s\n", "Throughput QPS", stats.QPS)
	fmt.Fprintf(&b, " %-20s : %12.3f MM/s\n", "Throughput TPS", stats.TensorsPerSecM)
	fmt.Fprintf(&b, " %-20s : %12.2f GiB/s\n", "Throughput BW", stats.BandwidthGiBps)
	fmt.Fprintf(&b, "%s\n", dash)
	fmt.Fprintf(&b, " %-20s : %12.3f ms\n", "Latency Mean", stats.MeanMs)
	fmt.Fprintf(&b, " %-20s : %12.3f ms\n", "Latency StdDev", stats.StdDevMs)
	fmt.Fprintf(&b, " %-20s : %12.3f ms\n", "Latency P50", stats.P50Ms)
	fmt.Fprintf(&b, " %-20s : %12.3f ms\n", "Latency P99", stats.P99Ms)
	fmt.Fprintf(&b, " %-20s : %12.3f ms\n", "Latency Max", stats.MaxMs)
	if stats.IODelta.Available {
		fmt.Fprintf(&b, "%s\n", dash)
		fmt.Fprintf(&b, " %-20s : %12d\n", "Major Faults", stats.IODelta.MajorFaults)
		fmt.Fprintf(&b, " %-20s : %12d\n", "Minor Faults", stats.IODelta.MinorFaults)
		fmt.Fprintf(&b, " %-20s : %12d\n", "Vol Ctx Switches", stats.IODelta.VoluntaryContextSwitches)
		fmt.Fprintf(&b, " %-20s : %12d\n", "Invol Ctx Switches", stats.IODelta.InvoluntaryContextSwitches)
	}
	fmt.Fprintf(&b, "%s", rule)

	s.logger.Info(b.String())
	return nil
}

// JSONSink writes one JSON object per report to w, suitable for
// appending to a results file consumed by an external analysis tool.
type JSONSink struct {
	w io.Writer
}

// NewJSONSink returns a JSONSink writing to w.
func NewJSONSink(w io.Writer) *JSONSink {
	return &JSONSink{w: w}
}

type jsonReport struct {
	Dataset    string         `json:"dataset"`
	RunID      string         `json:"run_id"`
	Engine     string         `json:"engine"`
	Sampling   SamplingParams `json:"sampling"`
	Stats      BenchStats     `json:"stats"`
}

func (s *JSONSink) Report(cfg *RunConfig, engineName string, stats BenchStats) error {
	enc := json.NewEncoder(s.w)
	return enc.Encode(jsonReport{
		Dataset:  cfg.DatasetName,
		RunID:    cfg.RunID,
		Engine:   engineName,
		Sampling: cfg.Sampling,
		Stats:    stats,
	})
}

// engineName derives a human-readable label for cfg, mirroring the
// source's overloaded-visitor dispatch over the engine config variant.
func engineName(cfg ggb.EngineConfig) string {
	switch c := cfg.(type) {
	case ggb.InMemoryConfig:
		return "InMemory"
	case ggb.FlatMmapConfig:
		return fmt.Sprintf("FlatMmap (path: %s)", c.DBPath)
	default:
		return fmt.Sprintf("%T", cfg)
	}
}
