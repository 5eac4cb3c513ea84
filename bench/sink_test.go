// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package bench

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kubax/ggb"
)

func sampleReportArgs() (*RunConfig, string, BenchStats) {
	cfg := &RunConfig{
		DatasetName: "ds",
		RunID:       "run-1",
		Sampling:    SamplingParams{Seed: 1, BatchSize: 32, NumHops: 2, FanOut: 10},
	}
	stats := BenchStats{
		MeanMs:         1.5,
		P50Ms:          1.2,
		P99Ms:          4.5,
		MaxMs:          5.0,
		QPS:            100,
		TensorsPerSecM: 0.2,
		BandwidthGiBps: 0.05,
		TotalQueries:   10,
		TotalTensorsM:  0.001,
		IODelta:        IOSnapshot{Available: true, MajorFaults: 2, MinorFaults: 40},
	}
	return cfg, "InMemory", stats
}

func TestLogSink_ReportRendersPaddedTable(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	sink := NewLogSink(logger)
	cfg, engine, stats := sampleReportArgs()
	require.NoError(t, sink.Report(cfg, engine, stats))

	out := buf.String()
	require.Contains(t, out, "BENCHMARK: ds")
	require.Contains(t, out, "Run ID")
	require.Contains(t, out, "run-1")
	require.Contains(t, out, "InMemory")
	require.Contains(t, out, "Major Faults")
}

func TestLogSink_ReportOmitsIOSectionWhenUnavailable(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	sink := NewLogSink(logger)
	cfg, engine, stats := sampleReportArgs()
	stats.IODelta = IOSnapshot{Available: false}
	require.NoError(t, sink.Report(cfg, engine, stats))

	require.NotContains(t, buf.String(), "Major Faults")
}

func TestLogSink_NilLoggerFallsBackToDiscard(t *testing.T) {
	sink := NewLogSink(nil)
	cfg, engine, stats := sampleReportArgs()
	require.NoError(t, sink.Report(cfg, engine, stats))
}

func TestJSONSink_ReportEncodesOneObjectPerCall(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONSink(&buf)
	cfg, engine, stats := sampleReportArgs()

	require.NoError(t, sink.Report(cfg, engine, stats))
	require.NoError(t, sink.Report(cfg, engine, stats))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var report jsonReport
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &report))
	require.Equal(t, "ds", report.Dataset)
	require.Equal(t, "run-1", report.RunID)
	require.Equal(t, "InMemory", report.Engine)
	require.Equal(t, 32, report.Sampling.BatchSize)
	require.Equal(t, stats.QPS, report.Stats.QPS)
}

func TestEngineName(t *testing.T) {
	require.Equal(t, "InMemory", engineName(ggb.InMemoryConfig{}))
	require.Equal(t, "FlatMmap (path: /tmp/x.bin)", engineName(ggb.FlatMmapConfig{DBPath: "/tmp/x.bin"}))
}
