// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package bench

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kubax/ggb"
)

func setupRunnableDataset(t *testing.T, root, dataset, runID string) *RunConfig {
	t.Helper()
	runDir := setupDataset(t, root, dataset, runID)

	datasetDir := filepath.Join(root, "bench", "data", dataset)
	require.NoError(t, os.WriteFile(filepath.Join(datasetDir, nodeFeatFileName),
		[]byte("1.0,2.0\n3.0,4.0\n5.0,6.0\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(datasetDir, edgeListFileName),
		[]byte("0,1\n1,2\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(runDir, "queries.csv"), []byte("0,1\n2\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(runDir, metadataFileName),
		[]byte(`{"seed":1,"batch_size":2,"num_hops":2,"fan_out":10}`), 0o644))

	cfg, err := LoadRunConfig(root, dataset, runID)
	require.NoError(t, err)
	return cfg
}

func TestRunner_Run_InMemoryEngineEndToEnd(t *testing.T) {
	root := t.TempDir()
	cfg := setupRunnableDataset(t, root, "ds", "run-1")

	builder, err := ggb.NewBuilder(ggb.InMemoryConfig{})
	require.NoError(t, err)

	runner := NewRunner(builder, ggb.InMemoryConfig{}, cfg)
	result, err := runner.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 3, result.NumTensorsRead)
	require.Equal(t, 2, result.Stats.TotalQueries)
	require.Greater(t, result.Stats.QPS, 0.0)
}

func TestRunner_Run_ReportsToEveryRegisteredSink(t *testing.T) {
	root := t.TempDir()
	cfg := setupRunnableDataset(t, root, "ds", "run-1")

	builder, err := ggb.NewBuilder(ggb.InMemoryConfig{})
	require.NoError(t, err)

	var jsonOut bytes.Buffer
	recorder := &recordingSink{}
	runner := NewRunner(builder, ggb.InMemoryConfig{}, cfg,
		WithSink(recorder),
		WithSink(NewJSONSink(&jsonOut)),
	)

	_, err = runner.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, recorder.calls, 1)
	require.Equal(t, "InMemory", recorder.calls[0].engineName)

	var report jsonReport
	require.NoError(t, json.Unmarshal(jsonOut.Bytes(), &report))
	require.Equal(t, "ds", report.Dataset)
	require.Equal(t, "run-1", report.RunID)
	require.Equal(t, "InMemory", report.Engine)
}

func TestRunner_Run_MissingEdgeFileErrors(t *testing.T) {
	root := t.TempDir()
	cfg := setupRunnableDataset(t, root, "ds", "run-1")
	require.NoError(t, os.Remove(cfg.EdgeListPath))

	builder, err := ggb.NewBuilder(ggb.InMemoryConfig{})
	require.NoError(t, err)

	runner := NewRunner(builder, ggb.InMemoryConfig{}, cfg)
	_, err = runner.Run(context.Background())
	require.Error(t, err)
}

func TestLoadQueryBatches_SkipsUnparseableFieldsWithoutAbortingBatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "queries.csv")
	require.NoError(t, os.WriteFile(path, []byte("1,x,3\n\n5\n"), 0o644))

	batches, err := loadQueryBatches([]string{path}, discardLogger())
	require.NoError(t, err)
	require.Len(t, batches, 2)
	require.Equal(t, []ggb.Key{1, 3}, batches[0])
	require.Equal(t, []ggb.Key{5}, batches[1])
}

type recordingSink struct {
	calls []sinkCall
}

type sinkCall struct {
	engineName string
	stats      BenchStats
}

func (s *recordingSink) Report(cfg *RunConfig, engineName string, stats BenchStats) error {
	s.calls = append(s.calls, sinkCall{engineName: engineName, stats: stats})
	return nil
}
