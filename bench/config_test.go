// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package bench

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func setupDataset(t *testing.T, projectRoot, dataset, runID string) string {
	t.Helper()
	datasetDir := filepath.Join(projectRoot, "bench", "data", dataset)
	require.NoError(t, os.MkdirAll(datasetDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(datasetDir, nodeFeatFileName), []byte("1.0,2.0\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(datasetDir, edgeListFileName), []byte("0,1\n"), 0o644))

	runDir := filepath.Join(datasetDir, runID)
	require.NoError(t, os.MkdirAll(runDir, 0o755))
	return runDir
}

func TestLoadRunConfig_DefaultsToFirstQueryCSV(t *testing.T) {
	root := t.TempDir()
	runDir := setupDataset(t, root, "ds", "run-1")
	require.NoError(t, os.WriteFile(filepath.Join(runDir, "b.csv"), []byte("1\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(runDir, "a.csv"), []byte("0\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(runDir, metadataFileName),
		[]byte(`{"seed":7,"batch_size":32,"num_hops":2,"fan_out":10}`), 0o644))

	cfg, err := LoadRunConfig(root, "ds", "run-1")
	require.NoError(t, err)
	require.Len(t, cfg.QueryCSVs, 1)
	require.Equal(t, filepath.Join(runDir, "a.csv"), cfg.QueryCSVs[0])
	require.Equal(t, 7, cfg.Sampling.Seed)
	require.Equal(t, 32, cfg.Sampling.BatchSize)
}

func TestLoadRunConfig_AllQueryCSVsOptIn(t *testing.T) {
	root := t.TempDir()
	runDir := setupDataset(t, root, "ds", "run-1")
	require.NoError(t, os.WriteFile(filepath.Join(runDir, "b.csv"), []byte("1\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(runDir, "a.csv"), []byte("0\n"), 0o644))

	cfg, err := LoadRunConfig(root, "ds", "run-1", WithAllQueryCSVs())
	require.NoError(t, err)
	require.Len(t, cfg.QueryCSVs, 2)
	require.Equal(t, filepath.Join(runDir, "a.csv"), cfg.QueryCSVs[0])
	require.Equal(t, filepath.Join(runDir, "b.csv"), cfg.QueryCSVs[1])
}

func TestLoadRunConfig_MissingDatasetDirErrors(t *testing.T) {
	root := t.TempDir()
	_, err := LoadRunConfig(root, "does-not-exist", "run-1")
	require.Error(t, err)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestLoadRunConfig_NoQueryCSVsErrors(t *testing.T) {
	root := t.TempDir()
	setupDataset(t, root, "ds", "run-1")

	_, err := LoadRunConfig(root, "ds", "run-1")
	require.Error(t, err)
}

func TestLoadRunConfig_MissingNodeFeatErrors(t *testing.T) {
	root := t.TempDir()
	datasetDir := filepath.Join(root, "bench", "data", "ds")
	require.NoError(t, os.MkdirAll(datasetDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(datasetDir, edgeListFileName), []byte("0,1\n"), 0o644))

	_, err := LoadRunConfig(root, "ds", "run-1")
	require.Error(t, err)
}
