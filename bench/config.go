// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package bench drives latency/throughput benchmarks of a
// github.com/kubax/ggb FeatureStore: dataset discovery, timed
// ingest/build/gather, and statistics reporting.
package bench

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

const (
	nodeFeatFileName   = "node-feat.csv"
	edgeListFileName   = "edge.csv"
	metadataFileName   = "metadata.json"
)

// SamplingParams is the sampling configuration recorded alongside a
// run's query CSVs, parsed from metadata.json.
type SamplingParams struct {
	Seed      int `json:"seed"`
	BatchSize int `json:"batch_size"`
	NumHops   int `json:"num_hops"`
	FanOut    int `json:"fan_out"`
}

// RunConfig resolves one benchmark run's on-disk inputs: the dataset's
// feature/edge CSVs plus a run directory of query-batch CSVs and
// sampling metadata.
type RunConfig struct {
	DatasetName string
	RunID       string

	NodeFeatPath string
	EdgeListPath string

	Sampling SamplingParams

	// QueryCSVs is the set of query-batch CSVs this run will load,
	// already resolved according to the configured selection mode
	// (first-lexicographic by default, or all when WithAllQueryCSVs
	// is set).
	QueryCSVs []string
}

// ConfigError reports a dataset resource that could not be resolved.
// Load is all-or-nothing: the first ConfigError aborts the load and no
// RunConfig is returned.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("bench: config: %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ConfigOption configures LoadRunConfig.
type ConfigOption func(*configOptions)

type configOptions struct {
	allQueryCSVs bool
}

// WithAllQueryCSVs selects every query CSV in the run directory,
// concatenated into one batch stream, instead of the default of only
// the lexicographically first. The source this project is grounded on
// disagrees across revisions about which behavior is intended (see
// DESIGN.md); both are implemented and "first" is the default.
func WithAllQueryCSVs() ConfigOption {
	return func(o *configOptions) {
		o.allQueryCSVs = true
	}
}

// LoadRunConfig resolves a dataset and run under
// <projectRoot>/bench/data/<datasetName>/, requiring node-feat.csv,
// edge.csv, a <runID>/ subdirectory, and at least one query CSV in it.
// metadata.json in the run directory is optional; when absent,
// Sampling is the zero value.
func LoadRunConfig(projectRoot, datasetName, runID string, opts ...ConfigOption) (*RunConfig, error) {
	options := configOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	datasetDir := filepath.Join(projectRoot, "bench", "data", datasetName)
	if info, err := os.Stat(datasetDir); err != nil || !info.IsDir() {
		return nil, &ConfigError{Path: datasetDir, Err: fmt.Errorf("dataset directory not found")}
	}

	cfg := &RunConfig{
		DatasetName:  datasetName,
		RunID:        runID,
		NodeFeatPath: filepath.Join(datasetDir, nodeFeatFileName),
		EdgeListPath: filepath.Join(datasetDir, edgeListFileName),
	}

	if _, err := os.Stat(cfg.NodeFeatPath); err != nil {
		return nil, &ConfigError{Path: cfg.NodeFeatPath, Err: err}
	}
	if _, err := os.Stat(cfg.EdgeListPath); err != nil {
		return nil, &ConfigError{Path: cfg.EdgeListPath, Err: err}
	}

	runDir := filepath.Join(datasetDir, runID)
	if info, err := os.Stat(runDir); err != nil || !info.IsDir() {
		return nil, &ConfigError{Path: runDir, Err: fmt.Errorf("run directory not found")}
	}

	entries, err := os.ReadDir(runDir)
	if err != nil {
		return nil, &ConfigError{Path: runDir, Err: err}
	}
	var csvs []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".csv" {
			continue
		}
		csvs = append(csvs, filepath.Join(runDir, e.Name()))
	}
	if len(csvs) == 0 {
		return nil, &ConfigError{Path: runDir, Err: fmt.Errorf("no query CSVs found")}
	}
	sort.Strings(csvs)

	if options.allQueryCSVs {
		cfg.QueryCSVs = csvs
	} else {
		cfg.QueryCSVs = csvs[:1]
	}

	metadataPath := filepath.Join(runDir, metadataFileName)
	if raw, err := os.ReadFile(metadataPath); err == nil {
		if err := json.Unmarshal(raw, &cfg.Sampling); err != nil {
			return nil, &ConfigError{Path: metadataPath, Err: err}
		}
	} else if !os.IsNotExist(err) {
		return nil, &ConfigError{Path: metadataPath, Err: err}
	}

	return cfg, nil
}
