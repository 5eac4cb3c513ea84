// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package ingest provides mmap-backed, allocation-light CSV scanners
// that feed a ggb.FeatureStoreBuilder and a graph edge buffer directly
// from a memory-mapped file, avoiding the allocator pressure of
// line-oriented buffered readers for the largest input artifacts.
package ingest

import (
	"fmt"
	"log/slog"
	"strconv"

	"golang.org/x/sys/unix"

	"github.com/kubax/ggb"
	"github.com/kubax/ggb/internal/bytesutil"
	"github.com/kubax/ggb/internal/mmapfile"
)

// FeaturesOption configures IngestFeatures.
type FeaturesOption func(*featuresOptions)

type featuresOptions struct {
	logger *slog.Logger
}

// WithFeaturesLogger sets the logger used to report skipped rows.
func WithFeaturesLogger(logger *slog.Logger) FeaturesOption {
	return func(o *featuresOptions) {
		o.logger = logger
	}
}

// IngestFeatures streams node-feat.csv into builder: one node per
// line, a comma-separated sequence of decimal floats, zero-based
// implicit node IDs assigned in line order. It returns the number of
// tensors offered to the builder (including any the builder soft-
// rejected) and the first IO error encountered opening or mapping the
// file, if any.
//
// A field that fails to parse truncates the tensor being built at that
// field; an empty resulting tensor is skipped entirely (no Put call)
// and, for a non-blank line, logged as a warning.
// CR and LF are both accepted as line terminators.
func IngestFeatures(path string, builder ggb.FeatureStoreBuilder, opts ...FeaturesOption) (int, error) {
	options := featuresOptions{logger: discardLogger()}
	for _, opt := range opts {
		opt(&options)
	}

	region, err := mmapfile.Open(path)
	if err != nil {
		return 0, fmt.Errorf("ingest: IngestFeatures: %w", err)
	}
	defer func() { _ = region.Close() }()
	if err := region.Advise(unix.MADV_SEQUENTIAL); err != nil {
		options.logger.Warn("madvise failed, continuing without it", "error", err)
	}

	data := region.Data()
	var nodeID uint64
	var tensor ggb.Value

	for pos := 0; pos < len(data); {
		lineEnd := pos
		for lineEnd < len(data) && data[lineEnd] != '\n' && data[lineEnd] != '\r' {
			lineEnd++
		}

		tensor = tensor[:0]
		remaining := data[pos:lineEnd]
		for len(remaining) > 0 {
			field, rest, ok := bytesutil.Cut(remaining, ',')
			if !ok {
				field, rest = remaining, nil
			}

			v, perr := strconv.ParseFloat(string(field), 32)
			if perr != nil {
				break
			}
			tensor = append(tensor, float32(v))
			remaining = rest
		}

		if len(tensor) > 0 {
			key := ggb.Key(nodeID)
			nodeID++
			if !builder.Put(key, tensor) {
				options.logger.Warn("feature row rejected by builder", "node_id", uint64(key))
			}
		} else if lineEnd > pos {
			options.logger.Warn("skipping feature row with no parseable fields", "line", string(data[pos:lineEnd]))
		}

		pos = lineEnd
		for pos < len(data) && (data[pos] == '\n' || data[pos] == '\r') {
			pos++
		}
	}

	options.logger.Info("ingested node features", "count", nodeID, "path", path)
	return int(nodeID), nil
}
