// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package ingest

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"golang.org/x/sys/unix"

	"github.com/kubax/ggb"
	"github.com/kubax/ggb/internal/bytesutil"
	"github.com/kubax/ggb/internal/mmapfile"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// EdgesOption configures IngestEdges.
type EdgesOption func(*edgesOptions)

type edgesOptions struct {
	logger *slog.Logger
}

// WithEdgesLogger sets the logger used to report a truncated scan.
func WithEdgesLogger(logger *slog.Logger) EdgesOption {
	return func(o *edgesOptions) {
		o.logger = logger
	}
}

// IngestEdges streams edge.csv into a new []ggb.Edge: one edge per
// line, "src,dst" as decimal unsigned integers. Unlike IngestFeatures,
// a line that fails to parse either integer terminates the scan
// entirely (defensive truncation) rather than being skipped -- a
// corrupt edge list is far more likely to indicate a systematic
// problem than a single malformed feature row.
func IngestEdges(path string, opts ...EdgesOption) ([]ggb.Edge, error) {
	options := edgesOptions{logger: discardLogger()}
	for _, opt := range opts {
		opt(&options)
	}

	region, err := mmapfile.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: IngestEdges: %w", err)
	}
	defer func() { _ = region.Close() }()
	if err := region.Advise(unix.MADV_SEQUENTIAL); err != nil {
		options.logger.Warn("madvise failed, continuing without it", "error", err)
	}

	data := region.Data()
	var edges []ggb.Edge

	for pos := 0; pos < len(data); {
		lineEnd := pos
		for lineEnd < len(data) && data[lineEnd] != '\n' && data[lineEnd] != '\r' {
			lineEnd++
		}

		line := data[pos:lineEnd]
		srcField, dstField, ok := bytesutil.Cut(line, ',')
		if !ok {
			options.logger.Warn("truncating edge scan: missing comma", "line", string(line))
			break
		}

		src, serr := strconv.ParseUint(string(srcField), 10, 64)
		if serr != nil {
			options.logger.Warn("truncating edge scan: bad src", "line", string(line))
			break
		}
		dst, derr := strconv.ParseUint(string(dstField), 10, 64)
		if derr != nil {
			options.logger.Warn("truncating edge scan: bad dst", "line", string(line))
			break
		}

		edges = append(edges, ggb.Edge{Src: ggb.Key(src), Dst: ggb.Key(dst)})

		pos = lineEnd
		for pos < len(data) && (data[pos] == '\n' || data[pos] == '\r') {
			pos++
		}
	}

	options.logger.Info("ingested edges", "count", len(edges), "path", path)
	return edges, nil
}
