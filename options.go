// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package ggb

import "log/slog"

// BuilderOption configures a FeatureStoreBuilder returned by NewBuilder.
type BuilderOption func(*BuilderOptions)

// BuilderOptions holds the resolved configuration for a builder. It is
// exported so engine packages outside this module's internal tree can
// accept it directly.
type BuilderOptions struct {
	Logger *slog.Logger

	// InMemoryInitialCapacity is the number of tensors the in-memory
	// engine's blob is pre-reserved for, once the tensor size is known.
	// Zero means use the engine's default (10,000).
	InMemoryInitialCapacity int

	// OnDiskChecksums, when true, stores the flat-mmap engine's
	// per-record integrity checksums in an on-disk sidecar array
	// (internal/ondisk) instead of a Go map, trading a small amount of
	// IO for avoiding one map entry per key in the builder process.
	OnDiskChecksums bool
}

// WithBuilderLogger sets the logger a builder (and the store it
// produces) uses for progress and rejection messages. If not provided,
// no logging output is produced.
func WithBuilderLogger(logger *slog.Logger) BuilderOption {
	return func(o *BuilderOptions) {
		o.Logger = logger
	}
}

// WithInMemoryInitialCapacity overrides the in-memory engine's initial
// blob reservation, expressed in tensors rather than floats.
func WithInMemoryInitialCapacity(tensors int) BuilderOption {
	return func(o *BuilderOptions) {
		o.InMemoryInitialCapacity = tensors
	}
}

// WithOnDiskChecksums enables the flat-mmap engine's on-disk checksum
// sidecar instead of an in-process map.
func WithOnDiskChecksums() BuilderOption {
	return func(o *BuilderOptions) {
		o.OnDiskChecksums = true
	}
}

// ResolveBuilderOptions applies opts over the package defaults.
func ResolveBuilderOptions(opts ...BuilderOption) BuilderOptions {
	o := BuilderOptions{
		Logger: discardLogger(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
