// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package ggb

import "fmt"

// EngineConfig selects which concrete engine NewBuilder constructs.
// InMemoryConfig and FlatMmapConfig are the only implementations.
type EngineConfig interface {
	isEngineConfig()
}

// InMemoryConfig selects the in-memory engine. It has no fields.
type InMemoryConfig struct{}

func (InMemoryConfig) isEngineConfig() {}

// FlatMmapConfig selects the flat-mmap engine, backed by the file at DBPath.
type FlatMmapConfig struct {
	DBPath string
}

func (FlatMmapConfig) isEngineConfig() {}

// NewBuilder is the single dispatch point from an EngineConfig to the
// concrete FeatureStoreBuilder that implements it. Downstream code
// only ever sees the abstract builder and store returned by Build.
func NewBuilder(cfg EngineConfig, opts ...BuilderOption) (FeatureStoreBuilder, error) {
	options := ResolveBuilderOptions(opts...)

	switch c := cfg.(type) {
	case InMemoryConfig:
		options.Logger.Debug("creating in-memory builder")
		return newInMemoryBuilder(c, options), nil
	case FlatMmapConfig:
		options.Logger.Debug("creating flat-mmap builder", "path", c.DBPath)
		return newFlatMmapBuilder(c, options)
	default:
		return nil, fmt.Errorf("ggb: unknown engine config %T", cfg)
	}
}
