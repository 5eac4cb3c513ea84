// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package ggb

import (
	"context"
	"log/slog"
	"sync/atomic"
)

const defaultInMemoryInitialCapacityTensors = 10_000

// inMemoryBuilder accumulates tensors into one contiguous float32 blob
// plus a key->element-offset map. One allocation amortizes overhead;
// contiguous layout maximizes cache-line utilization.
type inMemoryBuilder struct {
	built atomic.Bool

	logger *slog.Logger
	initialCapacityTensors int

	blob       []float32
	offsets    map[Key]int
	tensorSize int
	hasTensor  bool
}

func newInMemoryBuilder(_ InMemoryConfig, opts BuilderOptions) *inMemoryBuilder {
	capTensors := opts.InMemoryInitialCapacity
	if capTensors <= 0 {
		capTensors = defaultInMemoryInitialCapacityTensors
	}
	return &inMemoryBuilder{
		logger:                 opts.Logger,
		initialCapacityTensors: capTensors,
		offsets:                make(map[Key]int),
	}
}

func (b *inMemoryBuilder) Put(key Key, value Value) bool {
	if b.built.Load() {
		logDefunct(b.logger, "Put")
		return false
	}

	if !b.hasTensor {
		b.tensorSize = len(value)
		b.hasTensor = true
		if b.blob == nil {
			b.blob = make([]float32, 0, b.initialCapacityTensors*b.tensorSize)
		}
	} else if len(value) != b.tensorSize {
		logSoftReject(b.logger, key, "tensor size mismatch")
		return false
	}

	off := len(b.blob)
	b.blob = append(b.blob, value...)
	b.offsets[key] = off
	return true
}

func (b *inMemoryBuilder) Build(_ *GraphTopology) (FeatureStore, error) {
	if b.built.Swap(true) {
		logDefunct(b.logger, "Build")
		return nil, ErrBuilderDefunct
	}

	var tensorSize *int
	if b.hasTensor {
		ts := b.tensorSize
		tensorSize = &ts
	}

	logBuild(b.logger, "InMemoryFeatureStore", len(b.offsets), b.tensorSize)

	return &inMemoryStore{
		blob:       b.blob,
		offsets:    b.offsets,
		tensorSize: tensorSize,
	}, nil
}

// inMemoryStore is the immutable read-side of the in-memory engine.
type inMemoryStore struct {
	blob       []float32
	offsets    map[Key]int
	tensorSize *int
}

func (s *inMemoryStore) Name() string { return "InMemoryFeatureStore" }

func (s *inMemoryStore) NumKeys() int { return len(s.offsets) }

func (s *inMemoryStore) TensorSize() (int, bool) {
	if s.tensorSize == nil {
		return 0, false
	}
	return *s.tensorSize, true
}

func (s *inMemoryStore) GetMultiTensorAsync(_ context.Context, keys []Key) (GatherFuture, error) {
	results := make([]*Value, len(keys))
	if s.tensorSize != nil {
		ts := *s.tensorSize
		for i, k := range keys {
			off, ok := s.offsets[k]
			if !ok {
				continue
			}
			v := make(Value, ts)
			copy(v, s.blob[off:off+ts])
			results[i] = &v
		}
	}
	return resolvedFuture{values: results}, nil
}

func (s *inMemoryStore) GetMultiTensor(ctx context.Context, keys []Key) ([]*Value, error) {
	return blockingGather(ctx, s, keys)
}
