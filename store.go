// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package ggb implements a feature store for graph neural network
// inference: a keyed mapping from node identifiers to fixed-size
// float32 tensors, optimized for batched retrieval over a corpus that
// may exceed RAM.
package ggb

import "context"

// Key identifies a graph node. Keys are dense, small, upstream-generated
// integers; the hash is the identifier itself. This is adversarial-unsafe
// and a deliberate trade-off, not an oversight: see DESIGN.md.
type Key uint64

// Value is a dense tensor of float32 features associated with one Key.
// All tensors within a store share one length, latched by the first
// accepted Put.
type Value []float32

// Edge is a directed (source, destination) node pair.
type Edge struct {
	Src, Dst Key
}

// GraphTopology is a borrowed view of an edge list. Accepted by Build
// but not consumed by either engine in this package -- reserved for a
// future engine that co-locates neighbors on disk.
type GraphTopology struct {
	Edges []Edge
}

// GatherFuture is the result of an asynchronous batch gather. Both
// engines in this package resolve it eagerly; the interface exists so
// a future engine backed by real asynchronous IO can be dropped in
// without changing callers.
type GatherFuture interface {
	// Wait blocks until the gather completes and returns its result.
	// Callers must not mutate the key slice passed to
	// GetMultiTensorAsync until Wait returns.
	Wait(ctx context.Context) ([]*Value, error)
}

// resolvedFuture is a GatherFuture that is already complete.
type resolvedFuture struct {
	values []*Value
	err    error
}

func (f resolvedFuture) Wait(context.Context) ([]*Value, error) {
	return f.values, f.err
}

// FeatureStore is the read-side contract shared by every engine.
type FeatureStore interface {
	// Name is a short, static identifier for the engine implementation.
	Name() string

	// NumKeys returns the exact size of the key->offset index.
	NumKeys() int

	// TensorSize returns the common tensor length and true, or
	// (0, false) if the store is empty.
	TensorSize() (int, bool)

	// GetMultiTensorAsync gathers values for keys, preserving order:
	// result[i] corresponds to keys[i]. Missing keys produce a nil
	// *Value at that position, never an error. Callers must not
	// mutate keys until the returned future resolves.
	GetMultiTensorAsync(ctx context.Context, keys []Key) (GatherFuture, error)

	// GetMultiTensor is the blocking convenience form of
	// GetMultiTensorAsync.
	GetMultiTensor(ctx context.Context, keys []Key) ([]*Value, error)
}

// FeatureStoreBuilder is the write-side, one-shot state machine: zero
// or more Put calls followed by exactly one Build call. Any Put or
// Build after a successful Build fails deterministically.
type FeatureStoreBuilder interface {
	// Put adds key/value to the store under construction. It returns
	// true on acceptance, false on a soft rejection (tensor-size
	// mismatch, or a prior IO failure in a file-backed engine). A
	// soft rejection never changes builder state and never aborts the
	// batch; it is logged and the caller may keep calling Put. Put
	// after Build also returns false, logged as defunct.
	Put(key Key, value Value) bool

	// Build finalizes the builder and returns an immutable store.
	// graph may be nil. Build after Build returns ErrBuilderDefunct.
	Build(graph *GraphTopology) (FeatureStore, error)
}

// blockingGather adapts an async gather into FeatureStore's
// GetMultiTensor method. Every engine's GetMultiTensor forwards here.
func blockingGather(ctx context.Context, s FeatureStore, keys []Key) ([]*Value, error) {
	fut, err := s.GetMultiTensorAsync(ctx, keys)
	if err != nil {
		return nil, err
	}
	return fut.Wait(ctx)
}
