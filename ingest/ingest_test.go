// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kubax/ggb"
)

func writeTempCSV(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestIngestFeatures_ParsesRows(t *testing.T) {
	path := writeTempCSV(t, "node-feat.csv", "1.0,2.0,3.0\n4.0,5.0,6.0\n7.0,8.0,9.0\n")

	builder, err := ggb.NewBuilder(ggb.InMemoryConfig{})
	require.NoError(t, err)

	n, err := IngestFeatures(path, builder)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	store, err := builder.Build(nil)
	require.NoError(t, err)

	got, err := store.GetMultiTensor(context.Background(), []ggb.Key{0, 1, 2})
	require.NoError(t, err)
	require.Equal(t, ggb.Value{1.0, 2.0, 3.0}, *got[0])
	require.Equal(t, ggb.Value{4.0, 5.0, 6.0}, *got[1])
	require.Equal(t, ggb.Value{7.0, 8.0, 9.0}, *got[2])
}

func TestIngestFeatures_SkipsEmptyRowsAndTruncatesBadFields(t *testing.T) {
	// line 0: fully valid
	// line 1: blank -- skipped entirely, does not consume a node id
	// line 2: bad field truncates the tensor to [3.0]; it is offered as
	// node 1, and the builder soft-rejects it because its length differs
	// from the size 2 latched by node 0
	path := writeTempCSV(t, "node-feat.csv", "1.0,2.0\n\n3.0,xyz,4.0\n")

	builder, err := ggb.NewBuilder(ggb.InMemoryConfig{})
	require.NoError(t, err)

	n, err := IngestFeatures(path, builder)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	store, err := builder.Build(nil)
	require.NoError(t, err)

	got, err := store.GetMultiTensor(context.Background(), []ggb.Key{0, 1})
	require.NoError(t, err)
	require.Equal(t, ggb.Value{1.0, 2.0}, *got[0])
	require.Nil(t, got[1])
}

func TestIngestFeatures_MissingFileErrors(t *testing.T) {
	builder, err := ggb.NewBuilder(ggb.InMemoryConfig{})
	require.NoError(t, err)

	_, err = IngestFeatures(filepath.Join(t.TempDir(), "does-not-exist.csv"), builder)
	require.Error(t, err)
}

func TestIngestEdges_ParsesPairs(t *testing.T) {
	path := writeTempCSV(t, "edge.csv", "0,1\n1,2\n2,0\n")

	edges, err := IngestEdges(path)
	require.NoError(t, err)
	require.Equal(t, []ggb.Edge{
		{Src: 0, Dst: 1},
		{Src: 1, Dst: 2},
		{Src: 2, Dst: 0},
	}, edges)
}

func TestIngestEdges_TruncatesScanOnFirstBadLine(t *testing.T) {
	path := writeTempCSV(t, "edge.csv", "0,1\nbogus,2\n2,3\n")

	edges, err := IngestEdges(path)
	require.NoError(t, err)
	require.Equal(t, []ggb.Edge{{Src: 0, Dst: 1}}, edges)
}

func TestIngestEdges_MissingFileErrors(t *testing.T) {
	_, err := IngestEdges(filepath.Join(t.TempDir(), "does-not-exist.csv"))
	require.Error(t, err)
}
