// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// gen-testdata synthesizes a bench/data/<dataset> directory tree --
// node-feat.csv, edge.csv, and a run directory of query-batch CSVs
// plus metadata.json -- shaped exactly as bench.LoadRunConfig expects,
// so the benchmark driver can be exercised without a real OGB dataset.
package main

import (
	crand "crypto/rand"
	"encoding/binary"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kubax/ggb/internal/unsafestring"
)

func newRand() *rand.Rand {
	var seedBytes [8]byte
	if _, err := crand.Read(seedBytes[:]); err != nil {
		panic(err)
	}
	seed := int64(binary.LittleEndian.Uint64(seedBytes[:]))
	return rand.New(rand.NewSource(seed))
}

func main() {
	var (
		projectRoot = flag.String("project-root", ".", "project root containing bench/data")
		dataset     = flag.String("dataset", "synthetic", "dataset name")
		runID       = flag.String("run-id", "run-0001", "run id")
		numNodes    = flag.Int("num-nodes", 10_000, "number of nodes to generate features for")
		tensorSize  = flag.Int("tensor-size", 128, "feature vector length per node")
		numEdges    = flag.Int("num-edges", 50_000, "number of directed edges to generate")
		batchSize   = flag.Int("batch-size", 1024, "node ids per query batch")
		numBatches  = flag.Int("num-batches", 100, "number of query batches to generate")
		seed        = flag.Int("seed", 1337, "sampling seed recorded in metadata.json")
		fanOut      = flag.Int("fan-out", 10, "sampling fan-out recorded in metadata.json")
		numHops     = flag.Int("num-hops", 2, "sampling hop count recorded in metadata.json")
	)
	flag.Parse()

	datasetDir := filepath.Join(*projectRoot, "bench", "data", *dataset)
	if err := os.MkdirAll(datasetDir, 0o755); err != nil {
		fmt.Fprintln(os.Stderr, "gen-testdata:", err)
		os.Exit(1)
	}

	rng := newRand()

	if err := writeNodeFeatures(filepath.Join(datasetDir, "node-feat.csv"), rng, *numNodes, *tensorSize); err != nil {
		fmt.Fprintln(os.Stderr, "gen-testdata:", err)
		os.Exit(1)
	}
	if err := writeEdgeList(filepath.Join(datasetDir, "edge.csv"), rng, *numEdges, *numNodes); err != nil {
		fmt.Fprintln(os.Stderr, "gen-testdata:", err)
		os.Exit(1)
	}

	runDir := filepath.Join(datasetDir, *runID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		fmt.Fprintln(os.Stderr, "gen-testdata:", err)
		os.Exit(1)
	}
	if err := writeQueryBatches(filepath.Join(runDir, "queries.csv"), rng, *numBatches, *batchSize, *numNodes); err != nil {
		fmt.Fprintln(os.Stderr, "gen-testdata:", err)
		os.Exit(1)
	}
	if err := writeMetadata(filepath.Join(runDir, "metadata.json"), *seed, *batchSize, *numHops, *fanOut); err != nil {
		fmt.Fprintln(os.Stderr, "gen-testdata:", err)
		os.Exit(1)
	}

	fmt.Printf("gen-testdata: wrote %s (%d nodes x %d dims, %d edges, %d query batches)\n",
		datasetDir, *numNodes, *tensorSize, *numEdges, *numBatches)
}

func writeNodeFeatures(path string, rng *rand.Rand, numNodes, tensorSize int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	var sb strings.Builder
	row := make([]string, tensorSize)
	for i := 0; i < numNodes; i++ {
		for j := range row {
			row[j] = strconv.FormatFloat(rng.Float64()*2-1, 'f', 6, 32)
		}
		sb.WriteString(strings.Join(row, ","))
		sb.WriteByte('\n')
	}
	_, err = f.Write(unsafestring.ToBytes(sb.String()))
	return err
}

func writeEdgeList(path string, rng *rand.Rand, numEdges, numNodes int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	var sb strings.Builder
	for i := 0; i < numEdges; i++ {
		src := rng.Intn(numNodes)
		dst := rng.Intn(numNodes)
		fmt.Fprintf(&sb, "%d,%d\n", src, dst)
	}
	_, err = f.Write(unsafestring.ToBytes(sb.String()))
	return err
}

func writeQueryBatches(path string, rng *rand.Rand, numBatches, batchSize, numNodes int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	var sb strings.Builder
	ids := make([]string, batchSize)
	for i := 0; i < numBatches; i++ {
		for j := range ids {
			ids[j] = strconv.Itoa(rng.Intn(numNodes))
		}
		sb.WriteString(strings.Join(ids, ","))
		sb.WriteByte('\n')
	}
	_, err = f.Write(unsafestring.ToBytes(sb.String()))
	return err
}

func writeMetadata(path string, seed, batchSize, numHops, fanOut int) error {
	payload := struct {
		Seed      int `json:"seed"`
		BatchSize int `json:"batch_size"`
		NumHops   int `json:"num_hops"`
		FanOut    int `json:"fan_out"`
	}{seed, batchSize, numHops, fanOut}

	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
