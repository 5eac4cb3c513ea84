// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package bench

import (
	"math"
	"sort"
)

// IOSnapshot captures per-process resource counters at a point in
// time; ComputeStats takes the delta of an end snapshot against a
// start snapshot. Available is false on platforms where these
// counters can't be read (see PlatformUnavailable in rusage_other.go),
// in which case every numeric field is zero.
type IOSnapshot struct {
	MajorFaults                int64
	MinorFaults                int64
	VoluntaryContextSwitches   int64
	InvoluntaryContextSwitches int64
	BytesRead                  int64
	PeakRSSBytes               int64
	Available                  bool
}

// BenchStats is the latency/throughput/IO summary of one benchmark run.
type BenchStats struct {
	// Latency, in milliseconds.
	MeanMs   float64
	StdDevMs float64
	MinMs    float64
	MaxMs    float64
	P50Ms    float64
	P95Ms    float64
	P99Ms    float64

	// Throughput.
	QPS         float64
	TensorsPerSecM float64 // millions of tensors/sec
	BandwidthGiBps float64

	TotalQueries    int
	TotalTensorsM   float64 // millions of tensors read

	// IO deltas (end - start; PeakRSSBytes is the end snapshot's
	// value), zero and Available=false if the platform doesn't expose
	// per-process counters.
	IODelta IOSnapshot
}

// ComputeStats reduces a sequence of per-batch latencies (in
// microseconds), the total number of tensors read, the store's tensor
// size, and a before/after IO snapshot pair into a BenchStats.
//
// Throughput is denominated by the *sum* of per-batch latencies, not
// wall-clock elapsed time -- a deliberate simplification carried over
// unresolved from this benchmark's origins; see DESIGN.md.
func ComputeStats(latenciesUs []int64, totalTensorsRead, tensorSize int, before, after IOSnapshot) BenchStats {
	if len(latenciesUs) == 0 {
		return BenchStats{}
	}

	sorted := make([]int64, len(latenciesUs))
	copy(sorted, latenciesUs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	n := len(sorted)
	var totalUs float64
	for _, v := range sorted {
		totalUs += float64(v)
	}
	meanUs := totalUs / float64(n)

	var sqDiffSum float64
	for _, v := range sorted {
		d := float64(v) - meanUs
		sqDiffSum += d * d
	}
	stdDevUs := math.Sqrt(sqDiffSum / float64(n))

	percentileMs := func(p float64) float64 {
		idx := int(math.Ceil(p/100.0*float64(n))) - 1
		if idx < 0 {
			idx = 0
		}
		if idx > n-1 {
			idx = n - 1
		}
		return float64(sorted[idx]) / 1000.0
	}

	totalSeconds := totalUs / 1_000_000.0

	stats := BenchStats{
		MeanMs:   meanUs / 1000.0,
		StdDevMs: stdDevUs / 1000.0,
		MinMs:    float64(sorted[0]) / 1000.0,
		MaxMs:    float64(sorted[n-1]) / 1000.0,
		P50Ms:    percentileMs(50),
		P95Ms:    percentileMs(95),
		P99Ms:    percentileMs(99),

		QPS:            float64(n) / totalSeconds,
		TensorsPerSecM: (float64(totalTensorsRead) / totalSeconds) / 1e6,
		BandwidthGiBps: (float64(totalTensorsRead) * float64(tensorSize) * 4) / (totalSeconds * 1024 * 1024 * 1024),

		TotalQueries:  n,
		TotalTensorsM: float64(totalTensorsRead) / 1e6,

		IODelta: ioDelta(before, after),
	}

	return stats
}

func ioDelta(before, after IOSnapshot) IOSnapshot {
	if !before.Available || !after.Available {
		return IOSnapshot{Available: false}
	}
	return IOSnapshot{
		MajorFaults:                after.MajorFaults - before.MajorFaults,
		MinorFaults:                after.MinorFaults - before.MinorFaults,
		VoluntaryContextSwitches:   after.VoluntaryContextSwitches - before.VoluntaryContextSwitches,
		InvoluntaryContextSwitches: after.InvoluntaryContextSwitches - before.InvoluntaryContextSwitches,
		BytesRead:                  after.BytesRead - before.BytesRead,
		PeakRSSBytes:                after.PeakRSSBytes,
		Available:                   true,
	}
}
