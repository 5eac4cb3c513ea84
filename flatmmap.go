// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package ggb

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sync/atomic"

	"github.com/dgryski/go-farm"
	"golang.org/x/sys/unix"

	"github.com/kubax/ggb/internal/mmapfile"
	"github.com/kubax/ggb/internal/ondisk"
	"github.com/kubax/ggb/internal/zero"
)

const defaultFlatMmapBufferSize = 4 * 1024 * 1024

// flatMmapBuilder writes tensors as a pure concatenation of
// little-endian float32 payloads: no header, no per-record framing.
// Offsets live only in keyToByte; the file is meaningless without it.
type flatMmapBuilder struct {
	built atomic.Bool

	logger *slog.Logger
	path   string

	f   *os.File
	w   *bufio.Writer
	err error // latched first write error; once set, every Put soft-rejects

	keyToByte  map[Key]int64
	checksums  map[Key]uint32
	onDiskSums *ondisk.Uint32Array
	sumFile    *os.File

	writePos   int64
	tensorSize int
	hasTensor  bool

	encodeScratch []byte
}

func newFlatMmapBuilder(cfg FlatMmapConfig, opts BuilderOptions) (*flatMmapBuilder, error) {
	f, err := os.OpenFile(cfg.DBPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("ggb: flat-mmap builder: %w", err)
	}

	b := &flatMmapBuilder{
		logger:    opts.Logger,
		path:      cfg.DBPath,
		f:         f,
		w:         bufio.NewWriterSize(f, defaultFlatMmapBufferSize),
		keyToByte: make(map[Key]int64),
	}

	if opts.OnDiskChecksums {
		sumFile, err := os.CreateTemp("", "ggb-checksums-*.bin")
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("ggb: flat-mmap builder: checksum sidecar: %w", err)
		}
		b.sumFile = sumFile
	} else {
		b.checksums = make(map[Key]uint32)
	}

	return b, nil
}

func (b *flatMmapBuilder) Put(key Key, value Value) bool {
	if b.built.Load() {
		logDefunct(b.logger, "Put")
		return false
	}
	if b.err != nil {
		logSoftReject(b.logger, key, fmt.Sprintf("output stream errored: %v", b.err))
		return false
	}

	if !b.hasTensor {
		b.tensorSize = len(value)
		b.hasTensor = true
		b.encodeScratch = make([]byte, 4*len(value))
	} else if len(value) != b.tensorSize {
		logSoftReject(b.logger, key, "tensor size mismatch")
		return false
	}

	buf := b.encodeScratch
	for i, v := range value {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}

	n, err := b.w.Write(buf)
	if err != nil {
		b.err = err
		zero.Bytes(buf)
		logSoftReject(b.logger, key, fmt.Sprintf("write failed: %v", err))
		return false
	}

	b.keyToByte[key] = b.writePos
	b.recordChecksum(key, uint32(farm.Hash64(buf)))
	b.writePos += int64(n)
	return true
}

func (b *flatMmapBuilder) recordChecksum(key Key, sum uint32) {
	if b.checksums != nil {
		b.checksums[key] = sum
		return
	}
	// on-disk sidecar: the record's ordinal is its byte offset divided
	// by the (fixed) record size -- stable even across duplicate-key
	// overwrites, since every physical write still gets its own slot.
	var idx int64
	if b.tensorSize > 0 {
		idx = b.writePos / int64(b.tensorSize*4)
	}
	if b.onDiskSums == nil || idx >= b.onDiskSums.Len() {
		b.growOnDiskSums(idx + 1)
	}
	_ = b.onDiskSums.Set(idx, sum)
}

func (b *flatMmapBuilder) growOnDiskSums(minLen int64) {
	newLen := minLen * 2
	if newLen < 1024 {
		newLen = 1024
	}
	_ = b.sumFile.Truncate(newLen * 4)
	b.onDiskSums = ondisk.NewUint32Array(b.sumFile, newLen, 0)
}

func (b *flatMmapBuilder) Build(_ *GraphTopology) (FeatureStore, error) {
	if b.built.Swap(true) {
		logDefunct(b.logger, "Build")
		return nil, ErrBuilderDefunct
	}

	flushErr := b.w.Flush()
	closeErr := b.f.Close()
	if flushErr != nil {
		b.cleanupChecksumFile()
		return nil, fmt.Errorf("ggb: flat-mmap builder: flush: %w", flushErr)
	}
	if closeErr != nil {
		b.cleanupChecksumFile()
		return nil, fmt.Errorf("ggb: flat-mmap builder: close: %w", closeErr)
	}

	var tensorSize *int
	if b.hasTensor {
		ts := b.tensorSize
		tensorSize = &ts
	}

	logBuild(b.logger, "FlatMmapFeatureStore", len(b.keyToByte), b.tensorSize)

	store := &flatMmapStore{
		path:       b.path,
		keyToByte:  b.keyToByte,
		checksums:  b.checksums,
		onDiskSums: b.finalizeOnDiskSums(),
		sumFile:    b.sumFile,
		tensorSize: tensorSize,
		logger:     b.logger,
	}
	if err := store.open(); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

func (b *flatMmapBuilder) cleanupChecksumFile() {
	if b.sumFile == nil {
		return
	}
	name := b.sumFile.Name()
	_ = b.sumFile.Close()
	_ = os.Remove(name)
}

func (b *flatMmapBuilder) finalizeOnDiskSums() *ondisk.Uint32Array {
	if b.sumFile == nil || b.tensorSize == 0 {
		return nil
	}
	numRecords := b.writePos / int64(b.tensorSize*4)
	return ondisk.NewUint32Array(b.sumFile, numRecords, 0)
}

// flatMmapStore is the immutable read-side of the flat-mmap engine: a
// memory-mapped append-only file plus the key->byte-offset index
// produced by the builder.
type flatMmapStore struct {
	path       string
	keyToByte  map[Key]int64
	checksums  map[Key]uint32
	onDiskSums *ondisk.Uint32Array
	sumFile    *os.File
	tensorSize *int
	logger     *slog.Logger

	region *mmapfile.Region
}

func (s *flatMmapStore) open() error {
	region, err := mmapfile.Open(s.path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if err := region.Advise(unix.MADV_RANDOM); err != nil {
		s.logger.Warn("madvise failed, continuing without it", "error", err)
	}
	s.region = region
	return nil
}

// Close releases the mapping and any on-disk checksum sidecar. Safe to
// call multiple times.
func (s *flatMmapStore) Close() error {
	var err error
	if s.region != nil {
		err = s.region.Close()
	}
	if s.sumFile != nil {
		name := s.sumFile.Name()
		if cerr := s.sumFile.Close(); cerr != nil && err == nil {
			err = cerr
		}
		_ = os.Remove(name)
	}
	return err
}

func (s *flatMmapStore) Name() string { return "FlatMmapFeatureStore" }

func (s *flatMmapStore) NumKeys() int { return len(s.keyToByte) }

func (s *flatMmapStore) TensorSize() (int, bool) {
	if s.tensorSize == nil {
		return 0, false
	}
	return *s.tensorSize, true
}

func (s *flatMmapStore) GetMultiTensorAsync(_ context.Context, keys []Key) (GatherFuture, error) {
	results := make([]*Value, len(keys))

	if s.tensorSize == nil {
		s.logger.Warn("empty tensor dimension found")
		return resolvedFuture{values: results}, nil
	}
	if s.region == nil {
		return nil, ErrStoreUnavailable
	}

	ts := *s.tensorSize
	data := s.region.Data()

	for i, k := range keys {
		off, ok := s.keyToByte[k]
		if !ok {
			continue
		}
		start := int(off)
		end := start + ts*4
		if end > len(data) {
			continue
		}
		v := make(Value, ts)
		for j := 0; j < ts; j++ {
			bits := binary.LittleEndian.Uint32(data[start+j*4:])
			v[j] = math.Float32frombits(bits)
		}
		if err := s.verifyChecksum(k, off, data[start:end]); err != nil {
			return nil, err
		}
		results[i] = &v
	}

	return resolvedFuture{values: results}, nil
}

func (s *flatMmapStore) verifyChecksum(key Key, off int64, raw []byte) error {
	var want uint32
	var have bool
	if s.checksums != nil {
		want, have = s.checksums[key]
	} else if s.onDiskSums != nil {
		idx := s.ordinalOf(key)
		if idx >= 0 {
			sum, err := s.onDiskSums.Get(idx)
			if err == nil {
				want, have = sum, true
			}
		}
	}
	if !have {
		return nil
	}
	if got := uint32(farm.Hash64(raw)); got != want {
		return &CorruptedStoreError{Key: key, Off: off}
	}
	return nil
}

// ordinalOf recovers a key's insertion ordinal for the on-disk
// checksum sidecar. The builder records offsets in insertion order, so
// byte-offset / (tensor-size*4) recovers it directly.
func (s *flatMmapStore) ordinalOf(key Key) int64 {
	off, ok := s.keyToByte[key]
	if !ok || s.tensorSize == nil || *s.tensorSize == 0 {
		return -1
	}
	return off / int64(*s.tensorSize*4)
}

func (s *flatMmapStore) GetMultiTensor(ctx context.Context, keys []Key) ([]*Value, error) {
	return blockingGather(ctx, s, keys)
}
