// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package ondisk provides fixed-width array views backed by a file,
// so large per-key sidecar data (like flat-mmap checksums) doesn't
// have to live in a Go map or slice.
package ondisk

import (
	"encoding/binary"
	"fmt"
	"os"
)

// Uint32Array is a fixed-length array of uint32 values, read and written
// directly against an underlying file at a byte offset.
type Uint32Array struct {
	f   *os.File
	len int64
	off int64
}

// NewUint32Array returns a view of length elements starting at byte offset off in f.
func NewUint32Array(f *os.File, length int64, off int64) *Uint32Array {
	return &Uint32Array{f: f, len: length, off: off}
}

func (a *Uint32Array) Len() int64 { return a.len }

func (a *Uint32Array) Set(i int64, value uint32) error {
	if i < 0 || i >= a.len {
		return fmt.Errorf("ondisk: index %d out of range (len %d)", i, a.len)
	}
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], value)
	_, err := a.f.WriteAt(buf[:], a.off+4*i)
	return err
}

func (a *Uint32Array) Get(i int64) (uint32, error) {
	if i < 0 || i >= a.len {
		return 0, fmt.Errorf("ondisk: index %d out of range (len %d)", i, a.len)
	}
	var buf [4]byte
	if _, err := a.f.ReadAt(buf[:], a.off+4*i); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// Uint64Array is a fixed-length array of uint64 values, read and written
// directly against an underlying file at a byte offset.
type Uint64Array struct {
	f   *os.File
	len int64
	off int64
}

// NewUint64Array returns a view of length elements starting at byte offset off in f.
func NewUint64Array(f *os.File, length int64, off int64) *Uint64Array {
	return &Uint64Array{f: f, len: length, off: off}
}

func (a *Uint64Array) Len() int64 { return a.len }

func (a *Uint64Array) Set(i int64, value uint64) error {
	if i < 0 || i >= a.len {
		return fmt.Errorf("ondisk: index %d out of range (len %d)", i, a.len)
	}
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], value)
	_, err := a.f.WriteAt(buf[:], a.off+8*i)
	return err
}

func (a *Uint64Array) Get(i int64) (uint64, error) {
	if i < 0 || i >= a.len {
		return 0, fmt.Errorf("ondisk: index %d out of range (len %d)", i, a.len)
	}
	var buf [8]byte
	if _, err := a.f.ReadAt(buf[:], a.off+8*i); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}
