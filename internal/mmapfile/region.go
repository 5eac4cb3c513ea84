// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package mmapfile provides a scoped, read-only memory mapping of a
// file with kernel advice hints. It is the Go rendering of the
// original's MmapRegion: acquired on construction, released exactly
// once on Close, never copied.
package mmapfile

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/edsrzf/mmap-go"
	"golang.org/x/sys/unix"
)

// ErrEmptyFile is returned by Open when path refers to a zero-length
// file -- mmap of an empty file is illegal, and a zero-length backing
// file never indicates a usable store.
var ErrEmptyFile = errors.New("mmapfile: cannot map an empty file")

// Region is a read-only memory mapping of a file. The zero value is
// not usable; construct with Open. Region is safe to read from
// multiple goroutines concurrently (it never mutates its mapping), but
// must not be copied -- pass a *Region.
type Region struct {
	m    mmap.MMap
	f    *os.File
	once sync.Once
}

// Open maps the file at path read-only and returns a Region over it.
// The mapping uses mmap-go's RDONLY mode, which is PROT_READ with
// MAP_SHARED; it is not a MAP_PRIVATE mapping. The caller must call Close when done.
func Open(path string) (*Region, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mmapfile.Open: %w", err)
	}

	stat, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("mmapfile.Open: stat: %w", err)
	}
	if stat.Size() == 0 {
		_ = f.Close()
		return nil, ErrEmptyFile
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("mmapfile.Open: mmap: %w", err)
	}

	r := &Region{m: m, f: f}
	runtime.SetFinalizer(r, (*Region).Close)
	return r, nil
}

// Advise passes an madvise hint (e.g. unix.MADV_RANDOM,
// unix.MADV_SEQUENTIAL) to the kernel for this mapping. Best-effort:
// an error here never makes the mapping unusable.
func (r *Region) Advise(advice int) error {
	if err := unix.Madvise(r.m, advice); err != nil {
		return fmt.Errorf("mmapfile: madvise: %w", err)
	}
	return nil
}

// Data returns the mapped bytes. The slice is valid until Close.
func (r *Region) Data() []byte {
	return r.m
}

// Len returns the size of the mapping in bytes.
func (r *Region) Len() int {
	return len(r.m)
}

// Close unmaps the region and closes the backing file descriptor. It
// is safe to call multiple times and safe to call concurrently; only
// the first call does any work.
func (r *Region) Close() error {
	var err error
	r.once.Do(func() {
		runtime.SetFinalizer(r, nil)
		if unmapErr := r.m.Unmap(); unmapErr != nil {
			err = fmt.Errorf("mmapfile: unmap: %w", unmapErr)
		}
		if closeErr := r.f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("mmapfile: close: %w", closeErr)
		}
	})
	return err
}
