// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

//go:build linux

package bench

import (
	"log/slog"
	"os"

	"golang.org/x/sys/unix"
)

// evictPageCache asks the kernel to drop the page cache entries for
// path, so a subsequent flat-mmap gather measures cold-cache behavior.
// Best-effort: any failure is logged and non-fatal, and the benchmark
// proceeds warm.
func evictPageCache(path string, logger *slog.Logger) {
	f, err := os.Open(path)
	if err != nil {
		logger.Warn("page-cache eviction: open failed, continuing warm", "path", path, "error", err)
		return
	}
	defer func() { _ = f.Close() }()

	if err := unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_DONTNEED); err != nil {
		logger.Warn("page-cache eviction: fadvise failed, continuing warm", "path", path, "error", err)
	}
}
