// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

//go:build !linux

package bench

import "log/slog"

// evictPageCache is a no-op outside Linux: posix_fadvise's semantics
// and availability vary too much across other Unixes to rely on here.
func evictPageCache(path string, logger *slog.Logger) {
	logger.Warn("page-cache eviction unsupported on this platform, continuing warm", "path", path)
}
