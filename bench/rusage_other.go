// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

//go:build !linux

package bench

// CaptureIOSnapshot reports PlatformUnavailable on any OS other than
// Linux: the getrusage(2) fields this package reports on
// (ru_maxrss/ru_inblock/ru_nvcsw/ru_nivcsw) are either absent or carry
// different units on Darwin and Windows, and this project doesn't need
// them enough to maintain per-OS conversions.
func CaptureIOSnapshot() IOSnapshot {
	return IOSnapshot{Available: false}
}
