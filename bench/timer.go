// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package bench

import (
	"log/slog"
	"time"
)

// ScopedTimer measures elapsed wall-clock time from construction to
// Stop, then invokes a callback with the elapsed microseconds. Meant
// to be constructed and deferred-Stop in the same scope; it is not
// safe to retain past that scope.
type ScopedTimer struct {
	start  time.Time
	cb     func(elapsedUs int64)
	logger *slog.Logger
}

// NewScopedTimer starts a timer that reports elapsed microseconds to cb.
func NewScopedTimer(cb func(elapsedUs int64)) *ScopedTimer {
	return &ScopedTimer{start: time.Now(), cb: cb, logger: discardLogger()}
}

// NewNamedScopedTimer starts a timer that logs its elapsed duration
// under op at Info level instead of reporting to a caller-supplied
// callback.
func NewNamedScopedTimer(op string, logger *slog.Logger) *ScopedTimer {
	if logger == nil {
		logger = discardLogger()
	}
	t := &ScopedTimer{start: time.Now(), logger: logger}
	t.cb = func(us int64) {
		logger.Info(op, "elapsed_ms", float64(us)/1000.0)
	}
	return t
}

// Stop computes the elapsed time and invokes the timer's callback. Any
// panic from the callback is recovered and logged, never propagated --
// a ScopedTimer is typically deferred, and a panicking destructor is
// never acceptable.
func (t *ScopedTimer) Stop() {
	elapsedUs := time.Since(t.start).Microseconds()
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("panic in ScopedTimer callback", "recovered", r)
		}
	}()
	t.cb(elapsedUs)
}
