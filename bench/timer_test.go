// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package bench

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestScopedTimer_ReportsElapsed(t *testing.T) {
	var got int64
	timer := NewScopedTimer(func(us int64) { got = us })
	time.Sleep(2 * time.Millisecond)
	timer.Stop()

	require.Greater(t, got, int64(0))
}

func TestScopedTimer_RecoversPanicInCallback(t *testing.T) {
	timer := NewScopedTimer(func(int64) { panic("boom") })
	require.NotPanics(t, timer.Stop)
}
