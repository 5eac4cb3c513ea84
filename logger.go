// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package ggb

import (
	"io"
	"log/slog"
)

// discardLogger is the default logger for every builder and store: silent
// unless the caller opts in with WithBuilderLogger.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// logSoftReject logs a Put that was refused without changing builder state.
func logSoftReject(logger *slog.Logger, key Key, reason string) {
	logger.Warn("put rejected", "key", uint64(key), "reason", reason)
}

// logDefunct logs a Put or Build attempted after the builder was finalized.
func logDefunct(logger *slog.Logger, op string) {
	logger.Warn("operation attempted on defunct builder", "op", op)
}

// logBuild logs the summary of a completed build.
func logBuild(logger *slog.Logger, engine string, numKeys, tensorSize int) {
	logger.Info("build completed",
		"engine", engine,
		"num_keys", numKeys,
		"tensor_size", tensorSize,
	)
}
