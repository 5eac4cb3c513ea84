// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package ggb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewBuilder_DispatchesOnConfigType(t *testing.T) {
	inMem, err := NewBuilder(InMemoryConfig{})
	require.NoError(t, err)
	require.IsType(t, &inMemoryBuilder{}, inMem)

	flat, err := NewBuilder(FlatMmapConfig{DBPath: filepath.Join(t.TempDir(), "store.bin")})
	require.NoError(t, err)
	require.IsType(t, &flatMmapBuilder{}, flat)
}

type unknownEngineConfig struct{}

func (unknownEngineConfig) isEngineConfig() {}

func TestNewBuilder_UnknownConfigErrors(t *testing.T) {
	_, err := NewBuilder(unknownEngineConfig{})
	require.Error(t, err)
}
