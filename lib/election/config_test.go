// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package election

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_BuildConfig(t *testing.T) {
	t.Parallel()

	config, err := BuildConfig(Config{
		Algorithm:     ParallelPhragmen,
		ActiveSetSize: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, ParallelPhragmen, config.Algorithm)
	assert.Equal(t, uint32(4), config.ActiveSetSize)

	_, err = BuildConfig(Config{Algorithm: SequentialPhragmen})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "active_set_size", validationErr.Field)
}

func Test_Config_ValidateAgainstData(t *testing.T) {
	t.Parallel()

	config := Config{ActiveSetSize: 5}
	assert.NoError(t, config.ValidateAgainstData(5))
	assert.NoError(t, config.ValidateAgainstData(6))

	err := config.ValidateAgainstData(3)
	var insufficientErr *InsufficientCandidatesError
	require.ErrorAs(t, err, &insufficientErr)
	assert.Equal(t, uint32(5), insufficientErr.Requested)
	assert.Equal(t, uint32(3), insufficientErr.Available)
}
