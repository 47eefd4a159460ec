// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package election

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Hand-computed reference election. Candidates carry no self-stake so
// the arithmetic below stays checkable on paper.
//
//	nominator-1: stake 10, approves a
//	nominator-2: stake 20, approves a, b
//	nominator-3: stake 30, approves b, c
//
// Round 1 scores: a=1/30, b=1/50, c=1/30 → b wins.
// Round 2: a=(1+20/50)/30=7/150, c=(1+30/50)/30=8/150 → a wins.
// Equalization then moves nominator-2 entirely onto a, levelling the
// supports of a and b at 30 each.
func newReferenceDataset(t *testing.T) *Dataset {
	t.Helper()

	dataset := NewDataset()
	require.NoError(t, dataset.AddCandidate(NewCandidate("a", NewStake(0))))
	require.NoError(t, dataset.AddCandidate(NewCandidate("b", NewStake(0))))
	require.NoError(t, dataset.AddCandidate(NewCandidate("c", NewStake(0))))
	require.NoError(t, dataset.AddNominator(NewNominator("nominator-1", NewStake(10), "a")))
	require.NoError(t, dataset.AddNominator(NewNominator("nominator-2", NewStake(20), "a", "b")))
	require.NoError(t, dataset.AddNominator(NewNominator("nominator-3", NewStake(30), "b", "c")))
	return dataset
}

func Test_seqPhragmen_referenceElection(t *testing.T) {
	t.Parallel()

	dataset := newReferenceDataset(t)
	config := Config{Algorithm: SequentialPhragmen, ActiveSetSize: 2}

	result, err := NewEngine().Execute(config, dataset)
	require.NoError(t, err)

	require.Len(t, result.SelectedValidators, 2)
	assert.Equal(t, "b", result.SelectedValidators[0].AccountID)
	assert.Equal(t, "a", result.SelectedValidators[1].AccountID)

	assert.Equal(t, "30", result.SelectedValidators[0].TotalBackingStake.Text(10))
	assert.Equal(t, "30", result.SelectedValidators[1].TotalBackingStake.Text(10))

	assert.Equal(t, uint32(1), result.SelectedValidators[0].NominatorCount)
	assert.Equal(t, uint32(2), result.SelectedValidators[1].NominatorCount)

	expected := []StakeAllocation{
		{NominatorID: "nominator-1", ValidatorID: "a", Amount: NewStake(10), Proportion: 1},
		{NominatorID: "nominator-2", ValidatorID: "a", Amount: NewStake(20), Proportion: 1},
		{NominatorID: "nominator-3", ValidatorID: "b", Amount: NewStake(30), Proportion: 1},
	}
	assert.Equal(t, expected, result.StakeDistribution)
	assert.Equal(t, "60", result.TotalStake.Text(10))
}

func Test_phragMMS_referenceElection(t *testing.T) {
	t.Parallel()

	// PhragMMS scores differently (round 1: a=30, b=50, c=30) but
	// lands on the same winner set here, and equalization produces
	// the identical attribution.
	dataset := newReferenceDataset(t)
	config := Config{Algorithm: ParallelPhragmen, ActiveSetSize: 2}

	result, err := NewEngine().Execute(config, dataset)
	require.NoError(t, err)

	require.Len(t, result.SelectedValidators, 2)
	assert.Equal(t, "b", result.SelectedValidators[0].AccountID)
	assert.Equal(t, "a", result.SelectedValidators[1].AccountID)
	assert.Equal(t, "30", result.SelectedValidators[0].TotalBackingStake.Text(10))
	assert.Equal(t, "30", result.SelectedValidators[1].TotalBackingStake.Text(10))
	assert.Equal(t, "60", result.TotalStake.Text(10))
}

func Test_seqPhragmen_tieBreaksByIngestionOrder(t *testing.T) {
	t.Parallel()

	// Identical stakes everywhere: every round is a pure tie and the
	// earlier candidate must win it.
	dataset := NewDataset()
	require.NoError(t, dataset.AddCandidate(NewCandidate("z-last-alphabetically", NewStake(100))))
	require.NoError(t, dataset.AddCandidate(NewCandidate("a-first-alphabetically", NewStake(100))))
	require.NoError(t, dataset.AddCandidate(NewCandidate("m-middle", NewStake(100))))

	config := Config{Algorithm: SequentialPhragmen, ActiveSetSize: 2}
	result, err := NewEngine().Execute(config, dataset)
	require.NoError(t, err)

	assert.Equal(t, "z-last-alphabetically", result.SelectedValidators[0].AccountID)
	assert.Equal(t, "a-first-alphabetically", result.SelectedValidators[1].AccountID)
}

func Test_phragMMS_tieBreaksByIngestionOrder(t *testing.T) {
	t.Parallel()

	dataset := NewDataset()
	require.NoError(t, dataset.AddCandidate(NewCandidate("second", NewStake(100))))
	require.NoError(t, dataset.AddCandidate(NewCandidate("first", NewStake(100))))

	config := Config{Algorithm: ParallelPhragmen, ActiveSetSize: 1}
	result, err := NewEngine().Execute(config, dataset)
	require.NoError(t, err)

	assert.Equal(t, "second", result.SelectedValidators[0].AccountID)
}

func Test_seqPhragmen_duplicateTargetsIgnored(t *testing.T) {
	t.Parallel()

	dataset := NewDataset()
	require.NoError(t, dataset.AddCandidate(NewCandidate("a", NewStake(0))))
	require.NoError(t, dataset.AddNominator(NewNominator("nominator-1", NewStake(100), "a", "a", "a")))

	config := Config{Algorithm: SequentialPhragmen, ActiveSetSize: 1}
	result, err := NewEngine().Execute(config, dataset)
	require.NoError(t, err)

	require.Len(t, result.StakeDistribution, 1)
	assert.Equal(t, "100", result.StakeDistribution[0].Amount.Text(10))
	assert.Equal(t, "100", result.TotalStake.Text(10))
}

func Test_seqPhragmen_indivisibleStakeConserved(t *testing.T) {
	t.Parallel()

	// 100 does not split evenly across three equally poor winners;
	// the leftover units must land deterministically and the sum must
	// still be exact.
	dataset := NewDataset()
	require.NoError(t, dataset.AddCandidate(NewCandidate("a", NewStake(0))))
	require.NoError(t, dataset.AddCandidate(NewCandidate("b", NewStake(0))))
	require.NoError(t, dataset.AddCandidate(NewCandidate("c", NewStake(0))))
	require.NoError(t, dataset.AddNominator(NewNominator("nominator-1", NewStake(100), "a", "b", "c")))

	config := Config{Algorithm: SequentialPhragmen, ActiveSetSize: 3}

	first, err := NewEngine().Execute(config, dataset)
	require.NoError(t, err)

	allocated := NewStake(0)
	for _, allocation := range first.StakeDistribution {
		allocated.Add(&allocated.Int, &allocation.Amount.Int)
	}
	assert.Equal(t, "100", allocated.Text(10))

	second, err := NewEngine().Execute(config, dataset)
	require.NoError(t, err)
	assert.Equal(t, first.StakeDistribution, second.StakeDistribution)
}

func Test_equalize_levelsSupports(t *testing.T) {
	t.Parallel()

	// One rich nominator approving both winners, one poor nominator
	// locked onto the first: equalization should push the flexible
	// stake toward the poorer winner.
	dataset := NewDataset()
	require.NoError(t, dataset.AddCandidate(NewCandidate("a", NewStake(0))))
	require.NoError(t, dataset.AddCandidate(NewCandidate("b", NewStake(0))))
	require.NoError(t, dataset.AddNominator(NewNominator("nominator-rich", NewStake(90), "a", "b")))
	require.NoError(t, dataset.AddNominator(NewNominator("nominator-poor", NewStake(10), "a")))

	config := Config{Algorithm: SequentialPhragmen, ActiveSetSize: 2}
	result, err := NewEngine().Execute(config, dataset)
	require.NoError(t, err)

	backing := make(map[string]string, 2)
	for _, validator := range result.SelectedValidators {
		backing[validator.AccountID] = validator.TotalBackingStake.Text(10)
	}
	assert.Equal(t, "50", backing["a"])
	assert.Equal(t, "50", backing["b"])
}
