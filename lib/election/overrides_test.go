// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package election

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func overridesTestDataset() *Dataset {
	return &Dataset{
		Candidates: []Candidate{
			NewCandidate("alice", NewStake(100)),
			NewCandidate("bob", NewStake(200)),
		},
		Nominators: []Nominator{
			NewNominator("nom-1", NewStake(50), "alice"),
			NewNominator("nom-2", NewStake(60), "alice", "bob"),
		},
	}
}

func Test_Overrides_Apply_stakes(t *testing.T) {
	t.Parallel()

	overrides := NewOverrides()
	overrides.SetCandidateStake("alice", NewStake(777))
	overrides.SetNominatorStake("nom-2", NewStake(5))
	overrides.SetCandidateStake("ghost", NewStake(1)) // unknown id, skipped

	dataset := overridesTestDataset()
	require.NoError(t, overrides.Apply(dataset))

	assert.Equal(t, "777", dataset.Candidates[0].Stake.Text(10))
	assert.Equal(t, "200", dataset.Candidates[1].Stake.Text(10))
	assert.Equal(t, "50", dataset.Nominators[0].Stake.Text(10))
	assert.Equal(t, "5", dataset.Nominators[1].Stake.Text(10))
}

func Test_Overrides_Apply_stakeIsCloned(t *testing.T) {
	t.Parallel()

	override := NewStake(777)
	overrides := NewOverrides()
	overrides.SetCandidateStake("alice", override)

	dataset := overridesTestDataset()
	require.NoError(t, overrides.Apply(dataset))

	// Mutating the override value after Apply must not leak into the
	// dataset; Apply needs to be repeatable across working copies.
	override.SetUint64(1)
	assert.Equal(t, "777", dataset.Candidates[0].Stake.Text(10))
}

func Test_Overrides_Apply_edges(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		modify          func(o *Overrides)
		expectedTargets map[string][]string
	}{
		"add new edge": {
			modify: func(o *Overrides) { o.AddEdge("nom-1", "bob") },
			expectedTargets: map[string][]string{
				"nom-1": {"alice", "bob"},
				"nom-2": {"alice", "bob"},
			},
		},
		"add is idempotent": {
			modify: func(o *Overrides) {
				o.AddEdge("nom-1", "bob")
				o.AddEdge("nom-1", "bob")
			},
			expectedTargets: map[string][]string{
				"nom-1": {"alice", "bob"},
				"nom-2": {"alice", "bob"},
			},
		},
		"remove edge": {
			modify: func(o *Overrides) { o.RemoveEdge("nom-2", "alice") },
			expectedTargets: map[string][]string{
				"nom-1": {"alice"},
				"nom-2": {"bob"},
			},
		},
		"remove absent edge is a no-op": {
			modify: func(o *Overrides) { o.RemoveEdge("nom-1", "bob") },
			expectedTargets: map[string][]string{
				"nom-1": {"alice"},
				"nom-2": {"alice", "bob"},
			},
		},
		"unknown nominator is skipped": {
			modify: func(o *Overrides) { o.AddEdge("ghost", "alice") },
			expectedTargets: map[string][]string{
				"nom-1": {"alice"},
				"nom-2": {"alice", "bob"},
			},
		},
		"replace keeps the edge set": {
			modify: func(o *Overrides) {
				o.VotingEdges = append(o.VotingEdges, EdgeModification{
					Action:      EdgeReplace,
					NominatorID: "nom-2",
					CandidateID: "alice",
					Weight:      NewStake(999),
				})
			},
			expectedTargets: map[string][]string{
				"nom-1": {"alice"},
				"nom-2": {"bob", "alice"},
			},
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			overrides := NewOverrides()
			testCase.modify(overrides)

			dataset := overridesTestDataset()
			require.NoError(t, overrides.Apply(dataset))

			for i := range dataset.Nominators {
				nominator := dataset.Nominators[i]
				assert.Equal(t, testCase.expectedTargets[nominator.AccountID],
					nominator.Targets, "nominator %s", nominator.AccountID)
			}
		})
	}
}

func Test_Overrides_Apply_unknownAction(t *testing.T) {
	t.Parallel()

	overrides := NewOverrides()
	overrides.VotingEdges = append(overrides.VotingEdges, EdgeModification{
		Action:      EdgeAction("swap"),
		NominatorID: "nom-1",
		CandidateID: "alice",
	})

	err := overrides.Apply(overridesTestDataset())
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "voting_edges", validationErr.Field)
}

func Test_Overrides_Empty(t *testing.T) {
	t.Parallel()

	var nilOverrides *Overrides
	assert.True(t, nilOverrides.Empty())
	assert.True(t, NewOverrides().Empty())

	overrides := NewOverrides()
	overrides.AddEdge("n", "c")
	assert.False(t, overrides.Empty())
}

func Test_ParseStakeDirective(t *testing.T) {
	t.Parallel()

	accountID, stake, err := ParseStakeDirective("alice=1500000000")
	require.NoError(t, err)
	assert.Equal(t, "alice", accountID)
	assert.Equal(t, "1500000000", stake.Text(10))

	_, _, err = ParseStakeDirective("alice")
	assert.ErrorAs(t, err, new(*ValidationError))

	_, _, err = ParseStakeDirective("alice=not-a-number")
	assert.ErrorAs(t, err, new(*ValidationError))

	_, _, err = ParseStakeDirective("=100")
	assert.ErrorAs(t, err, new(*ValidationError))
}

func Test_ParseEdgeDirective(t *testing.T) {
	t.Parallel()

	nominatorID, candidateID, err := ParseEdgeDirective("nom-1=alice")
	require.NoError(t, err)
	assert.Equal(t, "nom-1", nominatorID)
	assert.Equal(t, "alice", candidateID)

	_, _, err = ParseEdgeDirective("nom-1")
	assert.ErrorAs(t, err, new(*ValidationError))

	_, _, err = ParseEdgeDirective("nom-1=")
	assert.ErrorAs(t, err, new(*ValidationError))
}
