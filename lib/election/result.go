// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package election

// Result is the immutable outcome of one election execution.
type Result struct {
	// SelectedValidators is the active set in selection order.
	SelectedValidators []SelectedValidator `json:"selected_validators"`
	// StakeDistribution lists how each voter's stake is allocated
	// across the winners it approves, including candidate
	// self-allocations.
	StakeDistribution []StakeAllocation `json:"stake_distribution"`
	// TotalStake is the total participating stake. It equals the sum
	// of all allocation amounts exactly.
	TotalStake *Stake `json:"total_stake"`
	// AlgorithmUsed is the algorithm that produced the result.
	AlgorithmUsed Algorithm `json:"algorithm_used"`
	// ExecutionMetadata describes the execution itself.
	ExecutionMetadata ExecutionMetadata `json:"execution_metadata"`
}

// SelectedValidator is one winner of the election.
type SelectedValidator struct {
	AccountID string `json:"account_id"`
	// TotalBackingStake is the stake attributed to this validator
	// across all allocations.
	TotalBackingStake *Stake `json:"total_backing_stake"`
	// NominatorCount is the number of distinct nominators whose
	// distribution includes this validator. Self-allocations do
	// not count.
	NominatorCount uint32 `json:"nominator_count"`
	// Rank is the 1-based selection position.
	Rank uint32 `json:"rank,omitempty"`
}

// StakeAllocation attributes part of a voter's stake to a winner.
type StakeAllocation struct {
	NominatorID string `json:"nominator_id"`
	ValidatorID string `json:"validator_id"`
	Amount      *Stake `json:"amount"`
	// Proportion is the fraction of the voter's stake allocated to
	// the validator, in [0,1]. It is derived for external
	// consumption only and never feeds back into computation.
	Proportion float64 `json:"proportion"`
}

// ExecutionMetadata describes when and from what provenance a result
// was computed.
type ExecutionMetadata struct {
	BlockNumber        *uint64 `json:"block_number,omitempty"`
	ExecutionTimestamp string  `json:"execution_timestamp,omitempty"`
	DataSource         string  `json:"data_source,omitempty"`
}
