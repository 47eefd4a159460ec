// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package election

// Candidate is an entity eligible for selection into the active
// validator set. It is immutable once part of a working dataset,
// except through overrides applied to a copy.
type Candidate struct {
	// AccountID is the opaque unique identifier of the candidate.
	AccountID string `json:"account_id"`
	// Stake is the candidate's non-negative self-stake.
	Stake *Stake `json:"stake"`
	// Metadata is optional on-chain information.
	Metadata *CandidateMetadata `json:"metadata,omitempty"`
}

// CandidateMetadata is optional candidate information carried through
// the serialization boundary but not used by the algorithms.
type CandidateMetadata struct {
	// CommissionRate is the commission percentage (0-100).
	CommissionRate *uint8 `json:"commission_rate,omitempty"`
	// OnChainStatus is the candidate status reported by the chain.
	OnChainStatus string `json:"on_chain_status,omitempty"`
}

// NewCandidate returns a candidate with the given id and self-stake.
func NewCandidate(accountID string, stake *Stake) Candidate {
	return Candidate{
		AccountID: accountID,
		Stake:     stake,
	}
}

func (c *Candidate) copy() Candidate {
	copied := Candidate{
		AccountID: c.AccountID,
		Stake:     c.Stake.Clone(),
	}
	if c.Metadata != nil {
		metadata := *c.Metadata
		if c.Metadata.CommissionRate != nil {
			rate := *c.Metadata.CommissionRate
			metadata.CommissionRate = &rate
		}
		copied.Metadata = &metadata
	}
	return copied
}
