// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package election

import (
	"fmt"
	"strings"
)

// Dataset is the complete state needed to run an election: the
// candidates in ingestion order (which is the tie-break authority for
// the algorithms), the nominators, and optional provenance metadata.
type Dataset struct {
	Candidates []Candidate `json:"candidates"`
	Nominators []Nominator `json:"nominators"`
	Metadata   *Metadata   `json:"metadata,omitempty"`
}

// Metadata describes where the dataset came from.
type Metadata struct {
	// BlockNumber is the source block if the data came from a chain.
	BlockNumber *uint64 `json:"block_number,omitempty"`
	// Chain is the chain name if the data came from a chain.
	Chain string `json:"chain,omitempty"`
}

// NewDataset returns an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{}
}

// AddCandidate appends a candidate, rejecting duplicate account ids.
func (d *Dataset) AddCandidate(candidate Candidate) error {
	for _, existing := range d.Candidates {
		if existing.AccountID == candidate.AccountID {
			return newValidationError("candidates",
				"duplicate candidate account id %q", candidate.AccountID)
		}
	}
	d.Candidates = append(d.Candidates, candidate)
	return nil
}

// AddNominator appends a nominator, rejecting duplicate account ids.
func (d *Dataset) AddNominator(nominator Nominator) error {
	for _, existing := range d.Nominators {
		if existing.AccountID == nominator.AccountID {
			return newValidationError("nominators",
				"duplicate nominator account id %q", nominator.AccountID)
		}
	}
	d.Nominators = append(d.Nominators, nominator)
	return nil
}

// Validate enforces the dataset invariants: at least one candidate,
// pairwise unique candidate and nominator ids, and every nominator
// target matching an existing candidate.
func (d *Dataset) Validate() error {
	if len(d.Candidates) == 0 {
		return newValidationError("candidates",
			"dataset must contain at least one candidate")
	}

	candidateIDs := make(map[string]struct{}, len(d.Candidates))
	for _, candidate := range d.Candidates {
		if candidate.Stake == nil {
			return newValidationError("candidates",
				"candidate %q has no stake", candidate.AccountID)
		}
		if candidate.Stake.Sign() < 0 {
			return newValidationError("candidates",
				"candidate %q has negative stake", candidate.AccountID)
		}
		if _, duplicate := candidateIDs[candidate.AccountID]; duplicate {
			return newValidationError("candidates",
				"duplicate candidate account id %q", candidate.AccountID)
		}
		candidateIDs[candidate.AccountID] = struct{}{}
	}

	nominatorIDs := make(map[string]struct{}, len(d.Nominators))
	for _, nominator := range d.Nominators {
		if nominator.Stake == nil {
			return newValidationError("nominators",
				"nominator %q has no stake", nominator.AccountID)
		}
		if nominator.Stake.Sign() < 0 {
			return newValidationError("nominators",
				"nominator %q has negative stake", nominator.AccountID)
		}
		if _, duplicate := nominatorIDs[nominator.AccountID]; duplicate {
			return newValidationError("nominators",
				"duplicate nominator account id %q", nominator.AccountID)
		}
		nominatorIDs[nominator.AccountID] = struct{}{}

		for _, target := range nominator.Targets {
			if _, known := candidateIDs[target]; !known {
				return newValidationError("nominators.targets",
					"nominator %q votes for non-existent candidate %q. Available candidates: %s",
					nominator.AccountID, target, d.candidateSample())
			}
		}
	}

	return nil
}

// Copy deep copies the dataset so overrides never mutate the
// caller's original.
func (d *Dataset) Copy() *Dataset {
	copied := &Dataset{
		Candidates: make([]Candidate, 0, len(d.Candidates)),
		Nominators: make([]Nominator, 0, len(d.Nominators)),
	}
	for i := range d.Candidates {
		copied.Candidates = append(copied.Candidates, d.Candidates[i].copy())
	}
	for i := range d.Nominators {
		copied.Nominators = append(copied.Nominators, d.Nominators[i].copy())
	}
	if d.Metadata != nil {
		metadata := *d.Metadata
		if d.Metadata.BlockNumber != nil {
			block := *d.Metadata.BlockNumber
			metadata.BlockNumber = &block
		}
		copied.Metadata = &metadata
	}
	return copied
}

// candidateSample lists up to five candidate ids for error messages.
func (d *Dataset) candidateSample() string {
	const maxSample = 5
	sample := make([]string, 0, maxSample)
	for _, candidate := range d.Candidates {
		if len(sample) == maxSample {
			break
		}
		sample = append(sample, candidate.AccountID)
	}
	listed := strings.Join(sample, ", ")
	if remaining := len(d.Candidates) - len(sample); remaining > 0 {
		listed = fmt.Sprintf("%s (and %d more)", listed, remaining)
	}
	return listed
}
