// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package election

import (
	"strings"
)

// EdgeAction is the kind of voting edge modification.
type EdgeAction string

const (
	// EdgeAdd inserts a target if absent. It is idempotent.
	EdgeAdd EdgeAction = "add"
	// EdgeRemove deletes all occurrences of a target.
	EdgeRemove EdgeAction = "remove"
	// EdgeReplace removes then re-adds the same target. It has no
	// observable effect unless combined with a stake override; the
	// optional weight is carried on the wire but not used.
	EdgeReplace EdgeAction = "replace"
)

// EdgeModification is one ordered change to a nominator's targets.
type EdgeModification struct {
	Action      EdgeAction `json:"action"`
	NominatorID string     `json:"nominator_id"`
	CandidateID string     `json:"candidate_id"`
	// Weight is accepted for wire compatibility and ignored.
	Weight *Stake `json:"weight,omitempty"`
}

// Overrides hypothesize dataset changes: replacement stakes by account
// id plus an ordered list of edge modifications. They are applied to a
// copy of the dataset, exactly once per execution, and are best-effort:
// ids absent from the dataset are silently skipped.
type Overrides struct {
	CandidateStakes map[string]*Stake  `json:"candidate_stakes,omitempty"`
	NominatorStakes map[string]*Stake  `json:"nominator_stakes,omitempty"`
	VotingEdges     []EdgeModification `json:"voting_edges,omitempty"`
}

// NewOverrides returns an empty override set.
func NewOverrides() *Overrides {
	return &Overrides{
		CandidateStakes: make(map[string]*Stake),
		NominatorStakes: make(map[string]*Stake),
	}
}

// SetCandidateStake records a replacement stake for a candidate.
func (o *Overrides) SetCandidateStake(accountID string, stake *Stake) {
	if o.CandidateStakes == nil {
		o.CandidateStakes = make(map[string]*Stake)
	}
	o.CandidateStakes[accountID] = stake
}

// SetNominatorStake records a replacement stake for a nominator.
func (o *Overrides) SetNominatorStake(accountID string, stake *Stake) {
	if o.NominatorStakes == nil {
		o.NominatorStakes = make(map[string]*Stake)
	}
	o.NominatorStakes[accountID] = stake
}

// AddEdge records an edge addition.
func (o *Overrides) AddEdge(nominatorID, candidateID string) {
	o.VotingEdges = append(o.VotingEdges, EdgeModification{
		Action:      EdgeAdd,
		NominatorID: nominatorID,
		CandidateID: candidateID,
	})
}

// RemoveEdge records an edge removal.
func (o *Overrides) RemoveEdge(nominatorID, candidateID string) {
	o.VotingEdges = append(o.VotingEdges, EdgeModification{
		Action:      EdgeRemove,
		NominatorID: nominatorID,
		CandidateID: candidateID,
	})
}

// Empty reports whether the override set contains no modifications.
func (o *Overrides) Empty() bool {
	return o == nil ||
		(len(o.CandidateStakes) == 0 &&
			len(o.NominatorStakes) == 0 &&
			len(o.VotingEdges) == 0)
}

// Apply modifies the given dataset in place. The dataset is expected
// to be a working copy; the engine never passes the caller's original.
func (o *Overrides) Apply(dataset *Dataset) error {
	for i := range dataset.Candidates {
		if stake, ok := o.CandidateStakes[dataset.Candidates[i].AccountID]; ok {
			dataset.Candidates[i].Stake = stake.Clone()
		}
	}

	for i := range dataset.Nominators {
		if stake, ok := o.NominatorStakes[dataset.Nominators[i].AccountID]; ok {
			dataset.Nominators[i].Stake = stake.Clone()
		}
	}

	for _, modification := range o.VotingEdges {
		nominator := findNominator(dataset, modification.NominatorID)
		if nominator == nil {
			continue // best-effort, mirrors the stake override policy
		}
		switch modification.Action {
		case EdgeAdd:
			nominator.AddTarget(modification.CandidateID)
		case EdgeRemove:
			nominator.RemoveTarget(modification.CandidateID)
		case EdgeReplace:
			nominator.RemoveTarget(modification.CandidateID)
			nominator.AddTarget(modification.CandidateID)
		default:
			return newValidationError("voting_edges",
				"unknown edge action %q", modification.Action)
		}
	}

	return nil
}

func findNominator(dataset *Dataset, accountID string) *Nominator {
	for i := range dataset.Nominators {
		if dataset.Nominators[i].AccountID == accountID {
			return &dataset.Nominators[i]
		}
	}
	return nil
}

// ParseStakeDirective parses an "account_id=stake" override directive
// as accepted by the CLI and API surfaces.
func ParseStakeDirective(directive string) (accountID string, stake *Stake, err error) {
	parts := strings.SplitN(directive, "=", 2)
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" {
		return "", nil, newValidationError("overrides",
			"invalid stake override %q, expected format account_id=stake", directive)
	}

	stake, err = NewStakeFromString(strings.TrimSpace(parts[1]))
	if err != nil {
		return "", nil, newValidationError("overrides",
			"invalid stake value in override %q", directive)
	}

	return strings.TrimSpace(parts[0]), stake, nil
}

// ParseEdgeDirective parses a "nominator_id=candidate_id" edge
// directive as accepted by the CLI surface.
func ParseEdgeDirective(directive string) (nominatorID, candidateID string, err error) {
	parts := strings.SplitN(directive, "=", 2)
	if len(parts) != 2 ||
		strings.TrimSpace(parts[0]) == "" ||
		strings.TrimSpace(parts[1]) == "" {
		return "", "", newValidationError("overrides",
			"invalid edge directive %q, expected format nominator_id=candidate_id", directive)
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}
