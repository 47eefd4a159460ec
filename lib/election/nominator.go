// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package election

// Nominator is a stakeholder backing one or more candidates with its
// stake. A nominator with zero targets participates in no edge but is
// not itself an error.
type Nominator struct {
	// AccountID is the opaque unique identifier of the nominator.
	AccountID string `json:"account_id"`
	// Stake is the total stake available for voting.
	Stake *Stake `json:"stake"`
	// Targets is the ordered list of approved candidate ids.
	// Duplicates are ignored during algorithm input preparation.
	Targets []string `json:"targets"`
	// Metadata is optional free-form information.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// NewNominator returns a nominator with the given id, stake and targets.
func NewNominator(accountID string, stake *Stake, targets ...string) Nominator {
	return Nominator{
		AccountID: accountID,
		Stake:     stake,
		Targets:   targets,
	}
}

// AddTarget inserts a target if absent. It is idempotent.
func (n *Nominator) AddTarget(candidateID string) {
	for _, target := range n.Targets {
		if target == candidateID {
			return
		}
	}
	n.Targets = append(n.Targets, candidateID)
}

// RemoveTarget deletes all occurrences of the target.
func (n *Nominator) RemoveTarget(candidateID string) {
	kept := n.Targets[:0]
	for _, target := range n.Targets {
		if target != candidateID {
			kept = append(kept, target)
		}
	}
	n.Targets = kept
}

func (n *Nominator) copy() Nominator {
	copied := Nominator{
		AccountID: n.AccountID,
		Stake:     n.Stake.Clone(),
		Targets:   make([]string, len(n.Targets)),
	}
	copy(copied.Targets, n.Targets)
	if n.Metadata != nil {
		copied.Metadata = make(map[string]string, len(n.Metadata))
		for key, value := range n.Metadata {
			copied.Metadata[key] = value
		}
	}
	return copied
}
