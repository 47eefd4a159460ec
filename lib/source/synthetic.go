// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package source

import (
	"fmt"
	"math/rand"

	"github.com/Quality-Assurance-DAO/Offline-election-tool/lib/election"
)

// SyntheticOptions parameterise the synthetic dataset generator.
// The zero value of each field selects the corresponding default.
type SyntheticOptions struct {
	// Candidates is the number of candidates to generate (default 10).
	Candidates uint32
	// Nominators is the number of nominators to generate (default 50).
	Nominators uint32
	// MaxTargets is the maximum number of targets per nominator,
	// capped at 16 as on chain (default 4).
	MaxTargets uint32
	// BaseStake is the minimum stake per entity (default 1_000_000).
	BaseStake uint64
	// Seed seeds the generator. The same seed always produces the
	// same dataset.
	Seed int64
}

const (
	defaultSyntheticCandidates = 10
	defaultSyntheticNominators = 50
	defaultSyntheticMaxTargets = 4
	defaultSyntheticBaseStake  = 1_000_000
	maxNominatorTargets        = 16
)

func (o *SyntheticOptions) setDefaults() {
	if o.Candidates == 0 {
		o.Candidates = defaultSyntheticCandidates
	}
	if o.Nominators == 0 {
		o.Nominators = defaultSyntheticNominators
	}
	if o.MaxTargets == 0 {
		o.MaxTargets = defaultSyntheticMaxTargets
	}
	if o.MaxTargets > maxNominatorTargets {
		o.MaxTargets = maxNominatorTargets
	}
	if o.BaseStake == 0 {
		o.BaseStake = defaultSyntheticBaseStake
	}
}

// GenerateSynthetic builds a reproducible random dataset. Account ids
// encode their role and index so failures stay readable, and every
// nominator receives between one and MaxTargets distinct targets.
func GenerateSynthetic(options SyntheticOptions) (*election.Dataset, error) {
	options.setDefaults()

	if options.MaxTargets > options.Candidates {
		options.MaxTargets = options.Candidates
	}

	rng := rand.New(rand.NewSource(options.Seed)) //skipcq: GSC-G404

	dataset := election.NewDataset()
	dataset.Metadata = &election.Metadata{Chain: "synthetic"}

	candidateIDs := make([]string, options.Candidates)
	for i := uint32(0); i < options.Candidates; i++ {
		candidateIDs[i] = fmt.Sprintf("candidate-%04d", i)
		stake := election.NewStake(options.BaseStake + uint64(rng.Int63n(int64(options.BaseStake)*10)))
		if err := dataset.AddCandidate(election.NewCandidate(candidateIDs[i], stake)); err != nil {
			return nil, err
		}
	}

	for i := uint32(0); i < options.Nominators; i++ {
		targetCount := 1 + rng.Intn(int(options.MaxTargets))
		targets := make([]string, 0, targetCount)
		seen := make(map[string]struct{}, targetCount)
		for len(targets) < targetCount {
			target := candidateIDs[rng.Intn(len(candidateIDs))]
			if _, duplicate := seen[target]; duplicate {
				continue
			}
			seen[target] = struct{}{}
			targets = append(targets, target)
		}

		stake := election.NewStake(options.BaseStake + uint64(rng.Int63n(int64(options.BaseStake)*100)))
		nominator := election.NewNominator(fmt.Sprintf("nominator-%04d", i), stake, targets...)
		if err := dataset.AddNominator(nominator); err != nil {
			return nil, err
		}
	}

	return dataset, nil
}
