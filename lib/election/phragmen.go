// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package election

import (
	"math/big"
)

// seqPhragmen elects count winners, one per round, picking the
// candidate with the minimal score
//
//	(1 + Σ stake_v × load_v) / Σ stake_v
//
// over the voters approving it, ties broken by ingestion order. The
// winner's score becomes the new load of every voter approving it, so
// later rounds account for stake already used. All arithmetic is
// exact rational; floating point would break bit-for-bit
// reproducibility against the on-chain computation.
func seqPhragmen(g *graph, count int) error {
	one := new(big.Rat).SetInt64(1)
	product := new(big.Rat)

	for round := 0; round < count; round++ {
		var best *candidateNode
		var bestScore *big.Rat
		var fallback *candidateNode

		for _, candidate := range g.candidates {
			if candidate.elected {
				continue
			}
			// No approving stake: sentinel, only electable when no
			// candidate with real backing remains (self-stake-only
			// datasets can still fill the set).
			if candidate.approvalStake.Sign() == 0 {
				if fallback == nil {
					fallback = candidate
				}
				continue
			}

			score := new(big.Rat).Set(one)
			for _, e := range candidate.backers {
				product.Mul(e.voter.stakeRat, e.voter.load)
				score.Add(score, product)
			}
			score.Quo(score, candidate.approvalStake)

			if bestScore == nil || score.Cmp(bestScore) < 0 {
				best = candidate
				bestScore = score
			}
		}

		if best == nil {
			best = fallback
		}
		if best == nil {
			return &AlgorithmError{
				Algorithm: SequentialPhragmen,
				Message:   "no electable candidate left before the active set was filled",
			}
		}

		best.elected = true
		best.electedRound = round

		if bestScore != nil {
			for _, e := range best.backers {
				e.load.Sub(bestScore, e.voter.load)
				e.voter.load.Set(bestScore)
			}
		}
	}

	distributeByLoad(g)
	return nil
}

// distributeByLoad converts edge loads into rational stake weights:
// each voter's stake splits across its elected targets proportionally
// to the load attributed to each at election time. The per-edge loads
// of a voter telescope to its final load, so the weights sum to the
// voter's stake exactly.
func distributeByLoad(g *graph) {
	for _, v := range g.voters {
		if v.load.Sign() == 0 {
			continue
		}
		for _, e := range v.edges {
			if !e.candidate.elected || e.load.Sign() <= 0 {
				continue
			}
			e.weight.Mul(v.stakeRat, new(big.Rat).Quo(e.load, v.load))
		}
	}
}
