// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package election

import (
	"math/big"
)

// phragMMS elects count winners with a max-min style greedy. Each
// round scores every remaining candidate by the support it would reach
// if each approving voter split its stake evenly across its already
// elected targets plus the candidate. The even share
// stake/(electedCount+1) is the support a backer can commit without
// taking more than an equal share away from any of its elected
// targets, so the score is the backing the candidate is guaranteed in
// the worst case over its backers' existing commitments. Electing the
// maximal score therefore maximizes the minimum improvement the new
// winner is assured of; the later equalization pass recovers anything
// the even split left on the table. Ties break by ingestion order.
// The per-round work is proportional to the remaining edge count,
// without the load bookkeeping sequential Phragmén re-evaluates every
// round.
func phragMMS(g *graph, count int) error {
	share := new(big.Rat)

	for round := 0; round < count; round++ {
		var best *candidateNode
		var bestScore *big.Rat

		for _, candidate := range g.candidates {
			if candidate.elected {
				continue
			}

			// Candidates with no approving stake score zero, so they
			// are never preferred over backed candidates but still
			// fill the set when nothing else remains.
			score := new(big.Rat)
			for _, e := range candidate.backers {
				share.SetInt64(int64(e.voter.electedCount + 1))
				share.Quo(e.voter.stakeRat, share)
				score.Add(score, share)
			}

			if bestScore == nil || score.Cmp(bestScore) > 0 {
				best = candidate
				bestScore = score
			}
		}

		if best == nil {
			return &AlgorithmError{
				Algorithm: ParallelPhragmen,
				Message:   "no electable candidate left before the active set was filled",
			}
		}

		best.elected = true
		best.electedRound = round
		for _, e := range best.backers {
			e.voter.electedCount++
		}
	}

	distributeEvenly(g)
	return nil
}

// distributeEvenly seeds each voter's weights as an even split across
// its elected targets. The equalization pass that follows owns the
// final attribution, so only the per-voter sum matters here.
func distributeEvenly(g *graph) {
	split := new(big.Rat)
	for _, v := range g.voters {
		if v.electedCount == 0 {
			continue
		}
		split.SetInt64(int64(v.electedCount))
		for _, e := range v.edges {
			if !e.candidate.elected {
				continue
			}
			e.weight.Quo(v.stakeRat, split)
		}
	}
}
