// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package election

import (
	"math/big"
	"sort"
)

const balanceIterations = 10

// balanceTolerance ends the equalization early once no weight moved
// by more than one billionth of a stake unit in a full pass.
var balanceTolerance = big.NewRat(1, 1_000_000_000)

// equalize redistributes each voter's stake among the winners it
// approves so that no voter's support is more concentrated than
// necessary, given the already fixed winner set. Winners never
// change; only attribution does. The pass repeats until a full
// iteration moves no weight beyond the tolerance or the iteration
// cap is reached.
func equalize(g *graph) {
	supports := make(map[*candidateNode]*big.Rat, len(g.candidates))
	for _, candidate := range g.candidates {
		if candidate.elected {
			supports[candidate] = new(big.Rat)
		}
	}
	for _, v := range g.voters {
		for _, e := range v.edges {
			if e.candidate.elected {
				supports[e.candidate].Add(supports[e.candidate], e.weight)
			}
		}
	}

	for iteration := 0; iteration < balanceIterations; iteration++ {
		maxDiff := new(big.Rat)
		for _, v := range g.voters {
			diff := rebalanceVoter(v, supports)
			if diff != nil && diff.Cmp(maxDiff) > 0 {
				maxDiff = diff
			}
		}
		if maxDiff.Cmp(balanceTolerance) < 0 {
			break
		}
	}
}

// rebalanceVoter re-splits one voter's whole stake across its elected
// targets so their supports equalize as far as possible: targets are
// filled lowest-support first up to a common water level. Returns the
// largest absolute weight change, or nil when the voter has fewer
// than two elected targets.
func rebalanceVoter(v *voter, supports map[*candidateNode]*big.Rat) *big.Rat {
	electedEdges := make([]*edge, 0, len(v.edges))
	for _, e := range v.edges {
		if e.candidate.elected {
			electedEdges = append(electedEdges, e)
		}
	}
	if len(electedEdges) < 2 {
		return nil
	}

	// Work against supports excluding this voter's contribution.
	for _, e := range electedEdges {
		supports[e.candidate].Sub(supports[e.candidate], e.weight)
	}

	sort.SliceStable(electedEdges, func(i, j int) bool {
		cmp := supports[electedEdges[i].candidate].Cmp(supports[electedEdges[j].candidate])
		if cmp != 0 {
			return cmp < 0
		}
		return electedEdges[i].candidate.index < electedEdges[j].candidate.index
	})

	// Find the largest prefix whose common fill level stays at or
	// below the next target's support.
	cut := len(electedEdges)
	prefix := new(big.Rat)
	level := new(big.Rat)
	for i := 1; i <= len(electedEdges); i++ {
		prefix.Add(prefix, supports[electedEdges[i-1].candidate])
		level.Add(v.stakeRat, prefix)
		level.Quo(level, new(big.Rat).SetInt64(int64(i)))
		if i == len(electedEdges) ||
			level.Cmp(supports[electedEdges[i].candidate]) <= 0 {
			cut = i
			break
		}
	}

	maxDiff := new(big.Rat)
	diff := new(big.Rat)
	for i, e := range electedEdges {
		previous := new(big.Rat).Set(e.weight)
		if i < cut {
			e.weight.Sub(level, supports[e.candidate])
		} else {
			e.weight.SetInt64(0)
		}
		supports[e.candidate].Add(supports[e.candidate], e.weight)

		diff.Sub(e.weight, previous)
		diff.Abs(diff)
		if diff.Cmp(maxDiff) > 0 {
			maxDiff.Set(diff)
		}
	}

	return maxDiff
}
