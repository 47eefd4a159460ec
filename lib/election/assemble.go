// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package election

import (
	"math/big"
	"sort"
)

// assembleResult converts the balanced graph into the public result
// shape. Rational weights become exact integer amounts per voter,
// floors first with leftover units going to the largest remainders,
// so each voter's amounts sum to its stake and the total conserves
// exactly.
func assembleResult(g *graph, algorithm Algorithm) (*Result, error) {
	winners := g.winners()

	backing := make(map[*candidateNode]*big.Int, len(winners))
	nominatorCounts := make(map[*candidateNode]uint32, len(winners))
	for _, winner := range winners {
		backing[winner] = new(big.Int)
	}

	totalStake := new(big.Int)
	var distribution []StakeAllocation

	for _, v := range g.voters {
		electedEdges := make([]*edge, 0, len(v.edges))
		for _, e := range v.edges {
			if e.candidate.elected {
				electedEdges = append(electedEdges, e)
			}
		}
		if len(electedEdges) == 0 {
			continue
		}

		amounts := integerAmounts(v.stake, electedEdges)
		for i, e := range electedEdges {
			amount := amounts[i]
			if amount.Sign() == 0 {
				// Equalization can zero an edge out entirely; a
				// zero allocation backs nothing and is not reported.
				continue
			}
			backing[e.candidate].Add(backing[e.candidate], amount)
			if v.isNominator {
				nominatorCounts[e.candidate]++
			}
			totalStake.Add(totalStake, amount)

			stakeAmount := new(Stake)
			stakeAmount.Set(amount)
			proportion, _ := new(big.Rat).SetFrac(amount, v.stake).Float64()
			distribution = append(distribution, StakeAllocation{
				NominatorID: v.who,
				ValidatorID: e.candidate.id,
				Amount:      stakeAmount,
				Proportion:  proportion,
			})
		}
	}

	selected := make([]SelectedValidator, 0, len(winners))
	for i, winner := range winners {
		backingStake := new(Stake)
		backingStake.Set(backing[winner])
		selected = append(selected, SelectedValidator{
			AccountID:         winner.id,
			TotalBackingStake: backingStake,
			NominatorCount:    nominatorCounts[winner],
			Rank:              uint32(i + 1),
		})
	}

	total := new(Stake)
	total.Set(totalStake)

	return &Result{
		SelectedValidators: selected,
		StakeDistribution:  distribution,
		TotalStake:         total,
		AlgorithmUsed:      algorithm,
	}, nil
}

// integerAmounts splits a voter's integer stake across its elected
// edges following their rational weights. Floors are taken first and
// the leftover units go one each to the edges with the largest
// fractional parts, earlier edges first on ties, so the amounts sum
// to the stake exactly and deterministically.
func integerAmounts(stake *big.Int, electedEdges []*edge) []*big.Int {
	amounts := make([]*big.Int, len(electedEdges))
	remainders := make([]*big.Rat, len(electedEdges))
	distributed := new(big.Int)

	for i, e := range electedEdges {
		floor := new(big.Int).Quo(e.weight.Num(), e.weight.Denom())
		if floor.Sign() < 0 {
			floor.SetInt64(0)
		}
		amounts[i] = floor
		remainders[i] = new(big.Rat).Sub(e.weight, new(big.Rat).SetInt(floor))
		distributed.Add(distributed, floor)
	}

	leftover := new(big.Int).Sub(stake, distributed)
	if leftover.Sign() <= 0 {
		return amounts
	}

	order := make([]int, len(electedEdges))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return remainders[order[a]].Cmp(remainders[order[b]]) > 0
	})

	one := big.NewInt(1)
	for _, i := range order {
		if leftover.Sign() == 0 {
			break
		}
		amounts[i].Add(amounts[i], one)
		leftover.Sub(leftover, one)
	}

	return amounts
}

// validateResult is the final gate: a correctly functioning algorithm
// returns exactly the configured number of winners, and the sum of
// all allocation amounts equals the reported total stake. Any
// discrepancy indicates an arithmetic bug and is surfaced.
func validateResult(result *Result, config *Config) error {
	if len(result.SelectedValidators) != int(config.ActiveSetSize) {
		return newValidationError("selected_validators",
			"result has %d validators but expected %d",
			len(result.SelectedValidators), config.ActiveSetSize)
	}

	allocated := new(big.Int)
	for _, allocation := range result.StakeDistribution {
		allocated.Add(allocated, &allocation.Amount.Int)
	}
	if allocated.Cmp(&result.TotalStake.Int) != 0 {
		return newValidationError("stake_distribution",
			"allocated stake %s does not match total stake %s",
			allocated, result.TotalStake.Text(10))
	}

	return nil
}
