// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package diagnostics derives explanations from a finished election
// result. It never re-runs the selection algorithms: every insight is
// computed from the result and the dataset it was produced from.
package diagnostics

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/Quality-Assurance-DAO/Offline-election-tool/lib/election"
)

// Report explains one election result.
type Report struct {
	// Validators explains each selected validator, in rank order.
	Validators []ValidatorExplanation `json:"validators"`
	// Stake aggregates the backing stake statistics of the active set.
	Stake StakeAnalysis `json:"stake"`
	// AlgorithmInsights names notable properties of the execution.
	AlgorithmInsights []string `json:"algorithm_insights,omitempty"`
	// Warnings names dataset properties worth review, like candidates
	// without stake or nominators whose votes all missed.
	Warnings []string `json:"warnings,omitempty"`
}

// ValidatorExplanation describes why one validator was selected.
type ValidatorExplanation struct {
	AccountID string `json:"account_id"`
	Rank      uint32 `json:"rank"`
	// BackingStake is the validator's total backing stake.
	BackingStake *election.Stake `json:"backing_stake"`
	// SelfStake is the validator's own contribution to its backing.
	SelfStake *election.Stake `json:"self_stake"`
	// NominatorCount is the number of distinct backing nominators.
	NominatorCount uint32 `json:"nominator_count"`
	// BackingShare is the validator's fraction of the total stake.
	BackingShare float64 `json:"backing_share"`
}

// StakeAnalysis aggregates backing stake statistics of the active set.
type StakeAnalysis struct {
	Total   *election.Stake `json:"total"`
	Minimum *election.Stake `json:"minimum"`
	Maximum *election.Stake `json:"maximum"`
	// Average is the mean backing stake, rounded down.
	Average *election.Stake `json:"average"`
}

// Explain builds a report for the result computed from the dataset
// with the given configuration. The configuration may be nil.
func Explain(result *election.Result, dataset *election.Dataset,
	config *election.Config) *Report {
	report := &Report{
		Validators: explainValidators(result),
		Stake:      analyseStake(result),
	}
	report.AlgorithmInsights = algorithmInsights(result)
	report.Warnings = collectWarnings(result, dataset, config)
	return report
}

func explainValidators(result *election.Result) []ValidatorExplanation {
	selfAllocations := make(map[string]*election.Stake,
		len(result.SelectedValidators))
	for _, allocation := range result.StakeDistribution {
		if allocation.NominatorID == allocation.ValidatorID {
			selfAllocations[allocation.ValidatorID] = allocation.Amount
		}
	}

	explanations := make([]ValidatorExplanation, 0, len(result.SelectedValidators))
	for _, validator := range result.SelectedValidators {
		selfStake := selfAllocations[validator.AccountID]
		if selfStake == nil {
			selfStake = election.NewStake(0)
		}
		explanations = append(explanations, ValidatorExplanation{
			AccountID:      validator.AccountID,
			Rank:           validator.Rank,
			BackingStake:   validator.TotalBackingStake.Clone(),
			SelfStake:      selfStake.Clone(),
			NominatorCount: validator.NominatorCount,
			BackingShare:   share(validator.TotalBackingStake, result.TotalStake),
		})
	}

	sort.SliceStable(explanations, func(i, j int) bool {
		return explanations[i].Rank < explanations[j].Rank
	})
	return explanations
}

func analyseStake(result *election.Result) StakeAnalysis {
	analysis := StakeAnalysis{
		Total:   result.TotalStake.Clone(),
		Minimum: election.NewStake(0),
		Maximum: election.NewStake(0),
		Average: election.NewStake(0),
	}
	if len(result.SelectedValidators) == 0 {
		return analysis
	}

	backings := make([]*big.Int, 0, len(result.SelectedValidators))
	sum := new(big.Int)
	for _, validator := range result.SelectedValidators {
		backing := &validator.TotalBackingStake.Int
		backings = append(backings, backing)
		sum.Add(sum, backing)
	}

	minimum, maximum := backings[0], backings[0]
	for _, backing := range backings[1:] {
		if backing.Cmp(minimum) < 0 {
			minimum = backing
		}
		if backing.Cmp(maximum) > 0 {
			maximum = backing
		}
	}

	analysis.Minimum.Set(minimum)
	analysis.Maximum.Set(maximum)
	analysis.Average.Div(sum, big.NewInt(int64(len(backings))))
	return analysis
}

func algorithmInsights(result *election.Result) (insights []string) {
	insights = append(insights, fmt.Sprintf(
		"%s selected %d validators from the dataset",
		result.AlgorithmUsed, len(result.SelectedValidators)))

	if len(result.SelectedValidators) > 0 && result.TotalStake.Sign() > 0 {
		lowest := result.SelectedValidators[0]
		for _, validator := range result.SelectedValidators[1:] {
			if validator.TotalBackingStake.Cmp(&lowest.TotalBackingStake.Int) < 0 {
				lowest = validator
			}
		}
		insights = append(insights, fmt.Sprintf(
			"the active set is secured by at least %s stake behind %s",
			lowest.TotalBackingStake.Text(10), lowest.AccountID))
	}
	return insights
}

func collectWarnings(result *election.Result, dataset *election.Dataset,
	config *election.Config) (warnings []string) {
	if config != nil && !config.Overrides.Empty() {
		for _, edge := range config.Overrides.VotingEdges {
			if edge.Weight != nil {
				warnings = append(warnings, fmt.Sprintf(
					"edge weight on %s of %s -> %s is ignored, stakes are always rebalanced",
					edge.Action, edge.NominatorID, edge.CandidateID))
			}
		}
	}

	for _, candidate := range dataset.Candidates {
		if candidate.Stake.Sign() == 0 {
			warnings = append(warnings, fmt.Sprintf(
				"candidate %s has zero stake", candidate.AccountID))
		}
	}

	elected := make(map[string]struct{}, len(result.SelectedValidators))
	for _, validator := range result.SelectedValidators {
		elected[validator.AccountID] = struct{}{}
	}

	for _, nominator := range dataset.Nominators {
		if len(nominator.Targets) == 0 {
			warnings = append(warnings, fmt.Sprintf(
				"nominator %s has no targets", nominator.AccountID))
			continue
		}
		anyElected := false
		for _, target := range nominator.Targets {
			if _, won := elected[target]; won {
				anyElected = true
				break
			}
		}
		if !anyElected {
			warnings = append(warnings, fmt.Sprintf(
				"nominator %s backs no elected validator, its stake is inert",
				nominator.AccountID))
		}
	}
	return warnings
}

// share returns part over total as a float, or zero when total is zero.
func share(part *election.Stake, total *election.Stake) float64 {
	if total.Sign() == 0 {
		return 0
	}
	ratio := new(big.Rat).SetFrac(&part.Int, &total.Int)
	value, _ := ratio.Float64()
	return value
}
