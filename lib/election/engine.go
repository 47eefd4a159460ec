// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package election

import (
	"fmt"
	"time"

	"github.com/Quality-Assurance-DAO/Offline-election-tool/internal/log"
)

var logger = log.NewFromGlobal(log.AddContext("pkg", "election"))

// Engine composes validation, override application, algorithm
// dispatch and result validation. Executions are side-effect-free:
// the caller's dataset is never mutated and identical inputs produce
// identical results. Concurrent executions are safe since each works
// on its own dataset copy.
type Engine struct{}

// NewEngine returns an election engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Execute runs one election: validate input, apply overrides to a
// working copy, dispatch to the configured algorithm, equalize the
// stake attribution and validate the assembled result. Either a full,
// internally consistent result is returned, or no result at all.
func (e *Engine) Execute(config Config, dataset *Dataset) (*Result, error) {
	if err := dataset.Validate(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if err := config.ValidateAgainstData(len(dataset.Candidates)); err != nil {
		return nil, err
	}

	working := dataset.Copy()
	if !config.Overrides.Empty() {
		if err := config.Overrides.Apply(working); err != nil {
			return nil, err
		}
		// Overrides may add edges to candidates the caller knows
		// about but the dataset does not; recheck before dispatch.
		if err := working.Validate(); err != nil {
			return nil, err
		}
	}

	logger.Debugf("running %s election: %d candidates, %d nominators, active set %d",
		config.Algorithm, len(working.Candidates), len(working.Nominators),
		config.ActiveSetSize)

	g := buildGraph(working)

	var err error
	switch config.Algorithm {
	case SequentialPhragmen, MultiPhase:
		// The on-chain multi-phase provider runs sequential
		// Phragmén internally; the simulation does the same.
		err = seqPhragmen(g, int(config.ActiveSetSize))
	case ParallelPhragmen:
		err = phragMMS(g, int(config.ActiveSetSize))
	default:
		return nil, fmt.Errorf("%w: %d", ErrAlgorithmNotRecognised, config.Algorithm)
	}
	if err != nil {
		return nil, err
	}

	equalize(g)

	result, err := assembleResult(g, config.Algorithm)
	if err != nil {
		return nil, err
	}

	result.ExecutionMetadata = ExecutionMetadata{
		BlockNumber:        config.BlockNumber,
		ExecutionTimestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if working.Metadata != nil && result.ExecutionMetadata.BlockNumber == nil {
		result.ExecutionMetadata.BlockNumber = working.Metadata.BlockNumber
	}

	if err := validateResult(result, &config); err != nil {
		return nil, err
	}

	logger.Infof("%s election selected %d validators, total stake %s",
		config.Algorithm, len(result.SelectedValidators),
		result.TotalStake.Text(10))

	return result, nil
}
