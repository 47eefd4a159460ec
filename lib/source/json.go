// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package source

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Quality-Assurance-DAO/Offline-election-tool/lib/election"
)

// LoadJSONFile reads and validates a dataset from a JSON file, so a
// returned dataset is always ready for the election engine.
func LoadJSONFile(path string) (*election.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset file: %w", err)
	}

	dataset := election.NewDataset()
	if err := json.Unmarshal(data, dataset); err != nil {
		return nil, fmt.Errorf("%w: decoding dataset file %s: %s",
			election.ErrInvalidData, path, err)
	}

	if err := dataset.Validate(); err != nil {
		return nil, fmt.Errorf("validating dataset file %s: %w", path, err)
	}

	return dataset, nil
}

// SaveJSONFile writes the dataset to a JSON file, indented so snapshots
// stay reviewable in version control.
func SaveJSONFile(path string, dataset *election.Dataset) error {
	data, err := json.MarshalIndent(dataset, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding dataset: %w", err)
	}

	err = os.WriteFile(path, append(data, '\n'), 0o644)
	if err != nil {
		return fmt.Errorf("writing dataset file: %w", err)
	}

	return nil
}
