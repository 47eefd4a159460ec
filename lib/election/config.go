// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package election

// Config describes how an election should be executed. Invalid
// configurations never reach algorithm dispatch: the engine runs
// Validate and ValidateAgainstData before dispatching.
type Config struct {
	// Algorithm is the selection algorithm variant.
	Algorithm Algorithm `json:"algorithm"`
	// ActiveSetSize is the number of validators to select.
	ActiveSetSize uint32 `json:"active_set_size"`
	// Overrides are optional dataset modifications applied to a
	// working copy before dispatch.
	Overrides *Overrides `json:"overrides,omitempty"`
	// BlockNumber is the optional provenance block number.
	BlockNumber *uint64 `json:"block_number,omitempty"`
}

// BuildConfig validates the given configuration and returns it, so a
// caller holding the returned value knows it passed validation.
func BuildConfig(config Config) (Config, error) {
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// Validate checks the configuration in isolation.
func (c *Config) Validate() error {
	if c.ActiveSetSize == 0 {
		return newValidationError("active_set_size",
			"active set size must be at least 1")
	}
	return nil
}

// ValidateAgainstData checks the configuration against the dataset it
// will run on. The returned InsufficientCandidatesError carries both
// counts so callers can adjust their request instead of clamping.
func (c *Config) ValidateAgainstData(candidateCount int) error {
	if int(c.ActiveSetSize) > candidateCount {
		return &InsufficientCandidatesError{
			Requested: c.ActiveSetSize,
			Available: uint32(candidateCount),
		}
	}
	return nil
}
