// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package election implements offline NPoS validator selection:
// the entity model for candidates, nominators and voting edges,
// the parameter override engine, the sequential Phragmén and
// PhragMMS selection algorithms, and the result assembly and
// validation that guarantees internally consistent output.
package election

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// Algorithm is the selection algorithm variant to execute.
type Algorithm uint8

const (
	// SequentialPhragmen selects one winner at a time, minimising
	// the maximum nominator load.
	SequentialPhragmen Algorithm = iota
	// ParallelPhragmen (PhragMMS) scores all remaining candidates
	// per round with a max-min criterion.
	ParallelPhragmen
	// MultiPhase mirrors the on-chain multi-phase election provider,
	// which runs sequential Phragmén internally.
	MultiPhase
)

var ErrAlgorithmNotRecognised = errors.New("algorithm is not recognised")

func (a Algorithm) String() string {
	switch a {
	case SequentialPhragmen:
		return "sequential-phragmen"
	case ParallelPhragmen:
		return "parallel-phragmen"
	case MultiPhase:
		return "multi-phase"
	default:
		return "unknown"
	}
}

// ParseAlgorithm parses an algorithm name, case insensitively.
// Each algorithm has one or two synonyms.
func ParseAlgorithm(s string) (a Algorithm, err error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sequential-phragmen", "sequential", "seq-phragmen":
		return SequentialPhragmen, nil
	case "parallel-phragmen", "parallel", "phragmms":
		return ParallelPhragmen, nil
	case "multi-phase", "multiphase":
		return MultiPhase, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrAlgorithmNotRecognised, s)
}

// MarshalJSON marshals the algorithm to its kebab-case name.
func (a Algorithm) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON unmarshals the algorithm from its name or a synonym.
func (a *Algorithm) UnmarshalJSON(data []byte) error {
	parsed, err := ParseAlgorithm(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Stake is an arbitrary precision stake amount. On-chain balances are
// unsigned 128 bit integers, beyond the range of uint64 and of the
// float64 mantissa, so amounts round-trip through JSON as exact
// decimal numbers (quoted strings are accepted too).
type Stake struct {
	big.Int
}

// NewStake returns the stake for the given uint64 amount.
func NewStake(value uint64) *Stake {
	s := new(Stake)
	s.SetUint64(value)
	return s
}

// NewStakeFromString parses a non-negative decimal stake amount.
func NewStakeFromString(value string) (*Stake, error) {
	s := new(Stake)
	_, ok := s.SetString(value, 10)
	if !ok || s.Sign() < 0 {
		return nil, fmt.Errorf("%w: invalid stake amount %q", ErrInvalidData, value)
	}
	return s, nil
}

// Clone deep copies the stake.
func (s *Stake) Clone() *Stake {
	c := new(Stake)
	c.Set(&s.Int)
	return c
}

// Rat returns the stake as a new exact rational.
func (s *Stake) Rat() *big.Rat {
	return new(big.Rat).SetInt(&s.Int)
}

// MarshalJSON marshals the stake as an exact decimal JSON number.
func (s *Stake) MarshalJSON() ([]byte, error) {
	return []byte(s.Text(10)), nil
}

// UnmarshalJSON unmarshals a stake from a JSON number or string.
func (s *Stake) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	parsed, err := NewStakeFromString(string(data))
	if err != nil {
		return err
	}
	s.Set(&parsed.Int)
	return nil
}
