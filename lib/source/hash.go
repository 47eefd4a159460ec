// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package source loads election datasets from JSON files, from a
// deterministic synthetic generator, and from a live chain node over
// JSON-RPC.
package source

import (
	"encoding/binary"

	"github.com/OneOfOne/xxhash"
	"golang.org/x/crypto/blake2b"
)

// twox128 computes xxHash64 twice with seeds 0 and 1 and concatenates
// the little endian results, matching the chain storage hasher.
func twox128(in []byte) []byte {
	h0 := xxhash.NewS64(0)
	_, _ = h0.Write(in)
	h1 := xxhash.NewS64(1)
	_, _ = h1.Write(in)

	hash := make([]byte, 16)
	binary.LittleEndian.PutUint64(hash[:8], h0.Sum64())
	binary.LittleEndian.PutUint64(hash[8:], h1.Sum64())
	return hash
}

// blake2b128Concat computes the 128 bit blake2b hash of the input and
// appends the input itself, matching the transparent map key hasher.
func blake2b128Concat(in []byte) ([]byte, error) {
	h, err := blake2b.New(16, nil)
	if err != nil {
		return nil, err
	}
	_, err = h.Write(in)
	if err != nil {
		return nil, err
	}
	return append(h.Sum(nil), in...), nil
}

// storagePrefix builds the 32 byte storage prefix of a pallet item.
func storagePrefix(pallet, item string) []byte {
	return append(twox128([]byte(pallet)), twox128([]byte(item))...)
}
