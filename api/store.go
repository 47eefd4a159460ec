// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package api

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Quality-Assurance-DAO/Offline-election-tool/lib/diagnostics"
	"github.com/Quality-Assurance-DAO/Offline-election-tool/lib/election"
)

var (
	// ErrResultNotFound is returned when no stored result matches
	// the requested identifier.
	ErrResultNotFound = errors.New("result not found")
	errResultExists   = errors.New("result already stored")
)

// storedExecution holds one finished execution, keyed by its id.
type storedExecution struct {
	result    *election.Result
	report    *diagnostics.Report
	createdAt time.Time
}

// resultStore is a write-once in-memory store of finished executions.
type resultStore struct {
	mutex   sync.RWMutex
	entries map[string]storedExecution
}

func newResultStore() *resultStore {
	return &resultStore{
		entries: make(map[string]storedExecution),
	}
}

// put stores the execution under a fresh identifier and returns it.
func (s *resultStore) put(result *election.Result,
	report *diagnostics.Report) (id string, err error) {
	id = uuid.NewString()

	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, exists := s.entries[id]; exists {
		return "", fmt.Errorf("%w: %s", errResultExists, id)
	}
	s.entries[id] = storedExecution{
		result:    result,
		report:    report,
		createdAt: time.Now(),
	}
	return id, nil
}

func (s *resultStore) get(id string) (entry storedExecution, err error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	entry, found := s.entries[id]
	if !found {
		return storedExecution{}, fmt.Errorf("%w: %s", ErrResultNotFound, id)
	}
	return entry, nil
}

func (s *resultStore) len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.entries)
}
