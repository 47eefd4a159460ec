// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package api exposes the election engine over a JSON-RPC 2.0 HTTP
// server. Executions are stored in memory under a fresh identifier so
// results and diagnostics can be fetched again later.
package api

import (
	"net/http"
	"time"

	"github.com/Quality-Assurance-DAO/Offline-election-tool/internal/metrics"
	"github.com/Quality-Assurance-DAO/Offline-election-tool/lib/diagnostics"
	"github.com/Quality-Assurance-DAO/Offline-election-tool/lib/election"
)

// ElectionModule is the RPC module running elections and serving
// stored results.
type ElectionModule struct {
	engine *election.Engine
	store  *resultStore
}

// NewElectionModule creates the election RPC module.
func NewElectionModule(engine *election.Engine) *ElectionModule {
	return &ElectionModule{
		engine: engine,
		store:  newResultStore(),
	}
}

// RunRequest is the Election.Run request.
type RunRequest struct {
	// Algorithm is the algorithm name or one of its synonyms.
	Algorithm string `json:"algorithm" validate:"required"`
	// ActiveSetSize is the number of validators to select.
	ActiveSetSize uint32 `json:"active_set_size" validate:"required,min=1"`
	// Dataset is the full election input.
	Dataset *election.Dataset `json:"dataset" validate:"required"`
	// Overrides optionally modify a working copy of the dataset.
	Overrides *election.Overrides `json:"overrides,omitempty"`
	// BlockNumber optionally tags the execution provenance.
	BlockNumber *uint64 `json:"block_number,omitempty"`
}

// RunResponse is the Election.Run response.
type RunResponse struct {
	// ID is the identifier the execution is stored under.
	ID     string           `json:"id"`
	Result *election.Result `json:"result"`
}

// Run executes an election and stores its result and diagnostics.
func (m *ElectionModule) Run(_ *http.Request, req *RunRequest, res *RunResponse) error {
	algorithm, err := election.ParseAlgorithm(req.Algorithm)
	if err != nil {
		metrics.ElectionsFailed.Inc()
		return serviceError(err)
	}

	config := election.Config{
		Algorithm:     algorithm,
		ActiveSetSize: req.ActiveSetSize,
		Overrides:     req.Overrides,
		BlockNumber:   req.BlockNumber,
	}

	start := time.Now()
	result, err := m.engine.Execute(config, req.Dataset)
	if err != nil {
		metrics.ElectionsFailed.Inc()
		return serviceError(err)
	}
	metrics.ElectionDuration.Observe(time.Since(start).Seconds())
	metrics.ElectionsExecuted.WithLabelValues(algorithm.String()).Inc()

	report := diagnostics.Explain(result, req.Dataset, &config)
	id, err := m.store.put(result, report)
	if err != nil {
		return serviceError(err)
	}

	res.ID = id
	res.Result = result
	return nil
}

// ResultsRequest identifies a stored execution.
type ResultsRequest struct {
	ID string `json:"id" validate:"required,uuid4"`
}

// ResultsResponse is the Election.Results response.
type ResultsResponse struct {
	ID     string           `json:"id"`
	Result *election.Result `json:"result"`
}

// Results returns the stored result of a previous execution.
func (m *ElectionModule) Results(_ *http.Request, req *ResultsRequest, res *ResultsResponse) error {
	entry, err := m.store.get(req.ID)
	if err != nil {
		return serviceError(err)
	}
	res.ID = req.ID
	res.Result = entry.result
	return nil
}

// DiagnosticsResponse is the Election.Diagnostics response.
type DiagnosticsResponse struct {
	ID     string              `json:"id"`
	Report *diagnostics.Report `json:"report"`
}

// Diagnostics returns the stored diagnostics report of a previous
// execution.
func (m *ElectionModule) Diagnostics(_ *http.Request, req *ResultsRequest, res *DiagnosticsResponse) error {
	entry, err := m.store.get(req.ID)
	if err != nil {
		return serviceError(err)
	}
	res.ID = req.ID
	res.Report = entry.report
	return nil
}

// SystemModule is the RPC module reporting server information.
type SystemModule struct {
	version string
	store   *resultStore
}

// NewSystemModule creates the system RPC module sharing the election
// module's result store.
func NewSystemModule(version string, electionModule *ElectionModule) *SystemModule {
	return &SystemModule{
		version: version,
		store:   electionModule.store,
	}
}

// EmptyRequest represents an RPC request with no fields.
type EmptyRequest struct{}

// HealthResponse reports the server health.
type HealthResponse struct {
	Ready         bool   `json:"ready"`
	Version       string `json:"version"`
	StoredResults int    `json:"stored_results"`
}

// Health reports that the server is serving and how many results it
// holds.
func (m *SystemModule) Health(_ *http.Request, _ *EmptyRequest, res *HealthResponse) error {
	res.Ready = true
	res.Version = m.version
	res.StoredResults = m.store.len()
	return nil
}
