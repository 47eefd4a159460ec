// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Quality-Assurance-DAO/Offline-election-tool/lib/election"
)

type rpcErrorResponse struct {
	Code    int       `json:"code"`
	Message string    `json:"message"`
	Data    errorData `json:"data"`
}

// callRPC posts one JSON-RPC request and decodes the result into
// result when the call succeeds, returning the error otherwise.
func callRPC(t *testing.T, url, method string, params,
	result interface{}) *rpcErrorResponse {
	t.Helper()

	body, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
		"id":      1,
	})
	require.NoError(t, err)

	response, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer func() { require.NoError(t, response.Body.Close()) }()

	var decoded struct {
		Result json.RawMessage   `json:"result"`
		Error  *rpcErrorResponse `json:"error"`
	}
	require.NoError(t, json.NewDecoder(response.Body).Decode(&decoded))
	if decoded.Error != nil {
		return decoded.Error
	}

	if result != nil {
		require.NoError(t, json.Unmarshal(decoded.Result, result))
	}
	return nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	server, err := NewServer(ServerConfig{Version: "test"})
	require.NoError(t, err)
	testServer := httptest.NewServer(server.rpcServer)
	t.Cleanup(testServer.Close)
	return testServer
}

func testRunRequest() *RunRequest {
	return &RunRequest{
		Algorithm:     "sequential-phragmen",
		ActiveSetSize: 1,
		Dataset: &election.Dataset{
			Candidates: []election.Candidate{
				election.NewCandidate("val-a", election.NewStake(1_000_000_000)),
			},
			Nominators: []election.Nominator{
				election.NewNominator("nom-1", election.NewStake(500_000_000), "val-a"),
			},
		},
	}
}

func Test_Election_Run_and_fetch(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)

	var runResponse RunResponse
	rpcErr := callRPC(t, server.URL, "Election.Run", testRunRequest(), &runResponse)
	require.Nil(t, rpcErr)

	_, err := uuid.Parse(runResponse.ID)
	require.NoError(t, err)
	require.NotNil(t, runResponse.Result)
	require.Len(t, runResponse.Result.SelectedValidators, 1)
	winner := runResponse.Result.SelectedValidators[0]
	assert.Equal(t, "val-a", winner.AccountID)
	assert.Equal(t, "1500000000", winner.TotalBackingStake.Text(10))
	assert.Equal(t, "1500000000", runResponse.Result.TotalStake.Text(10))

	var resultsResponse ResultsResponse
	rpcErr = callRPC(t, server.URL, "Election.Results",
		ResultsRequest{ID: runResponse.ID}, &resultsResponse)
	require.Nil(t, rpcErr)
	assert.Equal(t, runResponse.ID, resultsResponse.ID)
	assert.Equal(t, runResponse.Result.TotalStake.Text(10),
		resultsResponse.Result.TotalStake.Text(10))

	var diagnosticsResponse DiagnosticsResponse
	rpcErr = callRPC(t, server.URL, "Election.Diagnostics",
		ResultsRequest{ID: runResponse.ID}, &diagnosticsResponse)
	require.Nil(t, rpcErr)
	require.NotNil(t, diagnosticsResponse.Report)
	require.Len(t, diagnosticsResponse.Report.Validators, 1)
	assert.Equal(t, "val-a", diagnosticsResponse.Report.Validators[0].AccountID)

	var health HealthResponse
	rpcErr = callRPC(t, server.URL, "System.Health", EmptyRequest{}, &health)
	require.Nil(t, rpcErr)
	assert.True(t, health.Ready)
	assert.Equal(t, "test", health.Version)
	assert.Equal(t, 1, health.StoredResults)
}

func Test_Election_Run_errors(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)

	t.Run("unknown algorithm", func(t *testing.T) {
		request := testRunRequest()
		request.Algorithm = "borda-count"
		rpcErr := callRPC(t, server.URL, "Election.Run", request, nil)
		require.NotNil(t, rpcErr)
		assert.Equal(t, CodeValidationError, rpcErr.Data.Code)
		assert.Equal(t, "algorithm", rpcErr.Data.Field)
	})

	t.Run("insufficient candidates", func(t *testing.T) {
		request := testRunRequest()
		request.ActiveSetSize = 5
		rpcErr := callRPC(t, server.URL, "Election.Run", request, nil)
		require.NotNil(t, rpcErr)
		assert.Equal(t, CodeInsufficientCandidates, rpcErr.Data.Code)
	})

	t.Run("missing dataset", func(t *testing.T) {
		request := testRunRequest()
		request.Dataset = nil
		rpcErr := callRPC(t, server.URL, "Election.Run", request, nil)
		require.NotNil(t, rpcErr)
		assert.Equal(t, CodeValidationError, rpcErr.Data.Code)
	})

	t.Run("dangling nominator target", func(t *testing.T) {
		request := testRunRequest()
		request.Dataset.Nominators[0].Targets = []string{"ghost"}
		rpcErr := callRPC(t, server.URL, "Election.Run", request, nil)
		require.NotNil(t, rpcErr)
		assert.Equal(t, CodeValidationError, rpcErr.Data.Code)
		assert.Equal(t, "nominators.targets", rpcErr.Data.Field)
	})
}

func Test_Election_Results_notFound(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)

	rpcErr := callRPC(t, server.URL, "Election.Results",
		ResultsRequest{ID: uuid.NewString()}, nil)
	require.NotNil(t, rpcErr)
	assert.Equal(t, CodeResultNotFound, rpcErr.Data.Code)
}

func Test_Election_Run_withOverrides(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)

	request := testRunRequest()
	request.Dataset.Candidates = append(request.Dataset.Candidates,
		election.NewCandidate("val-b", election.NewStake(1)))
	overrides := election.NewOverrides()
	overrides.SetCandidateStake("val-b", election.NewStake(10_000_000_000))
	request.Overrides = overrides

	var runResponse RunResponse
	rpcErr := callRPC(t, server.URL, "Election.Run", request, &runResponse)
	require.Nil(t, rpcErr)
	require.Len(t, runResponse.Result.SelectedValidators, 1)
	assert.Equal(t, "val-b", runResponse.Result.SelectedValidators[0].AccountID)

	var diagnosticsResponse DiagnosticsResponse
	rpcErr = callRPC(t, server.URL, "Election.Diagnostics",
		ResultsRequest{ID: runResponse.ID}, &diagnosticsResponse)
	require.Nil(t, rpcErr)
	assert.Contains(t, diagnosticsResponse.Report.Warnings,
		"nominator nom-1 backs no elected validator, its stake is inert")
}
