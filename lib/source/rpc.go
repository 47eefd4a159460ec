// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package source

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/ChainSafe/gossamer/pkg/scale"

	"github.com/Quality-Assurance-DAO/Offline-election-tool/internal/log"
	"github.com/Quality-Assurance-DAO/Offline-election-tool/lib/election"
)

var logger = log.NewFromGlobal(log.AddContext("pkg", "source"))

const (
	defaultPageSize    = 512
	defaultHTTPTimeout = 30 * time.Second
	accountIDLength    = 32
)

// RPCError reports a failed JSON-RPC exchange with a chain node.
type RPCError struct {
	URL     string
	Method  string
	Message string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc call %s to %s failed: %s", e.Method, e.URL, e.Message)
}

// Client fetches staking state from a chain node over HTTP JSON-RPC.
type Client struct {
	endpoint   string
	httpClient *http.Client
	pageSize   uint32
}

// ClientOption modifies the client configuration.
type ClientOption func(c *Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithPageSize sets the storage key page size.
func WithPageSize(pageSize uint32) ClientOption {
	return func(c *Client) { c.pageSize = pageSize }
}

// NewClient returns a client for the given node HTTP endpoint.
func NewClient(endpoint string, options ...ClientOption) *Client {
	client := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		pageSize:   defaultPageSize,
	}
	for _, option := range options {
		option(client)
	}
	return client
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      uint64        `json:"id"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) call(ctx context.Context, method string,
	params []interface{}, result interface{}) error {
	if params == nil {
		params = []interface{}{}
	}
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	})
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return &RPCError{URL: c.endpoint, Method: method, Message: err.Error()}
	}
	defer func() { _ = response.Body.Close() }()

	if response.StatusCode != http.StatusOK {
		return &RPCError{URL: c.endpoint, Method: method,
			Message: "status " + response.Status}
	}

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return &RPCError{URL: c.endpoint, Method: method, Message: err.Error()}
	}

	var decoded rpcResponse
	if err := json.Unmarshal(responseBody, &decoded); err != nil {
		return &RPCError{URL: c.endpoint, Method: method,
			Message: "decoding response: " + err.Error()}
	}
	if decoded.Error != nil {
		return &RPCError{URL: c.endpoint, Method: method,
			Message: fmt.Sprintf("%s (code %d)", decoded.Error.Message, decoded.Error.Code)}
	}

	if result != nil {
		if err := json.Unmarshal(decoded.Result, result); err != nil {
			return &RPCError{URL: c.endpoint, Method: method,
				Message: "decoding result: " + err.Error()}
		}
	}
	return nil
}

// ChainName returns the node's chain name.
func (c *Client) ChainName(ctx context.Context) (string, error) {
	var name string
	err := c.call(ctx, "system_chain", nil, &name)
	return name, err
}

// BlockHash resolves a block number to its hash, or the chain head
// hash when blockNumber is nil.
func (c *Client) BlockHash(ctx context.Context, blockNumber *uint64) (string, error) {
	params := []interface{}{}
	if blockNumber != nil {
		params = append(params, *blockNumber)
	}
	var hash string
	err := c.call(ctx, "chain_getBlockHash", params, &hash)
	return hash, err
}

// storageKeysPaged lists every storage key under the prefix at the
// given block, following the pagination cursor to exhaustion.
func (c *Client) storageKeysPaged(ctx context.Context, prefix,
	blockHash string) (keys []string, err error) {
	startKey := prefix
	for {
		var page []string
		err = c.call(ctx, "state_getKeysPaged",
			[]interface{}{prefix, c.pageSize, startKey, blockHash}, &page)
		if err != nil {
			return nil, err
		}
		keys = append(keys, page...)
		if uint32(len(page)) < c.pageSize {
			return keys, nil
		}
		startKey = page[len(page)-1]
	}
}

// storageValue fetches a storage value at the given block. It returns
// nil without error when the key has no value.
func (c *Client) storageValue(ctx context.Context, key, blockHash string) ([]byte, error) {
	var encoded *string
	err := c.call(ctx, "state_getStorage", []interface{}{key, blockHash}, &encoded)
	if err != nil {
		return nil, err
	}
	if encoded == nil {
		return nil, nil
	}
	return decodeHex(*encoded)
}

// validatorPrefs is the chain's staking validator preference record.
type validatorPrefs struct {
	// Commission is a perbill fraction, compact encoded.
	Commission *big.Int
	Blocked    bool
}

// nominations is the chain's staking nomination record.
type nominations struct {
	Targets     [][accountIDLength]byte
	SubmittedIn uint32
	Suppressed  bool
}

// accountInfo is the chain's system account record.
type accountInfo struct {
	Nonce       uint32
	Consumers   uint32
	Providers   uint32
	Sufficients uint32
	Data        accountData
}

type accountData struct {
	Free       *scale.Uint128
	Reserved   *scale.Uint128
	MiscFrozen *scale.Uint128
	FeeFrozen  *scale.Uint128
}

const perbillPerPercent = 10_000_000

// FetchDataset snapshots the staking election state at the given block
// (or the chain head when blockNumber is nil): the validator candidates
// with their preferences, the nominators with their target lists, and
// the free balance of each account as its stake.
func (c *Client) FetchDataset(ctx context.Context, blockNumber *uint64) (*election.Dataset, error) {
	blockHash, err := c.BlockHash(ctx, blockNumber)
	if err != nil {
		return nil, fmt.Errorf("resolving block hash: %w", err)
	}

	chainName, err := c.ChainName(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting chain name: %w", err)
	}

	logger.Infof("fetching staking snapshot of %s at block %s", chainName, blockHash)

	dataset := election.NewDataset()
	dataset.Metadata = &election.Metadata{
		BlockNumber: blockNumber,
		Chain:       chainName,
	}

	candidateIDs, err := c.fetchCandidates(ctx, blockHash, dataset)
	if err != nil {
		return nil, fmt.Errorf("fetching candidates: %w", err)
	}

	err = c.fetchNominators(ctx, blockHash, candidateIDs, dataset)
	if err != nil {
		return nil, fmt.Errorf("fetching nominators: %w", err)
	}

	logger.Infof("fetched %d candidates and %d nominators",
		len(dataset.Candidates), len(dataset.Nominators))
	return dataset, nil
}

func (c *Client) fetchCandidates(ctx context.Context, blockHash string,
	dataset *election.Dataset) (candidateIDs map[string]struct{}, err error) {
	prefix := encodeHex(storagePrefix("Staking", "Validators"))
	keys, err := c.storageKeysPaged(ctx, prefix, blockHash)
	if err != nil {
		return nil, err
	}

	candidateIDs = make(map[string]struct{}, len(keys))
	for _, key := range keys {
		accountID, rawAccount, err := accountFromStorageKey(key)
		if err != nil {
			return nil, err
		}

		value, err := c.storageValue(ctx, key, blockHash)
		if err != nil {
			return nil, err
		}
		var prefs validatorPrefs
		if err := scale.Unmarshal(value, &prefs); err != nil {
			return nil, fmt.Errorf("%w: decoding validator preferences of %s: %s",
				election.ErrInvalidData, accountID, err)
		}

		stake, err := c.freeBalance(ctx, rawAccount, blockHash)
		if err != nil {
			return nil, err
		}

		candidate := election.NewCandidate(accountID, stake)
		commissionRate := uint8(new(big.Int).Div(prefs.Commission,
			big.NewInt(perbillPerPercent)).Uint64())
		candidate.Metadata = &election.CandidateMetadata{
			CommissionRate: &commissionRate,
		}
		if prefs.Blocked {
			candidate.Metadata.OnChainStatus = "blocked"
		}

		if err := dataset.AddCandidate(candidate); err != nil {
			return nil, err
		}
		candidateIDs[accountID] = struct{}{}
	}
	return candidateIDs, nil
}

func (c *Client) fetchNominators(ctx context.Context, blockHash string,
	candidateIDs map[string]struct{}, dataset *election.Dataset) error {
	prefix := encodeHex(storagePrefix("Staking", "Nominators"))
	keys, err := c.storageKeysPaged(ctx, prefix, blockHash)
	if err != nil {
		return err
	}

	for _, key := range keys {
		accountID, rawAccount, err := accountFromStorageKey(key)
		if err != nil {
			return err
		}

		value, err := c.storageValue(ctx, key, blockHash)
		if err != nil {
			return err
		}
		var record nominations
		if err := scale.Unmarshal(value, &record); err != nil {
			return fmt.Errorf("%w: decoding nominations of %s: %s",
				election.ErrInvalidData, accountID, err)
		}
		if record.Suppressed {
			logger.Debugf("skipping suppressed nominator %s", accountID)
			continue
		}

		targets := make([]string, 0, len(record.Targets))
		for _, target := range record.Targets {
			targetID := encodeHex(target[:])
			if _, known := candidateIDs[targetID]; !known {
				// Nominations of chilled validators stay on chain
				// but take no part in the election.
				logger.Debugf("dropping vote of %s for inactive candidate %s",
					accountID, targetID)
				continue
			}
			targets = append(targets, targetID)
		}

		stake, err := c.freeBalance(ctx, rawAccount, blockHash)
		if err != nil {
			return err
		}

		nominator := election.NewNominator(accountID, stake, targets...)
		nominator.Metadata = map[string]string{
			"submitted_in": fmt.Sprint(record.SubmittedIn),
		}
		if err := dataset.AddNominator(nominator); err != nil {
			return err
		}
	}
	return nil
}

// freeBalance reads the free balance of the account from the system
// pallet. Missing accounts have zero balance.
func (c *Client) freeBalance(ctx context.Context, rawAccount []byte,
	blockHash string) (*election.Stake, error) {
	hashedAccount, err := blake2b128Concat(rawAccount)
	if err != nil {
		return nil, fmt.Errorf("hashing account id: %w", err)
	}
	key := encodeHex(append(storagePrefix("System", "Account"), hashedAccount...))

	value, err := c.storageValue(ctx, key, blockHash)
	if err != nil {
		return nil, err
	}
	if value == nil {
		return election.NewStake(0), nil
	}

	var info accountInfo
	if err := scale.Unmarshal(value, &info); err != nil {
		return nil, fmt.Errorf("%w: decoding account info of %s: %s",
			election.ErrInvalidData, encodeHex(rawAccount), err)
	}

	return election.NewStakeFromString(info.Data.Free.String())
}

// accountFromStorageKey extracts the trailing 32 byte account id from
// a transparently hashed storage map key.
func accountFromStorageKey(key string) (accountID string, raw []byte, err error) {
	decoded, err := decodeHex(key)
	if err != nil {
		return "", nil, fmt.Errorf("%w: decoding storage key %s: %s",
			election.ErrInvalidData, key, err)
	}
	if len(decoded) < accountIDLength {
		return "", nil, fmt.Errorf("%w: storage key %s is too short for an account id",
			election.ErrInvalidData, key)
	}
	raw = decoded[len(decoded)-accountIDLength:]
	return encodeHex(raw), raw, nil
}

func encodeHex(data []byte) string {
	return "0x" + hex.EncodeToString(data)
}

func decodeHex(encoded string) ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(encoded, "0x"))
}
