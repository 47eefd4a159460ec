// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package api

import (
	"errors"

	"github.com/gorilla/rpc/v2/json2"

	"github.com/Quality-Assurance-DAO/Offline-election-tool/lib/election"
	"github.com/Quality-Assurance-DAO/Offline-election-tool/lib/source"
)

// Stable error codes carried in the error data of JSON-RPC responses.
const (
	CodeValidationError        = "VALIDATION_ERROR"
	CodeInsufficientCandidates = "INSUFFICIENT_CANDIDATES"
	CodeAlgorithmError         = "ALGORITHM_ERROR"
	CodeInvalidData            = "INVALID_DATA"
	CodeRPCError               = "RPC_ERROR"
	CodeResultNotFound         = "RESULT_NOT_FOUND"
)

// errorData is the structured data attached to JSON-RPC errors.
type errorData struct {
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
}

// serviceError translates engine and store errors into JSON-RPC
// errors with stable codes, so clients never match on messages.
func serviceError(err error) *json2.Error {
	var validationErr *election.ValidationError
	if errors.As(err, &validationErr) {
		return &json2.Error{
			Code:    json2.E_BAD_PARAMS,
			Message: err.Error(),
			Data:    errorData{Code: CodeValidationError, Field: validationErr.Field},
		}
	}

	var insufficientErr *election.InsufficientCandidatesError
	if errors.As(err, &insufficientErr) {
		return &json2.Error{
			Code:    json2.E_BAD_PARAMS,
			Message: err.Error(),
			Data:    errorData{Code: CodeInsufficientCandidates},
		}
	}

	var algorithmErr *election.AlgorithmError
	if errors.As(err, &algorithmErr) {
		return &json2.Error{
			Code:    json2.E_INTERNAL,
			Message: err.Error(),
			Data:    errorData{Code: CodeAlgorithmError},
		}
	}

	var rpcErr *source.RPCError
	if errors.As(err, &rpcErr) {
		return &json2.Error{
			Code:    json2.E_SERVER,
			Message: err.Error(),
			Data:    errorData{Code: CodeRPCError},
		}
	}

	switch {
	case errors.Is(err, election.ErrAlgorithmNotRecognised):
		return &json2.Error{
			Code:    json2.E_BAD_PARAMS,
			Message: err.Error(),
			Data:    errorData{Code: CodeValidationError, Field: "algorithm"},
		}
	case errors.Is(err, election.ErrInvalidData):
		return &json2.Error{
			Code:    json2.E_BAD_PARAMS,
			Message: err.Error(),
			Data:    errorData{Code: CodeInvalidData},
		}
	case errors.Is(err, ErrResultNotFound):
		return &json2.Error{
			Code:    json2.E_BAD_PARAMS,
			Message: err.Error(),
			Data:    errorData{Code: CodeResultNotFound},
		}
	}

	return &json2.Error{
		Code:    json2.E_INTERNAL,
		Message: err.Error(),
	}
}
