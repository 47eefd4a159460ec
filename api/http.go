// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package api

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/gorilla/rpc/v2"
	"github.com/gorilla/rpc/v2/json2"

	"github.com/Quality-Assurance-DAO/Offline-election-tool/internal/httpserver"
	"github.com/Quality-Assurance-DAO/Offline-election-tool/internal/log"
	"github.com/Quality-Assurance-DAO/Offline-election-tool/lib/election"
)

var logger = log.NewFromGlobal(log.AddContext("pkg", "api"))

// ServerConfig configures the JSON-RPC HTTP server.
type ServerConfig struct {
	// Address is the listening address, for example ":8545".
	Address string
	// Version is reported by System.Health.
	Version string
	// Engine runs the elections. A default engine is used when nil.
	Engine *election.Engine
}

// Server is the JSON-RPC HTTP server for the election engine.
type Server struct {
	rpcServer *rpc.Server
	server    *httpserver.Server
	cancel    context.CancelFunc
	done      chan error
}

// NewServer creates the JSON-RPC server and registers the election
// and system modules on it.
func NewServer(config ServerConfig) (*Server, error) {
	engine := config.Engine
	if engine == nil {
		engine = election.NewEngine()
	}

	rpcServer := rpc.NewServer()
	rpcServer.RegisterCodec(json2.NewCodec(), "application/json")
	rpcServer.RegisterCodec(json2.NewCodec(), "application/json;charset=UTF-8")

	validate := validator.New()
	rpcServer.RegisterValidateRequestFunc(
		func(_ *rpc.RequestInfo, request interface{}) error {
			err := validate.Struct(request)
			if err == nil {
				return nil
			}
			return &json2.Error{
				Code:    json2.E_BAD_PARAMS,
				Message: err.Error(),
				Data:    errorData{Code: CodeValidationError},
			}
		})

	electionModule := NewElectionModule(engine)
	if err := rpcServer.RegisterService(electionModule, "Election"); err != nil {
		return nil, fmt.Errorf("registering election module: %w", err)
	}
	systemModule := NewSystemModule(config.Version, electionModule)
	if err := rpcServer.RegisterService(systemModule, "System"); err != nil {
		return nil, fmt.Errorf("registering system module: %w", err)
	}

	router := mux.NewRouter()
	router.Handle("/", rpcServer).Methods("POST")

	return &Server{
		rpcServer: rpcServer,
		server:    httpserver.New("rpc", config.Address, router, logger),
	}, nil
}

// Start starts the server and blocks until it is listening.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	ready := make(chan struct{})
	s.done = make(chan error)

	go s.server.Run(ctx, ready, s.done)

	select {
	case <-ready:
		logger.Infof("rpc server listening on %s", s.server.GetAddress())
		return nil
	case err := <-s.done:
		close(s.done)
		if err != nil {
			return err
		}
		return fmt.Errorf("rpc server exited unexpectedly")
	}
}

// Stop stops the server, waiting for the graceful shutdown.
func (s *Server) Stop() error {
	s.cancel()
	select {
	case err := <-s.done:
		close(s.done)
		return err
	case <-time.NewTimer(30 * time.Second).C:
		return fmt.Errorf("rpc server exit timeout")
	}
}

// Address blocks until the server is listening and returns its
// effective address.
func (s *Server) Address() string {
	return s.server.GetAddress().String()
}
