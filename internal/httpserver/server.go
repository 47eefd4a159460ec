// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package httpserver implements an HTTP server designed to run
// within a goroutine and to signal its readiness and termination
// through channels.
package httpserver

import (
	"context"
	"net"
	"net/http"
)

// Server is an HTTP server with a name and a notifying mechanism
// for when its listening address is set.
type Server struct {
	name       string
	address    string
	addressSet chan struct{}
	listening  net.Addr
	handler    http.Handler
	logger     Logger
	optional   optionalSettings
}

// New creates a new HTTP server with a name, listening on
// the address given, using the handler and logger given as
// well as the options given.
func New(name, address string, handler http.Handler,
	logger Logger, options ...Option) *Server {
	return &Server{
		name:       name,
		address:    address,
		addressSet: make(chan struct{}),
		handler:    handler,
		logger:     logger,
		optional:   newOptionalSettings(options),
	}
}

// GetAddress blocks until the server is listening and returns the
// effective listening address, which differs from the configured
// address when a port 0 is configured.
func (s *Server) GetAddress() net.Addr {
	<-s.addressSet
	return s.listening
}

// Run runs the HTTP server, closes the ready channel once the server
// is listening, and writes exactly one error (possibly nil) to the
// done channel when the server terminates.
func (s *Server) Run(ctx context.Context, ready chan<- struct{}, done chan<- error) {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		done <- err
		return
	}
	s.listening = listener.Addr()
	close(s.addressSet)

	server := http.Server{
		Addr:              s.address,
		Handler:           s.handler,
		ReadTimeout:       s.optional.readTimeout,
		ReadHeaderTimeout: s.optional.readHeaderTimeout,
	}

	shutdownDone := make(chan error)
	go func() {
		<-ctx.Done()
		s.logger.Warn(s.name + " http server shutting down: " + ctx.Err().Error())
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(), s.optional.shutdownTimeout)
		defer cancel()
		shutdownDone <- server.Shutdown(shutdownCtx)
	}()

	s.logger.Info(s.name + " http server listening on " + s.listening.String())
	close(ready)

	err = server.Serve(listener)
	if ctx.Err() == nil {
		// not a context triggered shutdown
		if err != nil && err != http.ErrServerClosed {
			s.logger.Error(s.name + " http server crashed: " + err.Error())
		}
		done <- err
		return
	}

	done <- <-shutdownDone
}
