// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package metrics exposes the election counters and serves them over
// a dedicated Prometheus HTTP endpoint.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Quality-Assurance-DAO/Offline-election-tool/internal/httpserver"
	"github.com/Quality-Assurance-DAO/Offline-election-tool/internal/log"
)

var logger log.LeveledLogger = log.NewFromGlobal(log.AddContext("pkg", "metrics"))

var (
	// ElectionsExecuted counts successful election executions by
	// algorithm name.
	ElectionsExecuted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "offline_election",
		Name:      "elections_executed_total",
		Help:      "Number of successfully executed elections",
	}, []string{"algorithm"})

	// ElectionsFailed counts failed election executions.
	ElectionsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "offline_election",
		Name:      "elections_failed_total",
		Help:      "Number of election executions returning an error",
	})

	// ElectionDuration observes election execution durations.
	ElectionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "offline_election",
		Name:      "election_duration_seconds",
		Help:      "Election execution duration in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
	})
)

// Server is a metrics http server.
type Server struct {
	cancel context.CancelFunc
	server *httpserver.Server
	done   chan error
}

// NewServer is a constructor for the metrics server.
func NewServer(address string) (s *Server) {
	m := http.NewServeMux()
	m.Handle("/metrics", promhttp.Handler())
	return &Server{
		server: httpserver.New("metrics", address, m, logger),
	}
}

// Start will start a dedicated metrics server at the given address.
func (s *Server) Start(address string) (err error) {
	logger.Infof("Starting metrics server at http://%s/metrics", address)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	ready := make(chan struct{})
	s.done = make(chan error)

	go s.server.Run(ctx, ready, s.done)

	select {
	case <-ready:
		return nil
	case err := <-s.done:
		close(s.done)
		if err != nil {
			return err
		}
		return fmt.Errorf("metrics server exited unexpectedly")
	}
}

// Stop will stop the metrics server.
func (s *Server) Stop() (err error) {
	s.cancel()
	select {
	case err := <-s.done:
		close(s.done)
		if err != nil {
			return err
		}
		return nil
	case <-time.NewTimer(30 * time.Second).C:
		return fmt.Errorf("metrics server exit timeout")
	}
}
