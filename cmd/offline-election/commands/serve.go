// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Quality-Assurance-DAO/Offline-election-tool/api"
	cfg "github.com/Quality-Assurance-DAO/Offline-election-tool/config"
	"github.com/Quality-Assurance-DAO/Offline-election-tool/internal/metrics"
)

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the election engine over JSON-RPC",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execServe()
		},
	}

	if err := addServeFlags(cmd); err != nil {
		panic(fmt.Sprintf("failed to add serve flags: %s", err))
	}

	return cmd
}

func addServeFlags(cmd *cobra.Command) error {
	if err := addStringFlagBindViper(cmd,
		"rpc-address",
		config.RPCAddress,
		"Listen address of the JSON-RPC server",
		"rpc-address"); err != nil {
		return fmt.Errorf("failed to add --rpc-address flag: %s", err)
	}
	if err := addStringFlagBindViper(cmd,
		"metrics-address",
		config.MetricsAddress,
		"Listen address of the metrics server",
		"metrics-address"); err != nil {
		return fmt.Errorf("failed to add --metrics-address flag: %s", err)
	}
	if err := addBoolFlagBindViper(cmd,
		"publish-metrics",
		config.PublishMetrics,
		"Publish metrics to prometheus",
		"publish-metrics"); err != nil {
		return fmt.Errorf("failed to add --publish-metrics flag: %s", err)
	}
	return nil
}

func execServe() error {
	server, err := api.NewServer(api.ServerConfig{
		Address: config.RPCAddress,
		Version: cfg.GetStableVersion(),
	})
	if err != nil {
		return err
	}

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting rpc server: %w", err)
	}

	var metricsServer *metrics.Server
	if config.PublishMetrics {
		metricsServer = metrics.NewServer(config.MetricsAddress)
		if err := metricsServer.Start(config.MetricsAddress); err != nil {
			if stopErr := server.Stop(); stopErr != nil {
				logger.Errorf("stopping rpc server: %s", stopErr)
			}
			return fmt.Errorf("starting metrics server: %w", err)
		}
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	received := <-signals
	logger.Infof("received %s signal, shutting down", received)

	if metricsServer != nil {
		if err := metricsServer.Stop(); err != nil {
			logger.Errorf("stopping metrics server: %s", err)
		}
	}
	return server.Stop()
}
