// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package cfg holds the service configuration, unmarshalable from
// command line flags through viper.
package cfg

import (
	"fmt"

	"github.com/Quality-Assurance-DAO/Offline-election-tool/internal/log"
)

// StableVersion is the stable version of the tool.
const StableVersion = "0.1.0"

// GetStableVersion returns the stable version of the tool.
func GetStableVersion() string {
	return StableVersion
}

// DefaultRPCAddress is the default JSON-RPC listening address.
const DefaultRPCAddress = "localhost:8545"

// DefaultMetricsAddress is the default metrics listening address.
const DefaultMetricsAddress = "localhost:9876"

// Config is the service configuration.
type Config struct {
	// LogLevel is the global log level.
	LogLevel string `mapstructure:"log-level"`
	// RPCAddress is the JSON-RPC server listening address.
	RPCAddress string `mapstructure:"rpc-address"`
	// MetricsAddress is the metrics server listening address.
	MetricsAddress string `mapstructure:"metrics-address"`
	// PublishMetrics enables the metrics server.
	PublishMetrics bool `mapstructure:"publish-metrics"`
}

// DefaultConfig returns the default service configuration.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:       log.Info.String(),
		RPCAddress:     DefaultRPCAddress,
		MetricsAddress: DefaultMetricsAddress,
	}
}

// ValidateBasic performs the stand-alone configuration checks.
func (c *Config) ValidateBasic() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("validating log level: %w", err)
	}
	if c.RPCAddress == "" {
		return fmt.Errorf("rpc address cannot be empty")
	}
	if c.PublishMetrics && c.MetricsAddress == "" {
		return fmt.Errorf("metrics address cannot be empty when publishing metrics")
	}
	return nil
}
