// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package commands implements the offline-election command line
// interface.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	cfg "github.com/Quality-Assurance-DAO/Offline-election-tool/config"
	"github.com/Quality-Assurance-DAO/Offline-election-tool/internal/log"
)

var (
	config = cfg.DefaultConfig()
	logger = log.NewFromGlobal(log.AddContext("pkg", "cmd"))
)

// NewRootCommand creates the root command
func NewRootCommand() (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:   "offline-election",
		Short: "Offline simulator for NPoS validator elections",
		Long: `Offline-election replicates the validator selection of
NPoS chains outside the chain itself.
Usage:
	offline-election run --input-file dataset.json --active-set-size 10
	offline-election run --rpc-url http://localhost:9933 --algorithm parallel-phragmen
	offline-election run --synthetic --synthetic-seed 42 --diagnostics
	offline-election serve --rpc-address localhost:8545 --publish-metrics`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
			if err := viper.Unmarshal(config); err != nil {
				return fmt.Errorf("failed to unmarshal config: %s", err)
			}
			if err := config.ValidateBasic(); err != nil {
				return fmt.Errorf("error in config: %s", err)
			}

			level, err := log.ParseLevel(config.LogLevel)
			if err != nil {
				return err
			}
			log.PatchLevel(level)
			return nil
		},
	}

	if err := addRootFlags(cmd); err != nil {
		return nil, err
	}

	return cmd, nil
}

// addRootFlags adds the root flags to the command
func addRootFlags(cmd *cobra.Command) error {
	if err := addStringFlagBindViper(cmd,
		"log-level",
		config.LogLevel,
		"Global log level. Supports levels critical (silent), error, warn, info, debug and trace",
		"log-level"); err != nil {
		return fmt.Errorf("failed to add --log-level flag: %s", err)
	}
	return nil
}

// Execute builds the command tree and runs the requested command.
func Execute() error {
	rootCmd, err := NewRootCommand()
	if err != nil {
		return fmt.Errorf("failed to create root command: %s", err)
	}

	rootCmd.AddCommand(
		newRunCommand(),
		newServeCommand(),
		VersionCmd,
	)

	return rootCmd.Execute()
}
