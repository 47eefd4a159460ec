// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	cfg "github.com/Quality-Assurance-DAO/Offline-election-tool/config"
)

// VersionCmd prints the tool version.
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of offline-election",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("offline-election version %s\n", cfg.GetStableVersion())
		return nil
	},
}
