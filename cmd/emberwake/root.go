// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberwake Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the Emberwake CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "emberwake",
		Short: "Emberwake - browser game server",
		Long: `Emberwake is the account and game server for the Emberwake
browser game. It serves the registration and verification endpoints and
manages the game database schema.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
