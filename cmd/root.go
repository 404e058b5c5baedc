// Copyright 2020 Snowfork
// SPDX-License-Identifier: LGPL-3.0-only

package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/abacus-network/abacus/relayer/cmd/run"
)

var rootCmd = &cobra.Command{
	Use:          "abacus-relay",
	Short:        "Abacus Relay delivers interchain messages between mailboxes",
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(run.Command())
	rootCmd.AddCommand(domainHashCmd())
	rootCmd.AddCommand(fetchMessageCmd())
	rootCmd.AddCommand(latestCheckpointCmd())
	rootCmd.AddCommand(signCheckpointCmd())
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
