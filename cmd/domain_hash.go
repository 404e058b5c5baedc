package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abacus-network/abacus/relayer/chain"
)

func domainHashCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "domain-hash",
		Short:   "Print the hash binding checkpoints to a domain",
		Args:    cobra.ExactArgs(0),
		Example: "abacus-relay domain-hash --domain 1000",
		RunE:    domainHashFn,
	}
	cmd.Flags().Uint32("domain", 0, "Domain identifier")
	cmd.MarkFlagRequired("domain")
	return cmd
}

func domainHashFn(cmd *cobra.Command, _ []string) error {
	domain, err := cmd.Flags().GetUint32("domain")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), chain.DomainHash(chain.Domain(domain)).Hex())
	return nil
}
