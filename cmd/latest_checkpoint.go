package cmd

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/abacus-network/abacus/relayer/chain"
	"github.com/abacus-network/abacus/relayer/checkpoint"
	"github.com/abacus-network/abacus/relayer/cmd/run/delivery"
	relay "github.com/abacus-network/abacus/relayer/relays/delivery"
)

func latestCheckpointCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "latest-checkpoint",
		Short:   "Compare the origin checkpoint with the latest one published by validators",
		Args:    cobra.ExactArgs(0),
		Example: "abacus-relay latest-checkpoint --config relay.json",
		RunE:    latestCheckpointFn,
	}
	cmd.Flags().String("config", "", "Path to relay configuration file")
	cmd.MarkFlagRequired("config")
	return cmd
}

func latestCheckpointFn(cmd *cobra.Command, _ []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	ctx := cmd.Context()

	config, err := delivery.LoadConfig(configFile)
	if err != nil {
		return err
	}

	origin, closeOrigin, err := relay.OpenMailbox(ctx, config.Origin, nil)
	if err != nil {
		return err
	}
	defer closeOrigin()

	onchain, err := origin.LatestCheckpoint(ctx, config.Delivery.CheckpointLag)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "on-chain:  %s\n", onchain)

	storage, err := checkpoint.NewLocalStorage(config.Validators.CheckpointsPath)
	if err != nil {
		return err
	}
	published, err := checkpoint.NewMailboxSource(origin, storage).LatestCheckpoint(ctx, config.Delivery.CheckpointLag)
	if err != nil {
		return err
	}
	if published == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "published: none")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "published: %s (%d signatures)\n", published.Checkpoint, len(published.Signatures))

	domain := chain.Domain(config.Origin.Domain)
	quorum, err := checkpoint.NewQuorumConfig(map[chain.Domain]checkpoint.ValidatorSet{
		domain: {Validators: config.Validators.Addresses, Threshold: config.Validators.Threshold},
	})
	if err != nil {
		return err
	}
	verifier := checkpoint.NewVerifier(quorum, checkpoint.ECDSAVerifier{})
	verifier.ObserveCount(domain, onchain.Size())

	if err := verifier.Verify(*published, domain); err != nil {
		log.WithError(err).Warn("Published checkpoint does not verify")
		fmt.Fprintf(cmd.OutOrStdout(), "verified:  no (%v)\n", err)
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), "verified:  yes")
	return nil
}
