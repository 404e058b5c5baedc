package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"github.com/abacus-network/abacus/relayer/chain"
	"github.com/abacus-network/abacus/relayer/cmd/run/delivery"
	"github.com/abacus-network/abacus/relayer/indexer"
	relay "github.com/abacus-network/abacus/relayer/relays/delivery"
)

type messageOutput struct {
	ID          common.Hash   `json:"id"`
	Version     uint8         `json:"version"`
	Nonce       uint32        `json:"nonce"`
	Origin      chain.Domain  `json:"origin"`
	Sender      common.Hash   `json:"sender"`
	Destination chain.Domain  `json:"destination"`
	Recipient   common.Hash   `json:"recipient"`
	Body        hexutil.Bytes `json:"body"`
	Delivered   bool          `json:"delivered"`
}

func fetchMessageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "fetch-message",
		Short:   "Fetch a dispatched message by nonce and report whether it was delivered",
		Args:    cobra.ExactArgs(0),
		Example: "abacus-relay fetch-message --config relay.json --nonce 3",
		RunE:    fetchMessageFn,
	}
	cmd.Flags().String("config", "", "Path to relay configuration file")
	cmd.MarkFlagRequired("config")
	cmd.Flags().Uint32("nonce", 0, "Message nonce")
	cmd.MarkFlagRequired("nonce")
	return cmd
}

func fetchMessageFn(cmd *cobra.Command, _ []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	nonce, _ := cmd.Flags().GetUint32("nonce")
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

	destination, closeDestination, err := relay.OpenMailbox(ctx, config.Destination, nil)
	if err != nil {
		return err
	}
	defer closeDestination()

	raw, err := indexer.New(origin, indexer.NewMemoryStore()).MessageByNonce(ctx, nonce)
	if err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("no message with nonce %d on domain %d", nonce, config.Origin.Domain)
	}

	message, err := raw.Decode()
	if err != nil {
		return err
	}

	delivered, err := destination.Delivered(ctx, raw.ID())
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(messageOutput{
		ID:          raw.ID(),
		Version:     message.Version,
		Nonce:       message.Nonce,
		Origin:      message.Origin,
		Sender:      message.Sender,
		Destination: message.Destination,
		Recipient:   message.Recipient,
		Body:        message.Body,
		Delivered:   delivered,
	}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
