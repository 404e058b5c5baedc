package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/cbroglie/mustache"
	"github.com/ethereum/go-ethereum/common/hexutil"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/abacus-network/abacus/relayer/chain"
	"github.com/abacus-network/abacus/relayer/chain/ethereum"
	"github.com/abacus-network/abacus/relayer/checkpoint"
	"github.com/abacus-network/abacus/relayer/cmd/run/delivery"
	"github.com/abacus-network/abacus/relayer/crypto/secp256k1"
	relay "github.com/abacus-network/abacus/relayer/relays/delivery"
)

func signCheckpointCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign-checkpoint",
		Short: "Sign the latest origin checkpoint as a validator and publish it to local storage",
		Long: "Signs the origin checkpoint with a validator key and merges the signature into the " +
			"checkpoint already published at the same index. Optionally renders the result through a mustache template.",
		Args:    cobra.ExactArgs(0),
		Example: "abacus-relay sign-checkpoint --config relay.json --private-key-file validator.key",
		RunE:    signCheckpointFn,
	}
	cmd.Flags().String("config", "", "Path to relay configuration file")
	cmd.MarkFlagRequired("config")
	cmd.Flags().String("private-key", "", "Validator private key")
	cmd.Flags().String("private-key-file", "", "The file from which to read the validator private key")
	cmd.Flags().String("template", "", "Mustache template rendered with the signed checkpoint")
	cmd.Flags().String("fixture-out", "", "Where to write the rendered template, stdout when empty")
	return cmd
}

func signCheckpointFn(cmd *cobra.Command, _ []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	privateKey, _ := cmd.Flags().GetString("private-key")
	privateKeyFile, _ := cmd.Flags().GetString("private-key-file")
	templateFile, _ := cmd.Flags().GetString("template")
	fixtureOut, _ := cmd.Flags().GetString("fixture-out")
	ctx := cmd.Context()

	config, err := delivery.LoadConfig(configFile)
	if err != nil {
		return err
	}

	keypair, err := ethereum.ResolvePrivateKey(privateKey, privateKeyFile)
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

	storage, err := checkpoint.NewLocalStorage(config.Validators.CheckpointsPath)
	if err != nil {
		return err
	}

	signed, err := signAndMerge(ctx, storage, onchain, keypair)
	if err != nil {
		return err
	}
	if err := storage.WriteCheckpoint(signed); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"checkpoint": signed.Checkpoint.String(),
		"validator":  keypair.CommonAddress().Hex(),
		"signatures": len(signed.Signatures),
	}).Info("Published checkpoint")

	if templateFile == "" {
		return nil
	}
	template, err := os.ReadFile(templateFile)
	if err != nil {
		return fmt.Errorf("read template: %w", err)
	}
	rendered, err := renderCheckpoint(string(template), signed)
	if err != nil {
		return err
	}
	if fixtureOut == "" {
		fmt.Fprint(cmd.OutOrStdout(), rendered)
		return nil
	}
	return os.WriteFile(fixtureOut, []byte(rendered), 0o644)
}

// signAndMerge signs cp and adds the signature to the checkpoint already
// published at the same index, if it commits to the same root.
func signAndMerge(ctx context.Context, storage *checkpoint.LocalStorage, cp chain.Checkpoint, keypair *secp256k1.Keypair) (chain.SignedCheckpoint, error) {
	signed, err := checkpoint.Sign(cp, keypair)
	if err != nil {
		return chain.SignedCheckpoint{}, err
	}

	existing, err := storage.FetchCheckpoint(ctx, cp.Index)
	if err != nil {
		return chain.SignedCheckpoint{}, err
	}
	if existing == nil || existing.Checkpoint != cp {
		return signed, nil
	}

	for _, sig := range existing.Signatures {
		if bytes.Equal(sig, signed.Signatures[0]) {
			return *existing, nil
		}
	}
	existing.Signatures = append(existing.Signatures, signed.Signatures[0])
	return *existing, nil
}

type checkpointFixture struct {
	Domain     uint32
	DomainHash string
	Mailbox    string
	Root       string
	Index      uint32
	Digest     string
	Signatures []string
}

func renderCheckpoint(template string, sc chain.SignedCheckpoint) (string, error) {
	fixture := checkpointFixture{
		Domain:     uint32(sc.Checkpoint.MailboxDomain),
		DomainHash: sc.Checkpoint.MailboxDomain.Hash().Hex(),
		Mailbox:    sc.Checkpoint.MailboxAddress.Hex(),
		Root:       sc.Checkpoint.Root.Hex(),
		Index:      sc.Checkpoint.Index,
		Digest:     sc.Checkpoint.Digest().Hex(),
	}
	for _, sig := range sc.Signatures {
		fixture.Signatures = append(fixture.Signatures, hexutil.Encode(sig))
	}

	rendered, err := mustache.Render(template, fixture)
	if err != nil {
		return "", fmt.Errorf("render checkpoint fixture: %w", err)
	}
	return rendered, nil
}
