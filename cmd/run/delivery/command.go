package delivery

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/abacus-network/abacus/relayer/chain/ethereum"
	"github.com/abacus-network/abacus/relayer/chain/substrate"
	"github.com/abacus-network/abacus/relayer/config"
	"github.com/abacus-network/abacus/relayer/relays/delivery"
)

var (
	configFile              string
	ethereumPrivateKey      string
	ethereumPrivateKeyFile  string
	substratePrivateKey     string
	substratePrivateKeyFile string
	logLevel                string
)

func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delivery",
		Short: "Start the message delivery relay",
		Args:  cobra.ExactArgs(0),
		RunE:  run,
	}

	cmd.Flags().StringVar(&configFile, "config", "", "Path to configuration file")
	cmd.MarkFlagRequired("config")

	cmd.Flags().StringVar(&ethereumPrivateKey, "ethereum.private-key", "", "Ethereum private key")
	cmd.Flags().StringVar(&ethereumPrivateKeyFile, "ethereum.private-key-file", "", "The file from which to read the ethereum private key")
	cmd.Flags().StringVar(&substratePrivateKey, "substrate.private-key", "", "Substrate private key URI")
	cmd.Flags().StringVar(&substratePrivateKeyFile, "substrate.private-key-file", "", "The file from which to read the substrate private key URI")

	cmd.Flags().StringVar(&logLevel, "log-level", "debug", "Log level (trace, debug, info, warn, error)")

	return cmd
}

// LoadConfig reads and validates a relay configuration file.
func LoadConfig(path string) (*delivery.Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("delivery.concurrency", 4)
	v.SetDefault("delivery.retry-budget", 5)
	v.SetDefault("delivery.poll-interval", "6s")
	v.SetDefault("delivery.backoff-base", "2s")
	v.SetDefault("delivery.backoff-max", "2m")
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var config delivery.Config
	err := v.Unmarshal(&config, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		HexHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}

func resolveKeys(destination config.MailboxConfig) (delivery.Keys, error) {
	var keys delivery.Keys
	switch destination.Protocol {
	case config.ProtocolEthereum:
		keypair, err := ethereum.ResolvePrivateKey(ethereumPrivateKey, ethereumPrivateKeyFile)
		if err != nil {
			return keys, err
		}
		keys.Ethereum = keypair
	case config.ProtocolSubstrate:
		keypair, err := substrate.ResolvePrivateKey(substratePrivateKey, substratePrivateKeyFile)
		if err != nil {
			return keys, err
		}
		keys.Substrate = keypair
	}
	return keys, nil
}

func run(_ *cobra.Command, _ []string) error {
	log.SetOutput(logrus.WithFields(logrus.Fields{"logger": "stdlib"}).WriterLevel(logrus.InfoLevel))
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)

	config, err := LoadConfig(configFile)
	if err != nil {
		return err
	}

	keys, err := resolveKeys(config.Destination)
	if err != nil {
		return err
	}

	relay := delivery.NewRelay(config, keys)

	ctx, cancel := context.WithCancel(context.Background())
	eg, ctx := errgroup.WithContext(ctx)

	// Ensure clean termination upon SIGINT, SIGTERM
	eg.Go(func() error {
		notify := make(chan os.Signal, 1)
		signal.Notify(notify, syscall.SIGINT, syscall.SIGTERM)

		select {
		case <-ctx.Done():
			return nil
		case sig := <-notify:
			logrus.WithField("signal", sig.String()).Info("Received signal")
			cancel()
		}

		return nil
	})

	err = relay.Start(ctx, eg)
	if err != nil {
		logrus.WithError(err).Error("Failed to start relay")
		cancel()
		_ = eg.Wait()
		return err
	}

	err = eg.Wait()
	if err != nil {
		logrus.WithError(err).Error("Unhandled error")
		return err
	}

	return nil
}
