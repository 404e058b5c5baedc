package delivery

import (
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/abacus-network/abacus/relayer/config"
)

type Config struct {
	Origin      config.MailboxConfig `mapstructure:"origin"`
	Destination config.MailboxConfig `mapstructure:"destination"`
	Validators  ValidatorsConfig     `mapstructure:"validators"`
	Delivery    DeliveryConfig       `mapstructure:"delivery"`
	// Directory of the message index. The index is kept in memory when empty.
	StorePath string `mapstructure:"store-path"`
	// Listen address of the status server. Disabled when empty.
	StatusAddr string `mapstructure:"status-addr"`
}

type ValidatorsConfig struct {
	Addresses []common.Address `mapstructure:"addresses"`
	Threshold int              `mapstructure:"threshold"`
	// Directory the validators publish signed checkpoints to
	CheckpointsPath string `mapstructure:"checkpoints-path"`
}

type DeliveryConfig struct {
	Concurrency  int           `mapstructure:"concurrency"`
	RetryBudget  int           `mapstructure:"retry-budget"`
	PollInterval time.Duration `mapstructure:"poll-interval"`
	BackoffBase  time.Duration `mapstructure:"backoff-base"`
	BackoffMax   time.Duration `mapstructure:"backoff-max"`
	// Blocks below head at which the origin checkpoint is read
	CheckpointLag *uint64 `mapstructure:"checkpoint-lag"`
	StartNonce    uint32  `mapstructure:"start-nonce"`
	// Only messages matching the whitelist are relayed when it is set
	Whitelist MatchingList `mapstructure:"whitelist"`
	Blacklist MatchingList `mapstructure:"blacklist"`
}

func (c DeliveryConfig) orchestratorConfig() OrchestratorConfig {
	return OrchestratorConfig{
		RetryBudget:   c.RetryBudget,
		PollInterval:  c.PollInterval,
		Backoff:       Backoff{Base: c.BackoffBase, Max: c.BackoffMax},
		CheckpointLag: c.CheckpointLag,
		Whitelist:     c.Whitelist,
		Blacklist:     c.Blacklist,
	}
}

func (c Config) Validate() error {
	if err := c.Origin.Validate(); err != nil {
		return fmt.Errorf("origin config: %w", err)
	}
	if err := c.Destination.Validate(); err != nil {
		return fmt.Errorf("destination config: %w", err)
	}
	if c.Origin.Domain == c.Destination.Domain {
		return fmt.Errorf("origin and destination share domain %d", c.Origin.Domain)
	}
	if err := c.Validators.Validate(); err != nil {
		return fmt.Errorf("validators config: %w", err)
	}
	if err := c.Delivery.Validate(); err != nil {
		return fmt.Errorf("delivery config: %w", err)
	}
	return nil
}

func (c ValidatorsConfig) Validate() error {
	if len(c.Addresses) == 0 {
		return errors.New("no validator addresses")
	}
	if c.Threshold < 1 || c.Threshold > len(c.Addresses) {
		return fmt.Errorf("threshold %d out of range [1, %d]", c.Threshold, len(c.Addresses))
	}
	if c.CheckpointsPath == "" {
		return errors.New("checkpoints path not set")
	}
	return nil
}

func (c DeliveryConfig) Validate() error {
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be positive, got %d", c.Concurrency)
	}
	if c.RetryBudget < 0 {
		return fmt.Errorf("retry budget must not be negative, got %d", c.RetryBudget)
	}
	if c.PollInterval <= 0 {
		return errors.New("poll interval must be positive")
	}
	if c.BackoffBase <= 0 || c.BackoffMax < c.BackoffBase {
		return fmt.Errorf("invalid backoff range [%s, %s]", c.BackoffBase, c.BackoffMax)
	}
	return nil
}
