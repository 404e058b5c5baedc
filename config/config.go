package config

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

const (
	ProtocolEthereum  = "ethereum"
	ProtocolSubstrate = "substrate"
)

type EthereumConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	GasFeeCap uint64 `mapstructure:"gas-fee-cap"`
	GasTipCap uint64 `mapstructure:"gas-tip-cap"`
	GasLimit  uint64 `mapstructure:"gas-limit"`
	// Blocks a process transaction must be buried under before its outcome is final
	Confirmations uint64 `mapstructure:"confirmations"`
	// First block scanned for dispatch events
	DeployBlock uint64 `mapstructure:"deploy-block"`
}

type SubstrateConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	// Pallet hosting the mailbox storage and calls
	Pallet string `mapstructure:"pallet"`
}

// MailboxConfig locates the mailbox of one chain.
type MailboxConfig struct {
	Domain    uint32          `mapstructure:"domain"`
	Protocol  string          `mapstructure:"protocol"`
	Address   common.Hash     `mapstructure:"address"`
	Ethereum  EthereumConfig  `mapstructure:"ethereum"`
	Substrate SubstrateConfig `mapstructure:"substrate"`
}

func (c MailboxConfig) Validate() error {
	switch c.Protocol {
	case ProtocolEthereum:
		if c.Ethereum.Endpoint == "" {
			return errors.New("ethereum endpoint not set")
		}
		if c.Address == (common.Hash{}) {
			return errors.New("mailbox address not set")
		}
	case ProtocolSubstrate:
		if c.Substrate.Endpoint == "" {
			return errors.New("substrate endpoint not set")
		}
	default:
		return fmt.Errorf("unsupported protocol %q", c.Protocol)
	}
	return nil
}

// EthereumAddress is the 20 byte contract address of an EVM mailbox.
func (c MailboxConfig) EthereumAddress() common.Address {
	return common.BytesToAddress(c.Address[12:])
}
