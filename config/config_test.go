package config

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
)

func TestMailboxConfigValidate(t *testing.T) {
	cfg := MailboxConfig{
		Domain:   1000,
		Protocol: ProtocolEthereum,
		Address:  common.BytesToHash(common.HexToAddress("0x19dc38aeae620380430c200a6e990d5af5480117").Bytes()),
		Ethereum: EthereumConfig{Endpoint: "ws://localhost:8546"},
	}
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, common.HexToAddress("0x19dc38aeae620380430c200a6e990d5af5480117"), cfg.EthereumAddress())

	cfg.Address = common.Hash{}
	assert.Error(t, cfg.Validate())

	cfg.Protocol = "cosmos"
	assert.Error(t, cfg.Validate())

	sub := MailboxConfig{Protocol: ProtocolSubstrate}
	assert.Error(t, sub.Validate())
	sub.Substrate.Endpoint = "ws://localhost:9944"
	assert.NoError(t, sub.Validate())
}
