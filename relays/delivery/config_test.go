package delivery

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"

	"github.com/abacus-network/abacus/relayer/config"
)

func validConfig() Config {
	return Config{
		Origin: config.MailboxConfig{
			Domain:   1000,
			Protocol: config.ProtocolEthereum,
			Address:  common.HexToHash("0xaaaa"),
			Ethereum: config.EthereumConfig{Endpoint: "ws://localhost:8546"},
		},
		Destination: config.MailboxConfig{
			Domain:    2000,
			Protocol:  config.ProtocolSubstrate,
			Substrate: config.SubstrateConfig{Endpoint: "ws://localhost:9944"},
		},
		Validators: ValidatorsConfig{
			Addresses:       []common.Address{common.HexToAddress("0x01"), common.HexToAddress("0x02")},
			Threshold:       2,
			CheckpointsPath: "/tmp/checkpoints",
		},
		Delivery: DeliveryConfig{
			Concurrency:  4,
			RetryBudget:  3,
			PollInterval: time.Second,
			BackoffBase:  time.Second,
			BackoffMax:   time.Minute,
		},
	}
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, validConfig().Validate())

	cases := map[string]func(c *Config){
		"same domain":         func(c *Config) { c.Destination.Domain = c.Origin.Domain },
		"bad origin":          func(c *Config) { c.Origin.Ethereum.Endpoint = "" },
		"no validators":       func(c *Config) { c.Validators.Addresses = nil },
		"threshold too high":  func(c *Config) { c.Validators.Threshold = 3 },
		"zero threshold":      func(c *Config) { c.Validators.Threshold = 0 },
		"no checkpoints path": func(c *Config) { c.Validators.CheckpointsPath = "" },
		"no concurrency":      func(c *Config) { c.Delivery.Concurrency = 0 },
		"negative budget":     func(c *Config) { c.Delivery.RetryBudget = -1 },
		"no poll interval":    func(c *Config) { c.Delivery.PollInterval = 0 },
		"inverted backoff":    func(c *Config) { c.Delivery.BackoffMax = time.Millisecond },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := validConfig()
			mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
