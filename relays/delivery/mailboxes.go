package delivery

import (
	"context"
	"fmt"

	"github.com/abacus-network/abacus/relayer/chain"
	"github.com/abacus-network/abacus/relayer/chain/ethereum"
	"github.com/abacus-network/abacus/relayer/chain/substrate"
	"github.com/abacus-network/abacus/relayer/config"
	"github.com/abacus-network/abacus/relayer/crypto/secp256k1"
	"github.com/abacus-network/abacus/relayer/crypto/sr25519"
)

// Mailbox is what the relay needs from either end of a route.
type Mailbox interface {
	chain.MailboxEvents
	chain.MailboxProcessor
}

// Keys sign destination transactions. Only the key matching the
// destination protocol is required.
type Keys struct {
	Ethereum  *secp256k1.Keypair
	Substrate *sr25519.Keypair
}

// OpenMailbox connects to the chain described by cfg. A mailbox opened
// without keys can only be read from.
func OpenMailbox(ctx context.Context, cfg config.MailboxConfig, keys *Keys) (Mailbox, func(), error) {
	domain := chain.Domain(cfg.Domain)

	switch cfg.Protocol {
	case config.ProtocolEthereum:
		var kp *secp256k1.Keypair
		if keys != nil {
			kp = keys.Ethereum
			if kp == nil {
				return nil, nil, fmt.Errorf("no ethereum key for domain %d", domain)
			}
		}
		conn := ethereum.NewConnection(&cfg.Ethereum, kp)
		if err := conn.Connect(ctx); err != nil {
			return nil, nil, fmt.Errorf("connect to domain %d: %w", domain, err)
		}
		mailbox, err := ethereum.NewMailbox(conn, domain, cfg.EthereumAddress())
		if err != nil {
			conn.Close()
			return nil, nil, err
		}
		if err := startOrClose(ctx, mailbox.CheckDomain, conn.Close); err != nil {
			return nil, nil, err
		}
		return mailbox, conn.Close, nil

	case config.ProtocolSubstrate:
		var conn *substrate.Connection
		var writer *substrate.Writer
		if keys != nil {
			if keys.Substrate == nil {
				return nil, nil, fmt.Errorf("no substrate key for domain %d", domain)
			}
			conn = substrate.NewConnection(cfg.Substrate.Endpoint, keys.Substrate.AsKeyringPair())
		} else {
			conn = substrate.NewConnection(cfg.Substrate.Endpoint, nil)
		}
		if err := conn.Connect(ctx); err != nil {
			return nil, nil, fmt.Errorf("connect to domain %d: %w", domain, err)
		}
		if keys != nil {
			writer = substrate.NewWriter(conn)
			if err := startOrClose(ctx, writer.Start, conn.Close); err != nil {
				return nil, nil, err
			}
		}
		return substrate.NewMailbox(conn, writer, domain, cfg.Address, cfg.Substrate.Pallet), conn.Close, nil

	default:
		return nil, nil, fmt.Errorf("unsupported protocol %q", cfg.Protocol)
	}
}

// startOrClose runs start and closes the connection it depends on when it fails.
func startOrClose(ctx context.Context, start func(context.Context) error, closeConn func()) error {
	err := start(ctx)
	if err != nil {
		closeConn()
		return err
	}
	return nil
}
