// Copyright 2020 Snowfork
// SPDX-License-Identifier: LGPL-3.0-only

package ethereum

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	goEthereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	log "github.com/sirupsen/logrus"

	"github.com/abacus-network/abacus/relayer/chain"
	"github.com/abacus-network/abacus/relayer/contracts"
)

// Mailbox adapts a deployed Mailbox contract.
type Mailbox struct {
	conn          *Connection
	domain        chain.Domain
	address       common.Address
	contract      *contracts.Mailbox
	deployBlock   uint64
	confirmations uint64
}

var _ chain.MailboxEvents = &Mailbox{}
var _ chain.MailboxProcessor = &Mailbox{}

// NewMailbox binds the contract at address. conn must already be connected.
func NewMailbox(conn *Connection, domain chain.Domain, address common.Address) (*Mailbox, error) {
	contract, err := contracts.NewMailbox(address, conn.Client())
	if err != nil {
		return nil, fmt.Errorf("bind mailbox: %w", err)
	}
	return &Mailbox{
		conn:          conn,
		domain:        domain,
		address:       address,
		contract:      contract,
		deployBlock:   conn.config.DeployBlock,
		confirmations: conn.config.Confirmations,
	}, nil
}

// CheckDomain fails when the contract reports a different local domain than
// the one configured.
func (m *Mailbox) CheckDomain(ctx context.Context) error {
	domain, err := m.contract.LocalDomain(&bind.CallOpts{Context: ctx})
	if err != nil {
		return classify("localDomain", err)
	}
	if chain.Domain(domain) != m.domain {
		return chain.NewPermanentError("localDomain", fmt.Errorf("contract reports domain %d, configured %d", domain, m.domain))
	}
	return nil
}

func (m *Mailbox) LocalDomain() chain.Domain {
	return m.domain
}

func (m *Mailbox) Count(ctx context.Context) (uint32, error) {
	count, err := m.contract.Count(&bind.CallOpts{Context: ctx})
	if err != nil {
		return 0, classify("count", err)
	}
	return count, nil
}

func (m *Mailbox) Delivered(ctx context.Context, id common.Hash) (bool, error) {
	delivered, err := m.contract.Delivered(&bind.CallOpts{Context: ctx}, id)
	if err != nil {
		return false, classify("delivered", err)
	}
	return delivered, nil
}

func (m *Mailbox) LatestCheckpoint(ctx context.Context, lag *uint64) (chain.Checkpoint, error) {
	opts, err := m.conn.CallOptsAt(ctx, lag)
	if err != nil {
		return chain.Checkpoint{}, classify("latestCheckpoint", err)
	}

	// latestCheckpoint reverts on an empty tree
	count, err := m.contract.Count(opts)
	if err != nil {
		return chain.Checkpoint{}, classify("latestCheckpoint", err)
	}
	if count == 0 {
		return chain.Checkpoint{}, chain.ErrNoCheckpoint
	}

	root, index, err := m.contract.LatestCheckpoint(opts)
	if err != nil {
		return chain.Checkpoint{}, classify("latestCheckpoint", err)
	}

	return chain.Checkpoint{
		MailboxAddress: common.BytesToHash(m.address.Bytes()),
		MailboxDomain:  m.domain,
		Root:           root,
		Index:          index,
	}, nil
}

func (m *Mailbox) DefaultModule(ctx context.Context) (common.Hash, error) {
	ism, err := m.contract.DefaultIsm(&bind.CallOpts{Context: ctx})
	if err != nil {
		return common.Hash{}, classify("defaultIsm", err)
	}
	return common.BytesToHash(ism.Bytes()), nil
}

func (m *Mailbox) Status(ctx context.Context, txHash common.Hash) (*chain.TxOutcome, error) {
	receipt, err := m.conn.Client().TransactionReceipt(ctx, txHash)
	if err != nil {
		if errors.Is(err, goEthereum.NotFound) {
			return nil, nil
		}
		return nil, classify("status", err)
	}
	return outcomeFromReceipt(receipt), nil
}

func (m *Mailbox) filterOpts(ctx context.Context) *bind.FilterOpts {
	return &bind.FilterOpts{Start: m.deployBlock, Context: ctx}
}

func (m *Mailbox) IDByNonce(ctx context.Context, nonce uint32) (common.Hash, bool, error) {
	iter, err := m.contract.FilterDispatch(m.filterOpts(ctx), nil, []*big.Int{new(big.Int).SetUint64(uint64(nonce))})
	if err != nil {
		return common.Hash{}, false, classify("dispatchByNonce", err)
	}
	defer iter.Close()

	var id common.Hash
	found := false
	for iter.Next() {
		id = iter.Event.MessageId
		found = true
	}
	if err := iter.Error(); err != nil {
		return common.Hash{}, false, classify("dispatchByNonce", err)
	}
	return id, found, nil
}

func (m *Mailbox) RawMessageByID(ctx context.Context, id common.Hash) (*chain.RawMessage, error) {
	iter, err := m.contract.FilterDispatch(m.filterOpts(ctx), [][32]byte{id}, nil)
	if err != nil {
		return nil, classify("dispatchByID", err)
	}
	defer iter.Close()

	var message *chain.RawMessage
	for iter.Next() {
		if !iter.Event.LeafIndex.IsUint64() || iter.Event.LeafIndex.Uint64() > uint64(^uint32(0)) {
			return nil, chain.NewPermanentError("dispatchByID", fmt.Errorf("leaf index %v out of range", iter.Event.LeafIndex))
		}
		message = &chain.RawMessage{
			Nonce: uint32(iter.Event.LeafIndex.Uint64()),
			Bytes: iter.Event.Message,
		}
	}
	if err := iter.Error(); err != nil {
		return nil, classify("dispatchByID", err)
	}
	return message, nil
}

func (m *Mailbox) Process(ctx context.Context, message chain.RawMessage, metadata []byte) (*chain.TxOutcome, error) {
	opts, err := m.conn.MakeTxOpts(ctx)
	if err != nil {
		return nil, chain.NewPermanentError("process", err)
	}

	tx, err := m.contract.Process(opts, metadata, message.Bytes)
	if err != nil {
		return nil, classify("process", err)
	}

	log.WithFields(log.Fields{
		"nonce":  message.Nonce,
		"id":     message.ID().Hex(),
		"txHash": tx.Hash().Hex(),
	}).Info("Submitted process transaction")

	receipt, err := m.conn.WatchTransaction(ctx, tx, m.confirmations)
	if err != nil {
		return nil, classify("process", err)
	}
	return outcomeFromReceipt(receipt), nil
}

func outcomeFromReceipt(receipt *types.Receipt) *chain.TxOutcome {
	outcome := chain.TxOutcome{
		TxHash:   receipt.TxHash,
		Executed: receipt.Status == types.ReceiptStatusSuccessful,
		GasUsed:  receipt.GasUsed,
	}
	if receipt.BlockNumber != nil {
		outcome.BlockNumber = receipt.BlockNumber.Uint64()
	}
	return &outcome
}
