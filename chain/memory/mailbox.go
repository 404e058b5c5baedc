// Copyright 2020 Snowfork
// SPDX-License-Identifier: LGPL-3.0-only

// Package memory provides a Mailbox kept entirely in process memory. It backs
// local development setups and tests of everything built on chain.Mailbox.
package memory

import (
	"context"
	"encoding/binary"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/abacus-network/abacus/relayer/chain"
	"github.com/abacus-network/abacus/relayer/crypto/merkle"
)

var (
	_ chain.MailboxEvents    = &Mailbox{}
	_ chain.MailboxProcessor = &Mailbox{}
)

type Mailbox struct {
	domain        chain.Domain
	address       common.Hash
	defaultModule common.Hash

	mu           sync.RWMutex
	tree         *merkle.IncrementalTree
	leaves       []common.Hash
	roots        []common.Hash
	messages     map[common.Hash]chain.RawMessage
	delivered    map[common.Hash]bool
	outcomes     map[common.Hash]*chain.TxOutcome
	readErr      error
	processErrs  []error
	processCalls int
	lastMetadata []byte
	blockNumber  uint64
}

func NewMailbox(domain chain.Domain, address common.Hash) *Mailbox {
	tree := merkle.NewIncrementalTree()
	return &Mailbox{
		domain:        domain,
		address:       address,
		defaultModule: crypto.Keccak256Hash([]byte("multisig"), address[:]),
		tree:          tree,
		roots:         []common.Hash{tree.Root()},
		messages:      make(map[common.Hash]chain.RawMessage),
		delivered:     make(map[common.Hash]bool),
		outcomes:      make(map[common.Hash]*chain.TxOutcome),
	}
}

func (m *Mailbox) Address() common.Hash {
	return m.address
}

func (m *Mailbox) LocalDomain() chain.Domain {
	return m.domain
}

// Dispatch inserts a message into the tree, assigning it the next nonce.
func (m *Mailbox) Dispatch(destination chain.Domain, sender, recipient common.Hash, body []byte) (chain.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	msg := chain.Message{
		Nonce:       m.tree.Count(),
		Origin:      m.domain,
		Sender:      sender,
		Destination: destination,
		Recipient:   recipient,
		Body:        body,
	}
	raw := msg.Raw()

	err := m.tree.Insert(raw.ID())
	if err != nil {
		return chain.RawMessage{}, err
	}
	m.leaves = append(m.leaves, raw.ID())
	m.roots = append(m.roots, m.tree.Root())
	m.messages[raw.ID()] = raw
	m.blockNumber++

	return raw, nil
}

// SetReadError makes every subsequent query fail with err until reset with nil.
func (m *Mailbox) SetReadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readErr = err
}

// FailProcess queues errors returned by the next calls to Process, one per call.
func (m *Mailbox) FailProcess(errs ...error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.processErrs = append(m.processErrs, errs...)
}

// MarkDelivered records id as delivered as if another relayer had processed it.
func (m *Mailbox) MarkDelivered(id common.Hash) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delivered[id] = true
}

func (m *Mailbox) ProcessCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.processCalls
}

func (m *Mailbox) LastMetadata() []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastMetadata
}

// Root is the root the tree had when it held size leaves. Like the on-chain
// mailbox, only the roots observed after each insertion are kept.
func (m *Mailbox) Root(size uint32) common.Hash {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if int(size) >= len(m.roots) {
		return m.roots[len(m.roots)-1]
	}
	return m.roots[size]
}

func (m *Mailbox) Count(_ context.Context) (uint32, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.readErr != nil {
		return 0, m.readErr
	}
	return m.tree.Count(), nil
}

func (m *Mailbox) Delivered(_ context.Context, id common.Hash) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.readErr != nil {
		return false, m.readErr
	}
	return m.delivered[id], nil
}

// LatestCheckpoint treats every dispatch as one block, so lag hides the most
// recent lag insertions.
func (m *Mailbox) LatestCheckpoint(_ context.Context, lag *uint64) (chain.Checkpoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.readErr != nil {
		return chain.Checkpoint{}, m.readErr
	}

	size := uint64(m.tree.Count())
	if lag != nil {
		if *lag >= size {
			size = 0
		} else {
			size -= *lag
		}
	}
	if size == 0 {
		return chain.Checkpoint{}, chain.ErrNoCheckpoint
	}

	return chain.Checkpoint{
		MailboxAddress: m.address,
		MailboxDomain:  m.domain,
		Root:           m.roots[size],
		Index:          uint32(size - 1),
	}, nil
}

func (m *Mailbox) Status(_ context.Context, txHash common.Hash) (*chain.TxOutcome, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.readErr != nil {
		return nil, m.readErr
	}
	return m.outcomes[txHash], nil
}

func (m *Mailbox) DefaultModule(_ context.Context) (common.Hash, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.readErr != nil {
		return common.Hash{}, m.readErr
	}
	return m.defaultModule, nil
}

func (m *Mailbox) RawMessageByID(_ context.Context, id common.Hash) (*chain.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.readErr != nil {
		return nil, m.readErr
	}
	raw, ok := m.messages[id]
	if !ok {
		return nil, nil
	}
	return &raw, nil
}

func (m *Mailbox) IDByNonce(_ context.Context, nonce uint32) (common.Hash, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.readErr != nil {
		return common.Hash{}, false, m.readErr
	}
	if int(nonce) >= len(m.leaves) {
		return common.Hash{}, false, nil
	}
	return m.leaves[nonce], true, nil
}

// Process marks the message delivered. Queued failures are returned first,
// and a message that was already delivered yields a reverted outcome.
func (m *Mailbox) Process(_ context.Context, message chain.RawMessage, metadata []byte) (*chain.TxOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.processCalls++
	m.lastMetadata = metadata

	if len(m.processErrs) > 0 {
		err := m.processErrs[0]
		m.processErrs = m.processErrs[1:]
		return nil, err
	}

	var seq [8]byte
	binary.BigEndian.PutUint64(seq[:], uint64(m.processCalls))
	m.blockNumber++

	id := message.ID()
	outcome := &chain.TxOutcome{
		TxHash:      crypto.Keccak256Hash(id[:], seq[:]),
		Executed:    !m.delivered[id],
		GasUsed:     uint64(21000 + 16*len(message.Bytes)),
		BlockNumber: m.blockNumber,
	}
	m.delivered[id] = true
	m.outcomes[outcome.TxHash] = outcome

	return outcome, nil
}
