// Copyright 2020 Snowfork
// SPDX-License-Identifier: LGPL-3.0-only

package chain

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// Mailbox is the capability set every chain adapter exposes. Implementations
// must be safe for concurrent use.
type Mailbox interface {
	// LocalDomain is the domain of the chain the mailbox is deployed on.
	LocalDomain() Domain
	// Count is the number of leaves inserted into the outbound tree.
	Count(ctx context.Context) (uint32, error)
	// Delivered reports whether the message id has been processed on this chain.
	Delivered(ctx context.Context, id common.Hash) (bool, error)
	// LatestCheckpoint reads the tree checkpoint as of head-lag when lag is set.
	LatestCheckpoint(ctx context.Context, lag *uint64) (Checkpoint, error)
	// Status returns nil when the transaction has not been observed yet.
	Status(ctx context.Context, txHash common.Hash) (*TxOutcome, error)
	// DefaultModule is the interchain security module used for messages without their own.
	DefaultModule(ctx context.Context) (common.Hash, error)
}

// MailboxEvents adds lookups over the messages a mailbox has dispatched.
type MailboxEvents interface {
	Mailbox
	// RawMessageByID returns nil when no message with the id was ever dispatched.
	RawMessageByID(ctx context.Context, id common.Hash) (*RawMessage, error)
	// IDByNonce returns false when no leaf has been inserted at nonce yet.
	IDByNonce(ctx context.Context, nonce uint32) (common.Hash, bool, error)
}

// MailboxProcessor is a destination mailbox that accepts inbound messages.
type MailboxProcessor interface {
	Mailbox
	Process(ctx context.Context, message RawMessage, metadata []byte) (*TxOutcome, error)
}
