package indexer

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"

	"github.com/abacus-network/abacus/relayer/chain"
)

// ErrInconsistentIndex is returned when nonce and id lookups of a mailbox disagree.
var ErrInconsistentIndex = errors.New("inconsistent message index")

// Indexer resolves leaf nonces to message ids and ids to messages for one
// origin mailbox. Resolved entries are cached forever, misses never are.
type Indexer struct {
	events chain.MailboxEvents
	store  Store
}

func New(events chain.MailboxEvents, store Store) *Indexer {
	return &Indexer{
		events: events,
		store:  store,
	}
}

func (ix *Indexer) Domain() chain.Domain {
	return ix.events.LocalDomain()
}

func (ix *Indexer) Count(ctx context.Context) (uint32, error) {
	count, err := ix.events.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch message count: %w", err)
	}
	return count, nil
}

// IDByNonce returns false, without error, when no leaf exists at nonce yet.
func (ix *Indexer) IDByNonce(ctx context.Context, nonce uint32) (common.Hash, bool, error) {
	id, ok, err := ix.store.IDByNonce(nonce)
	if err != nil {
		return common.Hash{}, false, err
	}
	if ok {
		return id, true, nil
	}

	count, err := ix.Count(ctx)
	if err != nil {
		return common.Hash{}, false, err
	}
	if nonce >= count {
		return common.Hash{}, false, nil
	}

	id, ok, err = ix.events.IDByNonce(ctx, nonce)
	if err != nil {
		return common.Hash{}, false, fmt.Errorf("fetch id of nonce %d: %w", nonce, err)
	}
	if !ok {
		return common.Hash{}, false, nil
	}

	err = ix.store.PutID(nonce, id)
	if err != nil {
		return common.Hash{}, false, err
	}

	log.WithFields(log.Fields{
		"domain": ix.Domain(),
		"nonce":  nonce,
		"id":     id.Hex(),
	}).Debug("Indexed message id")

	return id, true, nil
}

// RawMessageByID returns nil, without error, when the mailbox never dispatched id.
func (ix *Indexer) RawMessageByID(ctx context.Context, id common.Hash) (*chain.RawMessage, error) {
	msg, err := ix.store.Message(id)
	if err != nil {
		return nil, err
	}
	if msg != nil {
		return msg, nil
	}

	msg, err = ix.events.RawMessageByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch message %s: %w", id.Hex(), err)
	}
	if msg == nil {
		return nil, nil
	}
	if msg.ID() != id {
		return nil, chain.NewPermanentError(
			"fetch message",
			fmt.Errorf("%w: lookup of %s returned message %s", ErrInconsistentIndex, id.Hex(), msg.ID().Hex()),
		)
	}

	err = ix.store.PutMessage(*msg)
	if err != nil {
		return nil, err
	}
	err = ix.store.PutID(msg.Nonce, id)
	if err != nil {
		return nil, err
	}

	return msg, nil
}

// MessageByNonce resolves the message at nonce and checks that both lookups agree.
// It returns nil, without error, when no leaf exists at nonce yet.
func (ix *Indexer) MessageByNonce(ctx context.Context, nonce uint32) (*chain.RawMessage, error) {
	id, ok, err := ix.IDByNonce(ctx, nonce)
	if err != nil || !ok {
		return nil, err
	}

	msg, err := ix.RawMessageByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		// The id was seen in the tree but the dispatch event is not visible
		// yet, which happens while load balanced nodes catch up.
		return nil, chain.NewTransientError(
			"fetch message",
			fmt.Errorf("message %s at nonce %d not found", id.Hex(), nonce),
		)
	}
	if msg.Nonce != nonce {
		return nil, chain.NewPermanentError(
			"fetch message",
			fmt.Errorf("%w: message %s has nonce %d, expected %d", ErrInconsistentIndex, id.Hex(), msg.Nonce, nonce),
		)
	}

	return msg, nil
}
