package checkpoint

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/abacus-network/abacus/relayer/chain"
)

// Source supplies the latest signed checkpoint of an origin mailbox.
type Source interface {
	// LatestCheckpoint returns nil when no signed checkpoint is available yet.
	LatestCheckpoint(ctx context.Context, lag *uint64) (*chain.SignedCheckpoint, error)
}

// MailboxSource pairs the checkpoint read from the origin mailbox with the
// signatures published for it.
type MailboxSource struct {
	origin chain.Mailbox
	syncer Syncer
}

func NewMailboxSource(origin chain.Mailbox, syncer Syncer) *MailboxSource {
	return &MailboxSource{
		origin: origin,
		syncer: syncer,
	}
}

func (s *MailboxSource) LatestCheckpoint(ctx context.Context, lag *uint64) (*chain.SignedCheckpoint, error) {
	onchain, err := s.origin.LatestCheckpoint(ctx, lag)
	if errors.Is(err, chain.ErrNoCheckpoint) {
		log.WithField("domain", s.origin.LocalDomain()).Debug("Origin tree has no leaves at the lagged block")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch origin checkpoint: %w", err)
	}

	latest, ok, err := s.syncer.LatestIndex(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch latest signed index: %w", err)
	}
	if !ok {
		return nil, nil
	}

	// signatures may be published ahead of what the lagged read can see
	index := latest
	if index > onchain.Index {
		index = onchain.Index
	}

	sc, err := s.syncer.FetchCheckpoint(ctx, index)
	if err != nil {
		return nil, fmt.Errorf("fetch signed checkpoint %d: %w", index, err)
	}
	if sc == nil {
		log.WithFields(log.Fields{
			"domain":       s.origin.LocalDomain(),
			"index":        index,
			"onchainIndex": onchain.Index,
		}).Debug("Signed checkpoint not published yet")
		return nil, nil
	}

	if sc.Checkpoint.Index == onchain.Index && sc.Checkpoint.Root != onchain.Root {
		return nil, newVerificationError(s.origin.LocalDomain(), ReasonRootMismatch,
			"signed root %s differs from mailbox root %s at index %d",
			sc.Checkpoint.Root.Hex(), onchain.Root.Hex(), onchain.Index)
	}

	return sc, nil
}
