package delivery

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/abacus-network/abacus/relayer/chain"
	"github.com/abacus-network/abacus/relayer/indexer"
)

// Listener polls the origin tree size and emits every new nonce once, in
// ascending order, so that one checkpoint can prove a run of messages.
type Listener struct {
	indexer      *indexer.Indexer
	next         uint32
	pollInterval time.Duration
	metrics      *Metrics
	nonces       chan<- uint32
}

func NewListener(
	ix *indexer.Indexer,
	startNonce uint32,
	pollInterval time.Duration,
	metrics *Metrics,
	nonces chan<- uint32,
) *Listener {
	return &Listener{
		indexer:      ix,
		next:         startNonce,
		pollInterval: pollInterval,
		metrics:      metrics,
		nonces:       nonces,
	}
}

func (li *Listener) Start(ctx context.Context, eg *errgroup.Group) error {
	eg.Go(func() error {
		defer close(li.nonces)

		err := li.pollNonces(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	return nil
}

func (li *Listener) pollNonces(ctx context.Context) error {
	domain := li.indexer.Domain()

	for {
		count, err := li.indexer.Count(ctx)
		if err != nil {
			if chain.IsPermanent(err) {
				return err
			}
			log.WithField("domain", domain).WithError(err).Warn("Failed to poll message count")
		}

		for ; err == nil && li.next < count; li.next++ {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case li.nonces <- li.next:
			}
			li.metrics.listenerNonce.WithLabelValues(domain.String()).Set(float64(li.next + 1))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(li.pollInterval):
		}
	}
}
