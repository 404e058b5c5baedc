package delivery

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Processor runs a delivery for every nonce it receives, at most
// concurrency at a time.
type Processor struct {
	orchestrator *Orchestrator
	concurrency  int
	nonces       <-chan uint32
}

func NewProcessor(orchestrator *Orchestrator, concurrency int, nonces <-chan uint32) *Processor {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Processor{
		orchestrator: orchestrator,
		concurrency:  concurrency,
		nonces:       nonces,
	}
}

func (p *Processor) Start(ctx context.Context, eg *errgroup.Group) error {
	eg.Go(func() error {
		err := p.processNonces(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	return nil
}

func (p *Processor) processNonces(ctx context.Context) error {
	var workers errgroup.Group
	workers.SetLimit(p.concurrency)

	defer func() {
		_ = workers.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case nonce, ok := <-p.nonces:
			if !ok {
				return workers.Wait()
			}
			workers.Go(func() error {
				p.deliver(ctx, nonce)
				return nil
			})
		}
	}
}

func (p *Processor) deliver(ctx context.Context, nonce uint32) {
	report, err := p.orchestrator.Deliver(ctx, nonce)
	if err != nil {
		log.WithField("nonce", nonce).WithError(err).Debug("Delivery interrupted")
		return
	}

	logger := log.WithFields(log.Fields{
		"nonce":    report.Nonce,
		"id":       report.ID.Hex(),
		"attempts": report.Attempts,
	})
	if report.State == StateFailed {
		logger.WithFields(log.Fields{
			"category":  report.Category,
			"lastError": report.LastError,
		}).Error("Message delivery failed")
		return
	}
	logger.Info("Message delivery finished")
}
