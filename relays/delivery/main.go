package delivery

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/abacus-network/abacus/relayer/chain"
	"github.com/abacus-network/abacus/relayer/checkpoint"
	"github.com/abacus-network/abacus/relayer/indexer"
)

// Relay delivers the messages of one origin mailbox to one destination.
type Relay struct {
	config   *Config
	keys     Keys
	registry *Registry
	metrics  *Metrics
}

func NewRelay(config *Config, keys Keys) *Relay {
	return &Relay{
		config:   config,
		keys:     keys,
		registry: NewRegistry(),
		metrics:  NewMetrics(),
	}
}

func (r *Relay) Registry() *Registry {
	return r.registry
}

func (r *Relay) Start(ctx context.Context, eg *errgroup.Group) error {
	origin, closeOrigin, err := OpenMailbox(ctx, r.config.Origin, nil)
	if err != nil {
		return fmt.Errorf("open origin mailbox: %w", err)
	}

	destination, closeDestination, err := OpenMailbox(ctx, r.config.Destination, &r.keys)
	if err != nil {
		closeOrigin()
		return fmt.Errorf("open destination mailbox: %w", err)
	}

	eg.Go(func() error {
		<-ctx.Done()
		closeOrigin()
		closeDestination()
		return nil
	})

	return r.start(ctx, eg, origin, destination)
}

// start wires the pipeline between two opened mailboxes.
func (r *Relay) start(ctx context.Context, eg *errgroup.Group, origin chain.MailboxEvents, destination chain.MailboxProcessor) error {
	store, err := r.openStore(ctx, eg, origin.LocalDomain())
	if err != nil {
		return err
	}
	ix := indexer.New(origin, store)

	quorum, err := checkpoint.NewQuorumConfig(map[chain.Domain]checkpoint.ValidatorSet{
		origin.LocalDomain(): {
			Validators: r.config.Validators.Addresses,
			Threshold:  r.config.Validators.Threshold,
		},
	})
	if err != nil {
		return err
	}
	verifier := checkpoint.NewVerifier(quorum, checkpoint.ECDSAVerifier{})

	storage, err := checkpoint.NewLocalStorage(r.config.Validators.CheckpointsPath)
	if err != nil {
		return err
	}
	source := checkpoint.NewMailboxSource(origin, storage)

	orchestrator := NewOrchestrator(
		ix,
		destination,
		source,
		verifier,
		r.registry,
		r.metrics,
		r.config.Delivery.orchestratorConfig(),
	)

	nonces := make(chan uint32, r.config.Delivery.Concurrency)

	listener := NewListener(ix, r.config.Delivery.StartNonce, r.config.Delivery.PollInterval, r.metrics, nonces)
	err = listener.Start(ctx, eg)
	if err != nil {
		return err
	}

	processor := NewProcessor(orchestrator, r.config.Delivery.Concurrency, nonces)
	err = processor.Start(ctx, eg)
	if err != nil {
		return err
	}

	if r.config.StatusAddr != "" {
		server := NewStatusServer(r.config.StatusAddr, r.registry, r.metrics)
		err = server.Start(ctx, eg)
		if err != nil {
			return err
		}
	}

	log.WithFields(log.Fields{
		"origin":      origin.LocalDomain(),
		"destination": destination.LocalDomain(),
		"startNonce":  r.config.Delivery.StartNonce,
		"concurrency": r.config.Delivery.Concurrency,
	}).Info("Delivery relay started")

	return nil
}

func (r *Relay) openStore(ctx context.Context, eg *errgroup.Group, domain chain.Domain) (indexer.Store, error) {
	if r.config.StorePath == "" {
		return indexer.NewMemoryStore(), nil
	}

	db, err := indexer.OpenDB(r.config.StorePath)
	if err != nil {
		return nil, fmt.Errorf("open message index: %w", err)
	}
	eg.Go(func() error {
		<-ctx.Done()
		return db.Close()
	})

	store := db.Store(domain)
	cached, err := store.Count()
	if err != nil {
		return nil, fmt.Errorf("read message index: %w", err)
	}
	log.WithFields(log.Fields{
		"path":   r.config.StorePath,
		"domain": domain,
		"cached": cached,
	}).Info("Opened message index")
	return store, nil
}
