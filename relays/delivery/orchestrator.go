package delivery

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/abacus-network/abacus/relayer/chain"
	"github.com/abacus-network/abacus/relayer/checkpoint"
	"github.com/abacus-network/abacus/relayer/indexer"
)

var ErrNotExecuted = errors.New("transaction was included but not executed")

type OrchestratorConfig struct {
	// RetryBudget is the number of retries allowed after transient failures.
	RetryBudget   int
	PollInterval  time.Duration
	Backoff       Backoff
	CheckpointLag *uint64
	Whitelist     MatchingList
	Blacklist     MatchingList
}

// Orchestrator drives messages from one origin to one destination. A single
// instance is safe to use for many concurrent deliveries.
type Orchestrator struct {
	origin      chain.Domain
	indexer     *indexer.Indexer
	destination chain.MailboxProcessor
	source      checkpoint.Source
	verifier    *checkpoint.Verifier
	prover      *Prover
	registry    *Registry
	metrics     *Metrics
	config      OrchestratorConfig

	mu       sync.Mutex
	accepted *chain.SignedCheckpoint
}

func NewOrchestrator(
	ix *indexer.Indexer,
	destination chain.MailboxProcessor,
	source checkpoint.Source,
	verifier *checkpoint.Verifier,
	registry *Registry,
	metrics *Metrics,
	config OrchestratorConfig,
) *Orchestrator {
	return &Orchestrator{
		origin:      ix.Domain(),
		indexer:     ix,
		destination: destination,
		source:      source,
		verifier:    verifier,
		prover:      NewProver(ix),
		registry:    registry,
		metrics:     metrics,
		config:      config,
	}
}

// delivery is the state of one Deliver call.
type delivery struct {
	report  Report
	message *chain.RawMessage
	matched bool
	logger  *log.Entry
}

// Deliver runs the message at nonce to a terminal state. It only returns an
// error when ctx is done, together with the last report.
func (o *Orchestrator) Deliver(ctx context.Context, nonce uint32) (*Report, error) {
	start := time.Now()
	o.metrics.inFlight.Inc()
	defer o.metrics.inFlight.Dec()

	d := &delivery{
		report: Report{Origin: o.origin, Nonce: nonce, State: StateDiscovered},
		logger: log.WithFields(log.Fields{
			"origin":      o.origin,
			"destination": o.destination.LocalDomain(),
			"nonce":       nonce,
		}),
	}
	o.transition(d, StateDiscovered)

	for {
		done, err := o.step(ctx, d)
		if err != nil {
			if ctx.Err() != nil {
				return o.snapshot(d), ctx.Err()
			}
			done, err = o.handleError(ctx, d, err)
			if err != nil {
				return o.snapshot(d), err
			}
		}
		if done {
			o.metrics.observeDelivery(d.report, time.Since(start))
			return o.snapshot(d), nil
		}
	}
}

// step advances the delivery as far as it can. It returns true on reaching
// a terminal state and waits out a poll interval when something is not
// available yet.
func (o *Orchestrator) step(ctx context.Context, d *delivery) (bool, error) {
	if d.message == nil {
		msg, err := o.indexer.MessageByNonce(ctx, d.report.Nonce)
		if err != nil {
			return false, err
		}
		if msg == nil {
			return false, o.poll(ctx, d, "Message not inserted yet")
		}
		d.message = msg
		d.report.ID = msg.ID()
		d.logger = d.logger.WithField("id", d.report.ID.Hex())
	}

	if !d.matched {
		decoded, err := d.message.Decode()
		if err != nil {
			return false, chain.NewPermanentError("decode message", err)
		}
		if !Relayable(o.config.Whitelist, o.config.Blacklist, decoded) {
			d.logger.WithFields(log.Fields{
				"sender":    decoded.Sender.Hex(),
				"recipient": decoded.Recipient.Hex(),
			}).Info("Message excluded by matching lists")
			o.transition(d, StateSkipped)
			return true, nil
		}
		d.matched = true
	}

	delivered, err := o.destination.Delivered(ctx, d.report.ID)
	if err != nil {
		return false, fmt.Errorf("check delivered: %w", err)
	}
	if delivered {
		d.logger.Info("Message already delivered")
		o.transition(d, StateDelivered)
		return true, nil
	}
	o.transition(d, StateIndexed)

	sc, err := o.checkpointFor(ctx, d.report.Nonce)
	if err != nil {
		return false, err
	}
	if sc == nil {
		return false, o.poll(ctx, d, "Waiting for a checkpoint covering the message")
	}

	proof, err := o.prover.Prove(ctx, d.report.Nonce, sc.Checkpoint)
	o.metrics.proverLeaves.WithLabelValues(o.origin.String()).Set(float64(o.prover.Count()))
	if err != nil {
		return false, err
	}
	if proof.Leaf != d.report.ID {
		return false, chain.NewPermanentError("prove message",
			fmt.Errorf("%w: tree leaf %s differs from message id", indexer.ErrInconsistentIndex, proof.Leaf.Hex()))
	}

	module, err := o.destination.DefaultModule(ctx)
	if err != nil {
		return false, fmt.Errorf("fetch default module: %w", err)
	}

	metadata, err := FormatMetadata(sc, proof, module)
	if err != nil {
		return false, chain.NewPermanentError("format metadata", err)
	}
	o.transition(d, StateProofReady)

	d.logger.WithFields(log.Fields{
		"checkpointIndex": sc.Checkpoint.Index,
		"root":            sc.Checkpoint.Root.Hex(),
	}).Info("Submitting message")
	o.transition(d, StateSubmitted)

	outcome, err := o.destination.Process(ctx, *d.message, metadata)
	if err == nil && outcome != nil {
		d.report.TxHash = &outcome.TxHash
	}
	if err == nil && outcome != nil && outcome.Executed {
		o.metrics.submissions.WithLabelValues("executed").Inc()
		d.logger.WithFields(log.Fields{
			"txHash":  outcome.TxHash.Hex(),
			"gasUsed": outcome.GasUsed,
			"block":   outcome.BlockNumber,
		}).Info("Message delivered")
		o.transition(d, StateDelivered)
		return true, nil
	}

	if err == nil {
		o.metrics.submissions.WithLabelValues("reverted").Inc()
		err = chain.NewTransientError("process", ErrNotExecuted)
	} else {
		o.metrics.submissions.WithLabelValues("error").Inc()
	}
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	// another relayer may have won the race
	delivered, derr := o.destination.Delivered(ctx, d.report.ID)
	if derr == nil && delivered {
		d.logger.WithError(err).Info("Submission failed but message was delivered by another relayer")
		o.transition(d, StateDelivered)
		return true, nil
	}

	return false, fmt.Errorf("process message: %w", err)
}

// handleError classifies err. Permanent errors end the delivery, transient
// ones consume the retry budget and back off before the next step.
func (o *Orchestrator) handleError(ctx context.Context, d *delivery, err error) (bool, error) {
	d.report.LastError = err.Error()

	var verr *checkpoint.VerificationError
	if errors.As(err, &verr) {
		d.logger.WithFields(log.Fields{
			"reason": verr.Reason,
			"domain": verr.Domain,
		}).WithError(err).Error("Checkpoint verification failed")
		o.fail(d, CategoryVerification)
		return true, nil
	}

	if chain.IsPermanent(err) {
		d.logger.WithError(err).Error("Message delivery failed permanently")
		o.fail(d, CategoryPermanent)
		return true, nil
	}

	d.report.Attempts++
	if d.report.Attempts > o.config.RetryBudget {
		d.logger.WithField("attempts", d.report.Attempts).WithError(err).Error("Message delivery retries exhausted")
		o.fail(d, CategoryRetryableExhausted)
		return true, nil
	}

	delay := o.config.Backoff.Delay(d.report.Attempts)
	d.logger.WithFields(log.Fields{
		"attempt": d.report.Attempts,
		"delay":   delay,
	}).WithError(err).Warn("Transient delivery error, retrying")
	o.registry.Update(d.report)

	if err := sleep(ctx, delay); err != nil {
		return false, err
	}
	return false, nil
}

// checkpointFor returns a verified checkpoint covering nonce, or nil when
// none is available yet.
func (o *Orchestrator) checkpointFor(ctx context.Context, nonce uint32) (*chain.SignedCheckpoint, error) {
	count, err := o.indexer.Count(ctx)
	if err != nil {
		return nil, err
	}
	o.verifier.ObserveCount(o.origin, count)

	sc, err := o.source.LatestCheckpoint(ctx, o.config.CheckpointLag)
	if err != nil {
		return nil, fmt.Errorf("fetch latest checkpoint: %w", err)
	}
	if sc == nil || !sc.Checkpoint.Covers(nonce) {
		return o.acceptedCovering(nonce), nil
	}

	err = o.verifier.Verify(*sc, o.origin)
	var verr *checkpoint.VerificationError
	if errors.As(err, &verr) && verr.Reason == checkpoint.ReasonStaleIndex {
		// a newer checkpoint was accepted concurrently
		return o.acceptedCovering(nonce), nil
	}
	if err != nil {
		return nil, err
	}

	o.accept(sc)
	return sc, nil
}

func (o *Orchestrator) accept(sc *chain.SignedCheckpoint) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.accepted == nil || sc.Checkpoint.Index > o.accepted.Checkpoint.Index {
		o.accepted = sc
		o.metrics.checkpointIndex.WithLabelValues(o.origin.String()).Set(float64(sc.Checkpoint.Index))
	}
}

func (o *Orchestrator) acceptedCovering(nonce uint32) *chain.SignedCheckpoint {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.accepted != nil && o.accepted.Checkpoint.Covers(nonce) {
		return o.accepted
	}
	return nil
}

func (o *Orchestrator) poll(ctx context.Context, d *delivery, msg string) error {
	d.logger.WithField("state", d.report.State).Debug(msg)
	return sleep(ctx, o.config.PollInterval)
}

func (o *Orchestrator) transition(d *delivery, state State) {
	d.report.State = state
	d.report.UpdatedAt = time.Now()
	o.registry.Update(d.report)
}

func (o *Orchestrator) fail(d *delivery, category Category) {
	d.report.Category = category
	o.transition(d, StateFailed)
}

func (o *Orchestrator) snapshot(d *delivery) *Report {
	report := d.report
	return &report
}
