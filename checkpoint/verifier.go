package checkpoint

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"

	"github.com/abacus-network/abacus/relayer/chain"
)

type Reason string

const (
	ReasonDomainMismatch   Reason = "domain-mismatch"
	ReasonUnknownDomain    Reason = "unknown-domain"
	ReasonStaleIndex       Reason = "stale-index"
	ReasonIndexBeyondCount Reason = "index-beyond-count"
	ReasonQuorumUnmet      Reason = "quorum-unmet"
	ReasonRootMismatch     Reason = "root-mismatch"
)

// VerificationError is returned for a checkpoint that can never become valid.
type VerificationError struct {
	Domain chain.Domain
	Reason Reason
	Detail string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("checkpoint verification failed for domain %d: %s: %s", e.Domain, e.Reason, e.Detail)
}

// Permanent marks verification failures as never retryable.
func (e *VerificationError) Permanent() bool {
	return true
}

func newVerificationError(domain chain.Domain, reason Reason, format string, args ...interface{}) *VerificationError {
	return &VerificationError{
		Domain: domain,
		Reason: reason,
		Detail: fmt.Sprintf(format, args...),
	}
}

// Verifier validates signed checkpoints against the quorum configuration and
// the tree sizes observed on each origin. Accepted indexes only move forward.
type Verifier struct {
	quorum     *QuorumConfig
	signatures SignatureVerifier

	mu       sync.Mutex
	accepted map[chain.Domain]uint32
	counts   map[chain.Domain]uint32
}

func NewVerifier(quorum *QuorumConfig, signatures SignatureVerifier) *Verifier {
	return &Verifier{
		quorum:     quorum,
		signatures: signatures,
		accepted:   make(map[chain.Domain]uint32),
		counts:     make(map[chain.Domain]uint32),
	}
}

// ObserveCount records a tree size read from the origin mailbox.
func (v *Verifier) ObserveCount(domain chain.Domain, count uint32) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if current, ok := v.counts[domain]; !ok || count > current {
		v.counts[domain] = count
	}
}

// LastAccepted returns the highest index accepted for domain.
func (v *Verifier) LastAccepted(domain chain.Domain) (uint32, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	index, ok := v.accepted[domain]
	return index, ok
}

func (v *Verifier) Verify(sc chain.SignedCheckpoint, domain chain.Domain) error {
	cp := sc.Checkpoint

	if chain.DomainHash(cp.MailboxDomain) != chain.DomainHash(domain) {
		return newVerificationError(domain, ReasonDomainMismatch,
			"checkpoint is bound to domain %d", cp.MailboxDomain)
	}

	set, ok := v.quorum.ValidatorSet(domain)
	if !ok {
		return newVerificationError(domain, ReasonUnknownDomain, "no validator set configured")
	}

	v.mu.Lock()
	err := v.checkIndex(domain, cp)
	v.mu.Unlock()
	if err != nil {
		return err
	}

	signers := v.countSigners(sc, set)
	if signers < set.Threshold {
		return newVerificationError(domain, ReasonQuorumUnmet,
			"%d of %d required validator signatures", signers, set.Threshold)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	// another checkpoint may have been accepted while signatures were recovered
	err = v.checkIndex(domain, cp)
	if err != nil {
		return err
	}
	if current, ok := v.accepted[domain]; !ok || cp.Index > current {
		v.accepted[domain] = cp.Index
	}

	return nil
}

// checkIndex must be called with mu held.
func (v *Verifier) checkIndex(domain chain.Domain, cp chain.Checkpoint) error {
	if last, ok := v.accepted[domain]; ok && cp.Index < last {
		return newVerificationError(domain, ReasonStaleIndex,
			"index %d is below accepted index %d", cp.Index, last)
	}
	if count, ok := v.counts[domain]; ok && cp.Index >= count {
		return newVerificationError(domain, ReasonIndexBeyondCount,
			"index %d is outside the observed tree of %d leaves", cp.Index, count)
	}
	return nil
}

func (v *Verifier) countSigners(sc chain.SignedCheckpoint, set ValidatorSet) int {
	digest := sc.Checkpoint.Digest()
	seen := make(map[common.Address]bool, len(sc.Signatures))

	for i, sig := range sc.Signatures {
		signer, err := v.signatures.Recover(digest, sig)
		if err != nil {
			log.WithFields(log.Fields{
				"domain":    sc.Checkpoint.MailboxDomain,
				"index":     sc.Checkpoint.Index,
				"signature": i,
			}).WithError(err).Debug("Skipping unrecoverable checkpoint signature")
			continue
		}
		if set.Contains(signer) {
			seen[signer] = true
		}
	}

	return len(seen)
}
