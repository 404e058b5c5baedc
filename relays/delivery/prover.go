package delivery

import (
	"context"
	"fmt"
	"sync"

	"github.com/abacus-network/abacus/relayer/chain"
	"github.com/abacus-network/abacus/relayer/checkpoint"
	"github.com/abacus-network/abacus/relayer/crypto/merkle"
	"github.com/abacus-network/abacus/relayer/indexer"
)

// Prover mirrors the origin tree from indexed message ids and builds
// inclusion proofs against checkpoint roots. It is shared by all deliveries
// from one origin.
type Prover struct {
	indexer *indexer.Indexer

	mu   sync.Mutex
	tree *merkle.Tree
}

func NewProver(ix *indexer.Indexer) *Prover {
	return &Prover{
		indexer: ix,
		tree:    merkle.NewTree(),
	}
}

func (p *Prover) Count() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tree.Count()
}

// Prove returns the proof of nonce against the tree attested by cp.
func (p *Prover) Prove(ctx context.Context, nonce uint32, cp chain.Checkpoint) (*merkle.Proof, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.sync(ctx, cp.Size())
	if err != nil {
		return nil, err
	}

	root := p.tree.RootAt(cp.Size())
	if root != cp.Root {
		return nil, &checkpoint.VerificationError{
			Domain: cp.MailboxDomain,
			Reason: checkpoint.ReasonRootMismatch,
			Detail: fmt.Sprintf("local tree root %s differs from checkpoint root %s at index %d",
				root.Hex(), cp.Root.Hex(), cp.Index),
		}
	}

	return p.tree.Prove(nonce, cp.Size())
}

func (p *Prover) sync(ctx context.Context, size uint32) error {
	for p.tree.Count() < size {
		nonce := p.tree.Count()
		id, ok, err := p.indexer.IDByNonce(ctx, nonce)
		if err != nil {
			return fmt.Errorf("sync prover leaf %d: %w", nonce, err)
		}
		if !ok {
			return chain.NewTransientError("sync prover", fmt.Errorf("leaf %d not indexed yet", nonce))
		}
		err = p.tree.Insert(id)
		if err != nil {
			return chain.NewPermanentError("sync prover", err)
		}
	}
	return nil
}
