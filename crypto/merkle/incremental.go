package merkle

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/abacus-network/abacus/relayer/crypto/keccak"
)

// IncrementalTree keeps only the left frontier of the tree, the same way the
// on-chain mailbox does. It can compute the current root but not proofs.
type IncrementalTree struct {
	branch [TreeDepth]common.Hash
	zeros  [TreeDepth + 1]common.Hash
	count  uint32
	h      Hasher
}

func NewIncrementalTree() *IncrementalTree {
	h := keccak.New()
	return &IncrementalTree{
		zeros: zeroHashes(h),
		h:     h,
	}
}

func (t *IncrementalTree) Count() uint32 {
	return t.count
}

func (t *IncrementalTree) Insert(leaf common.Hash) error {
	if uint64(t.count) >= 1<<TreeDepth-1 {
		return ErrTreeFull
	}

	t.count++
	size := t.count
	node := leaf
	for i := 0; i < TreeDepth; i++ {
		if size&1 == 1 {
			t.branch[i] = node
			return nil
		}
		node = hashPair(t.h, t.branch[i], node)
		size >>= 1
	}

	return nil
}

func (t *IncrementalTree) Root() common.Hash {
	var node common.Hash
	for i := 0; i < TreeDepth; i++ {
		if (t.count>>i)&1 == 1 {
			node = hashPair(t.h, t.branch[i], node)
		} else {
			node = hashPair(t.h, node, t.zeros[i])
		}
	}
	return node
}
