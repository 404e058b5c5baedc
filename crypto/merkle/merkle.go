// Code is based on a heavily modified version of https://github.com/wilfreddenton/merkle

package merkle

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/abacus-network/abacus/relayer/crypto/keccak"
)

// TreeDepth is the fixed depth of a mailbox tree. It can hold 2^32 - 1 leaves.
const TreeDepth = 32

var ErrTreeFull = errors.New("merkle tree is full")

type Hasher interface {
	// Hash calculates the hash of a given input
	Hash([]byte) []byte
}

// Proof is an inclusion proof of Leaf at position Index.
type Proof struct {
	Leaf  common.Hash
	Index uint32
	Path  [TreeDepth]common.Hash
}

// zeroHashes returns the roots of empty subtrees at each height.
func zeroHashes(h Hasher) [TreeDepth + 1]common.Hash {
	var zeros [TreeDepth + 1]common.Hash
	for i := 0; i < TreeDepth; i++ {
		zeros[i+1] = hashPair(h, zeros[i], zeros[i])
	}
	return zeros
}

func hashPair(h Hasher, left, right common.Hash) common.Hash {
	if k, ok := h.(*keccak.Keccak256); ok {
		return k.Concat(left, right)
	}
	buf := make([]byte, 0, 64)
	buf = append(buf, left[:]...)
	buf = append(buf, right[:]...)
	return common.BytesToHash(h.Hash(buf))
}

// Tree is the sparse merkle tree structure. Only the populated prefix of
// each level is stored; missing right siblings are empty subtree roots.
//
//	[
//	  [ leaf, leaf, leaf, leaf, leaf ],
//	  [ digest, digest, digest ],
//	  ...
//	  [ root digest ]
//	]
type Tree struct {
	leaves []common.Hash
	zeros  [TreeDepth + 1]common.Hash
	h      Hasher

	// levels cached for the tree of levelsSize leaves
	levels     [][]common.Hash
	levelsSize int
}

func NewTree() *Tree {
	return NewTreeWithHasher(keccak.New())
}

func NewTreeWithHasher(h Hasher) *Tree {
	return &Tree{
		h:          h,
		zeros:      zeroHashes(h),
		levelsSize: -1,
	}
}

// Count returns the number of leaves in the tree
func (t *Tree) Count() uint32 {
	return uint32(len(t.leaves))
}

func (t *Tree) Leaf(index uint32) (common.Hash, bool) {
	if int(index) >= len(t.leaves) {
		return common.Hash{}, false
	}
	return t.leaves[index], true
}

func (t *Tree) Insert(leaf common.Hash) error {
	if uint64(len(t.leaves)) >= 1<<TreeDepth-1 {
		return ErrTreeFull
	}
	t.leaves = append(t.leaves, leaf)
	return nil
}

// Root returns the root of the whole tree.
func (t *Tree) Root() common.Hash {
	return t.RootAt(t.Count())
}

// RootAt returns the root the tree had when it held size leaves.
func (t *Tree) RootAt(size uint32) common.Hash {
	if size == 0 || int(size) > len(t.leaves) {
		return t.zeros[TreeDepth]
	}
	levels := t.build(int(size))
	return levels[TreeDepth][0]
}

// Prove builds the authentication path for index against the tree of size leaves.
func (t *Tree) Prove(index, size uint32) (*Proof, error) {
	if int(size) > len(t.leaves) {
		return nil, fmt.Errorf("tree has %d leaves, cannot prove against size %d", len(t.leaves), size)
	}
	if index >= size {
		return nil, fmt.Errorf("leaf index %d outside tree of size %d", index, size)
	}

	levels := t.build(int(size))
	proof := Proof{
		Leaf:  t.leaves[index],
		Index: index,
	}

	for d := 0; d < TreeDepth; d++ {
		sibling := int((index >> d) ^ 1)
		if sibling < len(levels[d]) {
			proof.Path[d] = levels[d][sibling]
		} else {
			proof.Path[d] = t.zeros[d]
		}
	}

	return &proof, nil
}

func (t *Tree) build(size int) [][]common.Hash {
	if t.levelsSize == size {
		return t.levels
	}

	levels := make([][]common.Hash, TreeDepth+1)
	levels[0] = t.leaves[:size]

	for d := 0; d < TreeDepth; d++ {
		level := levels[d]
		next := make([]common.Hash, (len(level)+1)/2)
		for i := range next {
			left := level[2*i]
			right := t.zeros[d]
			if 2*i+1 < len(level) {
				right = level[2*i+1]
			}
			next[i] = hashPair(t.h, left, right)
		}
		levels[d+1] = next
	}

	t.levels = levels
	t.levelsSize = size
	return levels
}

// BranchRoot computes the root implied by a leaf, its index and its path.
func BranchRoot(h Hasher, leaf common.Hash, path [TreeDepth]common.Hash, index uint32) common.Hash {
	node := leaf
	for d := 0; d < TreeDepth; d++ {
		if (index>>d)&1 == 1 {
			node = hashPair(h, path[d], node)
		} else {
			node = hashPair(h, node, path[d])
		}
	}
	return node
}

// Verify checks the proof against root using keccak256.
func (p *Proof) Verify(root common.Hash) bool {
	return BranchRoot(keccak.New(), p.Leaf, p.Path, p.Index) == root
}
