package merkle

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leafAt(i int) common.Hash {
	return crypto.Keccak256Hash([]byte{byte(i), byte(i >> 8)})
}

func TestEmptyTreeRoot(t *testing.T) {
	tree := NewTree()
	incremental := NewIncrementalTree()

	zeros := zeroHashes(tree.h)
	assert.Equal(t, zeros[TreeDepth], tree.Root())
	assert.Equal(t, tree.Root(), incremental.Root())
}

func TestRootsMatchIncrementalTree(t *testing.T) {
	tree := NewTree()
	incremental := NewIncrementalTree()

	for i := 0; i < 33; i++ {
		require.NoError(t, tree.Insert(leafAt(i)))
		require.NoError(t, incremental.Insert(leafAt(i)))

		assert.Equal(t, incremental.Count(), tree.Count())
		assert.Equal(t, incremental.Root(), tree.Root(), "size %d", i+1)
	}
}

func TestProofsVerifyAtEverySize(t *testing.T) {
	tree := NewTree()
	for i := 0; i < 17; i++ {
		require.NoError(t, tree.Insert(leafAt(i)))
	}

	for size := uint32(1); size <= tree.Count(); size++ {
		root := tree.RootAt(size)
		for index := uint32(0); index < size; index++ {
			proof, err := tree.Prove(index, size)
			require.NoError(t, err)
			assert.Equal(t, leafAt(int(index)), proof.Leaf)
			assert.True(t, proof.Verify(root), "index %d size %d", index, size)
		}
	}
}

func TestProofRejectsOtherRoot(t *testing.T) {
	tree := NewTree()
	for i := 0; i < 4; i++ {
		require.NoError(t, tree.Insert(leafAt(i)))
	}

	proof, err := tree.Prove(1, 4)
	require.NoError(t, err)
	assert.False(t, proof.Verify(tree.RootAt(3)))

	proof.Leaf = leafAt(2)
	assert.False(t, proof.Verify(tree.RootAt(4)))
}

func TestProveOutOfRange(t *testing.T) {
	tree := NewTree()
	require.NoError(t, tree.Insert(leafAt(0)))

	_, err := tree.Prove(1, 1)
	assert.Error(t, err)

	_, err = tree.Prove(0, 2)
	assert.Error(t, err)
}
