package keccak

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
)

func TestConcatMatchesHashOfJoinedWords(t *testing.T) {
	a := common.HexToHash("0x01")
	b := common.HexToHash("0x02")

	joined := append(append([]byte{}, a[:]...), b[:]...)

	h := New()
	assert.Equal(t, crypto.Keccak256Hash(joined), h.Concat(a, b))
	assert.Equal(t, crypto.Keccak256(joined), h.Hash(joined))
}
