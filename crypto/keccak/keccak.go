package keccak

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Keccak256 is the hashing method used for message ids and mailbox trees
type Keccak256 struct{}

func New() *Keccak256 {
	return &Keccak256{}
}

// Hash generates a Keccak256 hash from a byte array
func (h *Keccak256) Hash(data []byte) []byte {
	return crypto.Keccak256(data)
}

// Concat hashes the concatenation of the given 32 byte words.
func (h *Keccak256) Concat(words ...common.Hash) common.Hash {
	state := crypto.NewKeccakState()
	for _, w := range words {
		state.Write(w[:])
	}
	var out common.Hash
	state.Read(out[:])
	return out
}
