// Copyright 2020 ChainSafe Systems
// SPDX-License-Identifier: LGPL-3.0-only

package secp256k1

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKeypairFromSeed(t *testing.T) {
	kp, err := GenerateKeypair()
	require.NoError(t, err)

	assert.NotEmpty(t, kp.PublicKey())
	assert.NotEmpty(t, kp.Address())
}

func TestEncodeAndDecodeKeypair(t *testing.T) {
	kp, err := GenerateKeypair()
	require.NoError(t, err)

	enc := kp.Encode()
	res := new(Keypair)
	require.NoError(t, res.Decode(enc))

	assert.Equal(t, kp, res)
}

func TestSignRecoversSigner(t *testing.T) {
	kp := Alice()
	digest := crypto.Keccak256Hash([]byte("checkpoint"))

	sig, err := kp.Sign(digest)
	require.NoError(t, err)
	require.Len(t, sig, 65)
	assert.Contains(t, []byte{27, 28}, sig[64])

	// SigToPub wants the raw recovery id
	raw := append([]byte{}, sig...)
	raw[64] -= 27
	pub, err := crypto.SigToPub(digest[:], raw)
	require.NoError(t, err)
	assert.Equal(t, kp.CommonAddress(), crypto.PubkeyToAddress(*pub))
	assert.NotEqual(t, Bob().CommonAddress(), crypto.PubkeyToAddress(*pub))
}
