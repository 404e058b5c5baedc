// Copyright 2020 Snowfork
// SPDX-License-Identifier: LGPL-3.0-only

package secp256k1

// DevKeypair derives a deterministic keypair from a well-known name. Only for
// local setups and tests.
func DevKeypair(name string) *Keypair {
	bz := padWithZeros([]byte(name), PrivateKeyLength)
	kp, err := NewKeypairFromPrivateKey(bz)
	if err != nil {
		panic(err)
	}
	return kp
}

func Alice() *Keypair {
	return DevKeypair("Alice")
}

func Bob() *Keypair {
	return DevKeypair("Bob")
}

// padWithZeros adds on extra 0 bytes to make a byte array of a specified length
func padWithZeros(key []byte, targetLength int) []byte {
	res := make([]byte, targetLength-len(key))
	return append(res, key...)
}
