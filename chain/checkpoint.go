// Copyright 2020 Snowfork
// SPDX-License-Identifier: LGPL-3.0-only

package chain

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Checkpoint is a snapshot of a mailbox tree. Index is the position of the
// latest leaf committed to by Root, so the attested tree holds Index+1 leaves.
type Checkpoint struct {
	MailboxAddress common.Hash `json:"mailbox_address"`
	MailboxDomain  Domain      `json:"mailbox_domain"`
	Root           common.Hash `json:"root"`
	Index          uint32      `json:"index"`
}

// Covers reports whether the leaf at nonce is part of the attested tree.
func (c Checkpoint) Covers(nonce uint32) bool {
	return c.Index >= nonce
}

// Size is the number of leaves in the attested tree.
func (c Checkpoint) Size() uint32 {
	return c.Index + 1
}

// SigningHash is the digest validators attest to.
func (c Checkpoint) SigningHash() common.Hash {
	domainHash := DomainHash(c.MailboxDomain)

	var index [4]byte
	binary.BigEndian.PutUint32(index[:], c.Index)

	return crypto.Keccak256Hash(domainHash[:], c.MailboxAddress[:], c.Root[:], index[:])
}

// Digest is the EIP-191 prefixed signing hash recovered against.
func (c Checkpoint) Digest() common.Hash {
	signingHash := c.SigningHash()
	return common.BytesToHash(accounts.TextHash(signingHash[:]))
}

func (c Checkpoint) String() string {
	return fmt.Sprintf("checkpoint(domain=%d, index=%d, root=%s)", c.MailboxDomain, c.Index, c.Root.Hex())
}

// SignedCheckpoint carries a checkpoint with the validator signatures over its digest.
type SignedCheckpoint struct {
	Checkpoint Checkpoint
	Signatures [][]byte
}

type signedCheckpointJSON struct {
	Checkpoint Checkpoint      `json:"checkpoint"`
	Signatures []hexutil.Bytes `json:"signatures"`
}

func (sc SignedCheckpoint) MarshalJSON() ([]byte, error) {
	sigs := make([]hexutil.Bytes, len(sc.Signatures))
	for i, sig := range sc.Signatures {
		sigs[i] = sig
	}
	return json.Marshal(signedCheckpointJSON{
		Checkpoint: sc.Checkpoint,
		Signatures: sigs,
	})
}

func (sc *SignedCheckpoint) UnmarshalJSON(data []byte) error {
	var aux signedCheckpointJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	sc.Checkpoint = aux.Checkpoint
	sc.Signatures = make([][]byte, len(aux.Signatures))
	for i, sig := range aux.Signatures {
		sc.Signatures[i] = sig
	}

	return nil
}
