package delivery

import (
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/abacus-network/abacus/relayer/chain"
	"github.com/abacus-network/abacus/relayer/crypto/merkle"
)

const (
	metadataSignatureLength = 65
	metadataFixedLength     = 32 + 4 + 32 + 32 + 32*merkle.TreeDepth + 1
)

// FormatMetadata encodes the proof of a message for the default security module:
//
//	root(32) | index(4) | origin mailbox(32) | module(32) | proof(32*32) | count(1) | signatures(65*count)
func FormatMetadata(sc *chain.SignedCheckpoint, proof *merkle.Proof, module common.Hash) ([]byte, error) {
	if len(sc.Signatures) > 255 {
		return nil, fmt.Errorf("too many signatures: %d", len(sc.Signatures))
	}

	out := make([]byte, 0, metadataFixedLength+metadataSignatureLength*len(sc.Signatures))
	out = append(out, sc.Checkpoint.Root[:]...)
	out = binary.BigEndian.AppendUint32(out, sc.Checkpoint.Index)
	out = append(out, sc.Checkpoint.MailboxAddress[:]...)
	out = append(out, module[:]...)
	for _, node := range proof.Path {
		out = append(out, node[:]...)
	}
	out = append(out, byte(len(sc.Signatures)))
	for i, sig := range sc.Signatures {
		if len(sig) != metadataSignatureLength {
			return nil, fmt.Errorf("signature %d has length %d", i, len(sig))
		}
		out = append(out, sig...)
	}

	return out, nil
}
