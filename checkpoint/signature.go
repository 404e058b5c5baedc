package checkpoint

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/abacus-network/abacus/relayer/chain"
	"github.com/abacus-network/abacus/relayer/crypto/secp256k1"
)

// SignatureVerifier recovers the signer of a signature over digest.
type SignatureVerifier interface {
	Recover(digest common.Hash, sig []byte) (common.Address, error)
}

// ECDSAVerifier recovers secp256k1 signers of [R || S || V] signatures.
// V may be a raw recovery id or carry the legacy 27 offset.
type ECDSAVerifier struct{}

func (ECDSAVerifier) Recover(digest common.Hash, sig []byte) (common.Address, error) {
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("invalid signature length %d", len(sig))
	}

	normalized := append([]byte{}, sig...)
	v := normalized[crypto.RecoveryIDOffset]
	if v >= 27 {
		v -= 27
	}
	if v > 1 {
		return common.Address{}, fmt.Errorf("invalid recovery id %d", sig[crypto.RecoveryIDOffset])
	}
	normalized[crypto.RecoveryIDOffset] = v

	pub, err := crypto.SigToPub(digest[:], normalized)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// Sign attests to cp with each keypair in turn.
func Sign(cp chain.Checkpoint, signers ...*secp256k1.Keypair) (chain.SignedCheckpoint, error) {
	digest := cp.Digest()
	sigs := make([][]byte, 0, len(signers))
	for _, kp := range signers {
		sig, err := kp.Sign(digest)
		if err != nil {
			return chain.SignedCheckpoint{}, fmt.Errorf("sign checkpoint with %s: %w", kp.Address(), err)
		}
		sigs = append(sigs, sig)
	}
	return chain.SignedCheckpoint{Checkpoint: cp, Signatures: sigs}, nil
}
