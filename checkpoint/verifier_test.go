package checkpoint

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abacus-network/abacus/relayer/chain"
	"github.com/abacus-network/abacus/relayer/crypto/secp256k1"
)

const (
	originDomain chain.Domain = 1000
	otherDomain  chain.Domain = 2000
)

var mailboxAddress = common.HexToHash("0x00000000000000000000000019dc38aeae620380430c200a6e990d5af5480117")

func validators(t *testing.T, n int) []*secp256k1.Keypair {
	keys := make([]*secp256k1.Keypair, n)
	for i := range keys {
		kp, err := secp256k1.GenerateKeypair()
		require.NoError(t, err)
		keys[i] = kp
	}
	return keys
}

func newTestVerifier(t *testing.T, keys []*secp256k1.Keypair, threshold int) *Verifier {
	addresses := make([]common.Address, len(keys))
	for i, kp := range keys {
		addresses[i] = kp.CommonAddress()
	}
	quorum, err := NewQuorumConfig(map[chain.Domain]ValidatorSet{
		originDomain: {Validators: addresses, Threshold: threshold},
	})
	require.NoError(t, err)
	return NewVerifier(quorum, ECDSAVerifier{})
}

func testCheckpoint(domain chain.Domain, index uint32) chain.Checkpoint {
	return chain.Checkpoint{
		MailboxAddress: mailboxAddress,
		MailboxDomain:  domain,
		Root:           common.HexToHash("0xbeef"),
		Index:          index,
	}
}

func requireReason(t *testing.T, err error, reason Reason) {
	var verr *VerificationError
	require.True(t, errors.As(err, &verr), "expected verification error, got %v", err)
	assert.Equal(t, reason, verr.Reason)
	assert.True(t, chain.IsPermanent(err))
}

func TestVerifyAcceptsQuorum(t *testing.T) {
	keys := validators(t, 3)
	v := newTestVerifier(t, keys, 2)

	sc, err := Sign(testCheckpoint(originDomain, 1), keys[0], keys[2])
	require.NoError(t, err)

	require.NoError(t, v.Verify(sc, originDomain))

	index, ok := v.LastAccepted(originDomain)
	assert.True(t, ok)
	assert.Equal(t, uint32(1), index)
}

func TestVerifyRejectsQuorumUnmet(t *testing.T) {
	keys := validators(t, 3)
	outsider := validators(t, 1)[0]
	v := newTestVerifier(t, keys, 2)

	// duplicate and foreign signatures do not count
	sc, err := Sign(testCheckpoint(originDomain, 1), keys[0], keys[0], outsider)
	require.NoError(t, err)
	sc.Signatures = append(sc.Signatures, []byte{0x01})

	requireReason(t, v.Verify(sc, originDomain), ReasonQuorumUnmet)

	_, ok := v.LastAccepted(originDomain)
	assert.False(t, ok)
}

func TestVerifyRejectsOtherDomain(t *testing.T) {
	keys := validators(t, 1)
	v := newTestVerifier(t, keys, 1)

	sc, err := Sign(testCheckpoint(originDomain, 1), keys[0])
	require.NoError(t, err)
	requireReason(t, v.Verify(sc, otherDomain), ReasonDomainMismatch)

	sc.Checkpoint.MailboxDomain = otherDomain
	requireReason(t, v.Verify(sc, otherDomain), ReasonUnknownDomain)
}

func TestVerifyRejectsRelabelledDomainSignatures(t *testing.T) {
	keys := validators(t, 1)
	addresses := []common.Address{keys[0].CommonAddress()}
	quorum, err := NewQuorumConfig(map[chain.Domain]ValidatorSet{
		originDomain: {Validators: addresses, Threshold: 1},
		otherDomain:  {Validators: addresses, Threshold: 1},
	})
	require.NoError(t, err)
	v := NewVerifier(quorum, ECDSAVerifier{})

	sc, err := Sign(testCheckpoint(originDomain, 1), keys[0])
	require.NoError(t, err)
	sc.Checkpoint.MailboxDomain = otherDomain

	requireReason(t, v.Verify(sc, otherDomain), ReasonQuorumUnmet)
}

func TestVerifyRejectsStaleIndex(t *testing.T) {
	keys := validators(t, 1)
	v := newTestVerifier(t, keys, 1)

	newer, err := Sign(testCheckpoint(originDomain, 5), keys[0])
	require.NoError(t, err)
	require.NoError(t, v.Verify(newer, originDomain))

	same, err := Sign(testCheckpoint(originDomain, 5), keys[0])
	require.NoError(t, err)
	require.NoError(t, v.Verify(same, originDomain))

	older, err := Sign(testCheckpoint(originDomain, 4), keys[0])
	require.NoError(t, err)
	requireReason(t, v.Verify(older, originDomain), ReasonStaleIndex)

	index, _ := v.LastAccepted(originDomain)
	assert.Equal(t, uint32(5), index)
}

func TestVerifyRejectsIndexBeyondObservedCount(t *testing.T) {
	keys := validators(t, 1)
	v := newTestVerifier(t, keys, 1)

	v.ObserveCount(originDomain, 3)
	v.ObserveCount(originDomain, 2)

	sc, err := Sign(testCheckpoint(originDomain, 3), keys[0])
	require.NoError(t, err)
	requireReason(t, v.Verify(sc, originDomain), ReasonIndexBeyondCount)

	v.ObserveCount(originDomain, 4)
	require.NoError(t, v.Verify(sc, originDomain))
}

func TestNewQuorumConfigRejectsBadThreshold(t *testing.T) {
	_, err := NewQuorumConfig(map[chain.Domain]ValidatorSet{
		originDomain: {Validators: []common.Address{{0x01}}, Threshold: 2},
	})
	assert.Error(t, err)

	_, err = NewQuorumConfig(map[chain.Domain]ValidatorSet{
		originDomain: {Validators: []common.Address{{0x01}}, Threshold: 0},
	})
	assert.Error(t, err)
}

func TestECDSAVerifierAcceptsRawRecoveryID(t *testing.T) {
	kp := secp256k1.Alice()
	digest := testCheckpoint(originDomain, 0).Digest()

	sig, err := kp.Sign(digest)
	require.NoError(t, err)

	signer, err := ECDSAVerifier{}.Recover(digest, sig)
	require.NoError(t, err)
	assert.Equal(t, kp.CommonAddress(), signer)

	sig[64] -= 27
	signer, err = ECDSAVerifier{}.Recover(digest, sig)
	require.NoError(t, err)
	assert.Equal(t, kp.CommonAddress(), signer)

	sig[64] = 5
	_, err = ECDSAVerifier{}.Recover(digest, sig)
	assert.Error(t, err)

	_, err = ECDSAVerifier{}.Recover(digest, sig[:64])
	assert.Error(t, err)
}

// interleavedVerifier runs onRecover before the first signature it recovers.
type interleavedVerifier struct {
	ECDSAVerifier
	onRecover func()
}

func (v *interleavedVerifier) Recover(digest common.Hash, sig []byte) (common.Address, error) {
	if v.onRecover != nil {
		hook := v.onRecover
		v.onRecover = nil
		hook()
	}
	return v.ECDSAVerifier.Recover(digest, sig)
}

func TestVerifyRejectsIndexOvertakenDuringRecovery(t *testing.T) {
	keys := validators(t, 2)
	addresses := []common.Address{keys[0].CommonAddress(), keys[1].CommonAddress()}
	quorum, err := NewQuorumConfig(map[chain.Domain]ValidatorSet{
		originDomain: {Validators: addresses, Threshold: 2},
	})
	require.NoError(t, err)

	signatures := &interleavedVerifier{}
	v := NewVerifier(quorum, signatures)

	older, err := Sign(testCheckpoint(originDomain, 1), keys...)
	require.NoError(t, err)
	newer, err := Sign(testCheckpoint(originDomain, 5), keys...)
	require.NoError(t, err)

	signatures.onRecover = func() {
		require.NoError(t, v.Verify(newer, originDomain))
	}

	err = v.Verify(older, originDomain)
	requireReason(t, err, ReasonStaleIndex)

	index, ok := v.LastAccepted(originDomain)
	assert.True(t, ok)
	assert.Equal(t, uint32(5), index)
}
