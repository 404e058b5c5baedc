package checkpoint

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abacus-network/abacus/relayer/chain"
	"github.com/abacus-network/abacus/relayer/chain/memory"
)

func dispatch(t *testing.T, mb *memory.Mailbox, n int) {
	for i := 0; i < n; i++ {
		_, err := mb.Dispatch(otherDomain, common.Hash{}, common.Hash{}, []byte{byte(i)})
		require.NoError(t, err)
	}
}

func onchainCheckpoint(t *testing.T, mb *memory.Mailbox) chain.Checkpoint {
	cp, err := mb.LatestCheckpoint(context.Background(), nil)
	require.NoError(t, err)
	return cp
}

func TestMailboxSourceWaitsForSignatures(t *testing.T) {
	ctx := context.Background()
	mb := memory.NewMailbox(originDomain, mailboxAddress)
	dispatch(t, mb, 2)

	storage, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	source := NewMailboxSource(mb, storage)

	sc, err := source.LatestCheckpoint(ctx, nil)
	require.NoError(t, err)
	assert.Nil(t, sc)

	keys := validators(t, 1)
	signed, err := Sign(onchainCheckpoint(t, mb), keys[0])
	require.NoError(t, err)
	require.NoError(t, storage.WriteCheckpoint(signed))

	sc, err = source.LatestCheckpoint(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, &signed, sc)
}

func TestMailboxSourceClampsToLaggedIndex(t *testing.T) {
	ctx := context.Background()
	mb := memory.NewMailbox(originDomain, mailboxAddress)
	dispatch(t, mb, 2)

	storage, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	keys := validators(t, 1)

	first, err := Sign(onchainCheckpoint(t, mb), keys[0])
	require.NoError(t, err)
	require.NoError(t, storage.WriteCheckpoint(first))

	dispatch(t, mb, 2)
	second, err := Sign(onchainCheckpoint(t, mb), keys[0])
	require.NoError(t, err)
	require.NoError(t, storage.WriteCheckpoint(second))

	source := NewMailboxSource(mb, storage)

	lag := uint64(2)
	sc, err := source.LatestCheckpoint(ctx, &lag)
	require.NoError(t, err)
	assert.Equal(t, &first, sc)

	sc, err = source.LatestCheckpoint(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, &second, sc)
}

func TestMailboxSourceDetectsRootMismatch(t *testing.T) {
	ctx := context.Background()
	mb := memory.NewMailbox(originDomain, mailboxAddress)
	dispatch(t, mb, 1)

	storage, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	forged := onchainCheckpoint(t, mb)
	forged.Root = common.HexToHash("0xbad")
	signed, err := Sign(forged, validators(t, 1)...)
	require.NoError(t, err)
	require.NoError(t, storage.WriteCheckpoint(signed))

	_, err = NewMailboxSource(mb, storage).LatestCheckpoint(ctx, nil)
	requireReason(t, err, ReasonRootMismatch)
}

func TestMailboxSourcePropagatesChainErrors(t *testing.T) {
	mb := memory.NewMailbox(originDomain, mailboxAddress)
	dispatch(t, mb, 1)
	mb.SetReadError(chain.NewTransientError("latest checkpoint", errors.New("timeout")))

	storage, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = NewMailboxSource(mb, storage).LatestCheckpoint(context.Background(), nil)
	assert.True(t, chain.IsTransient(err))
}

func TestMailboxSourceWaitsWhileLagHidesEveryLeaf(t *testing.T) {
	ctx := context.Background()
	mb := memory.NewMailbox(originDomain, mailboxAddress)
	dispatch(t, mb, 1)

	storage, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signed, err := Sign(onchainCheckpoint(t, mb), validators(t, 1)...)
	require.NoError(t, err)
	require.NoError(t, storage.WriteCheckpoint(signed))

	lag := uint64(1)
	sc, err := NewMailboxSource(mb, storage).LatestCheckpoint(ctx, &lag)
	require.NoError(t, err)
	assert.Nil(t, sc)
}
