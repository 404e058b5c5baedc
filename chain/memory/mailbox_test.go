package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abacus-network/abacus/relayer/chain"
)

func TestDispatchAssignsSequentialNonces(t *testing.T) {
	ctx := context.Background()
	mb := NewMailbox(1000, common.HexToHash("0x01"))

	for i := 0; i < 3; i++ {
		raw, err := mb.Dispatch(2000, common.Hash{}, common.Hash{}, []byte{byte(i)})
		require.NoError(t, err)
		assert.Equal(t, uint32(i), raw.Nonce)

		id, ok, err := mb.IDByNonce(ctx, uint32(i))
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, raw.ID(), id)
	}

	count, err := mb.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), count)

	_, ok, err := mb.IDByNonce(ctx, 3)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLatestCheckpointAppliesLag(t *testing.T) {
	ctx := context.Background()
	mb := NewMailbox(1000, common.HexToHash("0x01"))

	_, err := mb.LatestCheckpoint(ctx, nil)
	assert.ErrorIs(t, err, chain.ErrNoCheckpoint)

	for i := 0; i < 4; i++ {
		_, err := mb.Dispatch(2000, common.Hash{}, common.Hash{}, nil)
		require.NoError(t, err)
	}

	cp, err := mb.LatestCheckpoint(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), cp.Index)
	assert.Equal(t, mb.Root(4), cp.Root)

	lag := uint64(2)
	cp, err = mb.LatestCheckpoint(ctx, &lag)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), cp.Index)
	assert.Equal(t, mb.Root(2), cp.Root)
}

func TestProcessMarksDelivered(t *testing.T) {
	ctx := context.Background()
	mb := NewMailbox(2000, common.HexToHash("0x02"))
	raw := (&chain.Message{Nonce: 0, Origin: 1000, Destination: 2000}).Raw()

	mb.FailProcess(errors.New("timeout"))
	_, err := mb.Process(ctx, raw, nil)
	assert.Error(t, err)

	outcome, err := mb.Process(ctx, raw, []byte{0x01})
	require.NoError(t, err)
	assert.True(t, outcome.Executed)
	assert.Equal(t, 2, mb.ProcessCalls())
	assert.Equal(t, []byte{0x01}, mb.LastMetadata())

	delivered, err := mb.Delivered(ctx, raw.ID())
	require.NoError(t, err)
	assert.True(t, delivered)

	status, err := mb.Status(ctx, outcome.TxHash)
	require.NoError(t, err)
	assert.Equal(t, outcome, status)

	again, err := mb.Process(ctx, raw, nil)
	require.NoError(t, err)
	assert.False(t, again.Executed)
}
