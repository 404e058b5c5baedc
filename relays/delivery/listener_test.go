package delivery

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/abacus-network/abacus/relayer/chain"
	"github.com/abacus-network/abacus/relayer/chain/memory"
	"github.com/abacus-network/abacus/relayer/indexer"
)

func receive(t *testing.T, nonces <-chan uint32) uint32 {
	select {
	case nonce, ok := <-nonces:
		require.True(t, ok, "nonce channel closed")
		return nonce
	case <-time.After(time.Second):
		require.FailNow(t, "timed out waiting for nonce")
	}
	return 0
}

func TestListenerEmitsNewNoncesInOrder(t *testing.T) {
	origin := memory.NewMailbox(originDomain, common.HexToHash("0xaaaa"))
	dispatchN := func(n int) {
		for i := 0; i < n; i++ {
			_, err := origin.Dispatch(destinationDomain, common.Hash{}, common.Hash{}, []byte{byte(i)})
			require.NoError(t, err)
		}
	}
	dispatchN(3)

	metrics := NewMetrics()
	nonces := make(chan uint32)
	listener := NewListener(indexer.New(origin, indexer.NewMemoryStore()), 1, time.Millisecond, metrics, nonces)

	ctx, cancel := context.WithCancel(context.Background())
	eg, ctx := errgroup.WithContext(ctx)
	require.NoError(t, listener.Start(ctx, eg))

	assert.Equal(t, uint32(1), receive(t, nonces))
	assert.Equal(t, uint32(2), receive(t, nonces))

	dispatchN(2)
	assert.Equal(t, uint32(3), receive(t, nonces))
	assert.Equal(t, uint32(4), receive(t, nonces))
	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(metrics.listenerNonce.WithLabelValues(originDomain.String())) == 5
	}, time.Second, time.Millisecond)

	cancel()
	require.NoError(t, eg.Wait())

	_, ok := <-nonces
	assert.False(t, ok)
}

func TestListenerSurvivesTransientErrors(t *testing.T) {
	origin := memory.NewMailbox(originDomain, common.HexToHash("0xaaaa"))
	_, err := origin.Dispatch(destinationDomain, common.Hash{}, common.Hash{}, nil)
	require.NoError(t, err)
	origin.SetReadError(chain.NewTransientError("count", errUnavailable))

	nonces := make(chan uint32)
	listener := NewListener(indexer.New(origin, indexer.NewMemoryStore()), 0, time.Millisecond, NewMetrics(), nonces)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eg, ctx := errgroup.WithContext(ctx)
	require.NoError(t, listener.Start(ctx, eg))

	time.Sleep(10 * time.Millisecond)
	origin.SetReadError(nil)
	assert.Equal(t, uint32(0), receive(t, nonces))

	cancel()
	require.NoError(t, eg.Wait())
}

func TestListenerStopsOnPermanentError(t *testing.T) {
	origin := memory.NewMailbox(originDomain, common.HexToHash("0xaaaa"))
	origin.SetReadError(chain.NewPermanentError("count", errUnavailable))

	nonces := make(chan uint32)
	listener := NewListener(indexer.New(origin, indexer.NewMemoryStore()), 0, time.Millisecond, NewMetrics(), nonces)

	eg, ctx := errgroup.WithContext(context.Background())
	require.NoError(t, listener.Start(ctx, eg))

	err := eg.Wait()
	require.Error(t, err)
	assert.True(t, chain.IsPermanent(err))
}
