package delivery

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/abacus-network/abacus/relayer/checkpoint"
)

func TestRelayDeliversPublishedCheckpoints(t *testing.T) {
	route := newTestRoute(t, 3)

	storage, err := checkpoint.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	addresses := make([]common.Address, len(route.validators))
	for i, kp := range route.validators {
		addresses[i] = kp.CommonAddress()
	}

	config := validConfig()
	config.Validators = ValidatorsConfig{
		Addresses:       addresses,
		Threshold:       2,
		CheckpointsPath: storage.Path(),
	}
	config.StorePath = t.TempDir()
	config.Delivery.PollInterval = time.Millisecond
	config.Delivery.BackoffBase = time.Millisecond
	config.Delivery.BackoffMax = time.Millisecond

	relay := NewRelay(&config, Keys{})

	ctx, cancel := context.WithCancel(context.Background())
	eg, ctx := errgroup.WithContext(ctx)
	require.NoError(t, relay.start(ctx, eg, route.origin, route.destination))

	require.NoError(t, storage.WriteCheckpoint(*route.signed(t, 2)))

	assert.Eventually(t, func() bool {
		reports := relay.Registry().All()
		if len(reports) != 3 {
			return false
		}
		for _, report := range reports {
			if report.State != StateDelivered {
				return false
			}
		}
		return true
	}, 5*time.Second, 5*time.Millisecond)
	assert.Equal(t, 3, route.destination.ProcessCalls())

	cancel()
	require.NoError(t, eg.Wait())
}
