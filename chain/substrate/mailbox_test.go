package substrate

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/snowfork/go-substrate-rpc-client/v4/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abacus-network/abacus/relayer/chain"
)

func TestToCheckpoint(t *testing.T) {
	address := common.HexToHash("0xaa")
	m := NewMailbox(nil, nil, 1000, address, "")

	cp := m.toCheckpoint(storedCheckpoint{Root: types.H256{1}, Index: 7})
	assert.Equal(t, chain.Checkpoint{
		MailboxAddress: address,
		MailboxDomain:  1000,
		Root:           common.Hash{1},
		Index:          7,
	}, cp)
	assert.Equal(t, DefaultPallet, m.pallet)
}

func TestEncodeNonce(t *testing.T) {
	arg, err := encodeNonce(0x01020304)
	require.NoError(t, err)
	assert.Equal(t, []byte{4, 3, 2, 1}, arg)
}

func TestProcessReadOnly(t *testing.T) {
	m := NewMailbox(nil, nil, 1000, common.Hash{}, "Mailbox")

	_, err := m.Process(context.Background(), chain.RawMessage{}, nil)
	require.Error(t, err)
	assert.True(t, chain.IsPermanent(err))
}

func TestStatusUnknown(t *testing.T) {
	m := NewMailbox(nil, nil, 1000, common.Hash{}, "Mailbox")

	outcome, err := m.Status(context.Background(), common.HexToHash("0x01"))
	require.NoError(t, err)
	assert.Nil(t, outcome)
}
