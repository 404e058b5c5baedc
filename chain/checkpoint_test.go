package chain

import (
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckpointCovers(t *testing.T) {
	cp := Checkpoint{Index: 3}

	assert.True(t, cp.Covers(0))
	assert.True(t, cp.Covers(3))
	assert.False(t, cp.Covers(4))
	assert.Equal(t, uint32(4), cp.Size())
}

func TestCheckpointSigningHashBindsDomain(t *testing.T) {
	cp := Checkpoint{
		MailboxAddress: common.HexToHash("0xabc"),
		MailboxDomain:  1000,
		Root:           common.HexToHash("0x01"),
		Index:          1,
	}

	domainHash := DomainHash(1000)
	expected := crypto.Keccak256Hash(domainHash[:], cp.MailboxAddress[:], cp.Root[:], []byte{0, 0, 0, 1})
	assert.Equal(t, expected, cp.SigningHash())
	assert.Equal(t, common.BytesToHash(accounts.TextHash(expected[:])), cp.Digest())

	other := cp
	other.MailboxDomain = 2000
	assert.NotEqual(t, cp.SigningHash(), other.SigningHash())
}

func TestSignedCheckpointJSON(t *testing.T) {
	sc := SignedCheckpoint{
		Checkpoint: Checkpoint{MailboxDomain: 1, Root: common.HexToHash("0x02"), Index: 9},
		Signatures: [][]byte{{0x01, 0x02}},
	}

	data, err := json.Marshal(sc)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"signatures":["0x0102"]`)

	var decoded SignedCheckpoint
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, sc, decoded)
}
