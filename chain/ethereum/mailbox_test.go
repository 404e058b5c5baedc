package ethereum

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
)

func TestOutcomeFromReceipt(t *testing.T) {
	receipt := types.Receipt{
		Status:      types.ReceiptStatusSuccessful,
		TxHash:      common.HexToHash("0x01"),
		GasUsed:     21000,
		BlockNumber: big.NewInt(12),
	}

	outcome := outcomeFromReceipt(&receipt)
	assert.True(t, outcome.Executed)
	assert.Equal(t, common.HexToHash("0x01"), outcome.TxHash)
	assert.Equal(t, uint64(21000), outcome.GasUsed)
	assert.Equal(t, uint64(12), outcome.BlockNumber)

	receipt.Status = types.ReceiptStatusFailed
	assert.False(t, outcomeFromReceipt(&receipt).Executed)
}
