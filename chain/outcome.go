// Copyright 2020 Snowfork
// SPDX-License-Identifier: LGPL-3.0-only

package chain

import "github.com/ethereum/go-ethereum/common"

// TxOutcome is the receipt data of one submitted transaction.
type TxOutcome struct {
	TxHash      common.Hash
	Executed    bool
	GasUsed     uint64
	BlockNumber uint64
}
