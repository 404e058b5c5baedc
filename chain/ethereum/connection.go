// Copyright 2020 Snowfork
// SPDX-License-Identifier: LGPL-3.0-only

package ethereum

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	goEthereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	log "github.com/sirupsen/logrus"

	"github.com/abacus-network/abacus/relayer/config"
	"github.com/abacus-network/abacus/relayer/crypto/secp256k1"
)

type Connection struct {
	endpoint string
	kp       *secp256k1.Keypair
	client   *ethclient.Client
	chainID  *big.Int
	config   *config.EthereumConfig
}

type JsonError interface {
	Error() string
	ErrorCode() int
	ErrorData() interface{}
}

// NewConnection creates a connection. kp may be nil for read-only use.
func NewConnection(config *config.EthereumConfig, kp *secp256k1.Keypair) *Connection {
	return &Connection{
		endpoint: config.Endpoint,
		kp:       kp,
		config:   config,
	}
}

func (co *Connection) Connect(ctx context.Context) error {
	client, err := ethclient.DialContext(ctx, co.endpoint)
	if err != nil {
		return err
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return err
	}

	log.WithFields(log.Fields{
		"endpoint": co.endpoint,
		"chainID":  chainID,
	}).Info("Connected to chain")

	co.client = client
	co.chainID = chainID

	return nil
}

func (co *Connection) Close() {
	if co.client != nil {
		co.client.Close()
	}
}

func (co *Connection) Client() *ethclient.Client {
	return co.client
}

func (co *Connection) Keypair() *secp256k1.Keypair {
	return co.kp
}

func (co *Connection) ChainID() *big.Int {
	return co.chainID
}

// CallOptsAt pins reads to head-lag. A nil lag reads the latest state.
func (co *Connection) CallOptsAt(ctx context.Context, lag *uint64) (*bind.CallOpts, error) {
	opts := bind.CallOpts{Context: ctx}
	if lag == nil || *lag == 0 {
		return &opts, nil
	}
	head, err := co.client.BlockNumber(ctx)
	if err != nil {
		return nil, err
	}
	if head < *lag {
		return nil, fmt.Errorf("head %d is behind lag %d", head, *lag)
	}
	opts.BlockNumber = new(big.Int).SetUint64(head - *lag)
	return &opts, nil
}

func (co *Connection) queryFailingError(ctx context.Context, hash common.Hash) error {
	tx, _, err := co.client.TransactionByHash(ctx, hash)
	if err != nil {
		return err
	}

	from, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx)
	if err != nil {
		return err
	}

	params := goEthereum.CallMsg{
		From:     from,
		To:       tx.To(),
		Gas:      tx.Gas(),
		GasPrice: tx.GasPrice(),
		Value:    tx.Value(),
		Data:     tx.Data(),
	}

	log.WithFields(log.Fields{
		"from": from,
		"to":   tx.To(),
		"gas":  tx.Gas(),
		"data": hex.EncodeToString(tx.Data()),
	}).Debug("Replaying failed transaction")

	// Replaying the call surfaces the revert reason, which receipts do not carry.
	_, err = co.client.CallContract(ctx, params, nil)
	if err != nil {
		return err
	}
	return nil
}

func (co *Connection) waitForTransaction(ctx context.Context, tx *types.Transaction, confirmations uint64) (*types.Receipt, error) {
	for {
		receipt, err := co.pollTransaction(ctx, tx, confirmations)
		if err != nil {
			return nil, err
		}

		if receipt != nil {
			return receipt, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}
}

func (co *Connection) pollTransaction(ctx context.Context, tx *types.Transaction, confirmations uint64) (*types.Receipt, error) {
	receipt, err := co.Client().TransactionReceipt(ctx, tx.Hash())
	if err != nil {
		if errors.Is(err, goEthereum.NotFound) {
			return nil, nil
		}
		return nil, err
	}

	latestHeader, err := co.Client().HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, err
	}

	if latestHeader.Number.Uint64()-receipt.BlockNumber.Uint64() >= confirmations {
		return receipt, nil
	}

	return nil, nil
}

// WatchTransaction waits for the receipt of tx once it has the given number
// of confirmations. A reverted receipt is returned without error; the revert
// reason is logged.
func (co *Connection) WatchTransaction(ctx context.Context, tx *types.Transaction, confirmations uint64) (*types.Receipt, error) {
	receipt, err := co.waitForTransaction(ctx, tx, confirmations)
	if err != nil {
		return nil, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		logFields := log.Fields{
			"txHash": tx.Hash().Hex(),
		}
		if err := co.queryFailingError(ctx, receipt.TxHash); err != nil {
			logFields["error"] = err.Error()
			jsonErr, ok := err.(JsonError)
			if ok {
				logFields["code"] = fmt.Sprintf("%v", jsonErr.ErrorData())
			}
		}
		log.WithFields(logFields).Warn("Transaction reverted")
	}
	return receipt, nil
}

func (co *Connection) MakeTxOpts(ctx context.Context) (*bind.TransactOpts, error) {
	if co.kp == nil {
		return nil, errors.New("connection has no signing key")
	}
	chainID := co.ChainID()
	keypair := co.Keypair()

	options := bind.TransactOpts{
		From: keypair.CommonAddress(),
		Signer: func(_ common.Address, tx *types.Transaction) (*types.Transaction, error) {
			return types.SignTx(tx, types.LatestSignerForChainID(chainID), keypair.PrivateKey())
		},
		Context: ctx,
	}

	if co.config.GasFeeCap > 0 {
		options.GasFeeCap = new(big.Int).SetUint64(co.config.GasFeeCap)
	}

	if co.config.GasTipCap > 0 {
		options.GasTipCap = new(big.Int).SetUint64(co.config.GasTipCap)
	}

	if co.config.GasLimit > 0 {
		options.GasLimit = co.config.GasLimit
	}

	return &options, nil
}
