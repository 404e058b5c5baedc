// Copyright 2020 Snowfork
// SPDX-License-Identifier: LGPL-3.0-only

package substrate

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	gsrpc "github.com/snowfork/go-substrate-rpc-client/v4"
	"github.com/snowfork/go-substrate-rpc-client/v4/signature"
	"github.com/snowfork/go-substrate-rpc-client/v4/types"
)

type Connection struct {
	endpoint    string
	kp          *signature.KeyringPair
	api         *gsrpc.SubstrateAPI
	metadata    types.Metadata
	genesisHash types.Hash
}

func (co *Connection) API() *gsrpc.SubstrateAPI {
	return co.api
}

func (co *Connection) Metadata() *types.Metadata {
	return &co.metadata
}

func (co *Connection) Keypair() *signature.KeyringPair {
	return co.kp
}

// NewConnection creates a connection. kp may be nil for read-only use.
func NewConnection(endpoint string, kp *signature.KeyringPair) *Connection {
	return &Connection{
		endpoint: endpoint,
		kp:       kp,
	}
}

func (co *Connection) Connect(_ context.Context) error {
	api, err := gsrpc.NewSubstrateAPI(co.endpoint)
	if err != nil {
		return err
	}
	co.api = api

	meta, err := api.RPC.State.GetMetadataLatest()
	if err != nil {
		return err
	}
	co.metadata = *meta

	genesisHash, err := api.RPC.Chain.GetBlockHash(0)
	if err != nil {
		return err
	}
	co.genesisHash = genesisHash

	log.WithFields(log.Fields{
		"endpoint":    co.endpoint,
		"metaVersion": meta.Version,
	}).Info("Connected to chain")

	return nil
}

func (co *Connection) Close() {
	// TODO: close the websocket once gsrpc exposes its client
}

func (co *Connection) GenesisHash() types.Hash {
	return co.genesisHash
}

// BlockHashAt resolves the hash of the block lag blocks below the latest
// finalized head. A nil lag resolves the finalized head itself.
func (co *Connection) BlockHashAt(lag *uint64) (types.Hash, error) {
	finalizedHash, err := co.api.RPC.Chain.GetFinalizedHead()
	if err != nil {
		return types.Hash{}, err
	}
	if lag == nil || *lag == 0 {
		return finalizedHash, nil
	}

	header, err := co.api.RPC.Chain.GetHeader(finalizedHash)
	if err != nil {
		return types.Hash{}, err
	}
	number := uint64(header.Number)
	if number < *lag {
		return types.Hash{}, fmt.Errorf("finalized head %d is behind lag %d", number, *lag)
	}

	return co.api.RPC.Chain.GetBlockHash(number - *lag)
}

func (co *Connection) BlockNumber(blockHash types.Hash) (uint64, error) {
	header, err := co.api.RPC.Chain.GetHeader(blockHash)
	if err != nil {
		return 0, err
	}
	return uint64(header.Number), nil
}
