package substrate

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
	"github.com/snowfork/go-substrate-rpc-client/v4/types"
	"golang.org/x/crypto/blake2b"

	"github.com/abacus-network/abacus/relayer/chain"
)

var (
	errExtrinsicRejected = errors.New("extrinsic was dropped, invalid or usurped")
	errFinalityTimeout   = errors.New("extrinsic finality timed out")
)

// Inclusion is where a submitted extrinsic was finalized.
type Inclusion struct {
	ExtrinsicHash common.Hash
	BlockHash     types.Hash
}

// Writer signs and submits extrinsics one at a time so the account nonce
// stays sequential.
type Writer struct {
	conn  *Connection
	nonce uint32
	mu    sync.Mutex
}

func NewWriter(conn *Connection) *Writer {
	return &Writer{conn: conn}
}

func (wr *Writer) Start(_ context.Context) error {
	if wr.conn.Keypair() == nil {
		return errors.New("connection has no signing key")
	}
	nonce, err := wr.queryAccountNonce()
	if err != nil {
		return err
	}
	wr.nonce = nonce
	return nil
}

// SubmitAndWatch submits the call and waits until it is finalized.
func (wr *Writer) SubmitAndWatch(ctx context.Context, extrinsicName string, payload ...interface{}) (*Inclusion, error) {
	wr.mu.Lock()
	defer wr.mu.Unlock()

	call, err := types.NewCall(wr.conn.Metadata(), extrinsicName, payload...)
	if err != nil {
		return nil, chain.NewPermanentError(extrinsicName, err)
	}

	ext, err := wr.signExtrinsic(call)
	if err != nil {
		return nil, chain.NewTransientError(extrinsicName, err)
	}

	encoded, err := types.EncodeToBytes(*ext)
	if err != nil {
		return nil, chain.NewPermanentError(extrinsicName, err)
	}
	extrinsicHash := common.Hash(blake2b.Sum256(encoded))

	sub, err := wr.conn.API().RPC.Author.SubmitAndWatchExtrinsic(*ext)
	if err != nil {
		wr.resyncNonce()
		return nil, chain.NewTransientError(extrinsicName, err)
	}
	defer sub.Unsubscribe()

	wr.nonce = wr.nonce + 1

	for {
		select {
		case status := <-sub.Chan():
			if status.IsDropped || status.IsInvalid || status.IsUsurped {
				wr.resyncNonce()
				return nil, chain.NewPermanentError(extrinsicName, errExtrinsicRejected)
			}
			if status.IsFinalityTimeout {
				return nil, chain.NewTransientError(extrinsicName, errFinalityTimeout)
			}
			if status.IsFinalized {
				log.WithFields(log.Fields{
					"extrinsic": extrinsicName,
					"hash":      extrinsicHash.Hex(),
					"block":     status.AsFinalized.Hex(),
				}).Debug("Extrinsic finalized")
				return &Inclusion{ExtrinsicHash: extrinsicHash, BlockHash: status.AsFinalized}, nil
			}
		case err := <-sub.Err():
			return nil, chain.NewTransientError(extrinsicName, err)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (wr *Writer) resyncNonce() {
	nonce, err := wr.queryAccountNonce()
	if err != nil {
		log.WithError(err).Warn("Failed to resync account nonce")
		return
	}
	wr.nonce = nonce
}

func (wr *Writer) queryAccountNonce() (uint32, error) {
	key, err := types.CreateStorageKey(wr.conn.Metadata(), "System", "Account", wr.conn.Keypair().PublicKey, nil)
	if err != nil {
		return 0, err
	}

	var accountInfo types.AccountInfo
	ok, err := wr.conn.API().RPC.State.GetStorageLatest(key, &accountInfo)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("no account info found for %s", wr.conn.Keypair().URI)
	}

	return uint32(accountInfo.Nonce), nil
}

func (wr *Writer) signExtrinsic(call types.Call) (*types.Extrinsic, error) {
	latestHash, err := wr.conn.API().RPC.Chain.GetFinalizedHead()
	if err != nil {
		return nil, err
	}

	latestBlock, err := wr.conn.API().RPC.Chain.GetBlock(latestHash)
	if err != nil {
		return nil, err
	}

	rv, err := wr.conn.API().RPC.State.GetRuntimeVersionLatest()
	if err != nil {
		return nil, err
	}

	ext := types.NewExtrinsic(call)
	o := types.SignatureOptions{
		BlockHash:          latestHash,
		Era:                NewMortalEra(uint64(latestBlock.Block.Header.Number)),
		GenesisHash:        wr.conn.GenesisHash(),
		Nonce:              types.NewUCompactFromUInt(uint64(wr.nonce)),
		SpecVersion:        rv.SpecVersion,
		Tip:                types.NewUCompactFromUInt(0),
		TransactionVersion: rv.TransactionVersion,
	}

	err = ext.Sign(*wr.conn.Keypair(), o)
	if err != nil {
		return nil, err
	}

	return &ext, nil
}
