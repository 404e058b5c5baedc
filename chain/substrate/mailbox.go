package substrate

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
	"github.com/snowfork/go-substrate-rpc-client/v4/types"

	"github.com/abacus-network/abacus/relayer/chain"
)

const DefaultPallet = "Mailbox"

// Storage items of the mailbox pallet.
const (
	itemCount            = "Count"
	itemLatestCheckpoint = "LatestCheckpoint"
	itemDelivered        = "Delivered"
	itemMessageIDs       = "MessageIds"
	itemNonces           = "Nonces"
	itemMessages         = "Messages"
	itemDefaultIsm       = "DefaultIsm"
)

type storedCheckpoint struct {
	Root  types.H256
	Index types.U32
}

// Mailbox adapts a mailbox pallet. Reads go through state storage queries,
// deliveries through the pallet's process extrinsic.
type Mailbox struct {
	conn    *Connection
	writer  *Writer
	domain  chain.Domain
	address common.Hash
	pallet  string

	mu       sync.Mutex
	outcomes map[common.Hash]*chain.TxOutcome
}

var _ chain.MailboxEvents = &Mailbox{}
var _ chain.MailboxProcessor = &Mailbox{}

// NewMailbox creates the adapter. writer may be nil when the mailbox is only
// read from.
func NewMailbox(conn *Connection, writer *Writer, domain chain.Domain, address common.Hash, pallet string) *Mailbox {
	if pallet == "" {
		pallet = DefaultPallet
	}
	return &Mailbox{
		conn:     conn,
		writer:   writer,
		domain:   domain,
		address:  address,
		pallet:   pallet,
		outcomes: make(map[common.Hash]*chain.TxOutcome),
	}
}

func (m *Mailbox) LocalDomain() chain.Domain {
	return m.domain
}

// read decodes a storage item into target. A nil blockHash reads the latest state.
func (m *Mailbox) read(item string, arg []byte, target interface{}, blockHash *types.Hash) (bool, error) {
	key, err := types.CreateStorageKey(m.conn.Metadata(), m.pallet, item, arg, nil)
	if err != nil {
		return false, chain.NewPermanentError(item, fmt.Errorf("create storage key for %s:%s: %w", m.pallet, item, err))
	}

	var ok bool
	if blockHash == nil {
		ok, err = m.conn.API().RPC.State.GetStorageLatest(key, target)
	} else {
		ok, err = m.conn.API().RPC.State.GetStorage(key, target, *blockHash)
	}
	if err != nil {
		return false, chain.NewTransientError(item, fmt.Errorf("get storage for %s:%s: %w", m.pallet, item, err))
	}
	return ok, nil
}

func encodeNonce(nonce uint32) ([]byte, error) {
	return types.EncodeToBytes(types.NewU32(nonce))
}

func (m *Mailbox) Count(_ context.Context) (uint32, error) {
	var count types.U32
	_, err := m.read(itemCount, nil, &count, nil)
	if err != nil {
		return 0, err
	}
	return uint32(count), nil
}

func (m *Mailbox) Delivered(_ context.Context, id common.Hash) (bool, error) {
	return m.deliveredAt(id, nil)
}

func (m *Mailbox) deliveredAt(id common.Hash, blockHash *types.Hash) (bool, error) {
	var delivered types.Bool
	_, err := m.read(itemDelivered, id[:], &delivered, blockHash)
	if err != nil {
		return false, err
	}
	return bool(delivered), nil
}

func (m *Mailbox) LatestCheckpoint(_ context.Context, lag *uint64) (chain.Checkpoint, error) {
	blockHash, err := m.conn.BlockHashAt(lag)
	if err != nil {
		return chain.Checkpoint{}, chain.NewTransientError(itemLatestCheckpoint, err)
	}

	var stored storedCheckpoint
	ok, err := m.read(itemLatestCheckpoint, nil, &stored, &blockHash)
	if err != nil {
		return chain.Checkpoint{}, err
	}
	if !ok {
		return chain.Checkpoint{}, fmt.Errorf("%w: block %s", chain.ErrNoCheckpoint, blockHash.Hex())
	}
	return m.toCheckpoint(stored), nil
}

func (m *Mailbox) toCheckpoint(stored storedCheckpoint) chain.Checkpoint {
	return chain.Checkpoint{
		MailboxAddress: m.address,
		MailboxDomain:  m.domain,
		Root:           common.Hash(stored.Root),
		Index:          uint32(stored.Index),
	}
}

func (m *Mailbox) DefaultModule(_ context.Context) (common.Hash, error) {
	var ism types.H256
	_, err := m.read(itemDefaultIsm, nil, &ism, nil)
	if err != nil {
		return common.Hash{}, err
	}
	return common.Hash(ism), nil
}

func (m *Mailbox) IDByNonce(_ context.Context, nonce uint32) (common.Hash, bool, error) {
	arg, err := encodeNonce(nonce)
	if err != nil {
		return common.Hash{}, false, chain.NewPermanentError(itemMessageIDs, err)
	}

	var id types.H256
	ok, err := m.read(itemMessageIDs, arg, &id, nil)
	if err != nil || !ok {
		return common.Hash{}, false, err
	}
	return common.Hash(id), true, nil
}

func (m *Mailbox) RawMessageByID(_ context.Context, id common.Hash) (*chain.RawMessage, error) {
	var nonce types.U32
	ok, err := m.read(itemNonces, id[:], &nonce, nil)
	if err != nil || !ok {
		return nil, err
	}

	arg, err := encodeNonce(uint32(nonce))
	if err != nil {
		return nil, chain.NewPermanentError(itemMessages, err)
	}

	var message types.Bytes
	ok, err = m.read(itemMessages, arg, &message, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, chain.NewTransientError(itemMessages, fmt.Errorf("message %d not stored yet", nonce))
	}
	return &chain.RawMessage{Nonce: uint32(nonce), Bytes: message}, nil
}

func (m *Mailbox) Process(ctx context.Context, message chain.RawMessage, metadata []byte) (*chain.TxOutcome, error) {
	if m.writer == nil {
		return nil, chain.NewPermanentError("process", fmt.Errorf("mailbox on domain %d is read-only", m.domain))
	}

	inclusion, err := m.writer.SubmitAndWatch(ctx, m.pallet+".process", types.NewBytes(metadata), types.NewBytes(message.Bytes))
	if err != nil {
		return nil, err
	}

	// The extrinsic executed iff the message is delivered in its block.
	delivered, err := m.deliveredAt(message.ID(), &inclusion.BlockHash)
	if err != nil {
		return nil, err
	}
	number, err := m.conn.BlockNumber(inclusion.BlockHash)
	if err != nil {
		return nil, chain.NewTransientError("process", err)
	}

	outcome := chain.TxOutcome{
		TxHash:      inclusion.ExtrinsicHash,
		Executed:    delivered,
		BlockNumber: number,
	}

	log.WithFields(log.Fields{
		"nonce":    message.Nonce,
		"hash":     outcome.TxHash.Hex(),
		"block":    number,
		"executed": outcome.Executed,
	}).Info("Process extrinsic finalized")

	m.mu.Lock()
	m.outcomes[outcome.TxHash] = &outcome
	m.mu.Unlock()

	return &outcome, nil
}

// Status only knows about extrinsics submitted through this adapter.
func (m *Mailbox) Status(_ context.Context, txHash common.Hash) (*chain.TxOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	outcome, ok := m.outcomes[txHash]
	if !ok {
		return nil, nil
	}
	result := *outcome
	return &result, nil
}
