package indexer

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/abacus-network/abacus/relayer/chain"
)

var (
	noncePrefix   = []byte("n")
	messagePrefix = []byte("m")
)

// DB wraps a LevelDB database shared by the stores of every origin domain.
type DB struct {
	conn *leveldb.DB
}

// OpenDB opens (or creates) a LevelDB instance at the given path
func OpenDB(path string) (*DB, error) {
	conn, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb at %s: %w", path, err)
	}
	return &DB{conn: conn}, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// Store returns the store for messages dispatched from domain.
func (db *DB) Store(domain chain.Domain) *LevelDBStore {
	return &LevelDBStore{conn: db.conn, domain: domain}
}

// LevelDBStore keeps the cache of one origin domain under keys prefixed
// with the kind of entry and the big-endian domain.
type LevelDBStore struct {
	conn   *leveldb.DB
	domain chain.Domain
}

func (s *LevelDBStore) key(prefix []byte, suffix []byte) []byte {
	key := make([]byte, 0, len(prefix)+4+len(suffix))
	key = append(key, prefix...)
	key = binary.BigEndian.AppendUint32(key, uint32(s.domain))
	return append(key, suffix...)
}

func (s *LevelDBStore) IDByNonce(nonce uint32) (common.Hash, bool, error) {
	value, err := s.conn.Get(s.key(noncePrefix, binary.BigEndian.AppendUint32(nil, nonce)), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return common.Hash{}, false, nil
	}
	if err != nil {
		return common.Hash{}, false, fmt.Errorf("read id of nonce %d: %w", nonce, err)
	}
	return common.BytesToHash(value), true, nil
}

func (s *LevelDBStore) PutID(nonce uint32, id common.Hash) error {
	err := s.conn.Put(s.key(noncePrefix, binary.BigEndian.AppendUint32(nil, nonce)), id[:], nil)
	if err != nil {
		return fmt.Errorf("write id of nonce %d: %w", nonce, err)
	}
	return nil
}

// Message values are the big-endian nonce followed by the message bytes.
func (s *LevelDBStore) Message(id common.Hash) (*chain.RawMessage, error) {
	value, err := s.conn.Get(s.key(messagePrefix, id[:]), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read message %s: %w", id.Hex(), err)
	}
	if len(value) < 4 {
		return nil, fmt.Errorf("corrupt message entry %s", id.Hex())
	}
	return &chain.RawMessage{
		Nonce: binary.BigEndian.Uint32(value[:4]),
		Bytes: append([]byte{}, value[4:]...),
	}, nil
}

func (s *LevelDBStore) PutMessage(message chain.RawMessage) error {
	id := message.ID()
	value := binary.BigEndian.AppendUint32(nil, message.Nonce)
	value = append(value, message.Bytes...)

	err := s.conn.Put(s.key(messagePrefix, id[:]), value, nil)
	if err != nil {
		return fmt.Errorf("write message %s: %w", id.Hex(), err)
	}
	return nil
}

// Count returns the number of nonces cached for the domain.
func (s *LevelDBStore) Count() (int, error) {
	iter := s.conn.NewIterator(util.BytesPrefix(s.key(noncePrefix, nil)), nil)
	defer iter.Release()

	n := 0
	for iter.Next() {
		n++
	}
	return n, iter.Error()
}
