package indexer

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/abacus-network/abacus/relayer/chain"
)

// Store caches resolved lookups. Entries are immutable once written since
// a leaf never changes after it is inserted on chain.
type Store interface {
	// IDByNonce returns false when the nonce has not been cached.
	IDByNonce(nonce uint32) (common.Hash, bool, error)
	PutID(nonce uint32, id common.Hash) error
	// Message returns nil when the id has not been cached.
	Message(id common.Hash) (*chain.RawMessage, error)
	PutMessage(message chain.RawMessage) error
}

type MemoryStore struct {
	mu       sync.RWMutex
	ids      map[uint32]common.Hash
	messages map[common.Hash]chain.RawMessage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		ids:      make(map[uint32]common.Hash),
		messages: make(map[common.Hash]chain.RawMessage),
	}
}

func (s *MemoryStore) IDByNonce(nonce uint32) (common.Hash, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.ids[nonce]
	return id, ok, nil
}

func (s *MemoryStore) PutID(nonce uint32, id common.Hash) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids[nonce] = id
	return nil
}

func (s *MemoryStore) Message(id common.Hash) (*chain.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msg, ok := s.messages[id]
	if !ok {
		return nil, nil
	}
	return &msg, nil
}

func (s *MemoryStore) PutMessage(message chain.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[message.ID()] = message
	return nil
}
