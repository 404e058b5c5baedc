package checkpoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/abacus-network/abacus/relayer/chain"
)

const latestIndexFile = "index.json"

// Syncer reads the signed checkpoints validators publish.
type Syncer interface {
	// LatestIndex returns false when nothing has been published yet.
	LatestIndex(ctx context.Context) (uint32, bool, error)
	// FetchCheckpoint returns nil when no checkpoint is published at index.
	FetchCheckpoint(ctx context.Context, index uint32) (*chain.SignedCheckpoint, error)
}

// LocalStorage is a directory of signed checkpoints, one "<index>.json"
// file per checkpoint and an "index.json" file holding the latest index.
type LocalStorage struct {
	path string
	mu   sync.Mutex
}

func NewLocalStorage(path string) (*LocalStorage, error) {
	err := os.MkdirAll(path, 0o755)
	if err != nil {
		return nil, fmt.Errorf("create checkpoint directory: %w", err)
	}
	return &LocalStorage{path: path}, nil
}

func (s *LocalStorage) Path() string {
	return s.path
}

func (s *LocalStorage) checkpointPath(index uint32) string {
	return filepath.Join(s.path, strconv.FormatUint(uint64(index), 10)+".json")
}

func (s *LocalStorage) LatestIndex(_ context.Context) (uint32, bool, error) {
	data, err := os.ReadFile(filepath.Join(s.path, latestIndexFile))
	if errors.Is(err, os.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read latest checkpoint index: %w", err)
	}

	var index uint32
	err = json.Unmarshal(data, &index)
	if err != nil {
		return 0, false, chain.NewPermanentError("read latest checkpoint index", err)
	}
	return index, true, nil
}

func (s *LocalStorage) FetchCheckpoint(_ context.Context, index uint32) (*chain.SignedCheckpoint, error) {
	data, err := os.ReadFile(s.checkpointPath(index))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read checkpoint %d: %w", index, err)
	}

	var sc chain.SignedCheckpoint
	err = json.Unmarshal(data, &sc)
	if err != nil {
		return nil, chain.NewPermanentError("decode checkpoint", fmt.Errorf("checkpoint %d: %w", index, err))
	}
	return &sc, nil
}

// WriteCheckpoint stores sc and advances the latest index if sc is newer.
func (s *LocalStorage) WriteCheckpoint(sc chain.SignedCheckpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(sc, "", "  ")
	if err != nil {
		return err
	}
	err = writeFileAtomic(s.checkpointPath(sc.Checkpoint.Index), data)
	if err != nil {
		return fmt.Errorf("write checkpoint %d: %w", sc.Checkpoint.Index, err)
	}

	latest, ok, err := s.LatestIndex(context.Background())
	if err != nil {
		return err
	}
	if ok && latest >= sc.Checkpoint.Index {
		return nil
	}

	data, err = json.Marshal(sc.Checkpoint.Index)
	if err != nil {
		return err
	}
	err = writeFileAtomic(filepath.Join(s.path, latestIndexFile), data)
	if err != nil {
		return fmt.Errorf("write latest checkpoint index: %w", err)
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	err := os.WriteFile(tmp, data, 0o644)
	if err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
