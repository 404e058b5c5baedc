package checkpoint

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/abacus-network/abacus/relayer/chain"
)

// ValidatorSet is the set of validators attesting to one origin domain and
// the number of distinct signatures a checkpoint needs.
type ValidatorSet struct {
	Validators []common.Address
	Threshold  int
}

func (vs ValidatorSet) Contains(address common.Address) bool {
	for _, v := range vs.Validators {
		if v == address {
			return true
		}
	}
	return false
}

// QuorumConfig maps origin domains to their validator sets. It is immutable
// once built.
type QuorumConfig struct {
	sets map[chain.Domain]ValidatorSet
}

func NewQuorumConfig(sets map[chain.Domain]ValidatorSet) (*QuorumConfig, error) {
	copied := make(map[chain.Domain]ValidatorSet, len(sets))
	for domain, set := range sets {
		if set.Threshold < 1 {
			return nil, fmt.Errorf("validator set for domain %d: threshold must be at least 1", domain)
		}
		if set.Threshold > len(set.Validators) {
			return nil, fmt.Errorf("validator set for domain %d: threshold %d exceeds %d validators",
				domain, set.Threshold, len(set.Validators))
		}
		copied[domain] = ValidatorSet{
			Validators: append([]common.Address{}, set.Validators...),
			Threshold:  set.Threshold,
		}
	}
	return &QuorumConfig{sets: copied}, nil
}

func (q *QuorumConfig) ValidatorSet(domain chain.Domain) (ValidatorSet, bool) {
	set, ok := q.sets[domain]
	return set, ok
}
