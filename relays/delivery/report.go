package delivery

import (
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/abacus-network/abacus/relayer/chain"
)

type State string

const (
	StateDiscovered State = "discovered"
	StateIndexed    State = "indexed"
	StateProofReady State = "proof-ready"
	StateSubmitted  State = "submitted"
	StateDelivered  State = "delivered"
	StateFailed     State = "failed"
	// StateSkipped marks messages the matching lists exclude from relaying.
	StateSkipped State = "skipped"
)

func (s State) Terminal() bool {
	return s == StateDelivered || s == StateFailed || s == StateSkipped
}

// Category explains why a delivery failed.
type Category string

const (
	CategoryNone               Category = ""
	CategoryPermanent          Category = "permanent"
	CategoryVerification       Category = "verification"
	CategoryRetryableExhausted Category = "retryable-exhausted"
)

// Report describes the progress of one message. It is kept for observability
// only; whether a message is delivered is always read from the destination.
type Report struct {
	Origin    chain.Domain `json:"origin"`
	Nonce     uint32       `json:"nonce"`
	ID        common.Hash  `json:"id"`
	State     State        `json:"state"`
	Attempts  int          `json:"attempts"`
	Category  Category     `json:"category,omitempty"`
	LastError string       `json:"lastError,omitempty"`
	TxHash    *common.Hash `json:"txHash,omitempty"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// Registry holds the latest report of each message seen by the relay.
type Registry struct {
	mu      sync.RWMutex
	reports map[uint32]Report
}

func NewRegistry() *Registry {
	return &Registry{
		reports: make(map[uint32]Report),
	}
}

func (r *Registry) Update(report Report) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports[report.Nonce] = report
}

func (r *Registry) ByNonce(nonce uint32) (Report, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	report, ok := r.reports[nonce]
	return report, ok
}

func (r *Registry) ByID(id common.Hash) (Report, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, report := range r.reports {
		if report.ID == id {
			return report, true
		}
	}
	return Report{}, false
}

// All returns every report ordered by nonce.
func (r *Registry) All() []Report {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reports := make([]Report, 0, len(r.reports))
	for _, report := range r.reports {
		reports = append(reports, report)
	}
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Nonce < reports[j].Nonce
	})
	return reports
}
