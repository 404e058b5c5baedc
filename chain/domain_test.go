package chain

import (
	"math/rand"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
)

func TestDomainHashEncoding(t *testing.T) {
	expected := crypto.Keccak256Hash([]byte{0, 0, 0x03, 0xe8}, []byte("ABACUS"))

	assert.Equal(t, expected, DomainHash(1000))
	assert.Equal(t, expected, Domain(1000).Hash())
}

func TestDomainHashIsDistinct(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	seen := make(map[common.Hash]Domain)

	domains := []Domain{0, 1, 0xffffffff}
	for i := 0; i < 2000; i++ {
		domains = append(domains, Domain(rng.Uint32()))
	}

	for _, d := range domains {
		h := DomainHash(d)
		if prev, ok := seen[h]; ok {
			assert.Equal(t, prev, d, "domains %d and %d share a hash", prev, d)
		}
		seen[h] = d
	}
}

type stubMailbox struct {
	Mailbox
	domain Domain
}

func (m stubMailbox) LocalDomain() Domain { return m.domain }

func TestLocalDomainHash(t *testing.T) {
	assert.Equal(t, DomainHash(5), LocalDomainHash(stubMailbox{domain: 5}))
}
