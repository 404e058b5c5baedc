// Copyright 2020 Snowfork
// SPDX-License-Identifier: LGPL-3.0-only

package chain

import (
	"encoding/binary"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// domainHashSuffix is appended to the big-endian domain id before hashing.
const domainHashSuffix = "ABACUS"

// Domain is the numeric identifier of a chain participating in messaging.
type Domain uint32

// DomainHash computes keccak256(be32(domain) || "ABACUS").
func DomainHash(domain Domain) common.Hash {
	buf := make([]byte, 4, 4+len(domainHashSuffix))
	binary.BigEndian.PutUint32(buf, uint32(domain))
	buf = append(buf, domainHashSuffix...)
	return crypto.Keccak256Hash(buf)
}

func (d Domain) Hash() common.Hash {
	return DomainHash(d)
}

func (d Domain) String() string {
	return strconv.FormatUint(uint64(d), 10)
}

// LocalDomainHash is the domain hash of the chain a mailbox lives on.
func LocalDomainHash(m Mailbox) common.Hash {
	return DomainHash(m.LocalDomain())
}
