package delivery

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/abacus-network/abacus/relayer/chain"
)

// MatchingListElement selects messages by route. A field left empty matches
// any value.
type MatchingListElement struct {
	OriginDomain      []chain.Domain `mapstructure:"origin-domain"`
	SenderAddress     []common.Hash  `mapstructure:"sender-address"`
	DestinationDomain []chain.Domain `mapstructure:"destination-domain"`
	RecipientAddress  []common.Hash  `mapstructure:"recipient-address"`
}

func (e MatchingListElement) Matches(msg *chain.Message) bool {
	return matchDomain(e.OriginDomain, msg.Origin) &&
		matchHash(e.SenderAddress, msg.Sender) &&
		matchDomain(e.DestinationDomain, msg.Destination) &&
		matchHash(e.RecipientAddress, msg.Recipient)
}

// MatchingList matches a message when any of its elements does.
type MatchingList []MatchingListElement

func (l MatchingList) Matches(msg *chain.Message) bool {
	for _, e := range l {
		if e.Matches(msg) {
			return true
		}
	}
	return false
}

// Relayable applies the whitelist and blacklist to msg. An empty whitelist
// admits every message.
func Relayable(whitelist, blacklist MatchingList, msg *chain.Message) bool {
	if len(whitelist) > 0 && !whitelist.Matches(msg) {
		return false
	}
	return !blacklist.Matches(msg)
}

func matchDomain(allowed []chain.Domain, domain chain.Domain) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, d := range allowed {
		if d == domain {
			return true
		}
	}
	return false
}

func matchHash(allowed []common.Hash, hash common.Hash) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, h := range allowed {
		if h == hash {
			return true
		}
	}
	return false
}
