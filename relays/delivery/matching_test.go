package delivery

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"

	"github.com/abacus-network/abacus/relayer/chain"
)

func TestRelayable(t *testing.T) {
	sender := common.HexToHash("0x01")
	recipient := common.HexToHash("0x02")
	msg := &chain.Message{
		Origin:      originDomain,
		Sender:      sender,
		Destination: destinationDomain,
		Recipient:   recipient,
	}

	tests := []struct {
		name      string
		whitelist MatchingList
		blacklist MatchingList
		want      bool
	}{
		{"no lists", nil, nil, true},
		{"whitelisted route", MatchingList{{OriginDomain: []chain.Domain{originDomain}, RecipientAddress: []common.Hash{recipient}}}, nil, true},
		{"whitelist with other sender", MatchingList{{SenderAddress: []common.Hash{common.HexToHash("0x03")}}}, nil, false},
		{"any whitelist element", MatchingList{
			{DestinationDomain: []chain.Domain{3000}},
			{DestinationDomain: []chain.Domain{3000, destinationDomain}},
		}, nil, true},
		{"blacklisted recipient", nil, MatchingList{{RecipientAddress: []common.Hash{recipient}}}, false},
		{"blacklist wins over whitelist", MatchingList{{}}, MatchingList{{SenderAddress: []common.Hash{sender}}}, false},
		{"blacklist for other origin", nil, MatchingList{{OriginDomain: []chain.Domain{3000}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Relayable(tt.whitelist, tt.blacklist, msg))
		})
	}
}
