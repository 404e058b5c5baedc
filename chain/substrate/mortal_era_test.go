// Copyright 2020 Snowfork
// SPDX-License-Identifier: LGPL-3.0-only

package substrate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abacus-network/abacus/relayer/chain/substrate"
)

func TestMortalEra(t *testing.T) {
	cases := []struct {
		block         uint64
		first, second byte
	}{
		{1, 21, 0},
		{63, 245, 3},
		{64, 5, 0},
		{65, 21, 0},
	}
	for _, tc := range cases {
		era := substrate.NewMortalEra(tc.block)
		assert.True(t, era.IsMortalEra)
		assert.Equal(t, tc.first, era.AsMortalEra.First, "block %d", tc.block)
		assert.Equal(t, tc.second, era.AsMortalEra.Second, "block %d", tc.block)
	}
}
