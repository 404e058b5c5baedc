package ethereum

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/stretchr/testify/assert"

	"github.com/abacus-network/abacus/relayer/chain"
)

type codeError struct {
	code int
}

func (e codeError) Error() string  { return fmt.Sprintf("rpc error %d", e.code) }
func (e codeError) ErrorCode() int { return e.code }

func TestClassify(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		permanent bool
	}{
		{"parse error", codeError{-32700}, true},
		{"invalid request", codeError{-32600}, true},
		{"method not found", codeError{-32601}, true},
		{"invalid params", codeError{-32602}, true},
		{"reverted", codeError{3}, true},
		{"no code", bind.ErrNoCode, true},
		{"wrapped no code", fmt.Errorf("call: %w", bind.ErrNoCode), true},
		{"server error", codeError{-32000}, false},
		{"limit exceeded", codeError{-32005}, false},
		{"deadline", context.DeadlineExceeded, false},
		{"eof", io.ErrUnexpectedEOF, false},
		{"unknown", errors.New("boom"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := classify("count", tc.err)
			assert.Equal(t, tc.permanent, chain.IsPermanent(err))
			assert.ErrorIs(t, err, tc.err)

			var chainErr *chain.ChainCommunicationError
			assert.ErrorAs(t, err, &chainErr)
			assert.Equal(t, "count", chainErr.Op)
		})
	}
}

func TestClassifyNil(t *testing.T) {
	assert.NoError(t, classify("count", nil))
}
