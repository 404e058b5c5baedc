package ethereum

import (
	"errors"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/abacus-network/abacus/relayer/chain"
)

// JSON-RPC error codes that will fail the same way on every retry.
var permanentCodes = map[int]struct{}{
	-32700: {}, // parse error
	-32600: {}, // invalid request
	-32601: {}, // method not found
	-32602: {}, // invalid params
	3:      {}, // execution reverted
}

func isPermanent(err error) bool {
	if errors.Is(err, bind.ErrNoCode) {
		return true
	}
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		_, ok := permanentCodes[rpcErr.ErrorCode()]
		return ok
	}
	return false
}

// classify wraps err as a chain communication error. Timeouts, dropped
// connections and server-side (-32000) errors stay transient.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if isPermanent(err) {
		return chain.NewPermanentError(op, err)
	}
	return chain.NewTransientError(op, err)
}
