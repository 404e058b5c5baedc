package delivery

import (
	"encoding/hex"
	"fmt"
	"reflect"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mitchellh/mapstructure"
)

// HexHookFunc decodes hex strings into hashes and addresses. Hashes accept
// shorter input, left padded with zeros, so an EVM address can name a mailbox.
func HexHookFunc() mapstructure.DecodeHookFuncType {
	return func(
		f reflect.Type,
		t reflect.Type,
		data interface{},
	) (interface{}, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}

		switch t {
		case reflect.TypeOf(common.Hash{}):
			b, err := HexDecodeString(data.(string))
			if err != nil {
				return nil, err
			}
			if len(b) > common.HashLength {
				return nil, fmt.Errorf("hash %q longer than %d bytes", data, common.HashLength)
			}
			return common.BytesToHash(b), nil
		case reflect.TypeOf(common.Address{}):
			b, err := HexDecodeString(data.(string))
			if err != nil {
				return nil, err
			}
			if len(b) != common.AddressLength {
				return nil, fmt.Errorf("address %q is not %d bytes", data, common.AddressLength)
			}
			return common.BytesToAddress(b), nil
		default:
			return data, nil
		}
	}
}

// HexDecodeString decodes bytes from a hex string. Contrary to hex.DecodeString, this function does not error if "0x"
// is prefixed, and adds an extra 0 if the hex string has an odd length.
func HexDecodeString(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")

	if len(s)%2 != 0 {
		s = "0" + s
	}

	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}

	return b, nil
}
