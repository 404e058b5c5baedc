package substrate

import (
	"fmt"
	"os"
	"strings"

	"github.com/abacus-network/abacus/relayer/crypto/sr25519"
)

// ResolvePrivateKey loads a key URI either inline or from a file.
func ResolvePrivateKey(privateKey, privateKeyFile string) (*sr25519.Keypair, error) {
	var cleanedKeyURI string

	if privateKey == "" {
		if privateKeyFile == "" {
			return nil, fmt.Errorf("private key URI not supplied")
		}
		content, err := os.ReadFile(privateKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load private key URI: %w", err)
		}
		cleanedKeyURI = strings.TrimSpace(string(content))
	} else {
		cleanedKeyURI = privateKey
	}

	keypair, err := sr25519.NewKeypairFromSeed(cleanedKeyURI, sr25519.SubstrateNetwork)
	if err != nil {
		return nil, fmt.Errorf("unable to parse private key URI: %w", err)
	}

	return keypair, nil
}
