package core

import (
	"crypto/ecdsa"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// SignerRegistry is the set of authorized signer addresses. It is built once
// at startup and read-only afterwards, so lookups need no locking.
type SignerRegistry struct {
	addrs map[common.Address]struct{}
}

// NewSignerRegistry builds a registry from the given addresses.
func NewSignerRegistry(addrs ...common.Address) *SignerRegistry {
	r := &SignerRegistry{addrs: make(map[common.Address]struct{}, len(addrs))}
	for _, a := range addrs {
		r.addrs[a] = struct{}{}
	}
	return r
}

// SignerRegistryFromStrings parses a list of 0x-hex addresses into a registry.
func SignerRegistryFromStrings(addrs []string) (*SignerRegistry, error) {
	parsed := make([]common.Address, 0, len(addrs))
	for _, s := range addrs {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if !common.IsHexAddress(s) {
			return nil, Errorf(ErrSchema, "invalid signer address %q", s)
		}
		parsed = append(parsed, common.HexToAddress(s))
	}
	return NewSignerRegistry(parsed...), nil
}

// Add inserts an address. Only valid during startup, before the registry is
// shared with request handlers.
func (r *SignerRegistry) Add(a common.Address) {
	r.addrs[a] = struct{}{}
}

// Contains reports whether the address is an authorized signer.
func (r *SignerRegistry) Contains(a common.Address) bool {
	_, ok := r.addrs[a]
	return ok
}

// Len returns the number of authorized signers.
func (r *SignerRegistry) Len() int { return len(r.addrs) }

// Addresses returns the authorized signers in lexicographic order.
func (r *SignerRegistry) Addresses() []common.Address {
	out := make([]common.Address, 0, len(r.addrs))
	for a := range r.addrs {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.Compare(out[i].Hex(), out[j].Hex()) < 0
	})
	return out
}

// ParsePrivateKey decodes a 0x-hex secp256k1 private key.
func ParsePrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, WrapError(ErrSchema, err, "invalid private key")
	}
	return key, nil
}

// AddressOf derives the Ethereum address of a private key.
func AddressOf(key *ecdsa.PrivateKey) common.Address {
	return crypto.PubkeyToAddress(key.PublicKey)
}
