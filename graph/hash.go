package graph

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

func keccak(data []byte) common.Hash {
	return crypto.Keccak256Hash(data)
}
