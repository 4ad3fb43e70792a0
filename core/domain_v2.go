//go:build !no_v2

package core

import "github.com/ethereum/go-ethereum/common"

// V2Domain returns the domain used for collection-based (V2) receipts and
// RAVs. The name differs from V1 so a V1 digest can never collide with a V2
// digest even if the struct encodings were to agree.
func V2Domain(chainID uint64, verifyingContract common.Address) Domain {
	return Domain{
		Name:              "GraphTally",
		Version:           "1",
		ChainID:           chainID,
		VerifyingContract: verifyingContract,
	}
}
