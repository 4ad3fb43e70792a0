package core

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Message is a struct that can be hashed per EIP-712. StructHash must return
// keccak256(typeHash || encodeData(message)) and be byte-identical across
// platforms for the same logical value.
type Message interface {
	StructHash() common.Hash
}

// Domain is the EIP-712 domain binding signatures to a chain, contract, and
// protocol name/version. The same domain is used across all receipts in one
// aggregation.
type Domain struct {
	Name              string
	Version           string
	ChainID           uint64
	VerifyingContract common.Address
}

var domainTypeHash = crypto.Keccak256Hash(
	[]byte("EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)"))

// V1Domain returns the domain used for allocation-based (V1) receipts and RAVs.
func V1Domain(chainID uint64, verifyingContract common.Address) Domain {
	return Domain{
		Name:              "TAP",
		Version:           "1",
		ChainID:           chainID,
		VerifyingContract: verifyingContract,
	}
}

// Separator returns the 32-byte domain separator hash.
func (d Domain) Separator() common.Hash {
	enc := make([]byte, 0, 5*32)
	enc = append(enc, domainTypeHash.Bytes()...)
	enc = append(enc, crypto.Keccak256([]byte(d.Name))...)
	enc = append(enc, crypto.Keccak256([]byte(d.Version))...)
	enc = appendUint64Slot(enc, d.ChainID)
	enc = appendAddressSlot(enc, d.VerifyingContract)
	return crypto.Keccak256Hash(enc)
}

// Digest computes the EIP-712 signing digest
// keccak256(0x1901 || domainSeparator || hashStruct(message)).
func Digest(d Domain, m Message) common.Hash {
	sep := d.Separator()
	sh := m.StructHash()
	return crypto.Keccak256Hash([]byte{0x19, 0x01}, sep.Bytes(), sh.Bytes())
}

// TypeHash hashes an EIP-712 type string.
func TypeHash(typeString string) common.Hash {
	return crypto.Keccak256Hash([]byte(typeString))
}

// The slot encoders below implement the EIP-712 encodeData rules: scalars are
// left-padded big-endian to 32 bytes, addresses occupy the low 20 bytes of a
// zero slot, bytes32 fills a slot, and dynamic bytes contribute the keccak of
// their contents.

func appendAddressSlot(enc []byte, a common.Address) []byte {
	var slot [32]byte
	copy(slot[12:], a.Bytes())
	return append(enc, slot[:]...)
}

func appendUint64Slot(enc []byte, v uint64) []byte {
	var slot [32]byte
	for i := 0; i < 8; i++ {
		slot[31-i] = byte(v >> (8 * i))
	}
	return append(enc, slot[:]...)
}

func appendUint128Slot(enc []byte, v U128) []byte {
	slot := v.Bytes32()
	return append(enc, slot[:]...)
}

func appendBytes32Slot(enc []byte, v [32]byte) []byte {
	return append(enc, v[:]...)
}

func appendBytesSlot(enc []byte, v []byte) []byte {
	return append(enc, crypto.Keccak256(v)...)
}

// AddressSlot returns the 32-byte encoding of an address.
func AddressSlot(a common.Address) []byte { return appendAddressSlot(nil, a) }

// Uint64Slot returns the 32-byte encoding of a uint64.
func Uint64Slot(v uint64) []byte { return appendUint64Slot(nil, v) }

// Uint128Slot returns the 32-byte encoding of a U128.
func Uint128Slot(v U128) []byte { return appendUint128Slot(nil, v) }

// Bytes32Slot returns the 32-byte encoding of a fixed 32-byte value.
func Bytes32Slot(v [32]byte) []byte { return appendBytes32Slot(nil, v) }

// BytesSlot returns the 32-byte encoding of a dynamic byte string.
func BytesSlot(v []byte) []byte { return appendBytesSlot(nil, v) }
