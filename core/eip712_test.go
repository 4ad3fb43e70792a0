package core

import (
	"bytes"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

type testMessage struct {
	value uint64
}

func (m testMessage) StructHash() common.Hash {
	enc := append(TypeHash("Test(uint64 value)").Bytes(), Uint64Slot(m.value)...)
	return crypto.Keccak256Hash(enc)
}

func TestDomainSeparator(t *testing.T) {
	contract := common.HexToAddress("0x0000000000000000000000000000000000000001")

	t.Run("Deterministic", func(t *testing.T) {
		d := V1Domain(1, contract)
		if d.Separator() != d.Separator() {
			t.Fatal("Separator must be deterministic")
		}
	})

	t.Run("Chain Id Changes Separator", func(t *testing.T) {
		if V1Domain(1, contract).Separator() == V1Domain(2, contract).Separator() {
			t.Error("Different chain ids must produce different separators")
		}
	})

	t.Run("Name Changes Separator", func(t *testing.T) {
		v1 := V1Domain(1, contract)
		v2 := V2Domain(1, contract)
		if v1.Separator() == v2.Separator() {
			t.Error("V1 and V2 domains must never share a separator")
		}
	})
}

func TestDigest(t *testing.T) {
	contract := common.HexToAddress("0x0000000000000000000000000000000000000001")
	msg := testMessage{value: 42}

	t.Run("Domain Binds Digest", func(t *testing.T) {
		d1 := Digest(V1Domain(1, contract), msg)
		d2 := Digest(V2Domain(1, contract), msg)
		if d1 == d2 {
			t.Error("Same message under different domains must yield different digests")
		}
	})

	t.Run("Message Binds Digest", func(t *testing.T) {
		domain := V1Domain(1, contract)
		if Digest(domain, testMessage{1}) == Digest(domain, testMessage{2}) {
			t.Error("Different messages must yield different digests")
		}
	})
}

func TestSlotEncodings(t *testing.T) {
	t.Run("Address Left Padded", func(t *testing.T) {
		addr := common.HexToAddress("0xabababababababababababababababababababab")
		slot := AddressSlot(addr)
		if len(slot) != 32 {
			t.Fatalf("Expected 32-byte slot, got %d", len(slot))
		}
		if !bytes.Equal(slot[:12], make([]byte, 12)) {
			t.Error("High 12 bytes must be zero")
		}
		if !bytes.Equal(slot[12:], addr.Bytes()) {
			t.Error("Low 20 bytes must be the address")
		}
	})

	t.Run("Uint64 Big Endian", func(t *testing.T) {
		slot := Uint64Slot(0x0102030405060708)
		if len(slot) != 32 {
			t.Fatalf("Expected 32-byte slot, got %d", len(slot))
		}
		expected := []byte{1, 2, 3, 4, 5, 6, 7, 8}
		if !bytes.Equal(slot[24:], expected) {
			t.Errorf("Expected big-endian tail %x, got %x", expected, slot[24:])
		}
		if !bytes.Equal(slot[:24], make([]byte, 24)) {
			t.Error("High bytes must be zero")
		}
	})

	t.Run("Uint128 Zero Extended", func(t *testing.T) {
		slot := Uint128Slot(NewU128(57))
		if len(slot) != 32 {
			t.Fatalf("Expected 32-byte slot, got %d", len(slot))
		}
		if slot[31] != 57 {
			t.Errorf("Expected low byte 57, got %d", slot[31])
		}
	})

	t.Run("Dynamic Bytes Hashed", func(t *testing.T) {
		if bytes.Equal(BytesSlot([]byte("a")), BytesSlot([]byte("b"))) {
			t.Error("Different contents must hash differently")
		}
		if len(BytesSlot(nil)) != 32 {
			t.Error("Empty bytes still occupy a full slot")
		}
	})
}
