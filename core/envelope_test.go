package core

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

func testDomain() Domain {
	return V1Domain(1, common.HexToAddress("0x0000000000000000000000000000000000000001"))
}

func TestSignAndRecover(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}
	domain := testDomain()
	msg := testMessage{value: 42}

	signed, err := SignMessage(domain, msg, key)
	if err != nil {
		t.Fatalf("SignMessage failed: %v", err)
	}

	t.Run("Recovers Signer Address", func(t *testing.T) {
		addr, err := signed.RecoverSigner(domain)
		if err != nil {
			t.Fatalf("RecoverSigner failed: %v", err)
		}
		if addr != AddressOf(key) {
			t.Errorf("Expected %s, got %s", AddressOf(key).Hex(), addr.Hex())
		}
	})

	t.Run("Signature Is Low S", func(t *testing.T) {
		s := new(big.Int).SetBytes(signed.Signature.S.Bytes())
		if s.Cmp(secp256k1HalfN) > 0 {
			t.Error("Produced signature must be canonical low-S")
		}
		if signed.Signature.V != 27 && signed.Signature.V != 28 {
			t.Errorf("Expected v in {27, 28}, got %d", signed.Signature.V)
		}
	})

	t.Run("Re-Signing Stays Canonical", func(t *testing.T) {
		again, err := SignMessage(domain, msg, key)
		if err != nil {
			t.Fatalf("SignMessage failed: %v", err)
		}
		if err := again.Signature.Validate(); err != nil {
			t.Errorf("Second signature not canonical: %v", err)
		}
		addr, err := again.RecoverSigner(domain)
		if err != nil || addr != AddressOf(key) {
			t.Errorf("Second signature must recover the same signer: %v", err)
		}
	})

	t.Run("Wrong Domain Recovers Different Signer", func(t *testing.T) {
		other := V1Domain(5, common.HexToAddress("0x0000000000000000000000000000000000000002"))
		addr, err := signed.RecoverSigner(other)
		if err == nil && addr == AddressOf(key) {
			t.Error("Recovery under a different domain must not yield the signer")
		}
	})
}

func TestSignatureMalleability(t *testing.T) {
	key, _ := crypto.GenerateKey()
	domain := testDomain()
	signed, err := SignMessage(domain, testMessage{value: 7}, key)
	if err != nil {
		t.Fatalf("SignMessage failed: %v", err)
	}

	// Forge the malleable twin: s' = N - s, v flipped.
	sMalleated := new(big.Int).Sub(secp256k1N, new(big.Int).SetBytes(signed.Signature.S.Bytes()))
	vMalleated := uint8(27)
	if signed.Signature.V == 27 {
		vMalleated = 28
	}
	twin := SignedMessage[testMessage]{
		Message: signed.Message,
		Signature: Signature{
			R: signed.Signature.R,
			S: common.BytesToHash(sMalleated.Bytes()),
			V: vMalleated,
		},
	}

	if _, err := twin.RecoverSigner(domain); err == nil {
		t.Fatal("High-S twin must be rejected")
	} else if KindOf(err) != ErrSignature {
		t.Errorf("Expected signature kind, got %v", KindOf(err))
	}
}

func TestSignatureValidation(t *testing.T) {
	t.Run("Bad Recovery Value", func(t *testing.T) {
		sig := Signature{R: common.HexToHash("0x01"), S: common.HexToHash("0x01"), V: 29}
		if err := sig.Validate(); KindOf(err) != ErrSignature {
			t.Errorf("Expected signature error for v=29, got %v", err)
		}
	})

	t.Run("Zero Scalars", func(t *testing.T) {
		sig := Signature{V: 27}
		if err := sig.Validate(); KindOf(err) != ErrSignature {
			t.Errorf("Expected signature error for zero scalars, got %v", err)
		}
	})

	t.Run("Bad Length Bytes", func(t *testing.T) {
		if _, err := SignatureFromBytes(make([]byte, 64)); KindOf(err) != ErrSchema {
			t.Errorf("Expected schema error for 64-byte signature, got %v", err)
		}
	})

	t.Run("JSON Rejects Bad V", func(t *testing.T) {
		var sig Signature
		raw := `{"r":"0x0101010101010101010101010101010101010101010101010101010101010101","s":"0x0101010101010101010101010101010101010101010101010101010101010101","v":26}`
		if err := json.Unmarshal([]byte(raw), &sig); err == nil {
			t.Error("Expected unmarshal to reject v=26")
		}
	})
}

func TestVerifyAgainstRegistry(t *testing.T) {
	key, _ := crypto.GenerateKey()
	stranger, _ := crypto.GenerateKey()
	domain := testDomain()
	registry := NewSignerRegistry(AddressOf(key))

	signed, err := SignMessage(domain, testMessage{value: 1}, key)
	if err != nil {
		t.Fatalf("SignMessage failed: %v", err)
	}
	if err := signed.Verify(domain, registry); err != nil {
		t.Errorf("Authorized signer must verify: %v", err)
	}

	unauthorized, err := SignMessage(domain, testMessage{value: 1}, stranger)
	if err != nil {
		t.Fatalf("SignMessage failed: %v", err)
	}
	if err := unauthorized.Verify(domain, registry); KindOf(err) != ErrAuthorization {
		t.Errorf("Expected authorization error, got %v", err)
	}
}
