package core

import (
	"crypto/ecdsa"
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	secp256k1N     = crypto.S256().Params().N
	secp256k1HalfN = new(big.Int).Rsh(crypto.S256().Params().N, 1)
)

// Signature is a 65-byte ECDSA secp256k1 signature in (r, s, v) form with
// v encoded as 27 + recovery id. Only canonical low-S signatures are valid.
type Signature struct {
	R common.Hash `json:"r"`
	S common.Hash `json:"s"`
	V uint8       `json:"v"`
}

// SignatureFromBytes decodes a 65-byte r || s || v signature. Both the raw
// recovery id form (v in {0, 1}) and the Ethereum legacy form (v in {27, 28})
// are accepted.
func SignatureFromBytes(b []byte) (Signature, error) {
	if len(b) != 65 {
		return Signature{}, Errorf(ErrSchema, "signature must be 65 bytes, got %d", len(b))
	}
	v := b[64]
	if v < 27 {
		v += 27
	}
	sig := Signature{
		R: common.BytesToHash(b[:32]),
		S: common.BytesToHash(b[32:64]),
		V: v,
	}
	if err := sig.Validate(); err != nil {
		return Signature{}, err
	}
	return sig, nil
}

// Bytes returns the signature as 65 bytes r || s || v with v in {27, 28}.
func (s Signature) Bytes() []byte {
	out := make([]byte, 65)
	copy(out[:32], s.R.Bytes())
	copy(out[32:64], s.S.Bytes())
	out[64] = s.V
	return out
}

// Validate rejects signatures that are not in canonical form: v outside
// {27, 28}, zero r or s, or a high-S scalar (malleable twin).
func (s Signature) Validate() error {
	if s.V != 27 && s.V != 28 {
		return Errorf(ErrSignature, "invalid recovery value %d", s.V)
	}
	r := new(big.Int).SetBytes(s.R.Bytes())
	ss := new(big.Int).SetBytes(s.S.Bytes())
	if r.Sign() == 0 || ss.Sign() == 0 {
		return Errorf(ErrSignature, "zero signature scalar")
	}
	if r.Cmp(secp256k1N) >= 0 || ss.Cmp(secp256k1N) >= 0 {
		return Errorf(ErrSignature, "signature scalar out of range")
	}
	if ss.Cmp(secp256k1HalfN) > 0 {
		return Errorf(ErrSignature, "non-canonical high-S signature")
	}
	return nil
}

// UnmarshalJSON decodes and validates the {r, s, v} wire form, rejecting
// malformed or non-canonical signatures on ingest.
func (s *Signature) UnmarshalJSON(data []byte) error {
	type wire Signature
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return WrapError(ErrSchema, err, "malformed signature")
	}
	sig := Signature(w)
	if err := sig.Validate(); err != nil {
		return err
	}
	*s = sig
	return nil
}

// recoveryBytes returns the signature in the r || s || recid form expected by
// the secp256k1 recovery primitive.
func (s Signature) recoveryBytes() []byte {
	b := s.Bytes()
	b[64] -= 27
	return b
}

// SignedMessage binds a typed message to the ECDSA signature over its EIP-712
// digest. Values are immutable once created.
type SignedMessage[M Message] struct {
	Message   M         `json:"message"`
	Signature Signature `json:"signature"`
}

// SignMessage computes the EIP-712 digest of msg under domain and signs it
// with key. The resulting signature is always canonical low-S.
func SignMessage[M Message](domain Domain, msg M, key *ecdsa.PrivateKey) (*SignedMessage[M], error) {
	digest := Digest(domain, msg)
	raw, err := crypto.Sign(digest.Bytes(), key)
	if err != nil {
		return nil, WrapError(ErrSignature, err, "signing failed")
	}
	sig, err := SignatureFromBytes(raw)
	if err != nil {
		return nil, err
	}
	return &SignedMessage[M]{Message: msg, Signature: sig}, nil
}

// Digest returns the EIP-712 signing digest of the enclosed message.
func (sm *SignedMessage[M]) Digest(domain Domain) common.Hash {
	return Digest(domain, sm.Message)
}

// RecoverSigner recomputes the digest and recovers the 20-byte address of the
// signer. Non-canonical signatures are rejected before recovery is attempted.
func (sm *SignedMessage[M]) RecoverSigner(domain Domain) (common.Address, error) {
	if err := sm.Signature.Validate(); err != nil {
		return common.Address{}, err
	}
	digest := Digest(domain, sm.Message)
	pub, err := crypto.SigToPub(digest.Bytes(), sm.Signature.recoveryBytes())
	if err != nil {
		return common.Address{}, WrapError(ErrSignature, err, "ecdsa recovery failed")
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// Verify recovers the signer and checks membership in the registry.
func (sm *SignedMessage[M]) Verify(domain Domain, signers *SignerRegistry) error {
	addr, err := sm.RecoverSigner(domain)
	if err != nil {
		return err
	}
	if !signers.Contains(addr) {
		return Errorf(ErrAuthorization, "signer %s is not authorized", addr.Hex())
	}
	return nil
}
