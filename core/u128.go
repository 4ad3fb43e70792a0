package core

import (
	"strings"

	"github.com/holiman/uint256"
)

// U128 is an unsigned 128-bit integer used for receipt values and RAV value
// aggregates. It is backed by a 256-bit word so checked arithmetic can detect
// carries out of the 128-bit range.
//
// The JSON form is a decimal number; quoted decimal strings are accepted on
// input for clients that cannot represent the full range natively.
type U128 uint256.Int

// NewU128 returns a U128 holding the given 64-bit value.
func NewU128(v uint64) U128 {
	var u uint256.Int
	u.SetUint64(v)
	return U128(u)
}

// U128FromString parses a decimal string into a U128.
func U128FromString(s string) (U128, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return U128{}, WrapError(ErrSchema, err, "invalid u128 %q", s)
	}
	if v.BitLen() > 128 {
		return U128{}, Errorf(ErrSchema, "value %s exceeds 128 bits", s)
	}
	return U128(*v), nil
}

// U128FromWords assembles a U128 from its high and low 64-bit halves.
func U128FromWords(high, low uint64) U128 {
	var u uint256.Int
	u[0] = low
	u[1] = high
	return U128(u)
}

// Words splits the value into its high and low 64-bit halves.
func (u U128) Words() (high, low uint64) {
	v := uint256.Int(u)
	return v[1], v[0]
}

// CheckedAdd returns u + o, or an overflow error if the sum does not fit in
// 128 bits.
func (u U128) CheckedAdd(o U128) (U128, error) {
	a, b := uint256.Int(u), uint256.Int(o)
	var sum uint256.Int
	sum.Add(&a, &b)
	if sum.BitLen() > 128 {
		return U128{}, Errorf(ErrOverflow, "u128 aggregate overflow")
	}
	return U128(sum), nil
}

// Eq reports whether two values are equal.
func (u U128) Eq(o U128) bool {
	a, b := uint256.Int(u), uint256.Int(o)
	return a.Eq(&b)
}

// IsZero reports whether the value is zero.
func (u U128) IsZero() bool {
	v := uint256.Int(u)
	return v.IsZero()
}

// Bytes32 returns the value as a 32-byte big-endian word, the EIP-712
// encoding of a uint128 zero-extended to a full slot.
func (u U128) Bytes32() [32]byte {
	v := uint256.Int(u)
	return v.Bytes32()
}

func (u U128) String() string {
	v := uint256.Int(u)
	return v.Dec()
}

// MarshalJSON emits the value as a bare decimal number.
func (u U128) MarshalJSON() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalJSON accepts either a decimal number or a quoted decimal string.
func (u *U128) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	v, err := U128FromString(s)
	if err != nil {
		return err
	}
	*u = v
	return nil
}
