package tapv1

import (
	"github.com/ethereum/go-ethereum/common"

	"tap-aggregator/core"
	"tap-aggregator/graph"
)

// The conversions below bridge the wire messages to the engine's data model,
// validating address widths and signature shape on the way in.

// ToSignedReceipt converts a wire receipt into the engine form.
func (m *SignedReceipt) ToSignedReceipt() (*graph.SignedReceipt, error) {
	if m == nil || m.Message == nil {
		return nil, core.Errorf(core.ErrSchema, "missing receipt message")
	}
	if len(m.Message.AllocationId) != common.AddressLength {
		return nil, core.Errorf(core.ErrSchema, "allocation id must be %d bytes, got %d",
			common.AddressLength, len(m.Message.AllocationId))
	}
	if m.Message.Value == nil {
		return nil, core.Errorf(core.ErrSchema, "missing receipt value")
	}
	sig, err := core.SignatureFromBytes(m.Signature)
	if err != nil {
		return nil, err
	}
	return &graph.SignedReceipt{
		Message: graph.Receipt{
			AllocationID: common.BytesToAddress(m.Message.AllocationId),
			TimestampNs:  m.Message.TimestampNs,
			Nonce:        m.Message.Nonce,
			Value:        core.U128FromWords(m.Message.Value.High, m.Message.Value.Low),
		},
		Signature: sig,
	}, nil
}

// ToSignedRAV converts a wire voucher into the engine form.
func (m *SignedRav) ToSignedRAV() (*graph.SignedRAV, error) {
	if m == nil || m.Message == nil {
		return nil, core.Errorf(core.ErrSchema, "missing voucher message")
	}
	if len(m.Message.AllocationId) != common.AddressLength {
		return nil, core.Errorf(core.ErrSchema, "allocation id must be %d bytes, got %d",
			common.AddressLength, len(m.Message.AllocationId))
	}
	if m.Message.ValueAggregate == nil {
		return nil, core.Errorf(core.ErrSchema, "missing value aggregate")
	}
	sig, err := core.SignatureFromBytes(m.Signature)
	if err != nil {
		return nil, err
	}
	return &graph.SignedRAV{
		Message: graph.ReceiptAggregateVoucher{
			AllocationID:   common.BytesToAddress(m.Message.AllocationId),
			TimestampNs:    m.Message.TimestampNs,
			ValueAggregate: core.U128FromWords(m.Message.ValueAggregate.High, m.Message.ValueAggregate.Low),
		},
		Signature: sig,
	}, nil
}

// FromSignedReceipt converts an engine receipt into wire form.
func FromSignedReceipt(r *graph.SignedReceipt) *SignedReceipt {
	high, low := r.Message.Value.Words()
	return &SignedReceipt{
		Message: &Receipt{
			AllocationId: r.Message.AllocationID.Bytes(),
			TimestampNs:  r.Message.TimestampNs,
			Nonce:        r.Message.Nonce,
			Value:        &Uint128{High: high, Low: low},
		},
		Signature: r.Signature.Bytes(),
	}
}

// FromSignedRAV converts an engine voucher into wire form.
func FromSignedRAV(rav *graph.SignedRAV) *SignedRav {
	high, low := rav.Message.ValueAggregate.Words()
	return &SignedRav{
		Message: &ReceiptAggregateVoucher{
			AllocationId:   rav.Message.AllocationID.Bytes(),
			TimestampNs:    rav.Message.TimestampNs,
			ValueAggregate: &Uint128{High: high, Low: low},
		},
		Signature: rav.Signature.Bytes(),
	}
}
