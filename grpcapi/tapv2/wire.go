//go:build !no_v2

package tapv2

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// Uint128 carries a 128-bit unsigned integer as its two 64-bit halves.
type Uint128 struct {
	High uint64
	Low  uint64
}

// Receipt mirrors tap_aggregator.v2.Receipt.
type Receipt struct {
	CollectionId    []byte
	Payer           []byte
	DataService     []byte
	ServiceProvider []byte
	TimestampNs     uint64
	Nonce           uint64
	Value           *Uint128
}

// SignedReceipt mirrors tap_aggregator.v2.SignedReceipt.
type SignedReceipt struct {
	Message   *Receipt
	Signature []byte
}

// ReceiptAggregateVoucher mirrors tap_aggregator.v2.ReceiptAggregateVoucher.
type ReceiptAggregateVoucher struct {
	CollectionId    []byte
	Payer           []byte
	DataService     []byte
	ServiceProvider []byte
	TimestampNs     uint64
	ValueAggregate  *Uint128
	Metadata        []byte
}

// SignedRav mirrors tap_aggregator.v2.SignedRav.
type SignedRav struct {
	Message   *ReceiptAggregateVoucher
	Signature []byte
}

// RavRequest mirrors tap_aggregator.v2.RavRequest.
type RavRequest struct {
	Receipts    []*SignedReceipt
	PreviousRav *SignedRav
}

// RavResponse mirrors tap_aggregator.v2.RavResponse.
type RavResponse struct {
	Rav *SignedRav
}

// MarshalWire implements grpcapi.WireMessage.
func (m *Uint128) MarshalWire() []byte { return m.appendWire(nil) }

func (m *Uint128) appendWire(b []byte) []byte {
	if m == nil {
		return b
	}
	if m.High != 0 {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, m.High)
	}
	if m.Low != 0 {
		b = protowire.AppendTag(b, 2, protowire.VarintType)
		b = protowire.AppendVarint(b, m.Low)
	}
	return b
}

// UnmarshalWire implements grpcapi.WireMessage.
func (m *Uint128) UnmarshalWire(data []byte) error {
	return walkFields(data, func(num protowire.Number, typ protowire.Type, v []byte) error {
		switch num {
		case 1:
			m.High = decodeVarintField(v)
		case 2:
			m.Low = decodeVarintField(v)
		}
		return nil
	})
}

// MarshalWire implements grpcapi.WireMessage.
func (m *Receipt) MarshalWire() []byte { return m.appendWire(nil) }

func (m *Receipt) appendWire(b []byte) []byte {
	if m == nil {
		return b
	}
	if len(m.CollectionId) > 0 {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, m.CollectionId)
	}
	if len(m.Payer) > 0 {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, m.Payer)
	}
	if len(m.DataService) > 0 {
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendBytes(b, m.DataService)
	}
	if len(m.ServiceProvider) > 0 {
		b = protowire.AppendTag(b, 4, protowire.BytesType)
		b = protowire.AppendBytes(b, m.ServiceProvider)
	}
	if m.TimestampNs != 0 {
		b = protowire.AppendTag(b, 5, protowire.VarintType)
		b = protowire.AppendVarint(b, m.TimestampNs)
	}
	if m.Nonce != 0 {
		b = protowire.AppendTag(b, 6, protowire.VarintType)
		b = protowire.AppendVarint(b, m.Nonce)
	}
	if m.Value != nil {
		b = protowire.AppendTag(b, 7, protowire.BytesType)
		b = protowire.AppendBytes(b, m.Value.appendWire(nil))
	}
	return b
}

// UnmarshalWire implements grpcapi.WireMessage.
func (m *Receipt) UnmarshalWire(data []byte) error {
	return walkFields(data, func(num protowire.Number, typ protowire.Type, v []byte) error {
		switch num {
		case 1:
			m.CollectionId = append([]byte(nil), v...)
		case 2:
			m.Payer = append([]byte(nil), v...)
		case 3:
			m.DataService = append([]byte(nil), v...)
		case 4:
			m.ServiceProvider = append([]byte(nil), v...)
		case 5:
			m.TimestampNs = decodeVarintField(v)
		case 6:
			m.Nonce = decodeVarintField(v)
		case 7:
			m.Value = new(Uint128)
			return m.Value.UnmarshalWire(v)
		}
		return nil
	})
}

// MarshalWire implements grpcapi.WireMessage.
func (m *SignedReceipt) MarshalWire() []byte { return m.appendWire(nil) }

func (m *SignedReceipt) appendWire(b []byte) []byte {
	if m == nil {
		return b
	}
	if m.Message != nil {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, m.Message.appendWire(nil))
	}
	if len(m.Signature) > 0 {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, m.Signature)
	}
	return b
}

// UnmarshalWire implements grpcapi.WireMessage.
func (m *SignedReceipt) UnmarshalWire(data []byte) error {
	return walkFields(data, func(num protowire.Number, typ protowire.Type, v []byte) error {
		switch num {
		case 1:
			m.Message = new(Receipt)
			return m.Message.UnmarshalWire(v)
		case 2:
			m.Signature = append([]byte(nil), v...)
		}
		return nil
	})
}

// MarshalWire implements grpcapi.WireMessage.
func (m *ReceiptAggregateVoucher) MarshalWire() []byte { return m.appendWire(nil) }

func (m *ReceiptAggregateVoucher) appendWire(b []byte) []byte {
	if m == nil {
		return b
	}
	if len(m.CollectionId) > 0 {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, m.CollectionId)
	}
	if len(m.Payer) > 0 {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, m.Payer)
	}
	if len(m.DataService) > 0 {
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendBytes(b, m.DataService)
	}
	if len(m.ServiceProvider) > 0 {
		b = protowire.AppendTag(b, 4, protowire.BytesType)
		b = protowire.AppendBytes(b, m.ServiceProvider)
	}
	if m.TimestampNs != 0 {
		b = protowire.AppendTag(b, 5, protowire.VarintType)
		b = protowire.AppendVarint(b, m.TimestampNs)
	}
	if m.ValueAggregate != nil {
		b = protowire.AppendTag(b, 6, protowire.BytesType)
		b = protowire.AppendBytes(b, m.ValueAggregate.appendWire(nil))
	}
	if len(m.Metadata) > 0 {
		b = protowire.AppendTag(b, 7, protowire.BytesType)
		b = protowire.AppendBytes(b, m.Metadata)
	}
	return b
}

// UnmarshalWire implements grpcapi.WireMessage.
func (m *ReceiptAggregateVoucher) UnmarshalWire(data []byte) error {
	return walkFields(data, func(num protowire.Number, typ protowire.Type, v []byte) error {
		switch num {
		case 1:
			m.CollectionId = append([]byte(nil), v...)
		case 2:
			m.Payer = append([]byte(nil), v...)
		case 3:
			m.DataService = append([]byte(nil), v...)
		case 4:
			m.ServiceProvider = append([]byte(nil), v...)
		case 5:
			m.TimestampNs = decodeVarintField(v)
		case 6:
			m.ValueAggregate = new(Uint128)
			return m.ValueAggregate.UnmarshalWire(v)
		case 7:
			m.Metadata = append([]byte(nil), v...)
		}
		return nil
	})
}

// MarshalWire implements grpcapi.WireMessage.
func (m *SignedRav) MarshalWire() []byte { return m.appendWire(nil) }

func (m *SignedRav) appendWire(b []byte) []byte {
	if m == nil {
		return b
	}
	if m.Message != nil {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, m.Message.appendWire(nil))
	}
	if len(m.Signature) > 0 {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, m.Signature)
	}
	return b
}

// UnmarshalWire implements grpcapi.WireMessage.
func (m *SignedRav) UnmarshalWire(data []byte) error {
	return walkFields(data, func(num protowire.Number, typ protowire.Type, v []byte) error {
		switch num {
		case 1:
			m.Message = new(ReceiptAggregateVoucher)
			return m.Message.UnmarshalWire(v)
		case 2:
			m.Signature = append([]byte(nil), v...)
		}
		return nil
	})
}

// MarshalWire implements grpcapi.WireMessage.
func (m *RavRequest) MarshalWire() []byte {
	var b []byte
	if m == nil {
		return b
	}
	for _, r := range m.Receipts {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, r.appendWire(nil))
	}
	if m.PreviousRav != nil {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, m.PreviousRav.appendWire(nil))
	}
	return b
}

// UnmarshalWire implements grpcapi.WireMessage.
func (m *RavRequest) UnmarshalWire(data []byte) error {
	return walkFields(data, func(num protowire.Number, typ protowire.Type, v []byte) error {
		switch num {
		case 1:
			r := new(SignedReceipt)
			if err := r.UnmarshalWire(v); err != nil {
				return err
			}
			m.Receipts = append(m.Receipts, r)
		case 2:
			m.PreviousRav = new(SignedRav)
			return m.PreviousRav.UnmarshalWire(v)
		}
		return nil
	})
}

// MarshalWire implements grpcapi.WireMessage.
func (m *RavResponse) MarshalWire() []byte {
	var b []byte
	if m == nil {
		return b
	}
	if m.Rav != nil {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, m.Rav.appendWire(nil))
	}
	return b
}

// UnmarshalWire implements grpcapi.WireMessage.
func (m *RavResponse) UnmarshalWire(data []byte) error {
	return walkFields(data, func(num protowire.Number, typ protowire.Type, v []byte) error {
		if num == 1 {
			m.Rav = new(SignedRav)
			return m.Rav.UnmarshalWire(v)
		}
		return nil
	})
}

func walkFields(data []byte, visit func(num protowire.Number, typ protowire.Type, v []byte) error) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			if err := visit(num, typ, protowire.AppendVarint(nil, v)); err != nil {
				return err
			}
			data = data[n:]
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			if err := visit(num, typ, v); err != nil {
				return err
			}
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			data = data[n:]
		}
	}
	return nil
}

func decodeVarintField(v []byte) uint64 {
	u, n := protowire.ConsumeVarint(v)
	if n < 0 {
		return 0
	}
	return u
}
