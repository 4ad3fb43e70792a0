// Package graph defines the receipt and receipt-aggregate-voucher data model
// for both protocol versions, together with their EIP-712 struct hashing and
// JSON wire schemas.
package graph

import (
	"github.com/ethereum/go-ethereum/common"

	"tap-aggregator/core"
)

// Receipt is a sender-signed micropayment record tied to an allocation.
type Receipt struct {
	AllocationID common.Address `json:"allocation_id"`
	TimestampNs  uint64         `json:"timestamp_ns"`
	Nonce        uint64         `json:"nonce"`
	Value        core.U128      `json:"value"`
}

// ReceiptAggregateVoucher is the redeemable aggregate of a batch of receipts,
// possibly chained from a prior voucher.
type ReceiptAggregateVoucher struct {
	AllocationID   common.Address `json:"allocation_id"`
	TimestampNs    uint64         `json:"timestamp_ns"`
	ValueAggregate core.U128      `json:"value_aggregate"`
}

// SignedReceipt is a receipt bound to its sender's signature.
type SignedReceipt = core.SignedMessage[Receipt]

// SignedRAV is a voucher bound to the aggregator's signature.
type SignedRAV = core.SignedMessage[ReceiptAggregateVoucher]

var (
	receiptTypeHash = core.TypeHash(
		"Receipt(address allocation_id,uint64 timestamp_ns,uint64 nonce,uint128 value)")
	ravTypeHash = core.TypeHash(
		"ReceiptAggregateVoucher(address allocationId,uint64 timestampNs,uint128 valueAggregate)")
)

// StructHash implements core.Message.
func (r Receipt) StructHash() common.Hash {
	enc := make([]byte, 0, 5*32)
	enc = append(enc, receiptTypeHash.Bytes()...)
	enc = append(enc, core.AddressSlot(r.AllocationID)...)
	enc = append(enc, core.Uint64Slot(r.TimestampNs)...)
	enc = append(enc, core.Uint64Slot(r.Nonce)...)
	enc = append(enc, core.Uint128Slot(r.Value)...)
	return keccak(enc)
}

// StructHash implements core.Message.
func (v ReceiptAggregateVoucher) StructHash() common.Hash {
	enc := make([]byte, 0, 4*32)
	enc = append(enc, ravTypeHash.Bytes()...)
	enc = append(enc, core.AddressSlot(v.AllocationID)...)
	enc = append(enc, core.Uint64Slot(v.TimestampNs)...)
	enc = append(enc, core.Uint128Slot(v.ValueAggregate)...)
	return keccak(enc)
}

// AggregateReceipts folds a batch of receipts and an optional previous
// voucher into a new unsigned voucher. The value aggregate is computed with
// checked u128 arithmetic and the timestamp is the watermark over all inputs.
// The fold is independent of receipt ordering.
func AggregateReceipts(allocationID common.Address, receipts []*SignedReceipt, previous *SignedRAV) (ReceiptAggregateVoucher, error) {
	var (
		timestampMax   uint64
		valueAggregate core.U128
		err            error
	)
	if previous != nil {
		timestampMax = previous.Message.TimestampNs
		valueAggregate = previous.Message.ValueAggregate
	}
	for _, receipt := range receipts {
		valueAggregate, err = valueAggregate.CheckedAdd(receipt.Message.Value)
		if err != nil {
			return ReceiptAggregateVoucher{}, err
		}
		if receipt.Message.TimestampNs > timestampMax {
			timestampMax = receipt.Message.TimestampNs
		}
	}
	return ReceiptAggregateVoucher{
		AllocationID:   allocationID,
		TimestampNs:    timestampMax,
		ValueAggregate: valueAggregate,
	}, nil
}
