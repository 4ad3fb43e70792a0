//go:build !no_v2

package graph

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"tap-aggregator/core"
)

// ReceiptV2 is a collection-based receipt. The JSON keys are snake_case while
// the V2 voucher keys are camelCase; the inconsistency is part of the wire
// format and must not be normalized.
type ReceiptV2 struct {
	CollectionID    common.Hash    `json:"collection_id"`
	Payer           common.Address `json:"payer"`
	DataService     common.Address `json:"data_service"`
	ServiceProvider common.Address `json:"service_provider"`
	TimestampNs     uint64         `json:"timestamp_ns"`
	Nonce           uint64         `json:"nonce"`
	Value           core.U128      `json:"value"`
}

// RAVv2 is the collection-based aggregate voucher.
type RAVv2 struct {
	CollectionID    common.Hash    `json:"collectionId"`
	Payer           common.Address `json:"payer"`
	DataService     common.Address `json:"dataService"`
	ServiceProvider common.Address `json:"serviceProvider"`
	TimestampNs     uint64         `json:"timestampNs"`
	ValueAggregate  core.U128      `json:"valueAggregate"`
	Metadata        hexutil.Bytes  `json:"metadata"`
}

// SignedReceiptV2 is a V2 receipt bound to its sender's signature.
type SignedReceiptV2 = core.SignedMessage[ReceiptV2]

// SignedRAVv2 is a V2 voucher bound to the aggregator's signature.
type SignedRAVv2 = core.SignedMessage[RAVv2]

var (
	receiptV2TypeHash = core.TypeHash(
		"Receipt(bytes32 collection_id,address payer,address data_service,address service_provider,uint64 timestamp_ns,uint64 nonce,uint128 value)")
	ravV2TypeHash = core.TypeHash(
		"ReceiptAggregateVoucher(bytes32 collectionId,address payer,address dataService,address serviceProvider,uint64 timestampNs,uint128 valueAggregate,bytes metadata)")
)

// StructHash implements core.Message.
func (r ReceiptV2) StructHash() common.Hash {
	enc := make([]byte, 0, 8*32)
	enc = append(enc, receiptV2TypeHash.Bytes()...)
	enc = append(enc, core.Bytes32Slot(r.CollectionID)...)
	enc = append(enc, core.AddressSlot(r.Payer)...)
	enc = append(enc, core.AddressSlot(r.DataService)...)
	enc = append(enc, core.AddressSlot(r.ServiceProvider)...)
	enc = append(enc, core.Uint64Slot(r.TimestampNs)...)
	enc = append(enc, core.Uint64Slot(r.Nonce)...)
	enc = append(enc, core.Uint128Slot(r.Value)...)
	return keccak(enc)
}

// StructHash implements core.Message.
func (v RAVv2) StructHash() common.Hash {
	enc := make([]byte, 0, 8*32)
	enc = append(enc, ravV2TypeHash.Bytes()...)
	enc = append(enc, core.Bytes32Slot(v.CollectionID)...)
	enc = append(enc, core.AddressSlot(v.Payer)...)
	enc = append(enc, core.AddressSlot(v.DataService)...)
	enc = append(enc, core.AddressSlot(v.ServiceProvider)...)
	enc = append(enc, core.Uint64Slot(v.TimestampNs)...)
	enc = append(enc, core.Uint128Slot(v.ValueAggregate)...)
	enc = append(enc, core.BytesSlot(v.Metadata)...)
	return keccak(enc)
}

// KeyTuple is the identity all receipts and the previous voucher in one V2
// aggregation must agree on.
type KeyTuple struct {
	CollectionID    common.Hash
	Payer           common.Address
	DataService     common.Address
	ServiceProvider common.Address
}

// Key returns the receipt's key tuple.
func (r ReceiptV2) Key() KeyTuple {
	return KeyTuple{r.CollectionID, r.Payer, r.DataService, r.ServiceProvider}
}

// Key returns the voucher's key tuple.
func (v RAVv2) Key() KeyTuple {
	return KeyTuple{v.CollectionID, v.Payer, v.DataService, v.ServiceProvider}
}

// AggregateReceiptsV2 folds V2 receipts and an optional previous voucher into
// a new unsigned voucher under the same rules as the V1 fold. Metadata is
// always emitted empty; no pass-through policy is synthesized.
func AggregateReceiptsV2(key KeyTuple, receipts []*SignedReceiptV2, previous *SignedRAVv2) (RAVv2, error) {
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
			return RAVv2{}, err
		}
		if receipt.Message.TimestampNs > timestampMax {
			timestampMax = receipt.Message.TimestampNs
		}
	}
	return RAVv2{
		CollectionID:    key.CollectionID,
		Payer:           key.Payer,
		DataService:     key.DataService,
		ServiceProvider: key.ServiceProvider,
		TimestampNs:     timestampMax,
		ValueAggregate:  valueAggregate,
		Metadata:        hexutil.Bytes{},
	}, nil
}
