//go:build !no_v2

package tapv2

import (
	"github.com/ethereum/go-ethereum/common"

	"tap-aggregator/core"
	"tap-aggregator/graph"
)

func toAddress(name string, b []byte) (common.Address, error) {
	if len(b) != common.AddressLength {
		return common.Address{}, core.Errorf(core.ErrSchema, "%s must be %d bytes, got %d",
			name, common.AddressLength, len(b))
	}
	return common.BytesToAddress(b), nil
}

func toCollectionID(b []byte) (common.Hash, error) {
	if len(b) != common.HashLength {
		return common.Hash{}, core.Errorf(core.ErrSchema, "collection id must be %d bytes, got %d",
			common.HashLength, len(b))
	}
	return common.BytesToHash(b), nil
}

// ToSignedReceipt converts a wire receipt into the engine form.
func (m *SignedReceipt) ToSignedReceipt() (*graph.SignedReceiptV2, error) {
	if m == nil || m.Message == nil {
		return nil, core.Errorf(core.ErrSchema, "missing receipt message")
	}
	collection, err := toCollectionID(m.Message.CollectionId)
	if err != nil {
		return nil, err
	}
	payer, err := toAddress("payer", m.Message.Payer)
	if err != nil {
		return nil, err
	}
	dataService, err := toAddress("data service", m.Message.DataService)
	if err != nil {
		return nil, err
	}
	serviceProvider, err := toAddress("service provider", m.Message.ServiceProvider)
	if err != nil {
		return nil, err
	}
	if m.Message.Value == nil {
		return nil, core.Errorf(core.ErrSchema, "missing receipt value")
	}
	sig, err := core.SignatureFromBytes(m.Signature)
	if err != nil {
		return nil, err
	}
	return &graph.SignedReceiptV2{
		Message: graph.ReceiptV2{
			CollectionID:    collection,
			Payer:           payer,
			DataService:     dataService,
			ServiceProvider: serviceProvider,
			TimestampNs:     m.Message.TimestampNs,
			Nonce:           m.Message.Nonce,
			Value:           core.U128FromWords(m.Message.Value.High, m.Message.Value.Low),
		},
		Signature: sig,
	}, nil
}

// ToSignedRAV converts a wire voucher into the engine form.
func (m *SignedRav) ToSignedRAV() (*graph.SignedRAVv2, error) {
	if m == nil || m.Message == nil {
		return nil, core.Errorf(core.ErrSchema, "missing voucher message")
	}
	collection, err := toCollectionID(m.Message.CollectionId)
	if err != nil {
		return nil, err
	}
	payer, err := toAddress("payer", m.Message.Payer)
	if err != nil {
		return nil, err
	}
	dataService, err := toAddress("data service", m.Message.DataService)
	if err != nil {
		return nil, err
	}
	serviceProvider, err := toAddress("service provider", m.Message.ServiceProvider)
	if err != nil {
		return nil, err
	}
	if m.Message.ValueAggregate == nil {
		return nil, core.Errorf(core.ErrSchema, "missing value aggregate")
	}
	sig, err := core.SignatureFromBytes(m.Signature)
	if err != nil {
		return nil, err
	}
	return &graph.SignedRAVv2{
		Message: graph.RAVv2{
			CollectionID:    collection,
			Payer:           payer,
			DataService:     dataService,
			ServiceProvider: serviceProvider,
			TimestampNs:     m.Message.TimestampNs,
			ValueAggregate:  core.U128FromWords(m.Message.ValueAggregate.High, m.Message.ValueAggregate.Low),
			Metadata:        append([]byte(nil), m.Message.Metadata...),
		},
		Signature: sig,
	}, nil
}

// FromSignedReceipt converts an engine receipt into wire form.
func FromSignedReceipt(r *graph.SignedReceiptV2) *SignedReceipt {
	high, low := r.Message.Value.Words()
	return &SignedReceipt{
		Message: &Receipt{
			CollectionId:    r.Message.CollectionID.Bytes(),
			Payer:           r.Message.Payer.Bytes(),
			DataService:     r.Message.DataService.Bytes(),
			ServiceProvider: r.Message.ServiceProvider.Bytes(),
			TimestampNs:     r.Message.TimestampNs,
			Nonce:           r.Message.Nonce,
			Value:           &Uint128{High: high, Low: low},
		},
		Signature: r.Signature.Bytes(),
	}
}

// FromSignedRAV converts an engine voucher into wire form.
func FromSignedRAV(rav *graph.SignedRAVv2) *SignedRav {
	high, low := rav.Message.ValueAggregate.Words()
	return &SignedRav{
		Message: &ReceiptAggregateVoucher{
			CollectionId:    rav.Message.CollectionID.Bytes(),
			Payer:           rav.Message.Payer.Bytes(),
			DataService:     rav.Message.DataService.Bytes(),
			ServiceProvider: rav.Message.ServiceProvider.Bytes(),
			TimestampNs:     rav.Message.TimestampNs,
			ValueAggregate:  &Uint128{High: high, Low: low},
			Metadata:        append([]byte(nil), rav.Message.Metadata...),
		},
		Signature: rav.Signature.Bytes(),
	}
}
