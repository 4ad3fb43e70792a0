package aggregator

import (
	"context"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"tap-aggregator/core"
	"tap-aggregator/graph"
)

var testAllocation = common.HexToAddress("0xabababababababababababababababababababab")

func testService(t *testing.T) *Service {
	t.Helper()
	key, err := core.ParsePrivateKey("0x0000000000000000000000000000000000000000000000000000000000000001")
	if err != nil {
		t.Fatalf("Failed to parse key: %v", err)
	}
	contract := common.HexToAddress("0x0000000000000000000000000000000000000001")
	return New(key, core.NewSignerRegistry(),
		core.V1Domain(1, contract), core.V2Domain(1, contract))
}

func sign(t *testing.T, s *Service, r graph.Receipt) *graph.SignedReceipt {
	t.Helper()
	signed, err := core.SignMessage(s.DomainV1(), r, s.key)
	if err != nil {
		t.Fatalf("Failed to sign receipt: %v", err)
	}
	return signed
}

func sampleReceipts(t *testing.T, s *Service) []*graph.SignedReceipt {
	return []*graph.SignedReceipt{
		sign(t, s, graph.Receipt{
			AllocationID: testAllocation,
			TimestampNs:  1685670449225087255,
			Nonce:        11835827017881841442,
			Value:        core.NewU128(34),
		}),
		sign(t, s, graph.Receipt{
			AllocationID: testAllocation,
			TimestampNs:  1685670449225830106,
			Nonce:        17711980309995246801,
			Value:        core.NewU128(23),
		}),
	}
}

func TestAggregateV1(t *testing.T) {
	s := testService(t)
	defer s.Stop()
	ctx := context.Background()

	t.Run("Two Receipts No Previous Voucher", func(t *testing.T) {
		rav, err := s.AggregateV1(ctx, sampleReceipts(t, s), nil)
		if err != nil {
			t.Fatalf("AggregateV1 failed: %v", err)
		}
		if rav.Message.AllocationID != testAllocation {
			t.Errorf("Unexpected allocation %s", rav.Message.AllocationID.Hex())
		}
		if rav.Message.TimestampNs != 1685670449225830106 {
			t.Errorf("Expected watermark 1685670449225830106, got %d", rav.Message.TimestampNs)
		}
		if rav.Message.ValueAggregate.String() != "57" {
			t.Errorf("Expected aggregate 57, got %s", rav.Message.ValueAggregate)
		}
		if signer, err := rav.RecoverSigner(s.DomainV1()); err != nil || signer != s.SelfAddress() {
			t.Errorf("Voucher must be signed by the service key: %v", err)
		}
	})

	t.Run("Two Receipts With Previous Voucher", func(t *testing.T) {
		previous, err := core.SignMessage(s.DomainV1(), graph.ReceiptAggregateVoucher{
			AllocationID:   testAllocation,
			TimestampNs:    1685670449224324338,
			ValueAggregate: core.NewU128(101),
		}, s.key)
		if err != nil {
			t.Fatalf("Failed to sign previous voucher: %v", err)
		}
		rav, err := s.AggregateV1(ctx, sampleReceipts(t, s), previous)
		if err != nil {
			t.Fatalf("AggregateV1 failed: %v", err)
		}
		if rav.Message.TimestampNs != 1685670449225830106 {
			t.Errorf("Expected watermark 1685670449225830106, got %d", rav.Message.TimestampNs)
		}
		if rav.Message.ValueAggregate.String() != "158" {
			t.Errorf("Expected aggregate 158, got %s", rav.Message.ValueAggregate)
		}
	})

	t.Run("Stale Receipt", func(t *testing.T) {
		previous, _ := core.SignMessage(s.DomainV1(), graph.ReceiptAggregateVoucher{
			AllocationID:   testAllocation,
			TimestampNs:    1000,
			ValueAggregate: core.NewU128(1),
		}, s.key)
		stale := sign(t, s, graph.Receipt{
			AllocationID: testAllocation,
			TimestampNs:  999,
			Nonce:        1,
			Value:        core.NewU128(1),
		})
		if _, err := s.AggregateV1(ctx, []*graph.SignedReceipt{stale}, previous); core.KindOf(err) != core.ErrTimestamp {
			t.Errorf("Expected timestamp error, got %v", err)
		}
	})

	t.Run("Receipt At Watermark Is Stale", func(t *testing.T) {
		previous, _ := core.SignMessage(s.DomainV1(), graph.ReceiptAggregateVoucher{
			AllocationID:   testAllocation,
			TimestampNs:    1000,
			ValueAggregate: core.NewU128(1),
		}, s.key)
		equal := sign(t, s, graph.Receipt{
			AllocationID: testAllocation,
			TimestampNs:  1000,
			Nonce:        1,
			Value:        core.NewU128(1),
		})
		if _, err := s.AggregateV1(ctx, []*graph.SignedReceipt{equal}, previous); core.KindOf(err) != core.ErrTimestamp {
			t.Errorf("Strict inequality required, got %v", err)
		}
	})

	t.Run("Overflow", func(t *testing.T) {
		max, _ := core.U128FromString("340282366920938463463374607431768211455")
		previous, _ := core.SignMessage(s.DomainV1(), graph.ReceiptAggregateVoucher{
			AllocationID:   testAllocation,
			TimestampNs:    1,
			ValueAggregate: max,
		}, s.key)
		one := sign(t, s, graph.Receipt{
			AllocationID: testAllocation,
			TimestampNs:  2,
			Nonce:        1,
			Value:        core.NewU128(1),
		})
		if _, err := s.AggregateV1(ctx, []*graph.SignedReceipt{one}, previous); core.KindOf(err) != core.ErrOverflow {
			t.Errorf("Expected overflow error, got %v", err)
		}
	})

	t.Run("Unauthorized Signer", func(t *testing.T) {
		stranger, err := crypto.GenerateKey()
		if err != nil {
			t.Fatalf("Failed to generate key: %v", err)
		}
		foreign, err := core.SignMessage(s.DomainV1(), graph.Receipt{
			AllocationID: testAllocation,
			TimestampNs:  10,
			Nonce:        1,
			Value:        core.NewU128(1),
		}, stranger)
		if err != nil {
			t.Fatalf("Failed to sign receipt: %v", err)
		}
		if _, err := s.AggregateV1(ctx, []*graph.SignedReceipt{foreign}, nil); core.KindOf(err) != core.ErrAuthorization {
			t.Errorf("Expected authorization error, got %v", err)
		}
	})

	t.Run("Duplicate Digest", func(t *testing.T) {
		receipt := sign(t, s, graph.Receipt{
			AllocationID: testAllocation,
			TimestampNs:  10,
			Nonce:        1,
			Value:        core.NewU128(1),
		})
		if _, err := s.AggregateV1(ctx, []*graph.SignedReceipt{receipt, receipt}, nil); core.KindOf(err) != core.ErrUniqueness {
			t.Errorf("Expected uniqueness error, got %v", err)
		}
	})

	t.Run("Mixed Allocations", func(t *testing.T) {
		other := sign(t, s, graph.Receipt{
			AllocationID: common.HexToAddress("0xdeaddeaddeaddeaddeaddeaddeaddeaddeaddead"),
			TimestampNs:  20,
			Nonce:        2,
			Value:        core.NewU128(1),
		})
		batch := append(sampleReceipts(t, s), other)
		if _, err := s.AggregateV1(ctx, batch, nil); core.KindOf(err) != core.ErrCoherence {
			t.Errorf("Expected coherence error, got %v", err)
		}
	})

	t.Run("Previous Voucher From Stranger", func(t *testing.T) {
		stranger, _ := crypto.GenerateKey()
		previous, err := core.SignMessage(s.DomainV1(), graph.ReceiptAggregateVoucher{
			AllocationID:   testAllocation,
			TimestampNs:    1,
			ValueAggregate: core.NewU128(1),
		}, stranger)
		if err != nil {
			t.Fatalf("Failed to sign voucher: %v", err)
		}
		if _, err := s.AggregateV1(ctx, sampleReceipts(t, s), previous); core.KindOf(err) != core.ErrAuthorization {
			t.Errorf("Expected authorization error, got %v", err)
		}
	})

	t.Run("Empty Batch", func(t *testing.T) {
		if _, err := s.AggregateV1(ctx, nil, nil); core.KindOf(err) != core.ErrSchema {
			t.Errorf("Expected schema error, got %v", err)
		}
	})

	t.Run("Cancelled Context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := s.AggregateV1(cancelled, sampleReceipts(t, s), nil); core.KindOf(err) != core.ErrCancelled {
			t.Errorf("Expected cancelled error, got %v", err)
		}
	})
}

func TestAggregateV1Properties(t *testing.T) {
	s := testService(t)
	defer s.Stop()
	ctx := context.Background()

	batch := func(lo, n int) []*graph.SignedReceipt {
		receipts := make([]*graph.SignedReceipt, 0, n)
		for i := 0; i < n; i++ {
			receipts = append(receipts, sign(t, s, graph.Receipt{
				AllocationID: testAllocation,
				TimestampNs:  uint64(lo + i),
				Nonce:        uint64(lo + i),
				Value:        core.NewU128(uint64(i + 1)),
			}))
		}
		return receipts
	}

	t.Run("Permutation Invariance", func(t *testing.T) {
		receipts := batch(100, 32)
		forward, err := s.AggregateV1(ctx, receipts, nil)
		if err != nil {
			t.Fatalf("AggregateV1 failed: %v", err)
		}
		reversed := make([]*graph.SignedReceipt, len(receipts))
		for i, r := range receipts {
			reversed[len(receipts)-1-i] = r
		}
		backward, err := s.AggregateV1(ctx, reversed, nil)
		if err != nil {
			t.Fatalf("AggregateV1 failed: %v", err)
		}
		if forward.Message != backward.Message {
			t.Error("Fold must be permutation invariant")
		}
	})

	t.Run("Chained Vouchers Associate", func(t *testing.T) {
		b1 := batch(1000, 8)
		b2 := batch(2000, 8)

		whole, err := s.AggregateV1(ctx, append(append([]*graph.SignedReceipt{}, b1...), b2...), nil)
		if err != nil {
			t.Fatalf("AggregateV1 failed: %v", err)
		}
		first, err := s.AggregateV1(ctx, b1, nil)
		if err != nil {
			t.Fatalf("AggregateV1 failed: %v", err)
		}
		chained, err := s.AggregateV1(ctx, b2, first)
		if err != nil {
			t.Fatalf("AggregateV1 failed: %v", err)
		}
		if whole.Message != chained.Message {
			t.Errorf("Expected %+v, got %+v", whole.Message, chained.Message)
		}
	})

	t.Run("Large Batch Exercises All Shards", func(t *testing.T) {
		receipts := batch(10000, 257)
		rav, err := s.AggregateV1(ctx, receipts, nil)
		if err != nil {
			t.Fatalf("AggregateV1 failed: %v", err)
		}
		// Sum of 1..257.
		expected := fmt.Sprintf("%d", 257*258/2)
		if rav.Message.ValueAggregate.String() != expected {
			t.Errorf("Expected aggregate %s, got %s", expected, rav.Message.ValueAggregate)
		}
	})
}
