//go:build !no_v2

package aggregator

import (
	"context"

	"tap-aggregator/core"
	"tap-aggregator/graph"
)

// DomainV2 returns the configured collection-based domain.
func (s *Service) DomainV2() core.Domain { return s.domainV2 }

// AggregateV2 is the collection-based counterpart of AggregateV1. All
// receipts and the previous voucher must agree on the full key tuple
// (collection, payer, data service, service provider).
func (s *Service) AggregateV2(ctx context.Context, receipts []*graph.SignedReceiptV2, previous *graph.SignedRAVv2) (*graph.SignedRAVv2, error) {
	if len(receipts) == 0 {
		return nil, core.Errorf(core.ErrSchema, "no receipts to aggregate")
	}
	if err := ctx.Err(); err != nil {
		return nil, core.Errorf(core.ErrCancelled, "request cancelled")
	}

	if _, err := verifyBatch(ctx, s.pool, s.domainV2, receipts, s.signers); err != nil {
		return nil, err
	}
	if previous != nil {
		if err := previous.Verify(s.domainV2, s.signers); err != nil {
			return nil, err
		}
	}

	key := receipts[0].Message.Key()
	for _, r := range receipts {
		if r.Message.Key() != key {
			return nil, core.Errorf(core.ErrCoherence,
				"receipt key tuple does not match batch collection %s", key.CollectionID.Hex())
		}
	}
	if previous != nil {
		if previous.Message.Key() != key {
			return nil, core.Errorf(core.ErrCoherence,
				"previous voucher key tuple does not match batch collection %s", key.CollectionID.Hex())
		}
		watermark := previous.Message.TimestampNs
		for _, r := range receipts {
			if r.Message.TimestampNs <= watermark {
				return nil, core.Errorf(core.ErrTimestamp,
					"receipt timestamp %d is not later than voucher watermark %d",
					r.Message.TimestampNs, watermark)
			}
		}
	}

	rav, err := graph.AggregateReceiptsV2(key, receipts, previous)
	if err != nil {
		return nil, err
	}
	return core.SignMessage(s.domainV2, rav, s.key)
}
