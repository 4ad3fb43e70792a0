// Package aggregator implements the receipt aggregation engine: parallel
// signature verification over a receipt batch, the invariant-checked fold of
// receipts and an optional previous voucher into a new voucher, and signing
// of the produced voucher with the service key.
package aggregator

import (
	"context"
	"crypto/ecdsa"
	"runtime"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gammazero/workerpool"

	"tap-aggregator/core"
	"tap-aggregator/graph"
)

// Service holds the process-wide read-only state of the aggregation engine:
// the service key, the signer registry, the configured domains, and the
// verification worker pool. A Service is safe for concurrent use; each
// request is a closed session with no state left behind.
type Service struct {
	key      *ecdsa.PrivateKey
	self     common.Address
	signers  *core.SignerRegistry
	domainV1 core.Domain
	domainV2 core.Domain
	pool     *workerpool.WorkerPool
}

// New builds a Service. The service's own address is always inserted into the
// signer registry so that previous vouchers the service itself produced
// verify. The pool is sized to the available cores.
func New(key *ecdsa.PrivateKey, signers *core.SignerRegistry, domainV1, domainV2 core.Domain) *Service {
	self := core.AddressOf(key)
	signers.Add(self)
	return &Service{
		key:      key,
		self:     self,
		signers:  signers,
		domainV1: domainV1,
		domainV2: domainV2,
		pool:     workerpool.New(runtime.NumCPU()),
	}
}

// SelfAddress returns the address derived from the service key.
func (s *Service) SelfAddress() common.Address { return s.self }

// Signers returns the authorized signer registry.
func (s *Service) Signers() *core.SignerRegistry { return s.signers }

// DomainV1 returns the configured allocation-based domain.
func (s *Service) DomainV1() core.Domain { return s.domainV1 }

// Stop drains the worker pool. Called once at shutdown.
func (s *Service) Stop() { s.pool.StopWait() }

// AggregateV1 verifies a batch of allocation-based receipts and folds them,
// together with the optional previous voucher, into a new signed voucher.
// Any invalid input aborts the whole request; no partial result is emitted.
func (s *Service) AggregateV1(ctx context.Context, receipts []*graph.SignedReceipt, previous *graph.SignedRAV) (*graph.SignedRAV, error) {
	if len(receipts) == 0 {
		return nil, core.Errorf(core.ErrSchema, "no receipts to aggregate")
	}
	if err := ctx.Err(); err != nil {
		return nil, core.Errorf(core.ErrCancelled, "request cancelled")
	}

	if _, err := verifyBatch(ctx, s.pool, s.domainV1, receipts, s.signers); err != nil {
		return nil, err
	}
	if previous != nil {
		if err := previous.Verify(s.domainV1, s.signers); err != nil {
			return nil, err
		}
	}

	allocationID := receipts[0].Message.AllocationID
	for _, r := range receipts {
		if r.Message.AllocationID != allocationID {
			return nil, core.Errorf(core.ErrCoherence,
				"allocation id %s does not match batch allocation %s",
				r.Message.AllocationID.Hex(), allocationID.Hex())
		}
	}
	if previous != nil {
		if previous.Message.AllocationID != allocationID {
			return nil, core.Errorf(core.ErrCoherence,
				"previous voucher allocation %s does not match batch allocation %s",
				previous.Message.AllocationID.Hex(), allocationID.Hex())
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

	rav, err := graph.AggregateReceipts(allocationID, receipts, previous)
	if err != nil {
		return nil, err
	}
	return core.SignMessage(s.domainV1, rav, s.key)
}
