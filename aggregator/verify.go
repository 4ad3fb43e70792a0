package aggregator

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gammazero/workerpool"

	"tap-aggregator/core"
)

// verified is the per-receipt result of a successful signature check.
type verified struct {
	digest common.Hash
	signer common.Address
}

// verifyBatch recovers and authorizes the signer of every envelope, fanning
// the CPU-bound secp256k1 recoveries out across the worker pool. The batch is
// split into one shard per pool worker; each shard checks the cancel signal
// between receipts and the whole call aborts on the first failure. After all
// workers join, the signed digests are checked for uniqueness: a collision
// means two envelopes carry identical signed content.
func verifyBatch[M core.Message](
	ctx context.Context,
	pool *workerpool.WorkerPool,
	domain core.Domain,
	envelopes []*core.SignedMessage[M],
	signers *core.SignerRegistry,
) ([]verified, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]verified, len(envelopes))
	shards := shardIndexes(len(envelopes), pool.Size())

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for _, shard := range shards {
		shard := shard
		wg.Add(1)
		pool.Submit(func() {
			defer wg.Done()
			for _, i := range shard {
				if ctx.Err() != nil {
					fail(core.Errorf(core.ErrCancelled, "verification cancelled"))
					return
				}
				env := envelopes[i]
				signer, err := env.RecoverSigner(domain)
				if err != nil {
					fail(err)
					return
				}
				if !signers.Contains(signer) {
					fail(core.Errorf(core.ErrAuthorization, "signer %s is not authorized", signer.Hex()))
					return
				}
				results[i] = verified{digest: env.Digest(domain), signer: signer}
			}
		})
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	seen := make(map[common.Hash]struct{}, len(results))
	for _, v := range results {
		if _, dup := seen[v.digest]; dup {
			return nil, core.Errorf(core.ErrUniqueness, "duplicate signed digest %s in batch", v.digest.Hex())
		}
		seen[v.digest] = struct{}{}
	}
	return results, nil
}

// shardIndexes splits [0, n) into at most workers contiguous chunks.
func shardIndexes(n, workers int) [][]int {
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}
	shards := make([][]int, 0, workers)
	for w := 0; w < workers; w++ {
		lo := w * n / workers
		hi := (w + 1) * n / workers
		if lo == hi {
			continue
		}
		shard := make([]int, 0, hi-lo)
		for i := lo; i < hi; i++ {
			shard = append(shard, i)
		}
		shards = append(shards, shard)
	}
	return shards
}
