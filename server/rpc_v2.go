//go:build !no_v2

package server

import (
	"context"

	"github.com/filecoin-project/go-jsonrpc"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"tap-aggregator/graph"
)

func init() {
	registerV2 = func(rpc *jsonrpc.RPCServer, _ *TAPService) {
		rpc.AliasMethod("aggregate_receipts_v2", "TAP.AggregateReceiptsV2")
	}
}

// AggregateReceiptsV2 is the collection-based counterpart of
// AggregateReceipts. A request is handled strictly within its declared
// version: receipts are decoded, hashed and verified only as V2 shapes and
// are never promoted from V1. Decoding ignores keys outside the V2 schema, so
// a V1 receipt sent here is not rejected at decoding; it fails later, at
// signature verification.
// Served as `aggregate_receipts_v2`.
func (s *TAPService) AggregateReceiptsV2(
	ctx context.Context,
	apiVersion string,
	receipts []*graph.SignedReceiptV2,
	previousRAV *graph.SignedRAVv2,
) (*Response[*graph.SignedRAVv2], error) {
	log := s.log.WithRequest(uuid.NewString())
	s.m.AggregationRequests.WithLabelValues("v2", "jsonrpc").Inc()
	s.m.BatchSize.WithLabelValues("v2").Observe(float64(len(receipts)))

	warnings, err := checkAPIVersion(apiVersion)
	if err != nil {
		s.m.AggregationFailures.WithLabelValues("v2", "version").Inc()
		return nil, err
	}

	rav, err := s.agg.AggregateV2(ctx, receipts, previousRAV)
	if err != nil {
		s.failed(log, "v2", len(receipts), err)
		return nil, wireError(err)
	}

	s.m.ReceiptsAggregated.WithLabelValues("v2").Add(float64(len(receipts)))
	log.Info("aggregated receipt batch",
		zap.String("version", "v2"),
		zap.Int("receipts", len(receipts)),
		zap.Uint64("timestamp_ns", rav.Message.TimestampNs),
		zap.String("value_aggregate", rav.Message.ValueAggregate.String()))
	return Warn(rav, warnings), nil
}
