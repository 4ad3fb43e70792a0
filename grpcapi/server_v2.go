//go:build !no_v2

package grpcapi

import (
	"context"

	"tap-aggregator/aggregator"
	"tap-aggregator/core"
	"tap-aggregator/graph"
	"tap-aggregator/grpcapi/tapv2"
	"tap-aggregator/metrics"
	"tap-aggregator/shared"
)

// V2Server serves tap_aggregator.v2.TapAggregator against the aggregation
// engine.
type V2Server struct {
	agg *aggregator.Service
	log *shared.Logger
	m   *metrics.Metrics
}

// NewV2Server builds the v2 service implementation.
func NewV2Server(agg *aggregator.Service, log *shared.Logger, m *metrics.Metrics) *V2Server {
	return &V2Server{agg: agg, log: log, m: m}
}

// AggregateReceipts implements tapv2.TapAggregatorServer.
func (s *V2Server) AggregateReceipts(ctx context.Context, req *tapv2.RavRequest) (*tapv2.RavResponse, error) {
	s.m.AggregationRequests.WithLabelValues("v2", "grpc").Inc()
	s.m.BatchSize.WithLabelValues("v2").Observe(float64(len(req.Receipts)))

	converted, previous, err := convertV2Request(req)
	if err != nil {
		s.m.AggregationFailures.WithLabelValues("v2", "schema").Inc()
		return nil, statusFromError(err)
	}

	rav, err := s.agg.AggregateV2(ctx, converted, previous)
	if err != nil {
		s.m.AggregationFailures.WithLabelValues("v2", core.KindOf(err).String()).Inc()
		return nil, statusFromError(err)
	}
	s.m.ReceiptsAggregated.WithLabelValues("v2").Add(float64(len(converted)))
	return &tapv2.RavResponse{Rav: tapv2.FromSignedRAV(rav)}, nil
}

func convertV2Request(req *tapv2.RavRequest) ([]*graph.SignedReceiptV2, *graph.SignedRAVv2, error) {
	receipts := make([]*graph.SignedReceiptV2, 0, len(req.Receipts))
	for _, r := range req.Receipts {
		converted, err := r.ToSignedReceipt()
		if err != nil {
			return nil, nil, err
		}
		receipts = append(receipts, converted)
	}
	var previous *graph.SignedRAVv2
	if req.PreviousRav != nil {
		converted, err := req.PreviousRav.ToSignedRAV()
		if err != nil {
			return nil, nil, err
		}
		previous = converted
	}
	return receipts, previous, nil
}
