package grpcapi

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"tap-aggregator/aggregator"
	"tap-aggregator/core"
	"tap-aggregator/graph"
	"tap-aggregator/grpcapi/tapv1"
	"tap-aggregator/metrics"
	"tap-aggregator/shared"
)

// V1Server serves tap_aggregator.v1.TapAggregator against the aggregation
// engine.
type V1Server struct {
	agg *aggregator.Service
	log *shared.Logger
	m   *metrics.Metrics
}

// NewV1Server builds the v1 service implementation.
func NewV1Server(agg *aggregator.Service, log *shared.Logger, m *metrics.Metrics) *V1Server {
	return &V1Server{agg: agg, log: log, m: m}
}

// AggregateReceipts implements tapv1.TapAggregatorServer.
func (s *V1Server) AggregateReceipts(ctx context.Context, req *tapv1.RavRequest) (*tapv1.RavResponse, error) {
	s.m.AggregationRequests.WithLabelValues("v1", "grpc").Inc()
	s.m.BatchSize.WithLabelValues("v1").Observe(float64(len(req.Receipts)))

	converted, previous, err := convertV1Request(req)
	if err != nil {
		s.m.AggregationFailures.WithLabelValues("v1", "schema").Inc()
		return nil, statusFromError(err)
	}

	rav, err := s.agg.AggregateV1(ctx, converted, previous)
	if err != nil {
		s.m.AggregationFailures.WithLabelValues("v1", core.KindOf(err).String()).Inc()
		return nil, statusFromError(err)
	}
	s.m.ReceiptsAggregated.WithLabelValues("v1").Add(float64(len(converted)))
	return &tapv1.RavResponse{Rav: tapv1.FromSignedRAV(rav)}, nil
}

func convertV1Request(req *tapv1.RavRequest) ([]*graph.SignedReceipt, *graph.SignedRAV, error) {
	receipts := make([]*graph.SignedReceipt, 0, len(req.Receipts))
	for _, r := range req.Receipts {
		converted, err := r.ToSignedReceipt()
		if err != nil {
			return nil, nil, err
		}
		receipts = append(receipts, converted)
	}
	var previous *graph.SignedRAV
	if req.PreviousRav != nil {
		converted, err := req.PreviousRav.ToSignedRAV()
		if err != nil {
			return nil, nil, err
		}
		previous = converted
	}
	return receipts, previous, nil
}

// statusFromError maps engine errors onto gRPC status codes.
func statusFromError(err error) error {
	switch core.KindOf(err) {
	case core.ErrCancelled:
		return status.Error(codes.Canceled, err.Error())
	case core.ErrSchema, core.ErrSignature, core.ErrAuthorization, core.ErrUniqueness,
		core.ErrCoherence, core.ErrTimestamp, core.ErrOverflow, core.ErrVersion:
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, "aggregation failed")
	}
}
