package server

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/filecoin-project/go-jsonrpc"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/net/netutil"

	"tap-aggregator/aggregator"
	"tap-aggregator/graph"
	"tap-aggregator/metrics"
	"tap-aggregator/shared"
)

// TAPService is the JSON-RPC handler. Each request runs as an independent
// closed session against the read-only aggregation engine.
type TAPService struct {
	agg *aggregator.Service
	log *shared.Logger
	m   *metrics.Metrics
}

// NewTAPService builds the handler.
func NewTAPService(agg *aggregator.Service, log *shared.Logger, m *metrics.Metrics) *TAPService {
	return &TAPService{agg: agg, log: log, m: m}
}

// ApiVersions reports the supported and deprecated API version sets.
// Served as `api_versions`.
func (s *TAPService) ApiVersions(ctx context.Context) (*Response[VersionsInfo], error) {
	return Ok(SupportedVersions()), nil
}

// AggregateReceipts verifies and folds a batch of V1 receipts, plus an
// optional previous voucher, into a new signed voucher.
// Served as `aggregate_receipts`.
func (s *TAPService) AggregateReceipts(
	ctx context.Context,
	apiVersion string,
	receipts []*graph.SignedReceipt,
	previousRAV *graph.SignedRAV,
) (*Response[*graph.SignedRAV], error) {
	log := s.log.WithRequest(uuid.NewString())
	s.m.AggregationRequests.WithLabelValues("v1", "jsonrpc").Inc()
	s.m.BatchSize.WithLabelValues("v1").Observe(float64(len(receipts)))

	warnings, err := checkAPIVersion(apiVersion)
	if err != nil {
		s.m.AggregationFailures.WithLabelValues("v1", "version").Inc()
		return nil, err
	}

	rav, err := s.agg.AggregateV1(ctx, receipts, previousRAV)
	if err != nil {
		s.failed(log, "v1", len(receipts), err)
		return nil, wireError(err)
	}

	s.m.ReceiptsAggregated.WithLabelValues("v1").Add(float64(len(receipts)))
	log.Info("aggregated receipt batch",
		zap.String("version", "v1"),
		zap.Int("receipts", len(receipts)),
		zap.Uint64("timestamp_ns", rav.Message.TimestampNs),
		zap.String("value_aggregate", rav.Message.ValueAggregate.String()))
	return Warn(rav, warnings), nil
}

func (s *TAPService) failed(log *zap.Logger, version string, batch int, err error) {
	s.m.AggregationFailures.WithLabelValues(version, errorKindLabel(err)).Inc()
	log.Warn("aggregation failed",
		zap.String("version", version),
		zap.Int("receipts", batch),
		zap.Error(err))
}

// registerV2 is installed by the V2 build; nil when V2 entry points are
// compiled out.
var registerV2 func(*jsonrpc.RPCServer, *TAPService)

// NewRPCHandler assembles the JSON-RPC server with the wire method aliases.
func NewRPCHandler(svc *TAPService, maxRequestBodySize int64) http.Handler {
	rpc := jsonrpc.NewServer(
		jsonrpc.WithServerErrors(RPCErrors),
		jsonrpc.WithMaxRequestSize(maxRequestBodySize),
	)
	rpc.Register("TAP", svc)
	rpc.AliasMethod("api_versions", "TAP.ApiVersions")
	rpc.AliasMethod("aggregate_receipts", "TAP.AggregateReceipts")
	if registerV2 != nil {
		registerV2(rpc, svc)
	}
	return rpc
}

// Listen opens the RPC listener, capped to maxConnections concurrent
// connections.
func Listen(port int, maxConnections int) (net.Listener, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, err
	}
	if maxConnections > 0 {
		ln = netutil.LimitListener(ln, maxConnections)
	}
	return ln, nil
}
