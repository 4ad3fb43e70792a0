//go:build !no_v2

package main

import (
	"github.com/ethereum/go-ethereum/common"
	"google.golang.org/grpc"

	"tap-aggregator/aggregator"
	"tap-aggregator/core"
	"tap-aggregator/grpcapi"
	"tap-aggregator/grpcapi/tapv2"
	"tap-aggregator/metrics"
	"tap-aggregator/shared"
)

func v2Domain(chainID uint64, verifyingContract common.Address) core.Domain {
	return core.V2Domain(chainID, verifyingContract)
}

func registerGRPCV2(s *grpc.Server, agg *aggregator.Service, log *shared.Logger, m *metrics.Metrics) {
	tapv2.RegisterTapAggregatorServer(s, grpcapi.NewV2Server(agg, log, m))
}
