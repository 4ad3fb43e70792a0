// tap-client is a small demo client: it signs a couple of receipts with a
// throwaway key and asks a running aggregation service to fold them into a
// voucher.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/filecoin-project/go-jsonrpc"
	"github.com/urfave/cli/v2"

	"tap-aggregator/core"
	"tap-aggregator/graph"
	"tap-aggregator/server"
)

type tapClient struct {
	ApiVersions       func(ctx context.Context) (*server.Response[server.VersionsInfo], error)
	AggregateReceipts func(ctx context.Context, apiVersion string, receipts []*graph.SignedReceipt, previousRAV *graph.SignedRAV) (*server.Response[*graph.SignedRAV], error)
}

func main() {
	app := &cli.App{
		Name:  "tap-client",
		Usage: "demo client for the aggregation service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "endpoint",
				Usage:   "JSON-RPC endpoint of the aggregation service",
				Value:   "http://127.0.0.1:8080",
				EnvVars: []string{"TAP_ENDPOINT"},
			},
			&cli.StringFlag{
				Name:    "allocation",
				Usage:   "allocation address the demo receipts are issued against",
				Value:   "0xabababababababababababababababababababab",
				EnvVars: []string{"TAP_ALLOCATION"},
			},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	ctx := c.Context

	var client tapClient
	closer, err := jsonrpc.NewMergeClient(ctx, c.String("endpoint"), "TAP",
		[]interface{}{&client}, nil, jsonrpc.WithErrors(server.RPCErrors))
	if err != nil {
		return err
	}
	defer closer()

	versions, err := client.ApiVersions(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("supported API versions: %v\n", versions.Data.VersionsSupported)

	key, err := crypto.GenerateKey()
	if err != nil {
		return err
	}
	fmt.Printf("demo signer: %s (must be in the service's signer list)\n",
		core.AddressOf(key).Hex())

	allocation := common.HexToAddress(c.String("allocation"))
	domain := core.V1Domain(1, common.Address{})
	now := uint64(time.Now().UnixNano())

	receipts := make([]*graph.SignedReceipt, 0, 2)
	for i, value := range []uint64{34, 23} {
		signed, err := core.SignMessage(domain, graph.Receipt{
			AllocationID: allocation,
			TimestampNs:  now + uint64(i),
			Nonce:        uint64(i),
			Value:        core.NewU128(value),
		}, key)
		if err != nil {
			return err
		}
		receipts = append(receipts, signed)
	}

	resp, err := client.AggregateReceipts(ctx, string(server.APIVersionV0_0), receipts, nil)
	if err != nil {
		return err
	}
	rav := resp.Data
	fmt.Printf("voucher: allocation=%s timestamp_ns=%d value_aggregate=%s\n",
		rav.Message.AllocationID.Hex(), rav.Message.TimestampNs, rav.Message.ValueAggregate)
	for _, w := range resp.Warnings {
		fmt.Printf("warning %d: %s\n", w.Code, w.Message)
	}
	return nil
}
