package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/ethereum/go-ethereum/common"

	"tap-aggregator/aggregator"
	"tap-aggregator/core"
	"tap-aggregator/grpcapi"
	"tap-aggregator/grpcapi/tapv1"
	"tap-aggregator/metrics"
	"tap-aggregator/server"
	"tap-aggregator/shared"
)

func main() {
	// Optional .env bootstrap; flags and environment take precedence.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "tap-aggregator",
		Usage: "stateless service that aggregates signed micropayment receipts into redeemable vouchers",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "private-key",
				Usage:    "0x-hex secp256k1 private key used to sign produced vouchers",
				EnvVars:  []string{"TAP_PRIVATE_KEY"},
				Required: true,
			},
			&cli.IntFlag{
				Name:    "port",
				Usage:   "JSON-RPC listen port",
				Value:   8080,
				EnvVars: []string{"TAP_PORT"},
			},
			&cli.IntFlag{
				Name:    "grpc-port",
				Usage:   "gRPC listen port",
				Value:   8081,
				EnvVars: []string{"TAP_GRPC_PORT"},
			},
			&cli.IntFlag{
				Name:    "metrics-port",
				Usage:   "Prometheus metrics port",
				Value:   5000,
				EnvVars: []string{"TAP_METRICS_PORT"},
			},
			&cli.Int64Flag{
				Name:    "max-request-body-size",
				Usage:   "maximum request body size in bytes",
				Value:   10 * 1024 * 1024,
				EnvVars: []string{"TAP_MAX_REQUEST_BODY_SIZE"},
			},
			&cli.Int64Flag{
				Name:    "max-response-body-size",
				Usage:   "maximum response body size in bytes",
				Value:   100 * 1024,
				EnvVars: []string{"TAP_MAX_RESPONSE_BODY_SIZE"},
			},
			&cli.IntFlag{
				Name:    "max-connections",
				Usage:   "maximum concurrent connections",
				Value:   32,
				EnvVars: []string{"TAP_MAX_CONNECTIONS"},
			},
			&cli.StringSliceFlag{
				Name:    "signers",
				Usage:   "comma-separated list of authorized signer addresses",
				EnvVars: []string{"TAP_SIGNERS"},
			},
			&cli.StringFlag{
				Name:    "domain-name",
				Usage:   "EIP-712 domain name for V1 receipts",
				Value:   "TAP",
				EnvVars: []string{"TAP_DOMAIN_NAME"},
			},
			&cli.StringFlag{
				Name:    "domain-version",
				Usage:   "EIP-712 domain version for V1 receipts",
				Value:   "1",
				EnvVars: []string{"TAP_DOMAIN_VERSION"},
			},
			&cli.Uint64Flag{
				Name:    "chain-id",
				Usage:   "EIP-712 domain chain id",
				Value:   1,
				EnvVars: []string{"TAP_CHAIN_ID"},
			},
			&cli.StringFlag{
				Name:    "verifying-contract",
				Usage:   "EIP-712 domain verifying contract address",
				Value:   "0x0000000000000000000000000000000000000000",
				EnvVars: []string{"TAP_VERIFYING_CONTRACT"},
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
	log, err := shared.NewLoggerFromEnv("tap-aggregator")
	if err != nil {
		return err
	}
	defer log.Sync()

	key, err := core.ParsePrivateKey(c.String("private-key"))
	if err != nil {
		return err
	}
	signers, err := core.SignerRegistryFromStrings(c.StringSlice("signers"))
	if err != nil {
		return err
	}
	if !common.IsHexAddress(c.String("verifying-contract")) {
		return fmt.Errorf("invalid verifying contract address %q", c.String("verifying-contract"))
	}
	verifyingContract := common.HexToAddress(c.String("verifying-contract"))
	chainID := c.Uint64("chain-id")

	domainV1 := core.V1Domain(chainID, verifyingContract)
	domainV1.Name = c.String("domain-name")
	domainV1.Version = c.String("domain-version")

	agg := aggregator.New(key, signers, domainV1, v2Domain(chainID, verifyingContract))
	defer agg.Stop()

	log.Info("starting aggregation service",
		zap.String("self_address", agg.SelfAddress().Hex()),
		zap.Int("authorized_signers", signers.Len()),
		zap.Uint64("chain_id", chainID),
		zap.String("verifying_contract", verifyingContract.Hex()))

	m := metrics.New()
	go func() {
		if err := m.Serve(c.Int("metrics-port")); err != nil && err != http.ErrServerClosed {
			log.Warn("metrics server stopped", zap.Error(err))
		}
	}()

	// JSON-RPC server.
	svc := server.NewTAPService(agg, log, m)
	handler := server.NewRPCHandler(svc, c.Int64("max-request-body-size"))
	rpcListener, err := server.Listen(c.Int("port"), c.Int("max-connections"))
	if err != nil {
		return err
	}
	httpSrv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := httpSrv.Serve(rpcListener); err != nil && err != http.ErrServerClosed {
			log.Error("JSON-RPC server stopped", zap.Error(err))
		}
	}()
	log.Info("JSON-RPC server listening", zap.Int("port", c.Int("port")))

	// gRPC server.
	grpcSrv := grpc.NewServer(
		grpc.ForceServerCodec(grpcapi.Codec{}),
		grpc.MaxRecvMsgSize(int(c.Int64("max-request-body-size"))),
		grpc.MaxSendMsgSize(int(c.Int64("max-response-body-size"))),
	)
	tapv1.RegisterTapAggregatorServer(grpcSrv, grpcapi.NewV1Server(agg, log, m))
	registerGRPCV2(grpcSrv, agg, log, m)
	grpcListener, err := server.Listen(c.Int("grpc-port"), c.Int("max-connections"))
	if err != nil {
		return err
	}
	go func() {
		if err := grpcSrv.Serve(grpcListener); err != nil {
			log.Error("gRPC server stopped", zap.Error(err))
		}
	}()
	log.Info("gRPC server listening", zap.Int("port", c.Int("grpc-port")))

	// Wait for SIGINT or SIGTERM, then drain both servers.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("JSON-RPC shutdown", zap.Error(err))
	}
	grpcSrv.GracefulStop()
	return nil
}
