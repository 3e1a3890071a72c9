package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"

	"github.com/erc7824/nitrolite/nearrpc/pkg/rpc"
)

const (
	defaultMetricsAddr = ":4242"
	metricsEndpoint    = "/metrics"
)

var (
	networkFlag = &cli.StringFlag{
		Name:  "network",
		Usage: "Network to query (mainnet, testnet, betanet, localnet or one from networks.yaml)",
	}
	rpcURLFlag = &cli.StringFlag{
		Name:  "rpc-url",
		Usage: "JSON-RPC endpoint, overrides the network URL",
	}
	archivalFlag = &cli.BoolFlag{
		Name:  "archival",
		Usage: "Use the archival endpoint of the network",
	}
	httpFlag = &cli.BoolFlag{
		Name:  "http",
		Usage: "Read the plain HTTP endpoint instead of calling JSON-RPC",
	}
	finalityFlag = &cli.StringFlag{
		Name:  "finality",
		Usage: "Block finality: optimistic, near-final or final",
		Value: string(rpc.FinalityFinal),
	}
	blockIDFlag = &cli.StringFlag{
		Name:  "block-id",
		Usage: "Block height or hash",
	}
	epochIDFlag = &cli.StringFlag{
		Name:  "epoch-id",
		Usage: "Epoch id",
	}
	receiptsFlag = &cli.BoolFlag{
		Name:  "receipts",
		Usage: "Include the receipts of the transaction",
	}
	intervalFlag = &cli.DurationFlag{
		Name:  "interval",
		Usage: "Status polling interval",
		Value: rpc.DefaultStatusInterval,
	}
	listenFlag = &cli.StringFlag{
		Name:  "listen",
		Usage: "Address of the Prometheus endpoint (default NEARRPC_METRICS_ADDR or " + defaultMetricsAddr + ")",
	}
)

func (a *app) commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:   "status",
			Usage:  "Print the node status",
			Flags:  []cli.Flag{httpFlag},
			Action: a.status,
		},
		{
			Name:   "health",
			Usage:  "Check that the node is healthy",
			Flags:  []cli.Flag{httpFlag},
			Action: a.health,
		},
		{
			Name:   "network-info",
			Usage:  "Print the node's peers",
			Flags:  []cli.Flag{httpFlag},
			Action: a.networkInfo,
		},
		{
			Name:   "gas-price",
			Usage:  "Print the gas price at a block, the latest by default",
			Flags:  []cli.Flag{blockIDFlag},
			Action: a.gasPrice,
		},
		{
			Name:   "block",
			Usage:  "Print a block",
			Flags:  []cli.Flag{finalityFlag, blockIDFlag},
			Action: a.block,
		},
		{
			Name:   "validators",
			Usage:  "Print the validators of an epoch, the latest by default",
			Flags:  []cli.Flag{epochIDFlag, blockIDFlag},
			Action: a.validators,
		},
		{
			Name:      "account",
			Usage:     "Print an account",
			ArgsUsage: "<account-id>",
			Flags:     []cli.Flag{finalityFlag, blockIDFlag},
			Action:    a.account,
		},
		{
			Name:      "tx",
			Usage:     "Print the outcome of a transaction",
			ArgsUsage: "<hash> <sender-account-id>",
			Flags:     []cli.Flag{receiptsFlag},
			Action:    a.tx,
		},
		{
			Name:   "metrics",
			Usage:  "Print the node's Prometheus metrics",
			Action: a.nodeMetrics,
		},
		{
			Name:   "watch",
			Usage:  "Poll the node status and export it as Prometheus metrics",
			Flags:  []cli.Flag{intervalFlag, listenFlag},
			Action: a.watch,
		},
	}
}

func (a *app) status(cliCtx *cli.Context) error {
	ctx := a.context(cliCtx)

	var (
		status rpc.StatusResponse
		err    error
	)
	if cliCtx.Bool(httpFlag.Name) {
		status, err = a.client.HTTP().Status(ctx)
	} else {
		status, err = a.client.Status(ctx)
	}
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}
	return a.print(cliCtx, status)
}

func (a *app) health(cliCtx *cli.Context) error {
	ctx := a.context(cliCtx)

	var err error
	if cliCtx.Bool(httpFlag.Name) {
		err = a.client.HTTP().Health(ctx)
	} else {
		err = a.client.Health(ctx)
	}
	if err != nil {
		return fmt.Errorf("health: %w", err)
	}
	return a.print(cliCtx, map[string]any{"healthy": true, "node": a.client.Addr()})
}

func (a *app) networkInfo(cliCtx *cli.Context) error {
	ctx := a.context(cliCtx)

	var (
		info rpc.NetworkInfoView
		err  error
	)
	if cliCtx.Bool(httpFlag.Name) {
		info, err = a.client.HTTP().NetworkInfo(ctx)
	} else {
		info, err = a.client.NetworkInfo(ctx)
	}
	if err != nil {
		return fmt.Errorf("network info: %w", err)
	}
	return a.print(cliCtx, info)
}

func (a *app) gasPrice(cliCtx *cli.Context) error {
	var blockID *rpc.BlockID
	if s := cliCtx.String(blockIDFlag.Name); s != "" {
		id := rpc.ParseBlockID(s)
		blockID = &id
	}

	price, err := a.client.GasPrice(a.context(cliCtx), blockID)
	if err != nil {
		return fmt.Errorf("gas price: %w", err)
	}
	return a.print(cliCtx, price)
}

func (a *app) block(cliCtx *cli.Context) error {
	block, err := a.client.Block(a.context(cliCtx), blockReference(cliCtx))
	if err != nil {
		return fmt.Errorf("block: %w", err)
	}
	return a.print(cliCtx, block)
}

func (a *app) validators(cliCtx *cli.Context) error {
	var ref rpc.EpochReference
	if s := cliCtx.String(epochIDFlag.Name); s != "" {
		ref.EpochID = rpc.CryptoHash(s)
	}
	if s := cliCtx.String(blockIDFlag.Name); s != "" {
		id := rpc.ParseBlockID(s)
		ref.BlockID = &id
	}

	info, err := a.client.Validators(a.context(cliCtx), ref)
	if err != nil {
		return fmt.Errorf("validators: %w", err)
	}
	return a.print(cliCtx, info)
}

func (a *app) account(cliCtx *cli.Context) error {
	if cliCtx.NArg() != 1 {
		return fmt.Errorf("usage: account %s", cliCtx.Command.ArgsUsage)
	}
	accountID := rpc.AccountID(cliCtx.Args().First())

	account, err := a.client.ViewAccount(a.context(cliCtx), accountID, blockReference(cliCtx))
	if err != nil {
		return fmt.Errorf("account %s: %w", accountID, err)
	}
	return a.print(cliCtx, account)
}

func (a *app) tx(cliCtx *cli.Context) error {
	if cliCtx.NArg() != 2 {
		return fmt.Errorf("usage: tx %s", cliCtx.Command.ArgsUsage)
	}
	info := rpc.TxByHash(rpc.CryptoHash(cliCtx.Args().Get(0)), rpc.AccountID(cliCtx.Args().Get(1)))
	ctx := a.context(cliCtx)

	if cliCtx.Bool(receiptsFlag.Name) {
		outcome, err := a.client.TxStatus(ctx, info)
		if err != nil {
			return fmt.Errorf("tx %s: %w", info.Hash, err)
		}
		return a.print(cliCtx, outcome)
	}

	outcome, err := a.client.Tx(ctx, info)
	if err != nil {
		return fmt.Errorf("tx %s: %w", info.Hash, err)
	}
	return a.print(cliCtx, outcome)
}

func (a *app) nodeMetrics(cliCtx *cli.Context) error {
	text, err := a.client.HTTP().Metrics(a.context(cliCtx))
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	_, err = io.WriteString(cliCtx.App.Writer, text)
	return err
}

// watch serves the client metrics and keeps the node gauges current until
// interrupted.
func (a *app) watch(cliCtx *cli.Context) error {
	interval := cliCtx.Duration(intervalFlag.Name)
	if interval <= 0 {
		return fmt.Errorf("usage: --%s must be positive, got %s", intervalFlag.Name, interval)
	}

	listenAddr := cliCtx.String(listenFlag.Name)
	if listenAddr == "" {
		listenAddr = a.conf.MetricsAddr
	}
	if listenAddr == "" {
		listenAddr = defaultMetricsAddr
	}

	ctx, stop := signal.NotifyContext(a.context(cliCtx), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metricsMux := http.NewServeMux()
	metricsMux.Handle(metricsEndpoint, promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{Registry: a.registry}))
	metricsServer := &http.Server{
		Addr:              listenAddr,
		Handler:           metricsMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("Prometheus metrics available", "listenAddr", listenAddr, "endpoint", metricsEndpoint)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	polled := make(chan struct{})
	go func() {
		defer close(polled)
		a.metrics.RecordNodeStatusPeriodically(ctx, a.client.Status, interval)
	}()

	var err error
	select {
	case <-ctx.Done():
	case err = <-serveErr:
		err = fmt.Errorf("metrics server failure: %w", err)
		stop()
	}
	<-polled

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if shutdownErr := metricsServer.Shutdown(shutdownCtx); shutdownErr != nil {
		a.logger.Error("failed to shut down metrics server", "error", shutdownErr)
	}
	return err
}

// blockReference reads --block-id, falling back to --finality.
func blockReference(cliCtx *cli.Context) rpc.BlockReference {
	if s := cliCtx.String(blockIDFlag.Name); s != "" {
		return rpc.AtBlock(rpc.ParseBlockID(s))
	}
	return rpc.AtFinality(rpc.Finality(cliCtx.String(finalityFlag.Name)))
}
