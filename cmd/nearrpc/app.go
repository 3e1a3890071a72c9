package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"
	"golang.org/x/time/rate"

	"github.com/erc7824/nitrolite/nearrpc/pkg/log"
	"github.com/erc7824/nitrolite/nearrpc/pkg/rpc"
	"github.com/erc7824/nitrolite/nearrpc/pkg/sign"
)

// nodeClient is the part of rpc.Client the commands use. Authenticated and
// unauthenticated clients both implement it.
type nodeClient interface {
	Addr() string
	Status(ctx context.Context) (rpc.StatusResponse, error)
	Health(ctx context.Context) error
	NetworkInfo(ctx context.Context) (rpc.NetworkInfoView, error)
	GasPrice(ctx context.Context, blockID *rpc.BlockID) (rpc.GasPriceView, error)
	Block(ctx context.Context, ref rpc.BlockReference) (rpc.BlockView, error)
	Validators(ctx context.Context, ref rpc.EpochReference) (rpc.EpochValidatorInfo, error)
	ViewAccount(ctx context.Context, accountID rpc.AccountID, ref rpc.BlockReference) (rpc.AccountView, error)
	Tx(ctx context.Context, info rpc.TransactionInfo) (rpc.FinalExecutionOutcome, error)
	TxStatus(ctx context.Context, info rpc.TransactionInfo) (rpc.FinalExecutionOutcomeWithReceipts, error)
	HTTP() rpc.HTTPClient
}

var (
	_ nodeClient = rpc.Client[rpc.Unauthenticated]{}
	_ nodeClient = rpc.Client[rpc.Authenticated]{}
)

type app struct {
	logger   log.Logger
	conf     *Config
	registry *prometheus.Registry
	metrics  *rpc.Metrics
	client   nodeClient
}

func newApp(logger log.Logger) *cli.App {
	return (&app{logger: logger}).cli()
}

func (a *app) cli() *cli.App {
	return &cli.App{
		Name:     "nearrpc",
		Usage:    "Query a NEAR node over JSON-RPC",
		Version:  version,
		Flags:    []cli.Flag{networkFlag, rpcURLFlag, archivalFlag},
		Before:   a.setup,
		Commands: a.commands(),
	}
}

// setup loads the configuration, applies the global flags over it and
// connects to the node.
func (a *app) setup(cliCtx *cli.Context) error {
	conf, err := LoadConfig(a.logger)
	if err != nil {
		return err
	}

	if cliCtx.IsSet(networkFlag.Name) {
		conf.Network = cliCtx.String(networkFlag.Name)
	}
	if cliCtx.IsSet(rpcURLFlag.Name) {
		conf.RPCURL = cliCtx.String(rpcURLFlag.Name)
	}
	if cliCtx.IsSet(archivalFlag.Name) {
		conf.Archival = cliCtx.Bool(archivalFlag.Name)
	}
	if err := conf.Validate(); err != nil {
		return err
	}

	a.conf = conf
	a.logger = log.NewZapLogger(conf.Log).WithName("nearrpc")
	return a.connect()
}

func (a *app) connect() error {
	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(collectors.NewGoCollector())
	a.metrics = rpc.NewMetricsWithRegistry(a.registry)

	mws := []rpc.Middleware{rpc.LoggingMiddleware(), rpc.MetricsMiddleware(a.metrics)}
	if a.conf.RateLimit > 0 {
		mws = append(mws, rpc.RateLimitMiddleware(rate.NewLimiter(rate.Limit(a.conf.RateLimit), 1)))
	}

	connector := rpc.NewConnector(
		rpc.WithTimeout(a.conf.Timeout),
		rpc.WithUserAgent("nearrpc/"+version),
		rpc.WithMiddleware(mws...),
	)

	endpoint, err := a.conf.Endpoint()
	if err != nil {
		return err
	}
	client := connector.Connect(endpoint)

	scheme, err := authScheme(a.conf)
	if err != nil {
		return fmt.Errorf("failed to set up authentication: %w", err)
	}
	if scheme == nil {
		a.client = client
	} else {
		a.client = rpc.Authenticate(client, scheme)
	}

	a.logger.Debug("connected", "endpoint", endpoint, "authenticated", scheme != nil)
	return nil
}

// authScheme builds the scheme configured in conf, or nil when none is.
func authScheme(conf *Config) (rpc.AuthScheme, error) {
	switch {
	case conf.APIKey != "":
		return rpc.APIKey(conf.APIKey), nil
	case conf.BearerToken != "":
		return rpc.BearerToken(conf.BearerToken), nil
	case conf.SignerPrivateKey == "":
		return nil, nil
	}

	key, err := ethcrypto.HexToECDSA(strings.TrimPrefix(conf.SignerPrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("could not parse signer private key: %w", err)
	}
	signer := sign.NewEthereumSignerFromKey(key)

	if conf.SignerAuth == SignerAuthJWT {
		auth, err := rpc.NewJWTAuth(key, rpc.JWTAuthConfig{
			Issuer:   conf.JWTIssuer,
			Subject:  signer.PublicKey().Address().String(),
			Audience: conf.JWTAudience,
		})
		if err != nil {
			return nil, err
		}
		return auth, nil
	}

	auth, err := rpc.NewSignatureAuth(signer)
	if err != nil {
		return nil, err
	}
	return auth, nil
}

// context returns the command context carrying the app logger.
func (a *app) context(cliCtx *cli.Context) context.Context {
	return log.SetContextLogger(cliCtx.Context, a.logger)
}

func (a *app) print(cliCtx *cli.Context, v any) error {
	enc := json.NewEncoder(cliCtx.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
