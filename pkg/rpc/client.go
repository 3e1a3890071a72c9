package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptrace"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/erc7824/nitrolite/nearrpc/pkg/log"
)

const tracerName = "github.com/erc7824/nitrolite/nearrpc/pkg/rpc"

// ============================================================================
// Connector
// ============================================================================

// Connector owns the HTTP transport shared by every client it creates.
type Connector struct {
	client *http.Client
}

type connectorConfig struct {
	client      *http.Client
	timeout     time.Duration
	middlewares []Middleware
	userAgent   string
}

// ConnectorOption configures a Connector.
type ConnectorOption func(*connectorConfig)

// WithHTTPClient uses client instead of a new one. Its transport becomes the
// base of the middleware chain.
func WithHTTPClient(client *http.Client) ConnectorOption {
	return func(c *connectorConfig) { c.client = client }
}

// WithTimeout bounds every request, response body included.
func WithTimeout(d time.Duration) ConnectorOption {
	return func(c *connectorConfig) { c.timeout = d }
}

// WithMiddleware wraps the transport. The first middleware is the outermost.
func WithMiddleware(mws ...Middleware) ConnectorOption {
	return func(c *connectorConfig) { c.middlewares = append(c.middlewares, mws...) }
}

// WithUserAgent sets the User-Agent header of every request.
func WithUserAgent(ua string) ConnectorOption {
	return func(c *connectorConfig) { c.userAgent = ua }
}

// NewConnector creates a Connector.
func NewConnector(opts ...ConnectorOption) *Connector {
	conf := connectorConfig{}
	for _, opt := range opts {
		opt(&conf)
	}

	client := &http.Client{}
	if conf.client != nil {
		clone := *conf.client
		client = &clone
	}
	if conf.timeout > 0 {
		client.Timeout = conf.timeout
	}

	base := client.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	mws := conf.middlewares
	if conf.userAgent != "" {
		mws = append(mws, UserAgentMiddleware(conf.userAgent))
	}
	client.Transport = Chain(base, mws...)

	return &Connector{client: client}
}

// Connect returns an unauthenticated client for the node at addr.
func (c *Connector) Connect(addr string) Client[Unauthenticated] {
	return Client[Unauthenticated]{addr: addr, transport: c.client}
}

var defaultConnector = sync.OnceValue(func() *Connector { return NewConnector() })

// Connect returns an unauthenticated client using the process-wide default
// connector.
func Connect(addr string) Client[Unauthenticated] {
	return defaultConnector().Connect(addr)
}

// ============================================================================
// Client
// ============================================================================

// Client sends JSON-RPC requests to one node. A is the authentication state;
// see Authenticate. Clients are values and safe for concurrent use.
type Client[A AuthState] struct {
	addr      string
	transport *http.Client
	auth      A
}

// Addr returns the node address.
func (c Client[A]) Addr() string { return c.addr }

// Call sends m to the node and decodes the result.
//
// A failed call returns exactly one of *TransportError, *ServerError,
// *HandlerError[E], *RawHandlerError or *ParseError.
func Call[R, E any, A AuthState](ctx context.Context, c Client[A], m Method[R, E]) (R, error) {
	return call(ctx, c, m)
}

// CallAdmin sends an admin method. Only authenticated clients may send them.
func CallAdmin[R, E any](ctx context.Context, c Client[Authenticated], m AdminMethod[R, E]) (R, error) {
	return call(ctx, c, m.method)
}

func call[R, E any, A AuthState](ctx context.Context, c Client[A], m Method[R, E]) (res R, err error) {
	method := m.Name()

	ctx, span := otel.Tracer(tracerName).Start(ctx, "nearrpc."+method.String(),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("rpc.system", "jsonrpc"),
			attribute.String("rpc.method", method.String()),
		),
	)
	defer span.End()

	ctx = log.SetContextLogger(ctx, log.FromContext(ctx).WithKV("method", method.String()))
	logger := log.FromContext(ctx)

	start := time.Now()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			logger.Warn("rpc call failed", "class", errorClass(err), "error", err, "duration", time.Since(start))
			return
		}
		logger.Debug("rpc call succeeded", "duration", time.Since(start))
	}()

	if !m.valid() {
		return res, sendError(ErrInvalidMethod, nil)
	}

	params, err := m.Params()
	if err != nil {
		return res, sendError(ErrMarshalingParams, err)
	}

	req := NewRequest(method, params)
	body, err := json.Marshal(req)
	if err != nil {
		return res, sendError(ErrMarshalingRequest, err)
	}

	data, err := c.post(withMethod(ctx, method), body)
	if err != nil {
		return res, err
	}

	envelope, err := ParseResponse(data)
	if err != nil {
		// ParseResponse already wraps ErrParsingResponse or ErrUnexpectedResponse
		return res, &TransportError{Op: OpRecv, Err: err}
	}
	if err := checkResponseID(req.ID, envelope.ID); err != nil {
		return res, &ParseError{Err: err}
	}

	if envelope.IsError() {
		return res, m.decodeError(envelope.Error)
	}
	return m.decodeResult(envelope.Result)
}

// post sends body and returns the body of a 200 response.
func (c Client[A]) post(ctx context.Context, body []byte) ([]byte, error) {
	ctx, wrote := traceWrites(ctx)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.addr, bytes.NewReader(body))
	if err != nil {
		return nil, sendError(ErrBuildingRequest, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if err := c.applyAuth(httpReq); err != nil {
		return nil, err
	}

	return doRequest(c.httpClient(), httpReq, wrote)
}

// httpClient returns the connector transport, or the default connector's
// for zero-value clients.
func (c Client[A]) httpClient() *http.Client {
	if c.transport == nil {
		return defaultConnector().client
	}
	return c.transport
}

func (c Client[A]) applyAuth(req *http.Request) error {
	name, value, ok, err := c.auth.authHeader()
	if err != nil {
		return sendError(ErrBuildingAuthHeader, err)
	}
	if ok {
		req.Header.Set(name, value)
	}
	return nil
}

// traceWrites returns a context whose requests flag when they have been
// written to the connection.
func traceWrites(ctx context.Context) (context.Context, *atomic.Bool) {
	wrote := new(atomic.Bool)
	ctx = httptrace.WithClientTrace(ctx, &httptrace.ClientTrace{
		WroteRequest: func(info httptrace.WroteRequestInfo) {
			if info.Err == nil {
				wrote.Store(true)
			}
		},
	})
	return ctx, wrote
}

// doRequest runs req and enforces the status rules. wrote tells whether the
// request reached the wire before a failure.
func doRequest(transport *http.Client, req *http.Request, wrote *atomic.Bool) ([]byte, error) {
	resp, err := transport.Do(req)
	if err != nil {
		if wrote.Load() {
			return nil, recvError(ErrReadingResponse, err)
		}
		return nil, sendError(ErrSendingRequest, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, &ServerError{StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, recvError(ErrReadingResponse, err)
	}
	return data, nil
}

// ============================================================================
// Convenience methods
// ============================================================================

// Status returns the node status over JSON-RPC.
func (c Client[A]) Status(ctx context.Context) (StatusResponse, error) {
	return Call(ctx, c, Status())
}

// Health returns nil while the node reports itself healthy.
func (c Client[A]) Health(ctx context.Context) error {
	_, err := Call(ctx, c, Health())
	return err
}

func (c Client[A]) NetworkInfo(ctx context.Context) (NetworkInfoView, error) {
	return Call(ctx, c, NetworkInfo())
}

func (c Client[A]) Block(ctx context.Context, ref BlockReference) (BlockView, error) {
	return Call(ctx, c, Block(ref))
}

func (c Client[A]) Chunk(ctx context.Context, req ChunkRequest) (ChunkView, error) {
	return Call(ctx, c, Chunk(req))
}

func (c Client[A]) GasPrice(ctx context.Context, blockID *BlockID) (GasPriceView, error) {
	return Call(ctx, c, GasPrice(blockID))
}

func (c Client[A]) Validators(ctx context.Context, ref EpochReference) (EpochValidatorInfo, error) {
	return Call(ctx, c, Validators(ref))
}

func (c Client[A]) Query(ctx context.Context, req QueryRequest) (QueryResponse, error) {
	return Call(ctx, c, Query(req))
}

// ViewAccount queries an account at ref and decodes the account view.
func (c Client[A]) ViewAccount(ctx context.Context, accountID AccountID, ref BlockReference) (AccountView, error) {
	res, err := c.Query(ctx, QueryRequest{
		BlockReference: ref,
		RequestType:    ViewAccount,
		AccountID:      accountID,
	})
	if err != nil {
		return AccountView{}, err
	}

	view, err := res.Account()
	if err != nil {
		return AccountView{}, &ParseError{Err: err}
	}
	return view, nil
}

func (c Client[A]) Tx(ctx context.Context, info TransactionInfo) (FinalExecutionOutcome, error) {
	return Call(ctx, c, Tx(info))
}

func (c Client[A]) TxStatus(ctx context.Context, info TransactionInfo) (FinalExecutionOutcomeWithReceipts, error) {
	return Call(ctx, c, TxStatus(info))
}

func (c Client[A]) BroadcastTxAsync(ctx context.Context, signedTx []byte) (CryptoHash, error) {
	return Call(ctx, c, BroadcastTxAsync(signedTx))
}

func (c Client[A]) BroadcastTxCommit(ctx context.Context, signedTx []byte) (FinalExecutionOutcome, error) {
	return Call(ctx, c, BroadcastTxCommit(signedTx))
}

func (c Client[A]) GenesisConfig(ctx context.Context) (GenesisConfigView, error) {
	return Call(ctx, c, GenesisConfig())
}

func (c Client[A]) ProtocolConfig(ctx context.Context, ref BlockReference) (ProtocolConfigView, error) {
	return Call(ctx, c, ProtocolConfig(ref))
}

func (c Client[A]) Receipt(ctx context.Context, receiptID CryptoHash) (ReceiptView, error) {
	return Call(ctx, c, Receipt(ReceiptRequest{ReceiptID: receiptID}))
}
