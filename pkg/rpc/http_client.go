package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// HTTPClient reads the plain HTTP endpoints a node serves next to JSON-RPC.
// It shares the transport, address and auth state of the client it came from.
type HTTPClient struct {
	addr       string
	transport  *http.Client
	authHeader func() (string, string, bool, error)
}

// HTTP returns the plain HTTP client for c's node.
func (c Client[A]) HTTP() HTTPClient {
	return HTTPClient{
		addr:       c.addr,
		transport:  c.httpClient(),
		authHeader: c.auth.authHeader,
	}
}

func (h HTTPClient) get(ctx context.Context, endpoint Endpoint) ([]byte, error) {
	url := strings.TrimRight(h.addr, "/") + "/" + string(endpoint)

	ctx, wrote := traceWrites(withMethod(ctx, MethodName(endpoint)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, sendError(ErrBuildingRequest, err)
	}

	name, value, ok, err := h.authHeader()
	if err != nil {
		return nil, sendError(ErrBuildingAuthHeader, err)
	}
	if ok {
		req.Header.Set(name, value)
	}

	return doRequest(h.transport, req, wrote)
}

func getJSON[T any](ctx context.Context, h HTTPClient, endpoint Endpoint) (T, error) {
	var res T
	data, err := h.get(ctx, endpoint)
	if err != nil {
		return res, err
	}
	if err := json.Unmarshal(data, &res); err != nil {
		return res, recvError(ErrParsingResponse, fmt.Errorf("%s: %w", endpoint, err))
	}
	return res, nil
}

// Status returns GET /status.
func (h HTTPClient) Status(ctx context.Context) (StatusResponse, error) {
	return getJSON[StatusResponse](ctx, h, StatusEndpoint)
}

// Health returns nil when GET /health answers 200.
func (h HTTPClient) Health(ctx context.Context) error {
	_, err := h.get(ctx, HealthEndpoint)
	return err
}

// NetworkInfo returns GET /network_info.
func (h HTTPClient) NetworkInfo(ctx context.Context) (NetworkInfoView, error) {
	return getJSON[NetworkInfoView](ctx, h, NetworkInfoEndpoint)
}

// Metrics returns the Prometheus text exposition of GET /metrics as is.
func (h HTTPClient) Metrics(ctx context.Context) (string, error) {
	data, err := h.get(ctx, MetricsEndpoint)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
