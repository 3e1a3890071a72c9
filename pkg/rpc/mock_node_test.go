package rpc_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erc7824/nitrolite/nearrpc/pkg/rpc"
)

// handlerFunc answers one JSON-RPC method. Returning a non-nil error object
// produces a failure envelope.
type handlerFunc func(params json.RawMessage) (any, *rpc.ErrorObject)

type recordedRequest struct {
	HTTPMethod string
	Path       string
	Header     http.Header
	Body       []byte
	Envelope   rpc.Request
}

// MockNode is an httptest server speaking the node's JSON-RPC and plain HTTP
// endpoints.
type MockNode struct {
	t      *testing.T
	server *httptest.Server

	mu         sync.Mutex
	handlers   map[rpc.MethodName]handlerFunc
	endpoints  map[string]string
	requests   []recordedRequest
	status     int
	rawBody    string
	responseID json.RawMessage
}

func NewMockNode(t *testing.T) *MockNode {
	t.Helper()

	n := &MockNode{
		t:         t,
		handlers:  make(map[rpc.MethodName]handlerFunc),
		endpoints: make(map[string]string),
	}
	n.server = httptest.NewServer(http.HandlerFunc(n.serveHTTP))
	t.Cleanup(n.server.Close)
	return n
}

func (n *MockNode) URL() string { return n.server.URL }

func (n *MockNode) Handle(method rpc.MethodName, fn handlerFunc) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handlers[method] = fn
}

func (n *MockNode) HandleResult(method rpc.MethodName, result any) {
	n.Handle(method, func(json.RawMessage) (any, *rpc.ErrorObject) { return result, nil })
}

func (n *MockNode) HandleError(method rpc.MethodName, data any) {
	raw, err := json.Marshal(data)
	require.NoError(n.t, err)

	n.Handle(method, func(json.RawMessage) (any, *rpc.ErrorObject) {
		return nil, &rpc.ErrorObject{Code: -32000, Message: "Server error", Data: raw}
	})
}

// HandleEndpoint serves body on GET /path.
func (n *MockNode) HandleEndpoint(path, body string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.endpoints["/"+path] = body
}

// ForceStatus answers every request with code. Non-2xx codes carry a body
// that is not JSON; 2xx codes carry the usual envelope.
func (n *MockNode) ForceStatus(code int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.status = code
}

// ForceBody answers every request with 200 and body.
func (n *MockNode) ForceBody(body string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.rawBody = body
}

// ForceID answers with id instead of echoing the request id.
func (n *MockNode) ForceID(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.responseID = json.RawMessage(id)
}

func (n *MockNode) Requests() []recordedRequest {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]recordedRequest(nil), n.requests...)
}

func (n *MockNode) LastRequest() recordedRequest {
	reqs := n.Requests()
	require.NotEmpty(n.t, reqs, "node received no request")
	return reqs[len(reqs)-1]
}

func (n *MockNode) serveHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	rec := recordedRequest{
		HTTPMethod: r.Method,
		Path:       r.URL.Path,
		Header:     r.Header.Clone(),
		Body:       body,
	}
	_ = json.Unmarshal(body, &rec.Envelope)

	n.mu.Lock()
	n.requests = append(n.requests, rec)
	status, rawBody, responseID := n.status, n.rawBody, n.responseID
	handler := n.handlers[rpc.MethodName(rec.Envelope.Method)]
	endpoint, hasEndpoint := n.endpoints[r.URL.Path]
	n.mu.Unlock()

	switch {
	case status != 0 && (status < 200 || status > 299):
		w.WriteHeader(status)
		_, _ = io.WriteString(w, "<html>rejected</html>")
		return
	case rawBody != "":
		_, _ = io.WriteString(w, rawBody)
		return
	case r.Method == http.MethodGet:
		if !hasEndpoint {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, endpoint)
		return
	}

	id := responseID
	if id == nil {
		id, _ = json.Marshal(rec.Envelope.ID)
	}
	resp := map[string]any{"jsonrpc": "2.0", "id": id}

	if handler == nil {
		resp["error"] = rpc.ErrorObject{Code: -32601, Message: "Method not found"}
	} else if result, rpcErr := handler(rec.Envelope.Params); rpcErr != nil {
		resp["error"] = rpcErr
	} else {
		resp["result"] = result
	}

	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// ============================================================================
// Fixtures
// ============================================================================

const testnetStatus = `{
	"chain_id": "testnet",
	"version": {"version": "2.3.0", "build": "2.3.0-rc.1"},
	"protocol_version": 73,
	"latest_protocol_version": 73,
	"genesis_hash": "FWJ9kR6KFWoyMoNjpLXXGHeuiy7tEY6GmoFeCA5yuc6b",
	"node_public_key": "ed25519:8Z5KM6Y4XgEM1GAAsnXTHuqEnhpSEWq2JzbkbW7ZV7xU",
	"validator_account_id": null,
	"validators": [{"account_id": "node0"}],
	"sync_info": {
		"latest_block_hash": "44ZnpoJzJkH1DXjJ9vkNqR2pBwb9JZZmVhfTLJHD7iLS",
		"latest_block_height": 180004236,
		"latest_state_root": "5qx3rVktyjXuJDGcwqw1KVQR1NbnDuDsQuP2hb5YQU8R",
		"latest_block_time": "2024-12-12T10:21:35.119392476Z",
		"syncing": false
	},
	"uptime_sec": 612
}`

func jsonValue(t *testing.T, s string) json.RawMessage {
	t.Helper()
	require.True(t, json.Valid([]byte(s)), "invalid fixture: %s", s)
	return json.RawMessage(s)
}
