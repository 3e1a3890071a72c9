package rpc_test

import (
	"context"
	"crypto/ecdsa"
	"strings"
	"testing"
	"time"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erc7824/nitrolite/nearrpc/pkg/rpc"
	"github.com/erc7824/nitrolite/nearrpc/pkg/sign"
)

var authHeaders = []string{rpc.APIKeyHeader, rpc.AuthorizationHeader, rpc.SignatureHeader}

func countAuthHeaders(t *testing.T, node *MockNode) int {
	t.Helper()
	header := node.LastRequest().Header
	n := 0
	for _, name := range authHeaders {
		n += len(header.Values(name))
	}
	return n
}

func TestAuth_Unauthenticated(t *testing.T) {
	t.Parallel()
	node, client := setupClient(t)
	node.HandleResult(rpc.StatusMethod, jsonValue(t, testnetStatus))

	_, err := client.Status(context.Background())
	require.NoError(t, err)
	assert.Zero(t, countAuthHeaders(t, node))
}

func TestAuth_ExactlyOneHeader(t *testing.T) {
	t.Parallel()

	key, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	jwtAuth, err := rpc.NewJWTAuth(key, rpc.JWTAuthConfig{Issuer: "nearrpc"})
	require.NoError(t, err)
	sigAuth, err := rpc.NewSignatureAuth(sign.NewEthereumSignerFromKey(key))
	require.NoError(t, err)

	tests := []struct {
		name   string
		scheme rpc.AuthScheme
		header string
		prefix string
	}{
		{name: "api key", scheme: rpc.APIKey("k-123"), header: rpc.APIKeyHeader, prefix: "k-123"},
		{name: "bearer", scheme: rpc.BearerToken("tok"), header: rpc.AuthorizationHeader, prefix: "Bearer tok"},
		{name: "jwt", scheme: jwtAuth, header: rpc.AuthorizationHeader, prefix: "Bearer ey"},
		{name: "signature", scheme: sigAuth, header: rpc.SignatureHeader, prefix: "0x"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			node, client := setupClient(t)
			node.HandleResult(rpc.StatusMethod, jsonValue(t, testnetStatus))

			authed := rpc.Authenticate(client, tc.scheme)
			_, err := authed.Status(context.Background())
			require.NoError(t, err)

			assert.Equal(t, 1, countAuthHeaders(t, node))
			values := node.LastRequest().Header.Values(tc.header)
			require.Len(t, values, 1)
			assert.True(t, strings.HasPrefix(values[0], tc.prefix), "header %q", values[0])
		})
	}
}

func TestAuth_Transitions(t *testing.T) {
	t.Parallel()
	node, client := setupClient(t)
	node.HandleResult(rpc.StatusMethod, jsonValue(t, testnetStatus))

	scheme := rpc.APIKey("k")
	authed := rpc.Authenticate(client, scheme)
	assert.Equal(t, client.Addr(), authed.Addr())
	assert.Equal(t, scheme, rpc.Scheme(authed))

	back := rpc.Deauthenticate(authed)
	assert.Equal(t, client.Addr(), back.Addr())

	_, err := back.Status(context.Background())
	require.NoError(t, err)
	assert.Zero(t, countAuthHeaders(t, node))

	// the unauthenticated client is unaffected by either transition
	_, err = client.Status(context.Background())
	require.NoError(t, err)
	assert.Zero(t, countAuthHeaders(t, node))
}

func TestAuth_HeaderFailureIsSendError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		scheme rpc.AuthScheme
	}{
		{name: "empty api key", scheme: rpc.APIKey("")},
		{name: "empty bearer token", scheme: rpc.BearerToken("")},
		{name: "nil scheme", scheme: nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			node, client := setupClient(t)

			_, err := rpc.Call(context.Background(), rpc.Authenticate(client, tc.scheme), rpc.Status())

			var te *rpc.TransportError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, rpc.OpSend, te.Op)
			assert.ErrorIs(t, err, rpc.ErrBuildingAuthHeader)
			assert.Empty(t, node.Requests())
		})
	}
}

func TestAuth_ZeroValueClients(t *testing.T) {
	t.Parallel()

	t.Run("unauthenticated", func(t *testing.T) {
		t.Parallel()
		var client rpc.Client[rpc.Unauthenticated]

		_, err := rpc.Call(context.Background(), client, rpc.Status())

		var te *rpc.TransportError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, rpc.OpSend, te.Op)
		assert.ErrorIs(t, err, rpc.ErrSendingRequest)

		assert.Error(t, client.HTTP().Health(context.Background()))
	})

	t.Run("authenticated", func(t *testing.T) {
		t.Parallel()
		var client rpc.Client[rpc.Authenticated]

		_, err := rpc.Call(context.Background(), client, rpc.Status())

		var te *rpc.TransportError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, rpc.OpSend, te.Op)
		assert.ErrorIs(t, err, rpc.ErrBuildingAuthHeader)
		assert.Nil(t, rpc.Scheme(client))
	})
}

func TestJWTAuth_Claims(t *testing.T) {
	t.Parallel()

	key, err := ethcrypto.GenerateKey()
	require.NoError(t, err)

	auth, err := rpc.NewJWTAuth(key, rpc.JWTAuthConfig{
		Issuer:   "nearrpc",
		Subject:  "alice.testnet",
		Audience: []string{"rpc.testnet.near.org"},
		TTL:      2 * time.Minute,
	})
	require.NoError(t, err)

	parse := func() *rpc.JWTClaims {
		name, value, err := auth.Header()
		require.NoError(t, err)
		require.Equal(t, rpc.AuthorizationHeader, name)

		claims := &rpc.JWTClaims{}
		token, err := jwt.ParseWithClaims(strings.TrimPrefix(value, "Bearer "), claims, func(token *jwt.Token) (any, error) {
			_, ok := token.Method.(*jwt.SigningMethodECDSA)
			require.True(t, ok)
			return &key.PublicKey, nil
		})
		require.NoError(t, err)
		require.True(t, token.Valid)
		return claims
	}

	first := parse()
	assert.Equal(t, "nearrpc", first.Issuer)
	assert.Equal(t, "alice.testnet", first.Subject)
	assert.Equal(t, jwt.ClaimStrings{"rpc.testnet.near.org"}, first.Audience)
	assert.Equal(t, 2*time.Minute, first.ExpiresAt.Sub(first.IssuedAt.Time))
	assert.NotEmpty(t, first.ID)

	second := parse()
	assert.NotEqual(t, first.ID, second.ID, "every header carries a fresh token")
}

func TestJWTAuth_DefaultTTL(t *testing.T) {
	t.Parallel()

	key, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	auth, err := rpc.NewJWTAuth(key, rpc.JWTAuthConfig{})
	require.NoError(t, err)

	_, value, err := auth.Header()
	require.NoError(t, err)

	claims := &rpc.JWTClaims{}
	_, err = jwt.ParseWithClaims(strings.TrimPrefix(value, "Bearer "), claims, func(*jwt.Token) (any, error) {
		return &key.PublicKey, nil
	})
	require.NoError(t, err)
	assert.Equal(t, time.Minute, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestNewJWTAuth_NilKey(t *testing.T) {
	t.Parallel()
	_, err := rpc.NewJWTAuth((*ecdsa.PrivateKey)(nil), rpc.JWTAuthConfig{})
	assert.Error(t, err)
}

func TestSignatureAuth_Recoverable(t *testing.T) {
	t.Parallel()

	signer, err := sign.NewEthereumSigner("0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318")
	require.NoError(t, err)
	auth, err := rpc.NewSignatureAuth(signer)
	require.NoError(t, err)

	before := time.Now().Add(-time.Second)
	name, value, err := auth.Header()
	require.NoError(t, err)
	assert.Equal(t, rpc.SignatureHeader, name)

	addr, ts, err := rpc.ParseSignatureHeader(value)
	require.NoError(t, err)
	assert.True(t, addr.Equals(signer.PublicKey().Address()))
	assert.True(t, ts.After(before))
	assert.WithinDuration(t, time.Now(), ts, 5*time.Second)
}

func TestParseSignatureHeader_Invalid(t *testing.T) {
	t.Parallel()

	signer, err := sign.NewEthereumSigner("0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318")
	require.NoError(t, err)
	auth, err := rpc.NewSignatureAuth(signer)
	require.NoError(t, err)
	_, value, err := auth.Header()
	require.NoError(t, err)
	parts := strings.Split(value, ":")

	tests := []struct {
		name  string
		value string
	}{
		{name: "too few parts", value: "0xabc:123"},
		{name: "bad address", value: "nope:" + parts[1] + ":" + parts[2]},
		{name: "bad timestamp", value: parts[0] + ":soon:" + parts[2]},
		{name: "bad signature", value: parts[0] + ":" + parts[1] + ":0x1234"},
		{name: "tampered timestamp", value: parts[0] + ":1:" + parts[2]},
		{name: "other address", value: "0x90F8bf6A479f320ead074411a4B0e7944Ea8c9C1:" + parts[1] + ":" + parts[2]},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := rpc.ParseSignatureHeader(tc.value)
			assert.Error(t, err)
		})
	}
}

func TestNewSignatureAuth_NilSigner(t *testing.T) {
	t.Parallel()
	_, err := rpc.NewSignatureAuth(nil)
	assert.Error(t, err)
}
