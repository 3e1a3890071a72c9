package rpc

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/erc7824/nitrolite/nearrpc/pkg/sign"
)

// ============================================================================
// Type-state
// ============================================================================

// AuthState is the authentication state of a Client. Its type set holds
// only Unauthenticated and Authenticated.
type AuthState interface {
	Unauthenticated | Authenticated

	// authHeader returns the header to attach, if any. It is called once per
	// request.
	authHeader() (name, value string, ok bool, err error)
}

// Unauthenticated clients send no auth header.
type Unauthenticated struct{}

func (Unauthenticated) authHeader() (string, string, bool, error) {
	return "", "", false, nil
}

// Authenticated clients send exactly one header produced by their scheme.
type Authenticated struct {
	scheme AuthScheme
}

var errNoAuthScheme = errors.New("no auth scheme")

func (a Authenticated) authHeader() (string, string, bool, error) {
	if a.scheme == nil {
		return "", "", false, errNoAuthScheme
	}
	name, value, err := a.scheme.Header()
	if err != nil {
		return "", "", false, err
	}
	return name, value, true, nil
}

// Authenticate returns a client that sends scheme's header on every request.
// The returned client shares c's address and transport.
func Authenticate(c Client[Unauthenticated], scheme AuthScheme) Client[Authenticated] {
	return Client[Authenticated]{
		addr:      c.addr,
		transport: c.transport,
		auth:      Authenticated{scheme: scheme},
	}
}

// Deauthenticate drops the auth scheme of c.
func Deauthenticate(c Client[Authenticated]) Client[Unauthenticated] {
	return Client[Unauthenticated]{
		addr:      c.addr,
		transport: c.transport,
	}
}

// Scheme returns the auth scheme of an authenticated client.
func Scheme(c Client[Authenticated]) AuthScheme {
	return c.auth.scheme
}

// ============================================================================
// Schemes
// ============================================================================

// AuthScheme produces the header that authenticates a request.
type AuthScheme interface {
	Header() (name, value string, err error)
}

const (
	APIKeyHeader        = "x-api-key"
	AuthorizationHeader = "Authorization"
	SignatureHeader     = "X-Signature"
)

type apiKey string

// APIKey authenticates with an "x-api-key" header, as hosted RPC providers
// expect.
func APIKey(key string) AuthScheme { return apiKey(key) }

func (k apiKey) Header() (string, string, error) {
	if k == "" {
		return "", "", errors.New("api key is empty")
	}
	return APIKeyHeader, string(k), nil
}

type bearerToken string

// BearerToken authenticates with a static "Authorization: Bearer" token.
func BearerToken(token string) AuthScheme { return bearerToken(token) }

func (t bearerToken) Header() (string, string, error) {
	if t == "" {
		return "", "", errors.New("bearer token is empty")
	}
	return AuthorizationHeader, "Bearer " + string(t), nil
}

// JWTAuthConfig sets the registered claims of minted tokens.
type JWTAuthConfig struct {
	Issuer   string
	Subject  string
	Audience []string
	// TTL defaults to one minute.
	TTL time.Duration
}

// JWTClaims are the claims of tokens minted by JWTAuth.
type JWTClaims struct {
	jwt.RegisteredClaims
}

// JWTAuth mints a fresh ES256 token for every request.
type JWTAuth struct {
	key  *ecdsa.PrivateKey
	conf JWTAuthConfig
	now  func() time.Time
}

// NewJWTAuth creates a JWT scheme signing with key.
func NewJWTAuth(key *ecdsa.PrivateKey, conf JWTAuthConfig) (*JWTAuth, error) {
	if key == nil {
		return nil, errors.New("jwt signing key is nil")
	}
	if conf.TTL <= 0 {
		conf.TTL = time.Minute
	}
	return &JWTAuth{key: key, conf: conf, now: time.Now}, nil
}

func (a *JWTAuth) Header() (string, string, error) {
	now := a.now()
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    a.conf.Issuer,
			Subject:   a.conf.Subject,
			Audience:  a.conf.Audience,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.conf.TTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	signed, err := token.SignedString(a.key)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign jwt: %w", err)
	}
	return AuthorizationHeader, "Bearer " + signed, nil
}

// SignatureAuth signs the current unix time in milliseconds and sends
// "X-Signature: <address>:<unix-ms>:<hex signature>". The gateway recovers
// the address from the signature and checks the timestamp is recent.
type SignatureAuth struct {
	signer sign.Signer
	now    func() time.Time
}

// NewSignatureAuth creates a signature scheme for signer.
func NewSignatureAuth(signer sign.Signer) (*SignatureAuth, error) {
	if signer == nil {
		return nil, errors.New("signer is nil")
	}
	return &SignatureAuth{signer: signer, now: time.Now}, nil
}

func (a *SignatureAuth) Header() (string, string, error) {
	ts := strconv.FormatInt(a.now().UnixMilli(), 10)

	sig, err := sign.SignMessage(a.signer, []byte(ts))
	if err != nil {
		return "", "", err
	}
	value := strings.Join([]string{a.signer.PublicKey().Address().String(), ts, sig.String()}, ":")
	return SignatureHeader, value, nil
}

// ParseSignatureHeader splits an X-Signature value and recovers the signing
// address. It returns an error when the recovered address differs from the
// claimed one.
func ParseSignatureHeader(value string) (sign.Address, time.Time, error) {
	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return nil, time.Time{}, fmt.Errorf("malformed signature header: %q", value)
	}

	claimed, err := sign.NewEthereumAddressFromHex(parts[0])
	if err != nil {
		return nil, time.Time{}, err
	}
	ms, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("malformed signature timestamp: %w", err)
	}
	var sig sign.Signature
	if err := sig.UnmarshalJSON([]byte(strconv.Quote(parts[2]))); err != nil {
		return nil, time.Time{}, err
	}

	recovered, err := sign.RecoverAddress([]byte(parts[1]), sig)
	if err != nil {
		return nil, time.Time{}, err
	}
	if !recovered.Equals(claimed) {
		return nil, time.Time{}, fmt.Errorf("signature was made by %s, not %s", recovered, claimed)
	}
	return recovered, time.UnixMilli(ms), nil
}
