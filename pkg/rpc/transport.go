package rpc

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/erc7824/nitrolite/nearrpc/pkg/log"
)

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

// Middleware wraps a transport. Middlewares run outside the dispatch core and
// see every request of the connector, JSON-RPC and plain HTTP alike.
type Middleware func(next http.RoundTripper) http.RoundTripper

// Chain wraps base with mws. The first middleware is the outermost one.
func Chain(base http.RoundTripper, mws ...Middleware) http.RoundTripper {
	for i := len(mws) - 1; i >= 0; i-- {
		base = mws[i](base)
	}
	return base
}

type methodContextKey struct{}

func withMethod(ctx context.Context, method MethodName) context.Context {
	return context.WithValue(ctx, methodContextKey{}, method)
}

// MethodFromContext returns the method a request was sent for. Plain HTTP
// requests carry their endpoint name.
func MethodFromContext(ctx context.Context) (MethodName, bool) {
	m, ok := ctx.Value(methodContextKey{}).(MethodName)
	return m, ok
}

func methodLabel(req *http.Request) string {
	if m, ok := MethodFromContext(req.Context()); ok {
		return m.String()
	}
	return "unknown"
}

// MetricsMiddleware records request count, duration and in-flight requests.
func MetricsMiddleware(m *Metrics) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			method := methodLabel(req)

			m.InflightRequests.Inc()
			defer m.InflightRequests.Dec()

			start := time.Now()
			resp, err := next.RoundTrip(req)
			m.RequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())

			code := "error"
			if err == nil {
				code = strconv.Itoa(resp.StatusCode)
			}
			m.Requests.WithLabelValues(method, code).Inc()

			return resp, err
		})
	}
}

// RateLimitMiddleware waits for limiter before each request. A cancelled
// context aborts the wait.
func RateLimitMiddleware(limiter *rate.Limiter) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if err := limiter.Wait(req.Context()); err != nil {
				return nil, fmt.Errorf("rate limiter: %w", err)
			}
			return next.RoundTrip(req)
		})
	}
}

// LoggingMiddleware writes one debug record per round trip to the request's
// context logger.
func LoggingMiddleware() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			logger := log.FromContext(req.Context())

			start := time.Now()
			resp, err := next.RoundTrip(req)
			if err != nil {
				logger.Debug("round trip failed", "http_method", req.Method, "url", req.URL.Redacted(), "error", err)
				return resp, err
			}

			logger.Debug("round trip",
				"http_method", req.Method,
				"url", req.URL.Redacted(),
				"status", resp.StatusCode,
				"duration", time.Since(start))
			return resp, nil
		})
	}
}

// UserAgentMiddleware sets the User-Agent header.
func UserAgentMiddleware(ua string) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			req = req.Clone(req.Context())
			req.Header.Set("User-Agent", ua)
			return next.RoundTrip(req)
		})
	}
}
