package gateway

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/houi19lb/Gstore-theme-sub001/internal/model"
	apperrors "github.com/houi19lb/Gstore-theme-sub001/internal/shared/errors"
	"github.com/houi19lb/Gstore-theme-sub001/internal/shared/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts Options) (*Client, *int32) {
	t.Helper()
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	opts.BaseURL = server.URL + "/v1/links"
	if opts.Kind == "" {
		opts.Kind = model.GatewayLinkCheckout
	}
	return NewClient(opts, server.Client(), nil, zap.NewNop()), &hits
}

func TestClient_Authorization(t *testing.T) {
	ctx := context.Background()

	t.Run("bearer prefix", func(t *testing.T) {
		var got string
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Get("Authorization")
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.Equal(t, "application/json", r.Header.Get("Accept"))
			_, _ = w.Write([]byte(`{"id":"lnk_1"}`))
		}, Options{Token: "tok", BearerPrefix: true})

		_, err := c.Do(ctx, "create", http.MethodPost, "", map[string]any{"amount": "1.00"})

		require.NoError(t, err)
		assert.Equal(t, "Bearer tok", got)
	})

	t.Run("raw token", func(t *testing.T) {
		var got string
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Get("Authorization")
			_, _ = w.Write([]byte(`{"transaction_token":"tx"}`))
		}, Options{Kind: model.GatewayPix, Token: "tok"})

		_, err := c.Do(ctx, "consult", http.MethodGet, "/tx", nil)

		require.NoError(t, err)
		assert.Equal(t, "tok", got)
	})
}

func TestClient_URL(t *testing.T) {
	var method, path, body string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		_, _ = w.Write([]byte(`{}`))
	}, Options{})

	_, err := c.Do(context.Background(), "create", http.MethodPost, "/", map[string]any{"amount": "150.00"})

	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "/v1/links/", path)
	assert.JSONEq(t, `{"amount":"150.00"}`, body)
}

func TestClient_DomainErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"message field", http.StatusUnprocessableEntity, `{"message":"invalid document"}`, "invalid document"},
		{"error field", http.StatusBadRequest, `{"error":"amount required"}`, "amount required"},
		{"no body", http.StatusUnauthorized, ``, "provider request failed"},
		{"non-json body", http.StatusBadGateway, `<html>bad gateway</html>`, "provider request failed"},
		{"2xx array", http.StatusOK, `[1,2,3]`, "invalid response"},
		{"2xx garbage", http.StatusCreated, `not json`, "invalid response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}, Options{})

			_, err := c.Do(context.Background(), "create", http.MethodPost, "", nil)

			var domainErr *apperrors.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, tt.status, domainErr.StatusCode)
			assert.Equal(t, tt.message, domainErr.Message)
			assert.ErrorIs(t, err, apperrors.ErrProviderDomain)
		})
	}
}

func TestClient_Timeout(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}, Options{Timeout: 50 * time.Millisecond})

	_, err := c.Do(context.Background(), "consult", http.MethodGet, "/lnk_1", nil)

	var transportErr *apperrors.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.ErrorIs(t, err, apperrors.ErrTransport)
	assert.Equal(t, "consult", transportErr.Op)
	assert.NotEmpty(t, transportErr.Cause)
}

func TestClient_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	c := NewClient(Options{Kind: model.GatewayPix, BaseURL: baseURL}, nil, nil, zap.NewNop())

	_, err := c.Do(context.Background(), "consult", http.MethodGet, "/tx", nil)

	assert.ErrorIs(t, err, apperrors.ErrTransport)
}

func TestClient_CircuitBreaker(t *testing.T) {
	ctx := context.Background()

	t.Run("opens on server errors", func(t *testing.T) {
		c, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}, Options{FailureThreshold: 2, OpenTimeout: time.Minute})

		for i := 0; i < 2; i++ {
			_, err := c.Do(ctx, "consult", http.MethodGet, "/x", nil)
			assert.ErrorIs(t, err, apperrors.ErrProviderDomain)
		}

		_, err := c.Do(ctx, "consult", http.MethodGet, "/x", nil)

		var transportErr *apperrors.TransportError
		require.ErrorAs(t, err, &transportErr)
		assert.Equal(t, "circuit open", transportErr.Cause)
		assert.Equal(t, int32(2), atomic.LoadInt32(hits))
	})

	t.Run("client errors do not trip", func(t *testing.T) {
		c, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"message":"invalid"}`))
		}, Options{FailureThreshold: 2})

		for i := 0; i < 4; i++ {
			_, err := c.Do(ctx, "create", http.MethodPost, "", nil)
			assert.ErrorIs(t, err, apperrors.ErrProviderDomain)
		}

		assert.Equal(t, int32(4), atomic.LoadInt32(hits))
	})
}

func TestClient_DebugLogRedactsToken(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"lnk_1"}`))
	}))
	defer server.Close()

	c := NewClient(Options{
		Kind:         model.GatewayLinkCheckout,
		BaseURL:      server.URL,
		Token:        "super-secret-token",
		BearerPrefix: true,
		Debug:        true,
	}, server.Client(), nil, zap.New(core))

	_, err := c.Do(context.Background(), "create", http.MethodPost, "", map[string]any{"amount": "1.00"})
	require.NoError(t, err)

	entries := logs.FilterMessage("provider request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "***", fields["authorization"])
	assert.Equal(t, int64(200), fields["status"])
	for _, v := range fields {
		if s, ok := v.(string); ok {
			assert.False(t, strings.Contains(s, "super-secret-token"))
		}
	}
}

func TestClient_Metrics(t *testing.T) {
	m := metrics.New("test", prometheus.NewRegistry())
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := NewClient(Options{Kind: model.GatewayPix, BaseURL: server.URL}, server.Client(), m, zap.NewNop())
	_, err := c.Do(context.Background(), "consult", http.MethodGet, "/tx", nil)
	require.NoError(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.GatewayRequestsTotal.WithLabelValues("pix", "consult", "success")))
}
