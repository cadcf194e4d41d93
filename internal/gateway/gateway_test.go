package gateway

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/prosperfactory/paygate/internal/catalog"
	"github.com/prosperfactory/paygate/internal/stripe"
	"github.com/prosperfactory/paygate/internal/verify"
)

const driveTemplate = "https://drive.google.com/uc?export=download&id=%s"

// paidStripe serves a paid+complete session for cs_live_abc carrying the
// German product, and counts how many calls it received.
func paidStripe(t *testing.T, calls *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			*calls++
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.Method + " " + r.URL.Path {
		case "GET /v1/checkout/sessions/cs_live_abc":
			io.WriteString(w, `{"id":"cs_live_abc","payment_status":"paid","status":"complete"}`)
		case "GET /v1/checkout/sessions/cs_live_abc/line_items":
			io.WriteString(w, `{"data":[{"price":{"product":"prod_TGTEcCwUKQEBWB"}}]}`)
		default:
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))
}

func newGateway(baseURL, liveKey, testKey string) *Gateway {
	verifier := verify.NewVerifier(stripe.New(baseURL), liveKey, testKey)
	return New(catalog.NewRegistry(), verifier, driveTemplate)
}

func TestAuthorizeUnknownLocaleUsesGlobalFallback(t *testing.T) {
	var calls int
	server := paidStripe(t, &calls)
	defer server.Close()

	g := newGateway(server.URL, "sk_live_x", "sk_test_x")
	redirect := g.Authorize(context.Background(), "xx", "cs_live_abc")
	require.Equal(t, DecisionFallback, redirect.Decision)
	require.Equal(t, catalog.DefaultFallbackPath, redirect.Location)
	require.Zero(t, calls)
}

func TestAuthorizeBadSessionShapeUsesLocaleFallback(t *testing.T) {
	var calls int
	server := paidStripe(t, &calls)
	defer server.Close()

	g := newGateway(server.URL, "sk_live_x", "sk_test_x")
	for _, sessionID := range []string{"", "   ", "not-a-session", "abc_cs_live"} {
		redirect := g.Authorize(context.Background(), "de", sessionID)
		require.Equal(t, DecisionFallback, redirect.Decision)
		require.Equal(t, "/de/zahlung", redirect.Location)
	}
	require.Zero(t, calls, "malformed input must not reach the provider")
}

func TestAuthorizeGrantsResource(t *testing.T) {
	server := paidStripe(t, nil)
	defer server.Close()

	g := newGateway(server.URL, "sk_live_x", "sk_test_x")
	redirect := g.Authorize(context.Background(), "de", "cs_live_abc")
	require.Equal(t, DecisionResource, redirect.Decision)
	require.Equal(t,
		"https://drive.google.com/uc?export=download&id=1uu6fi-qjT24xmsiyixsCN7q9l72OKQ4t",
		redirect.Location)
}

func TestAuthorizeMissingCredentialIsMisconfigured(t *testing.T) {
	var calls int
	server := paidStripe(t, &calls)
	defer server.Close()

	g := newGateway(server.URL, "sk_live_x", "")
	redirect := g.Authorize(context.Background(), "de", "cs_test_abc")
	require.Equal(t, DecisionMisconfigured, redirect.Decision)
	require.Equal(t, verify.TestKeyEnvVar, redirect.Detail)
	require.Zero(t, calls)
}

func TestAuthorizeProviderOutageFailsClosed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	g := newGateway(server.URL, "sk_live_x", "sk_test_x")
	redirect := g.Authorize(context.Background(), "fr", "cs_live_abc")
	require.Equal(t, DecisionFallback, redirect.Decision)
	require.Equal(t, "/fr/paiement", redirect.Location)
}

func TestAuthorizeIsIdempotent(t *testing.T) {
	server := paidStripe(t, nil)
	defer server.Close()

	g := newGateway(server.URL, "sk_live_x", "sk_test_x")
	first := g.Authorize(context.Background(), "de", "cs_live_abc")
	second := g.Authorize(context.Background(), "de", "cs_live_abc")
	require.Equal(t, first, second)
}
