package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetSendsBearerCredential(t *testing.T) {
	var capturedAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"cs_live_abc"}`)
	}))
	defer server.Close()

	client := New(server.URL)
	payload, err := client.Get(context.Background(), "/v1/checkout/sessions/cs_live_abc", "sk_live_secret")
	require.NoError(t, err)
	require.Equal(t, "Bearer sk_live_secret", capturedAuth)
	require.JSONEq(t, `{"id":"cs_live_abc"}`, string(payload))
}

func TestGetNonJSONBodyIsNullPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "not json at all")
	}))
	defer server.Close()

	client := New(server.URL)
	payload, err := client.Get(context.Background(), "/v1/whatever", "sk")
	require.NoError(t, err)
	require.Nil(t, payload)
}

func TestGetErrorMessageChain(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{
			name:    "structured provider message",
			status:  404,
			body:    `{"error":{"message":"No such checkout session: cs_live_abc"}}`,
			message: "No such checkout session: cs_live_abc",
		},
		{
			name:    "unparseable body falls back to raw text",
			status:  502,
			body:    "Bad Gateway",
			message: "Bad Gateway",
		},
		{
			name:    "empty body falls back to generic message",
			status:  500,
			body:    "",
			message: "stripe API request failed (status 500)",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				io.WriteString(w, tc.body)
			}))
			defer server.Close()

			client := New(server.URL)
			_, err := client.Get(context.Background(), "/v1/checkout/sessions/cs_live_abc", "sk")
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			require.Equal(t, tc.status, apiErr.StatusCode)
			require.Equal(t, tc.message, apiErr.Message)
		})
	}
}

func TestListLineItemsRequestShape(t *testing.T) {
	var capturedPath, capturedQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		capturedQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"data":[]}`)
	}))
	defer server.Close()

	client := New(server.URL)
	items, err := client.ListLineItems(context.Background(), "cs_live_abc", "sk")
	require.NoError(t, err)
	require.Empty(t, items.Data)
	require.Equal(t, "/v1/checkout/sessions/cs_live_abc/line_items", capturedPath)
	require.Equal(t, "limit=20&expand[]=data.price.product", capturedQuery)
}

func TestProductRefAcceptsBothEncodings(t *testing.T) {
	var bare ProductRef
	require.NoError(t, json.Unmarshal([]byte(`"prod_123"`), &bare))
	require.Equal(t, "prod_123", bare.ID())

	var expanded ProductRef
	require.NoError(t, json.Unmarshal([]byte(`{"id":"prod_456","name":"Guide"}`), &expanded))
	require.Equal(t, "prod_456", expanded.ID())

	var null ProductRef
	require.NoError(t, json.Unmarshal([]byte(`null`), &null))
	require.Equal(t, "", null.ID())
}

func TestGetCheckoutSessionEscapesID(t *testing.T) {
	var capturedPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.EscapedPath()
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"x","payment_status":"unpaid"}`)
	}))
	defer server.Close()

	client := New(server.URL)
	_, err := client.GetCheckoutSession(context.Background(), "cs_live_a/b", "sk")
	require.NoError(t, err)
	require.Equal(t, "/v1/checkout/sessions/cs_live_a%2Fb", capturedPath)
}
