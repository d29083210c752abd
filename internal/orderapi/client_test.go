package orderapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/oc-consolidator/internal/upsert"
	pkgerrors "github.com/ginjaninja78/oc-consolidator/pkg/errors"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func respond(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{},
	}
}

func newTestClient(t *testing.T, rt roundTripFunc) *Client {
	t.Helper()
	client, err := NewClient("http://store.test/api/v1/", WithToken("secret"), WithHTTPClient(&http.Client{Transport: rt}))
	require.NoError(t, err)
	return client
}

func payload(order string) upsert.OrderPayload {
	return upsert.OrderPayload{
		OrderNumber:  order,
		SupplierName: "Acme",
		Date:         "2024-03-05",
		Amount:       decimal.NewFromInt(50000),
	}
}

func TestSubmitBatchRequest(t *testing.T) {
	var captured *http.Request
	var body map[string][]map[string]any

	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		captured = req
		raw, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &body))
		return respond(http.StatusOK, `{"data":{"results":[{"index":0,"success":true,"created":true,"entity_id":12},{"index":1,"success":false,"error":"duplicate line"}],"created":1,"updated":0,"failed":1}}`), nil
	})

	resp, err := client.SubmitBatch(context.Background(), []upsert.OrderPayload{payload("OC-1"), payload("OC-2")})
	require.NoError(t, err)

	assert.Equal(t, "http://store.test/api/v1/purchase-orders/batch-upsert", captured.URL.String())
	assert.Equal(t, http.MethodPost, captured.Method)
	assert.Equal(t, "Bearer secret", captured.Header.Get("Authorization"))
	assert.Equal(t, "application/json", captured.Header.Get("Content-Type"))
	require.Len(t, body["orders"], 2)
	assert.Equal(t, "OC-2", body["orders"][1]["order_number"])

	require.Len(t, resp.Results, 2)
	assert.True(t, resp.Results[0].Created)
	assert.Equal(t, int64(12), resp.Results[0].EntityID)
	assert.Equal(t, "duplicate line", resp.Results[1].Error)
	assert.Equal(t, 1, resp.Failed)
}

func TestSubmitOneAcceptsBareBody(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "/api/v1/purchase-orders/upsert", req.URL.Path)
		return respond(http.StatusOK, `{"success":true,"created":false,"entity_id":4}`), nil
	})

	item, err := client.SubmitOne(context.Background(), payload("OC-1"))
	require.NoError(t, err)
	assert.True(t, item.Success)
	assert.False(t, item.Created)
	assert.Equal(t, int64(4), item.EntityID)
}

func TestNonSuccessStatusIsDependencyError(t *testing.T) {
	client := newTestClient(t, func(*http.Request) (*http.Response, error) {
		return respond(http.StatusBadGateway, `{"error":{"code":"DEPENDENCY_ERROR","message":"database unavailable"}}`), nil
	})

	_, err := client.SubmitBatch(context.Background(), []upsert.OrderPayload{payload("OC-1")})
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeDependency))
	assert.Contains(t, err.Error(), "status 502: database unavailable")
}

func TestTransportAndDecodeErrors(t *testing.T) {
	failing := newTestClient(t, func(*http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})
	_, err := failing.SubmitOne(context.Background(), payload("OC-1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")

	garbled := newTestClient(t, func(*http.Request) (*http.Response, error) {
		return respond(http.StatusOK, `<html>`), nil
	})
	_, err = garbled.SubmitBatch(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode order response")
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient("  ")
	assert.ErrorIs(t, err, errBaseURLRequired)
}

func TestClientDrivesOrchestratorFallback(t *testing.T) {
	var singles int
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		if strings.HasSuffix(req.URL.Path, "batch-upsert") {
			return respond(http.StatusServiceUnavailable, "maintenance"), nil
		}
		singles++
		return respond(http.StatusOK, `{"data":{"success":true,"created":true,"entity_id":1}}`), nil
	})

	out, err := upsert.NewOrchestrator(client).SubmitPayloads(context.Background(), []upsert.OrderPayload{payload("OC-1"), payload("OC-2")})
	require.NoError(t, err)
	assert.True(t, out.UsedFallback)
	assert.Contains(t, out.BatchError, "status 503: maintenance")
	assert.Equal(t, 2, singles)
	assert.Equal(t, 2, out.Created)
}
