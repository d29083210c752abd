package orderapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ginjaninja78/oc-consolidator/internal/upsert"
	pkgerrors "github.com/ginjaninja78/oc-consolidator/pkg/errors"
)

const (
	batchPath      = "purchase-orders/batch-upsert"
	singlePath     = "purchase-orders/upsert"
	defaultTimeout = 30 * time.Second
	errorBodyLimit = 1024
)

var errBaseURLRequired = errors.New("order store base url is required")

// Client submits order payloads to a remote order store over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	timeout    time.Duration
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithToken sends the token as a bearer credential.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// WithTimeout sets the timeout of the default HTTP client. It has no effect
// together with WithHTTPClient.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewClient builds a client for the store rooted at baseURL, e.g.
// "https://erp.example.com/api/v1".
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errBaseURLRequired
	}

	client := &Client{
		baseURL: trimmed,
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: client.timeout}
	}
	return client, nil
}

type batchRequest struct {
	Orders []upsert.OrderPayload `json:"orders"`
}

// SubmitBatch posts all payloads in one call. Any non-2xx status, transport
// error or undecodable body is returned as an error.
func (c *Client) SubmitBatch(ctx context.Context, payloads []upsert.OrderPayload) (upsert.BatchResponse, error) {
	var resp upsert.BatchResponse
	if err := c.post(ctx, batchPath, batchRequest{Orders: payloads}, &resp); err != nil {
		return upsert.BatchResponse{}, err
	}
	return resp, nil
}

// SubmitOne posts a single payload.
func (c *Client) SubmitOne(ctx context.Context, payload upsert.OrderPayload) (upsert.ItemResult, error) {
	var item upsert.ItemResult
	if err := c.post(ctx, singlePath, payload, &item); err != nil {
		return upsert.ItemResult{}, err
	}
	return item, nil
}

// envelope matches both {"data": ...} and {"error": {...}} bodies.
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) post(ctx context.Context, path string, body, dest any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal order request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL(path), bytes.NewReader(payload))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build order request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute order request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, errorMessage(msg)), "order request failed")
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read order response")
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && len(env.Data) > 0 {
		raw = env.Data
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode order response")
	}
	return nil
}

// errorMessage prefers the message of an error envelope over the raw body.
func errorMessage(body []byte) string {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error != nil && env.Error.Message != "" {
		return env.Error.Message
	}
	return strings.TrimSpace(string(body))
}

func (c *Client) buildURL(path string) string {
	return fmt.Sprintf("%s/%s", c.baseURL, strings.TrimLeft(path, "/"))
}
