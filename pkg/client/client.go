package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/medscan/pkg/model"
	"github.com/m-mizutani/medscan/pkg/preprocess"
)

// Client calls the identification proxy. It issues exactly one request per
// Identify call and never retries; in-flight calls cannot be aborted beyond
// the context, and the client is safe to reuse once a call settles.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// Option is a functional option for Client
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New creates a client against the given proxy endpoint URL
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Identify posts the encoded image to the proxy and returns the normalized
// record. Failures are split into two layers: transport (network error or
// non-2xx status) and upstream (a 2xx payload carrying an error field). A
// successful payload is returned as-is; the proxy owns shape correctness.
func (c *Client) Identify(ctx context.Context, img *preprocess.EncodedImage) (*model.MedicineRecord, error) {
	payload, err := json.Marshal(map[string]string{"imageBase64": img.DataURI()})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "identification request failed", goerr.T(model.TagTransport))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read response", goerr.T(model.TagTransport))
	}

	var errPayload struct {
		Error string `json:"error"`
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		// Pass the proxy's own message through when it sent one
		message := resp.Status
		if err := json.Unmarshal(body, &errPayload); err == nil && errPayload.Error != "" {
			message = errPayload.Error
		}
		return nil, goerr.New(message,
			goerr.T(model.TagTransport), goerr.V("status", resp.StatusCode))
	}

	if err := json.Unmarshal(body, &errPayload); err == nil && errPayload.Error != "" {
		return nil, goerr.New(errPayload.Error, goerr.T(model.TagUpstream))
	}

	var record model.MedicineRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, goerr.Wrap(err, "failed to decode response", goerr.T(model.TagTransport))
	}

	return &record, nil
}
