package sparql

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	contentTypeForm    = "application/x-www-form-urlencoded"
	contentTypeResults = "application/sparql-results+json"
	maxErrorBody       = 1024
)

// HTTPClient implements Client over the SPARQL 1.1 protocol, sending both
// queries and updates as URL-encoded POST forms.
type HTTPClient struct {
	client    *http.Client
	userAgent string
	logger    *zap.Logger
}

var _ Client = (*HTTPClient)(nil)

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPClient) {
		if c != nil {
			h.client = c
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(h *HTTPClient) { h.userAgent = ua }
}

// WithLogger sets the logger requests are traced to at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(h *HTTPClient) {
		if l != nil {
			h.logger = l
		}
	}
}

func NewHTTPClient(opts ...Option) *HTTPClient {
	h := &HTTPClient{
		client:    http.DefaultClient,
		userAgent: "rdfstore",
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *HTTPClient) Query(ctx context.Context, endpoint, query string, defaultGraphs ...string) (*Results, error) {
	form := url.Values{"query": {query}}
	for _, g := range defaultGraphs {
		form.Add("default-graph-uri", g)
	}

	resp, err := h.post(ctx, endpoint, form, contentTypeResults)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	res, err := DecodeResults(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", endpoint, err)
	}
	return res, nil
}

func (h *HTTPClient) Update(ctx context.Context, endpoint, update string) error {
	resp, err := h.post(ctx, endpoint, url.Values{"update": {update}}, "*/*")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (h *HTTPClient) post(ctx context.Context, endpoint string, form url.Values, accept string) (*http.Response, error) {
	body := form.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentTypeForm)
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", h.userAgent)

	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		h.logger.Debug("sparql request failed",
			zap.String("endpoint", endpoint),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, fmt.Errorf("post %s: %w", endpoint, err)
	}
	h.logger.Debug("sparql request",
		zap.String("endpoint", endpoint),
		zap.Int("bytes", len(body)),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{
			Endpoint: endpoint,
			Code:     resp.StatusCode,
			Status:   resp.Status,
			Body:     strings.TrimSpace(string(msg)),
		}
	}
	return resp, nil
}
