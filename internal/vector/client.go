// File path: internal/vector/client.go
package vector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/nicodishanthj/Reciplan_phase1/internal/common"
	"github.com/nicodishanthj/Reciplan_phase1/internal/common/telemetry"
)

// Method selects how the similarity service matches a query.
type Method string

const (
	MethodVector Method = "vector"
	MethodString Method = "string"
)

// SearchRequest is one query against the similarity service.
type SearchRequest struct {
	Query     string            `json:"query"`
	ToolTypes []string          `json:"tool_types,omitempty"`
	Method    Method            `json:"method"`
	Threshold float64           `json:"threshold"`
	Limit     int               `json:"limit"`
	Filters   map[string]string `json:"filters,omitempty"`
}

// SearchResult is one ranked hit. Payload carries the raw tool record which
// callers convert through the catalog boundary.
type SearchResult struct {
	ID         string                 `json:"id"`
	Similarity float64                `json:"similarity"`
	Payload    map[string]interface{} `json:"tool"`
}

// Searcher is the Similarity Search Service contract consumed by the
// candidate search engine. Calls block; callers own timeout and retry
// policy via the configured HTTP client.
type Searcher interface {
	Available() bool
	Embed(ctx context.Context, text string) ([]float32, error)
	Search(ctx context.Context, req SearchRequest) ([]SearchResult, error)
}

// Client talks to a remote similarity search service over HTTP.
type Client struct {
	httpClient *http.Client
	transport  *http.Transport

	baseURL    string
	collection string
	available  bool
	apiKey     string

	cfg Config

	mu sync.RWMutex
}

func NewFromEnv(ctx context.Context) (*Client, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	return New(ctx, cfg)
}

// New constructs a client using the provided configuration. An unreachable
// service is not an error: the client reports unavailable and search phases
// degrade per the fallback chain.
func New(ctx context.Context, cfg Config) (*Client, error) {
	baseURL := fmt.Sprintf("%s://%s:%s/api/v1", cfg.Scheme, cfg.Host, cfg.Port)
	logger := common.Logger()
	logger.Info(
		"vector: initializing similarity search client",
		"host", cfg.Host,
		"port", cfg.Port,
		"collection", cfg.Collection,
		"timeout", cfg.Timeout,
	)

	transport := &http.Transport{
		MaxIdleConns:        cfg.HTTPMaxIdleConns,
		MaxIdleConnsPerHost: cfg.HTTPMaxIdlePerHost,
		MaxConnsPerHost:     cfg.HTTPMaxConnsPerHost,
		IdleConnTimeout:     cfg.HTTPIdleConnTimeout,
	}

	client := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout, Transport: transport},
		transport:  transport,
		baseURL:    strings.TrimRight(baseURL, "/"),
		collection: cfg.Collection,
		apiKey:     cfg.APIKey,
		cfg:        cfg,
	}

	if err := client.ensureReady(ctx); err != nil {
		logger.Warn("vector: similarity service unreachable", "collection", cfg.Collection, "error", err)
		return client, nil
	}
	logger.Info("vector: similarity service connection established")
	return client, nil
}

func (c *Client) Available() bool {
	if c == nil {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.available
}

func (c *Client) Collection() string {
	if c == nil {
		return ""
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.collection
}

func (c *Client) ensureReady(ctx context.Context) error {
	if c == nil {
		return errors.New("similarity client not configured")
	}
	c.mu.RLock()
	available := c.available
	c.mu.RUnlock()
	if available {
		return nil
	}
	const maxAttempts = 3
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err = c.health(ctx)
		if err == nil {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 250 * time.Millisecond):
		}
	}
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.available = true
	c.mu.Unlock()
	return nil
}

func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := c.ensureReady(ctx); err != nil {
		return nil, err
	}
	payload := map[string]interface{}{"text": text}
	var resp struct {
		Embedding []float32 `json:"embedding"`
	}
	endpoint := fmt.Sprintf("%s/embed", c.baseURL)
	if err := c.doRequest(ctx, http.MethodPost, endpoint, payload, &resp); err != nil {
		return nil, err
	}
	return resp.Embedding, nil
}

func (c *Client) Search(ctx context.Context, req SearchRequest) ([]SearchResult, error) {
	if err := c.ensureReady(ctx); err != nil {
		return nil, err
	}
	if req.Limit <= 0 {
		req.Limit = 5
	}
	if req.Method == "" {
		req.Method = MethodVector
	}
	body := map[string]interface{}{
		"query":      req.Query,
		"method":     string(req.Method),
		"threshold":  req.Threshold,
		"limit":      req.Limit,
		"collection": c.Collection(),
	}
	if len(req.ToolTypes) > 0 {
		body["tool_types"] = req.ToolTypes
	}
	if len(req.Filters) > 0 {
		body["filters"] = req.Filters
	}
	var resp struct {
		Results []SearchResult `json:"results"`
	}
	endpoint := fmt.Sprintf("%s/search", c.baseURL)
	start := time.Now()
	err := c.doRequest(ctx, http.MethodPost, endpoint, body, &resp)
	telemetry.RecordSearchPhase(string(req.Method), len(resp.Results), time.Since(start))
	if err != nil {
		return nil, err
	}
	return resp.Results, nil
}

func (c *Client) health(ctx context.Context) error {
	endpoint := fmt.Sprintf("%s/heartbeat", c.baseURL)
	return c.doRequest(ctx, http.MethodGet, endpoint, nil, nil)
}

func (c *Client) doRequest(ctx context.Context, method, endpoint string, body interface{}, out interface{}) error {
	if c == nil {
		return errors.New("similarity client not configured")
	}
	ctx, end := telemetry.StartSpan(ctx, "vector.request")
	defer end("method", method, "endpoint", endpoint)
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("similarity %s %s failed: %s", method, endpoint, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Close releases pooled resources associated with the client.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	if c.transport != nil {
		c.transport.CloseIdleConnections()
	}
	return nil
}

var _ Searcher = (*Client)(nil)
