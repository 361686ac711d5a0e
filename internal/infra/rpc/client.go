package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/vietddude/ethalive/internal/metrics"
)

// DefaultTimeout bounds a single eth_blockNumber request.
const DefaultTimeout = 10 * time.Second

const methodBlockNumber = "eth_blockNumber"

// Endpoint names an RPC target. Name is used for logs and metric labels.
type Endpoint struct {
	Name string
	URL  string
}

// EndpointHealth summarises the call history of one endpoint.
type EndpointHealth struct {
	Available     bool          `json:"available"`
	Latency       time.Duration `json:"latency"`
	ErrorRate     float64       `json:"error_rate"`
	LastSuccessAt time.Time     `json:"last_success_at"`
	LastFailureAt time.Time     `json:"last_failure_at"`
	LastError     string        `json:"last_error,omitempty"`
}

type endpointStats struct {
	health       EndpointHealth
	totalLatency time.Duration
	successCount int
	failureCount int
	requestCount int
}

// Client performs eth_blockNumber calls over HTTP.
type Client struct {
	httpClient *http.Client

	mu    sync.RWMutex
	stats map[string]*endpointStats
}

// NewClient creates a new client. A non-positive timeout selects DefaultTimeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		stats: make(map[string]*endpointStats),
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      int    `json:"id"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  json.RawMessage `json:"error"`
}

// errorMessage extracts a message from a JSON-RPC error value. Nodes and
// proxies do not always send an object, so a bare string is accepted too.
func errorMessage(raw json.RawMessage) string {
	var obj struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &obj) == nil && obj.Message != "" {
		return obj.Message
	}
	var str string
	if json.Unmarshal(raw, &str) == nil && str != "" {
		return str
	}
	return "unknown error"
}

// GetBlockNumber returns the head height reported by the endpoint.
// Every failure is an *Error.
func (c *Client) GetBlockNumber(ctx context.Context, ep Endpoint) (uint64, error) {
	start := time.Now()
	metrics.RPCCallsTotal.WithLabelValues(ep.Name, methodBlockNumber).Inc()

	height, err := c.getBlockNumber(ctx, ep)
	latency := time.Since(start)
	metrics.RPCLatency.WithLabelValues(ep.Name, methodBlockNumber).Observe(latency.Seconds())

	if err != nil {
		metrics.RPCErrorsTotal.WithLabelValues(ep.Name, KindOf(err).String()).Inc()
		c.recordFailure(ep.Name, err)
		return 0, err
	}

	metrics.HeadHeight.WithLabelValues(ep.Name).Set(float64(height))
	c.recordSuccess(ep.Name, latency)
	return height, nil
}

func (c *Client) getBlockNumber(ctx context.Context, ep Endpoint) (uint64, error) {
	jsonData, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  methodBlockNumber,
		Params:  []any{},
		ID:      1,
	})
	if err != nil {
		return 0, &Error{Kind: KindMalformed, Endpoint: ep.Name, Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ep.URL, bytes.NewReader(jsonData))
	if err != nil {
		return 0, &Error{Kind: KindTransport, Endpoint: ep.Name, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, &Error{Kind: KindTransport, Endpoint: ep.Name, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, &Error{Kind: KindTransport, Endpoint: ep.Name, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, &Error{
			Kind:       KindHTTPStatus,
			Endpoint:   ep.Name,
			StatusCode: resp.StatusCode,
			Message:    truncate(string(body), 256),
		}
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return 0, &Error{Kind: KindMalformed, Endpoint: ep.Name, Err: fmt.Errorf("parse response: %w", err)}
	}

	if len(rpcResp.Error) > 0 && !bytes.Equal(rpcResp.Error, []byte("null")) {
		return 0, &Error{Kind: KindProtocol, Endpoint: ep.Name, Message: errorMessage(rpcResp.Error)}
	}

	var hexStr string
	if len(rpcResp.Result) == 0 || bytes.Equal(rpcResp.Result, []byte("null")) ||
		json.Unmarshal(rpcResp.Result, &hexStr) != nil {
		return 0, &Error{Kind: KindMalformed, Endpoint: ep.Name, Message: "missing or non-string result"}
	}

	height, err := DecodeHex(hexStr)
	if err != nil {
		return 0, &Error{Kind: KindHexDecode, Endpoint: ep.Name, Err: err}
	}
	return height, nil
}

// Health returns the call statistics for the named endpoint.
func (c *Client) Health(name string) EndpointHealth {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if s, ok := c.stats[name]; ok {
		return s.health
	}
	return EndpointHealth{}
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *Client) statsFor(name string) *endpointStats {
	s, ok := c.stats[name]
	if !ok {
		s = &endpointStats{}
		c.stats[name] = s
	}
	return s
}

func (c *Client) recordSuccess(name string, latency time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.statsFor(name)
	s.successCount++
	s.requestCount++
	s.totalLatency += latency
	s.health.LastSuccessAt = time.Now()
	s.health.Available = true
	s.health.LastError = ""

	s.health.ErrorRate = float64(s.failureCount) / float64(s.requestCount)
	s.health.Latency = s.totalLatency / time.Duration(s.successCount)
}

func (c *Client) recordFailure(name string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.statsFor(name)
	s.failureCount++
	s.requestCount++
	s.health.LastFailureAt = time.Now()
	s.health.Available = false
	s.health.LastError = err.Error()

	s.health.ErrorRate = float64(s.failureCount) / float64(s.requestCount)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
