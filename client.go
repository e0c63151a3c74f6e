package spawnpick

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
	"github.com/luno/jettison/log"
	"github.com/luno/spawnpick/api"
)

type Counter interface {
	Inc()
}

type Measure interface {
	Observe(secs float64)
}

type noopMetric struct{}

func (noopMetric) Inc()            {}
func (noopMetric) Observe(float64) {}

var (
	errRetryable = errors.New("", j.C("ERR_8a3f61c2b09d4e75"))

	ErrNotFound   = errors.New("table not found", j.C("ERR_1c7e4b9a05f3d826"))
	ErrBadRequest = errors.New("bad request", j.C("ERR_63d2a8f0e1b74c59"))
)

// Client talks to a spawnpick server.
type Client struct {
	baseURL string
	cli     *http.Client
	metrics Metrics

	reqTimeout time.Duration
	retries    int
	retryWait  time.Duration
}

type ClientOption func(*Client)

func WithBaseURL(url string) ClientOption {
	return func(client *Client) {
		client.baseURL = strings.TrimSuffix(url, "/")
	}
}

func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.cli = c
	}
}

func WithRequestTimeout(d time.Duration) ClientOption {
	return func(client *Client) {
		client.reqTimeout = d
	}
}

// WithRetries sets how many times a request that timed out is retried,
// and the wait before the first retry. The wait doubles on each retry.
func WithRetries(n int, wait time.Duration) ClientOption {
	return func(client *Client) {
		client.retries = n
		client.retryWait = wait
	}
}

type Metrics struct {
	Draws        Counter
	EmptyDraws   Counter
	RequestError Counter
	Latency      Measure
}

func (m *Metrics) defaultUnused() {
	if m.Draws == nil {
		m.Draws = noopMetric{}
	}
	if m.EmptyDraws == nil {
		m.EmptyDraws = noopMetric{}
	}
	if m.RequestError == nil {
		m.RequestError = noopMetric{}
	}
	if m.Latency == nil {
		m.Latency = noopMetric{}
	}
}

func WithMetrics(m Metrics) ClientOption {
	return func(client *Client) {
		client.metrics = m
	}
}

func NewClient(opts ...ClientOption) *Client {
	ret := &Client{
		baseURL:    "http://localhost/spawnpick",
		cli:        http.DefaultClient,
		reqTimeout: 30 * time.Second,
		retries:    4,
		retryWait:  time.Second,
	}
	for _, opt := range opts {
		opt(ret)
	}
	ret.metrics.defaultUnused()
	if ret.cli == nil {
		panic("no http client specified")
	}
	return ret
}

func tablePath(table string, parts ...string) string {
	p := "/api/tables/" + url.PathEscape(table)
	for _, s := range parts {
		p += "/" + s
	}
	return p
}

// Draw picks a value from the table. ok is false when the table had
// nothing to choose. Draws are never retried since the server records
// every draw it handles.
func (c *Client) Draw(ctx context.Context, table string) (string, bool, error) {
	b, err := c.do(ctx, http.MethodPost, tablePath(table, "draw"), nil)
	if err != nil {
		c.metrics.RequestError.Inc()
		return "", false, err
	}
	var resp api.DrawResponse
	if err := json.Unmarshal(b, &resp); err != nil {
		return "", false, errors.Wrap(err, "decode draw")
	}
	if resp.Empty {
		c.metrics.EmptyDraws.Inc()
		return "", false, nil
	}
	c.metrics.Draws.Inc()
	return resp.Value, true, nil
}

func (c *Client) GetTables(ctx context.Context) ([]api.Table, error) {
	b, err := c.doRetry(ctx, http.MethodGet, "/api/tables", nil)
	if err != nil {
		return nil, err
	}
	var resp api.GetTablesResponse
	if err := json.Unmarshal(b, &resp); err != nil {
		return nil, errors.Wrap(err, "decode tables")
	}
	return resp.Tables, nil
}

func (c *Client) GetTable(ctx context.Context, table string) (api.Table, error) {
	b, err := c.doRetry(ctx, http.MethodGet, tablePath(table), nil)
	if err != nil {
		return api.Table{}, err
	}
	var resp api.GetTableResponse
	if err := json.Unmarshal(b, &resp); err != nil {
		return api.Table{}, errors.Wrap(err, "decode table")
	}
	return resp.Table, nil
}

// SetWeight changes the weight of value in the table, adding value if
// the table doesn't have it yet.
func (c *Client) SetWeight(ctx context.Context, table, value string, weight int) error {
	body, err := json.Marshal(api.SetWeightRequest{Value: value, Weight: weight})
	if err != nil {
		return err
	}
	_, err = c.doRetry(ctx, http.MethodPost, tablePath(table, "weight"), body)
	return err
}

func (c *Client) Clear(ctx context.Context, table string) error {
	_, err := c.doRetry(ctx, http.MethodPost, tablePath(table, "clear"), nil)
	return err
}

func (c *Client) GetCounts(ctx context.Context, table string) (map[string]int64, error) {
	b, err := c.doRetry(ctx, http.MethodGet, tablePath(table, "counts"), nil)
	if err != nil {
		return nil, err
	}
	var resp api.GetCountsResponse
	if err := json.Unmarshal(b, &resp); err != nil {
		return nil, errors.Wrap(err, "decode counts")
	}
	return resp.Counts, nil
}

func wrapHTTPError(err error) error {
	if err == nil {
		return nil
	}
	var e *url.Error
	if errors.As(err, &e) && e.Timeout() {
		return errors.Wrap(errRetryable, err.Error())
	}
	return err
}

func (c *Client) doRetry(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	retries := c.retries
	wait := c.retryWait
	for {
		resp, err := c.do(ctx, method, path, body)
		if err == nil {
			return resp, nil
		}
		if !errors.IsAny(err, context.DeadlineExceeded, errRetryable) || retries <= 0 {
			c.metrics.RequestError.Inc()
			return nil, err
		}
		select {
		case <-time.After(wait):
			wait *= 2
			retries--
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		log.Info(ctx, "retrying request", j.MKV{"path": path})
	}
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.reqTimeout)
	defer cancel()

	t0 := time.Now()
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.cli.Do(req)
	if err != nil {
		return nil, wrapHTTPError(err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response")
	}
	c.metrics.Latency.Observe(time.Since(t0).Seconds())

	s := strings.TrimSpace(string(b))
	switch resp.StatusCode {
	case http.StatusOK:
		return b, nil
	case http.StatusNotFound:
		return nil, errors.Wrap(ErrNotFound, "", j.KV("path", path))
	case http.StatusBadRequest:
		return nil, errors.Wrap(ErrBadRequest, "", j.MKV{"path": path, "response": s})
	}
	return nil, errors.New("request failed", j.MKV{"status": resp.StatusCode, "response": s})
}
