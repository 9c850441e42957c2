package roster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"ranks-app/internal/model"
)

// StatusError is returned when the ranking service answers with a non-2xx status.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ranking service error: status=%d body=%s", e.Status, e.Body)
}

// Client talks to the remote ranking service's JSON API.
type Client struct {
	baseURL string
	http    *fasthttp.Client

	defaultTimeout time.Duration
	retryMax       int
	retryBase      time.Duration
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.defaultTimeout = d
		}
	}
}

func WithRetry(max int) Option {
	return func(c *Client) { c.retryMax = max }
}

func WithRetryBackoff(base time.Duration) Option {
	return func(c *Client) { c.retryBase = base }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &fasthttp.Client{ReadTimeout: 30 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 16},
		defaultTimeout: 10 * time.Second,
		retryMax:       3,
		retryBase:      100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type regionsResponse struct {
	Regions []model.Region `json:"regions"`
}

type playersResponse struct {
	Players []model.Player `json:"players"`
}

func (c *Client) Regions(ctx context.Context) ([]model.Region, error) {
	var resp regionsResponse
	if err := c.getJSON(ctx, "/regions", &resp); err != nil {
		return nil, err
	}
	return resp.Regions, nil
}

// Players fetches every player known to the service, across all regions.
// The region only scopes the request path.
func (c *Client) Players(ctx context.Context, region string) ([]model.Player, error) {
	region = strings.TrimSpace(region)
	if region == "" {
		return nil, errors.New("region is required")
	}
	var resp playersResponse
	if err := c.getJSON(ctx, "/"+url.PathEscape(region)+"/players?all=true", &resp); err != nil {
		return nil, err
	}
	return resp.Players, nil
}

type rankingsResponse struct {
	Ranking []model.RankingEntry `json:"ranking"`
}

// Rankings fetches the region's latest published ranking, best first.
func (c *Client) Rankings(ctx context.Context, region string) ([]model.RankingEntry, error) {
	region = strings.TrimSpace(region)
	if region == "" {
		return nil, errors.New("region is required")
	}
	var resp rankingsResponse
	if err := c.getJSON(ctx, "/"+url.PathEscape(region)+"/rankings", &resp); err != nil {
		return nil, err
	}
	return resp.Ranking, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(fasthttp.MethodGet)
	req.SetRequestURI(c.baseURL + path)
	req.Header.Set("Accept", "application/json")

	attempts := c.retryMax
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		resp.Reset()
		err := c.http.DoDeadline(req, resp, c.computeDeadline(ctx))
		if err != nil {
			lastErr = fmt.Errorf("request %s: %w", path, err)
		} else if status := resp.StatusCode(); status < 200 || status >= 300 {
			lastErr = &StatusError{Status: status, Body: truncate(string(resp.Body()), 512)}
			if !shouldRetryStatus(status) {
				return lastErr
			}
		} else {
			if err := json.Unmarshal(resp.Body(), out); err != nil {
				return fmt.Errorf("decode %s: %w", path, err)
			}
			return nil
		}
		if attempt == attempts {
			break
		}
		if err := c.sleepWithContext(ctx, c.backoffDuration(attempt)); err != nil {
			return lastErr
		}
	}
	return lastErr
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	clientDL := time.Now().Add(c.defaultTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(clientDL) {
		return dl
	}
	return clientDL
}

func (c *Client) sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (c *Client) backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	return time.Duration(1<<uint(attempt-1)) * c.retryBase
}

func shouldRetryStatus(code int) bool {
	switch code {
	case 500, 502, 503, 504:
		return true
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
