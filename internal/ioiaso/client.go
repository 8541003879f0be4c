// Package ioiaso implements the remote platform API over HTTP.
// This is an impure I/O package that implements contracts defined in
// pkg/iaso.
package ioiaso

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aanoble/openhexa-pipelines-iaso/pkg/config"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/iaso"
	"golang.org/x/time/rate"
)

// Client is a rate-limited platform client. It has to be authenticated
// before use.
type Client struct {
	cfg     config.IasoConfig
	http    *http.Client
	limiter *rate.Limiter
	token   string
	userID  string
}

// New creates a client for the platform described by cfg.
func New(cfg config.IasoConfig) *Client {
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
	}
}

var _ iaso.API = (*Client)(nil)

type request struct {
	method string
	// path is relative to the base URL unless it is an absolute URL.
	path        string
	query       url.Values
	body        []byte
	contentType string
	anonymous   bool
}

type response struct {
	status int
	body   []byte
}

func (r *response) isSuccess() bool {
	return r.status >= 200 && r.status < 300
}

func (r *response) decode(target any) error {
	return json.Unmarshal(r.body, target)
}

// do sends a request. GET requests are retried after transport errors
// and 429/5xx answers, other methods are sent once.
func (c *Client) do(ctx context.Context, req request) (*response, error) {
	retries := 0
	if req.method == http.MethodGet {
		retries = c.cfg.MaxRetries
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * 100 * time.Millisecond
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		resp, err := c.doOnce(ctx, req)
		if err == nil && resp.status != http.StatusTooManyRequests &&
			resp.status < 500 {
			return resp, nil
		}
		if err == nil {
			lastErr = statusError(req, resp)
			if attempt == retries {
				return resp, nil
			}
		} else {
			lastErr = err
		}
		slog.Debug("Retrying request",
			"method", req.method, "path", req.path,
			"attempt", attempt+1, "error", lastErr)
	}
	if retries == 0 {
		return nil, lastErr
	}
	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Client) doOnce(ctx context.Context, req request) (*response, error) {
	u := req.path
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		u = c.cfg.URL + "/" + strings.TrimPrefix(req.path, "/")
	}
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	if !req.anonymous && c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return &response{status: resp.StatusCode, body: data}, nil
}

func (c *Client) getJSON(
	ctx context.Context,
	path string,
	query url.Values,
	target any,
) error {
	req := request{method: http.MethodGet, path: path, query: query}
	resp, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	if !resp.isSuccess() {
		return statusError(req, resp)
	}
	if err = resp.decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) sendJSON(
	ctx context.Context,
	method, path string,
	query url.Values,
	payload any,
) (*response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal body: %w", err)
	}
	return c.do(ctx, request{
		method:      method,
		path:        path,
		query:       query,
		body:        data,
		contentType: "application/json",
	})
}

func (c *Client) sendFile(
	ctx context.Context,
	path, field, name string,
	doc []byte,
) (*response, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, name)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err = part.Write(doc); err != nil {
		return nil, fmt.Errorf("write form file: %w", err)
	}
	if err = w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}
	return c.do(ctx, request{
		method:      http.MethodPost,
		path:        path,
		body:        buf.Bytes(),
		contentType: w.FormDataContentType(),
	})
}

func statusError(req request, resp *response) error {
	body := string(resp.body)
	if len(body) > 500 {
		body = body[:500]
	}
	return &iaso.StatusError{
		Method: req.method,
		Path:   req.path,
		Status: resp.status,
		Body:   body,
	}
}
