// Package client fetches list pages from the CRM HTTP API.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/odyssey-erp/odyssey-crm/internal/listview"
	"github.com/odyssey-erp/odyssey-crm/internal/platform/httpx"
)

// maxBody bounds how much of a response is read into memory.
const maxBody = 8 << 20

// Client wraps interactions with the list endpoints of the CRM API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	header     http.Header
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithHeader adds a header sent on every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.header.Add(key, value) }
}

// New constructs a new client.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		header: make(http.Header),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetcher returns a listview.Fetcher that reads pages of T from path.
func Fetcher[T any](c *Client, path string) listview.Fetcher[T] {
	return listview.FetchFunc[T](func(ctx context.Context, query url.Values) (listview.PageResponse[T], error) {
		raw, err := c.get(ctx, path, query)
		if err != nil {
			return listview.PageResponse[T]{}, err
		}
		return listview.ParseResponse[T](raw)
	})
}

// Ping checks that the API answers on /healthz.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.get(ctx, "/healthz", nil)
	return err
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	target := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &listview.TransportError{Err: err}
	}
	req.Header.Set("Accept", "application/json")
	for k, vs := range c.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &listview.TransportError{Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, &listview.TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &listview.TransportError{StatusCode: resp.StatusCode, Detail: problemDetail(body)}
	}
	return body, nil
}

// problemDetail extracts the detail (or title) of an RFC7807 body.
func problemDetail(body []byte) string {
	var p httpx.ProblemDetail
	if err := json.Unmarshal(body, &p); err != nil {
		return ""
	}
	if p.Detail != "" {
		return p.Detail
	}
	return p.Title
}

// IsStatus reports whether err is a transport error with the given status.
func IsStatus(err error, status int) bool {
	var te *listview.TransportError
	return errors.As(err, &te) && te.StatusCode == status
}
