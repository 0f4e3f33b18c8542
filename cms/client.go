// Package cms reads course content and progress documents from the headless
// content store and writes progress and imported content back to it.
package cms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"fstop/apperr"
	"fstop/config"

	"github.com/go-resty/resty/v2"
)

// Client talks to the content store HTTP API. Content reads use the read
// token, and the CDN host when enabled. Writes, and the progress reads that
// precede them, always go to the API host with the write token.
type Client struct {
	read       *resty.Client
	write      *resty.Client
	dataset    string
	apiVersion string
}

type Option func(*clientOptions)

type clientOptions struct {
	apiURL  string
	readURL string
	timeout time.Duration
}

// WithBaseURL points both clients at url. Used by tests and self-hosted proxies.
func WithBaseURL(url string) Option {
	return func(o *clientOptions) {
		o.apiURL = url
		o.readURL = url
	}
}

// WithReadURL points content reads at url, leaving writes on the API host.
func WithReadURL(url string) Option {
	return func(o *clientOptions) { o.readURL = url }
}

func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) { o.timeout = d }
}

func NewClient(cfg config.Sanity, opts ...Option) *Client {
	o := clientOptions{
		apiURL:  fmt.Sprintf("https://%s.api.sanity.io", cfg.ProjectID),
		readURL: fmt.Sprintf("https://%s.api.sanity.io", cfg.ProjectID),
		timeout: 15 * time.Second,
	}
	if cfg.UseCDN {
		o.readURL = fmt.Sprintf("https://%s.apicdn.sanity.io", cfg.ProjectID)
	}
	for _, opt := range opts {
		opt(&o)
	}

	newResty := func(baseURL, token string) *resty.Client {
		c := resty.New().
			SetBaseURL(baseURL).
			SetTimeout(o.timeout).
			SetHeader("Accept", "application/json")
		if token != "" {
			c.SetAuthToken(token)
		}
		return c
	}

	return &Client{
		read:       newResty(o.readURL, cfg.ReadToken),
		write:      newResty(o.apiURL, cfg.WriteToken),
		dataset:    cfg.Dataset,
		apiVersion: cfg.APIVersion,
	}
}

type queryResponse struct {
	Result json.RawMessage `json:"result"`
}

// fetch runs a parameterized query against the read host and decodes its
// result into out. It reports false when the result is null.
func (c *Client) fetch(ctx context.Context, op, query string, params map[string]any, out any) (bool, error) {
	return c.query(ctx, c.read, op, query, params, out)
}

// fetchFresh runs the query against the API host, bypassing the CDN.
func (c *Client) fetchFresh(ctx context.Context, op, query string, params map[string]any, out any) (bool, error) {
	return c.query(ctx, c.write, op, query, params, out)
}

func (c *Client) query(ctx context.Context, rc *resty.Client, op, query string, params map[string]any, out any) (bool, error) {
	req := rc.R().
		SetContext(ctx).
		SetQueryParam("query", query).
		SetQueryParam("perspective", "published")
	for name, value := range params {
		encoded, err := json.Marshal(value)
		if err != nil {
			return false, apperr.E(op, apperr.Internal, err)
		}
		req.SetQueryParam("$"+name, string(encoded))
	}

	resp, err := req.Get(fmt.Sprintf("/v%s/data/query/%s", c.apiVersion, c.dataset))
	if err := classify(op, resp, err); err != nil {
		return false, err
	}

	var qr queryResponse
	if err := json.Unmarshal(resp.Body(), &qr); err != nil {
		return false, apperr.E(op, apperr.UpstreamUnavailable, err)
	}
	if len(qr.Result) == 0 || string(qr.Result) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(qr.Result, out); err != nil {
		return false, apperr.E(op, apperr.Internal, err)
	}
	return true, nil
}

// classify turns a transport error or non-2xx status into an apperr kind.
func classify(op string, resp *resty.Response, err error) error {
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return apperr.E(op, apperr.Internal, err)
		}
		return apperr.E(op, apperr.UpstreamUnavailable, err)
	}
	code := resp.StatusCode()
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusTooManyRequests || code >= 500:
		return apperr.E(op, apperr.UpstreamUnavailable, fmt.Errorf("content store returned %s", resp.Status()))
	case code == http.StatusConflict:
		return apperr.E(op, apperr.Duplicate, fmt.Errorf("content store returned %s", resp.Status()))
	case code == http.StatusNotFound:
		return apperr.E(op, apperr.NotFound, fmt.Errorf("content store returned %s", resp.Status()))
	default:
		return apperr.E(op, apperr.Internal, fmt.Errorf("content store returned %s: %s", resp.Status(), resp.String()))
	}
}
