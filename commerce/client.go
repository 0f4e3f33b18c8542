// Package commerce wraps the storefront GraphQL API used for product pages,
// checkout and newsletter signup.
package commerce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"fstop/apperr"
	"fstop/config"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

var (
	// ErrDuplicateSubscription is returned when the email already has a customer record.
	ErrDuplicateSubscription = apperr.Msg("commerce.SubscribeEmail", apperr.Duplicate, "This email is already subscribed.")
	// ErrUpstream wraps every other storefront failure.
	ErrUpstream = errors.New("storefront request failed")
)

type Client struct {
	http *resty.Client
}

func NewClient(cfg config.Shopify) *Client {
	return NewClientWithURL(fmt.Sprintf("https://%s/api/%s/graphql.json", cfg.StoreDomain, cfg.APIVersion), cfg.StorefrontToken)
}

// NewClientWithURL targets an explicit GraphQL endpoint.
func NewClientWithURL(endpoint, token string) *Client {
	c := resty.New().
		SetBaseURL(endpoint).
		SetTimeout(15*time.Second).
		SetHeader("X-Shopify-Storefront-Access-Token", token).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")
	return &Client{http: c}
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// UserError is a storefront validation error returned in a mutation payload.
type UserError struct {
	Code    string   `json:"code"`
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

func (c *Client) do(ctx context.Context, op, query string, vars map[string]any, out any) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{"query": query, "variables": vars}).
		Post("")
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return apperr.E(op, apperr.Internal, err)
		}
		return apperr.E(op, apperr.UpstreamUnavailable, fmt.Errorf("%w: %v", ErrUpstream, err))
	}
	if resp.StatusCode() >= 500 || resp.StatusCode() == 429 {
		return apperr.E(op, apperr.UpstreamUnavailable, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode()))
	}
	if resp.StatusCode() != 200 {
		return apperr.E(op, apperr.Internal, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode()))
	}

	var gr graphQLResponse
	if err := json.Unmarshal(resp.Body(), &gr); err != nil {
		return apperr.E(op, apperr.Internal, fmt.Errorf("%w: %v", ErrUpstream, err))
	}
	if len(gr.Errors) > 0 {
		return apperr.E(op, apperr.Internal, fmt.Errorf("%w: %s", ErrUpstream, gr.Errors[0].Message))
	}
	if err := json.Unmarshal(gr.Data, out); err != nil {
		return apperr.E(op, apperr.Internal, fmt.Errorf("%w: %v", ErrUpstream, err))
	}
	return nil
}

// ProductGID expands a numeric product id into its global id.
func ProductGID(id string) string {
	if strings.HasPrefix(id, "gid://") {
		return id
	}
	return "gid://shopify/Product/" + id
}

// generatedPassword satisfies customerCreate for newsletter-only customers.
func generatedPassword() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:20] + "Aa1!"
}
