package cms

import (
	"context"
	"encoding/json"
	"fmt"

	"fstop/apperr"
)

// Document is a content-store document ready to be created. It must carry
// _type and may carry _id.
type Document map[string]any

type mutateResponse struct {
	TransactionID string `json:"transactionId"`
	Results       []struct {
		ID        string          `json:"id"`
		Operation string          `json:"operation"`
		Document  json.RawMessage `json:"document"`
	} `json:"results"`
}

func (c *Client) mutate(ctx context.Context, op string, mutation map[string]any) (string, json.RawMessage, error) {
	resp, err := c.write.R().
		SetContext(ctx).
		SetQueryParam("returnDocuments", "true").
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]any{"mutations": []map[string]any{mutation}}).
		Post(fmt.Sprintf("/v%s/data/mutate/%s", c.apiVersion, c.dataset))
	if err := classify(op, resp, err); err != nil {
		return "", nil, err
	}

	var mr mutateResponse
	if err := json.Unmarshal(resp.Body(), &mr); err != nil {
		return "", nil, apperr.E(op, apperr.UpstreamUnavailable, err)
	}
	if len(mr.Results) == 0 {
		return "", nil, nil
	}
	return mr.Results[0].ID, mr.Results[0].Document, nil
}

// Create stores doc and returns the id assigned by the store.
func (c *Client) Create(ctx context.Context, doc Document) (string, error) {
	if _, ok := doc["_type"]; !ok {
		return "", apperr.Msg("cms.Create", apperr.Validation, "document type is required")
	}
	id, _, err := c.mutate(ctx, "cms.Create", map[string]any{"create": doc})
	return id, err
}

// Patch sets fields on an existing document and decodes the updated document into out.
// A missing document is reported as NotFound.
func (c *Client) Patch(ctx context.Context, id string, set map[string]any, out any) error {
	const op = "cms.Patch"
	_, doc, err := c.mutate(ctx, op, map[string]any{
		"patch": map[string]any{"id": id, "set": set},
	})
	if err != nil {
		return err
	}
	if len(doc) == 0 || string(doc) == "null" {
		return apperr.Msg(op, apperr.NotFound, "document not found")
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(doc, out); err != nil {
		return apperr.E(op, apperr.Internal, err)
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	_, _, err := c.mutate(ctx, "cms.Delete", map[string]any{"delete": map[string]any{"id": id}})
	return err
}
