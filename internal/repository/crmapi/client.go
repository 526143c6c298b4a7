// internal/repository/crmapi/client.go
package crmapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"crm-insight/internal/domain/customer"
	"crm-insight/internal/normalize"
	xerrors "crm-insight/internal/pkg/errors"
)

// maxBodyBytes bounds upstream response bodies. Social posts may carry
// inline base64 images.
const maxBodyBytes = 32 << 20

// Client talks to the CRM backend. All list-typed fields come back in
// their raw comma-joined form; callers run them through normalize.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return NewClientWithHTTP(baseURL, &http.Client{Timeout: timeout})
}

func NewClientWithHTTP(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{baseURL: baseURL, http: hc}
}

// ListCustomerIDs calls GET /customer_ids.
func (c *Client) ListCustomerIDs(ctx context.Context) ([]string, error) {
	const op = "list customer ids"

	body, err := c.do(ctx, op, http.MethodGet, "/customer_ids", nil, nil)
	if err != nil {
		return nil, err
	}

	items, ok := body.([]any)
	if !ok {
		return nil, &xerrors.TransportError{Op: op, Err: fmt.Errorf("expected array, got %T", body)}
	}

	ids := make([]string, 0, len(items))
	for i, item := range items {
		switch v := item.(type) {
		case string:
			ids = append(ids, v)
		case json.Number:
			ids = append(ids, v.String())
		default:
			return nil, &xerrors.TransportError{Op: op, Err: fmt.Errorf("element %d: unexpected %T", i, item)}
		}
	}
	return ids, nil
}

// GetProfile calls GET /customer_profile.
func (c *Client) GetProfile(ctx context.Context, customerID string) (normalize.RawRecord, error) {
	const op = "get customer profile"

	body, err := c.do(ctx, op, http.MethodGet, "/customer_profile", customerQuery(customerID), nil)
	if err != nil {
		return nil, err
	}

	obj, ok := body.(map[string]any)
	if !ok {
		return nil, &xerrors.TransportError{Op: op, Err: fmt.Errorf("expected object, got %T", body)}
	}
	return normalize.RawRecord(obj), nil
}

func (c *Client) GetSupportHistory(ctx context.Context, customerID string) ([]normalize.RawRecord, error) {
	return c.history(ctx, "get support history", "/customer_support_history", customerID)
}

func (c *Client) GetPurchaseHistory(ctx context.Context, customerID string) ([]normalize.RawRecord, error) {
	return c.history(ctx, "get purchase history", "/customer_purchase_history", customerID)
}

func (c *Client) GetSocialMediaHistory(ctx context.Context, customerID string) ([]normalize.RawRecord, error) {
	return c.history(ctx, "get social media history", "/customer_social_media_history", customerID)
}

func (c *Client) AddSupportRecord(ctx context.Context, rec customer.UpstreamSupportRecord) error {
	_, err := c.do(ctx, "add support record", http.MethodPost, "/customer_support_history", customerQuery(rec.CustomerID), rec)
	return err
}

func (c *Client) AddPurchaseRecord(ctx context.Context, rec customer.UpstreamPurchaseRecord) error {
	_, err := c.do(ctx, "add purchase record", http.MethodPost, "/customer_purchase_history", customerQuery(rec.CustomerID), rec)
	return err
}

func (c *Client) AddSocialMediaRecord(ctx context.Context, rec customer.UpstreamSocialMediaRecord) error {
	_, err := c.do(ctx, "add social media record", http.MethodPost, "/customer_social_media_history", customerQuery(rec.CustomerID), rec)
	return err
}

// RunAI triggers the remote scoring job. The backend reads customer_id from
// the query string; the body carries it too.
func (c *Client) RunAI(ctx context.Context, customerID string) error {
	payload := map[string]string{"customer_id": customerID}
	_, err := c.do(ctx, "run ai", http.MethodPost, "/customer_run_ai", customerQuery(customerID), payload)
	return err
}

func (c *Client) history(ctx context.Context, op, path, customerID string) ([]normalize.RawRecord, error) {
	body, err := c.do(ctx, op, http.MethodGet, path, customerQuery(customerID), nil)
	if err != nil {
		return nil, err
	}

	items, ok := body.([]any)
	if !ok {
		return nil, &xerrors.TransportError{Op: op, Err: fmt.Errorf("expected array, got %T", body)}
	}

	records := make([]normalize.RawRecord, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			// Leave it to the normalizer to reject this element on its own.
			obj = map[string]any{}
		}
		records = append(records, normalize.RawRecord(obj))
	}
	return records, nil
}

// do sends one request and returns the decoded JSON body. A JSON object
// carrying an "error" string becomes a DomainError whatever the status.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, payload any) (any, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to encode request: %w", op, err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &xerrors.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &xerrors.TransportError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}

	body, decodeErr := decodeBody(raw)
	if decodeErr == nil {
		if msg, ok := errorMessage(body); ok {
			return nil, &xerrors.DomainError{Op: op, Message: msg}
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &xerrors.TransportError{Op: op, StatusCode: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	}
	if decodeErr != nil {
		// Writes may be acknowledged with an empty body.
		if method != http.MethodGet && len(bytes.TrimSpace(raw)) == 0 {
			return nil, nil
		}
		return nil, &xerrors.TransportError{Op: op, StatusCode: resp.StatusCode, Err: decodeErr}
	}
	return body, nil
}

func decodeBody(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return v, nil
}

func errorMessage(body any) (string, bool) {
	obj, ok := body.(map[string]any)
	if !ok {
		return "", false
	}
	msg, ok := obj["error"].(string)
	return msg, ok
}

func customerQuery(customerID string) url.Values {
	return url.Values{"customer_id": {customerID}}
}
