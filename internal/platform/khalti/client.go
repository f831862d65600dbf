// Package khalti is a minimal client for the Khalti ePayment (KPG-2) API:
// initiate a payment session and look up its status.
package khalti

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	StatusCompleted         = "Completed"
	StatusPending           = "Pending"
	StatusInitiated         = "Initiated"
	StatusRefunded          = "Refunded"
	StatusExpired           = "Expired"
	StatusUserCanceled      = "User canceled"
	StatusPartiallyRefunded = "Partially Refunded"
)

var ErrNotConfigured = errors.New("khalti: secret key not configured")

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("khalti: unexpected status %d: %s", e.StatusCode, e.Body)
}

type CustomerInfo struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type InitiateRequest struct {
	ReturnURL  string `json:"return_url"`
	WebsiteURL string `json:"website_url"`
	// Amount is in paisa.
	Amount            int64         `json:"amount"`
	PurchaseOrderID   string        `json:"purchase_order_id"`
	PurchaseOrderName string        `json:"purchase_order_name"`
	CustomerInfo      *CustomerInfo `json:"customer_info,omitempty"`
}

type InitiateResponse struct {
	Pidx       string `json:"pidx"`
	PaymentURL string `json:"payment_url"`
	ExpiresAt  string `json:"expires_at"`
	ExpiresIn  int    `json:"expires_in"`
}

type LookupResponse struct {
	Pidx          string  `json:"pidx"`
	TotalAmount   int64   `json:"total_amount"`
	Status        string  `json:"status"`
	TransactionID *string `json:"transaction_id"`
	Fee           int64   `json:"fee"`
	Refunded      bool    `json:"refunded"`
	// PurchaseOrderID is not returned by every API version.
	PurchaseOrderID string `json:"purchase_order_id,omitempty"`
}

func (r *LookupResponse) Completed() bool {
	return r != nil && r.Status == StatusCompleted
}

type Client struct {
	baseURL   string
	secretKey string
	http      *http.Client
}

// New returns a client for baseURL, e.g. https://dev.khalti.com/api/v2.
func New(baseURL, secretKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), secretKey: secretKey, http: httpClient}
}

func (c *Client) Initiate(ctx context.Context, req *InitiateRequest) (*InitiateResponse, error) {
	var out InitiateResponse
	if err := c.post(ctx, "/epayment/initiate/", req, &out); err != nil {
		return nil, err
	}
	if out.Pidx == "" || out.PaymentURL == "" {
		return nil, fmt.Errorf("khalti: initiate response missing pidx or payment_url")
	}
	return &out, nil
}

func (c *Client) Lookup(ctx context.Context, pidx string) (*LookupResponse, error) {
	if pidx == "" {
		return nil, fmt.Errorf("khalti: empty pidx")
	}
	var out LookupResponse
	if err := c.post(ctx, "/epayment/lookup/", map[string]string{"pidx": pidx}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	if c.secretKey == "" {
		return ErrNotConfigured
	}
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("khalti: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("khalti: build request: %w", err)
	}
	req.Header.Set("Authorization", "Key "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("khalti: %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("khalti: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("khalti: decode response: %w", err)
	}
	return nil
}
