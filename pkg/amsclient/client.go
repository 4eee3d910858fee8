/**
 * @description
 * This package provides a client for the AMS (account management system) HTTP
 * API. It encapsulates the logic for making requests to the validation,
 * confirmation, and client-details endpoints under a bounded per-call
 * timeout.
 *
 * A non-2xx response is not an error here: the outcome classifier owns the
 * meaning of every status code, so each call returns the raw status, headers
 * and body. Only transport-level faults (refused connection, DNS failure,
 * timeout) surface as a *TransportError.
 *
 * @dependencies
 * - bytes, context, encoding/json, fmt, io, net, net/http, time: Standard Go libraries.
 */
package amsclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/payflow/ams-fineract-connector/internal/domain"
)

// Config carries the AMS endpoint layout and call timeout.
type Config struct {
	BaseURL           string
	ValidationPath    string
	ConfirmationPath  string
	ClientDetailsPath string
	TenantID          string
	Timeout           time.Duration
}

// Client is a client for the AMS HTTP API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Response captures the raw outcome of one AMS call.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports whether the call returned a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// TransportError reports a connect, DNS, or timeout fault on an outbound AMS
// call. It never wraps a non-2xx response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("ams %s: transport fault: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// NewClient creates a new AMS API client. The configured timeout bounds the
// connect phase and the whole request identically.
func NewClient(cfg Config) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: cfg.Timeout,
				}).DialContext,
				ResponseHeaderTimeout: cfg.Timeout,
			},
		},
	}
}

// ValidateTransfer posts the canonical validation request to the AMS
// validation endpoint.
func (c *Client) ValidateTransfer(ctx context.Context, req *domain.ValidationRequest) (*Response, error) {
	return c.post(ctx, "validate_transfer", c.cfg.BaseURL+c.cfg.ValidationPath, req)
}

// ConfirmTransfer posts the canonical confirmation request to the AMS
// confirmation endpoint.
func (c *Client) ConfirmTransfer(ctx context.Context, req *domain.ConfirmationRequest) (*Response, error) {
	return c.post(ctx, "confirm_transfer", c.cfg.BaseURL+c.cfg.ConfirmationPath, req)
}

// GetClientDetails fetches the client details recorded for a transaction.
func (c *Client) GetClientDetails(ctx context.Context, transactionID string) (*Response, error) {
	url := c.cfg.BaseURL + c.cfg.ClientDetailsPath + "/" + transactionID

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create client details request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if c.cfg.TenantID != "" {
		httpReq.Header.Set("fineract-platform-tenantid", c.cfg.TenantID)
	}

	return c.do("get_client_details", httpReq)
}

func (c *Client) post(ctx context.Context, op, url string, payload interface{}) (*Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s request: %w", op, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", op, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	return c.do(op, httpReq)
}

func (c *Client) do(op string, req *http.Request) (*Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       bodyBytes,
	}, nil
}
