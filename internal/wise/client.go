// Package wise is a minimal client for the Wise (TransferWise) REST API,
// covering only the endpoints the reconciliation pipeline needs.
package wise

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

const DefaultBaseURL = "https://api.transferwise.com"

// maxErrorBodyBytes bounds how much of an error response body is retained for
// diagnostics.
const maxErrorBodyBytes = 500

// APIError describes a non-2xx response from the Wise API. The pipeline treats
// these as upstream rejections, not as its own failures.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("wise api returned status %d: %s", e.StatusCode, e.Body)
}

// Client calls the Wise REST API with bearer-token authentication.
type Client struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
}

// NewClient creates a Wise API client. The token is required; there is no
// embedded fallback credential, a missing token fails closed.
func NewClient(baseURL, apiToken string) (*Client, error) {
	if apiToken == "" {
		return nil, fmt.Errorf("wise API token must be provided")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		apiToken:   apiToken,
		httpClient: http.DefaultClient,
	}, nil
}

// FetchReceipt downloads the PDF receipt for a completed transfer. The whole
// artifact is read into memory; receipts are small, single-digit KB to low MB.
// A non-2xx status is returned as *APIError with a truncated response body.
func (c *Client) FetchReceipt(ctx context.Context, transferID int64) ([]byte, error) {
	url := fmt.Sprintf("%s/v1/transfers/%d/receipt.pdf", c.baseURL, transferID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build receipt request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("receipt request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read receipt body: %w", err)
	}
	return data, nil
}
