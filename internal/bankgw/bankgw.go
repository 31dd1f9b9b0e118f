// Package bankgw talks to the bank/mobile-payment gateway that confirms
// incoming transfers by reference code.
package bankgw

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ventazo/backend/internal/wallet"
)

// Client implements wallet.Verifier over the gateway's JSON API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Verify(ctx context.Context, req wallet.VerificationRequest) (wallet.VerificationResult, error) {
	if c.baseURL == "" {
		return wallet.VerificationResult{}, fmt.Errorf("bank gateway not configured")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return wallet.VerificationResult{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/payments/verify", bytes.NewReader(payload))
	if err != nil {
		return wallet.VerificationResult{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return wallet.VerificationResult{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return wallet.VerificationResult{}, fmt.Errorf("bank gateway returned %d: %s", resp.StatusCode, string(body))
	}

	var result wallet.VerificationResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return wallet.VerificationResult{}, err
	}

	switch result.Outcome {
	case wallet.OutcomeConfirmed, wallet.OutcomeUnconfirmed, wallet.OutcomeRejected:
		return result, nil
	default:
		return wallet.VerificationResult{}, fmt.Errorf("bank gateway returned unknown outcome %q", result.Outcome)
	}
}

// ManualReviewVerifier is the stand-in when no gateway is configured:
// every payment comes back unconfirmed so an operator reviews it.
type ManualReviewVerifier struct{}

func (ManualReviewVerifier) Verify(_ context.Context, _ wallet.VerificationRequest) (wallet.VerificationResult, error) {
	return wallet.VerificationResult{Outcome: wallet.OutcomeUnconfirmed, Reason: "manual review required"}, nil
}
