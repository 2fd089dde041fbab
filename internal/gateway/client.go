// Package gateway is the HTTP client for the hosted payment provider.
// The provider either confirms a mobile-money charge asynchronously or
// returns a hosted checkout URL for card payments; approval, cancel and
// decline outcomes for cards are reported through redirect navigations,
// not through this client.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrGateway wraps any network or provider failure during submission.
// No entitlement change occurs on a gateway error and the attempt
// returns to idle; retry is always viewer-initiated.
var ErrGateway = errors.New("payment gateway error")

// Client talks to the payment provider's REST API.
type Client struct {
	BaseURL       string
	MerchantToken string
	HTTPClient    *http.Client
}

// NewClient builds a gateway client with a sane request timeout.
func NewClient(baseURL, merchantToken string) *Client {
	return &Client{
		BaseURL:       baseURL,
		MerchantToken: merchantToken,
		HTTPClient:    &http.Client{Timeout: 30 * time.Second},
	}
}

// SubmitRequest is the charge request sent to the provider.  ReturnURL
// is where the hosted checkout page sends the viewer afterwards; the
// provider appends the outcome marker segment to it.
type SubmitRequest struct {
	Reference   string `json:"reference"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
	Method      string `json:"method"`
	Phone       string `json:"phone,omitempty"`
	ReturnURL   string `json:"return_url,omitempty"`
}

// SubmitResponse is the provider's reply.  RedirectURL is present only
// for card payments; mobile-money charges are fired asynchronously and
// confirmed out of band.
type SubmitResponse struct {
	RedirectURL string `json:"redirect_url,omitempty"`
}

// SubmitPayment posts a charge request.  Any transport failure or
// non-2xx reply is reported as ErrGateway with the provider's message
// attached.
func (g *Client) SubmitPayment(ctx context.Context, reqBody SubmitRequest) (SubmitResponse, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return SubmitResponse{}, fmt.Errorf("%w: encode request: %v", ErrGateway, err)
	}

	url := g.BaseURL + "/v1/charges"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return SubmitResponse{}, fmt.Errorf("%w: build request: %v", ErrGateway, err)
	}
	req.Header.Set("Authorization", "Bearer "+g.MerchantToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.HTTPClient.Do(req)
	if err != nil {
		return SubmitResponse{}, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return SubmitResponse{}, fmt.Errorf("%w: provider returned %d - %s", ErrGateway, resp.StatusCode, string(body))
	}

	var out SubmitResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return SubmitResponse{}, fmt.Errorf("%w: decode response: %v", ErrGateway, err)
	}
	return out, nil
}
