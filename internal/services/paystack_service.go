package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"kudipay/internal/models"

	"github.com/shopspring/decimal"
)

type PaystackConfig struct {
	SecretKey string
	BaseURL   string
	Timeout   time.Duration
}

type PaystackClient struct {
	cfg    PaystackConfig
	client *http.Client
}

func NewPaystackClient(cfg PaystackConfig) (*PaystackClient, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("paystack secret key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.paystack.co"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &PaystackClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type paystackResponse struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (p *PaystackClient) doRequest(ctx context.Context, method, endpoint string, body interface{}) (*paystackResponse, error) {
	endpointURL := fmt.Sprintf("%s%s", p.cfg.BaseURL, endpoint)
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpointURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Add("Authorization", "Bearer "+p.cfg.SecretKey)
	req.Header.Add("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		// No response means the outcome is unknown: the gateway may or may
		// not have accepted the request before the timeout.
		return nil, &models.GatewayError{Message: err.Error(), Ambiguous: true}
	}
	defer resp.Body.Close()

	var res paystackResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, &models.GatewayError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("undecodable response: %v", err), Ambiguous: true}
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, &models.GatewayError{StatusCode: resp.StatusCode, Message: res.Message}
	}
	if !res.Status {
		return nil, &models.GatewayError{StatusCode: resp.StatusCode, Message: res.Message}
	}
	return &res, nil
}

// CreateTransferRecipient registers the beneficiary bank account with
// Paystack and returns the recipient code for the transfer call.
func (p *PaystackClient) CreateTransferRecipient(ctx context.Context, accountNumber, bankCode, name string) (string, error) {
	form := map[string]interface{}{
		"type":           "nuban",
		"name":           name,
		"account_number": accountNumber,
		"bank_code":      bankCode,
		"currency":       "NGN",
	}
	res, err := p.doRequest(ctx, "POST", "/transferrecipient", form)
	if err != nil {
		return "", err
	}

	var data struct {
		RecipientCode string `json:"recipient_code"`
	}
	if err := json.Unmarshal(res.Data, &data); err != nil || data.RecipientCode == "" {
		return "", &models.GatewayError{Message: "recipient_code missing from response"}
	}
	return data.RecipientCode, nil
}

// InitiateTransfer asks Paystack to pay out from the balance. The returned
// transfer code is the correlation id later matched by the webhook.
func (p *PaystackClient) InitiateTransfer(ctx context.Context, recipientCode string, amount decimal.Decimal, reason string) (string, error) {
	form := map[string]interface{}{
		"source":    "balance",
		"amount":    ToKobo(amount),
		"recipient": recipientCode,
		"reason":    reason,
	}
	res, err := p.doRequest(ctx, "POST", "/transfer", form)
	if err != nil {
		return "", err
	}

	var data struct {
		TransferCode string `json:"transfer_code"`
	}
	if err := json.Unmarshal(res.Data, &data); err != nil || data.TransferCode == "" {
		return "", &models.GatewayError{Message: "transfer_code missing from response"}
	}
	return data.TransferCode, nil
}

// ToKobo converts naira to Paystack's integer minor units, rounding half-up
// at kobo granularity.
func ToKobo(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
