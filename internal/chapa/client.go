package chapa

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

const DefaultBaseURL = "https://api.chapa.co/v1"

// SignatureHeader carries the hex HMAC-SHA256 of the raw webhook body.
const SignatureHeader = "x-hmac-signature"

const EventChargeSuccess = "charge.success"

type Client struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
}

func NewClient(secretKey, baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 30 * time.Second,
		}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		secretKey:  secretKey,
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

type InitializeRequest struct {
	Amount      decimal.Decimal
	Currency    string
	Email       string
	FirstName   string
	LastName    string
	TxRef       string
	CallbackURL string
	ReturnURL   string
	Title       string
	Description string
}

type InitializeResponse struct {
	CheckoutURL string
	Raw         json.RawMessage
}

type TransferRequest struct {
	Amount        decimal.Decimal
	Currency      string
	AccountName   string
	AccountNumber string
	BankCode      string
	Reference     string
}

type TransferResponse struct {
	TransferID string
	Raw        json.RawMessage
}

// InitializeTransaction opens a hosted checkout session and returns the URL
// the buyer should be redirected to.
func (c *Client) InitializeTransaction(ctx context.Context, req InitializeRequest) (*InitializeResponse, error) {
	if c == nil {
		return nil, errors.New("chapa client is nil")
	}
	if c.secretKey == "" {
		return nil, errors.New("CHAPA_SECRET_KEY is not set")
	}

	body := map[string]interface{}{
		"amount":       req.Amount.String(),
		"currency":     req.Currency,
		"email":        req.Email,
		"first_name":   req.FirstName,
		"last_name":    req.LastName,
		"tx_ref":       req.TxRef,
		"callback_url": req.CallbackURL,
		"return_url":   req.ReturnURL,
		"customization": map[string]string{
			"title":       req.Title,
			"description": req.Description,
		},
	}

	raw, err := c.post(ctx, "/transaction/initialize", body)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Data *struct {
			CheckoutURL string `json:"checkout_url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, err
	}
	if parsed.Data == nil || parsed.Data.CheckoutURL == "" {
		return nil, errors.New("chapa response did not include checkout_url")
	}
	return &InitializeResponse{CheckoutURL: parsed.Data.CheckoutURL, Raw: raw}, nil
}

// Transfer pays out to a seller bank account.
func (c *Client) Transfer(ctx context.Context, req TransferRequest) (*TransferResponse, error) {
	if c == nil {
		return nil, errors.New("chapa client is nil")
	}
	if c.secretKey == "" {
		return nil, errors.New("CHAPA_SECRET_KEY is not set")
	}

	body := map[string]interface{}{
		"amount":         req.Amount.String(),
		"currency":       req.Currency,
		"account_name":   req.AccountName,
		"account_number": req.AccountNumber,
		"bank_code":      req.BankCode,
		"reference":      req.Reference,
	}

	raw, err := c.post(ctx, "/transfers", body)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Data *struct {
			TransferID string `json:"transfer_id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, err
	}
	resp := &TransferResponse{Raw: raw}
	if parsed.Data != nil {
		resp.TransferID = parsed.Data.TransferID
	}
	return resp, nil
}

func (c *Client) post(ctx context.Context, path string, body map[string]interface{}) (json.RawMessage, error) {
	payload, _ := json.Marshal(body)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	resBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("chapa status %d: %s", resp.StatusCode, truncate(string(resBody), 500))
	}
	return resBody, nil
}

// WebhookEvent is the gateway's event envelope.
type WebhookEvent struct {
	Event string          `json:"event"`
	Data  WebhookData     `json:"data"`
	Raw   json.RawMessage `json:"-"`
}

type WebhookData struct {
	TxRef         string `json:"tx_ref"`
	TransactionID string `json:"transaction_id"`
}

func ParseWebhookEvent(body []byte) (*WebhookEvent, error) {
	var ev WebhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, err
	}
	ev.Raw = json.RawMessage(append([]byte(nil), body...))
	return &ev, nil
}

// VerifySignature checks the webhook HMAC over the exact raw body.
func VerifySignature(secret string, body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Sign is the inverse of VerifySignature; exported for tests and tooling.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
