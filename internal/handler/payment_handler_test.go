package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethioshop/ethioshop-backend/internal/chapa"
	"github.com/ethioshop/ethioshop-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPaymentService struct {
	confirmErr   error
	confirmCalls []string
}

func (s *stubPaymentService) CreateSession(ctx context.Context, orderID uint64, buyerUID, buyerEmail, returnURL string) (*service.CheckoutSession, error) {
	return &service.CheckoutSession{CheckoutURL: "https://checkout.chapa.co/c/abc", TxRef: "order-1-1"}, nil
}

func (s *stubPaymentService) ConfirmCharge(ctx context.Context, txRef, transactionID string, providerMeta []byte) error {
	s.confirmCalls = append(s.confirmCalls, txRef)
	return s.confirmErr
}

const webhookSecret = "whsec_test"

func postWebhook(h *PaymentHandler, body, signature string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/payment-webhook", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if signature != "" {
		req.Header.Set(chapa.SignatureHeader, signature)
	}
	rec := httptest.NewRecorder()
	_ = h.Webhook(e.NewContext(req, rec))
	return rec
}

func TestWebhookAppliesChargeSuccess(t *testing.T) {
	stub := &stubPaymentService{}
	h := NewPaymentHandler(stub, webhookSecret)

	body := `{"event":"charge.success","data":{"tx_ref":"order-7-1700000000000","transaction_id":"chapa-txn-7"}}`
	rec := postWebhook(h, body, chapa.Sign(webhookSecret, []byte(body)))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"order-7-1700000000000"}, stub.confirmCalls)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	stub := &stubPaymentService{}
	h := NewPaymentHandler(stub, webhookSecret)

	body := `{"event":"charge.success","data":{"tx_ref":"order-7-1","transaction_id":"txn"}}`

	// tampered body
	rec := postWebhook(h, body+" ", chapa.Sign(webhookSecret, []byte(body)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// missing signature
	rec = postWebhook(h, body, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// signed with the wrong secret
	rec = postWebhook(h, body, chapa.Sign("other-secret", []byte(body)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	assert.Empty(t, stub.confirmCalls)
}

func TestWebhookIgnoresOtherEvents(t *testing.T) {
	stub := &stubPaymentService{}
	h := NewPaymentHandler(stub, webhookSecret)

	body := `{"event":"charge.failed","data":{"tx_ref":"order-7-1","transaction_id":"txn"}}`
	rec := postWebhook(h, body, chapa.Sign(webhookSecret, []byte(body)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, stub.confirmCalls)
}

func TestWebhookRejectsMalformedPayload(t *testing.T) {
	stub := &stubPaymentService{}
	h := NewPaymentHandler(stub, webhookSecret)

	body := `{"event":`
	rec := postWebhook(h, body, chapa.Sign(webhookSecret, []byte(body)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhookUnknownReference(t *testing.T) {
	stub := &stubPaymentService{confirmErr: service.ErrNotFound}
	h := NewPaymentHandler(stub, webhookSecret)

	body := `{"event":"charge.success","data":{"tx_ref":"order-404-1","transaction_id":"txn"}}`
	rec := postWebhook(h, body, chapa.Sign(webhookSecret, []byte(body)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
