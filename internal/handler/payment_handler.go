package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/ethioshop/ethioshop-backend/internal/chapa"
	"github.com/ethioshop/ethioshop-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type PaymentHandler struct {
	svc           service.PaymentService
	webhookSecret string
}

func NewPaymentHandler(svc service.PaymentService, webhookSecret string) *PaymentHandler {
	return &PaymentHandler{svc: svc, webhookSecret: webhookSecret}
}

type CreateSessionRequest struct {
	ReturnURL string `json:"returnUrl"`
}

type CreateSessionResponse struct {
	CheckoutURL          string `json:"checkoutUrl"`
	TransactionReference string `json:"transactionReference"`
}

func (h *PaymentHandler) CreateSession(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	email, _ := c.Get("email").(string)
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid order id"))
	}
	var req CreateSessionRequest
	_ = c.Bind(&req)

	session, err := h.svc.CreateSession(c.Request().Context(), orderID, uid, email, req.ReturnURL)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "order not found"))
		case errors.Is(err, service.ErrForbidden):
			return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "not your order"))
		case errors.Is(err, service.ErrPaymentNotPending):
			return c.JSON(http.StatusConflict, NewErrorResponse("conflict", "payment already initiated or completed"))
		case errors.Is(err, service.ErrGateway):
			return c.JSON(http.StatusBadGateway, NewErrorResponse("internal_error", err.Error()))
		default:
			return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "payment initialization failed"))
		}
	}
	return c.JSON(http.StatusOK, CreateSessionResponse{
		CheckoutURL:          session.CheckoutURL,
		TransactionReference: session.TxRef,
	})
}

// Webhook handles Chapa charge callbacks. Signature verification runs over
// the exact raw body before anything is parsed.
func (h *PaymentHandler) Webhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.String(http.StatusBadRequest, "cannot read body")
	}
	signature := c.Request().Header.Get(chapa.SignatureHeader)
	if !chapa.VerifySignature(h.webhookSecret, body, signature) {
		return c.String(http.StatusUnauthorized, "Unauthorized")
	}

	ev, err := chapa.ParseWebhookEvent(body)
	if err != nil {
		return c.String(http.StatusBadRequest, "invalid payload")
	}
	if ev.Event != chapa.EventChargeSuccess {
		return c.String(http.StatusOK, "OK")
	}

	if err := h.svc.ConfirmCharge(c.Request().Context(), ev.Data.TxRef, ev.Data.TransactionID, ev.Raw); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.String(http.StatusNotFound, "Payment not found")
		}
		return c.String(http.StatusInternalServerError, "Internal Server Error")
	}
	return c.String(http.StatusOK, "OK")
}
