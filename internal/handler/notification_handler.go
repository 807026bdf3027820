package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ethioshop/ethioshop-backend/internal/model"
	"github.com/ethioshop/ethioshop-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type NotificationHandler struct {
	svc service.NotificationService
}

func NewNotificationHandler(svc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

type NotificationResponse struct {
	ID             uint64  `json:"id"`
	Type           string  `json:"type"`
	Title          string  `json:"title"`
	Body           string  `json:"body"`
	OrderID        *uint64 `json:"orderId,omitempty"`
	ProductID      *uint64 `json:"productId,omitempty"`
	ConversationID *uint64 `json:"conversationId,omitempty"`
	Read           bool    `json:"read"`
	CreatedAt      string  `json:"createdAt"`
}

func toNotificationResponse(n model.Notification) NotificationResponse {
	return NotificationResponse{
		ID:             n.ID,
		Type:           n.Type,
		Title:          n.Title,
		Body:           n.Body,
		OrderID:        n.OrderID,
		ProductID:      n.ProductID,
		ConversationID: n.ConversationID,
		Read:           n.ReadAt != nil,
		CreatedAt:      n.CreatedAt.Format(time.RFC3339),
	}
}

func (h *NotificationHandler) List(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	unreadOnly := c.QueryParam("unread_only") != "false"
	limit := 20
	if lStr := c.QueryParam("limit"); lStr != "" {
		if lParsed, err := strconv.Atoi(lStr); err == nil && lParsed > 0 {
			limit = lParsed
		}
	}
	list, unreadCount, err := h.svc.List(c.Request().Context(), uid, unreadOnly, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch notifications"))
	}
	resp := make([]NotificationResponse, 0, len(list))
	for _, n := range list {
		resp = append(resp, toNotificationResponse(n))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"notifications": resp,
		"unreadCount":   unreadCount,
	})
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	if err := h.svc.MarkAllRead(c.Request().Context(), uid); err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to mark read"))
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type SendPushRequest struct {
	RecipientID string            `json:"recipientId"`
	Title       string            `json:"title"`
	Body        string            `json:"body"`
	Data        map[string]string `json:"data"`
}

func (h *NotificationHandler) SendPush(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var req SendPushRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if req.RecipientID == "" || req.Title == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "recipientId and title are required"))
	}
	if err := h.svc.SendPush(c.Request().Context(), req.RecipientID, req.Title, req.Body, req.Data); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "user not found"))
		case errors.Is(err, service.ErrNoPushToken):
			return c.JSON(http.StatusConflict, NewErrorResponse("failed_precondition", "user has no push token"))
		default:
			return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "push delivery failed"))
		}
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
