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

type ReviewHandler struct {
	svc service.ReviewService
}

func NewReviewHandler(svc service.ReviewService) *ReviewHandler {
	return &ReviewHandler{svc: svc}
}

type CreateReviewRequest struct {
	ProductID uint64 `json:"productId"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

type ReviewResponse struct {
	ID          uint64 `json:"id"`
	ProductID   uint64 `json:"productId"`
	OrderID     uint64 `json:"orderId"`
	ReviewerUID string `json:"reviewerUid"`
	Rating      int    `json:"rating"`
	Comment     string `json:"comment"`
	CreatedAt   string `json:"createdAt"`
}

func toReviewResponse(rv *model.Review) ReviewResponse {
	return ReviewResponse{
		ID:          rv.ID,
		ProductID:   rv.ProductID,
		OrderID:     rv.OrderID,
		ReviewerUID: rv.ReviewerUID,
		Rating:      rv.Rating,
		Comment:     rv.Comment,
		CreatedAt:   rv.CreatedAt.Format(time.RFC3339),
	}
}

func (h *ReviewHandler) Create(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid order id"))
	}
	var req CreateReviewRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	rv, err := h.svc.Create(c.Request().Context(), orderID, uid, req.ProductID, req.Rating, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "order not found"))
		case errors.Is(err, service.ErrForbidden):
			return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "not your order"))
		case errors.Is(err, service.ErrOrderNotDelivered):
			return c.JSON(http.StatusConflict, NewErrorResponse("conflict", "order has not been delivered"))
		case errors.Is(err, service.ErrAlreadyReviewed):
			return c.JSON(http.StatusConflict, NewErrorResponse("conflict", "order already reviewed"))
		default:
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
		}
	}
	return c.JSON(http.StatusCreated, toReviewResponse(rv))
}

func (h *ReviewHandler) ListByProduct(c echo.Context) error {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid product id"))
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	list, rating, err := h.svc.ListByProduct(c.Request().Context(), productID, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch reviews"))
	}
	resp := make([]ReviewResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toReviewResponse(&list[i]))
	}
	out := map[string]interface{}{"reviews": resp}
	if rating != nil {
		out["averageRating"] = rating.Average
		out["reviewCount"] = rating.Count
	}
	return c.JSON(http.StatusOK, out)
}
