package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ethioshop/ethioshop-backend/internal/model"
	"github.com/ethioshop/ethioshop-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	svc service.OrderService
}

func NewOrderHandler(svc service.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

type OrderItemRequest struct {
	ProductID uint64 `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type CreateOrderRequest struct {
	Items          []OrderItemRequest `json:"items"`
	DeliveryMethod string             `json:"deliveryMethod"`
	Address        string             `json:"address"`
	RecipientName  string             `json:"recipientName"`
}

type OrderItemResponse struct {
	ProductID    uint64  `json:"productId"`
	Title        string  `json:"title"`
	Quantity     int     `json:"quantity"`
	UnitPrice    string  `json:"unitPrice"`
	ThumbnailURL *string `json:"thumbnailUrl,omitempty"`
}

type OrderResponse struct {
	ID             uint64              `json:"id"`
	BuyerUID       string              `json:"buyerUid"`
	BuyerName      string              `json:"buyerName"`
	SellerUID      string              `json:"sellerUid"`
	SellerName     string              `json:"sellerName"`
	Items          []OrderItemResponse `json:"items"`
	TotalAmount    string              `json:"totalAmount"`
	ShippingCost   string              `json:"shippingCost"`
	DeliveryMethod string              `json:"deliveryMethod"`
	Address        string              `json:"address,omitempty"`
	RecipientName  string              `json:"recipientName,omitempty"`
	Status         string              `json:"status"`
	PaymentStatus  string              `json:"paymentStatus"`
	SessionRef     string              `json:"sessionRef,omitempty"`
	TransactionID  string              `json:"transactionId,omitempty"`
	TransferID     string              `json:"transferId,omitempty"`
	EscrowReleased bool                `json:"escrowReleased"`
	ShippedAt      *string             `json:"shippedAt,omitempty"`
	DeliveredAt    *string             `json:"deliveredAt,omitempty"`
	CreatedAt      string              `json:"createdAt"`
	UpdatedAt      string              `json:"updatedAt"`
}

func toOrderResponse(o *model.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemResponse{
			ProductID:    it.ProductID,
			Title:        it.Title,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice.StringFixed(2),
			ThumbnailURL: it.ThumbnailURL,
		})
	}
	var shippedAt, deliveredAt *string
	if o.ShippedAt != nil {
		v := o.ShippedAt.Format(time.RFC3339)
		shippedAt = &v
	}
	if o.DeliveredAt != nil {
		v := o.DeliveredAt.Format(time.RFC3339)
		deliveredAt = &v
	}
	return OrderResponse{
		ID:             o.ID,
		BuyerUID:       o.BuyerUID,
		BuyerName:      o.BuyerName,
		SellerUID:      o.SellerUID,
		SellerName:     o.SellerName,
		Items:          items,
		TotalAmount:    o.TotalAmount.StringFixed(2),
		ShippingCost:   o.ShippingCost.StringFixed(2),
		DeliveryMethod: string(o.DeliveryMethod),
		Address:        o.Address,
		RecipientName:  o.RecipientName,
		Status:         string(o.Status),
		PaymentStatus:  string(o.PaymentStatus),
		SessionRef:     o.SessionRef,
		TransactionID:  o.TransactionID,
		TransferID:     o.TransferID,
		EscrowReleased: o.EscrowReleased,
		ShippedAt:      shippedAt,
		DeliveredAt:    deliveredAt,
		CreatedAt:      o.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      o.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *OrderHandler) Create(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	name, _ := c.Get("name").(string)
	var req CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	in := service.CreateOrderInput{
		DeliveryMethod: model.DeliveryMethod(req.DeliveryMethod),
		Address:        req.Address,
		RecipientName:  req.RecipientName,
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, service.CreateOrderItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	o, err := h.svc.Create(c.Request().Context(), uid, name, in)
	if err != nil {
		if err == service.ErrNotFound {
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "product not found"))
		}
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
	return c.JSON(http.StatusCreated, toOrderResponse(o))
}

func (h *OrderHandler) Get(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid order id"))
	}
	o, err := h.svc.Get(c.Request().Context(), id, uid)
	if err != nil {
		switch err {
		case service.ErrNotFound:
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "order not found"))
		case service.ErrForbidden:
			return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "not allowed"))
		default:
			return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch order"))
		}
	}
	return c.JSON(http.StatusOK, toOrderResponse(o))
}

func (h *OrderHandler) transition(c echo.Context, fn func(uint64, string) (*model.Order, error)) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid order id"))
	}
	o, err := fn(id, uid)
	if err != nil {
		switch err {
		case service.ErrNotFound:
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "order not found"))
		case service.ErrForbidden:
			return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "not allowed"))
		default:
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
		}
	}
	return c.JSON(http.StatusOK, toOrderResponse(o))
}

func (h *OrderHandler) MarkShipped(c echo.Context) error {
	return h.transition(c, func(id uint64, uid string) (*model.Order, error) {
		return h.svc.MarkShipped(c.Request().Context(), id, uid)
	})
}

func (h *OrderHandler) MarkDelivered(c echo.Context) error {
	return h.transition(c, func(id uint64, uid string) (*model.Order, error) {
		return h.svc.MarkDelivered(c.Request().Context(), id, uid)
	})
}

func (h *OrderHandler) Cancel(c echo.Context) error {
	return h.transition(c, func(id uint64, uid string) (*model.Order, error) {
		return h.svc.Cancel(c.Request().Context(), id, uid)
	})
}

func (h *OrderHandler) ListMine(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	list, err := h.svc.ListByBuyer(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch orders"))
	}
	resp := make([]OrderResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toOrderResponse(&list[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *OrderHandler) ListSales(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	list, err := h.svc.ListBySeller(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch sales"))
	}
	resp := make([]OrderResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toOrderResponse(&list[i]))
	}
	return c.JSON(http.StatusOK, resp)
}
