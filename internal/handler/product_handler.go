package handler

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/ethioshop/ethioshop-backend/internal/model"
	"github.com/ethioshop/ethioshop-backend/internal/repository"
	"github.com/ethioshop/ethioshop-backend/internal/service"
	"github.com/ethioshop/ethioshop-backend/internal/storage"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type ProductHandler struct {
	svc      service.ProductService
	uploader *storage.Uploader
}

func NewProductHandler(svc service.ProductService, uploader *storage.Uploader) *ProductHandler {
	return &ProductHandler{svc: svc, uploader: uploader}
}

type ProductResponse struct {
	ID           uint64  `json:"id"`
	SellerUID    string  `json:"sellerUid"`
	SellerName   string  `json:"sellerName"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Price        string  `json:"price"`
	CategorySlug string  `json:"categorySlug"`
	Location     string  `json:"location"`
	ImageURL     *string `json:"imageUrl,omitempty"`
	Status       string  `json:"status"`
	CreatedAt    string  `json:"createdAt"`
	UpdatedAt    string  `json:"updatedAt"`
}

type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
	Total    int64             `json:"total"`
}

type CreateProductRequest struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Price        string  `json:"price"`
	CategorySlug string  `json:"categorySlug"`
	Location     string  `json:"location"`
	ImageURL     *string `json:"imageUrl"`
}

type UpdateProductRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Price       *string `json:"price"`
	Status      *string `json:"status"`
}

func toProductResponse(p *model.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		SellerUID:    p.SellerUID,
		SellerName:   p.SellerName,
		Title:        p.Title,
		Description:  p.Description,
		Price:        p.Price.StringFixed(2),
		CategorySlug: p.CategorySlug,
		Location:     p.Location,
		ImageURL:     p.ImageURL,
		Status:       string(p.Status),
		CreatedAt:    p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    p.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *ProductHandler) Create(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	name, _ := c.Get("name").(string)
	var req CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid price"))
	}
	p, err := h.svc.Create(c.Request().Context(), uid, name, req.Title, req.Description, price, req.CategorySlug, req.Location, req.ImageURL)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
	return c.JSON(http.StatusCreated, toProductResponse(p))
}

func (h *ProductHandler) Update(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	var req UpdateProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	var price *decimal.Decimal
	if req.Price != nil {
		parsed, err := decimal.NewFromString(*req.Price)
		if err != nil {
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid price"))
		}
		price = &parsed
	}
	var status *model.ProductStatus
	if req.Status != nil {
		st := model.ProductStatus(*req.Status)
		status = &st
	}
	p, err := h.svc.Update(c.Request().Context(), id, uid, req.Title, req.Description, price, status)
	if err != nil {
		switch err {
		case service.ErrNotFound:
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "product not found"))
		case service.ErrForbidden:
			return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "not your product"))
		default:
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
		}
	}
	return c.JSON(http.StatusOK, toProductResponse(p))
}

func (h *ProductHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if err == service.ErrNotFound {
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "product not found"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch product"))
	}
	return c.JSON(http.StatusOK, toProductResponse(p))
}

func (h *ProductHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	filter := repository.ProductFilter{
		CategorySlug: c.QueryParam("category"),
		Location:     c.QueryParam("location"),
		Query:        c.QueryParam("q"),
	}
	products, total, err := h.svc.List(c.Request().Context(), filter, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch products"))
	}
	resp := ProductListResponse{
		Products: make([]ProductResponse, 0, len(products)),
		Total:    total,
	}
	for i := range products {
		resp.Products = append(resp.Products, toProductResponse(&products[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ProductHandler) ListMine(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	products, total, err := h.svc.List(c.Request().Context(), repository.ProductFilter{SellerUID: uid}, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch products"))
	}
	resp := ProductListResponse{
		Products: make([]ProductResponse, 0, len(products)),
		Total:    total,
	}
	for i := range products {
		resp.Products = append(resp.Products, toProductResponse(&products[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ProductHandler) UploadImage(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	if h.uploader == nil {
		return c.JSON(http.StatusServiceUnavailable, NewErrorResponse("storage_unavailable", "image storage is not configured"))
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "file is required"))
	}
	f, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "cannot read file"))
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "cannot read file"))
	}

	contentType := fileHeader.Header.Get("Content-Type")
	objectPath := storage.ProductImagePath(id, fileHeader.Filename)
	url, err := h.uploader.Upload(c.Request().Context(), objectPath, data, contentType)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "upload failed"))
	}

	img, err := h.svc.AddImage(c.Request().Context(), id, uid, url)
	if err != nil {
		switch err {
		case service.ErrNotFound:
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "product not found"))
		case service.ErrForbidden:
			return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "not your product"))
		default:
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
		}
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"id":       img.ID,
		"imageUrl": img.ImageURL,
	})
}
