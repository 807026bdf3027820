package handler

import (
	"net/http"

	"firebase.google.com/go/v4/auth"
	"github.com/ethioshop/ethioshop-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type UserHandler struct {
	svc        service.UserService
	authClient *auth.Client
}

func NewUserHandler(svc service.UserService, authClient *auth.Client) *UserHandler {
	return &UserHandler{svc: svc, authClient: authClient}
}

type PublicUserResponse struct {
	UID         string  `json:"uid"`
	DisplayName string  `json:"displayName"`
	PhotoURL    *string `json:"photoURL"`
}

type UpdateProfileRequest struct {
	DisplayName       string  `json:"displayName"`
	Email             string  `json:"email"`
	Phone             string  `json:"phone"`
	PhotoURL          *string `json:"photoUrl"`
	BankAccountName   string  `json:"bankAccountName"`
	BankAccountNumber string  `json:"bankAccountNumber"`
	BankCode          string  `json:"bankCode"`
}

type RegisterTokenRequest struct {
	Token string `json:"token"`
}

func (h *UserHandler) GetPublic(c echo.Context) error {
	uid := c.Param("uid")
	if uid == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid uid"))
	}
	if u, err := h.svc.Get(c.Request().Context(), uid); err == nil {
		return c.JSON(http.StatusOK, PublicUserResponse{
			UID:         u.UID,
			DisplayName: u.DisplayName,
			PhotoURL:    u.PhotoURL,
		})
	}
	if h.authClient == nil {
		return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "user not found"))
	}
	user, err := h.authClient.GetUser(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "user not found"))
	}
	return c.JSON(http.StatusOK, PublicUserResponse{
		UID:         user.UID,
		DisplayName: user.DisplayName,
		PhotoURL:    strPtrOrNil(user.PhotoURL),
	})
}

func (h *UserHandler) UpdateMe(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	u, err := h.svc.UpdateProfile(c.Request().Context(), uid, service.UpdateProfileInput{
		DisplayName:       req.DisplayName,
		Email:             req.Email,
		Phone:             req.Phone,
		PhotoURL:          req.PhotoURL,
		BankAccountName:   req.BankAccountName,
		BankAccountNumber: req.BankAccountNumber,
		BankCode:          req.BankCode,
	})
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
	return c.JSON(http.StatusOK, u)
}

func (h *UserHandler) RegisterFCMToken(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var req RegisterTokenRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if err := h.svc.RegisterFCMToken(c.Request().Context(), uid, req.Token); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func strPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
