package handler

import (
	"net/http"

	"github.com/ethioshop/ethioshop-backend/internal/repository"
	"github.com/ethioshop/ethioshop-backend/internal/seed"
	"github.com/labstack/echo/v4"
)

// SeedHandler populates reference data (categories, cities). Guarded by a
// shared secret header; disabled entirely when no secret is configured.
type SeedHandler struct {
	refRepo repository.ReferenceRepository
	secret  string
}

func NewSeedHandler(refRepo repository.ReferenceRepository, secret string) *SeedHandler {
	return &SeedHandler{refRepo: refRepo, secret: secret}
}

func (h *SeedHandler) Seed(c echo.Context) error {
	if h.secret == "" || c.Request().Header.Get("X-Seed-Secret") != h.secret {
		return c.String(http.StatusForbidden, "Forbidden")
	}
	ctx := c.Request().Context()
	categories := seed.Categories()
	locations := seed.Locations()
	if err := h.refRepo.UpsertCategories(ctx, categories); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{"success": false, "error": err.Error()})
	}
	if err := h.refRepo.UpsertLocations(ctx, locations); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{"success": false, "error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":    true,
		"categories": len(categories),
		"locations":  len(locations),
	})
}

func (h *SeedHandler) ListCategories(c echo.Context) error {
	list, err := h.refRepo.ListCategories(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch categories"))
	}
	return c.JSON(http.StatusOK, list)
}

func (h *SeedHandler) ListLocations(c echo.Context) error {
	list, err := h.refRepo.ListLocations(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch locations"))
	}
	return c.JSON(http.StatusOK, list)
}
