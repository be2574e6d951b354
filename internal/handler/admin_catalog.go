package handler

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/mverhoeven/theater-booking/internal/model"
    "github.com/mverhoeven/theater-booking/internal/repository"
)

// CatalogHandler exposes the admin surface for the add-on and
// merchandise catalogs.
type CatalogHandler struct {
    Catalog *repository.CatalogRepo
}

func NewCatalogHandler(catalog *repository.CatalogRepo) *CatalogHandler {
    return &CatalogHandler{Catalog: catalog}
}

type catalogItemReq struct {
    ID         string `json:"id"`
    Name       string `json:"name"`
    PriceCents int64  `json:"price_cents"`
    IsActive   *bool  `json:"is_active"`
}

type catalogItemResp struct {
    ID         string `json:"id"`
    Name       string `json:"name"`
    PriceCents int64  `json:"price_cents"`
    IsActive   bool   `json:"is_active"`
}

func (r *catalogItemReq) validate() string {
    r.ID = strings.TrimSpace(r.ID)
    r.Name = strings.TrimSpace(r.Name)
    if r.ID == "" {
        return "id is required"
    }
    if r.Name == "" {
        return "name is required"
    }
    if r.PriceCents < 0 {
        return "price_cents must not be negative"
    }
    return ""
}

// UpsertAddOn handles PUT /v1/admin/catalog/addons.
func (h *CatalogHandler) UpsertAddOn(c echo.Context) error {
    var req catalogItemReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if msg := req.validate(); msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
    }
    a := &model.AddOn{ID: req.ID, Name: req.Name, PriceCents: req.PriceCents, IsActive: true}
    if req.IsActive != nil {
        a.IsActive = *req.IsActive
    }
    if err := h.Catalog.UpsertAddOn(c.Request().Context(), a); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save add-on failed"})
    }
    return c.JSON(http.StatusOK, catalogItemResp{ID: a.ID, Name: a.Name, PriceCents: a.PriceCents, IsActive: a.IsActive})
}

// UpsertMerchItem handles PUT /v1/admin/catalog/merch.
func (h *CatalogHandler) UpsertMerchItem(c echo.Context) error {
    var req catalogItemReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if msg := req.validate(); msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
    }
    m := &model.MerchItem{ID: req.ID, Name: req.Name, PriceCents: req.PriceCents, IsActive: true}
    if req.IsActive != nil {
        m.IsActive = *req.IsActive
    }
    if err := h.Catalog.UpsertMerchItem(c.Request().Context(), m); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save merch item failed"})
    }
    return c.JSON(http.StatusOK, catalogItemResp{ID: m.ID, Name: m.Name, PriceCents: m.PriceCents, IsActive: m.IsActive})
}

// ListAddOns handles GET /v1/admin/catalog/addons (inactive included).
func (h *CatalogHandler) ListAddOns(c echo.Context) error {
    addons, err := h.Catalog.ListAddOns(c.Request().Context(), false)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    out := make([]catalogItemResp, 0, len(addons))
    for _, a := range addons {
        out = append(out, catalogItemResp{ID: a.ID, Name: a.Name, PriceCents: a.PriceCents, IsActive: a.IsActive})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// ListMerch handles GET /v1/admin/catalog/merch (inactive included).
func (h *CatalogHandler) ListMerch(c echo.Context) error {
    merch, err := h.Catalog.ListMerch(c.Request().Context(), false)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    out := make([]catalogItemResp, 0, len(merch))
    for _, m := range merch {
        out = append(out, catalogItemResp{ID: m.ID, Name: m.Name, PriceCents: m.PriceCents, IsActive: m.IsActive})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": out})
}
