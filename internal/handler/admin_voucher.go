package handler

import (
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/mverhoeven/theater-booking/internal/model"
    "github.com/mverhoeven/theater-booking/internal/repository"
)

// VoucherHandler exposes the admin surface for stored-value vouchers.
type VoucherHandler struct {
    Vouchers *repository.VoucherRepo
}

func NewVoucherHandler(vouchers *repository.VoucherRepo) *VoucherHandler {
    return &VoucherHandler{Vouchers: vouchers}
}

type voucherResp struct {
    ID           uint64     `json:"id"`
    Code         string     `json:"code"`
    BalanceCents int64      `json:"balance_cents"`
    IsActive     bool       `json:"is_active"`
    IssuedAt     time.Time  `json:"issued_at"`
    RedeemedAt   *time.Time `json:"redeemed_at,omitempty"`
}

func toVoucherResp(v *model.Voucher) voucherResp {
    return voucherResp{
        ID:           v.ID,
        Code:         v.Code,
        BalanceCents: v.BalanceCents,
        IsActive:     v.IsActive,
        IssuedAt:     v.IssuedAt,
        RedeemedAt:   v.RedeemedAt,
    }
}

// Issue handles POST /v1/admin/vouchers.
func (h *VoucherHandler) Issue(c echo.Context) error {
    var req struct {
        Code         string `json:"code"`
        BalanceCents int64  `json:"balance_cents"`
    }
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
    if req.Code == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "code is required"})
    }
    if req.BalanceCents <= 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "balance_cents must be positive"})
    }
    v := &model.Voucher{Code: req.Code, BalanceCents: req.BalanceCents, IsActive: true}
    if err := h.Vouchers.Issue(c.Request().Context(), v); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue voucher failed"})
    }
    v.IssuedAt = time.Now().UTC()
    return c.JSON(http.StatusCreated, toVoucherResp(v))
}

// List handles GET /v1/admin/vouchers.
func (h *VoucherHandler) List(c echo.Context) error {
    vouchers, err := h.Vouchers.List(c.Request().Context())
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    out := make([]voucherResp, 0, len(vouchers))
    for i := range vouchers {
        out = append(out, toVoucherResp(&vouchers[i]))
    }
    return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// Redeem handles POST /v1/admin/vouchers/:code/redeem for manual
// redemption outside a reservation (walk-in purchases).  The full
// remaining balance is consumed.
func (h *VoucherHandler) Redeem(c echo.Context) error {
    code := strings.TrimSpace(c.Param("code"))
    if code == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "code required"})
    }
    err := h.Vouchers.Redeem(c.Request().Context(), code)
    switch err {
    case nil:
        return c.NoContent(http.StatusNoContent)
    case repository.ErrVoucherNotFound:
        return c.JSON(http.StatusNotFound, echo.Map{"error": "voucher not found"})
    case repository.ErrVoucherExhausted:
        return c.JSON(http.StatusConflict, echo.Map{"error": "voucher inactive or exhausted"})
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "redeem failed"})
    }
}

// Get handles GET /v1/admin/vouchers/:code.
func (h *VoucherHandler) Get(c echo.Context) error {
    code := strings.TrimSpace(c.Param("code"))
    if code == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "code required"})
    }
    v, err := h.Vouchers.VoucherByCode(c.Request().Context(), code)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if v == nil {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "voucher not found"})
    }
    return c.JSON(http.StatusOK, toVoucherResp(v))
}
