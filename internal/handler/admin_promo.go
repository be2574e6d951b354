package handler

import (
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/mverhoeven/theater-booking/internal/model"
    "github.com/mverhoeven/theater-booking/internal/repository"
)

// PromoHandler exposes the admin CRUD surface for promo code rules.
type PromoHandler struct {
    Promos *repository.PromoRepo
}

func NewPromoHandler(promos *repository.PromoRepo) *PromoHandler {
    return &PromoHandler{Promos: promos}
}

type invitedDTO struct {
    Mode            string `json:"mode"` // ALL | LIMITED
    FreeCount       int    `json:"free_count"`
    EligiblePackage string `json:"eligible_package"` // STANDARD | PREMIUM | ANY
}

type constraintsDTO struct {
    MinPartySize    int      `json:"min_party_size"`
    MaxPartySize    int      `json:"max_party_size"`
    ValidFrom       *string  `json:"valid_from"`  // YYYY-MM-DD
    ValidUntil      *string  `json:"valid_until"` // YYYY-MM-DD
    EligibleShowIDs []uint64 `json:"eligible_show_ids"`
    BlackoutDates   []string `json:"blackout_dates"` // YYYY-MM-DD
}

type createPromoReq struct {
    Code                 string          `json:"code"`
    Label                string          `json:"label"`
    Kind                 string          `json:"kind"`
    Scope                string          `json:"scope"`
    AmountPerPersonCents int64           `json:"amount_per_person_cents"`
    Percent              float64         `json:"percent"`
    AmountCents          int64           `json:"amount_cents"`
    Invited              *invitedDTO     `json:"invited"`
    Constraints          *constraintsDTO `json:"constraints"`
    Enabled              *bool           `json:"enabled"`
}

type promoResp struct {
    ID                   uint64          `json:"id"`
    Code                 string          `json:"code"`
    Label                string          `json:"label"`
    Kind                 model.PromoKind `json:"kind"`
    Scope                model.PromoScope `json:"scope"`
    AmountPerPersonCents int64           `json:"amount_per_person_cents,omitempty"`
    Percent              float64         `json:"percent,omitempty"`
    AmountCents          int64           `json:"amount_cents,omitempty"`
    Invited              *invitedDTO     `json:"invited,omitempty"`
    Constraints          constraintsDTO  `json:"constraints"`
    Enabled              bool            `json:"enabled"`
    CreatedAt            time.Time       `json:"created_at"`
}

func toPromoResp(r *model.PromoRule) promoResp {
    out := promoResp{
        ID:                   r.ID,
        Code:                 r.Code,
        Label:                r.Label,
        Kind:                 r.Kind,
        Scope:                r.Scope,
        AmountPerPersonCents: r.AmountPerPersonCents,
        Percent:              r.Percent,
        AmountCents:          r.AmountCents,
        Enabled:              r.Enabled,
        CreatedAt:            r.CreatedAt,
        Constraints: constraintsDTO{
            MinPartySize:    r.Constraints.MinPartySize,
            MaxPartySize:    r.Constraints.MaxPartySize,
            EligibleShowIDs: r.Constraints.EligibleShowIDs,
            BlackoutDates:   r.Constraints.BlackoutDates,
        },
    }
    if r.Constraints.ValidFrom != nil {
        s := r.Constraints.ValidFrom.Format("2006-01-02")
        out.Constraints.ValidFrom = &s
    }
    if r.Constraints.ValidUntil != nil {
        s := r.Constraints.ValidUntil.Format("2006-01-02")
        out.Constraints.ValidUntil = &s
    }
    if r.Invited != nil {
        out.Invited = &invitedDTO{
            Mode:            string(r.Invited.Mode),
            FreeCount:       r.Invited.FreeCount,
            EligiblePackage: r.Invited.EligiblePackage,
        }
    }
    return out
}

// buildRule validates the request and converts it into a PromoRule,
// returning a client-facing message on invalid input.
func buildRule(req *createPromoReq) (*model.PromoRule, string) {
    code := strings.ToUpper(strings.TrimSpace(req.Code))
    if code == "" {
        return nil, "code is required"
    }
    label := strings.TrimSpace(req.Label)
    if label == "" {
        return nil, "label is required"
    }

    kind := model.PromoKind(strings.ToUpper(strings.TrimSpace(req.Kind)))
    rule := &model.PromoRule{Code: code, Label: label, Kind: kind, Scope: model.ScopeArrangementOnly, Enabled: true}
    if req.Enabled != nil {
        rule.Enabled = *req.Enabled
    }
    if s := strings.ToUpper(strings.TrimSpace(req.Scope)); s != "" {
        scope := model.PromoScope(s)
        if scope != model.ScopeArrangementOnly && scope != model.ScopeEntireBooking {
            return nil, "scope must be ARRANGEMENT_ONLY or ENTIRE_BOOKING"
        }
        rule.Scope = scope
    }

    switch kind {
    case model.PromoFixedPerPerson:
        if req.AmountPerPersonCents <= 0 {
            return nil, "amount_per_person_cents must be positive"
        }
        rule.AmountPerPersonCents = req.AmountPerPersonCents
    case model.PromoPercentage:
        if req.Percent <= 0 || req.Percent > 100 {
            return nil, "percent must be in (0, 100]"
        }
        rule.Percent = req.Percent
    case model.PromoFixedTotal:
        if req.AmountCents <= 0 {
            return nil, "amount_cents must be positive"
        }
        rule.AmountCents = req.AmountCents
    case model.PromoInvitedComp:
        if req.Invited == nil {
            return nil, "invited configuration is required for INVITED_COMP"
        }
        mode := model.InvitedMode(strings.ToUpper(strings.TrimSpace(req.Invited.Mode)))
        if mode != model.InvitedAll && mode != model.InvitedLimited {
            return nil, "invited mode must be ALL or LIMITED"
        }
        if mode == model.InvitedLimited && req.Invited.FreeCount <= 0 {
            return nil, "invited free_count must be positive for LIMITED"
        }
        pkg := strings.ToUpper(strings.TrimSpace(req.Invited.EligiblePackage))
        if pkg == "" {
            pkg = model.EligibleAny
        }
        if pkg != model.EligibleAny && !model.PackageType(pkg).Valid() {
            return nil, "invited eligible_package must be STANDARD, PREMIUM or ANY"
        }
        rule.Invited = &model.InvitedConfig{Mode: mode, FreeCount: req.Invited.FreeCount, EligiblePackage: pkg}
    default:
        return nil, "kind must be FIXED_PER_PERSON, PERCENTAGE, FIXED_TOTAL or INVITED_COMP"
    }

    if cs := req.Constraints; cs != nil {
        if cs.MinPartySize < 0 || cs.MaxPartySize < 0 {
            return nil, "party size bounds must not be negative"
        }
        if cs.MaxPartySize > 0 && cs.MinPartySize > cs.MaxPartySize {
            return nil, "min_party_size must not exceed max_party_size"
        }
        rule.Constraints.MinPartySize = cs.MinPartySize
        rule.Constraints.MaxPartySize = cs.MaxPartySize
        rule.Constraints.EligibleShowIDs = cs.EligibleShowIDs
        if cs.ValidFrom != nil {
            t, err := time.Parse("2006-01-02", *cs.ValidFrom)
            if err != nil {
                return nil, "invalid valid_from date"
            }
            rule.Constraints.ValidFrom = &t
        }
        if cs.ValidUntil != nil {
            t, err := time.Parse("2006-01-02", *cs.ValidUntil)
            if err != nil {
                return nil, "invalid valid_until date"
            }
            rule.Constraints.ValidUntil = &t
        }
        for _, day := range cs.BlackoutDates {
            if _, err := time.Parse("2006-01-02", day); err != nil {
                return nil, "invalid blackout date: " + day
            }
        }
        rule.Constraints.BlackoutDates = cs.BlackoutDates
    }
    return rule, ""
}

// Create handles POST /v1/admin/promos.
func (h *PromoHandler) Create(c echo.Context) error {
    var req createPromoReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    rule, msg := buildRule(&req)
    if msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
    }
    if err := h.Promos.Create(c.Request().Context(), rule); err != nil {
        if err == repository.ErrPromoCodeExists {
            return c.JSON(http.StatusConflict, echo.Map{"error": "promo code already exists"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create promo failed"})
    }
    return c.JSON(http.StatusCreated, toPromoResp(rule))
}

// List handles GET /v1/admin/promos.
func (h *PromoHandler) List(c echo.Context) error {
    rules, err := h.Promos.List(c.Request().Context())
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    out := make([]promoResp, 0, len(rules))
    for i := range rules {
        out = append(out, toPromoResp(&rules[i]))
    }
    return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// Get handles GET /v1/admin/promos/:id.
func (h *PromoHandler) Get(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    rule, err := h.Promos.GetByID(c.Request().Context(), id)
    if err != nil {
        if err == repository.ErrPromoNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "promo not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, toPromoResp(rule))
}

// SetEnabled handles PATCH /v1/admin/promos/:id/enabled.
func (h *PromoHandler) SetEnabled(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    var req struct {
        Enabled *bool `json:"enabled"`
    }
    if err := c.Bind(&req); err != nil || req.Enabled == nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "enabled is required"})
    }
    if err := h.Promos.SetEnabled(c.Request().Context(), id, *req.Enabled); err != nil {
        if err == repository.ErrPromoNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "promo not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
    }
    return c.NoContent(http.StatusNoContent)
}

// Delete handles DELETE /v1/admin/promos/:id.
func (h *PromoHandler) Delete(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    if err := h.Promos.Delete(c.Request().Context(), id); err != nil {
        if err == repository.ErrPromoNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "promo not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
    }
    return c.NoContent(http.StatusNoContent)
}
