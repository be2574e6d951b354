// Package handler exposes HTTP handlers for both authenticated and public
// endpoints.  This file implements the public quoting API: anyone can price
// a prospective booking or validate a promo code without authenticating.
package handler

import (
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/mverhoeven/theater-booking/internal/model"
    "github.com/mverhoeven/theater-booking/internal/pricing"
    "github.com/mverhoeven/theater-booking/internal/repository"
)

// QuoteHandler bundles the dependencies of the quoting endpoints.
type QuoteHandler struct {
    Events *repository.EventRepo
    Shows  *repository.ShowRepo
    Calc   *pricing.Calculator
}

func NewQuoteHandler(events *repository.EventRepo, shows *repository.ShowRepo, calc *pricing.Calculator) *QuoteHandler {
    return &QuoteHandler{Events: events, Shows: shows, Calc: calc}
}

// selectionDTO mirrors model.BookingSelection on the wire.
type selectionDTO struct {
    ID       string `json:"id"`
    Quantity int    `json:"quantity"`
}

// bookingReq is the shared request shape for quoting and reservation
// creation: an event plus the booking composition.
type bookingReq struct {
    EventID     uint64         `json:"event_id"`
    Guests      int            `json:"guests"`
    Package     string         `json:"package"`
    AddOns      []selectionDTO `json:"addons"`
    Merch       []selectionDTO `json:"merch"`
    PromoCode   string         `json:"promo_code"`
    VoucherCode string         `json:"voucher_code"`
}

func toSelections(in []selectionDTO) []model.BookingSelection {
    if len(in) == 0 {
        return nil
    }
    out := make([]model.BookingSelection, 0, len(in))
    for _, s := range in {
        out = append(out, model.BookingSelection{ID: s.ID, Quantity: s.Quantity})
    }
    return out
}

// validate checks the composition fields shared by quote and
// reservation requests, returning a client-facing message or "".
func (r *bookingReq) validate() string {
    if r.EventID == 0 {
        return "event_id is required"
    }
    if r.Guests <= 0 {
        return "guests must be positive"
    }
    if !model.PackageType(strings.ToUpper(r.Package)).Valid() {
        return "package must be STANDARD or PREMIUM"
    }
    return ""
}

// resolveBooking loads the event and show for a request and converts
// it into the engine's inputs.  A nil context with a message means the
// request was rejected; an error means a lookup failed.
func (h *QuoteHandler) resolveBooking(c echo.Context, req *bookingReq) (*pricing.BookingContext, pricing.EffectiveRates, string, error) {
    ctx := c.Request().Context()
    var zero pricing.EffectiveRates

    event, err := h.Events.EventByID(ctx, req.EventID)
    if err != nil {
        return nil, zero, "", err
    }
    if event == nil {
        return nil, zero, "event not found", nil
    }
    show, err := h.Shows.ShowByID(ctx, event.ShowID)
    if err != nil {
        return nil, zero, "", err
    }
    if show == nil {
        return nil, zero, "show not found", nil
    }

    rates := pricing.ResolveRates(event, show)
    bc := &pricing.BookingContext{
        Guests:      req.Guests,
        Package:     model.PackageType(strings.ToUpper(req.Package)),
        AddOns:      toSelections(req.AddOns),
        Merch:       toSelections(req.Merch),
        PromoCode:   req.PromoCode,
        VoucherCode: req.VoucherCode,
        Date:        event.Date,
        ShowID:      event.ShowID,
        Now:         time.Now().UTC(),
    }
    return bc, rates, "", nil
}

// Quote handles POST /v1/quote.  It prices the requested composition
// and returns the full breakdown; a failing promo code is reported in
// the breakdown's promo_error, not as an HTTP error.
func (h *QuoteHandler) Quote(c echo.Context) error {
    var req bookingReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if msg := req.validate(); msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
    }

    bc, rates, msg, err := h.resolveBooking(c, &req)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if msg != "" {
        return c.JSON(http.StatusNotFound, echo.Map{"error": msg})
    }
    if rates.Zero() {
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "show has no configured prices for this date"})
    }

    bd, err := h.Calc.Totals(c.Request().Context(), *bc, rates)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "pricing failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "rates":     rates,
        "breakdown": bd,
    })
}

// promoValidateResp is the trimmed response of ValidatePromo: the
// verdict plus the discount it would produce for this composition.
type promoValidateResp struct {
    IsValid       bool   `json:"is_valid"`
    Error         string `json:"error,omitempty"`
    Code          string `json:"code,omitempty"`
    DiscountCents int64  `json:"discount_cents"`
}

// ValidatePromo handles POST /v1/promos/validate.  Because promo
// eligibility depends on the composition (party size, package, date),
// the request carries the same shape as a quote.
func (h *QuoteHandler) ValidatePromo(c echo.Context) error {
    var req bookingReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if strings.TrimSpace(req.PromoCode) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "promo_code is required"})
    }
    if msg := req.validate(); msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
    }

    bc, rates, msg, err := h.resolveBooking(c, &req)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if msg != "" {
        return c.JSON(http.StatusNotFound, echo.Map{"error": msg})
    }
    bc.VoucherCode = "" // vouchers play no part in promo validation

    bd, err := h.Calc.Totals(c.Request().Context(), *bc, rates)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "pricing failed"})
    }
    resp := promoValidateResp{
        IsValid:       bd.AppliedPromo != "",
        Error:         bd.PromoError,
        Code:          bd.AppliedPromo,
        DiscountCents: bd.DiscountCents,
    }
    return c.JSON(http.StatusOK, resp)
}
