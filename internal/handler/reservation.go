package handler

import (
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"

    "github.com/mverhoeven/theater-booking/internal/model"
    "github.com/mverhoeven/theater-booking/internal/pricing"
    "github.com/mverhoeven/theater-booking/internal/queue"
    "github.com/mverhoeven/theater-booking/internal/repository"
    queuepublisher "github.com/mverhoeven/theater-booking/internal/service"
)

// ReservationHandler bundles dependencies for the staff reservation
// endpoints: creating, inspecting and editing bookings, recording
// payments and confirming or cancelling them.
type ReservationHandler struct {
    Reservations *repository.ReservationRepo
    Events       *repository.EventRepo
    Shows        *repository.ShowRepo
    Vouchers     *repository.VoucherRepo
    Calc         *pricing.Calculator
    Recalc       *pricing.Recalculator
}

func NewReservationHandler(res *repository.ReservationRepo, events *repository.EventRepo,
    shows *repository.ShowRepo, vouchers *repository.VoucherRepo,
    calc *pricing.Calculator, recalc *pricing.Recalculator) *ReservationHandler {
    return &ReservationHandler{
        Reservations: res, Events: events, Shows: shows, Vouchers: vouchers,
        Calc: calc, Recalc: recalc,
    }
}

// ----- DTOs -----

type manualDiscountDTO struct {
    Type        string  `json:"type"` // FIXED | PERCENT | PER_PERSON
    AmountCents int64   `json:"amount_cents"`
    Percent     float64 `json:"percent"`
    Label       string  `json:"label"`
}

type overrideDTO struct {
    UnitPriceCents *int64             `json:"unit_price_cents"`
    Discount       *manualDiscountDTO `json:"discount"`
    Reason         string             `json:"reason"`
}

// toModel converts the DTO, returning a client-facing message on
// invalid input.
func (o *overrideDTO) toModel() (*model.AdminOverride, string) {
    if o == nil {
        return nil, ""
    }
    ov := &model.AdminOverride{UnitPriceCents: o.UnitPriceCents, Reason: strings.TrimSpace(o.Reason)}
    if o.Discount != nil {
        t := model.AdjustmentType(strings.ToUpper(strings.TrimSpace(o.Discount.Type)))
        switch t {
        case model.AdjustFixed, model.AdjustPercent, model.AdjustPerPerson:
        default:
            return nil, "override discount type must be FIXED, PERCENT or PER_PERSON"
        }
        ov.Discount = &model.ManualDiscount{
            Type:        t,
            AmountCents: o.Discount.AmountCents,
            Percent:     o.Discount.Percent,
            Label:       strings.TrimSpace(o.Discount.Label),
        }
    }
    if !ov.Active() {
        return nil, ""
    }
    if ov.Reason == "" {
        return nil, "override reason is required"
    }
    return ov, ""
}

type createReservationReq struct {
    bookingReq
    CustomerName  string       `json:"customer_name"`
    CustomerEmail string       `json:"customer_email"`
    PaymentDueAt  *time.Time   `json:"payment_due_at"`
    Override      *overrideDTO `json:"override"`
}

type updateReservationReq struct {
    Guests      *int           `json:"guests"`
    Package     *string        `json:"package"`
    AddOns      []selectionDTO `json:"addons"`
    Merch       []selectionDTO `json:"merch"`
    PromoCode   *string        `json:"promo_code"`
    VoucherCode *string        `json:"voucher_code"`
    Override    *overrideDTO   `json:"override"`
    ClearOverride bool         `json:"clear_override"`
}

type reservationResp struct {
    ID            uint64                      `json:"id"`
    Reference     string                      `json:"reference"`
    EventID       uint64                      `json:"event_id"`
    ShowID        uint64                      `json:"show_id"`
    CustomerName  string                      `json:"customer_name"`
    CustomerEmail string                      `json:"customer_email"`
    Guests        int                         `json:"guests"`
    Package       model.PackageType           `json:"package"`
    AddOns        []selectionDTO              `json:"addons"`
    Merch         []selectionDTO              `json:"merch"`
    PromoCode     string                      `json:"promo_code,omitempty"`
    VoucherCode   string                      `json:"voucher_code,omitempty"`
    Status        string                      `json:"status"`
    Financials    reservationFinancialsResp   `json:"financials"`
    CreatedAt     time.Time                   `json:"created_at"`
}

type reservationFinancialsResp struct {
    SubtotalCents       int64      `json:"subtotal_cents"`
    DiscountCents       int64      `json:"discount_cents"`
    VoucherAppliedCents int64      `json:"voucher_applied_cents"`
    TotalDueCents       int64      `json:"total_due_cents"`
    PaidCents           int64      `json:"paid_cents"`
    OutstandingCents    int64      `json:"outstanding_cents"`
    IsPaid              bool       `json:"is_paid"`
    PaymentDueAt        *time.Time `json:"payment_due_at,omitempty"`
    PaidAt              *time.Time `json:"paid_at,omitempty"`
}

func toSelectionDTOs(in []model.BookingSelection) []selectionDTO {
    out := make([]selectionDTO, 0, len(in))
    for _, s := range in {
        out = append(out, selectionDTO{ID: s.ID, Quantity: s.Quantity})
    }
    return out
}

func toReservationResp(r *model.Reservation) reservationResp {
    fin := r.Financials
    outstanding := fin.TotalDueCents - fin.PaidCents
    if outstanding < 0 {
        outstanding = 0
    }
    return reservationResp{
        ID:            r.ID,
        Reference:     r.Reference,
        EventID:       r.EventID,
        ShowID:        r.ShowID,
        CustomerName:  r.CustomerName,
        CustomerEmail: r.CustomerEmail,
        Guests:        r.Guests,
        Package:       r.Package,
        AddOns:        toSelectionDTOs(r.AddOns),
        Merch:         toSelectionDTOs(r.Merch),
        PromoCode:     r.PromoCode,
        VoucherCode:   r.VoucherCode,
        Status:        r.Status,
        Financials: reservationFinancialsResp{
            SubtotalCents:       fin.SubtotalCents,
            DiscountCents:       fin.DiscountCents,
            VoucherAppliedCents: fin.VoucherAppliedCents,
            TotalDueCents:       fin.TotalDueCents,
            PaidCents:           fin.PaidCents,
            OutstandingCents:    outstanding,
            IsPaid:              fin.IsPaid,
            PaymentDueAt:        fin.PaymentDueAt,
            PaidAt:              fin.PaidAt,
        },
        CreatedAt: r.CreatedAt,
    }
}

// ----- Handlers -----

// Create handles POST /v1/reservations.  It prices the requested
// composition and persists the reservation as PENDING.  A failing
// promo code rejects the request so staff can correct it instead of
// silently booking without the discount.
func (h *ReservationHandler) Create(c echo.Context) error {
    var req createReservationReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if msg := req.validate(); msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
    }
    req.CustomerName = strings.TrimSpace(req.CustomerName)
    if req.CustomerName == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "customer_name is required"})
    }
    override, msg := req.Override.toModel()
    if msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
    }

    ctx := c.Request().Context()
    event, err := h.Events.EventByID(ctx, req.EventID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if event == nil {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
    }
    show, err := h.Shows.ShowByID(ctx, event.ShowID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if show == nil || !show.IsActive {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
    }

    rates := pricing.ResolveRates(event, show)
    if rates.Zero() && (override == nil || override.UnitPriceCents == nil) {
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "show has no configured prices for this date"})
    }

    bc := pricing.BookingContext{
        Guests:      req.Guests,
        Package:     model.PackageType(strings.ToUpper(req.Package)),
        AddOns:      toSelections(req.AddOns),
        Merch:       toSelections(req.Merch),
        PromoCode:   req.PromoCode,
        VoucherCode: req.VoucherCode,
        Date:        event.Date,
        ShowID:      event.ShowID,
        Override:    override,
        Now:         time.Now().UTC(),
    }
    bd, err := h.Calc.Totals(ctx, bc, rates)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "pricing failed"})
    }
    if bd.PromoError != "" {
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": bd.PromoError})
    }

    res := &model.Reservation{
        Reference:     uuid.NewString(),
        EventID:       event.ID,
        ShowID:        event.ShowID,
        CustomerName:  req.CustomerName,
        CustomerEmail: strings.TrimSpace(req.CustomerEmail),
        Guests:        bc.Guests,
        Package:       bc.Package,
        AddOns:        bc.AddOns,
        Merch:         bc.Merch,
        PromoCode:     strings.ToUpper(strings.TrimSpace(req.PromoCode)),
        VoucherCode:   strings.ToUpper(strings.TrimSpace(req.VoucherCode)),
        Override:      override,
        Status:        repository.ReservationPending,
        Financials: model.ReservationFinancials{
            SubtotalCents:       bd.SubtotalCents,
            DiscountCents:       bd.DiscountCents,
            VoucherAppliedCents: bd.VoucherAppliedCents,
            TotalDueCents:       bd.AmountDueCents,
            PaymentDueAt:        req.PaymentDueAt,
            BreakdownJSON:       marshalBreakdownJSON(bd),
        },
    }
    if err := h.Reservations.Create(ctx, res); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create reservation failed"})
    }
    return c.JSON(http.StatusCreated, toReservationResp(res))
}

// Quote handles POST /v1/reservations/quote: the staff variant of the
// public quote that additionally accepts an administrative override,
// so the desk can preview an adjusted price before booking it.
func (h *ReservationHandler) Quote(c echo.Context) error {
    var req createReservationReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if msg := req.validate(); msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
    }
    override, msg := req.Override.toModel()
    if msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
    }

    ctx := c.Request().Context()
    event, err := h.Events.EventByID(ctx, req.EventID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if event == nil {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
    }
    show, err := h.Shows.ShowByID(ctx, event.ShowID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if show == nil {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
    }

    rates := pricing.ResolveRates(event, show)
    bd, err := h.Calc.Totals(ctx, pricing.BookingContext{
        Guests:      req.Guests,
        Package:     model.PackageType(strings.ToUpper(req.Package)),
        AddOns:      toSelections(req.AddOns),
        Merch:       toSelections(req.Merch),
        PromoCode:   req.PromoCode,
        VoucherCode: req.VoucherCode,
        Date:        event.Date,
        ShowID:      event.ShowID,
        Override:    override,
        Now:         time.Now().UTC(),
    }, rates)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "pricing failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"rates": rates, "breakdown": bd})
}

// Get handles GET /v1/reservations/:id.
func (h *ReservationHandler) Get(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    res, err := h.Reservations.GetByID(c.Request().Context(), id)
    if err != nil {
        if err == repository.ErrReservationNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, toReservationResp(res))
}

// GetByReference handles GET /v1/reservations/by-reference/:ref.
func (h *ReservationHandler) GetByReference(c echo.Context) error {
    ref := strings.TrimSpace(c.Param("ref"))
    if ref == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "reference required"})
    }
    res, err := h.Reservations.GetByReference(c.Request().Context(), ref)
    if err != nil {
        if err == repository.ErrReservationNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, toReservationResp(res))
}

// List handles GET /v1/reservations, optionally filtered by
// ?event_id=.
func (h *ReservationHandler) List(c echo.Context) error {
    ctx := c.Request().Context()
    var (
        items []model.Reservation
        err   error
    )
    if v := c.QueryParam("event_id"); v != "" {
        eventID, perr := strconv.ParseUint(v, 10, 64)
        if perr != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event_id"})
        }
        items, err = h.Reservations.ListByEvent(ctx, eventID)
    } else {
        limit, _ := strconv.Atoi(c.QueryParam("limit"))
        items, err = h.Reservations.ListRecent(ctx, limit)
    }
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    out := make([]reservationResp, 0, len(items))
    for i := range items {
        out = append(out, toReservationResp(&items[i]))
    }
    return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// Update handles PATCH /v1/reservations/:id.  Changed composition
// fields are applied and the financial snapshot is recalculated;
// payments already collected are preserved.
func (h *ReservationHandler) Update(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    var req updateReservationReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }

    ctx := c.Request().Context()
    res, err := h.Reservations.GetByID(ctx, id)
    if err != nil {
        if err == repository.ErrReservationNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if res.Status == repository.ReservationCancelled {
        return c.JSON(http.StatusConflict, echo.Map{"error": "reservation is cancelled"})
    }

    if req.Guests != nil {
        if *req.Guests <= 0 {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "guests must be positive"})
        }
        res.Guests = *req.Guests
    }
    if req.Package != nil {
        p := model.PackageType(strings.ToUpper(strings.TrimSpace(*req.Package)))
        if !p.Valid() {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "package must be STANDARD or PREMIUM"})
        }
        res.Package = p
    }
    if req.AddOns != nil {
        res.AddOns = toSelections(req.AddOns)
    }
    if req.Merch != nil {
        res.Merch = toSelections(req.Merch)
    }
    if req.PromoCode != nil {
        res.PromoCode = strings.ToUpper(strings.TrimSpace(*req.PromoCode))
    }
    if req.VoucherCode != nil {
        res.VoucherCode = strings.ToUpper(strings.TrimSpace(*req.VoucherCode))
    }
    if req.ClearOverride {
        res.Override = nil
    } else if req.Override != nil {
        override, msg := req.Override.toModel()
        if msg != "" {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
        }
        res.Override = override
    }

    res.Financials = h.Recalc.Recalculate(ctx, res)
    if err := h.Reservations.UpdateComposition(ctx, res); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
    }
    fresh, err := h.Reservations.GetByID(ctx, id)
    if err != nil {
        return c.JSON(http.StatusOK, toReservationResp(res))
    }
    return c.JSON(http.StatusOK, toReservationResp(fresh))
}

// RecordPayment handles POST /v1/reservations/:id/payments.
func (h *ReservationHandler) RecordPayment(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    var req struct {
        AmountCents int64 `json:"amount_cents"`
    }
    if err := c.Bind(&req); err != nil || req.AmountCents <= 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount_cents must be positive"})
    }
    ctx := c.Request().Context()
    if err := h.Reservations.RecordPayment(ctx, id, req.AmountCents); err != nil {
        if err == repository.ErrReservationNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "record payment failed"})
    }
    fresh, err := h.Reservations.GetByID(ctx, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, toReservationResp(fresh))
}

// Confirm handles POST /v1/reservations/:id/confirm.  Confirming
// redeems the voucher (the unused remainder is forfeited) and
// publishes a reservation.confirmed event; a broker outage never
// blocks the confirmation.
func (h *ReservationHandler) Confirm(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    ctx := c.Request().Context()
    res, err := h.Reservations.GetByID(ctx, id)
    if err != nil {
        if err == repository.ErrReservationNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    switch res.Status {
    case repository.ReservationConfirmed:
        return c.JSON(http.StatusConflict, echo.Map{"error": "reservation already confirmed"})
    case repository.ReservationCancelled:
        return c.JSON(http.StatusConflict, echo.Map{"error": "reservation is cancelled"})
    }

    if res.VoucherCode != "" && res.Financials.VoucherAppliedCents > 0 {
        if err := h.Vouchers.Redeem(ctx, res.VoucherCode); err != nil &&
            err != repository.ErrVoucherNotFound && err != repository.ErrVoucherExhausted {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "voucher redemption failed"})
        }
    }
    if err := h.Reservations.UpdateStatus(ctx, id, repository.ReservationConfirmed); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "confirm failed"})
    }

    event, _ := h.Events.EventByID(ctx, res.EventID)
    showTitle := ""
    eventDate := ""
    if event != nil {
        eventDate = event.Date.Format("2006-01-02")
        if show, err := h.Shows.ShowByID(ctx, event.ShowID); err == nil && show != nil {
            showTitle = show.Name
        }
    }
    go func(ev queue.ReservationConfirmedEvent) {
        pubCtx, cancel := contextWithTimeout()
        defer cancel()
        _ = queuepublisher.PublishReservationConfirmed(pubCtx, ev)
    }(queue.ReservationConfirmedEvent{
        ReservationID:    res.ID,
        Reference:        res.Reference,
        EventID:          res.EventID,
        ShowID:           res.ShowID,
        ShowTitle:        showTitle,
        EventDate:        eventDate,
        CustomerName:     res.CustomerName,
        Guests:           res.Guests,
        Package:          string(res.Package),
        SubtotalCents:    res.Financials.SubtotalCents,
        DiscountCents:    res.Financials.DiscountCents,
        VoucherCents:     res.Financials.VoucherAppliedCents,
        TotalDueCents:    res.Financials.TotalDueCents,
        AppliedPromoCode: res.PromoCode,
        ConfirmedAt:      time.Now().UTC().Format(time.RFC3339),
    })

    fresh, err := h.Reservations.GetByID(ctx, id)
    if err != nil {
        res.Status = repository.ReservationConfirmed
        return c.JSON(http.StatusOK, toReservationResp(res))
    }
    return c.JSON(http.StatusOK, toReservationResp(fresh))
}

// Cancel handles POST /v1/reservations/:id/cancel.
func (h *ReservationHandler) Cancel(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    ctx := c.Request().Context()
    if err := h.Reservations.UpdateStatus(ctx, id, repository.ReservationCancelled); err != nil {
        if err == repository.ErrReservationNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
    }
    return c.NoContent(http.StatusNoContent)
}
