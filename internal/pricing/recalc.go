package pricing

import (
    "context"
    "encoding/json"
    "log/slog"

    "github.com/mverhoeven/theater-booking/internal/model"
)

// Recalculator re-derives a reservation's financial snapshot after a
// later edit (party size, package, add-ons, merchandise or override
// change).  Collected payments and payment dates are preserved; the
// paid-in-full flag is re-evaluated against the fresh amount due.
type Recalculator struct {
    events EventLookup
    shows  ShowLookup
    calc   *Calculator
}

// NewRecalculator constructs a Recalculator.  All dependencies must be
// non-nil.
func NewRecalculator(events EventLookup, shows ShowLookup, calc *Calculator) *Recalculator {
    if events == nil || shows == nil || calc == nil {
        panic("nil dependency passed to NewRecalculator")
    }
    return &Recalculator{events: events, shows: shows, calc: calc}
}

// Recalculate computes a fresh financial snapshot for the reservation.
// It never fails from the caller's point of view: when the event or
// show can no longer be resolved, or the calculation itself errors,
// the reservation's prior financials are returned unchanged and the
// degraded mode is logged.
func (r *Recalculator) Recalculate(ctx context.Context, res *model.Reservation) model.ReservationFinancials {
    prior := res.Financials

    event, err := r.events.EventByID(ctx, res.EventID)
    if err != nil || event == nil {
        slog.Warn("recalculate: event unresolvable, keeping prior financials",
            "reservation", res.Reference, "event_id", res.EventID, "error", err)
        return prior
    }
    show, err := r.shows.ShowByID(ctx, event.ShowID)
    if err != nil || show == nil {
        slog.Warn("recalculate: show unresolvable, keeping prior financials",
            "reservation", res.Reference, "show_id", event.ShowID, "error", err)
        return prior
    }

    rates := ResolveRates(event, show)
    bd, err := r.calc.Totals(ctx, BookingContext{
        Guests:      res.Guests,
        Package:     res.Package,
        AddOns:      res.AddOns,
        Merch:       res.Merch,
        PromoCode:   res.PromoCode,
        VoucherCode: res.VoucherCode,
        Date:        event.Date,
        ShowID:      event.ShowID,
        Override:    res.Override,
    }, rates)
    if err != nil {
        slog.Warn("recalculate: totals failed, keeping prior financials",
            "reservation", res.Reference, "error", err)
        return prior
    }

    return model.ReservationFinancials{
        SubtotalCents:       bd.SubtotalCents,
        DiscountCents:       bd.DiscountCents,
        VoucherAppliedCents: bd.VoucherAppliedCents,
        TotalDueCents:       bd.AmountDueCents,
        PaidCents:           prior.PaidCents,
        IsPaid:              prior.PaidCents >= bd.AmountDueCents,
        PaymentDueAt:        prior.PaymentDueAt,
        PaidAt:              prior.PaidAt,
        BreakdownJSON:       marshalBreakdown(bd),
    }
}

// marshalBreakdown serializes a breakdown for the reservation's
// receipt snapshot.  Marshalling a Breakdown cannot realistically
// fail; an empty string is stored if it somehow does.
func marshalBreakdown(bd *Breakdown) string {
    b, err := json.Marshal(bd)
    if err != nil {
        slog.Error("marshal breakdown", "error", err)
        return ""
    }
    return string(b)
}
