package pricing

import (
    "context"
    "fmt"
    "math"
    "strings"

    "github.com/mverhoeven/theater-booking/internal/model"
)

// Calculator assembles itemized booking breakdowns.  It owns no state
// beyond its injected lookups, so a single instance can serve every
// request concurrently.
type Calculator struct {
    catalog  CatalogLookup
    vouchers VoucherLookup
    promos   PromoLookup
}

// NewCalculator constructs a Calculator with the given read-only
// lookups.  All dependencies must be non-nil.
func NewCalculator(catalog CatalogLookup, vouchers VoucherLookup, promos PromoLookup) *Calculator {
    if catalog == nil || vouchers == nil || promos == nil {
        panic("nil lookup passed to NewCalculator")
    }
    return &Calculator{catalog: catalog, vouchers: vouchers, promos: promos}
}

// Totals computes the full financial breakdown for a booking context
// against the effective rates of its date.  The sequence is
// load-bearing: ticket line, add-on lines, merchandise lines,
// subtotal, exactly one discount source (manual override before promo
// code), then voucher application against the remaining balance.
//
// A failing promo code never blocks the calculation; its message is
// carried on the breakdown so the caller can render the itemized
// order together with the validation feedback.  Errors are returned
// only for infrastructure failures in the lookups.
func (c *Calculator) Totals(ctx context.Context, bc BookingContext, rates EffectiveRates) (*Breakdown, error) {
    bd := &Breakdown{Items: make([]LineItem, 0, 2+len(bc.AddOns)+len(bc.Merch))}

    ticket := c.ticketLine(bc, rates)
    bd.Items = append(bd.Items, ticket)

    addOnTotal := int64(0)
    for _, sel := range bc.AddOns {
        if sel.Quantity <= 0 {
            continue
        }
        line, err := c.addOnLine(ctx, sel, rates)
        if err != nil {
            return nil, err
        }
        if line == nil {
            continue
        }
        addOnTotal += line.TotalCents
        bd.Items = append(bd.Items, *line)
    }

    merchTotal := int64(0)
    for _, sel := range bc.Merch {
        if sel.Quantity <= 0 {
            continue
        }
        item, err := c.catalog.MerchItemByID(ctx, sel.ID)
        if err != nil {
            return nil, fmt.Errorf("merch lookup %q: %w", sel.ID, err)
        }
        if item == nil {
            // Stale catalog reference; tolerated by design.
            continue
        }
        line := LineItem{
            ID:             item.ID,
            Label:          item.Name,
            Quantity:       sel.Quantity,
            UnitPriceCents: item.PriceCents,
            TotalCents:     item.PriceCents * int64(sel.Quantity),
            Category:       CategoryMerch,
        }
        merchTotal += line.TotalCents
        bd.Items = append(bd.Items, line)
    }

    bd.SubtotalCents = ticket.TotalCents + addOnTotal + merchTotal

    switch bc.DiscountSource() {
    case DiscountManual:
        line := manualDiscountLine(bc.Override.Discount, bc.Guests, bd.SubtotalCents)
        bd.DiscountCents = -line.TotalCents
        bd.Items = append(bd.Items, line)

    case DiscountPromo:
        res, err := c.EvaluatePromo(ctx, bc.PromoCode, PromoContext{
            PartySize:        bc.Guests,
            Package:          bc.Package,
            UnitPriceCents:   ticket.UnitPriceCents,
            TicketTotalCents: ticket.TotalCents,
            AddOnTotalCents:  addOnTotal,
            MerchTotalCents:  merchTotal,
            ShowID:           bc.ShowID,
            Date:             bc.Date,
            Now:              bc.Now,
        })
        if err != nil {
            return nil, err
        }
        if res.IsValid {
            bd.DiscountCents = res.TotalCents
            bd.AppliedPromo = normalizeCode(bc.PromoCode)
            bd.Items = append(bd.Items, res.Lines...)
        } else {
            bd.PromoError = res.Error
        }
    }

    discount := bd.DiscountCents
    if discount > bd.SubtotalCents {
        discount = bd.SubtotalCents
    }
    bd.AfterDiscountCents = bd.SubtotalCents - discount

    if err := c.applyVoucher(ctx, bc.VoucherCode, bd); err != nil {
        return nil, err
    }

    bd.AmountDueCents = bd.AfterDiscountCents - bd.VoucherAppliedCents
    if bd.AmountDueCents < 0 {
        bd.AmountDueCents = 0
    }
    return bd, nil
}

// ticketLine builds the arrangement line.  An admin unit-price
// override replaces the resolved rate outright and marks the label.
func (c *Calculator) ticketLine(bc BookingContext, rates EffectiveRates) LineItem {
    unit := rates.ForPackage(bc.Package)
    label := "Standard arrangement"
    if bc.Package == model.PackagePremium {
        label = "Premium arrangement"
    }
    if bc.Override != nil && bc.Override.UnitPriceCents != nil {
        unit = *bc.Override.UnitPriceCents
        label += " (adjusted)"
    }
    return LineItem{
        ID:             "arrangement",
        Label:          label,
        Quantity:       bc.Guests,
        UnitPriceCents: unit,
        TotalCents:     unit * int64(bc.Guests),
        Category:       CategoryTicket,
    }
}

// addOnLine resolves one add-on selection.  The two drink add-ons are
// priced from the effective rates; anything else falls back to its
// catalog default.  A nil return means the ID resolved nowhere and the
// selection is skipped.
func (c *Calculator) addOnLine(ctx context.Context, sel model.BookingSelection, rates EffectiveRates) (*LineItem, error) {
    var unit int64
    label := ""

    switch sel.ID {
    case model.AddOnPreDrink:
        unit, label = rates.PreDrinkCents, "Pre-show drinks"
    case model.AddOnAfterDrink:
        unit, label = rates.AfterDrinkCents, "After-show drinks"
    }

    addon, err := c.catalog.AddOnByID(ctx, sel.ID)
    if err != nil {
        return nil, fmt.Errorf("add-on lookup %q: %w", sel.ID, err)
    }
    if addon != nil {
        label = addon.Name
        if unit == 0 && sel.ID != model.AddOnPreDrink && sel.ID != model.AddOnAfterDrink {
            unit = addon.PriceCents
        }
    }
    if label == "" {
        // Neither a known rate-mapped add-on nor a catalog entry.
        return nil, nil
    }

    return &LineItem{
        ID:             sel.ID,
        Label:          label,
        Quantity:       sel.Quantity,
        UnitPriceCents: unit,
        TotalCents:     unit * int64(sel.Quantity),
        Category:       CategoryAddOn,
    }, nil
}

// manualDiscountLine computes a staff discount against the subtotal,
// capped at the subtotal, as a single adjustment line.
func manualDiscountLine(d *model.ManualDiscount, guests int, subtotal int64) LineItem {
    var amount int64
    switch d.Type {
    case model.AdjustPerPerson:
        amount = d.AmountCents * int64(guests)
    case model.AdjustPercent:
        amount = int64(math.Round(float64(subtotal) * d.Percent / 100))
    default:
        amount = d.AmountCents
    }
    if amount > subtotal {
        amount = subtotal
    }
    label := d.Label
    if label == "" {
        label = "Manual Discount"
    }
    return LineItem{
        ID:         "manual-discount",
        Label:      label,
        Quantity:   1,
        TotalCents: -amount,
        Category:   CategoryAdjustment,
    }
}

// applyVoucher resolves the voucher code and applies its balance
// against the remaining amount due.  Use-it-or-lose-it: balance beyond
// the due amount is forfeited, recorded as VoucherLostCents.  A code
// that does not resolve, is inactive, or has no balance contributes
// nothing; rejecting such codes is the entry form's responsibility.
func (c *Calculator) applyVoucher(ctx context.Context, code string, bd *Breakdown) error {
    code = normalizeCode(code)
    if code == "" {
        return nil
    }
    v, err := c.vouchers.VoucherByCode(ctx, code)
    if err != nil {
        return fmt.Errorf("voucher lookup %q: %w", code, err)
    }
    if v == nil || !v.IsActive || v.BalanceCents <= 0 {
        return nil
    }
    applied := v.BalanceCents
    if applied > bd.AfterDiscountCents {
        applied = bd.AfterDiscountCents
    }
    bd.VoucherAppliedCents = applied
    bd.VoucherLostCents = v.BalanceCents - applied
    bd.AppliedVoucher = v.Code
    return nil
}

// normalizeCode canonicalizes user-entered codes for lookups and
// echo fields: trimmed and upper-cased.
func normalizeCode(code string) string {
    return strings.ToUpper(strings.TrimSpace(code))
}
