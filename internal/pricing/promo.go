package pricing

import (
    "context"
    "fmt"
    "math"
    "strconv"
    "strings"
    "time"

    "github.com/mverhoeven/theater-booking/internal/model"
)

// User-facing validation messages.  Each failed constraint produces a
// distinct message so booking forms can explain exactly why a code was
// rejected.
const (
    msgUnknownCode  = "unknown promo code"
    msgCodeDisabled = "this code is no longer valid"
)

// PromoContext carries everything a promo rule needs to validate and
// price itself against a booking: the party composition, the per-guest
// arrangement price actually charged, and the three category subtotals.
//
// Now is the evaluation time used for the validity window; a zero Now
// means the wall clock.  Date is the booking's event date, checked
// against blackout dates.
type PromoContext struct {
    PartySize        int
    Package          model.PackageType
    UnitPriceCents   int64
    TicketTotalCents int64
    AddOnTotalCents  int64
    MerchTotalCents  int64
    ShowID           uint64
    Date             time.Time
    Now              time.Time
}

// bookingTotal is the sum of all positive category totals, the hard
// upper bound on any discount.
func (p PromoContext) bookingTotal() int64 {
    return p.TicketTotalCents + p.AddOnTotalCents + p.MerchTotalCents
}

// scopeBase returns the calculation base selected by the rule's scope.
func (p PromoContext) scopeBase(scope model.PromoScope) int64 {
    if scope == model.ScopeEntireBooking {
        return p.bookingTotal()
    }
    return p.TicketTotalCents
}

// EvaluatePromo validates a promotional code against a booking context
// and computes its discount lines.  Failures are structured results,
// never errors: an empty code is invalid without a message, an unknown
// or inapplicable code carries the first violated constraint's
// message.  Errors are returned only when the rule lookup itself
// fails.
//
// The returned discount is clamped so it can never exceed the sum of
// arrangement, add-on and merchandise totals.
func (c *Calculator) EvaluatePromo(ctx context.Context, code string, pctx PromoContext) (*DiscountResult, error) {
    code = normalizeCode(code)
    if code == "" {
        // No code supplied is not an error state, just no discount.
        return &DiscountResult{}, nil
    }

    rule, err := c.promos.RuleByCode(ctx, code)
    if err != nil {
        return nil, fmt.Errorf("promo lookup %q: %w", code, err)
    }
    if rule == nil {
        return &DiscountResult{Error: msgUnknownCode}, nil
    }
    if !rule.Enabled {
        return &DiscountResult{Error: msgCodeDisabled}, nil
    }
    if msg := checkConstraints(&rule.Constraints, pctx); msg != "" {
        return &DiscountResult{Error: msg}, nil
    }

    line, msg := discountLine(rule, pctx)
    if msg != "" {
        return &DiscountResult{Error: msg}, nil
    }

    // Safety clamp: a discount never exceeds the total booking value.
    if limit := pctx.bookingTotal(); -line.TotalCents > limit {
        line.TotalCents = -limit
    }

    return &DiscountResult{
        IsValid:    true,
        TotalCents: -line.TotalCents,
        Lines:      []LineItem{line},
    }, nil
}

// checkConstraints validates the rule's applicability bounds in a
// fixed order; the first failing constraint wins and determines the
// message.  An empty return means all constraints passed.
func checkConstraints(cs *model.PromoConstraints, pctx PromoContext) string {
    if cs.MinPartySize > 0 && pctx.PartySize < cs.MinPartySize {
        return fmt.Sprintf("requires a party of at least %d guests", cs.MinPartySize)
    }
    if cs.MaxPartySize > 0 && pctx.PartySize > cs.MaxPartySize {
        return fmt.Sprintf("only valid for parties up to %d guests", cs.MaxPartySize)
    }
    if len(cs.EligibleShowIDs) > 0 && !containsID(cs.EligibleShowIDs, pctx.ShowID) {
        return "this code is not valid for the selected show"
    }

    now := pctx.Now
    if now.IsZero() {
        now = time.Now().UTC()
    }
    today := dateOnly(now)
    if cs.ValidFrom != nil && today.Before(dateOnly(*cs.ValidFrom)) {
        return fmt.Sprintf("this code is not valid before %s", cs.ValidFrom.Format("2 January 2006"))
    }
    if cs.ValidUntil != nil && today.After(dateOnly(*cs.ValidUntil)) {
        return fmt.Sprintf("this code expired on %s", cs.ValidUntil.Format("2 January 2006"))
    }

    if !pctx.Date.IsZero() {
        day := pctx.Date.UTC().Format("2006-01-02")
        for _, blocked := range cs.BlackoutDates {
            if blocked == day {
                return "this code is not valid on the selected date"
            }
        }
    }
    return ""
}

// discountLine computes the rule's single discount line with a
// human-readable receipt label.  The returned line has a negative
// total.  A non-empty message means the rule is inapplicable to this
// booking (currently only the INVITED_COMP package restriction).
func discountLine(rule *model.PromoRule, pctx PromoContext) (LineItem, string) {
    label := rule.Label
    if label == "" {
        label = "Promo " + rule.Code
    }

    line := LineItem{
        ID:       "promo-" + strings.ToLower(rule.Code),
        Quantity: 1,
        Category: CategoryDiscount,
    }

    switch rule.Kind {
    case model.PromoFixedPerPerson:
        amount := rule.AmountPerPersonCents * int64(pctx.PartySize)
        if base := pctx.scopeBase(rule.Scope); amount > base {
            amount = base
        }
        line.Label = fmt.Sprintf("%s (%s × %d guests)", label, euros(rule.AmountPerPersonCents), pctx.PartySize)
        line.TotalCents = -amount

    case model.PromoPercentage:
        base := pctx.scopeBase(rule.Scope)
        amount := int64(math.Round(float64(base) * rule.Percent / 100))
        line.Label = fmt.Sprintf("%s (%s%% off)", label, strconv.FormatFloat(rule.Percent, 'f', -1, 64))
        line.TotalCents = -amount

    case model.PromoFixedTotal:
        amount := rule.AmountCents
        if base := pctx.scopeBase(rule.Scope); amount > base {
            amount = base
        }
        line.Label = label
        line.TotalCents = -amount

    case model.PromoInvitedComp:
        inv := rule.Invited
        if inv == nil {
            inv = &model.InvitedConfig{Mode: model.InvitedAll, EligiblePackage: model.EligibleAny}
        }
        if !strings.EqualFold(inv.EligiblePackage, model.EligibleAny) &&
            !strings.EqualFold(inv.EligiblePackage, string(pctx.Package)) {
            return LineItem{}, fmt.Sprintf("this code is only valid for the %s arrangement",
                strings.ToLower(inv.EligiblePackage))
        }
        free := pctx.PartySize
        if inv.Mode != model.InvitedAll && inv.FreeCount < free {
            free = inv.FreeCount
        }
        // Comped tickets are capped at the arrangement total regardless
        // of the rule's scope.
        amount := int64(free) * pctx.UnitPriceCents
        if amount > pctx.TicketTotalCents {
            amount = pctx.TicketTotalCents
        }
        line.Quantity = free
        line.UnitPriceCents = -pctx.UnitPriceCents
        line.Label = fmt.Sprintf("%s (%d free tickets)", label, free)
        line.TotalCents = -amount

    default:
        return LineItem{}, msgCodeDisabled
    }

    return line, ""
}

func containsID(ids []uint64, id uint64) bool {
    for _, v := range ids {
        if v == id {
            return true
        }
    }
    return false
}
