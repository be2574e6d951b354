// Package pricing implements the venue's pricing and discount engine.
// All functions are pure, synchronous computations over immutable
// inputs and a point-in-time read of catalog/voucher/promo state
// supplied through the lookup interfaces below.  The engine holds no
// state of its own and is safe to re-invoke on every input change;
// identical inputs against unchanged lookups yield identical output.
//
// Every failure mode has a defined, inert fallback value: invalid
// promo codes become structured results, unknown catalog references
// are skipped, unresolvable vouchers contribute nothing, and a show
// without profiles resolves to all-zero rates.  Errors are returned
// only for infrastructure failures in the injected lookups.
package pricing

import (
    "context"
    "fmt"
    "strings"
    "time"

    "github.com/mverhoeven/theater-booking/internal/model"
)

// Category classifies a line item on a booking breakdown.
type Category string

const (
    CategoryTicket     Category = "TICKET"     // arrangement line
    CategoryAddOn      Category = "ADDON"      // add-on line
    CategoryMerch      Category = "MERCH"      // merchandise line
    CategoryFee        Category = "FEE"        // surcharges (reserved)
    CategoryDiscount   Category = "DISCOUNT"   // promo-code discount (negative total)
    CategoryAdjustment Category = "ADJUSTMENT" // manual staff discount (negative total)
)

// LineItem is the atomic output unit of a calculation.  Discounts are
// represented as negative-total items so the itemized list always
// reconstructs the total by summation.
type LineItem struct {
    ID             string   `json:"id"`
    Label          string   `json:"label"`
    Quantity       int      `json:"quantity"`
    UnitPriceCents int64    `json:"unit_price_cents"`
    TotalCents     int64    `json:"total_cents"`
    Category       Category `json:"category"`
}

// Breakdown is the full financial result of a totals calculation.
// The items list is always populated, even when a promo code failed
// validation, so callers can render the visible parts of the order
// alongside the error message.
type Breakdown struct {
    Items               []LineItem `json:"items"`
    SubtotalCents       int64      `json:"subtotal_cents"`
    DiscountCents       int64      `json:"discount_cents"`
    AfterDiscountCents  int64      `json:"after_discount_cents"`
    VoucherAppliedCents int64      `json:"voucher_applied_cents"`
    VoucherLostCents    int64      `json:"voucher_lost_cents"`
    AmountDueCents      int64      `json:"amount_due_cents"`
    AppliedPromo        string     `json:"applied_promo,omitempty"`
    AppliedVoucher      string     `json:"applied_voucher,omitempty"`
    PromoError          string     `json:"promo_error,omitempty"`
}

// DiscountResult is the outcome of evaluating a promo code.  An empty
// code yields IsValid=false with no Error; a failing code carries the
// first violated constraint's message in Error.  Lines reconstruct
// TotalCents by summation (negative totals).
type DiscountResult struct {
    IsValid    bool       `json:"is_valid"`
    Error      string     `json:"error,omitempty"`
    TotalCents int64      `json:"total_cents"`
    Lines      []LineItem `json:"lines,omitempty"`
}

// EffectiveRates are the final per-guest prices for a specific
// calendar date, after layering the event's overrides on the show
// profile.  All-zero rates signal an unconfigured show; callers must
// block booking rather than sell at zero.
type EffectiveRates struct {
    StandardCents   int64 `json:"standard_cents"`
    PremiumCents    int64 `json:"premium_cents"`
    PreDrinkCents   int64 `json:"pre_drink_cents"`
    AfterDrinkCents int64 `json:"after_drink_cents"`
}

// Zero reports whether every rate is zero, the unconfigured-show
// failure mode of ResolveRates.
func (r EffectiveRates) Zero() bool {
    return r.StandardCents == 0 && r.PremiumCents == 0 &&
        r.PreDrinkCents == 0 && r.AfterDrinkCents == 0
}

// ForPackage returns the per-guest arrangement rate for the given tier.
func (r EffectiveRates) ForPackage(p model.PackageType) int64 {
    if p == model.PackagePremium {
        return r.PremiumCents
    }
    return r.StandardCents
}

// BookingContext is the transient input to a totals calculation.  It
// is never persisted directly; reservations are converted back into a
// context when recalculating.
type BookingContext struct {
    Guests      int
    Package     model.PackageType
    AddOns      []model.BookingSelection
    Merch       []model.BookingSelection
    PromoCode   string
    VoucherCode string
    Date        time.Time // event date of the booking
    ShowID      uint64
    Override    *model.AdminOverride
    Now         time.Time // evaluation time for promo windows; zero means wall clock
}

// DiscountSource identifies which of the mutually exclusive discount
// mechanisms applies to a booking context.  Resolution lives here, in
// one place, so the promo engine is provably never consulted when
// staff entered a manual discount.
type DiscountSource int

const (
    DiscountNone   DiscountSource = iota // no discount requested
    DiscountManual                       // staff override discount
    DiscountPromo                        // promotional code
)

// DiscountSource resolves the discount mechanism for this context.
// A manual override discount always wins over a promo code.
func (bc *BookingContext) DiscountSource() DiscountSource {
    if bc.Override != nil && bc.Override.Discount != nil {
        return DiscountManual
    }
    if strings.TrimSpace(bc.PromoCode) != "" {
        return DiscountPromo
    }
    return DiscountNone
}

// CatalogLookup resolves add-ons and merchandise by ID.  A (nil, nil)
// return means the ID is unknown; the engine tolerates stale catalog
// references by skipping them.  Errors are reserved for
// infrastructure failures.
type CatalogLookup interface {
    AddOnByID(ctx context.Context, id string) (*model.AddOn, error)
    MerchItemByID(ctx context.Context, id string) (*model.MerchItem, error)
}

// VoucherLookup resolves a stored-value voucher by code.  (nil, nil)
// means the code is unknown.
type VoucherLookup interface {
    VoucherByCode(ctx context.Context, code string) (*model.Voucher, error)
}

// PromoLookup resolves a promo rule by code, matching
// case-insensitively and returning disabled rules as well so retired
// codes produce a dedicated message.  (nil, nil) means unknown.
type PromoLookup interface {
    RuleByCode(ctx context.Context, code string) (*model.PromoRule, error)
}

// EventLookup resolves a calendar event by ID.  (nil, nil) means the
// event no longer exists.
type EventLookup interface {
    EventByID(ctx context.Context, id uint64) (*model.CalendarEvent, error)
}

// ShowLookup resolves a show, including its profiles, by ID.
// (nil, nil) means the show no longer exists.
type ShowLookup interface {
    ShowByID(ctx context.Context, id uint64) (*model.Show, error)
}

// euros renders a positive cent amount for receipt labels ("€12.50").
func euros(cents int64) string {
    if cents < 0 {
        cents = -cents
    }
    return fmt.Sprintf("€%d.%02d", cents/100, cents%100)
}

// dateOnly truncates a timestamp to its UTC calendar day.
func dateOnly(t time.Time) time.Time {
    y, m, d := t.UTC().Date()
    return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
