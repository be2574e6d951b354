package model

// AdjustmentType discriminates how a manual staff discount is computed
// against the booking subtotal.
type AdjustmentType string

const (
    AdjustFixed     AdjustmentType = "FIXED"      // flat amount off
    AdjustPercent   AdjustmentType = "PERCENT"    // percentage of the subtotal
    AdjustPerPerson AdjustmentType = "PER_PERSON" // amount × guest count
)

// ManualDiscount is a staff-entered discount attached to an admin
// override.  It fully supersedes promo-code evaluation: when a manual
// discount is present the promo engine is never consulted.
//
// Fields:
//  Type        – calculation variant.
//  AmountCents – value for FIXED and PER_PERSON.
//  Percent     – value for PERCENT (0–100).
//  Label       – receipt label; "Manual Discount" when empty.
type ManualDiscount struct {
    Type        AdjustmentType // reservations.override_discount_type
    AmountCents int64          // reservations.override_discount_cents
    Percent     float64        // reservations.override_discount_percent
    Label       string         // reservations.override_discount_label
}

// AdminOverride is the administrative escape hatch on a booking: an
// optional replacement of the resolved per-guest price, an optional
// manual discount, and the mandatory reason recorded whenever either
// is set.
//
// Fields:
//  UnitPriceCents – replaces the resolved per-guest rate outright, if set.
//  Discount       – manual discount, if set.
//  Reason         – audit note explaining the override.
type AdminOverride struct {
    UnitPriceCents *int64          // reservations.override_unit_price_cents (nullable)
    Discount       *ManualDiscount // override_discount_* columns (nullable)
    Reason         string          // reservations.override_reason
}

// Active reports whether the override actually changes anything, i.e.
// at least one of its optional fields is set.
func (o *AdminOverride) Active() bool {
    return o != nil && (o.UnitPriceCents != nil || o.Discount != nil)
}
