package model

import "time"

// BookingSelection pairs a catalog identifier (add-on or merchandise)
// with a quantity.  Zero-quantity selections are ignored by the
// pricing engine.
type BookingSelection struct {
    ID       string // addons.id or merch_items.id
    Quantity int    // selected amount
}

// ReservationFinancials is the financial snapshot stored with a
// reservation.  It is re-derived by the recalculator whenever the
// booking composition changes; collected payments and due dates are
// preserved across recalculations.
//
// Fields:
//  SubtotalCents       – sum of all positive line items.
//  DiscountCents       – discount applied (admin override or promo).
//  VoucherAppliedCents – stored value consumed by a voucher.
//  TotalDueCents       – final payable amount, floored at zero.
//  PaidCents           – cumulative payments collected so far.
//  IsPaid              – whether PaidCents covers TotalDueCents.
//  PaymentDueAt        – payment deadline, if one was agreed.
//  PaidAt              – when the booking was settled in full.
//  BreakdownJSON       – serialized line-item breakdown for receipts.
type ReservationFinancials struct {
    SubtotalCents       int64      // reservations.subtotal_cents
    DiscountCents       int64      // reservations.discount_cents
    VoucherAppliedCents int64      // reservations.voucher_applied_cents
    TotalDueCents       int64      // reservations.total_due_cents
    PaidCents           int64      // reservations.paid_cents
    IsPaid              bool       // reservations.is_paid
    PaymentDueAt        *time.Time // reservations.payment_due_at (nullable)
    PaidAt              *time.Time // reservations.paid_at (nullable)
    BreakdownJSON       string     // reservations.breakdown_json
}

// Reservation records a confirmed booking for a calendar event.  The
// promo code and voucher code are two genuinely distinct columns; they
// are never reconstructed from one another.
//
// Fields:
//  ID            – primary key identifier.
//  Reference     – public booking reference (UUID) printed on receipts.
//  EventID       – calendar event being attended.
//  ShowID        – show of that event (denormalized for lookups).
//  CustomerName  – primary contact name.
//  CustomerEmail – contact email address.
//  Guests        – party size (positive).
//  Package       – arrangement tier booked for the whole party.
//  AddOns        – selected add-ons with quantities.
//  Merch         – selected merchandise with quantities.
//  PromoCode     – promo code applied at booking time (may be empty).
//  VoucherCode   – voucher redeemed against the balance (may be empty).
//  Override      – administrative price override, if staff entered one.
//  Status        – reservation state (PENDING, CONFIRMED, CANCELLED).
//  Financials    – current financial snapshot.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Reservation struct {
    ID            uint64                // reservations.id
    Reference     string                // reservations.reference
    EventID       uint64                // reservations.event_id
    ShowID        uint64                // reservations.show_id
    CustomerName  string                // reservations.customer_name
    CustomerEmail string                // reservations.customer_email
    Guests        int                   // reservations.guests
    Package       PackageType           // reservations.package
    AddOns        []BookingSelection    // rows in reservation_addons
    Merch         []BookingSelection    // rows in reservation_merch
    PromoCode     string                // reservations.promo_code
    VoucherCode   string                // reservations.voucher_code
    Override      *AdminOverride        // override_* columns (nullable)
    Status        string                // reservations.status
    Financials    ReservationFinancials // financial snapshot columns
    CreatedAt     time.Time             // reservations.created_at
    UpdatedAt     time.Time             // reservations.updated_at
}
