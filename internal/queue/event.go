// Package queue defines message payloads exchanged over the message broker.
package queue

// ReservationConfirmedEvent is published when a reservation is successfully
// confirmed. It contains enough information for downstream consumers to log,
// notify, or trigger analytics without querying the primary database.
type ReservationConfirmedEvent struct {
    ReservationID    uint64 `json:"reservation_id"`
    Reference        string `json:"reference"`
    EventID          uint64 `json:"event_id"`
    ShowID           uint64 `json:"show_id"`
    ShowTitle        string `json:"show_title"`
    EventDate        string `json:"event_date"`
    CustomerName     string `json:"customer_name"`
    Guests           int    `json:"guests"`
    Package          string `json:"package"`
    SubtotalCents    int64  `json:"subtotal_cents"`
    DiscountCents    int64  `json:"discount_cents"`
    VoucherCents     int64  `json:"voucher_cents"`
    TotalDueCents    int64  `json:"total_due_cents"`
    AppliedPromoCode string `json:"applied_promo_code,omitempty"`
    ConfirmedAt      string `json:"confirmed_at"`
}
