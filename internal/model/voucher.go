package model

import "time"

// Voucher is a stored-value code applied against a booking's balance
// after discounts.  Redemption is use-it-or-lose-it: any balance
// exceeding the amount still due is forfeited for that booking, never
// partially consumed or carried over.
//
// Fields:
//  ID           – primary key identifier.
//  Code         – redemption code printed on the voucher.
//  BalanceCents – remaining stored value in cents.
//  IsActive     – whether the voucher may still be redeemed.
//  IssuedAt     – when the voucher was issued.
//  RedeemedAt   – when the voucher was consumed (nil while active).
type Voucher struct {
    ID           uint64     // vouchers.id
    Code         string     // vouchers.code
    BalanceCents int64      // vouchers.balance_cents
    IsActive     bool       // vouchers.is_active
    IssuedAt     time.Time  // vouchers.issued_at
    RedeemedAt   *time.Time // vouchers.redeemed_at (nullable)
}
