package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"

    "github.com/mverhoeven/theater-booking/internal/model"
)

// ErrVoucherNotFound indicates that a voucher was not located.
var ErrVoucherNotFound = errors.New("voucher not found")

// ErrVoucherExhausted indicates a redemption attempt against an
// inactive or empty voucher.
var ErrVoucherExhausted = errors.New("voucher inactive or exhausted")

// VoucherRepo manages persistence for stored-value vouchers.  Codes
// are stored upper-cased.  Redemption debits the balance atomically
// and deactivates the voucher once its balance reaches zero; the
// use-it-or-lose-it forfeiture itself is computed by the pricing
// engine, this layer only records the resulting debit.
type VoucherRepo struct {
    db *sql.DB
}

// NewVoucherRepo constructs a VoucherRepo with the given DB handle.
func NewVoucherRepo(db *sql.DB) *VoucherRepo { return &VoucherRepo{db: db} }

// VoucherByCode resolves a voucher by code.  A missing code yields
// (nil, nil) per the pricing lookup contract.
func (r *VoucherRepo) VoucherByCode(ctx context.Context, code string) (*model.Voucher, error) {
    code = strings.ToUpper(strings.TrimSpace(code))
    const q = `SELECT id, code, balance_cents, is_active, issued_at, redeemed_at FROM vouchers WHERE code = ?`
    var (
        v          model.Voucher
        redeemedAt sql.NullTime
    )
    err := r.db.QueryRowContext(ctx, q, code).Scan(
        &v.ID, &v.Code, &v.BalanceCents, &v.IsActive, &v.IssuedAt, &redeemedAt)
    if err == sql.ErrNoRows {
        return nil, nil
    }
    if err != nil {
        return nil, err
    }
    if redeemedAt.Valid {
        t := redeemedAt.Time.UTC()
        v.RedeemedAt = &t
    }
    return &v, nil
}

// Issue inserts a new voucher and assigns the generated ID back to
// the model.
func (r *VoucherRepo) Issue(ctx context.Context, v *model.Voucher) error {
    v.Code = strings.ToUpper(strings.TrimSpace(v.Code))
    const q = `INSERT INTO vouchers (code, balance_cents, is_active) VALUES (?, ?, ?)`
    res, err := r.db.ExecContext(ctx, q, v.Code, v.BalanceCents, v.IsActive)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    v.ID = uint64(id)
    return nil
}

// Redeem debits the full remaining balance of an active voucher and
// deactivates it.  The guard in the WHERE clause keeps concurrent
// redemptions from double-spending.  It returns ErrVoucherNotFound
// for unknown codes and ErrVoucherExhausted when the voucher exists
// but cannot be redeemed.
func (r *VoucherRepo) Redeem(ctx context.Context, code string) error {
    code = strings.ToUpper(strings.TrimSpace(code))
    const q = `UPDATE vouchers
               SET balance_cents = 0, is_active = 0, redeemed_at = NOW()
               WHERE code = ? AND is_active = 1 AND balance_cents > 0`
    res, err := r.db.ExecContext(ctx, q, code)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        v, err := r.VoucherByCode(ctx, code)
        if err != nil {
            return err
        }
        if v == nil {
            return ErrVoucherNotFound
        }
        return ErrVoucherExhausted
    }
    return nil
}

// List returns all vouchers, newest first.
func (r *VoucherRepo) List(ctx context.Context) ([]model.Voucher, error) {
    const q = `SELECT id, code, balance_cents, is_active, issued_at, redeemed_at FROM vouchers ORDER BY issued_at DESC`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var vouchers []model.Voucher
    for rows.Next() {
        var (
            v          model.Voucher
            redeemedAt sql.NullTime
        )
        if err := rows.Scan(&v.ID, &v.Code, &v.BalanceCents, &v.IsActive, &v.IssuedAt, &redeemedAt); err != nil {
            return nil, err
        }
        if redeemedAt.Valid {
            t := redeemedAt.Time.UTC()
            v.RedeemedAt = &t
        }
        vouchers = append(vouchers, v)
    }
    return vouchers, rows.Err()
}
