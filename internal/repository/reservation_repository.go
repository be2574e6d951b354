package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"

    "github.com/mverhoeven/theater-booking/internal/model"
)

// ErrReservationNotFound indicates that a reservation was not located.
var ErrReservationNotFound = errors.New("reservation not found")

// Reservation statuses as stored in the status column.
const (
    ReservationPending   = "PENDING"
    ReservationConfirmed = "CONFIRMED"
    ReservationCancelled = "CANCELLED"
)

// ReservationRepo provides CRUD operations for reservations and their
// selections.  Add-on and merchandise selections are stored in the
// reservation_addons and reservation_merch tables; the financial
// snapshot lives in columns on the reservations row itself, with the
// full line-item breakdown serialized into breakdown_json for
// receipts.  All timestamps are stored in UTC.
type ReservationRepo struct {
    db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying sql.DB for callers that need transactions
// spanning multiple repositories.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

const reservationColumns = `id, reference, event_id, show_id, customer_name, customer_email,
       guests, package, promo_code, voucher_code,
       override_unit_price_cents, override_discount_type, override_discount_cents,
       override_discount_percent, override_discount_label, override_reason,
       status, subtotal_cents, discount_cents, voucher_applied_cents, total_due_cents,
       paid_cents, is_paid, payment_due_at, paid_at, breakdown_json,
       created_at, updated_at`

// Create inserts a reservation together with its selection rows in
// one transaction and assigns the generated ID back to the model.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    defer func() { _ = tx.Rollback() }()

    const q = `INSERT INTO reservations
               (reference, event_id, show_id, customer_name, customer_email,
                guests, package, promo_code, voucher_code,
                override_unit_price_cents, override_discount_type, override_discount_cents,
                override_discount_percent, override_discount_label, override_reason,
                status, subtotal_cents, discount_cents, voucher_applied_cents, total_due_cents,
                paid_cents, is_paid, payment_due_at, paid_at, breakdown_json)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

    ov := overrideColumns(res.Override)
    fin := &res.Financials
    result, err := tx.ExecContext(ctx, q,
        res.Reference, res.EventID, res.ShowID, res.CustomerName, res.CustomerEmail,
        res.Guests, res.Package, res.PromoCode, res.VoucherCode,
        ov.unitPrice, ov.discountType, ov.discountCents, ov.discountPercent, ov.discountLabel, ov.reason,
        res.Status, fin.SubtotalCents, fin.DiscountCents, fin.VoucherAppliedCents, fin.TotalDueCents,
        fin.PaidCents, fin.IsPaid, fin.PaymentDueAt, fin.PaidAt, fin.BreakdownJSON)
    if err != nil {
        return err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return err
    }
    res.ID = uint64(id)

    if err := insertSelections(ctx, tx, res.ID, res.AddOns, res.Merch); err != nil {
        return err
    }
    return tx.Commit()
}

// GetByID retrieves a reservation with its selections.  It returns
// ErrReservationNotFound if there is no matching row.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
    const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
    res, err := r.scanReservation(r.db.QueryRowContext(ctx, q, id))
    if err == sql.ErrNoRows {
        return nil, ErrReservationNotFound
    }
    if err != nil {
        return nil, err
    }
    if err := r.loadSelections(ctx, res); err != nil {
        return nil, err
    }
    return res, nil
}

// GetByReference retrieves a reservation by its public booking
// reference.
func (r *ReservationRepo) GetByReference(ctx context.Context, ref string) (*model.Reservation, error) {
    const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE reference = ?`
    res, err := r.scanReservation(r.db.QueryRowContext(ctx, q, strings.TrimSpace(ref)))
    if err == sql.ErrNoRows {
        return nil, ErrReservationNotFound
    }
    if err != nil {
        return nil, err
    }
    if err := r.loadSelections(ctx, res); err != nil {
        return nil, err
    }
    return res, nil
}

// ListByEvent returns all reservations for one calendar event,
// newest first, selections included.
func (r *ReservationRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.Reservation, error) {
    const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE event_id = ? ORDER BY created_at DESC`
    return r.list(ctx, q, eventID)
}

// ListRecent returns the most recent reservations up to limit.
func (r *ReservationRepo) ListRecent(ctx context.Context, limit int) ([]model.Reservation, error) {
    if limit <= 0 || limit > 500 {
        limit = 100
    }
    const q = `SELECT ` + reservationColumns + ` FROM reservations ORDER BY created_at DESC LIMIT ?`
    return r.list(ctx, q, limit)
}

// UpdateComposition rewrites the editable booking fields (guests,
// package, selections, codes, override), replaces the selection rows
// and stores the freshly recalculated financial snapshot, all in one
// transaction.
func (r *ReservationRepo) UpdateComposition(ctx context.Context, res *model.Reservation) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    defer func() { _ = tx.Rollback() }()

    const q = `UPDATE reservations
               SET guests = ?, package = ?, promo_code = ?, voucher_code = ?,
                   override_unit_price_cents = ?, override_discount_type = ?, override_discount_cents = ?,
                   override_discount_percent = ?, override_discount_label = ?, override_reason = ?,
                   subtotal_cents = ?, discount_cents = ?, voucher_applied_cents = ?, total_due_cents = ?,
                   paid_cents = ?, is_paid = ?, payment_due_at = ?, paid_at = ?, breakdown_json = ?
               WHERE id = ?`
    ov := overrideColumns(res.Override)
    fin := &res.Financials
    result, err := tx.ExecContext(ctx, q,
        res.Guests, res.Package, res.PromoCode, res.VoucherCode,
        ov.unitPrice, ov.discountType, ov.discountCents, ov.discountPercent, ov.discountLabel, ov.reason,
        fin.SubtotalCents, fin.DiscountCents, fin.VoucherAppliedCents, fin.TotalDueCents,
        fin.PaidCents, fin.IsPaid, fin.PaymentDueAt, fin.PaidAt, fin.BreakdownJSON,
        res.ID)
    if err != nil {
        return err
    }
    n, err := result.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        // RowsAffected is also zero for no-op edits; confirm existence.
        var exists bool
        if err := tx.QueryRowContext(ctx,
            `SELECT EXISTS(SELECT 1 FROM reservations WHERE id = ?)`, res.ID).Scan(&exists); err != nil {
            return err
        }
        if !exists {
            return ErrReservationNotFound
        }
    }

    if _, err := tx.ExecContext(ctx, `DELETE FROM reservation_addons WHERE reservation_id = ?`, res.ID); err != nil {
        return err
    }
    if _, err := tx.ExecContext(ctx, `DELETE FROM reservation_merch WHERE reservation_id = ?`, res.ID); err != nil {
        return err
    }
    if err := insertSelections(ctx, tx, res.ID, res.AddOns, res.Merch); err != nil {
        return err
    }
    return tx.Commit()
}

// RecordPayment adds a collected amount to paid_cents and re-derives
// the paid-in-full flag and paid_at in a single statement, so
// concurrent payments cannot lose updates.
func (r *ReservationRepo) RecordPayment(ctx context.Context, id uint64, amountCents int64) error {
    const q = `UPDATE reservations
               SET paid_cents = paid_cents + ?,
                   is_paid = (paid_cents >= total_due_cents),
                   paid_at = IF(paid_cents >= total_due_cents AND paid_at IS NULL, NOW(), paid_at)
               WHERE id = ?`
    res, err := r.db.ExecContext(ctx, q, amountCents, id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrReservationNotFound
    }
    return nil
}

// UpdateStatus transitions the reservation's status column.
func (r *ReservationRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
    res, err := r.db.ExecContext(ctx, `UPDATE reservations SET status = ? WHERE id = ?`, status, id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrReservationNotFound
    }
    return nil
}

func (r *ReservationRepo) list(ctx context.Context, q string, args ...any) ([]model.Reservation, error) {
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var reservations []model.Reservation
    for rows.Next() {
        res, err := r.scanReservation(rows)
        if err != nil {
            return nil, err
        }
        reservations = append(reservations, *res)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    for i := range reservations {
        if err := r.loadSelections(ctx, &reservations[i]); err != nil {
            return nil, err
        }
    }
    return reservations, nil
}

// overrideCols flattens the nullable admin override into its columns.
type overrideCols struct {
    unitPrice       *int64
    discountType    *string
    discountCents   *int64
    discountPercent *float64
    discountLabel   *string
    reason          *string
}

func overrideColumns(ov *model.AdminOverride) overrideCols {
    var c overrideCols
    if ov == nil {
        return c
    }
    c.unitPrice = ov.UnitPriceCents
    if ov.Reason != "" {
        c.reason = &ov.Reason
    }
    if d := ov.Discount; d != nil {
        t := string(d.Type)
        c.discountType = &t
        c.discountCents = &d.AmountCents
        c.discountPercent = &d.Percent
        c.discountLabel = &d.Label
    }
    return c
}

func (r *ReservationRepo) scanReservation(row scanner) (*model.Reservation, error) {
    var (
        res                       model.Reservation
        ovUnit, ovCents           sql.NullInt64
        ovType, ovLabel, ovReason sql.NullString
        ovPercent                 sql.NullFloat64
        dueAt, paidAt             sql.NullTime
    )
    err := row.Scan(&res.ID, &res.Reference, &res.EventID, &res.ShowID,
        &res.CustomerName, &res.CustomerEmail,
        &res.Guests, &res.Package, &res.PromoCode, &res.VoucherCode,
        &ovUnit, &ovType, &ovCents, &ovPercent, &ovLabel, &ovReason,
        &res.Status, &res.Financials.SubtotalCents, &res.Financials.DiscountCents,
        &res.Financials.VoucherAppliedCents, &res.Financials.TotalDueCents,
        &res.Financials.PaidCents, &res.Financials.IsPaid,
        &dueAt, &paidAt, &res.Financials.BreakdownJSON,
        &res.CreatedAt, &res.UpdatedAt)
    if err != nil {
        return nil, err
    }

    if ovUnit.Valid || ovType.Valid {
        ov := &model.AdminOverride{Reason: ovReason.String}
        if ovUnit.Valid {
            v := ovUnit.Int64
            ov.UnitPriceCents = &v
        }
        if ovType.Valid {
            ov.Discount = &model.ManualDiscount{
                Type:        model.AdjustmentType(ovType.String),
                AmountCents: ovCents.Int64,
                Percent:     ovPercent.Float64,
                Label:       ovLabel.String,
            }
        }
        res.Override = ov
    }
    if dueAt.Valid {
        t := dueAt.Time.UTC()
        res.Financials.PaymentDueAt = &t
    }
    if paidAt.Valid {
        t := paidAt.Time.UTC()
        res.Financials.PaidAt = &t
    }
    return &res, nil
}

func (r *ReservationRepo) loadSelections(ctx context.Context, res *model.Reservation) error {
    arows, err := r.db.QueryContext(ctx,
        `SELECT addon_id, quantity FROM reservation_addons WHERE reservation_id = ? ORDER BY addon_id`, res.ID)
    if err != nil {
        return err
    }
    defer arows.Close()
    res.AddOns = res.AddOns[:0]
    for arows.Next() {
        var sel model.BookingSelection
        if err := arows.Scan(&sel.ID, &sel.Quantity); err != nil {
            return err
        }
        res.AddOns = append(res.AddOns, sel)
    }
    if err := arows.Err(); err != nil {
        return err
    }

    mrows, err := r.db.QueryContext(ctx,
        `SELECT merch_id, quantity FROM reservation_merch WHERE reservation_id = ? ORDER BY merch_id`, res.ID)
    if err != nil {
        return err
    }
    defer mrows.Close()
    res.Merch = res.Merch[:0]
    for mrows.Next() {
        var sel model.BookingSelection
        if err := mrows.Scan(&sel.ID, &sel.Quantity); err != nil {
            return err
        }
        res.Merch = append(res.Merch, sel)
    }
    return mrows.Err()
}

func insertSelections(ctx context.Context, tx *sql.Tx, id uint64, addons, merch []model.BookingSelection) error {
    for _, sel := range addons {
        if sel.Quantity <= 0 {
            continue
        }
        if _, err := tx.ExecContext(ctx,
            `INSERT INTO reservation_addons (reservation_id, addon_id, quantity) VALUES (?, ?, ?)`,
            id, sel.ID, sel.Quantity); err != nil {
            return err
        }
    }
    for _, sel := range merch {
        if sel.Quantity <= 0 {
            continue
        }
        if _, err := tx.ExecContext(ctx,
            `INSERT INTO reservation_merch (reservation_id, merch_id, quantity) VALUES (?, ?, ?)`,
            id, sel.ID, sel.Quantity); err != nil {
            return err
        }
    }
    return nil
}
