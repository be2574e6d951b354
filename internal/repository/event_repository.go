package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/mverhoeven/theater-booking/internal/model"
)

// ErrEventNotFound indicates that a calendar event was not located.
var ErrEventNotFound = errors.New("event not found")

// EventRepo manages persistence for calendar events.  The four
// nullable pricing columns carry per-date overrides; NULL means the
// field falls through to the show profile during rate resolution.
// Event dates are stored as DATE columns in UTC.
type EventRepo struct {
    db *sql.DB
}

// NewEventRepo constructs an EventRepo with the given DB handle.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

const eventColumns = `id, show_id, profile_id, event_date, capacity,
       standard_cents, premium_cents, pre_drink_cents, after_drink_cents,
       created_at, updated_at`

// Create inserts a calendar event and assigns the generated ID back
// to the model.
func (r *EventRepo) Create(ctx context.Context, e *model.CalendarEvent) error {
    const q = `INSERT INTO calendar_events
               (show_id, profile_id, event_date, capacity,
                standard_cents, premium_cents, pre_drink_cents, after_drink_cents)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
    var std, prem, pre, after *int64
    if e.Pricing != nil {
        std, prem, pre, after = e.Pricing.StandardCents, e.Pricing.PremiumCents,
            e.Pricing.PreDrinkCents, e.Pricing.AfterDrinkCents
    }
    res, err := r.db.ExecContext(ctx, q,
        e.ShowID, e.ProfileID, e.Date.UTC().Format("2006-01-02"), e.Capacity,
        std, prem, pre, after)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    e.ID = uint64(id)
    return nil
}

// GetByID retrieves an event by its ID.  It returns ErrEventNotFound
// if there is no matching row.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.CalendarEvent, error) {
    const q = `SELECT ` + eventColumns + ` FROM calendar_events WHERE id = ?`
    e, err := r.scanEvent(r.db.QueryRowContext(ctx, q, id))
    if err == sql.ErrNoRows {
        return nil, ErrEventNotFound
    }
    return e, err
}

// EventByID adapts GetByID to the pricing engine's lookup contract:
// a missing event is (nil, nil), not an error.
func (r *EventRepo) EventByID(ctx context.Context, id uint64) (*model.CalendarEvent, error) {
    e, err := r.GetByID(ctx, id)
    if errors.Is(err, ErrEventNotFound) {
        return nil, nil
    }
    return e, err
}

// GetByShowAndDate retrieves the event for a show on a calendar day.
func (r *EventRepo) GetByShowAndDate(ctx context.Context, showID uint64, day time.Time) (*model.CalendarEvent, error) {
    const q = `SELECT ` + eventColumns + ` FROM calendar_events WHERE show_id = ? AND event_date = ?`
    e, err := r.scanEvent(r.db.QueryRowContext(ctx, q, showID, day.UTC().Format("2006-01-02")))
    if err == sql.ErrNoRows {
        return nil, ErrEventNotFound
    }
    return e, err
}

// ListBetween returns all events whose date lies in [from, to],
// ordered by date.
func (r *EventRepo) ListBetween(ctx context.Context, from, to time.Time) ([]model.CalendarEvent, error) {
    const q = `SELECT ` + eventColumns + ` FROM calendar_events
               WHERE event_date BETWEEN ? AND ? ORDER BY event_date, show_id`
    rows, err := r.db.QueryContext(ctx, q,
        from.UTC().Format("2006-01-02"), to.UTC().Format("2006-01-02"))
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var events []model.CalendarEvent
    for rows.Next() {
        e, err := r.scanEvent(rows)
        if err != nil {
            return nil, err
        }
        events = append(events, *e)
    }
    return events, rows.Err()
}

// UpdatePricing replaces the event's override columns.  Passing nil
// clears every override so the profile prices apply again.
func (r *EventRepo) UpdatePricing(ctx context.Context, id uint64, pricing *model.EventPricingOverride) error {
    const q = `UPDATE calendar_events
               SET standard_cents = ?, premium_cents = ?, pre_drink_cents = ?, after_drink_cents = ?
               WHERE id = ?`
    var std, prem, pre, after *int64
    if pricing != nil {
        std, prem, pre, after = pricing.StandardCents, pricing.PremiumCents,
            pricing.PreDrinkCents, pricing.AfterDrinkCents
    }
    res, err := r.db.ExecContext(ctx, q, std, prem, pre, after, id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrEventNotFound
    }
    return nil
}

// scanner abstracts sql.Row and sql.Rows for the shared scan logic.
type scanner interface {
    Scan(dest ...any) error
}

func (r *EventRepo) scanEvent(row scanner) (*model.CalendarEvent, error) {
    var (
        e                     model.CalendarEvent
        day                   time.Time
        std, prem, pre, after sql.NullInt64
    )
    // event_date arrives as time.Time because the DSN sets parseTime=true.
    err := row.Scan(&e.ID, &e.ShowID, &e.ProfileID, &day, &e.Capacity,
        &std, &prem, &pre, &after, &e.CreatedAt, &e.UpdatedAt)
    if err != nil {
        return nil, err
    }
    e.Date = day.UTC()
    if std.Valid || prem.Valid || pre.Valid || after.Valid {
        e.Pricing = &model.EventPricingOverride{
            StandardCents:   nullableInt(std),
            PremiumCents:    nullableInt(prem),
            PreDrinkCents:   nullableInt(pre),
            AfterDrinkCents: nullableInt(after),
        }
    }
    return &e, nil
}

func nullableInt(v sql.NullInt64) *int64 {
    if !v.Valid {
        return nil
    }
    n := v.Int64
    return &n
}
