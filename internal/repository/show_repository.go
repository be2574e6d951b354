package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/mverhoeven/theater-booking/internal/model"
)

// ErrShowNotFound indicates that a show was not located in the DB.
var ErrShowNotFound = errors.New("show not found")

// ErrProfileNotFound indicates that a show profile was not located.
var ErrProfileNotFound = errors.New("show profile not found")

// ShowRepo manages persistence for shows and their pricing profiles.
// A show owns one or more profiles; profile rows carry the four
// per-guest prices in cents.  Profiles are always loaded with their
// show, ordered by id, so the first row doubles as the fallback
// profile during rate resolution.
type ShowRepo struct {
    db *sql.DB
}

// NewShowRepo constructs a ShowRepo with the given DB handle.
func NewShowRepo(db *sql.DB) *ShowRepo { return &ShowRepo{db: db} }

// DB exposes the underlying sql.DB.  It allows callers to begin
// transactions spanning multiple repositories.
func (r *ShowRepo) DB() *sql.DB { return r.db }

// Create inserts a show together with its profiles in one
// transaction and assigns the generated IDs back to the model.  At
// least one profile is required; shows without profiles resolve to
// all-zero rates and cannot be booked.
func (r *ShowRepo) Create(ctx context.Context, s *model.Show) error {
    if len(s.Profiles) == 0 {
        return errors.New("show requires at least one profile")
    }
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    defer func() { _ = tx.Rollback() }()

    const q = `INSERT INTO shows (name, description, is_active) VALUES (?, ?, ?)`
    res, err := tx.ExecContext(ctx, q, s.Name, s.Description, s.IsActive)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    s.ID = uint64(id)

    const pq = `INSERT INTO show_profiles
                (show_id, name, color, start_time, standard_cents, premium_cents, pre_drink_cents, after_drink_cents)
                VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
    for i := range s.Profiles {
        p := &s.Profiles[i]
        p.ShowID = s.ID
        pres, err := tx.ExecContext(ctx, pq, p.ShowID, p.Name, p.Color, p.StartTime,
            p.Pricing.StandardCents, p.Pricing.PremiumCents, p.Pricing.PreDrinkCents, p.Pricing.AfterDrinkCents)
        if err != nil {
            return err
        }
        pid, err := pres.LastInsertId()
        if err != nil {
            return err
        }
        p.ID = uint64(pid)
    }
    return tx.Commit()
}

// GetByID retrieves a show with all of its profiles.  It returns
// ErrShowNotFound if there is no matching row.
func (r *ShowRepo) GetByID(ctx context.Context, id uint64) (*model.Show, error) {
    const q = `SELECT id, name, description, is_active, created_at, updated_at FROM shows WHERE id = ?`
    var s model.Show
    err := r.db.QueryRowContext(ctx, q, id).Scan(
        &s.ID, &s.Name, &s.Description, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
    if err == sql.ErrNoRows {
        return nil, ErrShowNotFound
    }
    if err != nil {
        return nil, err
    }
    if err := r.loadProfiles(ctx, &s); err != nil {
        return nil, err
    }
    return &s, nil
}

// ShowByID adapts GetByID to the pricing engine's lookup contract:
// a missing show is (nil, nil), not an error.
func (r *ShowRepo) ShowByID(ctx context.Context, id uint64) (*model.Show, error) {
    s, err := r.GetByID(ctx, id)
    if errors.Is(err, ErrShowNotFound) {
        return nil, nil
    }
    return s, err
}

// List returns all shows with their profiles, optionally restricted
// to active ones, ordered by name.
func (r *ShowRepo) List(ctx context.Context, activeOnly bool) ([]model.Show, error) {
    q := `SELECT id, name, description, is_active, created_at, updated_at FROM shows`
    if activeOnly {
        q += ` WHERE is_active = 1`
    }
    q += ` ORDER BY name`

    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var shows []model.Show
    for rows.Next() {
        var s model.Show
        if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
            return nil, err
        }
        shows = append(shows, s)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    for i := range shows {
        if err := r.loadProfiles(ctx, &shows[i]); err != nil {
            return nil, err
        }
    }
    return shows, nil
}

// UpdateProfilePricing replaces the four price fields of one profile.
// It returns ErrProfileNotFound when the profile does not belong to
// the given show.
func (r *ShowRepo) UpdateProfilePricing(ctx context.Context, showID, profileID uint64, pricing model.ProfilePricing) error {
    const q = `UPDATE show_profiles
               SET standard_cents = ?, premium_cents = ?, pre_drink_cents = ?, after_drink_cents = ?
               WHERE id = ? AND show_id = ?`
    res, err := r.db.ExecContext(ctx, q,
        pricing.StandardCents, pricing.PremiumCents, pricing.PreDrinkCents, pricing.AfterDrinkCents,
        profileID, showID)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrProfileNotFound
    }
    return nil
}

// SetActive toggles whether a show accepts new bookings.
func (r *ShowRepo) SetActive(ctx context.Context, id uint64, active bool) error {
    res, err := r.db.ExecContext(ctx, `UPDATE shows SET is_active = ? WHERE id = ?`, active, id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrShowNotFound
    }
    return nil
}

func (r *ShowRepo) loadProfiles(ctx context.Context, s *model.Show) error {
    const q = `SELECT id, show_id, name, color, start_time,
                      standard_cents, premium_cents, pre_drink_cents, after_drink_cents
               FROM show_profiles WHERE show_id = ? ORDER BY id`
    rows, err := r.db.QueryContext(ctx, q, s.ID)
    if err != nil {
        return err
    }
    defer rows.Close()

    s.Profiles = s.Profiles[:0]
    for rows.Next() {
        var p model.ShowProfile
        if err := rows.Scan(&p.ID, &p.ShowID, &p.Name, &p.Color, &p.StartTime,
            &p.Pricing.StandardCents, &p.Pricing.PremiumCents,
            &p.Pricing.PreDrinkCents, &p.Pricing.AfterDrinkCents); err != nil {
            return err
        }
        s.Profiles = append(s.Profiles, p)
    }
    return rows.Err()
}
