package repository

import (
    "context"
    "database/sql"

    "github.com/mverhoeven/theater-booking/internal/model"
)

// CatalogRepo manages persistence for the add-on and merchandise
// catalogs.  Both tables use stable string primary keys so bookings
// can reference entries directly; lookups tolerate missing rows by
// returning (nil, nil) because catalogs can be edited after a booking
// references them.
type CatalogRepo struct {
    db *sql.DB
}

// NewCatalogRepo constructs a CatalogRepo with the given DB handle.
func NewCatalogRepo(db *sql.DB) *CatalogRepo { return &CatalogRepo{db: db} }

// AddOnByID resolves one add-on.  A missing ID yields (nil, nil).
func (r *CatalogRepo) AddOnByID(ctx context.Context, id string) (*model.AddOn, error) {
    const q = `SELECT id, name, price_cents, is_active, created_at, updated_at FROM addons WHERE id = ?`
    var a model.AddOn
    err := r.db.QueryRowContext(ctx, q, id).Scan(
        &a.ID, &a.Name, &a.PriceCents, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
    if err == sql.ErrNoRows {
        return nil, nil
    }
    if err != nil {
        return nil, err
    }
    return &a, nil
}

// MerchItemByID resolves one merchandise item.  A missing ID yields
// (nil, nil).
func (r *CatalogRepo) MerchItemByID(ctx context.Context, id string) (*model.MerchItem, error) {
    const q = `SELECT id, name, price_cents, is_active, created_at, updated_at FROM merch_items WHERE id = ?`
    var m model.MerchItem
    err := r.db.QueryRowContext(ctx, q, id).Scan(
        &m.ID, &m.Name, &m.PriceCents, &m.IsActive, &m.CreatedAt, &m.UpdatedAt)
    if err == sql.ErrNoRows {
        return nil, nil
    }
    if err != nil {
        return nil, err
    }
    return &m, nil
}

// ListAddOns returns catalog add-ons, optionally only active ones,
// ordered by name.
func (r *CatalogRepo) ListAddOns(ctx context.Context, activeOnly bool) ([]model.AddOn, error) {
    q := `SELECT id, name, price_cents, is_active, created_at, updated_at FROM addons`
    if activeOnly {
        q += ` WHERE is_active = 1`
    }
    q += ` ORDER BY name`

    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var addons []model.AddOn
    for rows.Next() {
        var a model.AddOn
        if err := rows.Scan(&a.ID, &a.Name, &a.PriceCents, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
            return nil, err
        }
        addons = append(addons, a)
    }
    return addons, rows.Err()
}

// ListMerch returns merchandise items, optionally only active ones,
// ordered by name.
func (r *CatalogRepo) ListMerch(ctx context.Context, activeOnly bool) ([]model.MerchItem, error) {
    q := `SELECT id, name, price_cents, is_active, created_at, updated_at FROM merch_items`
    if activeOnly {
        q += ` WHERE is_active = 1`
    }
    q += ` ORDER BY name`

    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var items []model.MerchItem
    for rows.Next() {
        var m model.MerchItem
        if err := rows.Scan(&m.ID, &m.Name, &m.PriceCents, &m.IsActive, &m.CreatedAt, &m.UpdatedAt); err != nil {
            return nil, err
        }
        items = append(items, m)
    }
    return items, rows.Err()
}

// UpsertAddOn inserts or updates an add-on by its string ID.
func (r *CatalogRepo) UpsertAddOn(ctx context.Context, a *model.AddOn) error {
    const q = `INSERT INTO addons (id, name, price_cents, is_active) VALUES (?, ?, ?, ?)
               ON DUPLICATE KEY UPDATE name = VALUES(name), price_cents = VALUES(price_cents), is_active = VALUES(is_active)`
    _, err := r.db.ExecContext(ctx, q, a.ID, a.Name, a.PriceCents, a.IsActive)
    return err
}

// UpsertMerchItem inserts or updates a merchandise item by its string ID.
func (r *CatalogRepo) UpsertMerchItem(ctx context.Context, m *model.MerchItem) error {
    const q = `INSERT INTO merch_items (id, name, price_cents, is_active) VALUES (?, ?, ?, ?)
               ON DUPLICATE KEY UPDATE name = VALUES(name), price_cents = VALUES(price_cents), is_active = VALUES(is_active)`
    _, err := r.db.ExecContext(ctx, q, m.ID, m.Name, m.PriceCents, m.IsActive)
    return err
}
