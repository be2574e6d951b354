package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"
    "time"

    "github.com/mverhoeven/theater-booking/internal/model"
)

// ErrPromoNotFound indicates that a promo rule was not located.
var ErrPromoNotFound = errors.New("promo rule not found")

// ErrPromoCodeExists indicates a duplicate promo code on insert.
var ErrPromoCodeExists = errors.New("promo code already exists")

// PromoRepo manages persistence for promotional code rules.  The main
// table carries the kind/scope/value columns; eligible shows and
// blackout dates live in the promo_rule_shows and
// promo_rule_blackouts join tables.  Codes are stored upper-cased so
// lookups stay case-insensitive without relying on collation.
type PromoRepo struct {
    db *sql.DB
}

// NewPromoRepo constructs a PromoRepo with the given DB handle.
func NewPromoRepo(db *sql.DB) *PromoRepo { return &PromoRepo{db: db} }

const promoColumns = `id, code, label, kind, scope,
       amount_per_person_cents, percent, amount_cents,
       invited_mode, invited_free_count, invited_package,
       min_party_size, max_party_size, valid_from, valid_until,
       enabled, created_at, updated_at`

// RuleByCode resolves a rule by code, case-insensitively, including
// disabled rules so retired codes can produce a dedicated message.
// A missing code yields (nil, nil) per the pricing lookup contract.
func (r *PromoRepo) RuleByCode(ctx context.Context, code string) (*model.PromoRule, error) {
    code = strings.ToUpper(strings.TrimSpace(code))
    const q = `SELECT ` + promoColumns + ` FROM promo_rules WHERE code = ?`
    rule, err := r.scanRule(r.db.QueryRowContext(ctx, q, code))
    if err == sql.ErrNoRows {
        return nil, nil
    }
    if err != nil {
        return nil, err
    }
    if err := r.loadConstraintRows(ctx, rule); err != nil {
        return nil, err
    }
    return rule, nil
}

// GetByID retrieves a rule by primary key, returning ErrPromoNotFound
// when absent.
func (r *PromoRepo) GetByID(ctx context.Context, id uint64) (*model.PromoRule, error) {
    const q = `SELECT ` + promoColumns + ` FROM promo_rules WHERE id = ?`
    rule, err := r.scanRule(r.db.QueryRowContext(ctx, q, id))
    if err == sql.ErrNoRows {
        return nil, ErrPromoNotFound
    }
    if err != nil {
        return nil, err
    }
    if err := r.loadConstraintRows(ctx, rule); err != nil {
        return nil, err
    }
    return rule, nil
}

// List returns every rule, constraints included, ordered by code.
func (r *PromoRepo) List(ctx context.Context) ([]model.PromoRule, error) {
    const q = `SELECT ` + promoColumns + ` FROM promo_rules ORDER BY code`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var rules []model.PromoRule
    for rows.Next() {
        rule, err := r.scanRule(rows)
        if err != nil {
            return nil, err
        }
        rules = append(rules, *rule)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    for i := range rules {
        if err := r.loadConstraintRows(ctx, &rules[i]); err != nil {
            return nil, err
        }
    }
    return rules, nil
}

// Create inserts a rule with its constraint rows in one transaction.
// The code is normalized to upper case before insertion.
func (r *PromoRepo) Create(ctx context.Context, rule *model.PromoRule) error {
    rule.Code = strings.ToUpper(strings.TrimSpace(rule.Code))
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    defer func() { _ = tx.Rollback() }()

    const q = `INSERT INTO promo_rules
               (code, label, kind, scope, amount_per_person_cents, percent, amount_cents,
                invited_mode, invited_free_count, invited_package,
                min_party_size, max_party_size, valid_from, valid_until, enabled)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
    var invMode, invPackage *string
    var invFree *int
    if rule.Invited != nil {
        m, p := string(rule.Invited.Mode), rule.Invited.EligiblePackage
        invMode, invPackage, invFree = &m, &p, &rule.Invited.FreeCount
    }
    res, err := tx.ExecContext(ctx, q,
        rule.Code, rule.Label, rule.Kind, rule.Scope,
        rule.AmountPerPersonCents, rule.Percent, rule.AmountCents,
        invMode, invFree, invPackage,
        rule.Constraints.MinPartySize, rule.Constraints.MaxPartySize,
        rule.Constraints.ValidFrom, rule.Constraints.ValidUntil, rule.Enabled)
    if err != nil {
        if strings.Contains(strings.ToLower(err.Error()), "1062") {
            return ErrPromoCodeExists
        }
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    rule.ID = uint64(id)

    for _, showID := range rule.Constraints.EligibleShowIDs {
        if _, err := tx.ExecContext(ctx,
            `INSERT INTO promo_rule_shows (rule_id, show_id) VALUES (?, ?)`, rule.ID, showID); err != nil {
            return err
        }
    }
    for _, day := range rule.Constraints.BlackoutDates {
        if _, err := tx.ExecContext(ctx,
            `INSERT INTO promo_rule_blackouts (rule_id, blackout_date) VALUES (?, ?)`, rule.ID, day); err != nil {
            return err
        }
    }
    return tx.Commit()
}

// SetEnabled toggles whether a rule currently applies.
func (r *PromoRepo) SetEnabled(ctx context.Context, id uint64, enabled bool) error {
    res, err := r.db.ExecContext(ctx, `UPDATE promo_rules SET enabled = ? WHERE id = ?`, enabled, id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrPromoNotFound
    }
    return nil
}

// Delete removes a rule and its constraint rows.
func (r *PromoRepo) Delete(ctx context.Context, id uint64) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    defer func() { _ = tx.Rollback() }()

    if _, err := tx.ExecContext(ctx, `DELETE FROM promo_rule_shows WHERE rule_id = ?`, id); err != nil {
        return err
    }
    if _, err := tx.ExecContext(ctx, `DELETE FROM promo_rule_blackouts WHERE rule_id = ?`, id); err != nil {
        return err
    }
    res, err := tx.ExecContext(ctx, `DELETE FROM promo_rules WHERE id = ?`, id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrPromoNotFound
    }
    return tx.Commit()
}

func (r *PromoRepo) scanRule(row scanner) (*model.PromoRule, error) {
    var (
        rule               model.PromoRule
        invMode, invPkg    sql.NullString
        invFree            sql.NullInt64
        validFrom, validTo sql.NullTime
    )
    err := row.Scan(&rule.ID, &rule.Code, &rule.Label, &rule.Kind, &rule.Scope,
        &rule.AmountPerPersonCents, &rule.Percent, &rule.AmountCents,
        &invMode, &invFree, &invPkg,
        &rule.Constraints.MinPartySize, &rule.Constraints.MaxPartySize,
        &validFrom, &validTo, &rule.Enabled, &rule.CreatedAt, &rule.UpdatedAt)
    if err != nil {
        return nil, err
    }
    if invMode.Valid {
        rule.Invited = &model.InvitedConfig{
            Mode:            model.InvitedMode(invMode.String),
            FreeCount:       int(invFree.Int64),
            EligiblePackage: invPkg.String,
        }
    }
    if validFrom.Valid {
        t := validFrom.Time.UTC()
        rule.Constraints.ValidFrom = &t
    }
    if validTo.Valid {
        t := validTo.Time.UTC()
        rule.Constraints.ValidUntil = &t
    }
    return &rule, nil
}

func (r *PromoRepo) loadConstraintRows(ctx context.Context, rule *model.PromoRule) error {
    rows, err := r.db.QueryContext(ctx,
        `SELECT show_id FROM promo_rule_shows WHERE rule_id = ? ORDER BY show_id`, rule.ID)
    if err != nil {
        return err
    }
    defer rows.Close()
    for rows.Next() {
        var id uint64
        if err := rows.Scan(&id); err != nil {
            return err
        }
        rule.Constraints.EligibleShowIDs = append(rule.Constraints.EligibleShowIDs, id)
    }
    if err := rows.Err(); err != nil {
        return err
    }

    brows, err := r.db.QueryContext(ctx,
        `SELECT blackout_date FROM promo_rule_blackouts WHERE rule_id = ? ORDER BY blackout_date`, rule.ID)
    if err != nil {
        return err
    }
    defer brows.Close()
    for brows.Next() {
        var day time.Time
        if err := brows.Scan(&day); err != nil {
            return err
        }
        rule.Constraints.BlackoutDates = append(rule.Constraints.BlackoutDates, day.UTC().Format("2006-01-02"))
    }
    return brows.Err()
}
