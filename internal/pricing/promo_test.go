package pricing

import (
    "context"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/mverhoeven/theater-booking/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
    return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// promoCtx is a baseline booking: 10 guests, standard arrangement at
// €50, €100 of add-ons and €60 of merchandise.
func promoCtx() PromoContext {
    return PromoContext{
        PartySize:        10,
        Package:          model.PackageStandard,
        UnitPriceCents:   5000,
        TicketTotalCents: 50000,
        AddOnTotalCents:  10000,
        MerchTotalCents:  6000,
        ShowID:           1,
        Date:             date(2026, time.October, 3),
        Now:              date(2026, time.September, 1),
    }
}

func TestEvaluatePromoResolution(t *testing.T) {
    calc, _, _, promos := newTestCalculator()
    ctx := context.Background()

    t.Run("empty code is invalid without an error message", func(t *testing.T) {
        res, err := calc.EvaluatePromo(ctx, "   ", promoCtx())
        require.NoError(t, err)
        assert.False(t, res.IsValid)
        assert.Empty(t, res.Error)
        assert.Zero(t, res.TotalCents)
    })

    t.Run("unknown code", func(t *testing.T) {
        res, err := calc.EvaluatePromo(ctx, "NOPE", promoCtx())
        require.NoError(t, err)
        assert.False(t, res.IsValid)
        assert.Equal(t, "unknown promo code", res.Error)
    })

    t.Run("disabled rule yields retired-code message", func(t *testing.T) {
        promos.rules["OLD"] = &model.PromoRule{
            Code: "OLD", Kind: model.PromoFixedTotal, AmountCents: 1000, Enabled: false,
        }
        res, err := calc.EvaluatePromo(ctx, "old", promoCtx())
        require.NoError(t, err)
        assert.False(t, res.IsValid)
        assert.Equal(t, "this code is no longer valid", res.Error)
    })

    t.Run("code matching is case-insensitive", func(t *testing.T) {
        promos.rules["LENTE"] = &model.PromoRule{
            Code: "LENTE", Kind: model.PromoFixedTotal, AmountCents: 500,
            Scope: model.ScopeEntireBooking, Enabled: true,
        }
        res, err := calc.EvaluatePromo(ctx, "lente", promoCtx())
        require.NoError(t, err)
        assert.True(t, res.IsValid)
        assert.Equal(t, int64(500), res.TotalCents)
    })
}

func TestEvaluatePromoConstraints(t *testing.T) {
    calc, _, _, promos := newTestCalculator()
    ctx := context.Background()

    rule := func(cs model.PromoConstraints) *model.PromoRule {
        return &model.PromoRule{
            Code: "GRP", Kind: model.PromoFixedTotal, AmountCents: 1000,
            Scope: model.ScopeEntireBooking, Constraints: cs, Enabled: true,
        }
    }

    t.Run("party below minimum", func(t *testing.T) {
        promos.rules["GRP"] = rule(model.PromoConstraints{MinPartySize: 20})
        res, err := calc.EvaluatePromo(ctx, "GRP", promoCtx())
        require.NoError(t, err)
        assert.Equal(t, "requires a party of at least 20 guests", res.Error)
    })

    t.Run("party above maximum", func(t *testing.T) {
        promos.rules["GRP"] = rule(model.PromoConstraints{MaxPartySize: 8})
        res, err := calc.EvaluatePromo(ctx, "GRP", promoCtx())
        require.NoError(t, err)
        assert.Equal(t, "only valid for parties up to 8 guests", res.Error)
    })

    t.Run("show not eligible", func(t *testing.T) {
        promos.rules["GRP"] = rule(model.PromoConstraints{EligibleShowIDs: []uint64{7, 8}})
        res, err := calc.EvaluatePromo(ctx, "GRP", promoCtx())
        require.NoError(t, err)
        assert.Equal(t, "this code is not valid for the selected show", res.Error)
    })

    t.Run("evaluated before window opens", func(t *testing.T) {
        from := date(2026, time.December, 1)
        promos.rules["GRP"] = rule(model.PromoConstraints{ValidFrom: &from})
        res, err := calc.EvaluatePromo(ctx, "GRP", promoCtx())
        require.NoError(t, err)
        assert.Equal(t, "this code is not valid before 1 December 2026", res.Error)
    })

    t.Run("evaluated after window closes", func(t *testing.T) {
        until := date(2026, time.August, 1)
        promos.rules["GRP"] = rule(model.PromoConstraints{ValidUntil: &until})
        res, err := calc.EvaluatePromo(ctx, "GRP", promoCtx())
        require.NoError(t, err)
        assert.Equal(t, "this code expired on 1 August 2026", res.Error)
    })

    t.Run("window end date itself is still valid", func(t *testing.T) {
        until := date(2026, time.September, 1) // same day as pctx.Now
        promos.rules["GRP"] = rule(model.PromoConstraints{ValidUntil: &until})
        res, err := calc.EvaluatePromo(ctx, "GRP", promoCtx())
        require.NoError(t, err)
        assert.True(t, res.IsValid)
    })

    t.Run("booking date on a blackout date", func(t *testing.T) {
        promos.rules["GRP"] = rule(model.PromoConstraints{BlackoutDates: []string{"2026-10-03"}})
        res, err := calc.EvaluatePromo(ctx, "GRP", promoCtx())
        require.NoError(t, err)
        assert.Equal(t, "this code is not valid on the selected date", res.Error)
    })

    t.Run("first failing constraint wins", func(t *testing.T) {
        // Violates both the minimum party size and a blackout date; the
        // party-size message must surface because it is checked first.
        promos.rules["GRP"] = rule(model.PromoConstraints{
            MinPartySize:  20,
            BlackoutDates: []string{"2026-10-03"},
        })
        res, err := calc.EvaluatePromo(ctx, "GRP", promoCtx())
        require.NoError(t, err)
        assert.Equal(t, "requires a party of at least 20 guests", res.Error)
    })
}

func TestEvaluatePromoKinds(t *testing.T) {
    calc, _, _, promos := newTestCalculator()
    ctx := context.Background()

    t.Run("fixed per person multiplies by party size", func(t *testing.T) {
        promos.rules["PP"] = &model.PromoRule{
            Code: "PP", Kind: model.PromoFixedPerPerson, AmountPerPersonCents: 1000,
            Scope: model.ScopeArrangementOnly, Enabled: true,
        }
        res, err := calc.EvaluatePromo(ctx, "PP", promoCtx())
        require.NoError(t, err)
        require.True(t, res.IsValid)
        assert.Equal(t, int64(10000), res.TotalCents)
        require.Len(t, res.Lines, 1)
        assert.Equal(t, int64(-10000), res.Lines[0].TotalCents)
        assert.Contains(t, res.Lines[0].Label, "€10.00 × 10 guests")
        assert.Equal(t, CategoryDiscount, res.Lines[0].Category)
    })

    t.Run("fixed per person capped at its calculation base", func(t *testing.T) {
        promos.rules["PP"] = &model.PromoRule{
            Code: "PP", Kind: model.PromoFixedPerPerson, AmountPerPersonCents: 9000,
            Scope: model.ScopeArrangementOnly, Enabled: true,
        }
        res, err := calc.EvaluatePromo(ctx, "PP", promoCtx())
        require.NoError(t, err)
        assert.Equal(t, int64(50000), res.TotalCents) // ticket subtotal
    })

    t.Run("percentage scope sensitivity", func(t *testing.T) {
        pctx := promoCtx()
        pctx.TicketTotalCents = 50000
        pctx.AddOnTotalCents = 10000
        pctx.MerchTotalCents = 0

        promos.rules["TEN"] = &model.PromoRule{
            Code: "TEN", Kind: model.PromoPercentage, Percent: 10,
            Scope: model.ScopeArrangementOnly, Enabled: true,
        }
        res, err := calc.EvaluatePromo(ctx, "TEN", pctx)
        require.NoError(t, err)
        assert.Equal(t, int64(5000), res.TotalCents)

        promos.rules["TEN"].Scope = model.ScopeEntireBooking
        res, err = calc.EvaluatePromo(ctx, "TEN", pctx)
        require.NoError(t, err)
        assert.Equal(t, int64(6000), res.TotalCents)
    })

    t.Run("fixed total capped at its calculation base", func(t *testing.T) {
        promos.rules["FLAT"] = &model.PromoRule{
            Code: "FLAT", Kind: model.PromoFixedTotal, AmountCents: 99999999,
            Scope: model.ScopeArrangementOnly, Enabled: true,
        }
        res, err := calc.EvaluatePromo(ctx, "FLAT", promoCtx())
        require.NoError(t, err)
        assert.Equal(t, int64(50000), res.TotalCents)
    })

    t.Run("invited comp in ALL mode comps the whole party", func(t *testing.T) {
        promos.rules["INV"] = &model.PromoRule{
            Code: "INV", Kind: model.PromoInvitedComp, Enabled: true,
            Invited: &model.InvitedConfig{Mode: model.InvitedAll, EligiblePackage: model.EligibleAny},
        }
        res, err := calc.EvaluatePromo(ctx, "INV", promoCtx())
        require.NoError(t, err)
        require.True(t, res.IsValid)
        assert.Equal(t, int64(50000), res.TotalCents) // 10 × €50, capped at ticket total
        assert.Contains(t, res.Lines[0].Label, "10 free tickets")
    })

    t.Run("invited comp in LIMITED mode honors the free count", func(t *testing.T) {
        promos.rules["INV"] = &model.PromoRule{
            Code: "INV", Kind: model.PromoInvitedComp, Enabled: true,
            Invited: &model.InvitedConfig{Mode: model.InvitedLimited, FreeCount: 3, EligiblePackage: model.EligibleAny},
        }
        res, err := calc.EvaluatePromo(ctx, "INV", promoCtx())
        require.NoError(t, err)
        assert.Equal(t, int64(15000), res.TotalCents)
        assert.Contains(t, res.Lines[0].Label, "3 free tickets")
    })

    t.Run("invited comp package restriction", func(t *testing.T) {
        promos.rules["INV"] = &model.PromoRule{
            Code: "INV", Kind: model.PromoInvitedComp, Enabled: true,
            Invited: &model.InvitedConfig{Mode: model.InvitedAll, EligiblePackage: "PREMIUM"},
        }
        res, err := calc.EvaluatePromo(ctx, "INV", promoCtx())
        require.NoError(t, err)
        assert.False(t, res.IsValid)
        assert.Equal(t, "this code is only valid for the premium arrangement", res.Error)

        pctx := promoCtx()
        pctx.Package = model.PackagePremium
        res, err = calc.EvaluatePromo(ctx, "INV", pctx)
        require.NoError(t, err)
        assert.True(t, res.IsValid)
    })

    t.Run("invited comp capped at ticket total even with booking scope", func(t *testing.T) {
        pctx := promoCtx()
        pctx.PartySize = 100
        pctx.TicketTotalCents = 20000 // deliberately lower than 100 × unit
        promos.rules["INV"] = &model.PromoRule{
            Code: "INV", Kind: model.PromoInvitedComp, Scope: model.ScopeEntireBooking, Enabled: true,
            Invited: &model.InvitedConfig{Mode: model.InvitedAll, EligiblePackage: model.EligibleAny},
        }
        res, err := calc.EvaluatePromo(ctx, "INV", pctx)
        require.NoError(t, err)
        assert.Equal(t, int64(20000), res.TotalCents)
    })

    t.Run("percentage over 100 clamped to total booking value", func(t *testing.T) {
        promos.rules["BIG"] = &model.PromoRule{
            Code: "BIG", Kind: model.PromoPercentage, Percent: 250,
            Scope: model.ScopeEntireBooking, Enabled: true,
        }
        res, err := calc.EvaluatePromo(ctx, "BIG", promoCtx())
        require.NoError(t, err)
        assert.Equal(t, promoCtx().bookingTotal(), res.TotalCents)
    })
}
