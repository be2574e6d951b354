package pricing

import (
    "context"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/mverhoeven/theater-booking/internal/model"
)

// standardRates mirror a typical weekday profile: €45 standard, €70
// premium, €12 pre-drink, €15 after-drink.
func standardRates() EffectiveRates {
    return EffectiveRates{
        StandardCents:   4500,
        PremiumCents:    7000,
        PreDrinkCents:   1200,
        AfterDrinkCents: 1500,
    }
}

func sumPositive(items []LineItem) int64 {
    var sum int64
    for _, it := range items {
        if it.TotalCents > 0 {
            sum += it.TotalCents
        }
    }
    return sum
}

func TestTotalsLineAssembly(t *testing.T) {
    calc, catalog, _, _ := newTestCalculator()
    ctx := context.Background()

    catalog.addons[model.AddOnPreDrink] = &model.AddOn{ID: model.AddOnPreDrink, Name: "Pre-show drinks", IsActive: true}
    catalog.addons["cloakroom"] = &model.AddOn{ID: "cloakroom", Name: "Cloakroom bundle", PriceCents: 250, IsActive: true}
    catalog.merch["prog-book"] = &model.MerchItem{ID: "prog-book", Name: "Program book", PriceCents: 1500, IsActive: true}

    t.Run("ticket line uses the rate for the package", func(t *testing.T) {
        bd, err := calc.Totals(ctx, BookingContext{Guests: 4, Package: model.PackagePremium}, standardRates())
        require.NoError(t, err)
        require.NotEmpty(t, bd.Items)
        assert.Equal(t, "Premium arrangement", bd.Items[0].Label)
        assert.Equal(t, int64(28000), bd.Items[0].TotalCents)
        assert.Equal(t, CategoryTicket, bd.Items[0].Category)
    })

    t.Run("drink add-ons priced from effective rates", func(t *testing.T) {
        bd, err := calc.Totals(ctx, BookingContext{
            Guests:  2,
            Package: model.PackageStandard,
            AddOns:  []model.BookingSelection{{ID: model.AddOnPreDrink, Quantity: 2}},
        }, standardRates())
        require.NoError(t, err)
        require.Len(t, bd.Items, 2)
        assert.Equal(t, int64(1200), bd.Items[1].UnitPriceCents)
        assert.Equal(t, int64(2400), bd.Items[1].TotalCents)
        assert.Equal(t, CategoryAddOn, bd.Items[1].Category)
    })

    t.Run("other add-ons fall back to catalog price", func(t *testing.T) {
        bd, err := calc.Totals(ctx, BookingContext{
            Guests:  2,
            Package: model.PackageStandard,
            AddOns:  []model.BookingSelection{{ID: "cloakroom", Quantity: 3}},
        }, standardRates())
        require.NoError(t, err)
        require.Len(t, bd.Items, 2)
        assert.Equal(t, int64(750), bd.Items[1].TotalCents)
    })

    t.Run("zero-quantity selections produce no line", func(t *testing.T) {
        bd, err := calc.Totals(ctx, BookingContext{
            Guests:  2,
            Package: model.PackageStandard,
            AddOns:  []model.BookingSelection{{ID: "cloakroom", Quantity: 0}},
            Merch:   []model.BookingSelection{{ID: "prog-book", Quantity: 0}},
        }, standardRates())
        require.NoError(t, err)
        assert.Len(t, bd.Items, 1)
    })

    t.Run("unknown catalog references are skipped silently", func(t *testing.T) {
        bd, err := calc.Totals(ctx, BookingContext{
            Guests:  2,
            Package: model.PackageStandard,
            AddOns:  []model.BookingSelection{{ID: "retired-addon", Quantity: 1}},
            Merch:   []model.BookingSelection{{ID: "retired-poster", Quantity: 2}},
        }, standardRates())
        require.NoError(t, err)
        assert.Len(t, bd.Items, 1)
        assert.Equal(t, int64(9000), bd.SubtotalCents)
        assert.Empty(t, bd.PromoError)
    })

    t.Run("admin unit price override adjusts the ticket line", func(t *testing.T) {
        bd, err := calc.Totals(ctx, BookingContext{
            Guests:   5,
            Package:  model.PackageStandard,
            Override: &model.AdminOverride{UnitPriceCents: cents(4000), Reason: "corporate rate"},
        }, standardRates())
        require.NoError(t, err)
        assert.Equal(t, "Standard arrangement (adjusted)", bd.Items[0].Label)
        assert.Equal(t, int64(20000), bd.SubtotalCents)
    })
}

func TestTotalsScenario(t *testing.T) {
    // 25 guests, standard rate €45, one merch item €15 × 2, promo
    // THEATER25 (fixed total €25, entire booking): subtotal €1155,
    // discount €25, amount due €1130.
    calc, catalog, _, promos := newTestCalculator()
    catalog.merch["prog-book"] = &model.MerchItem{ID: "prog-book", Name: "Program book", PriceCents: 1500, IsActive: true}
    promos.rules["THEATER25"] = &model.PromoRule{
        Code: "THEATER25", Kind: model.PromoFixedTotal, AmountCents: 2500,
        Scope: model.ScopeEntireBooking, Enabled: true,
    }

    bd, err := calc.Totals(context.Background(), BookingContext{
        Guests:    25,
        Package:   model.PackageStandard,
        Merch:     []model.BookingSelection{{ID: "prog-book", Quantity: 2}},
        PromoCode: "THEATER25",
    }, standardRates())
    require.NoError(t, err)

    assert.Equal(t, int64(115500), bd.SubtotalCents)
    assert.Equal(t, int64(2500), bd.DiscountCents)
    assert.Equal(t, int64(113000), bd.AmountDueCents)
    assert.Equal(t, "THEATER25", bd.AppliedPromo)
    assert.Empty(t, bd.PromoError)

    // Sum invariant: the positive items reconstruct the subtotal.
    assert.Equal(t, bd.SubtotalCents, sumPositive(bd.Items))
}

func TestTotalsDiscountExclusivity(t *testing.T) {
    calc, _, _, promos := newTestCalculator()
    ctx := context.Background()

    // The promo lookup is poisoned: if the engine consults it while a
    // manual discount is present, the calculation fails loudly.
    promos.err = assert.AnError

    bd, err := calc.Totals(ctx, BookingContext{
        Guests:    10,
        Package:   model.PackageStandard,
        PromoCode: "THEATER25",
        Override: &model.AdminOverride{
            Discount: &model.ManualDiscount{Type: model.AdjustFixed, AmountCents: 5000},
            Reason:   "season opening",
        },
    }, standardRates())
    require.NoError(t, err)

    assert.Equal(t, int64(5000), bd.DiscountCents)
    assert.Empty(t, bd.AppliedPromo)
    require.Len(t, bd.Items, 2)
    assert.Equal(t, CategoryAdjustment, bd.Items[1].Category)
    assert.Equal(t, "Manual Discount", bd.Items[1].Label)
}

func TestTotalsManualDiscountVariants(t *testing.T) {
    calc, _, _, _ := newTestCalculator()
    ctx := context.Background()

    base := BookingContext{Guests: 10, Package: model.PackageStandard} // subtotal €450

    t.Run("per person", func(t *testing.T) {
        bc := base
        bc.Override = &model.AdminOverride{
            Discount: &model.ManualDiscount{Type: model.AdjustPerPerson, AmountCents: 500, Label: "Group deal"},
            Reason:   "group deal",
        }
        bd, err := calc.Totals(ctx, bc, standardRates())
        require.NoError(t, err)
        assert.Equal(t, int64(5000), bd.DiscountCents)
        assert.Equal(t, "Group deal", bd.Items[1].Label)
    })

    t.Run("percent of subtotal", func(t *testing.T) {
        bc := base
        bc.Override = &model.AdminOverride{
            Discount: &model.ManualDiscount{Type: model.AdjustPercent, Percent: 10},
            Reason:   "goodwill",
        }
        bd, err := calc.Totals(ctx, bc, standardRates())
        require.NoError(t, err)
        assert.Equal(t, int64(4500), bd.DiscountCents)
    })

    t.Run("fixed capped at subtotal", func(t *testing.T) {
        bc := base
        bc.Override = &model.AdminOverride{
            Discount: &model.ManualDiscount{Type: model.AdjustFixed, AmountCents: 99999999},
            Reason:   "comp",
        }
        bd, err := calc.Totals(ctx, bc, standardRates())
        require.NoError(t, err)
        assert.Equal(t, int64(45000), bd.DiscountCents)
        assert.Zero(t, bd.AmountDueCents)
    })
}

func TestTotalsPromoFailureDoesNotBlock(t *testing.T) {
    calc, _, _, _ := newTestCalculator()

    bd, err := calc.Totals(context.Background(), BookingContext{
        Guests:    3,
        Package:   model.PackageStandard,
        PromoCode: "DOESNOTEXIST",
    }, standardRates())
    require.NoError(t, err)

    assert.Equal(t, "unknown promo code", bd.PromoError)
    assert.Zero(t, bd.DiscountCents)
    assert.Empty(t, bd.AppliedPromo)
    // The itemized list is still fully populated.
    require.Len(t, bd.Items, 1)
    assert.Equal(t, int64(13500), bd.AmountDueCents)
}

func TestTotalsVoucher(t *testing.T) {
    ctx := context.Background()

    t.Run("use it or lose it forfeiture", func(t *testing.T) {
        calc, _, vouchers, promos := newTestCalculator()
        // Price after discount €80, voucher balance €120.
        promos.rules["MINUS10"] = &model.PromoRule{
            Code: "MINUS10", Kind: model.PromoFixedTotal, AmountCents: 1000,
            Scope: model.ScopeEntireBooking, Enabled: true,
        }
        vouchers.vouchers["GIFT-1"] = &model.Voucher{Code: "GIFT-1", BalanceCents: 12000, IsActive: true}

        bd, err := calc.Totals(ctx, BookingContext{
            Guests:      2,
            Package:     model.PackageStandard, // 2 × €45 = €90
            PromoCode:   "MINUS10",
            VoucherCode: "gift-1",
        }, standardRates())
        require.NoError(t, err)

        assert.Equal(t, int64(8000), bd.AfterDiscountCents)
        assert.Equal(t, int64(8000), bd.VoucherAppliedCents)
        assert.Equal(t, int64(4000), bd.VoucherLostCents)
        assert.Zero(t, bd.AmountDueCents)
        assert.Equal(t, "GIFT-1", bd.AppliedVoucher)
    })

    t.Run("voucher smaller than balance due", func(t *testing.T) {
        calc, _, vouchers, _ := newTestCalculator()
        vouchers.vouchers["GIFT-2"] = &model.Voucher{Code: "GIFT-2", BalanceCents: 2500, IsActive: true}

        bd, err := calc.Totals(ctx, BookingContext{
            Guests: 2, Package: model.PackageStandard, VoucherCode: "GIFT-2",
        }, standardRates())
        require.NoError(t, err)
        assert.Equal(t, int64(2500), bd.VoucherAppliedCents)
        assert.Zero(t, bd.VoucherLostCents)
        assert.Equal(t, int64(6500), bd.AmountDueCents)
    })

    t.Run("inactive unknown or empty vouchers contribute nothing", func(t *testing.T) {
        calc, _, vouchers, _ := newTestCalculator()
        vouchers.vouchers["DEAD"] = &model.Voucher{Code: "DEAD", BalanceCents: 5000, IsActive: false}
        vouchers.vouchers["EMPTY"] = &model.Voucher{Code: "EMPTY", BalanceCents: 0, IsActive: true}

        for _, code := range []string{"DEAD", "EMPTY", "NOSUCH"} {
            bd, err := calc.Totals(ctx, BookingContext{
                Guests: 2, Package: model.PackageStandard, VoucherCode: code,
            }, standardRates())
            require.NoError(t, err)
            assert.Zero(t, bd.VoucherAppliedCents, code)
            assert.Empty(t, bd.AppliedVoucher, code)
            assert.Equal(t, int64(9000), bd.AmountDueCents, code)
        }
    })
}

func TestTotalsIdempotence(t *testing.T) {
    calc, catalog, vouchers, promos := newTestCalculator()
    catalog.merch["prog-book"] = &model.MerchItem{ID: "prog-book", Name: "Program book", PriceCents: 1500, IsActive: true}
    promos.rules["TEN"] = &model.PromoRule{
        Code: "TEN", Kind: model.PromoPercentage, Percent: 10,
        Scope: model.ScopeEntireBooking, Enabled: true,
    }
    vouchers.vouchers["GIFT"] = &model.Voucher{Code: "GIFT", BalanceCents: 3000, IsActive: true}

    bc := BookingContext{
        Guests:      12,
        Package:     model.PackagePremium,
        AddOns:      []model.BookingSelection{{ID: model.AddOnAfterDrink, Quantity: 12}},
        Merch:       []model.BookingSelection{{ID: "prog-book", Quantity: 3}},
        PromoCode:   "TEN",
        VoucherCode: "GIFT",
        Now:         time.Date(2026, time.May, 1, 12, 0, 0, 0, time.UTC),
    }

    first, err := calc.Totals(context.Background(), bc, standardRates())
    require.NoError(t, err)
    second, err := calc.Totals(context.Background(), bc, standardRates())
    require.NoError(t, err)
    assert.Equal(t, first, second)

    // Sum invariant holds with discounts applied.
    assert.Equal(t, first.SubtotalCents, sumPositive(first.Items))
    assert.Equal(t, first.AmountDueCents, first.SubtotalCents-first.DiscountCents-first.VoucherAppliedCents)
}
