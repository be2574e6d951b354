package pricing

import (
    "testing"

    "github.com/stretchr/testify/assert"

    "github.com/mverhoeven/theater-booking/internal/model"
)

func testShow() *model.Show {
    return &model.Show{
        ID:   1,
        Name: "Een Midzomernachtsdroom",
        Profiles: []model.ShowProfile{
            {
                ID:     10,
                ShowID: 1,
                Name:   "Weekday",
                Pricing: model.ProfilePricing{
                    StandardCents:   5000,
                    PremiumCents:    8500,
                    PreDrinkCents:   1200,
                    AfterDrinkCents: 1500,
                },
            },
            {
                ID:     11,
                ShowID: 1,
                Name:   "Weekend",
                Pricing: model.ProfilePricing{
                    StandardCents:   6000,
                    PremiumCents:    9500,
                    PreDrinkCents:   1400,
                    AfterDrinkCents: 1700,
                },
            },
        },
    }
}

func TestResolveRates(t *testing.T) {
    show := testShow()

    t.Run("selects profile referenced by the event", func(t *testing.T) {
        rates := ResolveRates(&model.CalendarEvent{ProfileID: 11}, show)
        assert.Equal(t, int64(6000), rates.StandardCents)
        assert.Equal(t, int64(9500), rates.PremiumCents)
    })

    t.Run("falls back to first profile on stale reference", func(t *testing.T) {
        rates := ResolveRates(&model.CalendarEvent{ProfileID: 999}, show)
        assert.Equal(t, int64(5000), rates.StandardCents)
        assert.Equal(t, int64(8500), rates.PremiumCents)
    })

    t.Run("show without profiles yields all-zero rates", func(t *testing.T) {
        rates := ResolveRates(&model.CalendarEvent{ProfileID: 10}, &model.Show{ID: 2})
        assert.True(t, rates.Zero())
    })

    t.Run("nil show yields all-zero rates", func(t *testing.T) {
        rates := ResolveRates(&model.CalendarEvent{}, nil)
        assert.True(t, rates.Zero())
    })

    t.Run("partial override passes untouched fields through", func(t *testing.T) {
        event := &model.CalendarEvent{
            ProfileID: 10,
            Pricing:   &model.EventPricingOverride{PremiumCents: cents(9900)},
        }
        rates := ResolveRates(event, show)
        assert.Equal(t, EffectiveRates{
            StandardCents:   5000,
            PremiumCents:    9900,
            PreDrinkCents:   1200,
            AfterDrinkCents: 1500,
        }, rates)
    })

    t.Run("full override replaces every field", func(t *testing.T) {
        event := &model.CalendarEvent{
            ProfileID: 10,
            Pricing: &model.EventPricingOverride{
                StandardCents:   cents(100),
                PremiumCents:    cents(200),
                PreDrinkCents:   cents(300),
                AfterDrinkCents: cents(400),
            },
        }
        rates := ResolveRates(event, show)
        assert.Equal(t, EffectiveRates{
            StandardCents:   100,
            PremiumCents:    200,
            PreDrinkCents:   300,
            AfterDrinkCents: 400,
        }, rates)
    })

    t.Run("override to zero is honored, not treated as absent", func(t *testing.T) {
        event := &model.CalendarEvent{
            ProfileID: 10,
            Pricing:   &model.EventPricingOverride{PreDrinkCents: cents(0)},
        }
        rates := ResolveRates(event, show)
        assert.Equal(t, int64(0), rates.PreDrinkCents)
        assert.Equal(t, int64(5000), rates.StandardCents)
    })
}

func TestEffectiveRatesForPackage(t *testing.T) {
    rates := EffectiveRates{StandardCents: 4500, PremiumCents: 7000}
    assert.Equal(t, int64(4500), rates.ForPackage(model.PackageStandard))
    assert.Equal(t, int64(7000), rates.ForPackage(model.PackagePremium))
}
