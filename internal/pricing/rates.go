package pricing

import "github.com/mverhoeven/theater-booking/internal/model"

// ResolveRates computes the effective per-guest prices for a calendar
// event.  It selects the show profile referenced by the event, falling
// back to the show's first profile when the reference is stale, and
// overlays any per-date override field by field, so a partial override
// never blanks out the remaining prices.
//
// A show without profiles is a data-integrity failure, not an
// exception: the function returns all-zero rates and the caller must
// treat them as "show unconfigured" (see EffectiveRates.Zero).
func ResolveRates(event *model.CalendarEvent, show *model.Show) EffectiveRates {
    if show == nil || len(show.Profiles) == 0 {
        return EffectiveRates{}
    }

    profile := show.Profiles[0]
    if event != nil {
        for _, p := range show.Profiles {
            if p.ID == event.ProfileID {
                profile = p
                break
            }
        }
    }

    rates := EffectiveRates{
        StandardCents:   profile.Pricing.StandardCents,
        PremiumCents:    profile.Pricing.PremiumCents,
        PreDrinkCents:   profile.Pricing.PreDrinkCents,
        AfterDrinkCents: profile.Pricing.AfterDrinkCents,
    }

    if event == nil || event.Pricing == nil {
        return rates
    }
    if v := event.Pricing.StandardCents; v != nil {
        rates.StandardCents = *v
    }
    if v := event.Pricing.PremiumCents; v != nil {
        rates.PremiumCents = *v
    }
    if v := event.Pricing.PreDrinkCents; v != nil {
        rates.PreDrinkCents = *v
    }
    if v := event.Pricing.AfterDrinkCents; v != nil {
        rates.AfterDrinkCents = *v
    }
    return rates
}
