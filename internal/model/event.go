package model

import "time"

// EventPricingOverride carries per-date price deviations for a calendar
// event.  Each field is a nullable cent amount; a nil field falls
// through to the selected show profile, so a partial override (say only
// the standard rate) never blanks out the other prices.
//
// Fields:
//  StandardCents   – override for the standard arrangement, if set.
//  PremiumCents    – override for the premium arrangement, if set.
//  PreDrinkCents   – override for the pre-show drink add-on, if set.
//  AfterDrinkCents – override for the after-show drink add-on, if set.
type EventPricingOverride struct {
    StandardCents   *int64 // calendar_events.standard_cents (nullable)
    PremiumCents    *int64 // calendar_events.premium_cents (nullable)
    PreDrinkCents   *int64 // calendar_events.pre_drink_cents (nullable)
    AfterDrinkCents *int64 // calendar_events.after_drink_cents (nullable)
}

// Empty reports whether no field of the override is set.
func (o *EventPricingOverride) Empty() bool {
    if o == nil {
        return true
    }
    return o.StandardCents == nil && o.PremiumCents == nil &&
        o.PreDrinkCents == nil && o.AfterDrinkCents == nil
}

// CalendarEvent is a concrete date+show occurrence on the venue
// calendar.  It selects one of the show's profiles and may override
// any subset of the profile's prices for that date only.
//
// Fields:
//  ID        – primary key identifier.
//  ShowID    – show performed on this date.
//  ProfileID – show profile whose pricing and timing apply.
//  Date      – calendar date of the performance (time portion zero, UTC).
//  Capacity  – maximum number of guests bookable for this date.
//  Pricing   – optional per-date price override (may be nil).
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type CalendarEvent struct {
    ID        uint64                // calendar_events.id
    ShowID    uint64                // calendar_events.show_id
    ProfileID uint64                // calendar_events.profile_id
    Date      time.Time             // calendar_events.event_date
    Capacity  int                   // calendar_events.capacity
    Pricing   *EventPricingOverride // nullable pricing override columns
    CreatedAt time.Time             // calendar_events.created_at
    UpdatedAt time.Time             // calendar_events.updated_at
}
