package model

import "time"

// PackageType identifies the per-guest arrangement tier of a booking.
// Arrangements bundle the seat with catering; the premium tier adds an
// extended menu.  Values are stored verbatim in the database and in
// JWT-free public requests, so they must remain stable.
type PackageType string

const (
    PackageStandard PackageType = "STANDARD" // standard arrangement
    PackagePremium  PackageType = "PREMIUM"  // premium arrangement
)

// Valid reports whether the package type is one of the known tiers.
func (p PackageType) Valid() bool {
    return p == PackageStandard || p == PackagePremium
}

// ProfilePricing holds the four per-guest prices attached to a show
// profile.  All amounts are in euro cents.  A calendar event may
// override any subset of these fields for a single date (see
// EventPricingOverride).
//
// Fields:
//  StandardCents   – per-guest price of the standard arrangement.
//  PremiumCents    – per-guest price of the premium arrangement.
//  PreDrinkCents   – per-guest price of the pre-show drink add-on.
//  AfterDrinkCents – per-guest price of the after-show drink add-on.
type ProfilePricing struct {
    StandardCents   int64 // show_profiles.standard_cents
    PremiumCents    int64 // show_profiles.premium_cents
    PreDrinkCents   int64 // show_profiles.pre_drink_cents
    AfterDrinkCents int64 // show_profiles.after_drink_cents
}

// ShowProfile is a named pricing and timing variant of a show.  A show
// owns one or more profiles (e.g. a weekday and a weekend profile);
// calendar events select one by ID.
//
// Fields:
//  ID        – primary key identifier.
//  ShowID    – owning show.
//  Name      – display name of the profile (e.g. "Weekend").
//  Color     – hex color used by the planning calendar.
//  StartTime – curtain time in "HH:MM" format.
//  Pricing   – the per-guest prices for this profile.
type ShowProfile struct {
    ID        uint64         // show_profiles.id
    ShowID    uint64         // show_profiles.show_id
    Name      string         // show_profiles.name
    Color     string         // show_profiles.color
    StartTime string         // show_profiles.start_time
    Pricing   ProfilePricing // pricing columns on show_profiles
}

// Show represents a bookable show concept at the venue.  A show is
// immutable within a single pricing calculation and owns the profiles
// that carry its pricing.  Concrete occurrences on the calendar are
// modeled by CalendarEvent.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – public name of the show.
//  Description – optional marketing text.
//  IsActive    – whether the show can still be booked.
//  Profiles    – pricing/timing variants owned by this show, in
//                creation order.  The first profile acts as the
//                fallback when an event references a missing one.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Show struct {
    ID          uint64        // shows.id
    Name        string        // shows.name
    Description string        // shows.description
    IsActive    bool          // shows.is_active
    Profiles    []ShowProfile // rows in show_profiles, ordered by id
    CreatedAt   time.Time     // shows.created_at
    UpdatedAt   time.Time     // shows.updated_at
}
