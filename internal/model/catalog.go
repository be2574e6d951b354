package model

import "time"

// Well-known add-on IDs.  The two drink add-ons are priced per guest
// through the show profile (and per-date overrides) rather than through
// the catalog, so the totals calculator maps these IDs onto the
// resolved rate fields.  Any other add-on falls back to its catalog
// price.
const (
    AddOnPreDrink   = "pre-show-drink"
    AddOnAfterDrink = "after-show-drink"
)

// AddOn is a bookable extra sold alongside an arrangement, such as a
// drink package or a cloakroom bundle.  Prices are defaults in euro
// cents; the two drink add-ons are normally repriced from the show
// profile.
//
// Fields:
//  ID         – stable string identifier referenced by bookings.
//  Name       – display name.
//  PriceCents – default unit price in cents.
//  IsActive   – whether the add-on is offered to new bookings.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type AddOn struct {
    ID         string    // addons.id
    Name       string    // addons.name
    PriceCents int64     // addons.price_cents
    IsActive   bool      // addons.is_active
    CreatedAt  time.Time // addons.created_at
    UpdatedAt  time.Time // addons.updated_at
}

// MerchItem is a merchandise catalog entry (program book, poster,
// gift set).  Bookings reference items by ID; entries removed from the
// catalog after a booking referenced them are tolerated by the pricing
// engine, which simply skips unresolvable IDs.
//
// Fields:
//  ID         – stable string identifier referenced by bookings.
//  Name       – display name.
//  PriceCents – unit price in cents.
//  IsActive   – whether the item is offered to new bookings.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type MerchItem struct {
    ID         string    // merch_items.id
    Name       string    // merch_items.name
    PriceCents int64     // merch_items.price_cents
    IsActive   bool      // merch_items.is_active
    CreatedAt  time.Time // merch_items.created_at
    UpdatedAt  time.Time // merch_items.updated_at
}
