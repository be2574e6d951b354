package model

import "time"

// PromoKind discriminates how a promo rule computes its discount.
// Exactly one kind-specific value field on PromoRule is meaningful per
// kind; the others are ignored.
type PromoKind string

const (
    PromoFixedPerPerson PromoKind = "FIXED_PER_PERSON" // AmountPerPersonCents × party size
    PromoPercentage     PromoKind = "PERCENTAGE"       // Percent of the calculation base
    PromoFixedTotal     PromoKind = "FIXED_TOTAL"      // flat AmountCents
    PromoInvitedComp    PromoKind = "INVITED_COMP"     // free tickets for invited guests
)

// PromoScope selects the calculation base of percentage and fixed-total
// rules: the arrangement (ticket) subtotal only, or the entire booking
// including add-ons and merchandise.
type PromoScope string

const (
    ScopeArrangementOnly PromoScope = "ARRANGEMENT_ONLY"
    ScopeEntireBooking   PromoScope = "ENTIRE_BOOKING"
)

// InvitedMode controls how many free tickets an INVITED_COMP rule
// grants: the whole party, or a configured maximum.
type InvitedMode string

const (
    InvitedAll     InvitedMode = "ALL"
    InvitedLimited InvitedMode = "LIMITED"
)

// EligibleAny marks an INVITED_COMP rule as valid for every
// arrangement tier.  Any other value of InvitedConfig.EligiblePackage
// must match the booking's package type (case-insensitively).
const EligibleAny = "ANY"

// InvitedConfig configures an INVITED_COMP rule.
//
// Fields:
//  Mode            – ALL comps the whole party; LIMITED comps at most
//                    FreeCount guests.
//  FreeCount       – maximum number of free tickets in LIMITED mode.
//  EligiblePackage – arrangement restriction: "ANY", "STANDARD" or
//                    "PREMIUM".
type InvitedConfig struct {
    Mode            InvitedMode // promo_rules.invited_mode
    FreeCount       int         // promo_rules.invited_free_count
    EligiblePackage string      // promo_rules.invited_package
}

// PromoConstraints bound when a rule may be applied.  Validation
// short-circuits in a fixed order (party minimum, party maximum, show
// eligibility, window start, window end, blackout dates) so the first
// failing constraint determines the user-facing message.
//
// Fields:
//  MinPartySize    – smallest eligible party (0 = no minimum).
//  MaxPartySize    – largest eligible party (0 = no maximum).
//  ValidFrom       – first day the code may be redeemed (nil = open).
//  ValidUntil      – last day the code may be redeemed (nil = open).
//  EligibleShowIDs – shows the code applies to (empty = all shows).
//  BlackoutDates   – booking dates excluded from the rule, formatted
//                    "2006-01-02".
type PromoConstraints struct {
    MinPartySize    int        // promo_rules.min_party_size
    MaxPartySize    int        // promo_rules.max_party_size
    ValidFrom       *time.Time // promo_rules.valid_from (nullable)
    ValidUntil      *time.Time // promo_rules.valid_until (nullable)
    EligibleShowIDs []uint64   // rows in promo_rule_shows
    BlackoutDates   []string   // rows in promo_rule_blackouts
}

// PromoRule is a named promotional code rule.  Disabled rules never
// apply but remain resolvable so entering a retired code yields a
// dedicated message instead of "unknown code".
//
// Fields:
//  ID                   – primary key identifier.
//  Code                 – redemption code; matched case-insensitively.
//  Label                – receipt label shown on the discount line.
//  Kind                 – discount calculation variant.
//  Scope                – calculation base for PERCENTAGE/FIXED_TOTAL.
//  AmountPerPersonCents – value for FIXED_PER_PERSON.
//  Percent              – value for PERCENTAGE (0–100).
//  AmountCents          – value for FIXED_TOTAL.
//  Invited              – configuration for INVITED_COMP (nil otherwise).
//  Constraints          – applicability bounds.
//  Enabled              – whether the rule currently applies.
//  CreatedAt            – creation timestamp.
//  UpdatedAt            – last update timestamp.
type PromoRule struct {
    ID                   uint64           // promo_rules.id
    Code                 string           // promo_rules.code
    Label                string           // promo_rules.label
    Kind                 PromoKind        // promo_rules.kind
    Scope                PromoScope       // promo_rules.scope
    AmountPerPersonCents int64            // promo_rules.amount_per_person_cents
    Percent              float64          // promo_rules.percent
    AmountCents          int64            // promo_rules.amount_cents
    Invited              *InvitedConfig   // invited_* columns (nullable)
    Constraints          PromoConstraints // constraint columns + join tables
    Enabled              bool             // promo_rules.enabled
    CreatedAt            time.Time        // promo_rules.created_at
    UpdatedAt            time.Time        // promo_rules.updated_at
}
