package pricing

import (
    "context"
    "encoding/json"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/mverhoeven/theater-booking/internal/model"
)

func newTestRecalculator() (*Recalculator, *fakeEvents, *fakeShows, *fakeCatalog) {
    calc, catalog, _, _ := newTestCalculator()
    events := &fakeEvents{events: map[uint64]*model.CalendarEvent{}}
    shows := &fakeShows{shows: map[uint64]*model.Show{}}
    return NewRecalculator(events, shows, calc), events, shows, catalog
}

func testReservation() *model.Reservation {
    due := time.Date(2026, time.September, 20, 0, 0, 0, 0, time.UTC)
    return &model.Reservation{
        ID:        1,
        Reference: "f3b0c442-98fc-4e1a-8b2d-2f6a7c9d0e11",
        EventID:   100,
        ShowID:    1,
        Guests:    8,
        Package:   model.PackageStandard,
        Status:    "CONFIRMED",
        Financials: model.ReservationFinancials{
            SubtotalCents: 40000,
            TotalDueCents: 40000,
            PaidCents:     20000,
            PaymentDueAt:  &due,
        },
    }
}

func TestRecalculate(t *testing.T) {
    ctx := context.Background()

    t.Run("rederives financials and preserves payments", func(t *testing.T) {
        recalc, events, shows, _ := newTestRecalculator()
        shows.shows[1] = testShow() // first profile: standard €50
        events.events[100] = &model.CalendarEvent{
            ID: 100, ShowID: 1, ProfileID: 10,
            Date: time.Date(2026, time.October, 3, 0, 0, 0, 0, time.UTC),
        }

        res := testReservation()
        res.Guests = 10 // edited upward after the original booking

        fin := recalc.Recalculate(ctx, res)

        assert.Equal(t, int64(50000), fin.SubtotalCents)
        assert.Equal(t, int64(50000), fin.TotalDueCents)
        assert.Equal(t, int64(20000), fin.PaidCents)
        assert.False(t, fin.IsPaid)
        assert.Equal(t, res.Financials.PaymentDueAt, fin.PaymentDueAt)

        var bd Breakdown
        require.NoError(t, json.Unmarshal([]byte(fin.BreakdownJSON), &bd))
        require.Len(t, bd.Items, 1)
        assert.Equal(t, int64(50000), bd.Items[0].TotalCents)
    })

    t.Run("paid in full after shrinking the party", func(t *testing.T) {
        recalc, events, shows, _ := newTestRecalculator()
        shows.shows[1] = testShow()
        events.events[100] = &model.CalendarEvent{ID: 100, ShowID: 1, ProfileID: 10}

        res := testReservation()
        res.Guests = 3 // 3 × €50 = €150, less than the €200 collected

        fin := recalc.Recalculate(ctx, res)
        assert.Equal(t, int64(15000), fin.TotalDueCents)
        assert.True(t, fin.IsPaid)
    })

    t.Run("missing event keeps prior financials", func(t *testing.T) {
        recalc, _, shows, _ := newTestRecalculator()
        shows.shows[1] = testShow()

        res := testReservation()
        fin := recalc.Recalculate(ctx, res)
        assert.Equal(t, res.Financials, fin)
    })

    t.Run("missing show keeps prior financials", func(t *testing.T) {
        recalc, events, _, _ := newTestRecalculator()
        events.events[100] = &model.CalendarEvent{ID: 100, ShowID: 1, ProfileID: 10}

        res := testReservation()
        fin := recalc.Recalculate(ctx, res)
        assert.Equal(t, res.Financials, fin)
    })

    t.Run("lookup failure keeps prior financials", func(t *testing.T) {
        recalc, events, _, _ := newTestRecalculator()
        events.err = assert.AnError

        res := testReservation()
        fin := recalc.Recalculate(ctx, res)
        assert.Equal(t, res.Financials, fin)
    })

    t.Run("override survives recalculation", func(t *testing.T) {
        recalc, events, shows, _ := newTestRecalculator()
        shows.shows[1] = testShow()
        events.events[100] = &model.CalendarEvent{ID: 100, ShowID: 1, ProfileID: 10}

        res := testReservation()
        res.Override = &model.AdminOverride{UnitPriceCents: cents(3000), Reason: "sponsor deal"}

        fin := recalc.Recalculate(ctx, res)
        assert.Equal(t, int64(24000), fin.SubtotalCents) // 8 × €30
    })
}
