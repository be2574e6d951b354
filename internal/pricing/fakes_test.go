package pricing

import (
    "context"
    "strings"

    "github.com/mverhoeven/theater-booking/internal/model"
)

// In-memory lookup fakes backing the engine tests.  Unknown IDs
// resolve to (nil, nil) per the lookup contracts; a non-nil err field
// simulates infrastructure failure.

type fakeCatalog struct {
    addons map[string]*model.AddOn
    merch  map[string]*model.MerchItem
    err    error
}

func (f *fakeCatalog) AddOnByID(_ context.Context, id string) (*model.AddOn, error) {
    if f.err != nil {
        return nil, f.err
    }
    return f.addons[id], nil
}

func (f *fakeCatalog) MerchItemByID(_ context.Context, id string) (*model.MerchItem, error) {
    if f.err != nil {
        return nil, f.err
    }
    return f.merch[id], nil
}

type fakeVouchers struct {
    vouchers map[string]*model.Voucher
    err      error
}

func (f *fakeVouchers) VoucherByCode(_ context.Context, code string) (*model.Voucher, error) {
    if f.err != nil {
        return nil, f.err
    }
    return f.vouchers[strings.ToUpper(code)], nil
}

type fakePromos struct {
    rules map[string]*model.PromoRule
    err   error
}

func (f *fakePromos) RuleByCode(_ context.Context, code string) (*model.PromoRule, error) {
    if f.err != nil {
        return nil, f.err
    }
    return f.rules[strings.ToUpper(code)], nil
}

type fakeEvents struct {
    events map[uint64]*model.CalendarEvent
    err    error
}

func (f *fakeEvents) EventByID(_ context.Context, id uint64) (*model.CalendarEvent, error) {
    if f.err != nil {
        return nil, f.err
    }
    return f.events[id], nil
}

type fakeShows struct {
    shows map[uint64]*model.Show
    err   error
}

func (f *fakeShows) ShowByID(_ context.Context, id uint64) (*model.Show, error) {
    if f.err != nil {
        return nil, f.err
    }
    return f.shows[id], nil
}

// newTestCalculator wires a Calculator against empty fakes; tests
// mutate the returned fakes to seed state.
func newTestCalculator() (*Calculator, *fakeCatalog, *fakeVouchers, *fakePromos) {
    catalog := &fakeCatalog{addons: map[string]*model.AddOn{}, merch: map[string]*model.MerchItem{}}
    vouchers := &fakeVouchers{vouchers: map[string]*model.Voucher{}}
    promos := &fakePromos{rules: map[string]*model.PromoRule{}}
    return NewCalculator(catalog, vouchers, promos), catalog, vouchers, promos
}

func cents(v int64) *int64 { return &v }
