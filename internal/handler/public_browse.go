// This file defines handlers for the public browsing API. These routes allow
// unauthenticated visitors to browse shows, the availability calendar and the
// add-on/merchandise catalog. Internal fields (profile colors aside, pricing
// internals such as event overrides) are folded into effective rates rather
// than exposed raw.

package handler

import (
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/mverhoeven/theater-booking/internal/model"
    "github.com/mverhoeven/theater-booking/internal/pricing"
    "github.com/mverhoeven/theater-booking/internal/repository"
)

// PublicHandler aggregates repositories needed for unauthenticated browsing.
type PublicHandler struct {
    ShowRepo    *repository.ShowRepo
    EventRepo   *repository.EventRepo
    CatalogRepo *repository.CatalogRepo
}

// PublicShow represents a show in list responses.
type PublicShow struct {
    ID          uint64 `json:"id"`
    Name        string `json:"name"`
    Description string `json:"description,omitempty"`
}

// PublicProfile exposes a show profile with its per-guest prices.
type PublicProfile struct {
    ID            uint64 `json:"id"`
    Name          string `json:"name"`
    StartTime     string `json:"start_time"`
    StandardCents int64  `json:"standard_cents"`
    PremiumCents  int64  `json:"premium_cents"`
}

// PublicEvent represents one bookable calendar date with the effective
// per-guest rates for that date, overrides already applied.
type PublicEvent struct {
    ID       uint64                 `json:"id"`
    ShowID   uint64                 `json:"show_id"`
    Date     string                 `json:"date"`
    Capacity int                    `json:"capacity"`
    Rates    pricing.EffectiveRates `json:"rates"`
}

// PublicCatalogItem is a purchasable extra (add-on or merchandise).
type PublicCatalogItem struct {
    ID         string `json:"id"`
    Name       string `json:"name"`
    PriceCents int64  `json:"price_cents"`
}

// GetPublicShows returns all active shows.
func (h *PublicHandler) GetPublicShows(c echo.Context) error {
    ctx := c.Request().Context()
    shows, err := h.ShowRepo.List(ctx, true)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    out := make([]PublicShow, 0, len(shows))
    for _, s := range shows {
        out = append(out, PublicShow{ID: s.ID, Name: s.Name, Description: s.Description})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetPublicShow returns one show with its profiles and their prices.
func (h *PublicHandler) GetPublicShow(c echo.Context) error {
    ctx := c.Request().Context()
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    s, err := h.ShowRepo.GetByID(ctx, id)
    if err != nil {
        if err == repository.ErrShowNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    profiles := make([]PublicProfile, 0, len(s.Profiles))
    for _, p := range s.Profiles {
        profiles = append(profiles, PublicProfile{
            ID:            p.ID,
            Name:          p.Name,
            StartTime:     p.StartTime,
            StandardCents: p.Pricing.StandardCents,
            PremiumCents:  p.Pricing.PremiumCents,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{
        "id":          s.ID,
        "name":        s.Name,
        "description": s.Description,
        "profiles":    profiles,
    })
}

// GetPublicCalendar lists events between ?from and ?to (YYYY-MM-DD,
// both inclusive; defaults to the coming month) with the effective
// rates per date. Events whose show was deactivated, or that resolve
// to all-zero rates, are omitted because they cannot be booked.
func (h *PublicHandler) GetPublicCalendar(c echo.Context) error {
    ctx := c.Request().Context()

    from := time.Now().UTC()
    to := from.AddDate(0, 1, 0)
    if v := c.QueryParam("from"); v != "" {
        t, err := time.Parse("2006-01-02", v)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid from date"})
        }
        from = t
    }
    if v := c.QueryParam("to"); v != "" {
        t, err := time.Parse("2006-01-02", v)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid to date"})
        }
        to = t
    }
    if to.Before(from) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "to must not precede from"})
    }

    events, err := h.EventRepo.ListBetween(ctx, from, to)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }

    // Shows repeat across events; fetch each one once.
    showCache := map[uint64]*model.Show{}
    out := make([]PublicEvent, 0, len(events))
    for _, ev := range events {
        s, ok := showCache[ev.ShowID]
        if !ok {
            var err error
            s, err = h.ShowRepo.ShowByID(ctx, ev.ShowID)
            if err != nil {
                return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
            }
            showCache[ev.ShowID] = s
        }
        if s == nil || !s.IsActive {
            continue
        }
        rates := pricing.ResolveRates(&ev, s)
        if rates.Zero() {
            continue
        }
        out = append(out, PublicEvent{
            ID:       ev.ID,
            ShowID:   ev.ShowID,
            Date:     ev.Date.Format("2006-01-02"),
            Capacity: ev.Capacity,
            Rates:    rates,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetPublicCatalog returns the active add-ons and merchandise.
func (h *PublicHandler) GetPublicCatalog(c echo.Context) error {
    ctx := c.Request().Context()
    addons, err := h.CatalogRepo.ListAddOns(ctx, true)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    merch, err := h.CatalogRepo.ListMerch(ctx, true)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    outA := make([]PublicCatalogItem, 0, len(addons))
    for _, a := range addons {
        outA = append(outA, PublicCatalogItem{ID: a.ID, Name: a.Name, PriceCents: a.PriceCents})
    }
    outM := make([]PublicCatalogItem, 0, len(merch))
    for _, m := range merch {
        outM = append(outM, PublicCatalogItem{ID: m.ID, Name: m.Name, PriceCents: m.PriceCents})
    }
    return c.JSON(http.StatusOK, echo.Map{"addons": outA, "merch": outM})
}
