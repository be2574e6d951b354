package handler

import (
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/mverhoeven/theater-booking/internal/model"
    "github.com/mverhoeven/theater-booking/internal/repository"
)

// ShowAdminHandler exposes the admin surface for shows, their pricing
// profiles and the booking calendar.
type ShowAdminHandler struct {
    Shows  *repository.ShowRepo
    Events *repository.EventRepo
}

func NewShowAdminHandler(shows *repository.ShowRepo, events *repository.EventRepo) *ShowAdminHandler {
    return &ShowAdminHandler{Shows: shows, Events: events}
}

type profilePricingDTO struct {
    StandardCents   int64 `json:"standard_cents"`
    PremiumCents    int64 `json:"premium_cents"`
    PreDrinkCents   int64 `json:"pre_drink_cents"`
    AfterDrinkCents int64 `json:"after_drink_cents"`
}

type profileDTO struct {
    ID        uint64            `json:"id,omitempty"`
    Name      string            `json:"name"`
    Color     string            `json:"color"`
    StartTime string            `json:"start_time"`
    Pricing   profilePricingDTO `json:"pricing"`
}

type createShowReq struct {
    Name        string       `json:"name"`
    Description string       `json:"description"`
    Profiles    []profileDTO `json:"profiles"`
}

type showResp struct {
    ID          uint64       `json:"id"`
    Name        string       `json:"name"`
    Description string       `json:"description,omitempty"`
    IsActive    bool         `json:"is_active"`
    Profiles    []profileDTO `json:"profiles"`
}

func toShowResp(s *model.Show) showResp {
    out := showResp{ID: s.ID, Name: s.Name, Description: s.Description, IsActive: s.IsActive}
    out.Profiles = make([]profileDTO, 0, len(s.Profiles))
    for _, p := range s.Profiles {
        out.Profiles = append(out.Profiles, profileDTO{
            ID:        p.ID,
            Name:      p.Name,
            Color:     p.Color,
            StartTime: p.StartTime,
            Pricing: profilePricingDTO{
                StandardCents:   p.Pricing.StandardCents,
                PremiumCents:    p.Pricing.PremiumCents,
                PreDrinkCents:   p.Pricing.PreDrinkCents,
                AfterDrinkCents: p.Pricing.AfterDrinkCents,
            },
        })
    }
    return out
}

// CreateShow handles POST /v1/admin/shows.  A show is created together
// with at least one pricing profile; events cannot be scheduled for a
// show without profiles.
func (h *ShowAdminHandler) CreateShow(c echo.Context) error {
    var req createShowReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Name = strings.TrimSpace(req.Name)
    if req.Name == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
    }
    if len(req.Profiles) == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "at least one profile is required"})
    }

    show := &model.Show{Name: req.Name, Description: strings.TrimSpace(req.Description), IsActive: true}
    for _, p := range req.Profiles {
        name := strings.TrimSpace(p.Name)
        if name == "" {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "profile name is required"})
        }
        if p.Pricing.StandardCents < 0 || p.Pricing.PremiumCents < 0 ||
            p.Pricing.PreDrinkCents < 0 || p.Pricing.AfterDrinkCents < 0 {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "profile prices must not be negative"})
        }
        show.Profiles = append(show.Profiles, model.ShowProfile{
            Name:      name,
            Color:     strings.TrimSpace(p.Color),
            StartTime: strings.TrimSpace(p.StartTime),
            Pricing: model.ProfilePricing{
                StandardCents:   p.Pricing.StandardCents,
                PremiumCents:    p.Pricing.PremiumCents,
                PreDrinkCents:   p.Pricing.PreDrinkCents,
                AfterDrinkCents: p.Pricing.AfterDrinkCents,
            },
        })
    }
    if err := h.Shows.Create(c.Request().Context(), show); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create show failed"})
    }
    return c.JSON(http.StatusCreated, toShowResp(show))
}

// ListShows handles GET /v1/admin/shows (inactive included).
func (h *ShowAdminHandler) ListShows(c echo.Context) error {
    shows, err := h.Shows.List(c.Request().Context(), false)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    out := make([]showResp, 0, len(shows))
    for i := range shows {
        out = append(out, toShowResp(&shows[i]))
    }
    return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// UpdateProfilePricing handles PUT /v1/admin/shows/:id/profiles/:profile_id/pricing.
// Existing reservations keep their stored snapshot until staff triggers
// a recalculation through a reservation edit.
func (h *ShowAdminHandler) UpdateProfilePricing(c echo.Context) error {
    showID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    profileID, err := strconv.ParseUint(c.Param("profile_id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid profile_id"})
    }
    var req profilePricingDTO
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if req.StandardCents < 0 || req.PremiumCents < 0 || req.PreDrinkCents < 0 || req.AfterDrinkCents < 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "prices must not be negative"})
    }
    err = h.Shows.UpdateProfilePricing(c.Request().Context(), showID, profileID, model.ProfilePricing{
        StandardCents:   req.StandardCents,
        PremiumCents:    req.PremiumCents,
        PreDrinkCents:   req.PreDrinkCents,
        AfterDrinkCents: req.AfterDrinkCents,
    })
    if err != nil {
        if err == repository.ErrProfileNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "profile not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
    }
    return c.NoContent(http.StatusNoContent)
}

// SetShowActive handles PATCH /v1/admin/shows/:id/active.
func (h *ShowAdminHandler) SetShowActive(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    var req struct {
        Active *bool `json:"active"`
    }
    if err := c.Bind(&req); err != nil || req.Active == nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "active is required"})
    }
    if err := h.Shows.SetActive(c.Request().Context(), id, *req.Active); err != nil {
        if err == repository.ErrShowNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
    }
    return c.NoContent(http.StatusNoContent)
}

type eventPricingDTO struct {
    StandardCents   *int64 `json:"standard_cents"`
    PremiumCents    *int64 `json:"premium_cents"`
    PreDrinkCents   *int64 `json:"pre_drink_cents"`
    AfterDrinkCents *int64 `json:"after_drink_cents"`
}

func (p *eventPricingDTO) toModel() *model.EventPricingOverride {
    if p == nil {
        return nil
    }
    ov := &model.EventPricingOverride{
        StandardCents:   p.StandardCents,
        PremiumCents:    p.PremiumCents,
        PreDrinkCents:   p.PreDrinkCents,
        AfterDrinkCents: p.AfterDrinkCents,
    }
    if ov.Empty() {
        return nil
    }
    return ov
}

type createEventReq struct {
    ShowID    uint64           `json:"show_id"`
    ProfileID uint64           `json:"profile_id"`
    Date      string           `json:"date"` // YYYY-MM-DD
    Capacity  int              `json:"capacity"`
    Pricing   *eventPricingDTO `json:"pricing"`
}

// CreateEvent handles POST /v1/admin/events: one bookable calendar
// date for a show, optionally carrying per-date price overrides.
func (h *ShowAdminHandler) CreateEvent(c echo.Context) error {
    var req createEventReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if req.ShowID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "show_id is required"})
    }
    day, err := time.Parse("2006-01-02", strings.TrimSpace(req.Date))
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date"})
    }
    if req.Capacity <= 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "capacity must be positive"})
    }

    ctx := c.Request().Context()
    show, err := h.Shows.ShowByID(ctx, req.ShowID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if show == nil {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
    }
    profileID := req.ProfileID
    if profileID != 0 {
        found := false
        for _, p := range show.Profiles {
            if p.ID == profileID {
                found = true
                break
            }
        }
        if !found {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "profile does not belong to show"})
        }
    } else if len(show.Profiles) > 0 {
        profileID = show.Profiles[0].ID
    }

    if existing, err := h.Events.GetByShowAndDate(ctx, req.ShowID, day); err == nil && existing != nil {
        return c.JSON(http.StatusConflict, echo.Map{"error": "event already scheduled for this date"})
    } else if err != nil && err != repository.ErrEventNotFound {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }

    event := &model.CalendarEvent{
        ShowID:    req.ShowID,
        ProfileID: profileID,
        Date:      day,
        Capacity:  req.Capacity,
        Pricing:   req.Pricing.toModel(),
    }
    if err := h.Events.Create(ctx, event); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create event failed"})
    }
    return c.JSON(http.StatusCreated, echo.Map{
        "id":         event.ID,
        "show_id":    event.ShowID,
        "profile_id": event.ProfileID,
        "date":       event.Date.Format("2006-01-02"),
        "capacity":   event.Capacity,
    })
}

// UpdateEventPricing handles PUT /v1/admin/events/:id/pricing.  A body
// with all fields null clears every override so the profile prices
// apply again.
func (h *ShowAdminHandler) UpdateEventPricing(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    var req eventPricingDTO
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if err := h.Events.UpdatePricing(c.Request().Context(), id, req.toModel()); err != nil {
        if err == repository.ErrEventNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
    }
    return c.NoContent(http.StatusNoContent)
}
