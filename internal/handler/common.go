package handler

import (
    "context"
    "encoding/json"
    "log/slog"
    "time"

    "github.com/mverhoeven/theater-booking/internal/pricing"
)

// marshalBreakdownJSON serializes a breakdown for the reservation's
// receipt snapshot.  Marshalling cannot realistically fail; an empty
// string is stored if it somehow does.
func marshalBreakdownJSON(bd *pricing.Breakdown) string {
    b, err := json.Marshal(bd)
    if err != nil {
        slog.Error("marshal breakdown", "error", err)
        return ""
    }
    return string(b)
}

// contextWithTimeout returns a background context for work detached
// from the request lifecycle, such as broker publishes.
func contextWithTimeout() (context.Context, context.CancelFunc) {
    return context.WithTimeout(context.Background(), 10*time.Second)
}
