// Package repository contains the raw-SQL data access layer.  Each
// repository owns one aggregate (shows, events, catalog, promo rules,
// vouchers, reservations) and defines its own not-found sentinels.
//
// Lookup methods consumed by the pricing engine follow its contract:
// a (nil, nil) return means the requested record does not exist, and
// errors are reserved for infrastructure failures.
package repository

import "errors"

// ErrConflict is returned when a delete or update cannot be performed
// because of conflicting state, such as attempting to delete a show
// that still has calendar events or reservations. Handlers should
// translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")
