package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/mverhoeven/theater-booking/internal/handler"    // handlers implementing the business logic
	"github.com/mverhoeven/theater-booking/internal/middleware" // middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Load balancers and monitoring systems use /healthz to verify that the
	// service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Operations that do not require an existing session.
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Rotating refresh: exchanges the refresh token for a new pair.
	g.POST("/refresh", a.Refresh)
	// Non-rotating variant: issues a fresh access token only.
	g.POST("/refresh-access", a.RefreshAccess)
	g.POST("/logout", a.Logout)

	// Protected probe for the current identity.
	p := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	p.GET("/me", a.Me)
}

// RegisterPublic registers the unauthenticated browsing and quoting API:
// shows, the availability calendar, the extras catalog, price quotes and
// promo validation.
func RegisterPublic(e *echo.Echo, pub *handler.PublicHandler, quote *handler.QuoteHandler) {
	g := e.Group("/v1/public")
	g.GET("/shows", pub.GetPublicShows)
	g.GET("/shows/:id", pub.GetPublicShow)
	g.GET("/calendar", pub.GetPublicCalendar)
	g.GET("/catalog", pub.GetPublicCatalog)

	// Quoting is public so the booking page can price compositions live
	// before any reservation exists.
	e.POST("/v1/quote", quote.Quote)
	e.POST("/v1/promos/validate", quote.ValidatePromo)
}

// RegisterStaff registers the reservation desk endpoints.  Both STAFF and
// ADMIN roles may manage reservations.
func RegisterStaff(e *echo.Echo, r *handler.ReservationHandler, jwtSecret string) {
	g := e.Group("/v1/reservations", middleware.JWTAuth(jwtSecret), middleware.RequireRole("STAFF", "ADMIN"))
	g.POST("", r.Create)
	g.POST("/quote", r.Quote)
	g.GET("", r.List)
	g.GET("/:id", r.Get)
	g.GET("/by-reference/:ref", r.GetByReference)
	g.PATCH("/:id", r.Update)
	g.POST("/:id/payments", r.RecordPayment)
	g.POST("/:id/confirm", r.Confirm)
	g.POST("/:id/cancel", r.Cancel)
}

// RegisterAdmin registers the management API for shows, the calendar,
// the catalog, promo rules and vouchers.  ADMIN role only.
func RegisterAdmin(e *echo.Echo, shows *handler.ShowAdminHandler, promos *handler.PromoHandler,
	vouchers *handler.VoucherHandler, catalog *handler.CatalogHandler, jwtSecret string) {
	g := e.Group("/v1/admin", middleware.JWTAuth(jwtSecret), middleware.RequireRole("ADMIN"))

	g.POST("/shows", shows.CreateShow)
	g.GET("/shows", shows.ListShows)
	g.PUT("/shows/:id/profiles/:profile_id/pricing", shows.UpdateProfilePricing)
	g.PATCH("/shows/:id/active", shows.SetShowActive)
	g.POST("/events", shows.CreateEvent)
	g.PUT("/events/:id/pricing", shows.UpdateEventPricing)

	g.POST("/promos", promos.Create)
	g.GET("/promos", promos.List)
	g.GET("/promos/:id", promos.Get)
	g.PATCH("/promos/:id/enabled", promos.SetEnabled)
	g.DELETE("/promos/:id", promos.Delete)

	g.POST("/vouchers", vouchers.Issue)
	g.GET("/vouchers", vouchers.List)
	g.GET("/vouchers/:code", vouchers.Get)
	g.POST("/vouchers/:code/redeem", vouchers.Redeem)

	g.PUT("/catalog/addons", catalog.UpsertAddOn)
	g.PUT("/catalog/merch", catalog.UpsertMerchItem)
	g.GET("/catalog/addons", catalog.ListAddOns)
	g.GET("/catalog/merch", catalog.ListMerch)
}
