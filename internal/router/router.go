package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/kivustream/streampass/internal/handler"    // import the handlers that implement business logic
	"github.com/kivustream/streampass/internal/middleware" // import middleware for JWT authentication
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterViewer registers the viewer-facing surface.  Everything under
// the protected group requires a valid access token; the token endpoint
// lives outside it so a development client can bootstrap a session.
// The response cache is applied after authentication so its keys can be
// partitioned by viewer; passing nil disables caching.
func RegisterViewer(e *echo.Echo, ev *handler.EventHandler, fav *handler.FavoriteHandler,
	cat *handler.CategoryHandler, tk *handler.TicketHandler, tok *handler.TokenHandler,
	jwtSecret string, cache echo.MiddlewareFunc) {
	// Development-only token minting.  The handler itself refuses to
	// serve outside the dev environment.
	e.POST("/v1/auth/dev-token", tok.DevToken)

	// Create a group for routes that require a valid access token.  All
	// handlers registered on this group execute the JWTAuth middleware
	// before being invoked.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	if cache != nil {
		auth.Use(cache)
	}

	// Event catalog: paginated listing, single-event detail and the
	// category chips; listings are annotated with the viewer's
	// phase/action decision.
	auth.GET("/events", ev.List)
	auth.GET("/events/:id", ev.GetByID)
	auth.GET("/categories", cat.List)

	// Favorites: listing, toggle, and the shared refresh key screens
	// observe to know their cached lists went stale.
	auth.GET("/favorites", fav.List)
	auth.POST("/favorites/:id/toggle", fav.Toggle)
	auth.GET("/refresh-key", fav.RefreshKey)

	// Purchased tickets.
	auth.GET("/tickets", tk.List)
}

// RegisterPayments registers the purchase flow.  Submission, polling and
// dismissal are viewer-scoped; the checkout return and the provider
// confirmation are reached without a viewer token, so they live outside
// the protected group and authenticate by reference and merchant token
// respectively.
func RegisterPayments(e *echo.Echo, p *handler.PaymentHandler, jwtSecret string) {
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.POST("/events/:id/pay", p.Submit)
	auth.GET("/payments/:ref", p.Get)
	auth.POST("/payments/:ref/dismiss", p.Dismiss)

	// The hosted checkout page redirects the viewer's browser here with
	// the outcome marker appended to the path (/approve, /cancel,
	// /decline).  The marker substrings are the wire contract with the
	// provider.
	e.GET("/v1/payments/:ref/return/*", p.Return)
	e.GET("/v1/payments/:ref/return", p.Return)

	// Server-to-server confirmation for asynchronous mobile-money
	// charges, authenticated with the merchant token.
	e.POST("/v1/payments/:ref/confirm", p.Confirm)
}
