package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/buyerdesk/backend/api/handler"
)

type Handlers struct {
	Auth     *apiHandler.AuthHandler
	Buyer    *apiHandler.BuyerHandler
	Transfer *apiHandler.TransferHandler
	Health   *apiHandler.HealthHandler
}

type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

func New(handlers Handlers, auth Middleware, rateLimit Middleware) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/v1/auth/demo", handlers.Auth.DemoLogin)
	r.GET("/api/v1/auth/me", auth(handlers.Auth.Me))
	r.POST("/api/v1/auth/logout", auth(handlers.Auth.Logout))

	// Buyer routes. Writes pass through the rate limiter after auth so the
	// limiter can key on the resolved user.
	r.GET("/api/v1/buyers", auth(handlers.Buyer.List))
	r.POST("/api/v1/buyers", auth(rateLimit(handlers.Buyer.Create)))
	r.GET("/api/v1/buyers/{id}", auth(handlers.Buyer.Get))
	r.PUT("/api/v1/buyers/{id}", auth(rateLimit(handlers.Buyer.Update)))
	r.PUT("/api/v1/buyers/{id}/status", auth(rateLimit(handlers.Buyer.UpdateStatus)))
	r.DELETE("/api/v1/buyers/{id}", auth(rateLimit(handlers.Buyer.Delete)))
	r.GET("/api/v1/buyers/{id}/history", auth(handlers.Buyer.History))

	// CSV transfer routes
	r.POST("/api/v1/buyers/import", auth(rateLimit(handlers.Transfer.Import)))
	r.GET("/api/v1/buyers/export", auth(handlers.Transfer.Export))
	r.GET("/api/v1/imports", auth(handlers.Transfer.Reports))

	return r
}
