// Package router registers the HTTP routes of the reservation API.
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/table-reservation/internal/handler"
	"github.com/iliyamo/table-reservation/internal/logger"
	"github.com/iliyamo/table-reservation/internal/middleware"
	"github.com/iliyamo/table-reservation/internal/model"
)

// RegisterRoutes registers the unauthenticated operational endpoints.
func RegisterRoutes(e *echo.Echo, db handler.Pinger, metrics http.Handler) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db))
	e.GET("/metrics", echo.WrapHandler(metrics))
}

// RegisterAuth registers /v1/auth (open) and /v1/me (JWT).
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, log *logger.Logger) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)

	e.GET("/v1/me", a.Me, middleware.JWTAuth(jwtSecret), middleware.WithAuthLogger(log))
}

// RegisterTables exposes the table catalog.
func RegisterTables(e *echo.Echo, t *handler.TableHandler) {
	e.GET("/v1/tables", t.List)
}

// RegisterReservations registers the reservation endpoints.  cache wraps
// the availability report only; limit wraps the write endpoints.
func RegisterReservations(e *echo.Echo, h *handler.ReservationHandler, jwtSecret string, cache, limit echo.MiddlewareFunc, log *logger.Logger) {
	g := e.Group("/v1/reservations")

	// public
	g.GET("/availability", h.Availability, cache)
	g.POST("", h.Create, middleware.OptionalJWT(jwtSecret), middleware.WithAuthLogger(log), limit)

	// authenticated
	jwt := middleware.JWTAuth(jwtSecret)
	who := middleware.WithAuthLogger(log)
	g.POST("/check", h.Check, jwt, who, limit)
	g.GET("/:id", h.Get, jwt, who)

	// admin
	admin := middleware.RequireRole(model.RoleAdmin)
	g.GET("", h.List, jwt, who, admin)
	g.PUT("/:id", h.Update, jwt, who, admin, limit)
	g.PATCH("/:id", h.Update, jwt, who, admin, limit)
	g.DELETE("/:id", h.Delete, jwt, who, admin)
}

// RegisterMenu exposes the menu: reads are public, writes need ADMIN.
func RegisterMenu(e *echo.Echo, h *handler.MealHandler, jwtSecret string, log *logger.Logger) {
	e.GET("/v1/categories", h.Categories)

	g := e.Group("/v1/meals")
	g.GET("", h.List)
	g.GET("/:id", h.Get)

	jwt := middleware.JWTAuth(jwtSecret)
	who := middleware.WithAuthLogger(log)
	admin := middleware.RequireRole(model.RoleAdmin)
	g.POST("", h.Create, jwt, who, admin)
	g.PUT("/:id", h.Update, jwt, who, admin)
	g.PATCH("/:id", h.Update, jwt, who, admin)
	g.DELETE("/:id", h.Delete, jwt, who, admin)
}
