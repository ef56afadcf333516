// Package rest serves a read-only view of a running shop over HTTP, for
// watching long simulations from outside the process.
package rest

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/KoroshM/Multithreading-Barbershop-Exercise/shop"
)

// StatusServer exposes the shop's snapshot endpoints. It only ever reads
// from the monitor, through the same lock every other caller uses.
type StatusServer struct {
	shop *shop.Shop
	e    *echo.Echo
}

func NewStatusServer(s *shop.Shop) *StatusServer {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	srv := &StatusServer{shop: s, e: e}
	e.GET("/status", srv.getStatus)
	e.GET("/drops", srv.getDrops)
	return srv
}

// Start blocks serving on addr until Shutdown or a listener error.
func (s *StatusServer) Start(addr string) error {
	return s.e.Start(addr)
}

func (s *StatusServer) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}

// Endpoint for GET /status
func (s *StatusServer) getStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, s.shop.Status())
}

// Endpoint for GET /drops
func (s *StatusServer) getDrops(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]int{"drops": s.shop.Drops()})
}
