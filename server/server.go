// Package server wires the HTTP surface: routing, middleware and lifecycle.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"

	"github.com/codeWithHak/sorted/plugin/agent"
	"github.com/codeWithHak/sorted/server/auth"
	"github.com/codeWithHak/sorted/server/profile"
	apiv1 "github.com/codeWithHak/sorted/server/router/api/v1"
	"github.com/codeWithHak/sorted/store"
)

// Server bundles the echo instance with its dependencies.
type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echo       *echo.Echo
	httpServer *http.Server
}

// New assembles the server. The caller owns the store lifecycle.
func New(prof *profile.Profile, st *store.Store, authenticator *auth.Authenticator, model agent.LanguageModel) *Server {
	e := echo.New()

	e.Use(middleware.Recover())
	corsConfig := middleware.CORSConfig{
		AllowOrigins: prof.Origins,
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType},
	}
	if len(corsConfig.AllowOrigins) == 0 && prof.IsDev() {
		corsConfig.AllowOrigins = []string{"*"}
	}
	e.Use(middleware.CORSWithConfig(corsConfig))

	s := &Server{
		Profile: prof,
		Store:   st,
		echo:    e,
	}

	e.GET("/healthz", s.healthz)

	apiV1 := apiv1.NewAPIV1Service(st, prof, authenticator, model)
	apiV1.Register(e)

	s.httpServer = &http.Server{
		Addr:              prof.ListenAddr(),
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) healthz(c *echo.Context) error {
	if err := s.Store.Ping(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "database unreachable")
	}
	return c.String(http.StatusOK, "ok")
}

// Start blocks serving HTTP until Shutdown is called or the listener fails.
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
