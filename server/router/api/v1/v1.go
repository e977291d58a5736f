// Package v1 exposes the REST and SSE surface of the sorted API.
package v1

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v5"

	"github.com/codeWithHak/sorted/plugin/agent"
	"github.com/codeWithHak/sorted/server/auth"
	"github.com/codeWithHak/sorted/server/profile"
	"github.com/codeWithHak/sorted/store"
)

// APIV1Service bundles the dependencies of the v1 handlers.
type APIV1Service struct {
	Store         *store.Store
	Profile       *profile.Profile
	Authenticator *auth.Authenticator

	runner *agent.Runner
}

// NewAPIV1Service creates the v1 handler set.
func NewAPIV1Service(st *store.Store, prof *profile.Profile, authenticator *auth.Authenticator, model agent.LanguageModel) *APIV1Service {
	return &APIV1Service{
		Store:         st,
		Profile:       prof,
		Authenticator: authenticator,
		runner:        agent.NewRunner(model, st),
	}
}

// Register mounts all v1 routes on the echo instance.
func (s *APIV1Service) Register(e *echo.Echo) {
	e.GET("/api/v1/auth/me", s.authMe)
	s.registerTaskRoutes(e)
	s.registerChatRoutes(e)
}

func (s *APIV1Service) authMe(c *echo.Context) error {
	user, err := s.requireAuth(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"id": user.Sub, "email": user.Email})
}

// requireAuth extracts and verifies the bearer token, returning the caller's
// identity or a 401.
func (s *APIV1Service) requireAuth(c *echo.Context) (*auth.Claims, error) {
	header := c.Request().Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	claims, err := s.Authenticator.Verify(c.Request().Context(), strings.TrimSpace(token))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid authentication token")
	}
	return claims, nil
}

// pagination reads page/per_page query parameters with bounds.
func pagination(c *echo.Context, defaultPerPage, maxPerPage int) (page, perPage int) {
	page = 1
	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil && v >= 1 {
		page = v
	}
	perPage = defaultPerPage
	if v, err := strconv.Atoi(c.QueryParam("per_page")); err == nil && v >= 1 {
		perPage = v
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

func totalPages(total, perPage int) int {
	if total <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}
