package auth

import (
	"net/http"
	"slices"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Kadu1982/cidade-saude-conexao-digital/pkg/apierror"
)

// RequireRole lets the request through when the caller holds any of roles.
// Admins pass every check.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if HasAnyRole(RolesFromContext(c.Request().Context()), roles...) {
				return next(c)
			}
			return apierror.New(http.StatusForbidden, apierror.KindForbidden,
				"required role: "+strings.Join(roles, " or "))
		}
	}
}

func HasAnyRole(held []string, wanted ...string) bool {
	if slices.Contains(held, "admin") {
		return true
	}
	for _, w := range wanted {
		if slices.Contains(held, w) {
			return true
		}
	}
	return false
}
