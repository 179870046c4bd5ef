package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/Kadu1982/cidade-saude-conexao-digital/internal/platform/auth"
	"github.com/Kadu1982/cidade-saude-conexao-digital/pkg/apierror"
)

// Recovery turns a panicking handler into a 500 InternalError body and logs
// the panic with the route and caller that triggered it.
func Recovery(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if r == http.ErrAbortHandler {
					panic(r)
				}
				rid, _ := c.Get("request_id").(string)
				logger.Error().
					Str("request_id", rid).
					Str("route", c.Request().Method+" "+c.Path()).
					Str("user_id", auth.UserIDFromContext(c.Request().Context())).
					Str("panic", fmt.Sprint(r)).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")
				err = apierror.New(http.StatusInternalServerError, apierror.KindInternal, "internal server error")
			}()
			return next(c)
		}
	}
}
