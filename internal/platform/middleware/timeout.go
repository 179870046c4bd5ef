package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Kadu1982/cidade-saude-conexao-digital/pkg/apierror"
)

// RequestTimeout bounds each request's context by timeout. If the deadline
// passes first the client gets a 504 Timeout body and the handler's late
// result is dropped; handlers stop work only if they watch ctx.
// Paths listed in exempt run without a deadline.
func RequestTimeout(timeout time.Duration, exempt ...string) echo.MiddlewareFunc {
	skip := make(map[string]bool, len(exempt))
	for _, p := range exempt {
		skip[p] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if timeout <= 0 || skip[c.Request().URL.Path] {
				return next(c)
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
			defer cancel()
			c.SetRequest(c.Request().WithContext(ctx))

			done := make(chan error, 1)
			go func() { done <- next(c) }()

			select {
			case err := <-done:
				return err
			case <-ctx.Done():
				if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
					return ctx.Err()
				}
				return apierror.New(http.StatusGatewayTimeout, apierror.KindTimeout,
					"request exceeded "+timeout.String())
			}
		}
	}
}
