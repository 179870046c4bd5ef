package dedup

import (
	"context"
	"errors"
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"

	"github.com/Kadu1982/cidade-saude-conexao-digital/internal/platform/auth"
	"github.com/Kadu1982/cidade-saude-conexao-digital/pkg/apierror"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the duplicate check on the versioned API group and, for
// clients following the bare path, on root. root carries no group middleware,
// so rootMW is attached to each bare route.
func (h *Handler) RegisterRoutes(api *echo.Group, root *echo.Group, rootMW ...echo.MiddlewareFunc) {
	roles := auth.RequireRole("registrar", "receptionist", "admin")
	api.POST("/validate-duplicate", h.ValidateDuplicate, roles)
	api.GET("/validation-policy", h.GetPolicy, roles)
	root.POST("/validate-duplicate", h.ValidateDuplicate, append(slices.Clone(rootMW), roles)...)
}

func (h *Handler) ValidateDuplicate(c echo.Context) error {
	var req RegistrationRequest
	if err := c.Bind(&req); err != nil {
		return apierror.New(http.StatusBadRequest, apierror.KindInput, "malformed registration body")
	}
	result, err := h.svc.ValidateRequest(c.Request().Context(), &req)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) GetPolicy(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.DefaultPolicy())
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, ErrInput):
		return apierror.New(http.StatusBadRequest, apierror.KindInput, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return apierror.New(http.StatusGatewayTimeout, apierror.KindTimeout, "duplicate check exceeded its time limit")
	case errors.Is(err, context.Canceled):
		return apierror.New(apierror.StatusClientClosedRequest, apierror.KindCanceled, "request canceled by client")
	default:
		return apierror.New(http.StatusInternalServerError, apierror.KindInternal, err.Error())
	}
}
