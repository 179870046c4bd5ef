package sandbox

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Kadu1982/cidade-saude-conexao-digital/pkg/apierror"
)

// maxGeneratedPatients bounds a single seed request.
const maxGeneratedPatients = 5000

// Handler exposes seeding and a full dump of the store for demo environments.
// It is only mounted when ENV=development.
type Handler struct {
	seeder *Seeder
}

func NewHandler(seeder *Seeder) *Handler {
	return &Handler{seeder: seeder}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/sandbox/seed", h.handleSeed)
	g.GET("/sandbox/snapshot", h.handleSnapshot)
}

type seedRequest struct {
	PatientCount int    `json:"patientCount"`
	Seed         uint64 `json:"seed"`
}

func (h *Handler) handleSeed(c echo.Context) error {
	var req seedRequest
	if err := c.Bind(&req); err != nil {
		return apierror.New(http.StatusBadRequest, apierror.KindInput, "malformed request body")
	}
	if req.PatientCount == 0 {
		req.PatientCount = 10
	}
	if req.PatientCount < 0 || req.PatientCount > maxGeneratedPatients {
		return apierror.New(http.StatusBadRequest, apierror.KindInput, "patientCount must be between 1 and 5000")
	}

	res, err := h.seeder.Seed(c.Request().Context(), SeedConfig{PatientCount: req.PatientCount, Seed: req.Seed})
	if err != nil {
		return apierror.New(http.StatusInternalServerError, apierror.KindInternal, err.Error())
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) handleSnapshot(c echo.Context) error {
	snap, err := h.seeder.store.Snapshot(c.Request().Context())
	if err != nil {
		return apierror.New(http.StatusInternalServerError, apierror.KindInternal, err.Error())
	}
	return c.JSON(http.StatusOK, snap)
}
