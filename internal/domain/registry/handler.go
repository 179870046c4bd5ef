package registry

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Kadu1982/cidade-saude-conexao-digital/internal/platform/auth"
	"github.com/Kadu1982/cidade-saude-conexao-digital/pkg/apierror"
	"github.com/Kadu1982/cidade-saude-conexao-digital/pkg/pagination"
)

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes mounts the registry API on api. Booking is also served on the
// bare path through root, with rootMW attached per route.
func (h *Handler) RegisterRoutes(api *echo.Group, root *echo.Group, rootMW ...echo.MiddlewareFunc) {
	read := auth.RequireRole("registrar", "receptionist", "scheduler", "admin")
	write := auth.RequireRole("receptionist", "scheduler", "admin")
	manage := auth.RequireRole("scheduler", "admin")

	api.POST("/appointments", h.CreateAppointment, write)
	root.POST("/appointments", h.CreateAppointment, append(slices.Clone(rootMW), write)...)
	api.GET("/appointments/:id", h.GetAppointment, read)
	api.PATCH("/appointments/:id/status", h.UpdateAppointmentStatus, write)

	api.POST("/patients", h.CreatePatient, auth.RequireRole("registrar", "receptionist", "admin"))
	api.GET("/patients", h.SearchPatients, read)
	api.GET("/patients/:id", h.GetPatient, read)
	api.GET("/patients/:id/appointments", h.ListPatientAppointments, read)

	api.GET("/schedules/available", h.ListAvailableSchedules, read)
	api.POST("/schedules/:id/block", h.BlockSchedule, manage)
	api.POST("/schedules/:id/unblock", h.UnblockSchedule, manage)

	api.POST("/waitlist", h.AddWaitlistEntry, write)
	api.GET("/waitlist", h.ListWaitlist, read)
	api.POST("/waitlist/:id/contact", h.RecordContact, write)

	api.GET("/quotas", h.ListQuotas, read)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func bindAndValidate(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return apierror.New(http.StatusBadRequest, apierror.KindInput, "malformed request body")
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fe.Field()+" failed "+fe.Tag())
			}
			return apierror.New(http.StatusBadRequest, apierror.KindInput, strings.Join(msgs, "; "))
		}
		return apierror.New(http.StatusBadRequest, apierror.KindInput, err.Error())
	}
	return nil
}

// -- Appointments --

func (h *Handler) CreateAppointment(c echo.Context) error {
	var req BookingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	a, err := h.store.AddAppointment(c.Request().Context(), req)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) GetAppointment(c echo.Context) error {
	a, err := h.store.GetAppointment(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, a)
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=confirmed completed cancelled no-show"`
}

func (h *Handler) UpdateAppointmentStatus(c echo.Context) error {
	var req statusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	a, err := h.store.TransitionAppointment(c.Request().Context(), c.Param("id"), AppointmentStatus(req.Status))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ListPatientAppointments(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")
	if _, err := h.store.GetPatient(ctx, id); err != nil {
		return toHTTPError(err)
	}
	items, err := h.store.ListAppointmentsByPatient(ctx, id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, items)
}

// -- Patients --

type patientRequest struct {
	Name             string          `json:"name" validate:"required"`
	MotherName       string          `json:"motherName"`
	MotherNationalID string          `json:"motherNationalId"`
	NationalID       string          `json:"nationalId"`
	HealthCardID     string          `json:"healthCardId"`
	BirthDate        string          `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
	Sex              string          `json:"sex" validate:"omitempty,oneof=M F O"`
	Phone            string          `json:"phone"`
	Email            string          `json:"email" validate:"omitempty,email"`
	Address          string          `json:"address"`
	Priority         PatientPriority `json:"priority" validate:"omitempty,oneof=normal priority urgent"`
}

func (r patientRequest) toPatient() *Patient {
	p := &Patient{
		Name:             r.Name,
		MotherName:       r.MotherName,
		MotherNationalID: r.MotherNationalID,
		NationalID:       r.NationalID,
		HealthCardID:     r.HealthCardID,
		Sex:              r.Sex,
		Phone:            r.Phone,
		Email:            r.Email,
		Address:          r.Address,
		Priority:         r.Priority,
	}
	if t, err := time.Parse("2006-01-02", r.BirthDate); err == nil {
		p.BirthDate = &t
	}
	return p
}

func (h *Handler) CreatePatient(c echo.Context) error {
	var req patientRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	p := req.toPatient()
	if err := h.store.AddPatient(c.Request().Context(), p); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetPatient(c echo.Context) error {
	p, err := h.store.GetPatient(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, p)
}

// SearchPatients looks patients up by national id, health card or name, in
// that order of precedence. Without a filter it lists everyone.
func (h *Handler) SearchPatients(c echo.Context) error {
	ctx := c.Request().Context()
	pg := pagination.FromContext(c)

	var (
		items []*Patient
		err   error
	)
	switch {
	case c.QueryParam("national_id") != "":
		items, err = single(h.store.GetPatientByNationalID(ctx, c.QueryParam("national_id")))
	case c.QueryParam("health_card") != "":
		items, err = single(h.store.GetPatientByHealthCard(ctx, c.QueryParam("health_card")))
	case c.QueryParam("name") != "":
		items, err = h.store.SearchPatientsByName(ctx, c.QueryParam("name"))
	default:
		items, err = h.store.ListPatients(ctx)
	}
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, pagination.Paginate(items, pg))
}

func single(p *Patient, err error) ([]*Patient, error) {
	if errors.Is(err, ErrNotFound) {
		return []*Patient{}, nil
	}
	if err != nil {
		return nil, err
	}
	return []*Patient{p}, nil
}

// -- Schedules --

func (h *Handler) ListAvailableSchedules(c echo.Context) error {
	specialty := c.QueryParam("specialty")
	if specialty == "" {
		return apierror.New(http.StatusBadRequest, apierror.KindInput, "specialty is required")
	}
	var date time.Time
	if v := c.QueryParam("date"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			return apierror.New(http.StatusBadRequest, apierror.KindInput, "date must be YYYY-MM-DD")
		}
		date = d
	}
	items, err := h.store.ListAvailableSchedules(c.Request().Context(), specialty, date)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, items)
}

type blockRequest struct {
	Reason string `json:"reason" validate:"required"`
}

func (h *Handler) BlockSchedule(c echo.Context) error {
	var req blockRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	sc, err := h.store.BlockSchedule(c.Request().Context(), c.Param("id"), req.Reason)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, sc)
}

func (h *Handler) UnblockSchedule(c echo.Context) error {
	sc, err := h.store.UnblockSchedule(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, sc)
}

// -- Waitlist --

type waitlistRequest struct {
	PatientID               string `json:"patientId" validate:"required"`
	Specialty               string `json:"specialty" validate:"required"`
	PreferredFacilityID     string `json:"preferredFacilityId"`
	PreferredProfessionalID string `json:"preferredProfessionalId"`
	Priority                int    `json:"priority" validate:"required,min=1,max=10"`
	Criteria                string `json:"criteria"`
}

func (h *Handler) AddWaitlistEntry(c echo.Context) error {
	var req waitlistRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	e := &WaitlistEntry{
		PatientID:               req.PatientID,
		Specialty:               req.Specialty,
		PreferredFacilityID:     req.PreferredFacilityID,
		PreferredProfessionalID: req.PreferredProfessionalID,
		Priority:                req.Priority,
		Criteria:                req.Criteria,
	}
	if err := h.store.AddWaitlistEntry(c.Request().Context(), e); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, e)
}

func (h *Handler) ListWaitlist(c echo.Context) error {
	specialty := c.QueryParam("specialty")
	if specialty == "" {
		return apierror.New(http.StatusBadRequest, apierror.KindInput, "specialty is required")
	}
	items, err := h.store.ListWaitlistFor(c.Request().Context(), specialty)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) RecordContact(c echo.Context) error {
	e, err := h.store.RecordContactAttempt(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, e)
}

// -- Quotas --

func (h *Handler) ListQuotas(c echo.Context) error {
	facilityID := c.QueryParam("facility_id")
	if facilityID == "" {
		return apierror.New(http.StatusBadRequest, apierror.KindInput, "facility_id is required")
	}
	items, err := h.store.ListQuotasByFacility(c.Request().Context(), facilityID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return apierror.New(http.StatusNotFound, apierror.KindNotFound, err.Error())
	case errors.Is(err, ErrCapacityExceeded):
		return apierror.New(http.StatusConflict, apierror.KindCapacityExceeded, err.Error())
	case errors.Is(err, ErrScheduleBlocked):
		return apierror.New(http.StatusConflict, apierror.KindScheduleBlocked, err.Error())
	case errors.Is(err, ErrInvalidTransition):
		return apierror.New(http.StatusConflict, apierror.KindInvalidTransition, err.Error())
	case errors.Is(err, ErrAlreadyExists):
		return apierror.New(http.StatusConflict, apierror.KindConflict, err.Error())
	case errors.Is(err, ErrInvalidInput):
		return apierror.New(http.StatusBadRequest, apierror.KindInput, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return apierror.New(http.StatusGatewayTimeout, apierror.KindTimeout, "registry operation exceeded its time limit")
	case errors.Is(err, context.Canceled):
		return apierror.New(apierror.StatusClientClosedRequest, apierror.KindCanceled, "request canceled by client")
	default:
		return apierror.New(http.StatusInternalServerError, apierror.KindInternal, err.Error())
	}
}
