package registry

import (
	"slices"
	"time"
)

type PatientPriority string

const (
	PriorityNormal   PatientPriority = "normal"
	PriorityPriority PatientPriority = "priority"
	PriorityUrgent   PatientPriority = "urgent"
)

// Patient is a registered person. NationalID is the CPF, HealthCardID the
// national health card (CNS).
type Patient struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	MotherName       string          `json:"motherName,omitempty"`
	MotherNationalID string          `json:"motherNationalId,omitempty"`
	NationalID       string          `json:"nationalId,omitempty"`
	HealthCardID     string          `json:"healthCardId,omitempty"`
	BirthDate        *time.Time      `json:"birthDate,omitempty"`
	Sex              string          `json:"sex,omitempty"`
	Phone            string          `json:"phone,omitempty"`
	Email            string          `json:"email,omitempty"`
	Address          string          `json:"address,omitempty"`
	Priority         PatientPriority `json:"priority"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

type WorkHours struct {
	Weekday time.Weekday `json:"weekday"`
	Start   string       `json:"start"`
	End     string       `json:"end"`
}

type Professional struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	NationalID   string      `json:"nationalId,omitempty"`
	HealthCardID string      `json:"healthCardId,omitempty"`
	Registration string      `json:"registration,omitempty"`
	Specialties  []string    `json:"specialties"`
	FacilityIDs  []string    `json:"facilityIds"`
	WorkHours    []WorkHours `json:"workHours,omitempty"`
	Active       bool        `json:"active"`
}

func (p Professional) clone() Professional {
	p.Specialties = slices.Clone(p.Specialties)
	p.FacilityIDs = slices.Clone(p.FacilityIDs)
	p.WorkHours = slices.Clone(p.WorkHours)
	return p
}

type FacilityType string

const (
	FacilityUBS         FacilityType = "UBS"
	FacilityHospital    FacilityType = "Hospital"
	FacilityPoliclinica FacilityType = "Policlinica"
	FacilityCEO         FacilityType = "CEO"
	FacilityCAPS        FacilityType = "CAPS"
)

var validFacilityTypes = map[FacilityType]bool{
	FacilityUBS: true, FacilityHospital: true, FacilityPoliclinica: true,
	FacilityCEO: true, FacilityCAPS: true,
}

type Facility struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	CNPJ     string       `json:"cnpj,omitempty"`
	CNES     string       `json:"cnes,omitempty"`
	Type     FacilityType `json:"type"`
	Phone    string       `json:"phone,omitempty"`
	Services []string     `json:"services,omitempty"`
	Active   bool         `json:"active"`
}

func (f Facility) clone() Facility {
	f.Services = slices.Clone(f.Services)
	return f
}

type QuotaPeriod string

const (
	PeriodMonthly QuotaPeriod = "monthly"
	PeriodWeekly  QuotaPeriod = "weekly"
	PeriodDaily   QuotaPeriod = "daily"
)

type ContractType string

const (
	ContractSUS       ContractType = "SUS"
	ContractPrivate   ContractType = "Private"
	ContractInsurance ContractType = "Insurance"
)

// Quota caps the appointments a facility (optionally a single professional)
// may book for a specialty within a validity window. Used never exceeds Total.
type Quota struct {
	ID             string       `json:"id"`
	FacilityID     string       `json:"facilityId"`
	ProfessionalID string       `json:"professionalId,omitempty"`
	Specialty      string       `json:"specialty"`
	Period         QuotaPeriod  `json:"period"`
	Total          int          `json:"total"`
	Used           int          `json:"used"`
	Reserved       int          `json:"reserved"`
	ValidFrom      time.Time    `json:"validFrom"`
	ValidTo        time.Time    `json:"validTo"`
	Contract       ContractType `json:"contract"`
	Active         bool         `json:"active"`
}

// Remaining is the number of units still bookable.
func (q Quota) Remaining() int {
	if q.Used >= q.Total {
		return 0
	}
	return q.Total - q.Used
}

// ValidAt reports whether t falls inside the validity window. Zero bounds are
// open.
func (q Quota) ValidAt(t time.Time) bool {
	if !q.ValidFrom.IsZero() && t.Before(q.ValidFrom) {
		return false
	}
	if !q.ValidTo.IsZero() && t.After(q.ValidTo) {
		return false
	}
	return true
}

// Schedule is one professional's agenda for a specialty on a given day. Its
// bookings count against QuotaID.
type Schedule struct {
	ID             string    `json:"id"`
	ProfessionalID string    `json:"professionalId"`
	FacilityID     string    `json:"facilityId"`
	Specialty      string    `json:"specialty"`
	Date           time.Time `json:"date"`
	QuotaID        string    `json:"quotaId"`
	Blocked        bool      `json:"blocked"`
	BlockReason    string    `json:"blockReason,omitempty"`
}

type SlotType string

const (
	SlotNormal  SlotType = "normal"
	SlotEncaixe SlotType = "encaixe"
	SlotUrgency SlotType = "urgency"
)

// Slot is a bookable time inside a schedule. Only encaixe (squeeze-in) slots
// may hold more than one appointment.
type Slot struct {
	ID             string    `json:"id"`
	ScheduleID     string    `json:"scheduleId"`
	Start          time.Time `json:"start"`
	Type           SlotType  `json:"type"`
	Capacity       int       `json:"capacity"`
	Used           int       `json:"used"`
	Available      bool      `json:"available"`
	AppointmentIDs []string  `json:"appointmentIds"`
}

func (s Slot) clone() Slot {
	s.AppointmentIDs = slices.Clone(s.AppointmentIDs)
	if s.AppointmentIDs == nil {
		s.AppointmentIDs = []string{}
	}
	return s
}

type AppointmentKind string

const (
	KindConsultation AppointmentKind = "consultation"
	KindExam         AppointmentKind = "exam"
	KindProcedure    AppointmentKind = "procedure"
)

var validAppointmentKinds = map[AppointmentKind]bool{
	KindConsultation: true, KindExam: true, KindProcedure: true,
}

type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusNoShow    AppointmentStatus = "no-show"
)

var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	StatusScheduled: {StatusConfirmed, StatusCancelled, StatusNoShow},
	StatusConfirmed: {StatusCompleted, StatusCancelled, StatusNoShow},
}

// CanTransition reports whether an appointment may move from one status to
// another. Completed, cancelled and no-show are terminal.
func CanTransition(from, to AppointmentStatus) bool {
	return slices.Contains(appointmentTransitions[from], to)
}

type Appointment struct {
	ID               string            `json:"id"`
	PatientID        string            `json:"patientId"`
	ScheduleID       string            `json:"scheduleId"`
	SlotID           string            `json:"slotId"`
	Start            time.Time         `json:"start"`
	Kind             AppointmentKind   `json:"kind"`
	Status           AppointmentStatus `json:"status"`
	Priority         PatientPriority   `json:"priority"`
	Notes            string            `json:"notes,omitempty"`
	ConfirmationCode string            `json:"confirmationCode"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

// BookingRequest is the input to Store.AddAppointment.
type BookingRequest struct {
	PatientID string          `json:"patientId" validate:"required"`
	SlotID    string          `json:"slotId" validate:"required"`
	Kind      AppointmentKind `json:"kind,omitempty" validate:"omitempty,oneof=consultation exam procedure"`
	Priority  PatientPriority `json:"priority,omitempty" validate:"omitempty,oneof=normal priority urgent"`
	Notes     string          `json:"notes,omitempty"`
}

type WaitlistStatus string

const (
	WaitlistWaiting   WaitlistStatus = "waiting"
	WaitlistContacted WaitlistStatus = "contacted"
	WaitlistScheduled WaitlistStatus = "scheduled"
	WaitlistWithdrawn WaitlistStatus = "withdrawn"
)

var waitlistTransitions = map[WaitlistStatus][]WaitlistStatus{
	WaitlistWaiting:   {WaitlistContacted, WaitlistScheduled, WaitlistWithdrawn},
	WaitlistContacted: {WaitlistWaiting, WaitlistScheduled, WaitlistWithdrawn},
}

const (
	MinWaitlistPriority = 1
	MaxWaitlistPriority = 10
)

// WaitlistEntry queues a patient for a specialty. Priority 1 is served first.
type WaitlistEntry struct {
	ID                      string         `json:"id"`
	PatientID               string         `json:"patientId"`
	Specialty               string         `json:"specialty"`
	PreferredFacilityID     string         `json:"preferredFacilityId,omitempty"`
	PreferredProfessionalID string         `json:"preferredProfessionalId,omitempty"`
	Priority                int            `json:"priority"`
	Criteria                string         `json:"criteria,omitempty"`
	AddedAt                 time.Time      `json:"addedAt"`
	Status                  WaitlistStatus `json:"status"`
	ContactAttempts         int            `json:"contactAttempts"`
	LastContact             *time.Time     `json:"lastContact,omitempty"`
	Deadline                *time.Time     `json:"deadline,omitempty"`

	seq uint64
}

// Snapshot is a point-in-time copy of every collection in the store.
type Snapshot struct {
	Patients      []Patient       `json:"patients"`
	Professionals []Professional  `json:"professionals"`
	Facilities    []Facility      `json:"facilities"`
	Quotas        []Quota         `json:"quotas"`
	Schedules     []Schedule      `json:"schedules"`
	Slots         []Slot          `json:"slots"`
	Appointments  []Appointment   `json:"appointments"`
	Waitlist      []WaitlistEntry `json:"waitlist"`
}
