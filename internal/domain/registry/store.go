package registry

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Kadu1982/cidade-saude-conexao-digital/internal/platform/metrics"
	"github.com/Kadu1982/cidade-saude-conexao-digital/pkg/textsim"
)

// table keeps entities by id along with their insertion order.
type table[T any] struct {
	byID  map[string]*T
	order []string
}

func newTable[T any]() table[T] {
	return table[T]{byID: make(map[string]*T)}
}

func (t *table[T]) insert(id string, v *T) bool {
	if _, ok := t.byID[id]; ok {
		return false
	}
	t.byID[id] = v
	t.order = append(t.order, id)
	return true
}

func (t *table[T]) get(id string) (*T, bool) {
	v, ok := t.byID[id]
	return v, ok
}

func (t *table[T]) each(fn func(*T)) {
	for _, id := range t.order {
		fn(t.byID[id])
	}
}

// Store owns every registry collection. A single RWMutex serializes writers,
// so a booking's slot and quota updates are applied together. Getters return
// copies; callers never hold references into the store.
type Store struct {
	mu sync.RWMutex

	patients      PatientRepository
	professionals table[Professional]
	facilities    table[Facility]
	quotas        table[Quota]
	schedules     table[Schedule]
	slots         table[Slot]
	appointments  table[Appointment]
	waitlist      table[WaitlistEntry]
	waitlistSeq   uint64

	now     func() time.Time
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

type Option func(*Store)

// WithPatientRepository replaces the in-memory patient repository.
func WithPatientRepository(r PatientRepository) Option {
	return func(s *Store) { s.patients = r }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.logger = l.With().Str("component", "registry").Logger() }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		patients:      NewMemoryPatientRepo(),
		professionals: newTable[Professional](),
		facilities:    newTable[Facility](),
		quotas:        newTable[Quota](),
		schedules:     newTable[Schedule](),
		slots:         newTable[Slot](),
		appointments:  newTable[Appointment](),
		waitlist:      newTable[WaitlistEntry](),
		now:           time.Now,
		logger:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newID(id string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return uuid.NewString()
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// -- Patients --

func (s *Store) AddPatient(ctx context.Context, p *Patient) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return invalidf("patient name is required")
	}
	if p.Priority == "" {
		p.Priority = PriorityNormal
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if p.NationalID != "" {
		if _, err := s.patients.GetByNationalID(ctx, p.NationalID); err == nil {
			return fmt.Errorf("patient with national id %s: %w", p.NationalID, ErrAlreadyExists)
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}
	}
	if p.HealthCardID != "" {
		if _, err := s.patients.GetByHealthCard(ctx, p.HealthCardID); err == nil {
			return fmt.Errorf("patient with health card %s: %w", p.HealthCardID, ErrAlreadyExists)
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}
	}

	p.ID = newID(p.ID)
	now := s.now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	return s.patients.Create(ctx, p)
}

func (s *Store) GetPatient(ctx context.Context, id string) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Store) GetPatientByNationalID(ctx context.Context, nationalID string) (*Patient, error) {
	return s.patients.GetByNationalID(ctx, nationalID)
}

func (s *Store) GetPatientByHealthCard(ctx context.Context, healthCardID string) (*Patient, error) {
	return s.patients.GetByHealthCard(ctx, healthCardID)
}

func (s *Store) ListPatients(ctx context.Context) ([]*Patient, error) {
	return s.patients.List(ctx)
}

// SearchPatientsByName matches the normalized query as a substring of each
// patient's normalized name, so accents and case are ignored.
func (s *Store) SearchPatientsByName(ctx context.Context, query string) ([]*Patient, error) {
	q := textsim.Normalize(query)
	all, err := s.patients.List(ctx)
	if err != nil {
		return nil, err
	}
	out := []*Patient{}
	for _, p := range all {
		if strings.Contains(textsim.Normalize(p.Name), q) {
			out = append(out, p)
		}
	}
	return out, nil
}

// -- Professionals --

func (s *Store) AddProfessional(_ context.Context, p *Professional) error {
	if strings.TrimSpace(p.Name) == "" {
		return invalidf("professional name is required")
	}
	p.ID = newID(p.ID)

	s.mu.Lock()
	defer s.mu.Unlock()
	cp := p.clone()
	if !s.professionals.insert(p.ID, &cp) {
		return fmt.Errorf("professional %s: %w", p.ID, ErrAlreadyExists)
	}
	return nil
}

func (s *Store) GetProfessional(_ context.Context, id string) (*Professional, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.professionals.get(id)
	if !ok {
		return nil, notFound("professional", id)
	}
	cp := p.clone()
	return &cp, nil
}

// ListProfessionalsBySpecialty returns active professionals practising the
// specialty.
func (s *Store) ListProfessionalsBySpecialty(_ context.Context, specialty string) ([]*Professional, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*Professional{}
	s.professionals.each(func(p *Professional) {
		if p.Active && slices.ContainsFunc(p.Specialties, func(sp string) bool { return strings.EqualFold(sp, specialty) }) {
			cp := p.clone()
			out = append(out, &cp)
		}
	})
	return out, nil
}

func (s *Store) ListProfessionalsByFacility(_ context.Context, facilityID string) ([]*Professional, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*Professional{}
	s.professionals.each(func(p *Professional) {
		if slices.Contains(p.FacilityIDs, facilityID) {
			cp := p.clone()
			out = append(out, &cp)
		}
	})
	return out, nil
}

// -- Facilities --

func (s *Store) AddFacility(_ context.Context, f *Facility) error {
	if strings.TrimSpace(f.Name) == "" {
		return invalidf("facility name is required")
	}
	if !validFacilityTypes[f.Type] {
		return invalidf("unknown facility type %q", f.Type)
	}
	f.ID = newID(f.ID)

	s.mu.Lock()
	defer s.mu.Unlock()
	cp := f.clone()
	if !s.facilities.insert(f.ID, &cp) {
		return fmt.Errorf("facility %s: %w", f.ID, ErrAlreadyExists)
	}
	return nil
}

func (s *Store) GetFacility(_ context.Context, id string) (*Facility, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.facilities.get(id)
	if !ok {
		return nil, notFound("facility", id)
	}
	cp := f.clone()
	return &cp, nil
}

func (s *Store) ListFacilitiesByType(_ context.Context, t FacilityType) ([]*Facility, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*Facility{}
	s.facilities.each(func(f *Facility) {
		if f.Active && f.Type == t {
			cp := f.clone()
			out = append(out, &cp)
		}
	})
	return out, nil
}

// -- Quotas --

func (s *Store) AddQuota(_ context.Context, q *Quota) error {
	if q.FacilityID == "" || strings.TrimSpace(q.Specialty) == "" {
		return invalidf("quota requires facility and specialty")
	}
	if q.Total < 0 || q.Used < 0 || q.Used > q.Total {
		return invalidf("quota used %d must be within total %d", q.Used, q.Total)
	}
	if q.Period == "" {
		q.Period = PeriodMonthly
	}
	if q.Contract == "" {
		q.Contract = ContractSUS
	}
	q.ID = newID(q.ID)

	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *q
	if !s.quotas.insert(q.ID, &cp) {
		return fmt.Errorf("quota %s: %w", q.ID, ErrAlreadyExists)
	}
	return nil
}

func (s *Store) GetQuota(_ context.Context, id string) (*Quota, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.quotas.get(id)
	if !ok {
		return nil, notFound("quota", id)
	}
	cp := *q
	return &cp, nil
}

func (s *Store) ListQuotasByFacility(_ context.Context, facilityID string) ([]*Quota, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*Quota{}
	s.quotas.each(func(q *Quota) {
		if q.Active && q.FacilityID == facilityID {
			cp := *q
			out = append(out, &cp)
		}
	})
	return out, nil
}

// HasQuotaAvailable reports whether any active, currently valid quota of the
// facility for the specialty still has units left.
func (s *Store) HasQuotaAvailable(_ context.Context, facilityID, specialty string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := s.now()
	found := false
	s.quotas.each(func(q *Quota) {
		if q.Active && q.FacilityID == facilityID && strings.EqualFold(q.Specialty, specialty) &&
			q.ValidAt(now) && q.Used < q.Total {
			found = true
		}
	})
	return found, nil
}

// -- Schedules and slots --

func (s *Store) AddSchedule(_ context.Context, sc *Schedule) error {
	if sc.ProfessionalID == "" || sc.FacilityID == "" || strings.TrimSpace(sc.Specialty) == "" {
		return invalidf("schedule requires professional, facility and specialty")
	}
	if sc.QuotaID == "" {
		return invalidf("schedule requires a quota")
	}
	sc.ID = newID(sc.ID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quotas.get(sc.QuotaID); !ok {
		return notFound("quota", sc.QuotaID)
	}
	cp := *sc
	if !s.schedules.insert(sc.ID, &cp) {
		return fmt.Errorf("schedule %s: %w", sc.ID, ErrAlreadyExists)
	}
	return nil
}

func (s *Store) GetSchedule(_ context.Context, id string) (*Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sc, ok := s.schedules.get(id)
	if !ok {
		return nil, notFound("schedule", id)
	}
	cp := *sc
	return &cp, nil
}

// AddSlot attaches a slot to an existing schedule. Normal and urgency slots
// always hold a single appointment; encaixe slots keep their capacity
// (minimum 1).
func (s *Store) AddSlot(_ context.Context, sl *Slot) error {
	if sl.Type == "" {
		sl.Type = SlotNormal
	}
	switch sl.Type {
	case SlotNormal, SlotUrgency:
		sl.Capacity = 1
	case SlotEncaixe:
		if sl.Capacity < 1 {
			sl.Capacity = 1
		}
	default:
		return invalidf("unknown slot type %q", sl.Type)
	}
	sl.ID = newID(sl.ID)
	sl.Used = 0
	sl.Available = true
	sl.AppointmentIDs = []string{}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.schedules.get(sl.ScheduleID); !ok {
		return notFound("schedule", sl.ScheduleID)
	}
	cp := sl.clone()
	if !s.slots.insert(sl.ID, &cp) {
		return fmt.Errorf("slot %s: %w", sl.ID, ErrAlreadyExists)
	}
	return nil
}

func (s *Store) GetSlot(_ context.Context, id string) (*Slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sl, ok := s.slots.get(id)
	if !ok {
		return nil, notFound("slot", id)
	}
	cp := sl.clone()
	return &cp, nil
}

func (s *Store) ListSlotsBySchedule(_ context.Context, scheduleID string) ([]*Slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*Slot{}
	s.slots.each(func(sl *Slot) {
		if sl.ScheduleID == scheduleID {
			cp := sl.clone()
			out = append(out, &cp)
		}
	})
	return out, nil
}

// ListAvailableSchedules returns unblocked schedules for the specialty on
// date whose quota is currently valid and still has units left. A zero date
// matches every day.
func (s *Store) ListAvailableSchedules(_ context.Context, specialty string, date time.Time) ([]*Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := s.now()
	out := []*Schedule{}
	s.schedules.each(func(sc *Schedule) {
		if sc.Blocked || !strings.EqualFold(sc.Specialty, specialty) {
			return
		}
		if !date.IsZero() && !sameDay(sc.Date, date) {
			return
		}
		q, ok := s.quotas.get(sc.QuotaID)
		if !ok || !q.Active || !q.ValidAt(now) || q.Used >= q.Total {
			return
		}
		cp := *sc
		out = append(out, &cp)
	})
	return out, nil
}

func (s *Store) BlockSchedule(_ context.Context, id, reason string) (*Schedule, error) {
	return s.setBlocked(id, true, reason)
}

func (s *Store) UnblockSchedule(_ context.Context, id string) (*Schedule, error) {
	return s.setBlocked(id, false, "")
}

func (s *Store) setBlocked(id string, blocked bool, reason string) (*Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, ok := s.schedules.get(id)
	if !ok {
		return nil, notFound("schedule", id)
	}
	sc.Blocked = blocked
	sc.BlockReason = reason
	s.logger.Info().Str("schedule_id", id).Bool("blocked", blocked).Str("reason", reason).Msg("schedule block changed")
	cp := *sc
	return &cp, nil
}

// -- Appointments --

// AddAppointment books req.SlotID for req.PatientID. The slot and its
// schedule's quota are checked and incremented under one lock; on any error
// nothing is changed.
func (s *Store) AddAppointment(ctx context.Context, req BookingRequest) (*Appointment, error) {
	a, err := s.book(ctx, req)
	switch {
	case err == nil:
		s.metrics.IncrementBooking("booked")
		s.logger.Info().Str("appointment_id", a.ID).Str("slot_id", a.SlotID).Str("patient_id", a.PatientID).Msg("appointment booked")
	case errors.Is(err, ErrCapacityExceeded):
		s.metrics.IncrementBooking("capacity_exceeded")
	case errors.Is(err, ErrScheduleBlocked):
		s.metrics.IncrementBooking("blocked")
	case errors.Is(err, ErrNotFound):
		s.metrics.IncrementBooking("not_found")
	default:
		s.metrics.IncrementBooking("error")
	}
	if err != nil {
		s.logger.Debug().Err(err).Str("slot_id", req.SlotID).Msg("booking rejected")
	}
	return a, err
}

func (s *Store) book(ctx context.Context, req BookingRequest) (*Appointment, error) {
	if req.PatientID == "" || req.SlotID == "" {
		return nil, invalidf("patientId and slotId are required")
	}
	if req.Kind == "" {
		req.Kind = KindConsultation
	}
	if !validAppointmentKinds[req.Kind] {
		return nil, invalidf("unknown appointment kind %q", req.Kind)
	}
	if req.Priority == "" {
		req.Priority = PriorityNormal
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.patients.GetByID(ctx, req.PatientID); err != nil {
		return nil, err
	}
	slot, ok := s.slots.get(req.SlotID)
	if !ok {
		return nil, notFound("slot", req.SlotID)
	}
	sched, ok := s.schedules.get(slot.ScheduleID)
	if !ok {
		return nil, notFound("schedule", slot.ScheduleID)
	}
	quota, ok := s.quotas.get(sched.QuotaID)
	if !ok {
		return nil, notFound("quota", sched.QuotaID)
	}

	if sched.Blocked {
		return nil, fmt.Errorf("schedule %s (%s): %w", sched.ID, sched.BlockReason, ErrScheduleBlocked)
	}
	if slot.Used >= slot.Capacity {
		return nil, fmt.Errorf("slot %s is full: %w", slot.ID, ErrCapacityExceeded)
	}
	now := s.now()
	if !quota.Active || !quota.ValidAt(now) || quota.Used >= quota.Total {
		return nil, fmt.Errorf("quota %s has no units left: %w", quota.ID, ErrCapacityExceeded)
	}

	a := &Appointment{
		ID:               uuid.NewString(),
		PatientID:        req.PatientID,
		ScheduleID:       sched.ID,
		SlotID:           slot.ID,
		Start:            slot.Start,
		Kind:             req.Kind,
		Status:           StatusScheduled,
		Priority:         req.Priority,
		Notes:            req.Notes,
		ConfirmationCode: confirmationCode(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	s.appointments.insert(a.ID, a)

	quota.Used++
	slot.Used++
	slot.Available = slot.Used < slot.Capacity
	slot.AppointmentIDs = append(slot.AppointmentIDs, a.ID)

	cp := *a
	return &cp, nil
}

func confirmationCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func (s *Store) GetAppointment(_ context.Context, id string) (*Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.appointments.get(id)
	if !ok {
		return nil, notFound("appointment", id)
	}
	cp := *a
	return &cp, nil
}

// ListAppointmentsByPatient returns the patient's appointments, most recent
// first.
func (s *Store) ListAppointmentsByPatient(_ context.Context, patientID string) ([]*Appointment, error) {
	s.mu.RLock()
	out := s.collectAppointments(func(a *Appointment) bool { return a.PatientID == patientID })
	s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.After(out[j].Start) })
	return out, nil
}

// ListAppointmentsByDate returns the appointments starting on date's calendar
// day in chronological order.
func (s *Store) ListAppointmentsByDate(_ context.Context, date time.Time) ([]*Appointment, error) {
	s.mu.RLock()
	out := s.collectAppointments(func(a *Appointment) bool { return sameDay(a.Start, date) })
	s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (s *Store) collectAppointments(match func(*Appointment) bool) []*Appointment {
	out := []*Appointment{}
	s.appointments.each(func(a *Appointment) {
		if match(a) {
			cp := *a
			out = append(out, &cp)
		}
	})
	return out
}

// TransitionAppointment moves an appointment along its lifecycle. Cancelling
// gives the slot and quota unit back.
func (s *Store) TransitionAppointment(_ context.Context, id string, to AppointmentStatus) (*Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.appointments.get(id)
	if !ok {
		return nil, notFound("appointment", id)
	}
	if !CanTransition(a.Status, to) {
		return nil, fmt.Errorf("appointment %s %s -> %s: %w", id, a.Status, to, ErrInvalidTransition)
	}

	if to == StatusCancelled {
		s.release(a)
	}
	a.Status = to
	a.UpdatedAt = s.now()
	s.logger.Info().Str("appointment_id", id).Str("status", string(to)).Msg("appointment status changed")
	cp := *a
	return &cp, nil
}

func (s *Store) release(a *Appointment) {
	if slot, ok := s.slots.get(a.SlotID); ok {
		if i := slices.Index(slot.AppointmentIDs, a.ID); i >= 0 {
			slot.AppointmentIDs = slices.Delete(slot.AppointmentIDs, i, i+1)
			slot.Used--
			slot.Available = slot.Used < slot.Capacity
		}
	}
	if sched, ok := s.schedules.get(a.ScheduleID); ok {
		if q, ok := s.quotas.get(sched.QuotaID); ok && q.Used > 0 {
			q.Used--
		}
	}
}

// -- Waitlist --

func (s *Store) AddWaitlistEntry(ctx context.Context, e *WaitlistEntry) error {
	if strings.TrimSpace(e.Specialty) == "" {
		return invalidf("waitlist entry requires a specialty")
	}
	if e.Priority < MinWaitlistPriority || e.Priority > MaxWaitlistPriority {
		return invalidf("priority %d outside %d..%d", e.Priority, MinWaitlistPriority, MaxWaitlistPriority)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.patients.GetByID(ctx, e.PatientID); err != nil {
		return err
	}

	e.ID = newID(e.ID)
	if e.AddedAt.IsZero() {
		e.AddedAt = s.now()
	}
	e.Status = WaitlistWaiting
	s.waitlistSeq++
	e.seq = s.waitlistSeq

	cp := *e
	if !s.waitlist.insert(e.ID, &cp) {
		return fmt.Errorf("waitlist entry %s: %w", e.ID, ErrAlreadyExists)
	}
	s.metrics.IncrementWaitlist(e.Specialty)
	return nil
}

func (s *Store) GetWaitlistEntry(_ context.Context, id string) (*WaitlistEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.waitlist.get(id)
	if !ok {
		return nil, notFound("waitlist entry", id)
	}
	cp := *e
	return &cp, nil
}

// ListWaitlistFor returns the waiting entries of a specialty, highest
// priority (lowest number) first, then oldest first, then by insertion.
func (s *Store) ListWaitlistFor(_ context.Context, specialty string) ([]*WaitlistEntry, error) {
	s.mu.RLock()
	out := []*WaitlistEntry{}
	s.waitlist.each(func(e *WaitlistEntry) {
		if e.Status == WaitlistWaiting && strings.EqualFold(e.Specialty, specialty) {
			cp := *e
			out = append(out, &cp)
		}
	})
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		if !out[i].AddedAt.Equal(out[j].AddedAt) {
			return out[i].AddedAt.Before(out[j].AddedAt)
		}
		return out[i].seq < out[j].seq
	})
	return out, nil
}

// RecordContactAttempt counts a call to the patient and marks a waiting entry
// as contacted.
func (s *Store) RecordContactAttempt(_ context.Context, id string) (*WaitlistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.waitlist.get(id)
	if !ok {
		return nil, notFound("waitlist entry", id)
	}
	if e.Status != WaitlistWaiting && e.Status != WaitlistContacted {
		return nil, fmt.Errorf("waitlist entry %s is %s: %w", id, e.Status, ErrInvalidTransition)
	}
	now := s.now()
	e.ContactAttempts++
	e.LastContact = &now
	e.Status = WaitlistContacted
	cp := *e
	return &cp, nil
}

func (s *Store) UpdateWaitlistStatus(_ context.Context, id string, to WaitlistStatus) (*WaitlistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.waitlist.get(id)
	if !ok {
		return nil, notFound("waitlist entry", id)
	}
	if !slices.Contains(waitlistTransitions[e.Status], to) {
		return nil, fmt.Errorf("waitlist entry %s %s -> %s: %w", id, e.Status, to, ErrInvalidTransition)
	}
	e.Status = to
	cp := *e
	return &cp, nil
}

// -- Snapshot --

// Snapshot copies every collection in insertion order.
func (s *Store) Snapshot(ctx context.Context) (Snapshot, error) {
	patients, err := s.patients.List(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Patients:      make([]Patient, 0, len(patients)),
		Professionals: make([]Professional, 0, len(s.professionals.order)),
		Facilities:    make([]Facility, 0, len(s.facilities.order)),
		Quotas:        make([]Quota, 0, len(s.quotas.order)),
		Schedules:     make([]Schedule, 0, len(s.schedules.order)),
		Slots:         make([]Slot, 0, len(s.slots.order)),
		Appointments:  make([]Appointment, 0, len(s.appointments.order)),
		Waitlist:      make([]WaitlistEntry, 0, len(s.waitlist.order)),
	}
	for _, p := range patients {
		snap.Patients = append(snap.Patients, *p)
	}
	s.professionals.each(func(p *Professional) { snap.Professionals = append(snap.Professionals, p.clone()) })
	s.facilities.each(func(f *Facility) { snap.Facilities = append(snap.Facilities, f.clone()) })
	s.quotas.each(func(q *Quota) { snap.Quotas = append(snap.Quotas, *q) })
	s.schedules.each(func(sc *Schedule) { snap.Schedules = append(snap.Schedules, *sc) })
	s.slots.each(func(sl *Slot) { snap.Slots = append(snap.Slots, sl.clone()) })
	s.appointments.each(func(a *Appointment) { snap.Appointments = append(snap.Appointments, *a) })
	s.waitlist.each(func(e *WaitlistEntry) { snap.Waitlist = append(snap.Waitlist, *e) })
	return snap, nil
}
