package services_test

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/entities"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/providers"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/repositories"
	apperrors "github.com/zatekoja/healthcare-chatbot/backend/pkg/errors"
)

func notFound(kind string, id int64) error {
	return apperrors.NewNotFoundError(fmt.Sprintf("%s with id %d not found", kind, id))
}

type fakeDoctorRepo struct {
	mu      sync.Mutex
	doctors map[int64]*entities.Doctor
	nextID  int64
	lists   int
}

func newFakeDoctorRepo(doctors ...*entities.Doctor) *fakeDoctorRepo {
	r := &fakeDoctorRepo{doctors: make(map[int64]*entities.Doctor), nextID: 100}
	for _, d := range doctors {
		r.doctors[d.ID] = d
	}
	return r
}

func (r *fakeDoctorRepo) Create(ctx context.Context, doctor *entities.Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	doctor.ID = r.nextID
	r.doctors[doctor.ID] = doctor
	return nil
}

func (r *fakeDoctorRepo) GetByID(ctx context.Context, id int64) (*entities.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.doctors[id]
	if !ok {
		return nil, notFound("doctor", id)
	}
	copied := *d
	return &copied, nil
}

func (r *fakeDoctorRepo) Update(ctx context.Context, doctor *entities.Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.doctors[doctor.ID]; !ok {
		return notFound("doctor", doctor.ID)
	}
	r.doctors[doctor.ID] = doctor
	return nil
}

func (r *fakeDoctorRepo) List(ctx context.Context, filter repositories.DoctorFilter) ([]*entities.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists++
	var out []*entities.Doctor
	for _, d := range r.doctors {
		if filter.SpecialityID != nil && (d.SpecialityID == nil || *d.SpecialityID != *filter.SpecialityID) {
			continue
		}
		if filter.AvailableOnly && !d.IsAvailable {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	page := filter.Pagination.Normalize()
	if page.Offset >= len(out) {
		return []*entities.Doctor{}, nil
	}
	out = out[page.Offset:]
	if len(out) > page.Limit {
		out = out[:page.Limit]
	}
	return out, nil
}

type fakeSpecialityRepo struct {
	specialities map[int64]*entities.Speciality
}

func newFakeSpecialityRepo(specialities ...*entities.Speciality) *fakeSpecialityRepo {
	r := &fakeSpecialityRepo{specialities: make(map[int64]*entities.Speciality)}
	for _, s := range specialities {
		r.specialities[s.ID] = s
	}
	return r
}

func (r *fakeSpecialityRepo) Create(ctx context.Context, s *entities.Speciality) error {
	s.ID = int64(len(r.specialities) + 1)
	r.specialities[s.ID] = s
	return nil
}

func (r *fakeSpecialityRepo) GetByID(ctx context.Context, id int64) (*entities.Speciality, error) {
	s, ok := r.specialities[id]
	if !ok {
		return nil, notFound("speciality", id)
	}
	return s, nil
}

func (r *fakeSpecialityRepo) List(ctx context.Context, activeOnly bool) ([]*entities.Speciality, error) {
	var out []*entities.Speciality
	for _, s := range r.specialities {
		if activeOnly && !s.IsActive {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeSpecialityRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.specialities[id]; !ok {
		return notFound("speciality", id)
	}
	delete(r.specialities, id)
	return nil
}

type fakeTimeSlotRepo struct {
	slots []*entities.TimeSlotDefinition
}

func (r *fakeTimeSlotRepo) Create(ctx context.Context, slot *entities.TimeSlotDefinition) error {
	slot.ID = int64(len(r.slots) + 1)
	r.slots = append(r.slots, slot)
	return nil
}

func (r *fakeTimeSlotRepo) GetByID(ctx context.Context, id int64) (*entities.TimeSlotDefinition, error) {
	for _, s := range r.slots {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, notFound("time slot", id)
}

func (r *fakeTimeSlotRepo) ListByDoctor(ctx context.Context, doctorID int64) ([]*entities.TimeSlotDefinition, error) {
	var out []*entities.TimeSlotDefinition
	for _, s := range r.slots {
		if s.DoctorID == doctorID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeTimeSlotRepo) ListActiveByDoctorAndDay(ctx context.Context, doctorID int64, dayOfWeek int) ([]*entities.TimeSlotDefinition, error) {
	var out []*entities.TimeSlotDefinition
	for _, s := range r.slots {
		if s.DoctorID == doctorID && s.DayOfWeek == dayOfWeek && s.IsAvailable {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeTimeSlotRepo) Delete(ctx context.Context, id int64) error {
	for i, s := range r.slots {
		if s.ID == id {
			r.slots = append(r.slots[:i], r.slots[i+1:]...)
			return nil
		}
	}
	return notFound("time slot", id)
}

// fakeAppointmentRepo enforces the one-occupying-appointment-per-instant rule
// the database index provides.
type fakeAppointmentRepo struct {
	mu            sync.Mutex
	appointments  map[int64]*entities.Appointment
	usedCodes     map[string]bool
	nextID        int64
	occupyingFrom time.Time
	occupyingTo   time.Time
}

func newFakeAppointmentRepo(existing ...*entities.Appointment) *fakeAppointmentRepo {
	r := &fakeAppointmentRepo{
		appointments: make(map[int64]*entities.Appointment),
		usedCodes:    make(map[string]bool),
	}
	for _, a := range existing {
		if a.ID > r.nextID {
			r.nextID = a.ID
		}
		r.appointments[a.ID] = a
		r.usedCodes[a.ConfirmationNumber] = true
	}
	return r
}

func (r *fakeAppointmentRepo) occupiedLocked(doctorID int64, at time.Time, except int64) bool {
	for _, a := range r.appointments {
		if a.ID != except && a.DoctorID == doctorID && a.AppointmentDate.Equal(at) && a.Status.OccupiesSlot() {
			return true
		}
	}
	return false
}

func (r *fakeAppointmentRepo) Create(ctx context.Context, appointment *entities.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.usedCodes[appointment.ConfirmationNumber] {
		return repositories.ErrDuplicateConfirmationNumber
	}
	if appointment.Status.OccupiesSlot() && r.occupiedLocked(appointment.DoctorID, appointment.AppointmentDate, 0) {
		return apperrors.NewConflictError("the requested time slot is already booked")
	}
	r.nextID++
	appointment.ID = r.nextID
	copied := *appointment
	r.appointments[appointment.ID] = &copied
	r.usedCodes[appointment.ConfirmationNumber] = true
	return nil
}

func (r *fakeAppointmentRepo) GetByID(ctx context.Context, id int64) (*entities.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok {
		return nil, notFound("appointment", id)
	}
	copied := *a
	return &copied, nil
}

func (r *fakeAppointmentRepo) UpdateStatus(ctx context.Context, id int64, status entities.AppointmentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok {
		return notFound("appointment", id)
	}
	if status.OccupiesSlot() && r.occupiedLocked(a.DoctorID, a.AppointmentDate, id) {
		return apperrors.NewConflictError("the requested time slot is already booked")
	}
	a.Status = status
	return nil
}

func (r *fakeAppointmentRepo) ListByPatient(ctx context.Context, patientID int64, filter repositories.AppointmentFilter) ([]*entities.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.Appointment
	for _, a := range r.appointments {
		if a.PatientID == patientID && (filter.Status == "" || a.Status == filter.Status) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) ListOccupying(ctx context.Context, doctorID int64, from, to time.Time) ([]*entities.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.occupyingFrom, r.occupyingTo = from, to
	var out []*entities.Appointment
	for _, a := range r.appointments {
		if a.DoctorID != doctorID || !a.Status.OccupiesSlot() {
			continue
		}
		if !a.AppointmentDate.Before(from) && a.AppointmentDate.Before(to) {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakePatientRepo struct {
	patients map[int64]*entities.Patient
	nextID   int64
}

func newFakePatientRepo(patients ...*entities.Patient) *fakePatientRepo {
	r := &fakePatientRepo{patients: make(map[int64]*entities.Patient)}
	for _, p := range patients {
		r.patients[p.ID] = p
		if p.ID > r.nextID {
			r.nextID = p.ID
		}
	}
	return r
}

func (r *fakePatientRepo) Create(ctx context.Context, p *entities.Patient) error {
	if p.Email != nil {
		for _, existing := range r.patients {
			if existing.Email != nil && *existing.Email == *p.Email {
				return apperrors.NewConflictError("a patient with this email already exists")
			}
		}
	}
	r.nextID++
	p.ID = r.nextID
	r.patients[p.ID] = p
	return nil
}

func (r *fakePatientRepo) GetByID(ctx context.Context, id int64) (*entities.Patient, error) {
	p, ok := r.patients[id]
	if !ok {
		return nil, notFound("patient", id)
	}
	return p, nil
}

func (r *fakePatientRepo) Update(ctx context.Context, p *entities.Patient) error {
	if _, ok := r.patients[p.ID]; !ok {
		return notFound("patient", p.ID)
	}
	r.patients[p.ID] = p
	return nil
}

func (r *fakePatientRepo) List(ctx context.Context, page repositories.Pagination) ([]*entities.Patient, error) {
	var out []*entities.Patient
	for _, p := range r.patients {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakePatientRepo) Search(ctx context.Context, term string, page repositories.Pagination) ([]*entities.Patient, error) {
	var out []*entities.Patient
	term = strings.ToLower(term)
	for _, p := range r.patients {
		if strings.Contains(strings.ToLower(p.FirstName+" "+p.LastName), term) || strings.Contains(p.Phone, term) {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeQuestionnaireRepo struct {
	questionnaires []*entities.Questionnaire
	err            error
}

func (r *fakeQuestionnaireRepo) Create(ctx context.Context, q *entities.Questionnaire) error {
	q.ID = int64(len(r.questionnaires) + 1)
	r.questionnaires = append(r.questionnaires, q)
	return nil
}

func (r *fakeQuestionnaireRepo) GetByID(ctx context.Context, id int64) (*entities.Questionnaire, error) {
	for _, q := range r.questionnaires {
		if q.ID == id {
			return q, nil
		}
	}
	return nil, notFound("questionnaire", id)
}

func (r *fakeQuestionnaireRepo) Update(ctx context.Context, q *entities.Questionnaire) error {
	for i, existing := range r.questionnaires {
		if existing.ID == q.ID {
			r.questionnaires[i] = q
			return nil
		}
	}
	return notFound("questionnaire", q.ID)
}

func (r *fakeQuestionnaireRepo) List(ctx context.Context, filter repositories.QuestionnaireFilter) ([]*entities.Questionnaire, error) {
	var out []*entities.Questionnaire
	for _, q := range r.questionnaires {
		if filter.Category != "" && q.Category != filter.Category {
			continue
		}
		if filter.Active != nil && q.IsActive != *filter.Active {
			continue
		}
		out = append(out, q)
	}
	return out, nil
}

func (r *fakeQuestionnaireRepo) ListActive(ctx context.Context) ([]*entities.Questionnaire, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []*entities.Questionnaire
	for _, q := range r.questionnaires {
		if q.IsActive {
			out = append(out, q)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

type fakeSessionRepo struct {
	sessions map[int64]*entities.ChatSession
	nextID   int64
	updates  int
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[int64]*entities.ChatSession)}
}

func (r *fakeSessionRepo) Create(ctx context.Context, s *entities.ChatSession) error {
	r.nextID++
	s.ID = r.nextID
	r.sessions[s.ID] = s
	return nil
}

func (r *fakeSessionRepo) GetByID(ctx context.Context, id int64) (*entities.ChatSession, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, notFound("chat session", id)
	}
	return s, nil
}

func (r *fakeSessionRepo) Update(ctx context.Context, s *entities.ChatSession) error {
	if _, ok := r.sessions[s.ID]; !ok {
		return notFound("chat session", s.ID)
	}
	r.updates++
	r.sessions[s.ID] = s
	return nil
}

// fakeCache is a map-backed CacheProvider with glob deletes.
type fakeCache struct {
	mu       sync.Mutex
	data     map[string][]byte
	patterns []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (c *fakeCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, providers.ErrCacheMiss
	}
	return v, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *fakeCache) DeletePattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.patterns = append(c.patterns, pattern)
	for key := range c.data {
		if ok, _ := path.Match(pattern, key); ok {
			delete(c.data, key)
		}
	}
	return nil
}

func (c *fakeCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok, nil
}

func (c *fakeCache) Increment(ctx context.Context, key string, expirationSeconds int) (int64, time.Duration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	if v, ok := c.data[key]; ok {
		n, _ = strconv.ParseInt(string(v), 10, 64)
	}
	n++
	c.data[key] = []byte(strconv.FormatInt(n, 10))
	return n, time.Duration(expirationSeconds) * time.Second, nil
}

func (c *fakeCache) has(key string) bool {
	ok, _ := c.Exists(context.Background(), key)
	return ok
}

// fakeEventBus delivers published events to in-process subscribers.
type fakeEventBus struct {
	mu          sync.Mutex
	subscribers map[string][]chan *entities.DoctorEvent
	published   map[string][]*entities.DoctorEvent
}

func newFakeEventBus() *fakeEventBus {
	return &fakeEventBus{
		subscribers: make(map[string][]chan *entities.DoctorEvent),
		published:   make(map[string][]*entities.DoctorEvent),
	}
}

func (b *fakeEventBus) Publish(ctx context.Context, channel string, event *entities.DoctorEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published[channel] = append(b.published[channel], event)
	for _, ch := range b.subscribers[channel] {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

func (b *fakeEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.DoctorEvent, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan *entities.DoctorEvent, 10)
	b.subscribers[channel] = append(b.subscribers[channel], ch)
	return ch, nil
}

func (b *fakeEventBus) Unsubscribe(ctx context.Context, channel string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subscribers[channel] {
		close(ch)
	}
	delete(b.subscribers, channel)
	return nil
}

func (b *fakeEventBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for channel, chans := range b.subscribers {
		for _, ch := range chans {
			close(ch)
		}
		delete(b.subscribers, channel)
	}
	return nil
}

func (b *fakeEventBus) eventsOn(channel string) []*entities.DoctorEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*entities.DoctorEvent(nil), b.published[channel]...)
}

func (b *fakeEventBus) subscriberCount(channel string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers[channel])
}

// stubProvider answers with a fixed completion or error.
type stubProvider struct {
	name       string
	completion *entities.Completion
	err        error
	calls      int
	delay      time.Duration
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Complete(ctx context.Context, prompt *entities.Prompt) (*entities.Completion, error) {
	p.calls++
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if p.err != nil {
		return nil, p.err
	}
	return p.completion, nil
}

func ptr[T any](v T) *T { return &v }
