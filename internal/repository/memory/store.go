// Package memory хранилище в памяти с теми же контрактами, что и pgx-репозитории:
// ErrNotFound для отсутствующих записей, ErrConflict при повторном занятии активного слота,
// CreateAll либо сохраняет все записи, либо ни одной. Используется в тестах сервисов и транспорта
package memory

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/Freeeeeet/appointment_service/internal/model"
	"github.com/Freeeeeet/appointment_service/internal/repository"
	"github.com/google/uuid"
)

type slotKey struct {
	doctorID uuid.UUID
	date     time.Time
	time     model.SlotTime
}

// Store общее состояние. Отдельные репозитории берутся через Users, Doctors, Schedules, Appointments
type Store struct {
	mu           sync.RWMutex
	users        map[uuid.UUID]*model.User
	doctors      map[uuid.UUID]*model.DoctorProfile
	schedules    map[uuid.UUID]*model.ScheduleTemplate
	appointments []*model.Appointment

	// BeforeInsert вызывается перед вставкой каждой записи; ошибка отменяет всю пачку
	BeforeInsert func(a *model.Appointment) error
}

func New() *Store {
	return &Store{
		users:     make(map[uuid.UUID]*model.User),
		doctors:   make(map[uuid.UUID]*model.DoctorProfile),
		schedules: make(map[uuid.UUID]*model.ScheduleTemplate),
	}
}

func (s *Store) Users() *Users               { return &Users{s: s} }
func (s *Store) Doctors() *Doctors           { return &Doctors{s: s} }
func (s *Store) Schedules() *Schedules       { return &Schedules{s: s} }
func (s *Store) Appointments() *Appointments { return &Appointments{s: s} }

// AddUser сохраняет пользователя, выдавая ID при необходимости
func (s *Store) AddUser(u model.User) *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = model.RolePatient
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	s.users[u.ID] = &u
	out := u
	return &out
}

// AddDoctor сохраняет пользователя-врача и его профиль
func (s *Store) AddDoctor(u model.User, d model.DoctorProfile) *model.DoctorProfile {
	u.Role = model.RoleDoctor
	user := s.AddUser(u)

	s.mu.Lock()
	defer s.mu.Unlock()

	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	d.UserID = user.ID
	d.Username = user.Username
	d.FirstName = user.FirstName
	d.LastName = user.LastName
	d.Email = user.Email
	d.Contact = user.Contact
	if d.Status == "" {
		d.Status = model.VerificationPending
	}
	if d.Mode == "" {
		d.Mode = model.ModeVideoConsult
	}
	if d.Specializations == nil {
		d.Specializations = []string{}
	}
	now := time.Now()
	d.CreatedAt, d.UpdatedAt = now, now

	s.doctors[d.ID] = &d
	return cloneDoctor(&d)
}

// AppointmentCount количество сохранённых записей
func (s *Store) AppointmentCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.appointments)
}

// ScheduleCount количество сохранённых шаблонов
func (s *Store) ScheduleCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.schedules)
}

func notFound(op string) error {
	return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
}

func cloneDoctor(d *model.DoctorProfile) *model.DoctorProfile {
	out := *d
	out.Specializations = slices.Clone(d.Specializations)
	if d.TelegramID != nil {
		id := *d.TelegramID
		out.TelegramID = &id
	}
	return &out
}

func cloneSchedule(t *model.ScheduleTemplate) *model.ScheduleTemplate {
	out := *t
	out.OnlineSlots = slices.Clone(t.OnlineSlots)
	out.HomeSlots = slices.Clone(t.HomeSlots)
	out.DeskSlots = slices.Clone(t.DeskSlots)
	return &out
}

func cloneAppointment(a *model.Appointment) *model.Appointment {
	out := *a
	if a.CurrentLocation != nil {
		loc := *a.CurrentLocation
		out.CurrentLocation = &loc
	}
	if a.OthersContact != nil {
		c := *a.OthersContact
		out.OthersContact = &c
	}
	out.Patient = nil
	out.Doctor = nil
	return &out
}
