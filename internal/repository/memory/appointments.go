package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Freeeeeet/appointment_service/internal/model"
	"github.com/Freeeeeet/appointment_service/internal/repository"
	"github.com/google/uuid"
)

type Appointments struct {
	s *Store
}

func (r *Appointments) Create(ctx context.Context, a *model.Appointment) error {
	return r.CreateAll(ctx, a)
}

// CreateAll проверяет все записи, и только потом сохраняет: ошибка любой отменяет пачку
func (r *Appointments) CreateAll(_ context.Context, appointments ...*model.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	taken := make(map[slotKey]struct{})
	for _, a := range r.s.appointments {
		if a.Status.IsActive() {
			taken[keyOf(a)] = struct{}{}
		}
	}

	staged := make([]*model.Appointment, 0, len(appointments))
	now := time.Now()
	for _, a := range appointments {
		if r.s.BeforeInsert != nil {
			if err := r.s.BeforeInsert(a); err != nil {
				return fmt.Errorf("create appointment: %w", err)
			}
		}

		if a.Status.IsActive() {
			key := keyOf(a)
			if _, ok := taken[key]; ok {
				return fmt.Errorf("create appointment: %w: appointments_active_slot", repository.ErrConflict)
			}
			taken[key] = struct{}{}
		}

		stored := cloneAppointment(a)
		stored.ID = uuid.New()
		stored.AppointmentSlotDate = model.DateOf(a.AppointmentSlotDate)
		stored.CreatedAt, stored.UpdatedAt = now, now
		staged = append(staged, stored)
	}

	for i, stored := range staged {
		r.s.appointments = append(r.s.appointments, stored)
		appointments[i].ID = stored.ID
		appointments[i].AppointmentSlotDate = stored.AppointmentSlotDate
		appointments[i].CreatedAt = stored.CreatedAt
		appointments[i].UpdatedAt = stored.UpdatedAt
	}
	return nil
}

func (r *Appointments) GetByID(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, a := range r.s.appointments {
		if a.ID == id {
			return cloneAppointment(a), nil
		}
	}
	return nil, notFound("get appointment")
}

func (r *Appointments) UpdateStatus(_ context.Context, id, doctorID uuid.UUID, from, to model.AppointmentStatus) (*model.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, a := range r.s.appointments {
		if a.ID == id && a.DoctorProfileID == doctorID && a.Status == from {
			if to.IsActive() && !from.IsActive() {
				for _, other := range r.s.appointments {
					if other != a && other.Status.IsActive() && keyOf(other) == keyOf(a) {
						return nil, fmt.Errorf("update appointment status: %w", repository.ErrConflict)
					}
				}
			}
			a.Status = to
			a.UpdatedAt = time.Now()
			return cloneAppointment(a), nil
		}
	}
	return nil, notFound("update appointment status")
}

func (r *Appointments) BookedSlots(_ context.Context, doctorID uuid.UUID, from, to time.Time) ([]model.BookedSlot, error) {
	from, to = model.DateOf(from), model.DateOf(to)

	var booked []model.BookedSlot
	for _, a := range r.filter(func(a *model.Appointment) bool {
		return a.DoctorProfileID == doctorID && a.Status.IsActive() && inRange(a.AppointmentSlotDate, from, to)
	}) {
		booked = append(booked, model.BookedSlot{
			Date: a.AppointmentSlotDate,
			Time: a.AppointmentSlotTime,
			Type: a.Type,
		})
	}
	return booked, nil
}

func (r *Appointments) FindActiveForPatient(_ context.Context, doctorID, userID uuid.UUID, from time.Time) (*model.Appointment, error) {
	from = model.DateOf(from)
	found := r.filter(func(a *model.Appointment) bool {
		return a.DoctorProfileID == doctorID && a.UserID == userID &&
			a.Status.IsActive() && !a.AppointmentSlotDate.Before(from)
	})
	if len(found) == 0 {
		return nil, notFound("find active appointment for patient")
	}
	return found[0], nil
}

func (r *Appointments) HasApproved(_ context.Context, doctorID uuid.UUID) (bool, error) {
	found := r.filter(func(a *model.Appointment) bool {
		return a.DoctorProfileID == doctorID && a.Status == model.AppointmentStatusApproved
	})
	return len(found) > 0, nil
}

func (r *Appointments) CountByStatus(_ context.Context, doctorID uuid.UUID) (model.StatusCounts, error) {
	var c model.StatusCounts
	for _, a := range r.filter(func(a *model.Appointment) bool { return a.DoctorProfileID == doctorID }) {
		c.Total++
		switch a.Status {
		case model.AppointmentStatusPending:
			c.Pending++
		case model.AppointmentStatusApproved:
			c.Approved++
		case model.AppointmentStatusRejected:
			c.Rejected++
		}
	}
	return c, nil
}

func (r *Appointments) ListForDoctor(_ context.Context, doctorID uuid.UUID, filter model.AppointmentFilter) ([]*model.Appointment, error) {
	from, to := filter.From, filter.To
	if !from.IsZero() {
		from = model.DateOf(from)
	}
	if !to.IsZero() {
		to = model.DateOf(to)
	}

	list := r.filter(func(a *model.Appointment) bool {
		if a.DoctorProfileID != doctorID {
			return false
		}
		if filter.Status != "" && a.Status != filter.Status {
			return false
		}
		return inRange(a.AppointmentSlotDate, from, to)
	})

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range list {
		if u, ok := r.s.users[a.UserID]; ok {
			a.Patient = patientOf(u)
		}
	}
	return list, nil
}

func (r *Appointments) ListForPatient(_ context.Context, userID uuid.UUID) ([]*model.Appointment, error) {
	list := r.filter(func(a *model.Appointment) bool { return a.UserID == userID })
	for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
		list[i], list[j] = list[j], list[i]
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range list {
		if d, ok := r.s.doctors[a.DoctorProfileID]; ok {
			a.Doctor = &model.DoctorSummary{
				ID:              d.ID,
				Username:        d.Username,
				FirstName:       d.FirstName,
				LastName:        d.LastName,
				Specializations: append([]string(nil), d.Specializations...),
				Fee:             d.Fee,
			}
		}
	}
	return list, nil
}

func (r *Appointments) ApprovedPatients(_ context.Context, doctorID uuid.UUID) ([]*model.PatientContact, error) {
	approved := r.filter(func(a *model.Appointment) bool {
		return a.DoctorProfileID == doctorID && a.Status == model.AppointmentStatusApproved
	})

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	seen := make(map[uuid.UUID]struct{})
	patients := []*model.PatientContact{}
	for _, a := range approved {
		if _, dup := seen[a.UserID]; dup {
			continue
		}
		seen[a.UserID] = struct{}{}
		if u, ok := r.s.users[a.UserID]; ok {
			patients = append(patients, patientOf(u))
		}
	}
	sort.Slice(patients, func(i, j int) bool {
		if patients[i].FirstName != patients[j].FirstName {
			return patients[i].FirstName < patients[j].FirstName
		}
		return patients[i].UserID.String() < patients[j].UserID.String()
	})
	return patients, nil
}

// filter копии подходящих записей по дате и времени слота
func (r *Appointments) filter(match func(*model.Appointment) bool) []*model.Appointment {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []*model.Appointment{}
	for _, a := range r.s.appointments {
		if match(a) {
			out = append(out, cloneAppointment(a))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].AppointmentSlotDate.Equal(out[j].AppointmentSlotDate) {
			return out[i].AppointmentSlotDate.Before(out[j].AppointmentSlotDate)
		}
		return out[i].AppointmentSlotTime.Before(out[j].AppointmentSlotTime)
	})
	return out
}

func keyOf(a *model.Appointment) slotKey {
	return slotKey{
		doctorID: a.DoctorProfileID,
		date:     model.DateOf(a.AppointmentSlotDate),
		time:     a.AppointmentSlotTime,
	}
}

// inRange from включительно, to не включительно, нулевые границы не ограничивают
func inRange(date, from, to time.Time) bool {
	if !from.IsZero() && date.Before(from) {
		return false
	}
	if !to.IsZero() && !date.Before(to) {
		return false
	}
	return true
}

func patientOf(u *model.User) *model.PatientContact {
	return &model.PatientContact{
		UserID:    u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Contact:   u.Contact,
		Email:     u.Email,
	}
}
