package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/Freeeeeet/appointment_service/internal/model"
	"github.com/google/uuid"
)

type Doctors struct {
	s *Store
}

func (r *Doctors) GetByID(_ context.Context, id uuid.UUID) (*model.DoctorProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	d, ok := r.s.doctors[id]
	if !ok {
		return nil, notFound("get doctor by id")
	}
	return cloneDoctor(d), nil
}

func (r *Doctors) GetByUsername(_ context.Context, username string) (*model.DoctorProfile, error) {
	return r.first("get doctor by username", func(d *model.DoctorProfile) bool {
		return d.Username == username
	})
}

func (r *Doctors) GetByTelegramID(_ context.Context, telegramID int64) (*model.DoctorProfile, error) {
	return r.first("get doctor by telegram id", func(d *model.DoctorProfile) bool {
		return d.TelegramID != nil && *d.TelegramID == telegramID
	})
}

func (r *Doctors) Find(_ context.Context, filter model.DoctorFilter) ([]*model.DoctorProfile, error) {
	address := strings.ToLower(filter.Address)

	return r.list(func(d *model.DoctorProfile) bool {
		if d.Status != model.VerificationApproved {
			return false
		}
		if filter.Speciality != "" && !slices.Contains(d.Specializations, filter.Speciality) {
			return false
		}
		if address != "" {
			fields := []string{d.Address.Address, d.Address.City, d.Address.State, d.Address.Country, d.Address.Pincode}
			if !slices.ContainsFunc(fields, func(f string) bool {
				return strings.Contains(strings.ToLower(f), address)
			}) {
				return false
			}
		}
		switch filter.Mode {
		case "":
			return true
		case model.ModeClinicVisit:
			return d.IsAvailableForDesk
		default:
			return d.Mode == filter.Mode
		}
	}), nil
}

func (r *Doctors) ListByStatus(_ context.Context, status model.VerificationStatus) ([]*model.DoctorProfile, error) {
	return r.list(func(d *model.DoctorProfile) bool { return d.Status == status }), nil
}

func (r *Doctors) UpdateStatus(_ context.Context, id uuid.UUID, status model.VerificationStatus) error {
	return r.update("update doctor status", id, func(d *model.DoctorProfile) {
		d.Status = status
	})
}

func (r *Doctors) UpdateSettings(_ context.Context, id uuid.UUID, mode model.Mode, availableForDesk bool) error {
	return r.update("update doctor settings", id, func(d *model.DoctorProfile) {
		d.Mode = mode
		d.IsAvailableForDesk = availableForDesk
	})
}

func (r *Doctors) SetTelegramID(_ context.Context, id uuid.UUID, telegramID int64) error {
	return r.update("set doctor telegram id", id, func(d *model.DoctorProfile) {
		d.TelegramID = &telegramID
	})
}

func (r *Doctors) first(op string, match func(*model.DoctorProfile) bool) (*model.DoctorProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, d := range r.s.doctors {
		if match(d) {
			return cloneDoctor(d), nil
		}
	}
	return nil, notFound(op)
}

func (r *Doctors) list(match func(*model.DoctorProfile) bool) []*model.DoctorProfile {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []*model.DoctorProfile{}
	for _, d := range r.s.doctors {
		if match(d) {
			out = append(out, cloneDoctor(d))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FirstName != out[j].FirstName {
			return out[i].FirstName < out[j].FirstName
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

func (r *Doctors) update(op string, id uuid.UUID, apply func(*model.DoctorProfile)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	d, ok := r.s.doctors[id]
	if !ok {
		return notFound(op)
	}
	apply(d)
	d.UpdatedAt = time.Now()
	return nil
}
