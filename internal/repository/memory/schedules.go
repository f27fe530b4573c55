package memory

import (
	"context"
	"time"

	"github.com/Freeeeeet/appointment_service/internal/model"
	"github.com/google/uuid"
)

type Schedules struct {
	s *Store
}

func (r *Schedules) GetByDoctorID(_ context.Context, doctorID uuid.UUID) (*model.ScheduleTemplate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.schedules[doctorID]
	if !ok {
		return nil, notFound("get schedule")
	}
	return cloneSchedule(t), nil
}

// Upsert одна строка на врача: повторное сохранение заменяет списки
func (r *Schedules) Upsert(_ context.Context, schedule *model.ScheduleTemplate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now()
	stored := cloneSchedule(schedule)
	if existing, ok := r.s.schedules[schedule.DoctorProfileID]; ok {
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
	} else {
		stored.ID = uuid.New()
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	r.s.schedules[schedule.DoctorProfileID] = stored

	schedule.ID = stored.ID
	schedule.CreatedAt = stored.CreatedAt
	schedule.UpdatedAt = stored.UpdatedAt
	return nil
}
