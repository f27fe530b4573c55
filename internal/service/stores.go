package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/appointment_service/internal/model"
	"github.com/google/uuid"
)

// Контракты хранилища, которыми пользуются сервисы. Реализации: repository (pgx)
// и repository/memory (тесты). Отсутствие записи - repository.ErrNotFound,
// занятый уникальный слот - repository.ErrConflict

type DoctorStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.DoctorProfile, error)
	GetByUsername(ctx context.Context, username string) (*model.DoctorProfile, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*model.DoctorProfile, error)
	Find(ctx context.Context, filter model.DoctorFilter) ([]*model.DoctorProfile, error)
	ListByStatus(ctx context.Context, status model.VerificationStatus) ([]*model.DoctorProfile, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.VerificationStatus) error
	UpdateSettings(ctx context.Context, id uuid.UUID, mode model.Mode, availableForDesk bool) error
	SetTelegramID(ctx context.Context, id uuid.UUID, telegramID int64) error
}

type ScheduleStore interface {
	GetByDoctorID(ctx context.Context, doctorID uuid.UUID) (*model.ScheduleTemplate, error)
	Upsert(ctx context.Context, schedule *model.ScheduleTemplate) error
}

type AppointmentStore interface {
	Create(ctx context.Context, a *model.Appointment) error
	// CreateAll сохраняет все записи атомарно
	CreateAll(ctx context.Context, appointments ...*model.Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	UpdateStatus(ctx context.Context, id, doctorID uuid.UUID, from, to model.AppointmentStatus) (*model.Appointment, error)
	BookedSlots(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]model.BookedSlot, error)
	FindActiveForPatient(ctx context.Context, doctorID, userID uuid.UUID, from time.Time) (*model.Appointment, error)
	HasApproved(ctx context.Context, doctorID uuid.UUID) (bool, error)
	CountByStatus(ctx context.Context, doctorID uuid.UUID) (model.StatusCounts, error)
	ListForDoctor(ctx context.Context, doctorID uuid.UUID, filter model.AppointmentFilter) ([]*model.Appointment, error)
	ListForPatient(ctx context.Context, userID uuid.UUID) ([]*model.Appointment, error)
	ApprovedPatients(ctx context.Context, doctorID uuid.UUID) ([]*model.PatientContact, error)
}

type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}
