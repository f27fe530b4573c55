package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/appointment_service/internal/model"
	"github.com/Freeeeeet/appointment_service/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ScheduleRepository хранит недельные шаблоны врачей (одна строка на врача)
type ScheduleRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewScheduleRepository создаёт новый репозиторий
func NewScheduleRepository(pool *pgxpool.Pool, logger *zap.Logger) *ScheduleRepository {
	return &ScheduleRepository{
		pool:   pool,
		logger: logger,
	}
}

// GetByDoctorID получает шаблон врача. ErrNotFound, если врач его не сохранял
func (r *ScheduleRepository) GetByDoctorID(ctx context.Context, doctorID uuid.UUID) (*model.ScheduleTemplate, error) {
	query := `
		SELECT id, doctor_profile_id, online_slots, home_slots, desk_slots, created_at, updated_at
		FROM schedules
		WHERE doctor_profile_id = $1
	`

	var (
		s                  model.ScheduleTemplate
		online, home, desk []string
	)
	err := r.pool.QueryRow(ctx, query, doctorID).Scan(
		&s.ID,
		&s.DoctorProfileID,
		&online,
		&home,
		&desk,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, base.Classify("get schedule", err)
	}

	if s.OnlineSlots, err = model.ParseSlotTimes(online); err != nil {
		return nil, fmt.Errorf("decode online slots: %w", err)
	}
	if s.HomeSlots, err = model.ParseSlotTimes(home); err != nil {
		return nil, fmt.Errorf("decode home slots: %w", err)
	}
	if s.DeskSlots, err = model.ParseSlotTimes(desk); err != nil {
		return nil, fmt.Errorf("decode desk slots: %w", err)
	}

	return &s, nil
}

// Upsert создаёт шаблон или заменяет все три списка существующего
func (r *ScheduleRepository) Upsert(ctx context.Context, s *model.ScheduleTemplate) error {
	query := `
		INSERT INTO schedules (doctor_profile_id, online_slots, home_slots, desk_slots)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (doctor_profile_id) DO UPDATE
		SET online_slots = EXCLUDED.online_slots,
			home_slots = EXCLUDED.home_slots,
			desk_slots = EXCLUDED.desk_slots,
			updated_at = now()
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(
		ctx,
		query,
		s.DoctorProfileID,
		model.SlotTimeStrings(s.OnlineSlots),
		model.SlotTimeStrings(s.HomeSlots),
		model.SlotTimeStrings(s.DeskSlots),
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return base.Classify("upsert schedule", err)
	}

	r.logger.Debug("schedule saved",
		zap.String("doctor_profile_id", s.DoctorProfileID.String()),
		zap.Int("online", len(s.OnlineSlots)),
		zap.Int("home", len(s.HomeSlots)),
		zap.Int("desk", len(s.DeskSlots)),
	)

	return nil
}
