package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/appointment_service/internal/model"
	"github.com/Freeeeeet/appointment_service/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const doctorColumns = `
	dp.id, dp.user_id, u.username, u.first_name, u.last_name, u.email, u.contact,
	dp.status, dp.mode, dp.is_available_for_desk, dp.fee, dp.specializations,
	dp.address, dp.city, dp.state, dp.country, dp.pincode, dp.telegram_id,
	dp.created_at, dp.updated_at
`

const doctorFrom = `
	FROM doctor_profiles dp
	JOIN users u ON u.id = dp.user_id
`

type DoctorRepository struct {
	pool *pgxpool.Pool
}

func NewDoctorRepository(pool *pgxpool.Pool) *DoctorRepository {
	return &DoctorRepository{pool: pool}
}

func scanDoctor(row pgx.Row) (*model.DoctorProfile, error) {
	var d model.DoctorProfile
	err := row.Scan(
		&d.ID,
		&d.UserID,
		&d.Username,
		&d.FirstName,
		&d.LastName,
		&d.Email,
		&d.Contact,
		&d.Status,
		&d.Mode,
		&d.IsAvailableForDesk,
		&d.Fee,
		&d.Specializations,
		&d.Address.Address,
		&d.Address.City,
		&d.Address.State,
		&d.Address.Country,
		&d.Address.Pincode,
		&d.TelegramID,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if d.Specializations == nil {
		d.Specializations = []string{}
	}
	return &d, nil
}

func (r *DoctorRepository) queryDoctors(ctx context.Context, op, query string, args ...any) ([]*model.DoctorProfile, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, base.Classify(op, err)
	}
	defer rows.Close()

	var doctors []*model.DoctorProfile
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan doctor: %w", err)
		}
		doctors = append(doctors, d)
	}
	if err := rows.Err(); err != nil {
		return nil, base.Classify(op, err)
	}

	return doctors, nil
}

// GetByID получает профиль врача по ID профиля
func (r *DoctorRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.DoctorProfile, error) {
	query := `SELECT` + doctorColumns + doctorFrom + `WHERE dp.id = $1`

	d, err := scanDoctor(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, base.Classify("get doctor by id", err)
	}
	return d, nil
}

// GetByUsername получает профиль врача по имени пользователя
func (r *DoctorRepository) GetByUsername(ctx context.Context, username string) (*model.DoctorProfile, error) {
	query := `SELECT` + doctorColumns + doctorFrom + `WHERE u.username = $1 AND u.role = 'DOCTOR'`

	d, err := scanDoctor(r.pool.QueryRow(ctx, query, username))
	if err != nil {
		return nil, base.Classify("get doctor by username", err)
	}
	return d, nil
}

// GetByTelegramID получает врача, привязавшего Telegram-чат
func (r *DoctorRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*model.DoctorProfile, error) {
	query := `SELECT` + doctorColumns + doctorFrom + `WHERE dp.telegram_id = $1`

	d, err := scanDoctor(r.pool.QueryRow(ctx, query, telegramID))
	if err != nil {
		return nil, base.Classify("get doctor by telegram id", err)
	}
	return d, nil
}

// Find ищет одобренных врачей по специальности, адресу и режиму приёма
func (r *DoctorRepository) Find(ctx context.Context, filter model.DoctorFilter) ([]*model.DoctorProfile, error) {
	conditions := []string{"dp.status = 'APPROVED'"}
	var args []any

	if filter.Speciality != "" {
		args = append(args, filter.Speciality)
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(dp.specializations)", len(args)))
	}

	if filter.Address != "" {
		args = append(args, "%"+strings.ToLower(filter.Address)+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(lower(dp.address) LIKE $%[1]d OR lower(dp.city) LIKE $%[1]d OR lower(dp.state) LIKE $%[1]d OR lower(dp.country) LIKE $%[1]d OR lower(dp.pincode) LIKE $%[1]d)",
			n,
		))
	}

	switch filter.Mode {
	case "":
	case model.ModeClinicVisit:
		conditions = append(conditions, "dp.is_available_for_desk")
	default:
		args = append(args, filter.Mode)
		conditions = append(conditions, fmt.Sprintf("dp.mode = $%d", len(args)))
	}

	query := `SELECT` + doctorColumns + doctorFrom +
		`WHERE ` + strings.Join(conditions, " AND ") +
		` ORDER BY u.first_name, u.last_name`

	return r.queryDoctors(ctx, "find doctors", query, args...)
}

// ListByStatus получает врачей с указанным статусом проверки
func (r *DoctorRepository) ListByStatus(ctx context.Context, status model.VerificationStatus) ([]*model.DoctorProfile, error) {
	query := `SELECT` + doctorColumns + doctorFrom + `WHERE dp.status = $1 ORDER BY dp.created_at`
	return r.queryDoctors(ctx, "list doctors by status", query, status)
}

// UpdateStatus меняет статус проверки профиля
func (r *DoctorRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.VerificationStatus) error {
	query := `
		UPDATE doctor_profiles
		SET status = $1, updated_at = now()
		WHERE id = $2
	`

	result, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return base.Classify("update doctor status", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("update doctor status: %w", ErrNotFound)
	}
	return nil
}

// UpdateSettings меняет режим приёма и доступность для приёма в клинике
func (r *DoctorRepository) UpdateSettings(ctx context.Context, id uuid.UUID, mode model.Mode, availableForDesk bool) error {
	query := `
		UPDATE doctor_profiles
		SET mode = $1, is_available_for_desk = $2, updated_at = now()
		WHERE id = $3
	`

	result, err := r.pool.Exec(ctx, query, mode, availableForDesk, id)
	if err != nil {
		return base.Classify("update doctor settings", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("update doctor settings: %w", ErrNotFound)
	}
	return nil
}

// SetTelegramID привязывает Telegram-чат к профилю врача
func (r *DoctorRepository) SetTelegramID(ctx context.Context, id uuid.UUID, telegramID int64) error {
	query := `
		UPDATE doctor_profiles
		SET telegram_id = $1, updated_at = now()
		WHERE id = $2
	`

	result, err := r.pool.Exec(ctx, query, telegramID, id)
	if err != nil {
		return base.Classify("set doctor telegram id", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("set doctor telegram id: %w", ErrNotFound)
	}
	return nil
}
