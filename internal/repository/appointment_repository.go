package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/appointment_service/internal/model"
	"github.com/Freeeeeet/appointment_service/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const appointmentColumns = `
	a.id, a.doctor_profile_id, a.user_id, a.slot_date, a.slot_time, a.type, a.status, a.reason,
	a.location_lat, a.location_lng, a.is_for_others, a.others_name, a.others_contact,
	a.created_at, a.updated_at
`

// AppointmentRepository хранит записи на приём.
// Уникальный индекс appointments_active_slot не даёт занять слот дважды
type AppointmentRepository struct {
	*base.Repository
}

func NewAppointmentRepository(pool *pgxpool.Pool) *AppointmentRepository {
	return &AppointmentRepository{Repository: base.NewRepository(pool)}
}

// scanAppointment читает колонки appointmentColumns и дополнительные поля extra
func scanAppointment(row pgx.Row, extra ...any) (*model.Appointment, error) {
	var (
		a                         model.Appointment
		slotTime                  string
		lat, lng                  *float64
		othersName, othersContact *string
	)

	dest := []any{
		&a.ID,
		&a.DoctorProfileID,
		&a.UserID,
		&a.AppointmentSlotDate,
		&slotTime,
		&a.Type,
		&a.Status,
		&a.Reason,
		&lat,
		&lng,
		&a.IsForOthers,
		&othersName,
		&othersContact,
		&a.CreatedAt,
		&a.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	t, err := model.ParseSlotTime(slotTime)
	if err != nil {
		return nil, fmt.Errorf("decode slot time: %w", err)
	}
	a.AppointmentSlotTime = t
	a.AppointmentSlotDate = model.DateOf(a.AppointmentSlotDate)

	if lat != nil && lng != nil {
		a.CurrentLocation = &model.Location{Lat: *lat, Long: *lng}
	}
	if othersName != nil || othersContact != nil {
		a.OthersContact = &model.OthersContact{}
		if othersName != nil {
			a.OthersContact.Name = *othersName
		}
		if othersContact != nil {
			a.OthersContact.Contact = *othersContact
		}
	}

	return &a, nil
}

func insertAppointment(ctx context.Context, q base.Querier, a *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			doctor_profile_id, user_id, slot_date, slot_time, type, status, reason,
			location_lat, location_lng, is_for_others, others_name, others_contact
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`

	var lat, lng *float64
	if a.CurrentLocation != nil {
		lat, lng = &a.CurrentLocation.Lat, &a.CurrentLocation.Long
	}
	var othersName, othersContact *string
	if a.OthersContact != nil {
		othersName, othersContact = &a.OthersContact.Name, &a.OthersContact.Contact
	}

	return q.QueryRow(
		ctx,
		query,
		a.DoctorProfileID,
		a.UserID,
		model.DateOf(a.AppointmentSlotDate),
		a.AppointmentSlotTime.String(),
		a.Type,
		a.Status,
		a.Reason,
		lat,
		lng,
		a.IsForOthers,
		othersName,
		othersContact,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

// Create сохраняет одну запись
func (r *AppointmentRepository) Create(ctx context.Context, a *model.Appointment) error {
	if err := insertAppointment(ctx, r.Pool(), a); err != nil {
		return base.Classify("create appointment", err)
	}
	return nil
}

// CreateAll сохраняет записи в одной транзакции: либо все, либо ни одной
func (r *AppointmentRepository) CreateAll(ctx context.Context, appointments ...*model.Appointment) error {
	return r.InTx(ctx, func(q base.Querier) error {
		for _, a := range appointments {
			if err := insertAppointment(ctx, q, a); err != nil {
				return base.Classify("create appointments", err)
			}
		}
		return nil
	})
}

// GetByID получает запись по ID
func (r *AppointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT` + appointmentColumns + `FROM appointments a WHERE a.id = $1`

	a, err := scanAppointment(r.Pool().QueryRow(ctx, query, id))
	if err != nil {
		return nil, base.Classify("get appointment", err)
	}
	return a, nil
}

// UpdateStatus переводит запись врача из статуса from в to.
// ErrNotFound, если записи нет, она чужая или уже не в статусе from
func (r *AppointmentRepository) UpdateStatus(ctx context.Context, id, doctorID uuid.UUID, from, to model.AppointmentStatus) (*model.Appointment, error) {
	query := `
		UPDATE appointments a
		SET status = $1, updated_at = now()
		WHERE a.id = $2 AND a.doctor_profile_id = $3 AND a.status = $4
		RETURNING` + appointmentColumns

	a, err := scanAppointment(r.Pool().QueryRow(ctx, query, to, id, doctorID, from))
	if err != nil {
		return nil, base.Classify("update appointment status", err)
	}
	return a, nil
}

// BookedSlots активные (PENDING/APPROVED) записи врача с датой в [from, to)
func (r *AppointmentRepository) BookedSlots(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]model.BookedSlot, error) {
	query := `
		SELECT slot_date, slot_time, type
		FROM appointments
		WHERE doctor_profile_id = $1
			AND slot_date >= $2 AND slot_date < $3
			AND status IN ('PENDING', 'APPROVED')
		ORDER BY slot_date, slot_time
	`

	rows, err := r.Pool().Query(ctx, query, doctorID, model.DateOf(from), model.DateOf(to))
	if err != nil {
		return nil, base.Classify("get booked slots", err)
	}
	defer rows.Close()

	var booked []model.BookedSlot
	for rows.Next() {
		var (
			b        model.BookedSlot
			slotTime string
		)
		if err := rows.Scan(&b.Date, &slotTime, &b.Type); err != nil {
			return nil, fmt.Errorf("scan booked slot: %w", err)
		}
		if b.Time, err = model.ParseSlotTime(slotTime); err != nil {
			return nil, fmt.Errorf("decode booked slot: %w", err)
		}
		b.Date = model.DateOf(b.Date)
		booked = append(booked, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate booked slots: %w", err)
	}

	return booked, nil
}

// FindActiveForPatient ближайшая активная запись пациента к врачу с датой не раньше from
func (r *AppointmentRepository) FindActiveForPatient(ctx context.Context, doctorID, userID uuid.UUID, from time.Time) (*model.Appointment, error) {
	query := `SELECT` + appointmentColumns + `
		FROM appointments a
		WHERE a.doctor_profile_id = $1 AND a.user_id = $2
			AND a.slot_date >= $3
			AND a.status IN ('PENDING', 'APPROVED')
		ORDER BY a.slot_date, a.slot_time
		LIMIT 1
	`

	a, err := scanAppointment(r.Pool().QueryRow(ctx, query, doctorID, userID, model.DateOf(from)))
	if err != nil {
		return nil, base.Classify("find active appointment for patient", err)
	}
	return a, nil
}

// HasApproved была ли у врача хоть одна подтверждённая запись
func (r *AppointmentRepository) HasApproved(ctx context.Context, doctorID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM appointments WHERE doctor_profile_id = $1 AND status = 'APPROVED'
		)
	`

	var exists bool
	if err := r.Pool().QueryRow(ctx, query, doctorID).Scan(&exists); err != nil {
		return false, base.Classify("check approved appointments", err)
	}
	return exists, nil
}

// CountByStatus счётчики записей врача по статусам
func (r *AppointmentRepository) CountByStatus(ctx context.Context, doctorID uuid.UUID) (model.StatusCounts, error) {
	query := `
		SELECT
			count(*),
			count(*) FILTER (WHERE status = 'PENDING'),
			count(*) FILTER (WHERE status = 'APPROVED'),
			count(*) FILTER (WHERE status = 'REJECTED')
		FROM appointments
		WHERE doctor_profile_id = $1
	`

	var c model.StatusCounts
	err := r.Pool().QueryRow(ctx, query, doctorID).Scan(&c.Total, &c.Pending, &c.Approved, &c.Rejected)
	if err != nil {
		return model.StatusCounts{}, base.Classify("count appointments", err)
	}
	return c, nil
}

// ListForDoctor записи врача по фильтру вместе с контактами пациентов
func (r *AppointmentRepository) ListForDoctor(ctx context.Context, doctorID uuid.UUID, filter model.AppointmentFilter) ([]*model.Appointment, error) {
	conditions := []string{"a.doctor_profile_id = $1"}
	args := []any{doctorID}

	if !filter.From.IsZero() {
		args = append(args, model.DateOf(filter.From))
		conditions = append(conditions, fmt.Sprintf("a.slot_date >= $%d", len(args)))
	}
	if !filter.To.IsZero() {
		args = append(args, model.DateOf(filter.To))
		conditions = append(conditions, fmt.Sprintf("a.slot_date < $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("a.status = $%d", len(args)))
	}

	query := `SELECT` + appointmentColumns + `, u.id, u.first_name, u.last_name, u.contact, u.email
		FROM appointments a
		JOIN users u ON u.id = a.user_id
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY a.slot_date, a.slot_time`

	rows, err := r.Pool().Query(ctx, query, args...)
	if err != nil {
		return nil, base.Classify("list doctor appointments", err)
	}
	defer rows.Close()

	appointments := []*model.Appointment{}
	for rows.Next() {
		var p model.PatientContact
		a, err := scanAppointment(rows, &p.UserID, &p.FirstName, &p.LastName, &p.Contact, &p.Email)
		if err != nil {
			return nil, fmt.Errorf("scan doctor appointment: %w", err)
		}
		a.Patient = &p
		appointments = append(appointments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate doctor appointments: %w", err)
	}

	return appointments, nil
}

// ListForPatient все записи пациента с карточками врачей, новые сверху
func (r *AppointmentRepository) ListForPatient(ctx context.Context, userID uuid.UUID) ([]*model.Appointment, error) {
	query := `SELECT` + appointmentColumns + `,
			dp.id, u.username, u.first_name, u.last_name, dp.specializations, dp.fee
		FROM appointments a
		JOIN doctor_profiles dp ON dp.id = a.doctor_profile_id
		JOIN users u ON u.id = dp.user_id
		WHERE a.user_id = $1
		ORDER BY a.slot_date DESC, a.slot_time DESC`

	rows, err := r.Pool().Query(ctx, query, userID)
	if err != nil {
		return nil, base.Classify("list patient appointments", err)
	}
	defer rows.Close()

	appointments := []*model.Appointment{}
	for rows.Next() {
		var d model.DoctorSummary
		a, err := scanAppointment(rows, &d.ID, &d.Username, &d.FirstName, &d.LastName, &d.Specializations, &d.Fee)
		if err != nil {
			return nil, fmt.Errorf("scan patient appointment: %w", err)
		}
		a.Doctor = &d
		appointments = append(appointments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate patient appointments: %w", err)
	}

	return appointments, nil
}

// ApprovedPatients пациенты с хотя бы одной подтверждённой записью к врачу
func (r *AppointmentRepository) ApprovedPatients(ctx context.Context, doctorID uuid.UUID) ([]*model.PatientContact, error) {
	query := `
		SELECT DISTINCT u.id, u.first_name, u.last_name, u.contact, u.email
		FROM appointments a
		JOIN users u ON u.id = a.user_id
		WHERE a.doctor_profile_id = $1 AND a.status = 'APPROVED'
		ORDER BY u.first_name, u.last_name, u.id
	`

	rows, err := r.Pool().Query(ctx, query, doctorID)
	if err != nil {
		return nil, base.Classify("list approved patients", err)
	}
	defer rows.Close()

	patients := []*model.PatientContact{}
	for rows.Next() {
		var p model.PatientContact
		if err := rows.Scan(&p.UserID, &p.FirstName, &p.LastName, &p.Contact, &p.Email); err != nil {
			return nil, fmt.Errorf("scan patient: %w", err)
		}
		patients = append(patients, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate patients: %w", err)
	}

	return patients, nil
}
