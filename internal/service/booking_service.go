package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/appointment_service/internal/metrics"
	"github.com/Freeeeeet/appointment_service/internal/model"
	"github.com/Freeeeeet/appointment_service/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingService struct {
	availability *AvailabilityService
	appointments AppointmentStore
	users        UserStore
	metrics      *metrics.Metrics
	logger       *zap.Logger
}

func NewBookingService(
	availability *AvailabilityService,
	appointments AppointmentStore,
	users UserStore,
	m *metrics.Metrics,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		availability: availability,
		appointments: appointments,
		users:        users,
		metrics:      m,
		logger:       logger,
	}
}

// BookRequest запись пациента на один слот
type BookRequest struct {
	DoctorProfileID uuid.UUID
	UserID          uuid.UUID
	Date            time.Time
	Slot            model.SlotTime
	Type            model.Mode
	Reason          string
	CurrentLocation *model.Location
	IsForOthers     bool
	OthersContact   *model.OthersContact
}

// Book проверяет слот и создаёт запись в статусе PENDING.
// Занятый слот, в том числе занятый параллельным запросом, - ErrSlotUnavailable
func (s *BookingService) Book(ctx context.Context, req BookRequest) (*model.Appointment, error) {
	if _, err := model.ParseMode(string(req.Type)); err != nil {
		return nil, invalidInput("type: %v", err)
	}
	if req.Date.IsZero() {
		return nil, invalidInput("appointmentSlotDate is required")
	}
	if req.IsForOthers && (req.OthersContact == nil || req.OthersContact.Name == "") {
		return nil, invalidInput("othersContact is required when isForOthers is set")
	}

	// Проверяем пациента
	if _, err := s.users.GetByID(ctx, req.UserID); err != nil {
		return nil, storeErr("get patient", err)
	}

	// Проверяем что слот свободен
	ok, err := s.availability.IsAvailable(ctx, req.DoctorProfileID, req.Date, req.Slot, req.Type)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.metrics.Booking(string(req.Type), metrics.ResultUnavailable)
		return nil, fmt.Errorf("%w: %s %s", ErrSlotUnavailable, req.Date.Format(time.DateOnly), req.Slot)
	}

	appointment := newAppointment(req.DoctorProfileID, req.UserID, req.Date, req.Slot, req.Type, req.Reason, req.CurrentLocation)
	if req.IsForOthers {
		appointment.IsForOthers = true
		appointment.OthersContact = req.OthersContact
	}

	// Уникальный индекс отсекает гонку между проверкой и вставкой
	if err := s.appointments.Create(ctx, appointment); err != nil {
		return nil, s.bookingErr(string(req.Type), "create appointment", err)
	}

	s.metrics.Booking(string(req.Type), metrics.ResultBooked)
	s.logger.Info("Appointment booked",
		zap.String("appointment_id", appointment.ID.String()),
		zap.String("doctor_id", req.DoctorProfileID.String()),
		zap.String("user_id", req.UserID.String()),
		zap.String("type", string(req.Type)),
		zap.Time("date", appointment.AppointmentSlotDate),
		zap.Stringer("slot", appointment.AppointmentSlotTime),
	)

	return appointment, nil
}

// HybridBookRequest выезд на дом и видеоконсультация одним бронированием
type HybridBookRequest struct {
	HomeDoctorID    uuid.UUID
	VideoDoctorID   uuid.UUID
	UserID          uuid.UUID
	HomeDate        time.Time
	HomeSlot        model.SlotTime
	VideoDate       time.Time
	VideoSlot       model.SlotTime
	Reason          string
	CurrentLocation *model.Location
}

const hybridType = "HYBRID"

// BookHybrid проверяет обе части до любой записи и сохраняет их в одной транзакции:
// либо обе записи, либо ни одной
func (s *BookingService) BookHybrid(ctx context.Context, req HybridBookRequest) ([2]*model.Appointment, error) {
	var none [2]*model.Appointment

	if req.HomeDate.IsZero() || req.VideoDate.IsZero() {
		return none, invalidInput("h_apptDate and v_apptDate are required")
	}

	if _, err := s.users.GetByID(ctx, req.UserID); err != nil {
		return none, storeErr("get patient", err)
	}

	check, err := s.availability.CheckHybrid(ctx, HybridCheckRequest{
		HomeDoctorID:  req.HomeDoctorID,
		HomeDate:      req.HomeDate,
		HomeSlot:      req.HomeSlot,
		VideoDoctorID: req.VideoDoctorID,
		VideoDate:     req.VideoDate,
		VideoSlot:     req.VideoSlot,
	})
	if err != nil {
		return none, err
	}
	if !check.IsHomeVisitDoctorAvailable || !check.IsVideoDoctorAvailable {
		s.metrics.Booking(hybridType, metrics.ResultUnavailable)
		return none, fmt.Errorf("%w: home available=%t, video available=%t",
			ErrSlotUnavailable, check.IsHomeVisitDoctorAvailable, check.IsVideoDoctorAvailable)
	}

	home := newAppointment(req.HomeDoctorID, req.UserID, req.HomeDate, req.HomeSlot, model.ModeHomeVisit, req.Reason, req.CurrentLocation)
	video := newAppointment(req.VideoDoctorID, req.UserID, req.VideoDate, req.VideoSlot, model.ModeVideoConsult, req.Reason, nil)

	if err := s.appointments.CreateAll(ctx, home, video); err != nil {
		return none, s.bookingErr(hybridType, "create hybrid appointments", err)
	}

	s.metrics.Booking(hybridType, metrics.ResultBooked)
	s.logger.Info("Hybrid appointment booked",
		zap.String("home_appointment_id", home.ID.String()),
		zap.String("video_appointment_id", video.ID.String()),
		zap.String("user_id", req.UserID.String()),
	)

	return [2]*model.Appointment{home, video}, nil
}

// Act решение врача по записи: PENDING -> APPROVED | REJECTED.
// Чужая или несуществующая запись - ErrNotFound, повторное решение - ErrInvalidTransition
func (s *BookingService) Act(ctx context.Context, appointmentID, doctorID uuid.UUID, action model.AppointmentStatus) (*model.Appointment, error) {
	if _, err := model.ParseAction(string(action)); err != nil {
		return nil, invalidInput("action: %v", err)
	}

	appointment, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, storeErr("get appointment", err)
	}
	if appointment.DoctorProfileID != doctorID {
		return nil, fmt.Errorf("appointment %s of doctor %s: %w", appointmentID, doctorID, ErrNotFound)
	}
	if !appointment.Status.CanTransition(action) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, appointment.Status, action)
	}

	// Обновление только из PENDING: параллельное решение проиграет здесь
	updated, err := s.appointments.UpdateStatus(ctx, appointmentID, doctorID, model.AppointmentStatusPending, action)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: appointment is no longer pending", ErrInvalidTransition)
	}
	if err != nil {
		return nil, storeErr("update appointment status", err)
	}

	s.logger.Info("Appointment status changed",
		zap.String("appointment_id", appointmentID.String()),
		zap.String("doctor_id", doctorID.String()),
		zap.String("status", string(action)),
	)

	return updated, nil
}

// PatientAppointments все записи пациента с карточками врачей
func (s *BookingService) PatientAppointments(ctx context.Context, userID uuid.UUID) ([]*model.Appointment, error) {
	appointments, err := s.appointments.ListForPatient(ctx, userID)
	if err != nil {
		return nil, storeErr("list patient appointments", err)
	}
	return appointments, nil
}

// bookingErr занятый уникальный слот - ErrSlotUnavailable, остальное - как ошибка хранилища
func (s *BookingService) bookingErr(appointmentType, op string, err error) error {
	if errors.Is(err, repository.ErrConflict) {
		s.metrics.Booking(appointmentType, metrics.ResultUnavailable)
		return fmt.Errorf("%s: %w: %w", op, ErrSlotUnavailable, err)
	}
	s.metrics.Booking(appointmentType, metrics.ResultError)
	return fmt.Errorf("%s: %w: %w", op, ErrInternal, err)
}

func newAppointment(doctorID, userID uuid.UUID, date time.Time, slot model.SlotTime, mode model.Mode, reason string, location *model.Location) *model.Appointment {
	a := &model.Appointment{
		DoctorProfileID:     doctorID,
		UserID:              userID,
		AppointmentSlotDate: model.DateOf(date),
		AppointmentSlotTime: slot,
		Type:                mode,
		Status:              model.AppointmentStatusPending,
		Reason:              reason,
	}
	if mode == model.ModeHomeVisit {
		a.CurrentLocation = location
	}
	return a
}
