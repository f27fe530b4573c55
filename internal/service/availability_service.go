package service

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/Freeeeeet/appointment_service/internal/clock"
	"github.com/Freeeeeet/appointment_service/internal/metrics"
	"github.com/Freeeeeet/appointment_service/internal/model"
	"github.com/Freeeeeet/appointment_service/internal/repository"
	"github.com/Freeeeeet/appointment_service/internal/slots"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultPlannerDays  = 10
	DefaultConsultation = 30 * time.Minute
)

// AvailabilityConfig горизонт планирования и длительность видеоконсультации
type AvailabilityConfig struct {
	Days         int
	Consultation time.Duration
}

type AvailabilityService struct {
	doctors      DoctorStore
	schedules    ScheduleStore
	appointments AppointmentStore
	clock        clock.Clock
	cfg          AvailabilityConfig
	metrics      *metrics.Metrics
	logger       *zap.Logger
}

func NewAvailabilityService(
	doctors DoctorStore,
	schedules ScheduleStore,
	appointments AppointmentStore,
	clk clock.Clock,
	cfg AvailabilityConfig,
	m *metrics.Metrics,
	logger *zap.Logger,
) *AvailabilityService {
	if cfg.Days <= 0 {
		cfg.Days = DefaultPlannerDays
	}
	if cfg.Consultation <= 0 {
		cfg.Consultation = DefaultConsultation
	}
	return &AvailabilityService{
		doctors:      doctors,
		schedules:    schedules,
		appointments: appointments,
		clock:        clk,
		cfg:          cfg,
		metrics:      m,
		logger:       logger,
	}
}

// PlanRequest запрос расписания врача на несколько дней.
// Врач задаётся по DoctorID или, если он пустой, по Username
type PlanRequest struct {
	Username         string
	DoctorID         uuid.UUID
	StartDate        time.Time
	RequestingUserID uuid.UUID
	// OnlyMode = HOME_VISIT - страница выезда на дом: считаются только домашние слоты
	OnlyMode model.Mode
}

// Availability свободные слоты врача по дням и данные для страницы записи
type Availability struct {
	SlotDetails           []model.DaySlots         `json:"slotDetails"`
	Doctor                *model.DoctorProfile     `json:"doctor"`
	IsBookedByCurrentUser bool                     `json:"isBookedByCurrentUser"`
	Status                *model.AppointmentStatus `json:"status,omitempty"`
	IsDoctorAppointedEver bool                     `json:"isDoctorAppointedEver"`
}

// Plan считает свободные слоты по трём режимам на cfg.Days дней начиная с StartDate.
// Неизвестный или не одобренный врач - ErrUnauthorized
func (s *AvailabilityService) Plan(ctx context.Context, req PlanRequest) (*Availability, error) {
	s.metrics.Availability("plan")

	doctor, err := s.approvedDoctor(ctx, req.DoctorID, req.Username)
	if err != nil {
		return nil, err
	}
	if req.OnlyMode == model.ModeHomeVisit && doctor.Mode != model.ModeHomeVisit {
		return nil, ErrUnauthorized
	}

	now := s.clock.Now()
	start := model.DateOf(req.StartDate)
	if req.StartDate.IsZero() {
		start = model.DateOf(now)
	}
	end := start.AddDate(0, 0, s.cfg.Days)

	schedule, err := loadSchedule(ctx, s.schedules, doctor.ID)
	if err != nil {
		return nil, err
	}

	booked, err := s.appointments.BookedSlots(ctx, doctor.ID, start, end)
	if err != nil {
		return nil, storeErr("get booked slots", err)
	}

	result := &Availability{
		SlotDetails: make([]model.DaySlots, 0, s.cfg.Days),
		Doctor:      doctor,
	}

	for i := 0; i < s.cfg.Days; i++ {
		date := start.AddDate(0, 0, i)
		// Активная запись любого режима занимает время врача целиком
		dayBooked := slots.BookedOn(booked, date, "")
		day := model.DaySlots{
			Date:                date,
			AvailableSlotsVideo: []model.SlotTime{},
			AvailableSlotsDesk:  []model.SlotTime{},
			AvailableSlotsHome:  []model.SlotTime{},
			BookedSlots:         dayBooked.Sorted(),
		}

		for _, mode := range []model.Mode{model.ModeVideoConsult, model.ModeHomeVisit, model.ModeClinicVisit} {
			if !doctor.OffersMode(mode) {
				continue
			}
			if req.OnlyMode != "" && req.OnlyMode != mode {
				continue
			}

			available := slots.Available(schedule.SlotsFor(mode), dayBooked, date, now)
			switch mode {
			case model.ModeVideoConsult:
				day.AvailableSlotsVideo = available
			case model.ModeHomeVisit:
				day.AvailableSlotsHome = available
			case model.ModeClinicVisit:
				day.AvailableSlotsDesk = available
			}
		}

		result.SlotDetails = append(result.SlotDetails, day)
	}

	if req.RequestingUserID != uuid.Nil {
		current, err := s.appointments.FindActiveForPatient(ctx, doctor.ID, req.RequestingUserID, model.DateOf(now))
		switch {
		case err == nil:
			result.IsBookedByCurrentUser = true
			result.Status = &current.Status
		case !errors.Is(err, repository.ErrNotFound):
			return nil, storeErr("find patient appointment", err)
		}
	}

	result.IsDoctorAppointedEver, err = s.appointments.HasApproved(ctx, doctor.ID)
	if err != nil {
		return nil, storeErr("check approved appointments", err)
	}

	return result, nil
}

// VideoWindow слоты видеоконсультации одного дня, подходящие для записи сразу после reference
type VideoWindow struct {
	Date                  time.Time            `json:"date"`
	Doctor                *model.DoctorProfile `json:"doctor"`
	AvailableSlotsVideo   []model.SlotTime     `json:"availableSlotsVideo"`
	IsBookedByCurrentUser bool                 `json:"isBookedByCurrentUser"`
}

// VideoSlotsAfter вариант Plan на одну дату: видеослоты в окне
// [reference+consultation, reference+2*consultation]
func (s *AvailabilityService) VideoSlotsAfter(ctx context.Context, username string, requestingUserID uuid.UUID, date time.Time, reference model.SlotTime) (*VideoWindow, error) {
	s.metrics.Availability("window")

	doctor, err := s.approvedDoctor(ctx, uuid.Nil, username)
	if err != nil {
		return nil, err
	}

	date = model.DateOf(date)
	result := &VideoWindow{
		Date:                date,
		Doctor:              doctor,
		AvailableSlotsVideo: []model.SlotTime{},
	}

	if doctor.OffersMode(model.ModeVideoConsult) {
		result.AvailableSlotsVideo, err = s.window(ctx, doctor.ID, date, reference)
		if err != nil {
			return nil, err
		}
	}

	if requestingUserID != uuid.Nil {
		_, err := s.appointments.FindActiveForPatient(ctx, doctor.ID, requestingUserID, clock.Today(s.clock))
		switch {
		case err == nil:
			result.IsBookedByCurrentUser = true
		case !errors.Is(err, repository.ErrNotFound):
			return nil, storeErr("find patient appointment", err)
		}
	}

	return result, nil
}

// window видеослоты врача в окне после reference на дату
func (s *AvailabilityService) window(ctx context.Context, doctorID uuid.UUID, date time.Time, reference model.SlotTime) ([]model.SlotTime, error) {
	schedule, err := loadSchedule(ctx, s.schedules, doctorID)
	if err != nil {
		return nil, err
	}

	booked, err := s.appointments.BookedSlots(ctx, doctorID, date, date.AddDate(0, 0, 1))
	if err != nil {
		return nil, storeErr("get booked slots", err)
	}

	return slots.Window(
		schedule.OnlineSlots,
		slots.BookedOn(booked, date, ""),
		date,
		s.clock.Now(),
		reference,
		s.cfg.Consultation,
	), nil
}

// IsAvailable слот есть в шаблоне режима и не занят активной записью этого режима.
// Прошедшее время здесь не отсекается
func (s *AvailabilityService) IsAvailable(ctx context.Context, doctorID uuid.UUID, date time.Time, slot model.SlotTime, mode model.Mode) (bool, error) {
	if _, err := s.doctors.GetByID(ctx, doctorID); err != nil {
		return false, storeErr("get doctor", err)
	}
	return s.isAvailable(ctx, doctorID, date, slot, mode)
}

func (s *AvailabilityService) isAvailable(ctx context.Context, doctorID uuid.UUID, date time.Time, slot model.SlotTime, mode model.Mode) (bool, error) {
	schedule, err := loadSchedule(ctx, s.schedules, doctorID)
	if err != nil {
		return false, err
	}

	if !slices.Contains(schedule.SlotsFor(mode), slot) {
		return false, nil
	}

	date = model.DateOf(date)
	booked, err := s.appointments.BookedSlots(ctx, doctorID, date, date.AddDate(0, 0, 1))
	if err != nil {
		return false, storeErr("get booked slots", err)
	}

	return !slots.BookedOn(booked, date, mode).Has(slot), nil
}

// CheckResult ответ на проверку одного слота
type CheckResult struct {
	Doctor      *model.DoctorProfile `json:"doctor"`
	IsAvailable bool                 `json:"isAvailable"`
}

// Check проверка слота перед записью вместе с профилем врача
func (s *AvailabilityService) Check(ctx context.Context, doctorID uuid.UUID, date time.Time, slot model.SlotTime, mode model.Mode) (*CheckResult, error) {
	s.metrics.Availability("check")

	doctor, err := s.doctors.GetByID(ctx, doctorID)
	if err != nil {
		return nil, storeErr("get doctor", err)
	}

	ok, err := s.isAvailable(ctx, doctorID, date, slot, mode)
	if err != nil {
		return nil, err
	}

	return &CheckResult{Doctor: doctor, IsAvailable: ok}, nil
}

// HybridCheckRequest проверка пары слотов: выезд на дом и видеоконсультация
type HybridCheckRequest struct {
	HomeDoctorID  uuid.UUID
	HomeDate      time.Time
	HomeSlot      model.SlotTime
	VideoDoctorID uuid.UUID
	VideoDate     time.Time
	VideoSlot     model.SlotTime
}

type HybridCheckResult struct {
	HomeDoctor                 *model.DoctorProfile `json:"homeDoctor"`
	VideoDoctor                *model.DoctorProfile `json:"videoDoctor"`
	IsHomeVisitDoctorAvailable bool                 `json:"isHomeVisitDoctorAvailable"`
	IsVideoDoctorAvailable     bool                 `json:"isVideoDoctorAvailable"`
}

// CheckHybrid проверяет обе части гибридной записи независимо и параллельно
func (s *AvailabilityService) CheckHybrid(ctx context.Context, req HybridCheckRequest) (*HybridCheckResult, error) {
	s.metrics.Availability("hybrid")

	var home, video *CheckResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		home, err = s.Check(gctx, req.HomeDoctorID, req.HomeDate, req.HomeSlot, model.ModeHomeVisit)
		return err
	})
	g.Go(func() error {
		var err error
		video, err = s.Check(gctx, req.VideoDoctorID, req.VideoDate, req.VideoSlot, model.ModeVideoConsult)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &HybridCheckResult{
		HomeDoctor:                 home.Doctor,
		VideoDoctor:                video.Doctor,
		IsHomeVisitDoctorAvailable: home.IsAvailable,
		IsVideoDoctorAvailable:     video.IsAvailable,
	}, nil
}

// approvedDoctor врач для страницы записи: отсутствие и непрошедшая проверка - ErrUnauthorized
func (s *AvailabilityService) approvedDoctor(ctx context.Context, id uuid.UUID, username string) (*model.DoctorProfile, error) {
	var (
		doctor *model.DoctorProfile
		err    error
	)
	if id != uuid.Nil {
		doctor, err = s.doctors.GetByID(ctx, id)
	} else {
		doctor, err = s.doctors.GetByUsername(ctx, username)
	}

	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, storeErr("get doctor", err)
	}
	if !doctor.IsApproved() {
		return nil, ErrUnauthorized
	}

	return doctor, nil
}
