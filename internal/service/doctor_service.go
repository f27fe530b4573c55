package service

import (
	"context"
	"strings"
	"time"

	"github.com/Freeeeeet/appointment_service/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// windowSearchLimit сколько врачей проверяется параллельно при поиске по видеослоту
const windowSearchLimit = 8

type DoctorService struct {
	doctors      DoctorStore
	availability *AvailabilityService
	logger       *zap.Logger
}

func NewDoctorService(doctors DoctorStore, availability *AvailabilityService, logger *zap.Logger) *DoctorService {
	return &DoctorService{
		doctors:      doctors,
		availability: availability,
		logger:       logger,
	}
}

// Get профиль врача по ID
func (s *DoctorService) Get(ctx context.Context, doctorID uuid.UUID) (*model.DoctorProfile, error) {
	doctor, err := s.doctors.GetByID(ctx, doctorID)
	if err != nil {
		return nil, storeErr("get doctor", err)
	}
	return doctor, nil
}

// Find поиск одобренных врачей. CLINIC_VISIT отбирает по isAvailableForDesk
func (s *DoctorService) Find(ctx context.Context, filter model.DoctorFilter) ([]*model.DoctorProfile, error) {
	filter.Speciality = strings.TrimSpace(filter.Speciality)
	filter.Address = strings.TrimSpace(filter.Address)
	if filter.Mode != "" {
		if _, err := model.ParseMode(string(filter.Mode)); err != nil {
			return nil, invalidInput("mode: %v", err)
		}
	}

	doctors, err := s.doctors.Find(ctx, filter)
	if err != nil {
		return nil, storeErr("find doctors", err)
	}
	if doctors == nil {
		doctors = []*model.DoctorProfile{}
	}
	return doctors, nil
}

// DoctorSlots врач и его видеослоты в окне после запрошенного
type DoctorSlots struct {
	Doctor *model.DoctorProfile `json:"doctor"`
	Slots  []model.SlotTime     `json:"availableSlotsVideo"`
}

// FindByVideoSlot врачи видеоконсультаций, у которых на дату есть слот сразу после reference
func (s *DoctorService) FindByVideoSlot(ctx context.Context, date time.Time, reference model.SlotTime) ([]DoctorSlots, error) {
	doctors, err := s.doctors.Find(ctx, model.DoctorFilter{Mode: model.ModeVideoConsult})
	if err != nil {
		return nil, storeErr("find video doctors", err)
	}

	date = model.DateOf(date)
	found := make([]*DoctorSlots, len(doctors))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(windowSearchLimit)
	for i, doctor := range doctors {
		g.Go(func() error {
			window, err := s.availability.window(gctx, doctor.ID, date, reference)
			if err != nil {
				return err
			}
			if len(window) == 0 {
				return nil
			}
			found[i] = &DoctorSlots{Doctor: doctor, Slots: window}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := []DoctorSlots{}
	for _, f := range found {
		if f != nil {
			result = append(result, *f)
		}
	}
	return result, nil
}

// ListUnverified врачи, ожидающие проверки администратором
func (s *DoctorService) ListUnverified(ctx context.Context) ([]*model.DoctorProfile, error) {
	doctors, err := s.doctors.ListByStatus(ctx, model.VerificationPending)
	if err != nil {
		return nil, storeErr("list unverified doctors", err)
	}
	if doctors == nil {
		doctors = []*model.DoctorProfile{}
	}
	return doctors, nil
}

// SetVerification решение администратора по профилю врача
func (s *DoctorService) SetVerification(ctx context.Context, doctorID uuid.UUID, status model.VerificationStatus) (*model.DoctorProfile, error) {
	switch status {
	case model.VerificationApproved, model.VerificationRejected, model.VerificationPending:
	default:
		return nil, invalidInput("unknown verification status %q", status)
	}

	if err := s.doctors.UpdateStatus(ctx, doctorID, status); err != nil {
		return nil, storeErr("update doctor status", err)
	}

	s.logger.Info("Doctor verification changed",
		zap.String("doctor_id", doctorID.String()),
		zap.String("status", string(status)),
	)

	return s.Get(ctx, doctorID)
}

// DoctorSettings режим приёма и доступность приёма в клинике
type DoctorSettings struct {
	Mode               *model.Mode `json:"mode"`
	IsAvailableForDesk *bool       `json:"isAvailableForDesk"`
}

// UpdateSettings меняет переданные настройки, остальные остаются прежними
func (s *DoctorService) UpdateSettings(ctx context.Context, doctorID uuid.UUID, settings DoctorSettings) (*model.DoctorProfile, error) {
	doctor, err := s.Get(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	mode := doctor.Mode
	if settings.Mode != nil {
		if mode, err = model.ParseMode(string(*settings.Mode)); err != nil {
			return nil, invalidInput("mode: %v", err)
		}
	}
	desk := doctor.IsAvailableForDesk
	if settings.IsAvailableForDesk != nil {
		desk = *settings.IsAvailableForDesk
	}

	if err := s.doctors.UpdateSettings(ctx, doctorID, mode, desk); err != nil {
		return nil, storeErr("update doctor settings", err)
	}

	s.logger.Info("Doctor settings updated",
		zap.String("doctor_id", doctorID.String()),
		zap.String("mode", string(mode)),
		zap.Bool("desk", desk),
	)

	doctor.Mode = mode
	doctor.IsAvailableForDesk = desk
	return doctor, nil
}

// LinkTelegram привязывает чат бота к профилю врача
func (s *DoctorService) LinkTelegram(ctx context.Context, doctorID uuid.UUID, telegramID int64) (*model.DoctorProfile, error) {
	if err := s.doctors.SetTelegramID(ctx, doctorID, telegramID); err != nil {
		return nil, storeErr("link telegram", err)
	}

	s.logger.Info("Telegram linked",
		zap.String("doctor_id", doctorID.String()),
		zap.Int64("telegram_id", telegramID),
	)

	return s.Get(ctx, doctorID)
}

// GetByTelegramID врач, привязавший чат
func (s *DoctorService) GetByTelegramID(ctx context.Context, telegramID int64) (*model.DoctorProfile, error) {
	doctor, err := s.doctors.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, storeErr("get doctor by telegram id", err)
	}
	return doctor, nil
}
