package service

import (
	"context"
	"errors"

	"github.com/Freeeeeet/appointment_service/internal/model"
	"github.com/Freeeeeet/appointment_service/internal/repository"
	"github.com/Freeeeeet/appointment_service/internal/slots"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ScheduleService struct {
	doctors   DoctorStore
	schedules ScheduleStore
	logger    *zap.Logger
}

func NewScheduleService(doctors DoctorStore, schedules ScheduleStore, logger *zap.Logger) *ScheduleService {
	return &ScheduleService{
		doctors:   doctors,
		schedules: schedules,
		logger:    logger,
	}
}

// ScheduleView шаблон вместе с текущими настройками приёма врача
type ScheduleView struct {
	*model.ScheduleTemplate
	Mode               model.Mode `json:"mode"`
	IsAvailableForDesk bool       `json:"isAvailableForDesk"`
}

// ScheduleUpdate новые списки слотов. nil - список не меняется,
// пустой срез - список очищается
type ScheduleUpdate struct {
	OnlineSlots []string `json:"onlineSlots"`
	HomeSlots   []string `json:"homeSlots"`
	DeskSlots   []string `json:"deskSlots"`
}

// Get возвращает шаблон врача или пустой шаблон, если врач его ещё не сохранял
func (s *ScheduleService) Get(ctx context.Context, doctorID uuid.UUID) (*ScheduleView, error) {
	doctor, err := s.doctors.GetByID(ctx, doctorID)
	if err != nil {
		return nil, storeErr("get doctor", err)
	}

	schedule, err := loadSchedule(ctx, s.schedules, doctorID)
	if err != nil {
		return nil, err
	}

	return &ScheduleView{
		ScheduleTemplate:   schedule,
		Mode:               doctor.Mode,
		IsAvailableForDesk: doctor.IsAvailableForDesk,
	}, nil
}

// Update создаёт шаблон при первом сохранении, дальше меняет его на месте.
// Каждый переданный список целиком заменяет сохранённый
func (s *ScheduleService) Update(ctx context.Context, doctorID uuid.UUID, update ScheduleUpdate) (*model.ScheduleTemplate, error) {
	// Сначала проверяем входные данные, до обращения к хранилищу
	online, err := normalizeSlots("onlineSlots", update.OnlineSlots)
	if err != nil {
		return nil, err
	}
	home, err := normalizeSlots("homeSlots", update.HomeSlots)
	if err != nil {
		return nil, err
	}
	desk, err := normalizeSlots("deskSlots", update.DeskSlots)
	if err != nil {
		return nil, err
	}

	if _, err := s.doctors.GetByID(ctx, doctorID); err != nil {
		return nil, storeErr("get doctor", err)
	}

	schedule, err := loadSchedule(ctx, s.schedules, doctorID)
	if err != nil {
		return nil, err
	}

	if online != nil {
		schedule.OnlineSlots = online
	}
	if home != nil {
		schedule.HomeSlots = home
	}
	if desk != nil {
		schedule.DeskSlots = desk
	}

	if err := s.schedules.Upsert(ctx, schedule); err != nil {
		return nil, storeErr("save schedule", err)
	}

	s.logger.Info("Schedule updated",
		zap.String("doctor_id", doctorID.String()),
		zap.Strings("online_slots", model.SlotTimeStrings(schedule.OnlineSlots)),
		zap.Strings("home_slots", model.SlotTimeStrings(schedule.HomeSlots)),
		zap.Strings("desk_slots", model.SlotTimeStrings(schedule.DeskSlots)),
	)

	return schedule, nil
}

// loadSchedule шаблон врача; отсутствие шаблона не ошибка
func loadSchedule(ctx context.Context, store ScheduleStore, doctorID uuid.UUID) (*model.ScheduleTemplate, error) {
	schedule, err := store.GetByDoctorID(ctx, doctorID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.EmptySchedule(doctorID), nil
	}
	if err != nil {
		return nil, storeErr("get schedule", err)
	}
	return schedule, nil
}

// normalizeSlots разбирает, убирает повторы и сортирует. nil на входе - nil на выходе
func normalizeSlots(field string, values []string) ([]model.SlotTime, error) {
	if values == nil {
		return nil, nil
	}

	parsed, err := model.ParseSlotTimes(values)
	if err != nil {
		return nil, invalidInput("%s: %v", field, err)
	}

	out := make([]model.SlotTime, 0, len(parsed))
	seen := make(map[model.SlotTime]struct{}, len(parsed))
	for _, t := range parsed {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	slots.Sort(out)

	return out, nil
}
