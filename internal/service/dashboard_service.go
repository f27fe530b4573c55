package service

import (
	"context"

	"github.com/Freeeeeet/appointment_service/internal/clock"
	"github.com/Freeeeeet/appointment_service/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DashboardService сводка по записям для кабинета врача
type DashboardService struct {
	doctors      DoctorStore
	appointments AppointmentStore
	clock        clock.Clock
	logger       *zap.Logger
}

func NewDashboardService(doctors DoctorStore, appointments AppointmentStore, clk clock.Clock, logger *zap.Logger) *DashboardService {
	return &DashboardService{
		doctors:      doctors,
		appointments: appointments,
		clock:        clk,
		logger:       logger,
	}
}

type Dashboard struct {
	model.StatusCounts
	Today    []*model.Appointment `json:"todayAppointments"`
	Upcoming []*model.Appointment `json:"upcomingAppointments"`
}

// Dashboard счётчики по статусам, записи на сегодня и на будущие дни
func (s *DashboardService) Dashboard(ctx context.Context, doctorID uuid.UUID) (*Dashboard, error) {
	if _, err := s.doctors.GetByID(ctx, doctorID); err != nil {
		return nil, storeErr("get doctor", err)
	}

	today := clock.Today(s.clock)
	tomorrow := today.AddDate(0, 0, 1)

	var result Dashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		counts, err := s.appointments.CountByStatus(gctx, doctorID)
		if err != nil {
			return storeErr("count appointments", err)
		}
		result.StatusCounts = counts
		return nil
	})
	g.Go(func() error {
		list, err := s.appointments.ListForDoctor(gctx, doctorID, model.AppointmentFilter{From: today, To: tomorrow})
		if err != nil {
			return storeErr("list today appointments", err)
		}
		result.Today = list
		return nil
	})
	g.Go(func() error {
		list, err := s.appointments.ListForDoctor(gctx, doctorID, model.AppointmentFilter{From: tomorrow})
		if err != nil {
			return storeErr("list upcoming appointments", err)
		}
		result.Upcoming = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &result, nil
}

// Patients пациенты, у которых была подтверждённая запись к врачу
func (s *DashboardService) Patients(ctx context.Context, doctorID uuid.UUID) ([]*model.PatientContact, error) {
	if _, err := s.doctors.GetByID(ctx, doctorID); err != nil {
		return nil, storeErr("get doctor", err)
	}

	patients, err := s.appointments.ApprovedPatients(ctx, doctorID)
	if err != nil {
		return nil, storeErr("list patients", err)
	}
	return patients, nil
}

// Pending записи, ждущие решения врача, начиная с сегодняшнего дня
func (s *DashboardService) Pending(ctx context.Context, doctorID uuid.UUID) ([]*model.Appointment, error) {
	list, err := s.appointments.ListForDoctor(ctx, doctorID, model.AppointmentFilter{
		From:   clock.Today(s.clock),
		Status: model.AppointmentStatusPending,
	})
	if err != nil {
		return nil, storeErr("list pending appointments", err)
	}
	return list, nil
}
