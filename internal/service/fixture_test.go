package service

import (
	"context"
	"testing"
	"time"

	"github.com/Freeeeeet/appointment_service/internal/clock"
	"github.com/Freeeeeet/appointment_service/internal/model"
	"github.com/Freeeeeet/appointment_service/internal/repository"
	"github.com/Freeeeeet/appointment_service/internal/repository/memory"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	_ DoctorStore      = (*repository.DoctorRepository)(nil)
	_ ScheduleStore    = (*repository.ScheduleRepository)(nil)
	_ AppointmentStore = (*repository.AppointmentRepository)(nil)
	_ UserStore        = (*repository.UserRepository)(nil)

	_ DoctorStore      = (*memory.Doctors)(nil)
	_ ScheduleStore    = (*memory.Schedules)(nil)
	_ AppointmentStore = (*memory.Appointments)(nil)
	_ UserStore        = (*memory.Users)(nil)
)

var ist = time.FixedZone("IST", 5*60*60+30*60)

// 8 июня 2024, 10:30 по местному времени
var defaultNow = time.Date(2024, time.June, 8, 10, 30, 0, 0, ist)

type fixture struct {
	store        *memory.Store
	schedules    *ScheduleService
	availability *AvailabilityService
	booking      *BookingService
	dashboard    *DashboardService
	doctors      *DoctorService
	patient      *model.User
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()

	store := memory.New()
	clk := clock.Fixed(now)
	logger := zap.NewNop()

	availability := NewAvailabilityService(
		store.Doctors(), store.Schedules(), store.Appointments(),
		clk, AvailabilityConfig{}, nil, logger,
	)

	return &fixture{
		store:        store,
		schedules:    NewScheduleService(store.Doctors(), store.Schedules(), logger),
		availability: availability,
		booking:      NewBookingService(availability, store.Appointments(), store.Users(), nil, logger),
		dashboard:    NewDashboardService(store.Doctors(), store.Appointments(), clk, logger),
		doctors:      NewDoctorService(store.Doctors(), availability, logger),
		patient: store.AddUser(model.User{
			Username:  "patient",
			FirstName: "Asha",
			LastName:  "Rao",
			Contact:   "+91-90000-00001",
		}),
	}
}

func (f *fixture) addDoctor(username string, mode model.Mode, desk bool) *model.DoctorProfile {
	return f.store.AddDoctor(
		model.User{Username: username, FirstName: "Dr", LastName: username},
		model.DoctorProfile{
			Status:             model.VerificationApproved,
			Mode:               mode,
			IsAvailableForDesk: desk,
			Specializations:    []string{"General"},
		},
	)
}

func (f *fixture) setSchedule(t *testing.T, doctor *model.DoctorProfile, update ScheduleUpdate) {
	t.Helper()
	_, err := f.schedules.Update(context.Background(), doctor.ID, update)
	require.NoError(t, err)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func slot(s string) model.SlotTime {
	return model.MustSlotTime(s)
}

func slotStrings(times []model.SlotTime) []string {
	return model.SlotTimeStrings(times)
}

func fixedClock(t time.Time) clock.Clock {
	return clock.Fixed(t)
}

func nopLogger() *zap.Logger {
	return zap.NewNop()
}

func contains(list []model.SlotTime, t model.SlotTime) bool {
	for _, s := range list {
		if s == t {
			return true
		}
	}
	return false
}
