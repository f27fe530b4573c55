package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Freeeeeet/appointment_service/internal/model"
	"github.com/Freeeeeet/appointment_service/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBook_CreatesPendingAppointment(t *testing.T) {
	f := newFixture(t, defaultNow)
	doctor := f.addDoctor("dr-book", model.ModeHomeVisit, false)
	f.setSchedule(t, doctor, ScheduleUpdate{HomeSlots: []string{"15:00"}})

	got, err := f.booking.Book(context.Background(), BookRequest{
		DoctorProfileID: doctor.ID,
		UserID:          f.patient.ID,
		Date:            time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC),
		Slot:            slot("15:00"),
		Type:            model.ModeHomeVisit,
		Reason:          "fever",
		CurrentLocation: &model.Location{Lat: 12.97, Long: 77.59},
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, got.ID)
	assert.Equal(t, model.AppointmentStatusPending, got.Status)
	assert.Equal(t, date(2024, time.June, 10), got.AppointmentSlotDate)
	assert.Equal(t, "15:00", got.AppointmentSlotTime.String())
	assert.Equal(t, model.ModeHomeVisit, got.Type)
	assert.Equal(t, "fever", got.Reason)
	require.NotNil(t, got.CurrentLocation)
	assert.Equal(t, 12.97, got.CurrentLocation.Lat)
	assert.Equal(t, 1, f.store.AppointmentCount())
}

func TestBook_ForOthers(t *testing.T) {
	f := newFixture(t, defaultNow)
	doctor := f.addDoctor("dr-others", model.ModeVideoConsult, false)
	f.setSchedule(t, doctor, ScheduleUpdate{OnlineSlots: []string{"09:00", "10:00"}})
	ctx := context.Background()

	req := BookRequest{
		DoctorProfileID: doctor.ID,
		UserID:          f.patient.ID,
		Date:            date(2024, time.June, 10),
		Slot:            slot("09:00"),
		Type:            model.ModeVideoConsult,
		IsForOthers:     true,
	}
	_, err := f.booking.Book(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	req.OthersContact = &model.OthersContact{Name: "Mother", Contact: "+91-90000-00002"}
	got, err := f.booking.Book(ctx, req)
	require.NoError(t, err)
	assert.True(t, got.IsForOthers)
	assert.Equal(t, "Mother", got.OthersContact.Name)
	assert.Nil(t, got.CurrentLocation)
}

func TestBook_DoubleBookingIsRejected(t *testing.T) {
	f := newFixture(t, defaultNow)
	doctor := f.addDoctor("dr-double", model.ModeVideoConsult, false)
	f.setSchedule(t, doctor, ScheduleUpdate{OnlineSlots: []string{"09:30"}})
	day := date(2024, time.June, 10)

	first := f.book(t, doctor, day, "09:30", model.ModeVideoConsult)
	assert.Equal(t, model.AppointmentStatusPending, first.Status)

	_, err := f.booking.Book(context.Background(), BookRequest{
		DoctorProfileID: doctor.ID,
		UserID:          f.patient.ID,
		Date:            day,
		Slot:            slot("09:30"),
		Type:            model.ModeVideoConsult,
	})
	assert.ErrorIs(t, err, ErrSlotUnavailable)
	assert.Equal(t, 1, f.store.AppointmentCount())
}

func TestBook_RejectsSlotsOutsideTemplate(t *testing.T) {
	f := newFixture(t, defaultNow)
	doctor := f.addDoctor("dr-outside", model.ModeVideoConsult, false)
	f.setSchedule(t, doctor, ScheduleUpdate{OnlineSlots: []string{"09:00"}})

	_, err := f.booking.Book(context.Background(), BookRequest{
		DoctorProfileID: doctor.ID,
		UserID:          f.patient.ID,
		Date:            date(2024, time.June, 10),
		Slot:            slot("11:00"),
		Type:            model.ModeVideoConsult,
	})
	assert.ErrorIs(t, err, ErrSlotUnavailable)
	assert.Equal(t, 0, f.store.AppointmentCount())
}

func TestBook_Validation(t *testing.T) {
	f := newFixture(t, defaultNow)
	doctor := f.addDoctor("dr-validate", model.ModeVideoConsult, false)
	ctx := context.Background()

	_, err := f.booking.Book(ctx, BookRequest{DoctorProfileID: doctor.ID, UserID: f.patient.ID, Date: date(2024, time.June, 10), Type: "PHONE"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.booking.Book(ctx, BookRequest{DoctorProfileID: doctor.ID, UserID: f.patient.ID, Type: model.ModeVideoConsult})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.booking.Book(ctx, BookRequest{DoctorProfileID: uuid.New(), UserID: f.patient.ID, Date: date(2024, time.June, 10), Type: model.ModeVideoConsult})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.booking.Book(ctx, BookRequest{DoctorProfileID: doctor.ID, UserID: uuid.New(), Date: date(2024, time.June, 10), Type: model.ModeVideoConsult})
	assert.ErrorIs(t, err, ErrNotFound)
}

func (f *fixture) hybridRequest(home, video *model.DoctorProfile, day time.Time) HybridBookRequest {
	return HybridBookRequest{
		HomeDoctorID:    home.ID,
		VideoDoctorID:   video.ID,
		UserID:          f.patient.ID,
		HomeDate:        day,
		HomeSlot:        slot("15:00"),
		VideoDate:       day,
		VideoSlot:       slot("16:00"),
		Reason:          "follow-up",
		CurrentLocation: &model.Location{Lat: 1, Long: 2},
	}
}

func TestBookHybrid_CreatesBothLegs(t *testing.T) {
	f := newFixture(t, defaultNow)
	home := f.addDoctor("dr-h", model.ModeHomeVisit, false)
	video := f.addDoctor("dr-v", model.ModeVideoConsult, false)
	f.setSchedule(t, home, ScheduleUpdate{HomeSlots: []string{"15:00"}})
	f.setSchedule(t, video, ScheduleUpdate{OnlineSlots: []string{"16:00"}})

	got, err := f.booking.BookHybrid(context.Background(), f.hybridRequest(home, video, date(2024, time.June, 10)))
	require.NoError(t, err)

	assert.Equal(t, 2, f.store.AppointmentCount())
	assert.Equal(t, model.ModeHomeVisit, got[0].Type)
	assert.Equal(t, model.ModeVideoConsult, got[1].Type)
	for _, a := range got {
		assert.Equal(t, f.patient.ID, a.UserID)
		assert.Equal(t, "follow-up", a.Reason)
		assert.Equal(t, model.AppointmentStatusPending, a.Status)
	}
	assert.Equal(t, home.ID, got[0].DoctorProfileID)
	assert.Equal(t, video.ID, got[1].DoctorProfileID)
	assert.NotNil(t, got[0].CurrentLocation)
	assert.Nil(t, got[1].CurrentLocation)
}

func TestBookHybrid_UnavailableLegCreatesNothing(t *testing.T) {
	f := newFixture(t, defaultNow)
	home := f.addDoctor("dr-h2", model.ModeHomeVisit, false)
	video := f.addDoctor("dr-v2", model.ModeVideoConsult, false)
	f.setSchedule(t, home, ScheduleUpdate{HomeSlots: []string{"15:00"}})
	f.setSchedule(t, video, ScheduleUpdate{OnlineSlots: []string{"09:00"}})

	_, err := f.booking.BookHybrid(context.Background(), f.hybridRequest(home, video, date(2024, time.June, 10)))
	assert.ErrorIs(t, err, ErrSlotUnavailable)
	assert.Equal(t, 0, f.store.AppointmentCount())
}

func TestBookHybrid_FailureOnSecondInsertRollsBack(t *testing.T) {
	f := newFixture(t, defaultNow)
	home := f.addDoctor("dr-h3", model.ModeHomeVisit, false)
	video := f.addDoctor("dr-v3", model.ModeVideoConsult, false)
	f.setSchedule(t, home, ScheduleUpdate{HomeSlots: []string{"15:00"}})
	f.setSchedule(t, video, ScheduleUpdate{OnlineSlots: []string{"16:00"}})

	f.store.BeforeInsert = func(a *model.Appointment) error {
		if a.Type == model.ModeVideoConsult {
			return errors.New("connection reset")
		}
		return nil
	}

	_, err := f.booking.BookHybrid(context.Background(), f.hybridRequest(home, video, date(2024, time.June, 10)))
	assert.ErrorIs(t, err, ErrInternal)
	assert.Equal(t, 0, f.store.AppointmentCount())
}

func TestBookHybrid_ConflictOnInsertIsSlotUnavailable(t *testing.T) {
	f := newFixture(t, defaultNow)
	home := f.addDoctor("dr-h4", model.ModeHomeVisit, false)
	video := f.addDoctor("dr-v4", model.ModeVideoConsult, false)
	f.setSchedule(t, home, ScheduleUpdate{HomeSlots: []string{"15:00"}})
	f.setSchedule(t, video, ScheduleUpdate{OnlineSlots: []string{"16:00"}})

	// Параллельный запрос занимает видеослот между проверкой и вставкой
	f.store.BeforeInsert = func(a *model.Appointment) error {
		if a.Type == model.ModeVideoConsult {
			return fmt.Errorf("insert: %w", repository.ErrConflict)
		}
		return nil
	}

	_, err := f.booking.BookHybrid(context.Background(), f.hybridRequest(home, video, date(2024, time.June, 10)))
	assert.ErrorIs(t, err, ErrSlotUnavailable)
	assert.Equal(t, 0, f.store.AppointmentCount())
}

func TestAct(t *testing.T) {
	f := newFixture(t, defaultNow)
	doctor := f.addDoctor("dr-act", model.ModeVideoConsult, false)
	other := f.addDoctor("dr-other", model.ModeVideoConsult, false)
	f.setSchedule(t, doctor, ScheduleUpdate{OnlineSlots: []string{"09:00", "10:00"}})
	day := date(2024, time.June, 10)
	ctx := context.Background()

	approved := f.book(t, doctor, day, "09:00", model.ModeVideoConsult)
	rejected := f.book(t, doctor, day, "10:00", model.ModeVideoConsult)

	got, err := f.booking.Act(ctx, approved.ID, doctor.ID, model.AppointmentStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusApproved, got.Status)

	got, err = f.booking.Act(ctx, rejected.ID, doctor.ID, model.AppointmentStatusRejected)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusRejected, got.Status)

	// Из конечных статусов переходов нет
	_, err = f.booking.Act(ctx, approved.ID, doctor.ID, model.AppointmentStatusRejected)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = f.booking.Act(ctx, rejected.ID, doctor.ID, model.AppointmentStatusApproved)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.booking.Act(ctx, approved.ID, other.ID, model.AppointmentStatusApproved)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.booking.Act(ctx, uuid.New(), doctor.ID, model.AppointmentStatusApproved)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.booking.Act(ctx, approved.ID, doctor.ID, model.AppointmentStatusPending)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPatientAppointments(t *testing.T) {
	f := newFixture(t, defaultNow)
	doctor := f.addDoctor("dr-list", model.ModeVideoConsult, false)
	f.setSchedule(t, doctor, ScheduleUpdate{OnlineSlots: []string{"09:00"}})
	f.book(t, doctor, date(2024, time.June, 10), "09:00", model.ModeVideoConsult)
	f.book(t, doctor, date(2024, time.June, 11), "09:00", model.ModeVideoConsult)

	got, err := f.booking.PatientAppointments(context.Background(), f.patient.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, date(2024, time.June, 11), got[0].AppointmentSlotDate, "newest first")
	require.NotNil(t, got[0].Doctor)
	assert.Equal(t, doctor.Username, got[0].Doctor.Username)
}

// appointmentStoreMock хранилище записей для сценариев, которые не воспроизвести в памяти
type appointmentStoreMock struct {
	mock.Mock
	AppointmentStore
}

func (m *appointmentStoreMock) BookedSlots(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]model.BookedSlot, error) {
	args := m.Called(ctx, doctorID, from, to)
	booked, _ := args.Get(0).([]model.BookedSlot)
	return booked, args.Error(1)
}

func (m *appointmentStoreMock) Create(ctx context.Context, a *model.Appointment) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *appointmentStoreMock) GetByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	args := m.Called(ctx, id)
	a, _ := args.Get(0).(*model.Appointment)
	return a, args.Error(1)
}

func (m *appointmentStoreMock) UpdateStatus(ctx context.Context, id, doctorID uuid.UUID, from, to model.AppointmentStatus) (*model.Appointment, error) {
	args := m.Called(ctx, id, doctorID, from, to)
	a, _ := args.Get(0).(*model.Appointment)
	return a, args.Error(1)
}

func newMockedBooking(t *testing.T) (*fixture, *appointmentStoreMock, *BookingService, *model.DoctorProfile) {
	f := newFixture(t, defaultNow)
	doctor := f.addDoctor("dr-mocked", model.ModeVideoConsult, false)
	f.setSchedule(t, doctor, ScheduleUpdate{OnlineSlots: []string{"09:00"}})

	appointments := &appointmentStoreMock{}
	availability := NewAvailabilityService(
		f.store.Doctors(), f.store.Schedules(), appointments,
		fixedClock(defaultNow), AvailabilityConfig{}, nil, nopLogger(),
	)
	booking := NewBookingService(availability, appointments, f.store.Users(), nil, nopLogger())
	return f, appointments, booking, doctor
}

func TestBook_ConcurrentInsertConflictIsSlotUnavailable(t *testing.T) {
	f, appointments, booking, doctor := newMockedBooking(t)
	appointments.On("BookedSlots", mock.Anything, doctor.ID, mock.Anything, mock.Anything).Return(nil, nil)
	appointments.On("Create", mock.Anything, mock.AnythingOfType("*model.Appointment")).
		Return(fmt.Errorf("create appointment: %w: appointments_active_slot", repository.ErrConflict))

	_, err := booking.Book(context.Background(), BookRequest{
		DoctorProfileID: doctor.ID,
		UserID:          f.patient.ID,
		Date:            date(2024, time.June, 10),
		Slot:            slot("09:00"),
		Type:            model.ModeVideoConsult,
	})
	assert.ErrorIs(t, err, ErrSlotUnavailable)
	assert.ErrorIs(t, err, repository.ErrConflict)
	appointments.AssertExpectations(t)
}

func TestBook_StoreFailureIsInternal(t *testing.T) {
	f, appointments, booking, doctor := newMockedBooking(t)
	appointments.On("BookedSlots", mock.Anything, doctor.ID, mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused"))

	_, err := booking.Book(context.Background(), BookRequest{
		DoctorProfileID: doctor.ID,
		UserID:          f.patient.ID,
		Date:            date(2024, time.June, 10),
		Slot:            slot("09:00"),
		Type:            model.ModeVideoConsult,
	})
	assert.ErrorIs(t, err, ErrInternal)
	appointments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAct_LostRaceIsInvalidTransition(t *testing.T) {
	_, appointments, booking, doctor := newMockedBooking(t)
	id := uuid.New()
	appointments.On("GetByID", mock.Anything, id).Return(&model.Appointment{
		ID:              id,
		DoctorProfileID: doctor.ID,
		Status:          model.AppointmentStatusPending,
	}, nil)
	appointments.On("UpdateStatus", mock.Anything, id, doctor.ID, model.AppointmentStatusPending, model.AppointmentStatusApproved).
		Return(nil, fmt.Errorf("update appointment status: %w", repository.ErrNotFound))

	_, err := booking.Act(context.Background(), id, doctor.ID, model.AppointmentStatusApproved)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	appointments.AssertExpectations(t)
}
