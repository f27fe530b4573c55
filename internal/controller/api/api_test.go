package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Freeeeeet/appointment_service/internal/clock"
	"github.com/Freeeeeet/appointment_service/internal/metrics"
	"github.com/Freeeeeet/appointment_service/internal/model"
	"github.com/Freeeeeet/appointment_service/internal/repository/memory"
	"github.com/Freeeeeet/appointment_service/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testServer struct {
	handler http.Handler
	store   *memory.Store
	metrics *metrics.Metrics
	patient *model.User
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := memory.New()
	clk := clock.Fixed(time.Date(2024, time.June, 8, 10, 30, 0, 0, time.UTC))
	logger := zap.NewNop()
	m := metrics.New()

	availability := service.NewAvailabilityService(
		store.Doctors(), store.Schedules(), store.Appointments(),
		clk, service.AvailabilityConfig{}, m, logger,
	)
	h := NewHandler(Services{
		Schedules:    service.NewScheduleService(store.Doctors(), store.Schedules(), logger),
		Availability: availability,
		Booking:      service.NewBookingService(availability, store.Appointments(), store.Users(), m, logger),
		Dashboard:    service.NewDashboardService(store.Doctors(), store.Appointments(), clk, logger),
		Doctors:      service.NewDoctorService(store.Doctors(), availability, logger),
	}, logger)

	return &testServer{
		handler: NewRouter(h, RouterConfig{Metrics: m}, logger),
		store:   store,
		metrics: m,
		patient: store.AddUser(model.User{Username: "patient", FirstName: "Asha", Contact: "+91-1"}),
	}
}

func (s *testServer) addDoctor(username string, mode model.Mode, desk bool) *model.DoctorProfile {
	return s.store.AddDoctor(
		model.User{Username: username, FirstName: "Dr"},
		model.DoctorProfile{Status: model.VerificationApproved, Mode: mode, IsAvailableForDesk: desk},
	)
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

type daySlotsJSON struct {
	Date                string   `json:"date"`
	AvailableSlotsVideo []string `json:"availableSlotsVideo"`
	AvailableSlotsDesk  []string `json:"availableSlotsDesk"`
	AvailableSlotsHome  []string `json:"availableSlotsHome"`
	BookedSlots         []string `json:"bookedSlots"`
}

type availabilityJSON struct {
	SlotDetails           []daySlotsJSON `json:"slotDetails"`
	IsBookedByCurrentUser bool           `json:"isBookedByCurrentUser"`
	Status                *string        `json:"status"`
	IsDoctorAppointedEver bool           `json:"isDoctorAppointedEver"`
}

func TestSchedule_GetAndUpdate(t *testing.T) {
	s := newTestServer(t)
	doctor := s.addDoctor("dr-api", model.ModeVideoConsult, false)
	path := "/api/v1/doctors/" + doctor.ID.String() + "/schedule"

	rec := s.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[map[string]any](t, rec)
	assert.Equal(t, []any{}, got["onlineSlots"])
	assert.Equal(t, "VIDEO_CONSULT", got["mode"])

	rec = s.do(t, http.MethodPut, path, map[string]any{"onlineSlots": []string{"10:00", "09:00"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got = decode[map[string]any](t, rec)
	assert.Equal(t, []any{"09:00", "10:00"}, got["onlineSlots"])
	assert.Equal(t, doctor.ID.String(), got["doctorProfileId"])

	rec = s.do(t, http.MethodPut, path, map[string]any{"onlineSlots": []string{"9am"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, path, `{"onlineSlots": ["09:00"], "extra": true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/doctors/not-a-uuid/schedule", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEndToEnd_BookAndQueryAvailability(t *testing.T) {
	s := newTestServer(t)
	doctor := s.addDoctor("dr-e2e", model.ModeVideoConsult, false)

	rec := s.do(t, http.MethodPut, "/api/v1/doctors/"+doctor.ID.String()+"/schedule",
		map[string]any{"onlineSlots": []string{"09:00", "09:30", "10:00"}})
	require.Equal(t, http.StatusOK, rec.Code)

	booking := map[string]any{
		"doctorProfileId":     doctor.ID.String(),
		"userId":              s.patient.ID.String(),
		"appointmentSlotDate": "2024-06-10T00:00:00.000Z",
		"appointmentSlotTime": "09:30",
		"type":                "VIDEO_CONSULT",
		"reason":              "cough",
	}
	rec = s.do(t, http.MethodPost, "/api/v1/appointments", booking)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	appt := decode[map[string]any](t, rec)
	assert.Equal(t, "PENDING", appt["status"])
	assert.Equal(t, "2024-06-10T00:00:00Z", appt["appointmentSlotDate"])
	assert.Equal(t, "09:30", appt["appointmentSlotTime"])

	rec = s.do(t, http.MethodPost, "/api/v1/appointments", booking)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "slot not available")

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/doctors/by-username/%s/availability?startDate=2024-06-10&userId=%s",
		doctor.Username, s.patient.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[availabilityJSON](t, rec)

	require.Len(t, got.SlotDetails, 10)
	assert.Equal(t, "2024-06-10T00:00:00Z", got.SlotDetails[0].Date)
	assert.Equal(t, []string{"09:00", "10:00"}, got.SlotDetails[0].AvailableSlotsVideo)
	assert.Equal(t, []string{"09:30"}, got.SlotDetails[0].BookedSlots)
	assert.Equal(t, []string{}, got.SlotDetails[0].AvailableSlotsHome)
	assert.True(t, got.IsBookedByCurrentUser)
	require.NotNil(t, got.Status)
	assert.Equal(t, "PENDING", *got.Status)
	assert.False(t, got.IsDoctorAppointedEver)
}

func TestAvailability_UnapprovedDoctorIs401(t *testing.T) {
	s := newTestServer(t)
	s.store.AddDoctor(model.User{Username: "dr-new"}, model.DoctorProfile{})

	rec := s.do(t, http.MethodGet, "/api/v1/doctors/by-username/dr-new/availability", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/doctors/by-username/ghost/availability", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCheckAvailability(t *testing.T) {
	s := newTestServer(t)
	doctor := s.addDoctor("dr-check", model.ModeVideoConsult, true)
	s.do(t, http.MethodPut, "/api/v1/doctors/"+doctor.ID.String()+"/schedule",
		map[string]any{"deskSlots": []string{"12:00"}})

	rec := s.do(t, http.MethodPost, "/api/v1/availability/check", map[string]any{
		"doctorProfileId": doctor.ID.String(),
		"date":            "2024-06-10",
		"slotTime":        "12:00",
		"mode":            "CLINIC_VISIT",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[map[string]any](t, rec)
	assert.Equal(t, true, got["isAvailable"])
	assert.NotNil(t, got["doctor"])

	rec = s.do(t, http.MethodPost, "/api/v1/availability/check", map[string]any{
		"doctorProfileId": "4b1f3c4e-0000-4000-8000-000000000000",
		"date":            "2024-06-10",
		"slotTime":        "12:00",
		"mode":            "CLINIC_VISIT",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/availability/check", map[string]any{
		"doctorProfileId": doctor.ID.String(),
		"date":            "2024-06-10",
		"slotTime":        "12:00",
		"mode":            "TELEPATHY",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHybrid_CheckAndBook(t *testing.T) {
	s := newTestServer(t)
	home := s.addDoctor("dr-home", model.ModeHomeVisit, false)
	video := s.addDoctor("dr-video", model.ModeVideoConsult, false)
	s.do(t, http.MethodPut, "/api/v1/doctors/"+home.ID.String()+"/schedule", map[string]any{"homeSlots": []string{"15:00"}})
	s.do(t, http.MethodPut, "/api/v1/doctors/"+video.ID.String()+"/schedule", map[string]any{"onlineSlots": []string{"16:00"}})

	rec := s.do(t, http.MethodPost, "/api/v1/availability/check-hybrid", map[string]any{
		"homeVisitDoctorId": home.ID.String(),
		"h_apptDate":        "2024-06-10",
		"h_slotTime":        "15:00",
		"videoDoctorId":     video.ID.String(),
		"v_apptDate":        "2024-06-10",
		"v_slotTime":        "16:00",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	check := decode[map[string]any](t, rec)
	assert.Equal(t, true, check["isHomeVisitDoctorAvailable"])
	assert.Equal(t, true, check["isVideoDoctorAvailable"])

	body := map[string]any{
		"homeDoctorId":    home.ID.String(),
		"videoDoctorId":   video.ID.String(),
		"userId":          s.patient.ID.String(),
		"h_apptDate":      "2024-06-10",
		"h_slot":          "15:00",
		"v_apptDate":      "2024-06-10",
		"v_slot":          "16:00",
		"reason":          "post-op",
		"currentLocation": map[string]float64{"lat": 12.9, "long": 77.6},
	}
	rec = s.do(t, http.MethodPost, "/api/v1/appointments/hybrid", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	pair := decode[[]map[string]any](t, rec)
	require.Len(t, pair, 2)
	assert.Equal(t, "HOME_VISIT", pair[0]["type"])
	assert.Equal(t, "VIDEO_CONSULT", pair[1]["type"])

	rec = s.do(t, http.MethodPost, "/api/v1/appointments/hybrid", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 2, s.store.AppointmentCount())
}

func TestActOnAppointment(t *testing.T) {
	s := newTestServer(t)
	doctor := s.addDoctor("dr-action", model.ModeVideoConsult, false)
	s.do(t, http.MethodPut, "/api/v1/doctors/"+doctor.ID.String()+"/schedule", map[string]any{"onlineSlots": []string{"09:00"}})

	rec := s.do(t, http.MethodPost, "/api/v1/appointments", map[string]any{
		"doctorProfileId":     doctor.ID.String(),
		"userId":              s.patient.ID.String(),
		"appointmentSlotDate": "2024-06-10",
		"appointmentSlotTime": "09:00",
		"type":                "VIDEO_CONSULT",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	appt := decode[map[string]any](t, rec)
	path := fmt.Sprintf("/api/v1/appointments/%s/action", appt["id"])

	rec = s.do(t, http.MethodPost, path, map[string]any{"doctorProfileId": doctor.ID.String(), "action": "APPROVED"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "APPROVED", decode[map[string]any](t, rec)["status"])

	rec = s.do(t, http.MethodPost, path, map[string]any{"doctorProfileId": doctor.ID.String(), "action": "REJECTED"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, path, map[string]any{"doctorProfileId": doctor.ID.String(), "action": "CANCELLED"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/doctors/"+doctor.ID.String()+"/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	dash := decode[map[string]any](t, rec)
	assert.Equal(t, float64(1), dash["totalApprovedAppointments"])

	rec = s.do(t, http.MethodGet, "/api/v1/doctors/"+doctor.ID.String()+"/patients", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)

	rec = s.do(t, http.MethodGet, "/api/v1/patients/"+s.patient.ID.String()+"/appointments", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)
}

func TestFindDoctors(t *testing.T) {
	s := newTestServer(t)
	s.addDoctor("dr-video", model.ModeVideoConsult, false)
	s.addDoctor("dr-desk", model.ModeHomeVisit, true)

	rec := s.do(t, http.MethodGet, "/api/v1/doctors?mode=CLINIC_VISIT", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[[]map[string]any](t, rec)
	require.Len(t, got, 1)
	assert.Equal(t, "dr-desk", got[0]["username"])

	rec = s.do(t, http.MethodGet, "/api/v1/doctors/video?date=2024-06-10&slot=09:00", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestAdminVerification(t *testing.T) {
	s := newTestServer(t)
	doctor := s.store.AddDoctor(model.User{Username: "dr-pending"}, model.DoctorProfile{})

	rec := s.do(t, http.MethodGet, "/api/v1/admin/doctors/unverified", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)

	rec = s.do(t, http.MethodPost, "/api/v1/admin/doctors/"+doctor.ID.String()+"/verification", map[string]any{"status": "APPROVED"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "APPROVED", decode[map[string]any](t, rec)["status"])
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	s.do(t, http.MethodGet, "/api/v1/doctors", nil)

	rec = s.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `appointment_service_http_request_duration_seconds_count{method="GET",route="/api/v1/doctors",status="200"}`)
}

func TestHealthz_Unavailable(t *testing.T) {
	logger := zap.NewNop()
	router := NewRouter(NewHandler(Services{}, logger), RouterConfig{
		Health: func(context.Context) error { return errors.New("db down") },
	}, logger)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRecoversFromPanics(t *testing.T) {
	logger := zap.NewNop()
	// Handler без сервисов: обращение к nil-сервису паникует
	router := NewRouter(NewHandler(Services{}, logger), RouterConfig{}, logger)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/doctors/unverified", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{service.ErrNotFound, http.StatusNotFound},
		{service.ErrUnauthorized, http.StatusUnauthorized},
		{fmt.Errorf("wrap: %w", service.ErrSlotUnavailable), http.StatusBadRequest},
		{service.ErrInvalidInput, http.StatusBadRequest},
		{service.ErrInvalidTransition, http.StatusConflict},
		{service.ErrConflict, http.StatusConflict},
		{service.ErrInternal, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
		{badRequest("bad"), http.StatusBadRequest},
	}

	for _, tt := range tests {
		status, _ := classify(tt.err)
		assert.Equal(t, tt.want, status, tt.err.Error())
	}
}
