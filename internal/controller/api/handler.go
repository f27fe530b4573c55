// Package api REST-транспорт сервиса записи на приём поверх gorilla/mux
package api

import (
	"github.com/Freeeeeet/appointment_service/internal/service"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Services сервисы, которые обслуживает транспорт
type Services struct {
	Schedules    *service.ScheduleService
	Availability *service.AvailabilityService
	Booking      *service.BookingService
	Dashboard    *service.DashboardService
	Doctors      *service.DoctorService
}

type Handler struct {
	schedules    *service.ScheduleService
	availability *service.AvailabilityService
	booking      *service.BookingService
	dashboard    *service.DashboardService
	doctors      *service.DoctorService
	logger       *zap.Logger
}

func NewHandler(svc Services, logger *zap.Logger) *Handler {
	return &Handler{
		schedules:    svc.Schedules,
		availability: svc.Availability,
		booking:      svc.Booking,
		dashboard:    svc.Dashboard,
		doctors:      svc.Doctors,
		logger:       logger,
	}
}

// RegisterRoutes регистрирует маршруты /api/v1
func (h *Handler) RegisterRoutes(router *mux.Router) {
	// Расписание и настройки врача
	router.HandleFunc("/doctors/{doctorId}/schedule", h.GetSchedule).Methods("GET")
	router.HandleFunc("/doctors/{doctorId}/schedule", h.UpdateSchedule).Methods("PUT")
	router.HandleFunc("/doctors/{doctorId}/settings", h.UpdateSettings).Methods("PATCH")

	// Доступность
	router.HandleFunc("/doctors/by-username/{username}/availability", h.GetAvailability).Methods("GET")
	router.HandleFunc("/doctors/by-username/{username}/video-slots", h.GetVideoSlots).Methods("GET")
	router.HandleFunc("/availability/check", h.CheckAvailability).Methods("POST")
	router.HandleFunc("/availability/check-hybrid", h.CheckHybridAvailability).Methods("POST")

	// Записи
	router.HandleFunc("/appointments", h.BookAppointment).Methods("POST")
	router.HandleFunc("/appointments/hybrid", h.BookHybridAppointment).Methods("POST")
	router.HandleFunc("/appointments/{appointmentId}/action", h.ActOnAppointment).Methods("POST")
	router.HandleFunc("/patients/{userId}/appointments", h.GetPatientAppointments).Methods("GET")

	// Кабинет врача
	router.HandleFunc("/doctors/{doctorId}/dashboard", h.GetDashboard).Methods("GET")
	router.HandleFunc("/doctors/{doctorId}/patients", h.GetPatients).Methods("GET")

	// Поиск врачей
	router.HandleFunc("/doctors", h.FindDoctors).Methods("GET")
	router.HandleFunc("/doctors/video", h.FindDoctorsByVideoSlot).Methods("GET")

	// Проверка врачей администратором
	router.HandleFunc("/admin/doctors/unverified", h.ListUnverifiedDoctors).Methods("GET")
	router.HandleFunc("/admin/doctors/{doctorId}/verification", h.SetDoctorVerification).Methods("POST")
}
