package api

import (
	"net/http"

	"github.com/Freeeeeet/appointment_service/internal/model"
)

// GetDashboard сводка для кабинета врача
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	doctorID, err := pathUUID(r, "doctorId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	dashboard, err := h.dashboard.Dashboard(r.Context(), doctorID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, dashboard)
}

// GetPatients пациенты с подтверждёнными записями
func (h *Handler) GetPatients(w http.ResponseWriter, r *http.Request) {
	doctorID, err := pathUUID(r, "doctorId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	patients, err := h.dashboard.Patients(r.Context(), doctorID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, patients)
}

// ListUnverifiedDoctors профили, ожидающие проверки
func (h *Handler) ListUnverifiedDoctors(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.doctors.ListUnverified(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, doctors)
}

type verificationRequest struct {
	Status model.VerificationStatus `json:"status"`
}

// SetDoctorVerification решение администратора по профилю
func (h *Handler) SetDoctorVerification(w http.ResponseWriter, r *http.Request) {
	doctorID, err := pathUUID(r, "doctorId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var body verificationRequest
	if err := decodeJSON(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}

	doctor, err := h.doctors.SetVerification(r.Context(), doctorID, body.Status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, doctor)
}
