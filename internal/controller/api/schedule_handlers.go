package api

import (
	"net/http"

	"github.com/Freeeeeet/appointment_service/internal/service"
)

// GetSchedule шаблон врача или пустой шаблон по умолчанию
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	doctorID, err := pathUUID(r, "doctorId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	view, err := h.schedules.Get(r.Context(), doctorID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, view)
}

// UpdateSchedule upsert шаблона: переданные списки заменяют сохранённые
func (h *Handler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	doctorID, err := pathUUID(r, "doctorId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var update service.ScheduleUpdate
	if err := decodeJSON(r, &update); err != nil {
		h.writeError(w, r, err)
		return
	}

	schedule, err := h.schedules.Update(r.Context(), doctorID, update)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, schedule)
}

// UpdateSettings режим приёма и доступность в клинике
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	doctorID, err := pathUUID(r, "doctorId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var settings service.DoctorSettings
	if err := decodeJSON(r, &settings); err != nil {
		h.writeError(w, r, err)
		return
	}

	doctor, err := h.doctors.UpdateSettings(r.Context(), doctorID, settings)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, doctor)
}
