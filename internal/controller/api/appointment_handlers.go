package api

import (
	"net/http"

	"github.com/Freeeeeet/appointment_service/internal/model"
	"github.com/Freeeeeet/appointment_service/internal/service"
)

type bookAppointmentRequest struct {
	DoctorProfileID     string               `json:"doctorProfileId"`
	UserID              string               `json:"userId"`
	AppointmentSlotDate string               `json:"appointmentSlotDate"`
	AppointmentSlotTime string               `json:"appointmentSlotTime"`
	Type                string               `json:"type"`
	Reason              string               `json:"reason"`
	CurrentLocation     *model.Location      `json:"currentLocation,omitempty"`
	IsForOthers         bool                 `json:"isForOthers,omitempty"`
	OthersContact       *model.OthersContact `json:"othersContact,omitempty"`
}

func (b bookAppointmentRequest) parse() (service.BookRequest, error) {
	req := service.BookRequest{
		Reason:          b.Reason,
		CurrentLocation: b.CurrentLocation,
		IsForOthers:     b.IsForOthers,
		OthersContact:   b.OthersContact,
	}

	var err error
	if req.DoctorProfileID, err = parseUUID("doctorProfileId", b.DoctorProfileID); err != nil {
		return req, err
	}
	if req.UserID, err = parseUUID("userId", b.UserID); err != nil {
		return req, err
	}
	if req.Date, err = parseDate("appointmentSlotDate", b.AppointmentSlotDate); err != nil {
		return req, err
	}
	if req.Slot, err = parseSlot("appointmentSlotTime", b.AppointmentSlotTime); err != nil {
		return req, err
	}
	if req.Type, err = parseMode("type", b.Type); err != nil {
		return req, err
	}
	return req, nil
}

// BookAppointment запись на один слот, создаётся в статусе PENDING
func (h *Handler) BookAppointment(w http.ResponseWriter, r *http.Request) {
	var body bookAppointmentRequest
	if err := decodeJSON(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}

	req, err := body.parse()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	appointment, err := h.booking.Book(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, appointment)
}

type bookHybridRequest struct {
	HomeDoctorID    string          `json:"homeDoctorId"`
	VideoDoctorID   string          `json:"videoDoctorId"`
	UserID          string          `json:"userId"`
	HomeDate        string          `json:"h_apptDate"`
	HomeSlot        string          `json:"h_slot"`
	VideoDate       string          `json:"v_apptDate"`
	VideoSlot       string          `json:"v_slot"`
	Reason          string          `json:"reason"`
	CurrentLocation *model.Location `json:"currentLocation,omitempty"`
}

func (b bookHybridRequest) parse() (service.HybridBookRequest, error) {
	req := service.HybridBookRequest{
		Reason:          b.Reason,
		CurrentLocation: b.CurrentLocation,
	}

	var err error
	if req.HomeDoctorID, err = parseUUID("homeDoctorId", b.HomeDoctorID); err != nil {
		return req, err
	}
	if req.VideoDoctorID, err = parseUUID("videoDoctorId", b.VideoDoctorID); err != nil {
		return req, err
	}
	if req.UserID, err = parseUUID("userId", b.UserID); err != nil {
		return req, err
	}
	if req.HomeDate, err = parseDate("h_apptDate", b.HomeDate); err != nil {
		return req, err
	}
	if req.HomeSlot, err = parseSlot("h_slot", b.HomeSlot); err != nil {
		return req, err
	}
	if req.VideoDate, err = parseDate("v_apptDate", b.VideoDate); err != nil {
		return req, err
	}
	if req.VideoSlot, err = parseSlot("v_slot", b.VideoSlot); err != nil {
		return req, err
	}
	return req, nil
}

// BookHybridAppointment выезд на дом и видеоконсультация одной транзакцией.
// Ответ - массив из двух записей: домашняя, затем видео
func (h *Handler) BookHybridAppointment(w http.ResponseWriter, r *http.Request) {
	var body bookHybridRequest
	if err := decodeJSON(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}

	req, err := body.parse()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	appointments, err := h.booking.BookHybrid(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, appointments)
}

type actionRequest struct {
	DoctorProfileID string `json:"doctorProfileId"`
	Action          string `json:"action"`
}

// ActOnAppointment решение врача: APPROVED или REJECTED
func (h *Handler) ActOnAppointment(w http.ResponseWriter, r *http.Request) {
	appointmentID, err := pathUUID(r, "appointmentId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var body actionRequest
	if err := decodeJSON(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}

	doctorID, err := parseUUID("doctorProfileId", body.DoctorProfileID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	action, err := model.ParseAction(body.Action)
	if err != nil {
		h.writeError(w, r, badRequest("invalid action: %v", err))
		return
	}

	appointment, err := h.booking.Act(r.Context(), appointmentID, doctorID, action)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, appointment)
}

// GetPatientAppointments все записи пациента
func (h *Handler) GetPatientAppointments(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUUID(r, "userId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	appointments, err := h.booking.PatientAppointments(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, appointments)
}
