package api

import (
	"net/http"

	"github.com/Freeeeeet/appointment_service/internal/model"
	"github.com/Freeeeeet/appointment_service/internal/service"
	"github.com/gorilla/mux"
)

// GetAvailability свободные слоты врача на несколько дней вперёд.
// ?startDate=2024-06-10&userId=<uuid>&mode=HOME_VISIT
func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := service.PlanRequest{Username: mux.Vars(r)["username"]}

	var err error
	if v := q.Get("startDate"); v != "" {
		if req.StartDate, err = parseDate("startDate", v); err != nil {
			h.writeError(w, r, err)
			return
		}
	}
	if req.RequestingUserID, err = optionalUUID("userId", q.Get("userId")); err != nil {
		h.writeError(w, r, err)
		return
	}
	if v := q.Get("mode"); v != "" {
		if req.OnlyMode, err = parseMode("mode", v); err != nil {
			h.writeError(w, r, err)
			return
		}
	}

	availability, err := h.availability.Plan(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, availability)
}

// GetVideoSlots видеослоты на дату сразу после указанного слота.
// ?date=2024-06-10&slot=09:00&userId=<uuid>
func (h *Handler) GetVideoSlots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	date, err := parseDate("date", q.Get("date"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	reference, err := parseSlot("slot", q.Get("slot"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	userID, err := optionalUUID("userId", q.Get("userId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	window, err := h.availability.VideoSlotsAfter(r.Context(), mux.Vars(r)["username"], userID, date, reference)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, window)
}

type checkAvailabilityRequest struct {
	DoctorProfileID string `json:"doctorProfileId"`
	Date            string `json:"date"`
	SlotTime        string `json:"slotTime"`
	Mode            string `json:"mode"`
}

// CheckAvailability проверка одного слота перед записью
func (h *Handler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	var body checkAvailabilityRequest
	if err := decodeJSON(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}

	doctorID, err := parseUUID("doctorProfileId", body.DoctorProfileID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	date, err := parseDate("date", body.Date)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	slot, err := parseSlot("slotTime", body.SlotTime)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	mode, err := parseMode("mode", body.Mode)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.availability.Check(r.Context(), doctorID, date, slot, mode)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

type checkHybridRequest struct {
	HomeVisitDoctorID string `json:"homeVisitDoctorId"`
	HomeDate          string `json:"h_apptDate"`
	HomeSlot          string `json:"h_slotTime"`
	VideoDoctorID     string `json:"videoDoctorId"`
	VideoDate         string `json:"v_apptDate"`
	VideoSlot         string `json:"v_slotTime"`
}

func (b checkHybridRequest) parse() (service.HybridCheckRequest, error) {
	var (
		req service.HybridCheckRequest
		err error
	)
	if req.HomeDoctorID, err = parseUUID("homeVisitDoctorId", b.HomeVisitDoctorID); err != nil {
		return req, err
	}
	if req.HomeDate, err = parseDate("h_apptDate", b.HomeDate); err != nil {
		return req, err
	}
	if req.HomeSlot, err = parseSlot("h_slotTime", b.HomeSlot); err != nil {
		return req, err
	}
	if req.VideoDoctorID, err = parseUUID("videoDoctorId", b.VideoDoctorID); err != nil {
		return req, err
	}
	if req.VideoDate, err = parseDate("v_apptDate", b.VideoDate); err != nil {
		return req, err
	}
	if req.VideoSlot, err = parseSlot("v_slotTime", b.VideoSlot); err != nil {
		return req, err
	}
	return req, nil
}

// CheckHybridAvailability проверка пары слотов для гибридной записи
func (h *Handler) CheckHybridAvailability(w http.ResponseWriter, r *http.Request) {
	var body checkHybridRequest
	if err := decodeJSON(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}

	req, err := body.parse()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.availability.CheckHybrid(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// FindDoctors поиск одобренных врачей. ?speciality=&address=&mode=
func (h *Handler) FindDoctors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.DoctorFilter{
		Speciality: q.Get("speciality"),
		Address:    q.Get("address"),
	}
	if v := q.Get("mode"); v != "" {
		mode, err := parseMode("mode", v)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		filter.Mode = mode
	}

	doctors, err := h.doctors.Find(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, doctors)
}

// FindDoctorsByVideoSlot врачи со свободным видеослотом сразу после указанного. ?date=&slot=
func (h *Handler) FindDoctorsByVideoSlot(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	date, err := parseDate("date", q.Get("date"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	reference, err := parseSlot("slot", q.Get("slot"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	doctors, err := h.doctors.FindByVideoSlot(r.Context(), date, reference)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, doctors)
}
