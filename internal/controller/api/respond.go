package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Freeeeeet/appointment_service/internal/model"
	"github.com/Freeeeeet/appointment_service/internal/service"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// writeJSON пишет ответ в JSON
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}

// writeError сопоставляет ошибку сервиса с кодом ответа. Детали внутренних ошибок
// остаются в логе и клиенту не отдаются
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := classify(err)

	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	} else {
		h.logger.Debug("Request rejected",
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err),
		)
	}

	h.writeJSON(w, status, errorResponse{Error: message, Status: status})
}

func classify(err error) (int, string) {
	var inputErr *inputError
	switch {
	case errors.As(err, &inputErr):
		return http.StatusBadRequest, inputErr.Error()
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrSlotUnavailable):
		return http.StatusBadRequest, "slot not available"
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized access"
	case errors.Is(err, service.ErrInvalidTransition):
		return http.StatusConflict, "appointment is not pending"
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict, "conflict"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// inputError ошибка разбора запроса, текст безопасно показывать клиенту
type inputError struct {
	msg string
}

func (e *inputError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &inputError{msg: fmt.Sprintf(format, args...)}
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return badRequest("invalid request body: %v", err)
	}
	return nil
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	return parseUUID(name, mux.Vars(r)[name])
}

func parseUUID(name, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil, badRequest("invalid %s", name)
	}
	return id, nil
}

// optionalUUID пустое значение - uuid.Nil
func optionalUUID(name, value string) (uuid.UUID, error) {
	if strings.TrimSpace(value) == "" {
		return uuid.Nil, nil
	}
	return parseUUID(name, value)
}

func parseDate(name, value string) (time.Time, error) {
	d, err := model.ParseDate(value)
	if err != nil {
		return time.Time{}, badRequest("invalid %s: %v", name, err)
	}
	return d, nil
}

func parseSlot(name, value string) (model.SlotTime, error) {
	t, err := model.ParseSlotTime(strings.TrimSpace(value))
	if err != nil {
		return model.SlotTime{}, badRequest("invalid %s: %v", name, err)
	}
	return t, nil
}

func parseMode(name, value string) (model.Mode, error) {
	m, err := model.ParseMode(value)
	if err != nil {
		return "", badRequest("invalid %s: %v", name, err)
	}
	return m, nil
}
