package service

import (
	"errors"
	"fmt"

	"github.com/Freeeeeet/appointment_service/internal/repository"
)

// Виды ошибок сервисного слоя. Транспорт сопоставляет их с кодами ответа через errors.Is
var (
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized access")
	ErrSlotUnavailable   = errors.New("slot unavailable")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrConflict          = errors.New("conflict")
	ErrInternal          = errors.New("internal error")
)

// storeErr относит ошибку хранилища к одному из видов, сохраняя исходную причину в цепочке
func storeErr(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%s: %w: %w", op, ErrNotFound, err)
	case errors.Is(err, repository.ErrConflict):
		return fmt.Errorf("%s: %w: %w", op, ErrConflict, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, ErrInternal, err)
	}
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
