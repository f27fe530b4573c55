package repository

import "github.com/Freeeeeet/appointment_service/internal/repository/base"

// Ошибки хранилища, на которые опирается сервисный слой
var (
	ErrNotFound = base.ErrNotFound
	ErrConflict = base.ErrConflict
)
