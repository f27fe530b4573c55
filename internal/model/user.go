package model

import (
	"time"

	"github.com/google/uuid"
)

// Role роль пользователя платформы
type Role string

const (
	RolePatient Role = "PATIENT"
	RoleDoctor  Role = "DOCTOR"
	RoleAdmin   Role = "ADMIN"
)

type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	FirstName string    `json:"fname"`
	LastName  string    `json:"lname"`
	Email     string    `json:"email"`
	Contact   string    `json:"contact"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// PatientContact проекция пациента для кабинета врача
type PatientContact struct {
	UserID    uuid.UUID `json:"userId"`
	FirstName string    `json:"fname"`
	LastName  string    `json:"lname"`
	Contact   string    `json:"contact"`
	Email     string    `json:"email,omitempty"`
}
