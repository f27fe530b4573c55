package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusPending  AppointmentStatus = "PENDING"  // Ожидает решения врача
	AppointmentStatusApproved AppointmentStatus = "APPROVED" // Подтверждено врачом
	AppointmentStatusRejected AppointmentStatus = "REJECTED" // Отклонено врачом
)

// IsActive статусы, которые занимают слот
func (s AppointmentStatus) IsActive() bool {
	return s == AppointmentStatusPending || s == AppointmentStatusApproved
}

// ActiveStatuses статусы, которые занимают слот
var ActiveStatuses = []AppointmentStatus{AppointmentStatusPending, AppointmentStatusApproved}

// ParseAction проверяет решение врача по записи
func ParseAction(s string) (AppointmentStatus, error) {
	switch st := AppointmentStatus(s); st {
	case AppointmentStatusApproved, AppointmentStatusRejected:
		return st, nil
	default:
		return "", fmt.Errorf("unknown action %q", s)
	}
}

// CanTransition PENDING -> APPROVED | REJECTED, из конечных статусов выхода нет
func (s AppointmentStatus) CanTransition(to AppointmentStatus) bool {
	return s == AppointmentStatusPending &&
		(to == AppointmentStatusApproved || to == AppointmentStatusRejected)
}

// Location координаты пациента для выезда на дом
type Location struct {
	Lat  float64 `json:"lat"`
	Long float64 `json:"long"`
}

// OthersContact контакт человека, за которого записывается пациент
type OthersContact struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

type Appointment struct {
	ID                  uuid.UUID         `json:"id"`
	DoctorProfileID     uuid.UUID         `json:"doctorProfileId"`
	UserID              uuid.UUID         `json:"userId"`
	AppointmentSlotDate time.Time         `json:"appointmentSlotDate"`
	AppointmentSlotTime SlotTime          `json:"appointmentSlotTime"`
	Type                Mode              `json:"type"`
	Status              AppointmentStatus `json:"status"`
	Reason              string            `json:"reason"`
	CurrentLocation     *Location         `json:"currentLocation,omitempty"`
	IsForOthers         bool              `json:"isForOthers"`
	OthersContact       *OthersContact    `json:"othersContact,omitempty"`
	CreatedAt           time.Time         `json:"createdAt"`
	UpdatedAt           time.Time         `json:"updatedAt"`

	// Заполняются при чтении для кабинета врача и списка пациента (не хранятся в appointments)
	Patient *PatientContact `json:"patient,omitempty"`
	Doctor  *DoctorSummary  `json:"doctor,omitempty"`
}

// DoctorSummary короткая карточка врача в списке записей пациента
type DoctorSummary struct {
	ID              uuid.UUID `json:"id"`
	Username        string    `json:"username"`
	FirstName       string    `json:"fname"`
	LastName        string    `json:"lname"`
	Specializations []string  `json:"specializations"`
	Fee             int       `json:"fee"`
}

// BookedSlot занятый слот: минимум, который нужен калькулятору
type BookedSlot struct {
	Date time.Time
	Time SlotTime
	Type Mode
}

// StatusCounts счётчики записей врача по статусам
type StatusCounts struct {
	Total    int `json:"totalAppointments"`
	Pending  int `json:"totalPendingAppointments"`
	Approved int `json:"totalApprovedAppointments"`
	Rejected int `json:"totalRejectedAppointments"`
}

// AppointmentFilter выборка записей врача. From включительно, To не включительно,
// нулевые значения не ограничивают
type AppointmentFilter struct {
	From   time.Time
	To     time.Time
	Status AppointmentStatus
}
