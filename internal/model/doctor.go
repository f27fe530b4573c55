package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Mode режим приёма врача
type Mode string

const (
	ModeVideoConsult Mode = "VIDEO_CONSULT" // Видеоконсультация
	ModeHomeVisit    Mode = "HOME_VISIT"    // Выезд на дом
	ModeClinicVisit  Mode = "CLINIC_VISIT"  // Приём в клинике (desk)
)

// ParseMode проверяет строку режима
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeVideoConsult, ModeHomeVisit, ModeClinicVisit:
		return m, nil
	default:
		return "", fmt.Errorf("unknown mode %q", s)
	}
}

// VerificationStatus статус проверки профиля врача администратором
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "PENDING"
	VerificationApproved VerificationStatus = "APPROVED"
	VerificationRejected VerificationStatus = "REJECTED"
)

// Address адрес врача, используется в поиске
type Address struct {
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
	Pincode string `json:"pincode"`
}

// DoctorProfile профиль врача вместе с данными пользователя
type DoctorProfile struct {
	ID                 uuid.UUID          `json:"id"`
	UserID             uuid.UUID          `json:"userId"`
	Username           string             `json:"username"`
	FirstName          string             `json:"fname"`
	LastName           string             `json:"lname"`
	Email              string             `json:"email,omitempty"`
	Contact            string             `json:"contact,omitempty"`
	Status             VerificationStatus `json:"status"`
	Mode               Mode               `json:"mode"`
	IsAvailableForDesk bool               `json:"isAvailableForDesk"`
	Fee                int                `json:"fee"`
	Specializations    []string           `json:"specializations"`
	Address            Address            `json:"address"`
	TelegramID         *int64             `json:"-"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
}

// IsApproved врач прошёл проверку
func (d *DoctorProfile) IsApproved() bool {
	return d.Status == VerificationApproved
}

// OffersMode показывает, ведёт ли врач сейчас приём в этом режиме.
// Desk не зависит от основного режима
func (d *DoctorProfile) OffersMode(mode Mode) bool {
	switch mode {
	case ModeClinicVisit:
		return d.IsAvailableForDesk
	case ModeVideoConsult, ModeHomeVisit:
		return d.Mode == mode
	default:
		return false
	}
}

// FullName имя для отображения
func (d *DoctorProfile) FullName() string {
	if d.LastName == "" {
		return d.FirstName
	}
	return d.FirstName + " " + d.LastName
}

// DoctorFilter критерии поиска врачей. Пустые поля не фильтруют.
// Mode = CLINIC_VISIT отбирает по isAvailableForDesk, а не по основному режиму
type DoctorFilter struct {
	Speciality string
	Address    string
	Mode       Mode
}
